package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficina-system/internal/entities"
	apperrors "oficina-system/pkg/errors"
)

type MechanicRepositoryInterface interface {
	FindMechanic(ctx context.Context, id uuid.UUID) (*entities.Mechanic, error)
	FindMechanicInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Mechanic, error)
	GetMechanics(ctx context.Context, onlyActive bool) ([]entities.Mechanic, error)
	// CreateMechanic возвращает false, если механик с таким именем уже есть.
	CreateMechanic(ctx context.Context, m entities.Mechanic) (bool, error)
}

type MechanicRepository struct {
	storage *pgxpool.Pool
}

func NewMechanicRepository(storage *pgxpool.Pool) MechanicRepositoryInterface {
	return &MechanicRepository{storage: storage}
}

func (r *MechanicRepository) findOne(ctx context.Context, q Querier, id uuid.UUID) (*entities.Mechanic, error) {
	var m entities.Mechanic
	err := q.QueryRow(ctx, `SELECT id, nome, ativo, created_at FROM mecanicos WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Active, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска механика: %w", err)
	}
	return &m, nil
}

func (r *MechanicRepository) FindMechanic(ctx context.Context, id uuid.UUID) (*entities.Mechanic, error) {
	return r.findOne(ctx, r.storage, id)
}

func (r *MechanicRepository) FindMechanicInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Mechanic, error) {
	return r.findOne(ctx, tx, id)
}

func (r *MechanicRepository) GetMechanics(ctx context.Context, onlyActive bool) ([]entities.Mechanic, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("id", "nome", "ativo", "created_at").
		From("mecanicos").
		OrderBy("nome")
	if onlyActive {
		builder = builder.Where(sq.Eq{"ativo": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения механиков: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Mechanic, 0)
	for rows.Next() {
		var m entities.Mechanic
		if err := rows.Scan(&m.ID, &m.Name, &m.Active, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *MechanicRepository) CreateMechanic(ctx context.Context, m entities.Mechanic) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		INSERT INTO mecanicos (id, nome, ativo, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT DO NOTHING`, m.ID, m.Name, m.Active)
	if err != nil {
		return false, fmt.Errorf("ошибка создания механика: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
