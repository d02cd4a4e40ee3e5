package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficina-system/internal/entities"
	apperrors "oficina-system/pkg/errors"
)

var boardCardColumns = []string{
	"id", "name", "description", "list_id", "list_name", "labels", "date_last_activity",
	"placa", "modelo", "tecnico", "valor_aprovado", "previsao_entrega",
	"posicao_patio", "prioridade", "cor", "synced_at",
}

type BoardRepositoryInterface interface {
	UpsertListInTx(ctx context.Context, tx pgx.Tx, list entities.BoardList) error
	// UpsertCard вставляет карточку или перезаписывает все её колонки.
	UpsertCard(ctx context.Context, card entities.BoardCard) error
	FindCard(ctx context.Context, id string) (*entities.BoardCard, error)
	GetCards(ctx context.Context, position *entities.PatioPosition) ([]entities.BoardCard, error)
}

type BoardRepository struct {
	storage *pgxpool.Pool
}

func NewBoardRepository(storage *pgxpool.Pool) BoardRepositoryInterface {
	return &BoardRepository{storage: storage}
}

func (r *BoardRepository) UpsertListInTx(ctx context.Context, tx pgx.Tx, l entities.BoardList) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO trello_lists (id, name, board_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			board_id = EXCLUDED.board_id,
			updated_at = NOW()`,
		l.ID, l.Name, l.BoardID)
	return err
}

func (r *BoardRepository) UpsertCard(ctx context.Context, c entities.BoardCard) error {
	labels, err := json.Marshal(c.Labels)
	if err != nil {
		return err
	}
	if c.Labels == nil {
		labels = []byte("[]")
	}

	_, err = r.storage.Exec(ctx, `
		INSERT INTO trello_cards (
			id, name, description, list_id, list_name, labels, date_last_activity,
			placa, modelo, tecnico, valor_aprovado, previsao_entrega,
			posicao_patio, prioridade, cor, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			list_id = EXCLUDED.list_id,
			list_name = EXCLUDED.list_name,
			labels = EXCLUDED.labels,
			date_last_activity = EXCLUDED.date_last_activity,
			placa = EXCLUDED.placa,
			modelo = EXCLUDED.modelo,
			tecnico = EXCLUDED.tecnico,
			valor_aprovado = EXCLUDED.valor_aprovado,
			previsao_entrega = EXCLUDED.previsao_entrega,
			posicao_patio = EXCLUDED.posicao_patio,
			prioridade = EXCLUDED.prioridade,
			cor = EXCLUDED.cor,
			synced_at = NOW()`,
		c.ID, c.Name, c.Description, c.ListID, c.ListName, labels, c.DateLastActivity,
		c.Plate, c.Model, c.Technician, toNullNumeric(c.ApprovedValue), c.EstimatedDelivery,
		c.Position, c.Priority, c.Color,
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", c.ID, err)
	}
	return nil
}

func scanBoardCard(row pgx.Row) (*entities.BoardCard, error) {
	var c entities.BoardCard
	var labels []byte
	var approved pgtype.Numeric

	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.ListID, &c.ListName, &labels, &c.DateLastActivity,
		&c.Plate, &c.Model, &c.Technician, &approved, &c.EstimatedDelivery,
		&c.Position, &c.Priority, &c.Color, &c.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования карточки: %w", err)
	}
	c.ApprovedValue = fromNullNumeric(approved)
	c.Labels = []entities.BoardLabel{}
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &c.Labels); err != nil {
			return nil, fmt.Errorf("labels карточки %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func (r *BoardRepository) FindCard(ctx context.Context, id string) (*entities.BoardCard, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(boardCardColumns...).From("trello_cards").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanBoardCard(r.storage.QueryRow(ctx, query, args...))
}

func (r *BoardRepository) GetCards(ctx context.Context, position *entities.PatioPosition) ([]entities.BoardCard, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(boardCardColumns...).
		From("trello_cards").
		OrderBy("posicao_patio", "date_last_activity DESC NULLS LAST", "id")
	if position != nil {
		builder = builder.Where(sq.Eq{"posicao_patio": *position})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения карточек: %w", err)
	}
	defer rows.Close()

	cards := make([]entities.BoardCard, 0)
	for rows.Next() {
		c, err := scanBoardCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}
