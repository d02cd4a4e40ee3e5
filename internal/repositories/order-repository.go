package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficina-system/internal/entities"
	bd "oficina-system/internal/infrastructure/bd"
	apperrors "oficina-system/pkg/errors"
	"oficina-system/pkg/types"
)

const orderTable = "ordens_servico"

var orderColumns = []string{
	"o.id", "o.numero_os", "o.placa", "o.veiculo", "o.km", "o.cliente_nome", "o.cliente_telefone",
	"o.status", "o.data_entrada", "o.data_orcamento", "o.data_aprovacao", "o.data_conclusao", "o.data_entrega",
	"o.valor_orcado", "o.valor_aprovado", "o.valor_final",
	"o.descricao_problema", "o.diagnostico", "o.observacoes", "o.motivo_recusa",
	"o.checklist_entrada", "o.checklist_dinamometro", "o.checklist_precompra",
	"o.fotos_url", "o.mecanico_id", "o.trello_card_id", "o.created_at", "o.updated_at",
}

// Поля, по которым разрешены filter[...] и sort[...].
var orderFilterMap = map[string]string{
	"status":         "o.status",
	"placa":          "o.placa",
	"mecanico_id":    "o.mecanico_id",
	"trello_card_id": "o.trello_card_id",
	"numero_os":      "o.numero_os",
	"created_at":     "o.created_at",
	"data_entrada":   "o.data_entrada",
	"valor_orcado":   "o.valor_orcado",
}

var checklistColumns = map[entities.ChecklistKind]string{
	entities.ChecklistEntrada:     "checklist_entrada",
	entities.ChecklistDinamometro: "checklist_dinamometro",
	entities.ChecklistPrecompra:   "checklist_precompra",
}

type OrderRepositoryInterface interface {
	GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	// FindOrderForUpdateInTx блокирует строку заказа до конца транзакции.
	FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Order, error)
	CreateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	// UpdateLifecycleInTx пишет статус. Уже проставленные даты не перезаписываются.
	UpdateLifecycleInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	UpdateChecklistInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, kind entities.ChecklistKind, checklist entities.Checklist) error
	SetMechanicInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, mechanicID *uuid.UUID) error
	// RecomputeTotalsInTx пересчитывает valor_orcado и valor_aprovado одним агрегирующим UPDATE.
	RecomputeTotalsInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (entities.OrderTotals, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{storage: storage}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	var quoted, approved, final pgtype.Numeric
	var entrada, dino, precompra []byte

	err := row.Scan(
		&o.ID, &o.Number, &o.Plate, &o.Vehicle, &o.Km, &o.ClientName, &o.ClientPhone,
		&o.Status, &o.EnteredAt, &o.QuotedAt, &o.ApprovedAt, &o.CompletedAt, &o.DeliveredAt,
		&quoted, &approved, &final,
		&o.ProblemDesc, &o.Diagnosis, &o.Notes, &o.RejectionReason,
		&entrada, &dino, &precompra,
		&o.PhotosURL, &o.MechanicID, &o.TrelloCardID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования заказа: %w", err)
	}

	o.QuotedTotal = fromNumeric(quoted)
	o.ApprovedTotal = fromNumeric(approved)
	o.FinalTotal = fromNullNumeric(final)

	if o.EntryChecklist, err = entities.ScanChecklist(entrada); err != nil {
		return nil, fmt.Errorf("checklist_entrada: %w", err)
	}
	if o.DynoChecklist, err = entities.ScanChecklist(dino); err != nil {
		return nil, fmt.Errorf("checklist_dinamometro: %w", err)
	}
	if o.PrePurchaseChecklist, err = entities.ScanChecklist(precompra); err != nil {
		return nil, fmt.Errorf("checklist_precompra: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applySearch := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			return b.Where(sq.Or{
				sq.ILike{"o.numero_os": pat},
				sq.ILike{"o.placa": "%" + strings.ToUpper(strings.ReplaceAll(filter.Search, "-", "")) + "%"},
				sq.ILike{"o.cliente_nome": pat},
				sq.ILike{"o.veiculo": pat},
			})
		}
		return b
	}

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil

	countBuilder := applySearch(psql.Select("COUNT(o.id)").From(orderTable + " AS o"))
	countBuilder = bd.ApplyListParams(countBuilder, countFilter, orderFilterMap)

	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заказов: %w", err)
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	baseBuilder := applySearch(psql.Select(orderColumns...).From(orderTable + " AS o"))
	baseBuilder = bd.ApplyListParams(baseBuilder, filter, orderFilterMap)
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("o.data_entrada DESC")
	}

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0, filter.Limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) findOne(ctx context.Context, querier Querier, id uuid.UUID, forUpdate bool) (*entities.Order, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(orderColumns...).
		From(orderTable + " AS o").
		Where(sq.Eq{"o.id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanOrder(querier.QueryRow(ctx, query, args...))
}

func (r *OrderRepository) FindOrder(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	return r.findOne(ctx, r.storage, id, false)
}

func (r *OrderRepository) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Order, error) {
	return r.findOne(ctx, tx, id, true)
}

func marshalChecklist(c entities.Checklist) ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

func (r *OrderRepository) CreateOrderInTx(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	entrada, err := marshalChecklist(o.EntryChecklist)
	if err != nil {
		return err
	}
	dino, err := marshalChecklist(o.DynoChecklist)
	if err != nil {
		return err
	}
	precompra, err := marshalChecklist(o.PrePurchaseChecklist)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ordens_servico (
			id, numero_os, placa, veiculo, km, cliente_nome, cliente_telefone, status, data_entrada,
			valor_orcado, valor_aprovado, valor_final, descricao_problema, diagnostico, observacoes,
			checklist_entrada, checklist_dinamometro, checklist_precompra,
			fotos_url, mecanico_id, trello_card_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $22)`

	_, err = tx.Exec(ctx, query,
		o.ID, o.Number, o.Plate, o.Vehicle, o.Km, o.ClientName, o.ClientPhone, o.Status, o.EnteredAt,
		toNumeric(o.QuotedTotal), toNumeric(o.ApprovedTotal), toNullNumeric(o.FinalTotal),
		o.ProblemDesc, o.Diagnosis, o.Notes,
		entrada, dino, precompra,
		o.PhotosURL, o.MechanicID, o.TrelloCardID, o.CreatedAt,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return fmt.Errorf("numero_os %s: %w", o.Number, apperrors.ErrConflict)
		case pgForeignKeyViolation:
			return apperrors.NewInvalidInputError("mecânico informado não existe")
		}
		return fmt.Errorf("ошибка создания заказа: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(orderTable).
		SetMap(map[string]interface{}{
			"placa":              o.Plate,
			"veiculo":            o.Vehicle,
			"km":                 o.Km,
			"cliente_nome":       o.ClientName,
			"cliente_telefone":   o.ClientPhone,
			"descricao_problema": o.ProblemDesc,
			"diagnostico":        o.Diagnosis,
			"observacoes":        o.Notes,
			"fotos_url":          o.PhotosURL,
			"trello_card_id":     o.TrelloCardID,
			"valor_final":        toNullNumeric(o.FinalTotal),
			"updated_at":         o.UpdatedAt,
		}).
		Where(sq.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, tx, query, args...)
}

func (r *OrderRepository) UpdateLifecycleInTx(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	query := `
		UPDATE ordens_servico SET
			status = $2,
			motivo_recusa = $3,
			data_orcamento = COALESCE(data_orcamento, $4),
			data_aprovacao = COALESCE(data_aprovacao, $5),
			data_conclusao = COALESCE(data_conclusao, $6),
			data_entrega = COALESCE(data_entrega, $7),
			updated_at = $8
		WHERE id = $1`
	return execAffectingOne(ctx, tx, query,
		o.ID, o.Status, o.RejectionReason,
		o.QuotedAt, o.ApprovedAt, o.CompletedAt, o.DeliveredAt,
		o.UpdatedAt,
	)
}

func (r *OrderRepository) UpdateChecklistInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, kind entities.ChecklistKind, checklist entities.Checklist) error {
	column, ok := checklistColumns[kind]
	if !ok {
		return apperrors.NewInvalidInputError("tipo de checklist desconhecido: %s", kind)
	}
	raw, err := marshalChecklist(checklist)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE ordens_servico SET %s = $2, updated_at = $3 WHERE id = $1`, column)
	return execAffectingOne(ctx, tx, query, id, raw, time.Now())
}

func (r *OrderRepository) SetMechanicInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, mechanicID *uuid.UUID) error {
	query := `UPDATE ordens_servico SET mecanico_id = $2, updated_at = NOW() WHERE id = $1`
	return execAffectingOne(ctx, tx, query, id, mechanicID)
}

func (r *OrderRepository) RecomputeTotalsInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (entities.OrderTotals, error) {
	query := `
		UPDATE ordens_servico o SET
			valor_orcado = t.orcado,
			valor_aprovado = t.aprovado,
			updated_at = NOW()
		FROM (
			SELECT
				COALESCE(SUM(i.valor_total), 0) AS orcado,
				COALESCE(SUM(i.valor_total) FILTER (WHERE i.status = 'aprovado'), 0) AS aprovado
			FROM ordem_servico_itens i
			WHERE i.ordem_id = $1
		) t
		WHERE o.id = $1
		RETURNING o.valor_orcado, o.valor_aprovado`

	var quoted, approved pgtype.Numeric
	if err := tx.QueryRow(ctx, query, id).Scan(&quoted, &approved); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.OrderTotals{}, apperrors.ErrNotFound
		}
		return entities.OrderTotals{}, fmt.Errorf("ошибка пересчета итогов заказа: %w", err)
	}
	return entities.OrderTotals{Quoted: fromNumeric(quoted), Approved: fromNumeric(approved)}, nil
}

func execAffectingOne(ctx context.Context, q Querier, query string, args ...interface{}) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewInvalidInputError("referência inválida")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
