package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficina-system/internal/entities"
	apperrors "oficina-system/pkg/errors"
)

const orderItemColumns = `
	id, ordem_id, tipo, descricao, quantidade, valor_custo, valor_unitario, valor_total,
	margem_aplicada, status, motivo_recusa, prioridade, data_retorno_estimada,
	justificativa_desconto, created_at`

type OrderItemRepositoryInterface interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entities.OrderItem, error)
	ListByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]entities.OrderItem, error)
	FindItemInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*entities.OrderItem, error)
	CreateItemInTx(ctx context.Context, tx pgx.Tx, item *entities.OrderItem) error
	UpdateItemStatusInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID, status entities.ItemStatus, reason *string) error
	DeleteItemInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) error
}

type OrderItemRepository struct {
	storage *pgxpool.Pool
}

func NewOrderItemRepository(storage *pgxpool.Pool) OrderItemRepositoryInterface {
	return &OrderItemRepository{storage: storage}
}

func scanOrderItem(row pgx.Row) (*entities.OrderItem, error) {
	var it entities.OrderItem
	var cost, price, total, margin pgtype.Numeric

	err := row.Scan(
		&it.ID, &it.OrderID, &it.Kind, &it.Description, &it.Quantity,
		&cost, &price, &total, &margin,
		&it.Status, &it.RejectionReason, &it.Priority, &it.EstimatedReturnDate,
		&it.DiscountJustification, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования позиции заказа: %w", err)
	}
	it.UnitCost = fromNumeric(cost)
	it.UnitPrice = fromNumeric(price)
	it.Total = fromNumeric(total)
	it.Margin = fromNumeric(margin)
	return &it, nil
}

func (r *OrderItemRepository) list(ctx context.Context, q Querier, orderID uuid.UUID) ([]entities.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM ordem_servico_itens WHERE ordem_id = $1 ORDER BY created_at, id`
	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения позиций заказа: %w", err)
	}
	defer rows.Close()

	items := make([]entities.OrderItem, 0)
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entities.OrderItem, error) {
	return r.list(ctx, r.storage, orderID)
}

func (r *OrderItemRepository) ListByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]entities.OrderItem, error) {
	return r.list(ctx, tx, orderID)
}

func (r *OrderItemRepository) FindItemInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*entities.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM ordem_servico_itens WHERE ordem_id = $1 AND id = $2`
	return scanOrderItem(tx.QueryRow(ctx, query, orderID, itemID))
}

func (r *OrderItemRepository) CreateItemInTx(ctx context.Context, tx pgx.Tx, it *entities.OrderItem) error {
	query := `
		INSERT INTO ordem_servico_itens (` + orderItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := tx.Exec(ctx, query,
		it.ID, it.OrderID, it.Kind, it.Description, it.Quantity,
		toNumeric(it.UnitCost), toNumeric(it.UnitPrice), toNumeric(it.Total), toNumeric(it.Margin),
		it.Status, it.RejectionReason, it.Priority, it.EstimatedReturnDate,
		it.DiscountJustification, it.CreatedAt,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return apperrors.ErrNotFound
		case pgCheckViolation:
			return apperrors.NewInvalidInputError("dados do item inválidos")
		}
		return fmt.Errorf("ошибка создания позиции заказа: %w", err)
	}
	return nil
}

func (r *OrderItemRepository) UpdateItemStatusInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID, status entities.ItemStatus, reason *string) error {
	query := `UPDATE ordem_servico_itens SET status = $3, motivo_recusa = $4 WHERE ordem_id = $1 AND id = $2`
	return execAffectingOne(ctx, tx, query, orderID, itemID, status, reason)
}

func (r *OrderItemRepository) DeleteItemInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) error {
	query := `DELETE FROM ordem_servico_itens WHERE ordem_id = $1 AND id = $2`
	return execAffectingOne(ctx, tx, query, orderID, itemID)
}
