package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"oficina-system/internal/entities"
	"oficina-system/pkg/types"
)

type DashboardRepositoryInterface interface {
	GetCountByStatus(ctx context.Context) ([]types.DashboardCountByGroup, error)
	GetOpenTotals(ctx context.Context) (*types.DashboardOpenTotals, error)
	GetDeliveredSince(ctx context.Context, since time.Time) (int64, decimal.Decimal, error)
	GetCardsByPosition(ctx context.Context) ([]types.DashboardCountByGroup, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDashboardRepository(storage *pgxpool.Pool, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

// closedStatuses - практические финальные статусы.
var closedStatuses = []string{string(entities.StatusEntregue), string(entities.StatusRecusado)}

func (r *DashboardRepository) countBy(ctx context.Context, builder sq.SelectBuilder) ([]types.DashboardCountByGroup, error) {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]types.DashboardCountByGroup, 0)
	for rows.Next() {
		var item types.DashboardCountByGroup
		if err := rows.Scan(&item.Group, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *DashboardRepository) GetCountByStatus(ctx context.Context) ([]types.DashboardCountByGroup, error) {
	return r.countBy(ctx, sq.Select("o.status", "COUNT(*)").
		From("ordens_servico o").
		GroupBy("o.status").
		OrderBy("o.status"))
}

func (r *DashboardRepository) GetOpenTotals(ctx context.Context) (*types.DashboardOpenTotals, error) {
	query, args, err := sq.Select(
		"COUNT(*)",
		"COALESCE(SUM(o.valor_orcado), 0)",
		"COALESCE(SUM(o.valor_aprovado), 0)",
	).From("ordens_servico o").
		Where(sq.NotEq{"o.status": closedStatuses}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	var quoted, approved pgtype.Numeric
	totals := &types.DashboardOpenTotals{}
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&totals.Count, &quoted, &approved); err != nil {
		return nil, err
	}
	totals.Quoted = fromNumeric(quoted)
	totals.Approved = fromNumeric(approved)
	return totals, nil
}

// GetDeliveredSince - число выданных машин и выручка (valor_final, иначе valor_aprovado).
func (r *DashboardRepository) GetDeliveredSince(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	query, args, err := sq.Select(
		"COUNT(*)",
		"COALESCE(SUM(COALESCE(o.valor_final, o.valor_aprovado)), 0)",
	).From("ordens_servico o").
		Where(sq.Eq{"o.status": string(entities.StatusEntregue)}).
		Where(sq.GtOrEq{"o.data_entrega": since}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, decimal.Zero, err
	}

	var count int64
	var revenue pgtype.Numeric
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&count, &revenue); err != nil {
		return 0, decimal.Zero, err
	}
	return count, fromNumeric(revenue), nil
}

func (r *DashboardRepository) GetCardsByPosition(ctx context.Context) ([]types.DashboardCountByGroup, error) {
	return r.countBy(ctx, sq.Select("c.posicao_patio", "COUNT(*)").
		From("trello_cards c").
		GroupBy("c.posicao_patio").
		OrderBy("c.posicao_patio"))
}
