package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"oficina-system/internal/entities"
	"oficina-system/pkg/eventbus"
	apperrors "oficina-system/pkg/errors"
	"oficina-system/pkg/types"
)

// fakeTx выполняет fn без настоящей транзакции.
type fakeTx struct{ calls int }

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type memStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*entities.Order
	items     map[uuid.UUID][]entities.OrderItem
	mechanics map[uuid.UUID]entities.Mechanic
}

func newMemStore() *memStore {
	return &memStore{
		orders:    map[uuid.UUID]*entities.Order{},
		items:     map[uuid.UUID][]entities.OrderItem{},
		mechanics: map[uuid.UUID]entities.Mechanic{},
	}
}

type fakeOrderRepo struct{ s *memStore }

func (r *fakeOrderRepo) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]entities.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		list = append(list, *o)
	}
	return list, uint64(len(list)), nil
}

func (r *fakeOrderRepo) FindOrder(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Order, error) {
	return r.FindOrder(ctx, id)
}

func (r *fakeOrderRepo) CreateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func coalesce(existing, next *time.Time) *time.Time {
	if existing != nil {
		return existing
	}
	return next
}

func (r *fakeOrderRepo) UpdateLifecycleInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[order.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Status = order.Status
	stored.RejectionReason = order.RejectionReason
	stored.QuotedAt = coalesce(stored.QuotedAt, order.QuotedAt)
	stored.ApprovedAt = coalesce(stored.ApprovedAt, order.ApprovedAt)
	stored.CompletedAt = coalesce(stored.CompletedAt, order.CompletedAt)
	stored.DeliveredAt = coalesce(stored.DeliveredAt, order.DeliveredAt)
	return nil
}

func (r *fakeOrderRepo) UpdateChecklistInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, kind entities.ChecklistKind, checklist entities.Checklist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.SetChecklist(kind, checklist)
	return nil
}

func (r *fakeOrderRepo) SetMechanicInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, mechanicID *uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.MechanicID = mechanicID
	return nil
}

func (r *fakeOrderRepo) RecomputeTotalsInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (entities.OrderTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return entities.OrderTotals{}, apperrors.ErrNotFound
	}
	totals := entities.ComputeTotals(r.s.items[id])
	o.QuotedTotal, o.ApprovedTotal = totals.Quoted, totals.Approved
	return totals, nil
}

type fakeItemRepo struct{ s *memStore }

func (r *fakeItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entities.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entities.OrderItem{}, r.s.items[orderID]...), nil
}

func (r *fakeItemRepo) ListByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]entities.OrderItem, error) {
	return r.ListByOrder(ctx, orderID)
}

func (r *fakeItemRepo) FindItemInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*entities.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items[orderID] {
		if it.ID == itemID {
			cp := it
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeItemRepo) CreateItemInTx(ctx context.Context, tx pgx.Tx, item *entities.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[item.OrderID]; !ok {
		return apperrors.ErrNotFound
	}
	r.s.items[item.OrderID] = append(r.s.items[item.OrderID], *item)
	return nil
}

func (r *fakeItemRepo) UpdateItemStatusInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID, status entities.ItemStatus, reason *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.items[orderID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Status = status
			items[i].RejectionReason = reason
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeItemRepo) DeleteItemInTx(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.items[orderID]
	for i := range items {
		if items[i].ID == itemID {
			r.s.items[orderID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeMechanicRepo struct{ s *memStore }

func (r *fakeMechanicRepo) FindMechanic(ctx context.Context, id uuid.UUID) (*entities.Mechanic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mechanics[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMechanicRepo) FindMechanicInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Mechanic, error) {
	return r.FindMechanic(ctx, id)
}

func (r *fakeMechanicRepo) GetMechanics(ctx context.Context, onlyActive bool) ([]entities.Mechanic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]entities.Mechanic, 0)
	for _, m := range r.s.mechanics {
		if !onlyActive || m.Active {
			list = append(list, m)
		}
	}
	return list, nil
}

func (r *fakeMechanicRepo) CreateMechanic(ctx context.Context, m entities.Mechanic) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.mechanics {
		if existing.Name == m.Name {
			return false, nil
		}
	}
	r.s.mechanics[m.ID] = m
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
