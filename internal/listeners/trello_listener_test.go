package listeners

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oficina-system/internal/entities"
	"oficina-system/internal/events"
	"oficina-system/pkg/eventbus"
)

type fakeMover struct {
	mu        sync.Mutex
	execution []string
	ready     []string
	err       error
}

func (f *fakeMover) MoveToExecution(_ context.Context, cardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execution = append(f.execution, cardID)
	return f.err
}

func (f *fakeMover) MoveToReady(_ context.Context, cardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = append(f.ready, cardID)
	return f.err
}

func statusEvent(card *string, to entities.OrderStatus) events.OrderStatusChangedEvent {
	return events.OrderStatusChangedEvent{
		OrderID:      uuid.New(),
		Number:       "OS240305140700123",
		TrelloCardID: card,
		From:         entities.StatusAprovado,
		To:           to,
	}
}

func TestTrelloListenerMovesCardByStatus(t *testing.T) {
	mover := &fakeMover{}
	bus := eventbus.New(zap.NewNop())
	NewTrelloListener(mover, zap.NewNop()).Register(bus)

	card := "card-1"
	bus.Publish(context.Background(), statusEvent(&card, entities.StatusEmExecucao))
	bus.Publish(context.Background(), statusEvent(&card, entities.StatusConcluido))
	bus.Publish(context.Background(), statusEvent(&card, entities.StatusEntregue))
	bus.Publish(context.Background(), statusEvent(nil, entities.StatusConcluido))
	bus.Wait()

	assert.Equal(t, []string{"card-1"}, mover.execution)
	assert.Equal(t, []string{"card-1"}, mover.ready)
}

func TestTrelloListenerReportsFailure(t *testing.T) {
	mover := &fakeMover{err: errors.New("trello fora do ar")}
	listener := NewTrelloListener(mover, zap.NewNop())

	card := "card-2"
	err := listener.handleStatusChanged(context.Background(), statusEvent(&card, entities.StatusConcluido))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card-2")
}
