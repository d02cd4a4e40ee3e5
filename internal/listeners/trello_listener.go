package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"oficina-system/internal/entities"
	"oficina-system/internal/events"
	"oficina-system/pkg/eventbus"
)

// CardMover - действия с карточкой, которые нужны слушателю.
type CardMover interface {
	MoveToExecution(ctx context.Context, cardID string) error
	MoveToReady(ctx context.Context, cardID string) error
}

// TrelloListener двигает карточку заказа по доске вслед за сменой статуса.
type TrelloListener struct {
	mover  CardMover
	logger *zap.Logger
}

func NewTrelloListener(mover CardMover, logger *zap.Logger) *TrelloListener {
	return &TrelloListener{mover: mover, logger: logger.Named("trello_listener")}
}

func (l *TrelloListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderStatusChanged, l.handleStatusChanged)
	l.logger.Info("TrelloListener подписан на событие", zap.String("event", events.OrderStatusChanged))
}

func (l *TrelloListener) handleStatusChanged(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", e)
	}
	if event.TrelloCardID == nil || *event.TrelloCardID == "" {
		return nil
	}
	cardID := *event.TrelloCardID

	var err error
	switch event.To {
	case entities.StatusEmExecucao:
		err = l.mover.MoveToExecution(ctx, cardID)
	case entities.StatusConcluido:
		err = l.mover.MoveToReady(ctx, cardID)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("заказ %s: карточка %s: %w", event.Number, cardID, err)
	}

	l.logger.Info("Карточка заказа перемещена",
		zap.String("order", event.Number),
		zap.String("card", cardID),
		zap.String("status", string(event.To)),
	)
	return nil
}
