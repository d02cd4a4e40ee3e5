package events

import (
	"github.com/google/uuid"

	"oficina-system/internal/entities"
)

const OrderStatusChanged = "order.status.changed"

// OrderStatusChangedEvent публикуется после коммита смены статуса заказа.
type OrderStatusChangedEvent struct {
	OrderID      uuid.UUID
	Number       string
	TrelloCardID *string
	From         entities.OrderStatus
	To           entities.OrderStatus
}

// Name - реализуем интерфейс eventbus.Event
func (e OrderStatusChangedEvent) Name() string {
	return OrderStatusChanged
}
