package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// TopicOrderEvents — топик по умолчанию для событий заказов.
const TopicOrderEvents = "orders.order.events"

// Kafka headers
const (
	HeaderEventType = "x-event-type"
	HeaderEventID   = "x-event-id"
)

// OrderItemPayload — позиция заказа в событии.
type OrderItemPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	Total     float64 `json:"total"`
}

// OrderEvent представляет событие заказа на шине.
type OrderEvent struct {
	EventID    string             `json:"event_id"`
	EventType  string             `json:"event_type"`
	OrderID    string             `json:"order_id"`
	Status     string             `json:"status"`
	Items      []OrderItemPayload `json:"items"`
	TotalValue float64            `json:"total_value"`
	Version    int64              `json:"version"`
	Timestamp  time.Time          `json:"timestamp"`
}

// NewOrderEvent строит событие из доменного снимка.
func NewOrderEvent(event domain.OrderEvent) *OrderEvent {
	items := make([]OrderItemPayload, 0, len(event.Order.Items))
	for _, item := range event.Order.Items {
		items = append(items, OrderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
			Total:     item.LineTotal().InexactFloat64(),
		})
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	return &OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  string(event.Type),
		OrderID:    event.Order.ID,
		Status:     string(event.Order.Status),
		Items:      items,
		TotalValue: event.Order.TotalValue().InexactFloat64(),
		Version:    event.Order.Version,
		Timestamp:  occurred,
	}
}
