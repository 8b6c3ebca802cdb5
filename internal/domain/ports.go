package domain

import (
	"context"
	"time"
)

// EventPublisher публикует события жизненного цикла заказа во внешние системы.
type EventPublisher interface {
	// Publish передаёт событие наружу; ошибки не откатывают уже принятую мутацию.
	Publish(ctx context.Context, event OrderEvent) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// OrderEventType — тип внешнего события о заказе.
type OrderEventType string

const (
	OrderEventCreated   OrderEventType = "order.created"
	OrderEventUpdated   OrderEventType = "order.updated"
	OrderEventCancelled OrderEventType = "order.cancelled"
)

// OrderEvent — снимок заказа на момент мутации.
type OrderEvent struct {
	Type       OrderEventType
	Order      Order
	OccurredAt time.Time
}
