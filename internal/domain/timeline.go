package domain

import "time"

// Типы событий timeline.
const (
	TimelineOrderCreated       = "OrderCreated"
	TimelineOrderItemsUpdated  = "OrderItemsUpdated"
	TimelineOrderStatusChanged = "OrderStatusChanged"
	TimelineOrderCancelled     = "OrderCancelled"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
