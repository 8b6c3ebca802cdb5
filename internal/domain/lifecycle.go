package domain

import "fmt"

// Operation — действие над заказом, для которого проверяется переход статуса.
type Operation string

const (
	// OperationUpdateItems заменяет список позиций целиком.
	OperationUpdateItems Operation = "update_items"
	// OperationSetStatus выставляет статус из запроса на изменение.
	OperationSetStatus Operation = "set_status"
	// OperationCancel — явная отмена заказа.
	OperationCancel Operation = "cancel"
)

// Operations перечисляет все операции жизненного цикла.
var Operations = []Operation{OperationUpdateItems, OperationSetStatus, OperationCancel}

type transitionKey struct {
	from   OrderStatus
	op     Operation
	target OrderStatus
}

// transitions: полная таблица переходов. nil означает, что переход разрешён.
var transitions = map[transitionKey]error{
	{OrderStatusConfirmed, OperationUpdateItems, OrderStatusConfirmed}: nil,
	{OrderStatusConfirmed, OperationSetStatus, OrderStatusConfirmed}:   nil,
	{OrderStatusConfirmed, OperationSetStatus, OrderStatusCancelled}:   nil,
	{OrderStatusConfirmed, OperationCancel, OrderStatusCancelled}:      nil,

	{OrderStatusCancelled, OperationUpdateItems, OrderStatusCancelled}: ErrCancelledOrderUpdate,
	{OrderStatusCancelled, OperationSetStatus, OrderStatusConfirmed}:   ErrCancelledOrderUpdate,
	{OrderStatusCancelled, OperationSetStatus, OrderStatusCancelled}:   ErrCancelledOrderUpdate,
	{OrderStatusCancelled, OperationCancel, OrderStatusCancelled}:      ErrOrderAlreadyCancelled,
}

// TargetStatus вычисляет статус, в который ведёт операция.
// Для OperationSetStatus целевой статус берётся из запроса.
func TargetStatus(current OrderStatus, op Operation, requested OrderStatus) OrderStatus {
	switch op {
	case OperationCancel:
		return OrderStatusCancelled
	case OperationSetStatus:
		return requested
	default:
		return current
	}
}

// CheckTransition возвращает ошибку, если переход from -(op)-> target не разрешён таблицей.
func CheckTransition(from OrderStatus, op Operation, target OrderStatus) error {
	rule, ok := transitions[transitionKey{from: from, op: op, target: target}]
	if !ok {
		return &Error{
			kind: ErrInvalidState,
			msg:  fmt.Sprintf("transition %s -(%s)-> %s is not allowed", from, op, target),
		}
	}
	return rule
}
