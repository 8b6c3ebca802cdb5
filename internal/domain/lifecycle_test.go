package domain

import (
	"errors"
	"testing"
)

func TestTransitionTableIsExhaustive(t *testing.T) {
	for _, from := range OrderStatuses {
		for _, op := range Operations {
			for _, requested := range OrderStatuses {
				target := TargetStatus(from, op, requested)
				if _, ok := transitions[transitionKey{from: from, op: op, target: target}]; !ok {
					t.Errorf("missing transition rule %s -(%s)-> %s", from, op, target)
				}
			}
		}
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		op      Operation
		target  OrderStatus
		wantErr error
	}{
		{name: "confirmed update items", from: OrderStatusConfirmed, op: OperationUpdateItems, target: OrderStatusConfirmed},
		{name: "confirmed set cancelled", from: OrderStatusConfirmed, op: OperationSetStatus, target: OrderStatusCancelled},
		{name: "confirmed set confirmed", from: OrderStatusConfirmed, op: OperationSetStatus, target: OrderStatusConfirmed},
		{name: "confirmed cancel", from: OrderStatusConfirmed, op: OperationCancel, target: OrderStatusCancelled},
		{name: "cancelled update items", from: OrderStatusCancelled, op: OperationUpdateItems, target: OrderStatusCancelled, wantErr: ErrCancelledOrderUpdate},
		{name: "cancelled set confirmed", from: OrderStatusCancelled, op: OperationSetStatus, target: OrderStatusConfirmed, wantErr: ErrCancelledOrderUpdate},
		{name: "cancelled set cancelled", from: OrderStatusCancelled, op: OperationSetStatus, target: OrderStatusCancelled, wantErr: ErrCancelledOrderUpdate},
		{name: "cancelled cancel", from: OrderStatusCancelled, op: OperationCancel, target: OrderStatusCancelled, wantErr: ErrOrderAlreadyCancelled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.from, tc.op, tc.target)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected transition to be allowed, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !IsInvalidState(err) {
				t.Fatalf("expected invalid state category, got %v", err)
			}
		})
	}
}

func TestCheckTransition_UnknownStatus(t *testing.T) {
	err := CheckTransition(OrderStatus("shipped"), OperationCancel, OrderStatusCancelled)
	if !IsInvalidState(err) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestTargetStatus(t *testing.T) {
	if got := TargetStatus(OrderStatusConfirmed, OperationCancel, OrderStatusConfirmed); got != OrderStatusCancelled {
		t.Fatalf("cancel target = %s", got)
	}
	if got := TargetStatus(OrderStatusConfirmed, OperationUpdateItems, OrderStatusCancelled); got != OrderStatusConfirmed {
		t.Fatalf("update items target = %s", got)
	}
	if got := TargetStatus(OrderStatusConfirmed, OperationSetStatus, OrderStatusCancelled); got != OrderStatusCancelled {
		t.Fatalf("set status target = %s", got)
	}
}
