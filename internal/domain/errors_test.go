package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		validation   bool
		notFound     bool
		invalidState bool
		conflict     bool
	}{
		{name: "items required", err: ErrItemsRequired, validation: true},
		{name: "no update data", err: ErrNoUpdateData, validation: true},
		{name: "order not found", err: ErrOrderNotFound, notFound: true},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", ErrOrderNotFound), notFound: true},
		{name: "cancelled update", err: ErrCancelledOrderUpdate, invalidState: true},
		{name: "already cancelled", err: ErrOrderAlreadyCancelled, invalidState: true},
		{name: "version conflict", err: ErrOrderVersionConflict, conflict: true},
		{name: "already exists", err: ErrOrderAlreadyExists, conflict: true},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil error", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.validation)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.notFound)
			}
			if got := IsInvalidState(tt.err); got != tt.invalidState {
				t.Errorf("IsInvalidState() = %v, want %v", got, tt.invalidState)
			}
			if got := IsConflict(tt.err); got != tt.conflict {
				t.Errorf("IsConflict() = %v, want %v", got, tt.conflict)
			}
		})
	}
}

func TestIsVersionConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "version conflict error", err: ErrOrderVersionConflict, want: true},
		{name: "wrapped version conflict error", err: errors.Join(ErrOrderVersionConflict, errors.New("additional context")), want: true},
		{name: "other conflict", err: ErrOrderAlreadyExists, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVersionConflict(tt.err); got != tt.want {
				t.Errorf("IsVersionConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrCancelledOrderUpdate.Error(); got != "cannot update a cancelled order" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := NewValidationError("invalid status: bogus").Error(); got != "invalid status: bogus" {
		t.Fatalf("unexpected message %q", got)
	}
}
