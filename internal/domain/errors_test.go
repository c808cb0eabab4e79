package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NewValidationError("cart"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewConnectivity("store unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConnectivity)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewValidationError_NamesFields(t *testing.T) {
	err := NewValidationError("fullName", "address")

	assert.Equal(t, []string{"fullName", "address"}, err.Fields)
	assert.Equal(t, "missing or invalid: fullName, address", err.Message)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation keeps message", NewValidationError("cart"), "missing or invalid: cart"},
		{"unauthorized keeps message", NewUnauthorized("invalid email or password"), "invalid email or password"},
		{"connectivity is generic", NewConnectivity("db down", errors.New("eof")), "Something went wrong, please try again."},
		{"plain error is generic", errors.New("boom"), "Something went wrong, please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestKindFromCode_RoundTrips(t *testing.T) {
	for k := KindValidation; k <= KindConnectivity; k++ {
		assert.Equal(t, k, KindFromCode(k.String()))
	}
	assert.Equal(t, KindUnknown, KindFromCode("internal_error"))
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(CheckoutStatusIdle, CheckoutStatusValidating))
	assert.True(t, CanTransitionTo(CheckoutStatusSubmitting, CheckoutStatusRecorded))
	assert.True(t, CanTransitionTo(CheckoutStatusFailed, CheckoutStatusValidating))
	assert.False(t, CanTransitionTo(CheckoutStatusIdle, CheckoutStatusRecorded))
	assert.False(t, CanTransitionTo(CheckoutStatusValidating, CheckoutStatusRecorded))
}

func TestOrderCode(t *testing.T) {
	assert.Equal(t, "YK-2024-42", OrderCode(42))
	assert.Equal(t, "YK-2024-7", Order{ID: 7}.Code())
}
