package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPendingPayment, StatusDeposited},
		{StatusPendingPayment, StatusPaymentFailed},
		{StatusPendingPayment, StatusExpired},
		{StatusPendingPayment, StatusCancelled},
		{StatusDeposited, StatusConfirmed},
		{StatusDeposited, StatusCompleted},
		{StatusDeposited, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusNoShow},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	forbidden := []struct{ from, to Status }{
		{StatusPendingPayment, StatusConfirmed},
		{StatusPendingPayment, StatusCompleted},
		{StatusDeposited, StatusExpired},
		{StatusDeposited, StatusNoShow},
		{StatusConfirmed, StatusDeposited},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPendingPayment},
		{StatusExpired, StatusDeposited},
		{StatusNoShow, StatusCompleted},
		{StatusPaymentFailed, StatusDeposited},
	}
	for _, tc := range forbidden {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusExpired, StatusPaymentFailed, StatusNoShow} {
		assert.True(t, s.Terminal(), string(s))
	}
	for _, s := range []Status{StatusPendingPayment, StatusDeposited, StatusConfirmed} {
		assert.False(t, s.Terminal(), string(s))
	}
}

func TestActive(t *testing.T) {
	assert.True(t, StatusPendingPayment.Active())
	assert.True(t, StatusCompleted.Active())
	assert.False(t, StatusCancelled.Active())
	assert.False(t, StatusExpired.Active())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("deposited")
	assert.True(t, ok)
	assert.Equal(t, StatusDeposited, s)

	_, ok = ParseStatus("unknown")
	assert.False(t, ok)
}
