package orderflow

import (
	"testing"

	"grocery/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	cases := []struct {
		from     models.OrderStatus
		typ      models.OrderType
		want     models.OrderStatus
		wantNext bool
	}{
		{models.StatusPending, models.OrderDelivery, models.StatusConfirmed, true},
		{models.StatusConfirmed, models.OrderPickup, models.StatusPreparing, true},
		{models.StatusPreparing, models.OrderWalkIn, models.StatusReady, true},
		{models.StatusReady, models.OrderDelivery, models.StatusOutForDelivery, true},
		{models.StatusReady, models.OrderPickup, models.StatusCompleted, true},
		{models.StatusReady, models.OrderWalkIn, models.StatusCompleted, true},
		{models.StatusOutForDelivery, models.OrderDelivery, models.StatusDelivered, true},
		{models.StatusDelivered, models.OrderDelivery, "", false},
		{models.StatusCompleted, models.OrderPickup, "", false},
		{models.StatusCancelled, models.OrderPickup, "", false},
	}
	for _, tc := range cases {
		got, ok := Next(tc.from, tc.typ)
		assert.Equal(t, tc.wantNext, ok, "%s/%s", tc.from, tc.typ)
		assert.Equal(t, tc.want, got, "%s/%s", tc.from, tc.typ)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.StatusPending, models.StatusConfirmed, models.OrderPickup))
	assert.True(t, CanTransition(models.StatusPending, models.StatusCancelled, models.OrderDelivery))
	assert.True(t, CanTransition(models.StatusReady, models.StatusCompleted, models.OrderPickup))

	assert.False(t, CanTransition(models.StatusConfirmed, models.StatusCancelled, models.OrderPickup))
	assert.False(t, CanTransition(models.StatusPending, models.StatusReady, models.OrderPickup))
	assert.False(t, CanTransition(models.StatusReady, models.StatusOutForDelivery, models.OrderDelivery))
	assert.False(t, CanTransition(models.StatusOutForDelivery, models.StatusDelivered, models.OrderDelivery))
	assert.False(t, CanTransition(models.StatusCompleted, models.StatusPending, models.OrderPickup))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(models.StatusOutForDelivery))
	assert.False(t, Valid("shipped"))
}
