package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder() Order {
	pickup := MustNewLocation(25.2854, 51.5310)
	dropoff := MustNewLocation(25.2900, 51.5350)

	return NewOrder("order-1", pickup, dropoff, 0, 30)
}

func TestOrder_InitialState(t *testing.T) {
	o := newTestOrder()
	assert.Equal(t, OrderPending, o.State())
	assert.Equal(t, Minutes(30), o.Deadline())

	_, ok := o.PickupTime()
	assert.False(t, ok)

	_, ok = o.DropoffTime()
	assert.False(t, ok)
}

func TestOrder_HappyPathTransitions(t *testing.T) {
	o := newTestOrder()

	require.NoError(t, o.MarkAssigned())
	assert.Equal(t, OrderAssigned, o.State())

	require.NoError(t, o.MarkPickedUp(5))
	assert.Equal(t, OrderPickedUp, o.State())

	pickupTime, ok := o.PickupTime()
	require.True(t, ok)
	assert.Equal(t, Minutes(5), pickupTime)

	require.NoError(t, o.MarkDelivered(20))
	assert.Equal(t, OrderDelivered, o.State())

	dropoffTime, ok := o.DropoffTime()
	require.True(t, ok)
	assert.Equal(t, Minutes(20), dropoffTime)
}

func TestOrder_TransitionsAreMonotone(t *testing.T) {
	o := newTestOrder()

	// Can't skip a state.
	err := o.MarkPickedUp(5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderPending, o.State())

	require.NoError(t, o.MarkAssigned())

	// Can't go backwards.
	err = o.MarkAssigned()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrder_MarkFailed_FromAnyNonTerminalState(t *testing.T) {
	pending := newTestOrder()
	require.NoError(t, pending.MarkFailed())
	assert.Equal(t, OrderFailed, pending.State())

	assigned := newTestOrder()
	require.NoError(t, assigned.MarkAssigned())
	require.NoError(t, assigned.MarkFailed())
	assert.Equal(t, OrderFailed, assigned.State())
}

func TestOrder_MarkFailed_NotFromDelivered(t *testing.T) {
	o := newTestOrder()
	require.NoError(t, o.MarkAssigned())
	require.NoError(t, o.MarkPickedUp(5))
	require.NoError(t, o.MarkDelivered(20))

	err := o.MarkFailed()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
