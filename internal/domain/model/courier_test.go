package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleType(t *testing.T) {
	tests := []struct {
		in      string
		want    VehicleType
		wantErr bool
	}{
		{"motorbike", VehicleMotorbike, false},
		{"bike", VehicleBike, false},
		{"car", VehicleCar, false},
		{"scooter", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseVehicleType(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownVehicle)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCourier_NewCourierIsIdleAtShiftStart(t *testing.T) {
	start := MustNewLocation(25.0, 51.0)
	c := NewCourier("courier-1", start, VehicleCar, 2, 0)

	assert.Equal(t, CourierIdle, c.State)
	assert.Equal(t, start, c.Location)
	assert.Empty(t, c.Route)
	assert.True(t, c.HasCapacityFor(2))
	assert.False(t, c.AtCapacity())
}

func TestCourier_DeriveState_EmptyRouteIsIdle(t *testing.T) {
	c := NewCourier("c1", MustNewLocation(0, 0), VehicleBike, 1, 0)
	c.Route = nil
	c.DeriveState()
	assert.Equal(t, CourierIdle, c.State)
}

func TestCourier_DeriveState_RemainingPickupIsAccruing(t *testing.T) {
	c := NewCourier("c1", MustNewLocation(0, 0), VehicleBike, 2, 0)
	c.Route = []Stop{
		{Kind: StopPickup, OrderID: "o1"},
		{Kind: StopDropoff, OrderID: "o1"},
	}
	c.NextStopIndex = 0
	c.DeriveState()
	assert.Equal(t, CourierAccruing, c.State)
}

func TestCourier_DeriveState_AllRemainingDropoffsIsDelivering(t *testing.T) {
	c := NewCourier("c1", MustNewLocation(0, 0), VehicleBike, 2, 0)
	c.Route = []Stop{
		{Kind: StopPickup, OrderID: "o1"},
		{Kind: StopDropoff, OrderID: "o1"},
	}
	c.NextStopIndex = 1 // pickup already consumed
	c.DeriveState()
	assert.Equal(t, CourierDelivering, c.State)
}

func TestCourier_CapacityHelpers(t *testing.T) {
	c := NewCourier("c1", MustNewLocation(0, 0), VehicleBike, 2, 0)
	assert.True(t, c.HasCapacityFor(2))
	assert.False(t, c.HasCapacityFor(3))

	o1 := NewOrder("o1", MustNewLocation(0, 0), MustNewLocation(0, 0), 0, 30)
	c.AssignedOrders = append(c.AssignedOrders, &o1)
	assert.True(t, c.HasCapacityFor(1))
	assert.False(t, c.HasCapacityFor(2))
	assert.False(t, c.AtCapacity())

	o2 := NewOrder("o2", MustNewLocation(0, 0), MustNewLocation(0, 0), 0, 30)
	c.AssignedOrders = append(c.AssignedOrders, &o2)
	assert.True(t, c.AtCapacity())
	assert.ElementsMatch(t, []string{"o1", "o2"}, c.AssignedOrderIDs())
}

func TestCourier_ValidatePrecedence(t *testing.T) {
	c := NewCourier("c1", MustNewLocation(0, 0), VehicleBike, 2, 0)

	c.Route = []Stop{
		{Kind: StopPickup, OrderID: "o1"},
		{Kind: StopDropoff, OrderID: "o1"},
	}
	assert.NoError(t, c.ValidatePrecedence())

	c.Route = []Stop{
		{Kind: StopDropoff, OrderID: "o1"},
		{Kind: StopPickup, OrderID: "o1"},
	}
	assert.ErrorIs(t, c.ValidatePrecedence(), ErrInvalidTransition)
}
