package model

import "fmt"

// VehicleType is the courier's mode of transport, which determines its
// capacity expectations and its cost-function penalty.
type VehicleType int

const (
	VehicleMotorbike VehicleType = iota
	VehicleBike
	VehicleCar
)

// ParseVehicleType maps the dataset loader's string column to a VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	switch s {
	case "motorbike":
		return VehicleMotorbike, nil
	case "bike":
		return VehicleBike, nil
	case "car":
		return VehicleCar, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVehicle, s)
	}
}

func (v VehicleType) String() string {
	switch v {
	case VehicleMotorbike:
		return "motorbike"
	case VehicleBike:
		return "bike"
	case VehicleCar:
		return "car"
	default:
		return fmt.Sprintf("VehicleType(%d)", int(v))
	}
}

// CourierState mirrors the courier's route composition: IDLE iff the route
// is empty, ACCRUING while a pickup remains to be visited, DELIVERING once
// every remaining stop is a dropoff.
type CourierState int

const (
	CourierIdle CourierState = iota
	CourierAccruing
	CourierDelivering
)

func (s CourierState) String() string {
	switch s {
	case CourierIdle:
		return "IDLE"
	case CourierAccruing:
		return "ACCRUING"
	case CourierDelivering:
		return "DELIVERING"
	default:
		return fmt.Sprintf("CourierState(%d)", int(s))
	}
}

// Courier is a single delivery agent: an immutable identity and vehicle,
// plus the mutable route/assignment state the tick loop and dispatch engine
// advance.
type Courier struct {
	ID            string
	ShiftStart    Location
	Vehicle       VehicleType
	Capacity      int
	AvailableFrom Minutes

	Location       Location
	State          CourierState
	AssignedOrders []*Order
	Route          []Stop
	NextStopIndex  int
	ETA            Minutes
}

// NewCourier constructs a Courier at its shift-start location, IDLE, with
// an empty route.
func NewCourier(id string, shiftStart Location, vehicle VehicleType, capacity int, availableFrom Minutes) Courier {
	return Courier{
		ID:            id,
		ShiftStart:    shiftStart,
		Vehicle:       vehicle,
		Capacity:      capacity,
		AvailableFrom: availableFrom,
		Location:      shiftStart,
		State:         CourierIdle,
	}
}

// RemainingStops returns the stops not yet consumed from the current route.
func (c *Courier) RemainingStops() []Stop {
	if c.NextStopIndex >= len(c.Route) {
		return nil
	}

	return c.Route[c.NextStopIndex:]
}

// DeriveState recomputes State from the remaining route, enforcing the
// state-route agreement invariant: IDLE iff the route is exhausted,
// DELIVERING iff no remaining stop is a PICKUP, ACCRUING otherwise.
func (c *Courier) DeriveState() {
	remaining := c.RemainingStops()
	if len(remaining) == 0 {
		c.State = CourierIdle

		return
	}

	for _, stop := range remaining {
		if stop.Kind == StopPickup {
			c.State = CourierAccruing

			return
		}
	}

	c.State = CourierDelivering
}

// HasCapacityFor reports whether the courier can accept additionalOrders
// more orders without exceeding Capacity.
func (c *Courier) HasCapacityFor(additionalOrders int) bool {
	return len(c.AssignedOrders)+additionalOrders <= c.Capacity
}

// AtCapacity reports whether the courier is already carrying its maximum
// number of orders.
func (c *Courier) AtCapacity() bool {
	return len(c.AssignedOrders) >= c.Capacity
}

// AssignedOrderIDs returns the ids of the courier's currently assigned
// orders, used to build TSP-PC and cost-function inputs.
func (c *Courier) AssignedOrderIDs() []string {
	ids := make([]string, len(c.AssignedOrders))
	for i, o := range c.AssignedOrders {
		ids[i] = o.ID
	}

	return ids
}

// ValidatePrecedence checks the precedence invariant on the current route:
// every PICKUP of an order must strictly precede its DROPOFF.
func (c *Courier) ValidatePrecedence() error {
	seenPickup := make(map[string]bool, len(c.Route))

	for _, stop := range c.Route {
		switch stop.Kind {
		case StopPickup:
			seenPickup[stop.OrderID] = true
		case StopDropoff:
			if !seenPickup[stop.OrderID] {
				return fmt.Errorf("%w: dropoff for order %s precedes its pickup in courier %s route",
					ErrInvalidTransition, stop.OrderID, c.ID)
			}
		}
	}

	return nil
}
