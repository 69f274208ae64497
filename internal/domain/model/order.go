package model

import "fmt"

// OrderState is the lifecycle state of an Order. It only ever advances
// forward: PENDING -> ASSIGNED -> PICKED_UP -> DELIVERED (or FAILED, which
// terminates the lifecycle without delivery).
type OrderState int

const (
	OrderPending OrderState = iota
	OrderAssigned
	OrderPickedUp
	OrderDelivered
	OrderFailed
)

// String renders the state the way it appears in KPI output and logs.
func (s OrderState) String() string {
	switch s {
	case OrderPending:
		return "PENDING"
	case OrderAssigned:
		return "ASSIGNED"
	case OrderPickedUp:
		return "PICKED_UP"
	case OrderDelivered:
		return "DELIVERED"
	case OrderFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("OrderState(%d)", int(s))
	}
}

// orderRank gives the monotone ordering used by CanTransitionTo; FAILED is
// reachable from any non-terminal state but never precedes it.
func (s OrderState) orderRank() int {
	switch s {
	case OrderPending:
		return 0
	case OrderAssigned:
		return 1
	case OrderPickedUp:
		return 2
	case OrderDelivered, OrderFailed:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next, enforcing the monotone-advance invariant.
func (s OrderState) CanTransitionTo(next OrderState) bool {
	if next == OrderFailed {
		return s != OrderDelivered && s != OrderFailed
	}

	return next.orderRank() == s.orderRank()+1
}

// Order is a single delivery request: a pickup location, a dropoff location,
// and the timing that defines its SLA.
type Order struct {
	ID                       string
	Pickup                   Location
	Dropoff                  Location
	CreatedTime              Minutes
	EstimatedDeliveryTimeMin float64

	state       OrderState
	pickupTime  *Minutes
	dropoffTime *Minutes
}

// NewOrder constructs an Order in the PENDING state.
func NewOrder(id string, pickup, dropoff Location, createdTime Minutes, estimatedDeliveryTimeMin float64) Order {
	return Order{
		ID:                       id,
		Pickup:                   pickup,
		Dropoff:                  dropoff,
		CreatedTime:              createdTime,
		EstimatedDeliveryTimeMin: estimatedDeliveryTimeMin,
		state:                    OrderPending,
	}
}

// Deadline returns created_time + estimated_delivery_time_min.
func (o *Order) Deadline() Minutes {
	return o.CreatedTime + Minutes(o.EstimatedDeliveryTimeMin)
}

// State returns the order's current lifecycle state.
func (o *Order) State() OrderState { return o.state }

// PickupTime returns the recorded pickup timestamp, if any.
func (o *Order) PickupTime() (Minutes, bool) {
	if o.pickupTime == nil {
		return 0, false
	}

	return *o.pickupTime, true
}

// DropoffTime returns the recorded dropoff timestamp, if any.
func (o *Order) DropoffTime() (Minutes, bool) {
	if o.dropoffTime == nil {
		return 0, false
	}

	return *o.dropoffTime, true
}

// MarkAssigned transitions PENDING -> ASSIGNED.
func (o *Order) MarkAssigned() error {
	return o.transition(OrderAssigned)
}

// MarkPickedUp transitions ASSIGNED -> PICKED_UP and stamps pickup_time.
func (o *Order) MarkPickedUp(at Minutes) error {
	if err := o.transition(OrderPickedUp); err != nil {
		return err
	}

	o.pickupTime = &at

	return nil
}

// MarkDelivered transitions PICKED_UP -> DELIVERED and stamps dropoff_time.
func (o *Order) MarkDelivered(at Minutes) error {
	if err := o.transition(OrderDelivered); err != nil {
		return err
	}

	o.dropoffTime = &at

	return nil
}

// MarkFailed transitions any non-terminal state to FAILED, used when the
// simulation ends with the order still pending or in flight.
func (o *Order) MarkFailed() error {
	return o.transition(OrderFailed)
}

func (o *Order) transition(next OrderState) error {
	if !o.state.CanTransitionTo(next) {
		return fmt.Errorf("%w: order %s %s -> %s", ErrInvalidTransition, o.ID, o.state, next)
	}

	o.state = next

	return nil
}
