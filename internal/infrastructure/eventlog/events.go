package eventlog

import "github.com/shortlink-org/dispatchsim/internal/domain/model"

// OrderInjectedEvent fires when an order leaves the master list and
// enters the pending queue.
type OrderInjectedEvent struct {
	OrderID     string  `json:"order_id"`
	CreatedTime float64 `json:"created_time"`
	Deadline    float64 `json:"deadline"`
}

// OrderAssignedEvent fires when a dispatch call assigns an order to a
// courier.
type OrderAssignedEvent struct {
	OrderID   string `json:"order_id"`
	CourierID string `json:"courier_id"`
}

// OrderPickedUpEvent fires when a courier's route consumes an order's
// pickup stop.
type OrderPickedUpEvent struct {
	OrderID    string  `json:"order_id"`
	CourierID  string  `json:"courier_id"`
	PickupTime float64 `json:"pickup_time"`
}

// OrderDeliveredEvent fires when a courier's route consumes an order's
// dropoff stop.
type OrderDeliveredEvent struct {
	OrderID     string  `json:"order_id"`
	CourierID   string  `json:"courier_id"`
	DropoffTime float64 `json:"dropoff_time"`
}

// TickCompletedEvent fires once per simulator tick.
type TickCompletedEvent struct {
	CurrentTime  float64 `json:"current_time"`
	PendingCount int     `json:"pending_count"`
}

func newOrderInjectedEvent(o *model.Order) OrderInjectedEvent {
	return OrderInjectedEvent{
		OrderID:     o.ID,
		CreatedTime: float64(o.CreatedTime),
		Deadline:    float64(o.Deadline()),
	}
}
