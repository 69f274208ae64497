package simulator

import (
	"context"

	"github.com/google/uuid"

	"github.com/shortlink-org/dispatchsim/internal/domain/dispatch"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// dispatch calls the chosen strategy with a snapshot of pending orders,
// adds the returned distance to the fleet total, removes assigned orders
// from pending, and clears the batch window.
func (s *Simulator) dispatch(ctx context.Context, strategy dispatch.Strategy) error {
	cycleID := uuid.NewString()
	snapshot := append([]*model.Order(nil), s.pending.Orders()...)

	result, err := s.engine.Dispatch(ctx, strategy, s.couriers, snapshot, s.currentTime, s.recentOrderTimes)
	if err != nil {
		return err
	}

	if s.log != nil {
		s.log.Info("dispatch cycle completed",
			"correlation_id", cycleID,
			"strategy", string(result.Strategy),
			"current_time", float64(s.currentTime),
			"orders_pending", len(snapshot),
			"orders_assigned", len(result.AssignedOrderIDs),
			"distance_added_km", result.DistanceAdded,
		)
	}

	s.fleetDistance += result.DistanceAdded

	assigned := make(map[string]bool, len(result.AssignedOrderIDs))
	for _, id := range result.AssignedOrderIDs {
		assigned[id] = true

		if s.sink != nil {
			if courierID := s.courierForOrder(id); courierID != "" {
				s.sink.OrderAssigned(ctx, id, courierID)
			}
		}
	}

	s.pending.Remove(assigned)
	s.pending.ClearBatch()

	return nil
}

func (s *Simulator) courierForOrder(orderID string) string {
	for _, c := range s.couriers {
		for _, o := range c.AssignedOrders {
			if o.ID == orderID {
				return c.ID
			}
		}
	}

	return ""
}

// trackActivations adds every courier with assigned orders or a non-IDLE
// state to the drivers_activated set.
func (s *Simulator) trackActivations() {
	for _, c := range s.couriers {
		if len(c.AssignedOrders) > 0 || c.State != model.CourierIdle {
			s.driversActivated[c.ID] = true
		}
	}
}

// updateUtilization adds |couriers| to driver-ticks and the count of
// non-IDLE couriers to busy-driver-ticks.
func (s *Simulator) updateUtilization() {
	s.driverTicks += len(s.couriers)

	busy := 0

	for _, c := range s.couriers {
		if c.State != model.CourierIdle {
			busy++
		}
	}

	s.busyDriverTicks += busy
}
