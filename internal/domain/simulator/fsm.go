package simulator

import (
	"context"

	"github.com/google/uuid"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// advanceCouriers consumes every stop each non-IDLE courier has already
// reached (current_time >= ETA_next_stop), mutating order and courier
// state per the formal state machine:
//
//	IDLE -> ACCRUING        (bundle assigned, handled by the dispatch step)
//	ACCRUING -> ACCRUING    (additional insert, handled by the dispatch step)
//	ACCRUING -> DELIVERING  (last remaining PICKUP consumed)
//	DELIVERING -> IDLE      (last DROPOFF consumed)
//	any -> IDLE             (route exhausted)
func (s *Simulator) advanceCouriers(ctx context.Context) error {
	for _, c := range s.couriers {
		if c.State == model.CourierIdle {
			continue
		}

		for c.NextStopIndex < len(c.Route) && s.currentTime >= c.ETA {
			stop := c.Route[c.NextStopIndex]

			c.Location = stop.Location
			s.routeHistory[c.ID] = append(s.routeHistory[c.ID], stop.Location)

			if err := s.consumeStop(ctx, c, stop); err != nil {
				return err
			}

			c.NextStopIndex++

			if c.NextStopIndex >= len(c.Route) {
				c.Route = nil
				c.NextStopIndex = 0
				c.AssignedOrders = nil
				c.State = model.CourierIdle

				break
			}

			next := c.Route[c.NextStopIndex]

			travelMin, err := s.dist.TravelTimeMin(ctx, c.Location, next.Location)
			if err != nil {
				return err
			}

			c.ETA = s.currentTime + model.Minutes(travelMin) + model.Minutes(s.cfg.ServiceTimeMins)
			c.DeriveState()
		}
	}

	return nil
}

func (s *Simulator) consumeStop(ctx context.Context, c *model.Courier, stop model.Stop) error {
	order := findAssigned(c, stop.OrderID)
	if order == nil {
		return nil
	}

	switch stop.Kind {
	case model.StopPickup:
		if err := order.MarkPickedUp(s.currentTime); err != nil {
			return err
		}

		if s.sink != nil {
			s.sink.OrderPickedUp(ctx, order.ID, c.ID, s.currentTime)
		}
	case model.StopDropoff:
		if err := order.MarkDelivered(s.currentTime); err != nil {
			return err
		}

		pickupTime, _ := order.PickupTime()
		s.completedMissions = append(s.completedMissions, Mission{
			ID:                       uuid.NewString(),
			OrderID:                  order.ID,
			CourierID:                c.ID,
			CreatedTime:              order.CreatedTime,
			PickupTime:               pickupTime,
			DropoffTime:              s.currentTime,
			EstimatedDeliveryTimeMin: order.EstimatedDeliveryTimeMin,
		})

		c.AssignedOrders = removeOrder(c.AssignedOrders, order.ID)

		if s.sink != nil {
			s.sink.OrderDelivered(ctx, order.ID, c.ID, s.currentTime)
		}
	}

	return nil
}

func findAssigned(c *model.Courier, orderID string) *model.Order {
	for _, o := range c.AssignedOrders {
		if o.ID == orderID {
			return o
		}
	}

	return nil
}

func removeOrder(orders []*model.Order, id string) []*model.Order {
	out := orders[:0]

	for _, o := range orders {
		if o.ID != id {
			out = append(out, o)
		}
	}

	return out
}
