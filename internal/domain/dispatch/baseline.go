package dispatch

import (
	"context"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// baseline assigns each order, in input order, to the nearest eligible
// IDLE courier via a bare pickup->dropoff route. No bundling, no bidding.
// Orders left over when no IDLE courier remains defer to a later tick.
func (e *Engine) baseline(ctx context.Context, eligible []*eligibility, pending []*model.Order, currentTime model.Minutes) (Result, error) {
	idle := make([]*eligibility, 0, len(eligible))

	for _, el := range eligible {
		if el.courier.State == model.CourierIdle {
			idle = append(idle, el)
		}
	}

	var result Result

	for _, order := range pending {
		if len(idle) == 0 {
			break
		}

		bestIdx := -1
		bestDist := 0.0

		for i, el := range idle {
			d, err := e.dist.DistanceKm(ctx, el.courier.Location, order.Pickup)
			if err != nil {
				return Result{}, err
			}

			if bestIdx == -1 || d < bestDist {
				bestIdx = i
				bestDist = d
			}
		}

		chosen := idle[bestIdx]

		travelMin, err := e.dist.TravelTimeMin(ctx, chosen.courier.Location, order.Pickup)
		if err != nil {
			return Result{}, err
		}

		dropoffKm, err := e.dist.DistanceKm(ctx, order.Pickup, order.Dropoff)
		if err != nil {
			return Result{}, err
		}

		assignSimpleRoute(chosen.courier, order, currentTime, travelMin, e.cfg.ServiceTimeMins)

		// Full P->D route length, the baseline's documented asymmetry
		// against the other strategies' marginal bookkeeping.
		result.DistanceAdded += bestDist + dropoffKm
		result.AssignedOrderIDs = append(result.AssignedOrderIDs, order.ID)

		idle = append(idle[:bestIdx], idle[bestIdx+1:]...)
	}

	return result, nil
}
