package dispatch

import (
	"context"
	"math"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// sequential bids each order, in input order, against every eligible
// courier's current route re-planned with the order inserted. The lowest
// bidder wins; ties are not specially broken (first minimum found stands,
// matching a stable left-to-right scan). When every bid is infeasible, the
// order falls back to the nearest IDLE courier via a bare route.
func (e *Engine) sequential(ctx context.Context, eligible []*eligibility, pending []*model.Order, currentTime model.Minutes) (Result, error) {
	var result Result

	for _, order := range pending {
		won, err := e.bidOrder(ctx, eligible, order, currentTime)
		if err != nil {
			return Result{}, err
		}

		if won != nil {
			result.DistanceAdded += won.marginal
			result.AssignedOrderIDs = append(result.AssignedOrderIDs, order.ID)

			if won.el.courier.AtCapacity() {
				eligible = removeEligible(eligible, won.el)
			}

			continue
		}

		// Fallback: nearest IDLE courier via a bare pickup->dropoff route.
		idx, pickupKm, travelMin, ok, err := nearestIdle(ctx, e, eligible, order)
		if err != nil {
			return Result{}, err
		}

		if !ok {
			continue
		}

		chosen := eligible[idx]

		dropoffKm, err := e.dist.DistanceKm(ctx, order.Pickup, order.Dropoff)
		if err != nil {
			return Result{}, err
		}

		assignSimpleRoute(chosen.courier, order, currentTime, travelMin, e.cfg.ServiceTimeMins)
		chosen.existingDistance = pickupKm + dropoffKm

		result.DistanceAdded += pickupKm + dropoffKm
		result.AssignedOrderIDs = append(result.AssignedOrderIDs, order.ID)

		if chosen.courier.AtCapacity() {
			eligible = removeEligible(eligible, chosen)
		}
	}

	return result, nil
}

type wonBid struct {
	el       *eligibility
	marginal float64
	route    []model.Stop
}

func (e *Engine) bidOrder(ctx context.Context, eligible []*eligibility, order *model.Order, currentTime model.Minutes) (*wonBid, error) {
	var best *wonBid
	bestCost := math.Inf(1)

	for _, el := range eligible {
		if !el.courier.HasCapacityFor(1) {
			continue
		}

		combined := append(append([]*model.Order(nil), el.courier.AssignedOrders...), order)

		pickedUp := make(map[string]bool, len(combined))
		for _, o := range el.courier.AssignedOrders {
			if o.State() == model.OrderPickedUp {
				pickedUp[o.ID] = true
			}
		}

		route, distance, err := e.oracle.Solve(ctx, el.courier.Location, combined, pickedUp)
		if err != nil {
			return nil, err
		}

		// The bundle carries the full re-planned order set so the cost
		// function's temporal walk checks the SLA cutoff on every
		// dropoff, including the courier's existing orders. Bid itself
		// normalises by the newly inserted order count (1 here).
		b := model.Bundle{Orders: combined, Route: route, TotalDistance: distance}

		c, err := e.costFn.Bid(ctx, el.courier, b, currentTime, el.existingDistance)
		if err != nil {
			return nil, err
		}

		if c < bestCost {
			bestCost = c
			best = &wonBid{el: el, marginal: distance - el.existingDistance, route: route}
		}
	}

	if best == nil || math.IsInf(bestCost, 1) {
		return nil, nil
	}

	_ = order.MarkAssigned()
	best.el.courier.AssignedOrders = append(best.el.courier.AssignedOrders, order)
	best.el.courier.Route = best.route
	best.el.courier.NextStopIndex = 0
	best.el.existingDistance += best.marginal
	best.el.courier.DeriveState()

	if len(best.el.courier.Route) > 0 {
		travelMin, err := e.dist.TravelTimeMin(ctx, best.el.courier.Location, best.el.courier.Route[0].Location)
		if err != nil {
			return nil, err
		}

		best.el.courier.ETA = currentTime + model.Minutes(travelMin) + model.Minutes(e.cfg.ServiceTimeMins)
	}

	return best, nil
}

// nearestIdle returns the index of the nearest-by-distance IDLE courier in
// eligible, along with the pickup distance (km) and travel time (min).
func nearestIdle(ctx context.Context, e *Engine, eligible []*eligibility, order *model.Order) (int, float64, float64, bool, error) {
	bestIdx := -1
	bestKm := 0.0
	bestTravel := 0.0

	for i, el := range eligible {
		if el.courier.State != model.CourierIdle {
			continue
		}

		km, err := e.dist.DistanceKm(ctx, el.courier.Location, order.Pickup)
		if err != nil {
			return 0, 0, 0, false, err
		}

		if bestIdx == -1 || km < bestKm {
			t, err := e.dist.TravelTimeMin(ctx, el.courier.Location, order.Pickup)
			if err != nil {
				return 0, 0, 0, false, err
			}

			bestIdx = i
			bestKm = km
			bestTravel = t
		}
	}

	if bestIdx == -1 {
		return 0, 0, 0, false, nil
	}

	return bestIdx, bestKm, bestTravel, true, nil
}

func removeEligible(eligible []*eligibility, target *eligibility) []*eligibility {
	out := eligible[:0]

	for _, el := range eligible {
		if el != target {
			out = append(out, el)
		}
	}

	return out
}
