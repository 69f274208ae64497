package dispatch

import (
	"context"
	"math"

	"github.com/shortlink-org/dispatchsim/internal/domain/bundle"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// combinatorial repeatedly generates candidate bundles from the pending
// orders and greedily commits the cheapest (cost, -size) (bundle, courier)
// pair until either side runs out or no feasible pair remains, at which
// point it falls back to per-order nearest-courier placement.
func (e *Engine) combinatorial(ctx context.Context, eligible []*eligibility, pending []*model.Order, currentTime model.Minutes) (Result, error) {
	var result Result

	remaining := append([]*model.Order(nil), pending...)

	for len(eligible) > 0 && len(remaining) > 0 {
		candidates := bundle.Generate(remaining, e.cfg.Bundle)

		best, bestCost, err := e.bestBundleBid(ctx, eligible, candidates, currentTime)
		if err != nil {
			return Result{}, err
		}

		if best == nil || math.IsInf(bestCost, 1) {
			placed, err := e.combinatorialFallback(ctx, &eligible, &remaining, &result, currentTime)
			if err != nil {
				return Result{}, err
			}

			if !placed {
				break
			}

			continue
		}

		marginal := best.bundle.TotalDistance - best.courier.existingDistance

		_ = commitBundle(best.courier.courier, best.bundle, best.courier.existingDistance)
		best.courier.existingDistance = best.bundle.TotalDistance

		if len(best.bundle.Route) > 0 {
			travelMin, err := e.dist.TravelTimeMin(ctx, best.courier.courier.Location, best.bundle.Route[0].Location)
			if err != nil {
				return Result{}, err
			}

			best.courier.courier.ETA = currentTime + model.Minutes(travelMin) + model.Minutes(e.cfg.ServiceTimeMins)
		}

		result.DistanceAdded += marginal

		assignedIDs := make(map[string]bool, len(best.bundle.Orders))

		for _, o := range best.bundle.Orders {
			assignedIDs[o.ID] = true
			result.AssignedOrderIDs = append(result.AssignedOrderIDs, o.ID)
		}

		remaining = filterOutAssigned(remaining, assignedIDs)

		if best.courier.courier.AtCapacity() {
			eligible = removeEligible(eligible, best.courier)
		}
	}

	return result, nil
}

type bundleBid struct {
	courier *eligibility
	bundle  model.Bundle
}

// bestBundleBid evaluates every (bundle, eligible courier) pair and
// returns the one with the smallest (cost, -size), the combinatorial
// strategy's driver-minimizing tie-break.
func (e *Engine) bestBundleBid(ctx context.Context, eligible []*eligibility, candidates []model.Bundle, currentTime model.Minutes) (*bundleBid, float64, error) {
	var all []bidCandidate

	for _, cand := range candidates {
		for _, el := range eligible {
			if !el.courier.HasCapacityFor(len(cand.Orders)) {
				continue
			}

			combined := append(append([]*model.Order(nil), el.courier.AssignedOrders...), cand.Orders...)

			pickedUp := make(map[string]bool, len(combined))
			for _, o := range el.courier.AssignedOrders {
				if o.State() == model.OrderPickedUp {
					pickedUp[o.ID] = true
				}
			}

			route, distance, err := e.oracle.Solve(ctx, el.courier.Location, combined, pickedUp)
			if err != nil {
				return nil, 0, err
			}

			// The bundle carries the full combined order set so Bid's
			// temporal walk checks every dropoff; normalisation and the
			// tie-break key on the candidate's size, tracked separately.
			full := model.Bundle{Orders: combined, Route: route, TotalDistance: distance}

			c, err := e.costFn.Bid(ctx, el.courier, full, currentTime, el.existingDistance)
			if err != nil {
				return nil, 0, err
			}

			if math.IsInf(c, 1) {
				continue
			}

			all = append(all, bidCandidate{courier: el, bundle: full, size: len(cand.Orders), cost: c})
		}
	}

	if len(all) == 0 {
		return nil, math.Inf(1), nil
	}

	sortByCostThenSize(all)

	winner := all[0]

	return &bundleBid{courier: winner.courier, bundle: winner.bundle}, winner.cost, nil
}

// commitBundle applies a won bundle bid to the courier's assignment state.
func commitBundle(courier *model.Courier, full model.Bundle, _ float64) error {
	for _, o := range full.Orders {
		if o.State() == model.OrderPending {
			if err := o.MarkAssigned(); err != nil {
				return err
			}
		}
	}

	courier.AssignedOrders = full.Orders
	courier.Route = full.Route
	courier.NextStopIndex = 0
	courier.DeriveState()

	return nil
}

// combinatorialFallback attempts to place one pending order onto (a) the
// nearest IDLE courier via a bare route, else (b) the nearest ACCRUING
// courier with spare capacity via a re-plan. It does not apply the
// bundle-size tie-break the main loop uses, preserved as observed.
func (e *Engine) combinatorialFallback(ctx context.Context, eligible *[]*eligibility, remaining *[]*model.Order, result *Result, currentTime model.Minutes) (bool, error) {
	for _, order := range *remaining {
		idx, pickupKm, travelMin, ok, err := nearestIdle(ctx, e, *eligible, order)
		if err == nil && ok {
			chosen := (*eligible)[idx]

			dropoffKm, err := e.dist.DistanceKm(ctx, order.Pickup, order.Dropoff)
			if err != nil {
				return false, err
			}

			assignSimpleRoute(chosen.courier, order, currentTime, travelMin, e.cfg.ServiceTimeMins)
			chosen.existingDistance = pickupKm + dropoffKm
			result.DistanceAdded += pickupKm + dropoffKm
			result.AssignedOrderIDs = append(result.AssignedOrderIDs, order.ID)

			if chosen.courier.AtCapacity() {
				*eligible = removeEligible(*eligible, chosen)
			}

			*remaining = filterOutAssigned(*remaining, map[string]bool{order.ID: true})

			return true, nil
		}
		if err != nil {
			return false, err
		}

		// (b) nearest ACCRUING courier with capacity, via re-plan.
		accIdx, accDistance, accRoute, ok, err := nearestAccruingReplan(ctx, e, *eligible, order)
		if err != nil {
			return false, err
		}

		if ok {
			chosen := (*eligible)[accIdx]
			_ = order.MarkAssigned()
			chosen.courier.AssignedOrders = append(chosen.courier.AssignedOrders, order)
			chosen.courier.Route = accRoute
			chosen.courier.NextStopIndex = 0
			chosen.courier.DeriveState()

			marginal := accDistance - chosen.existingDistance
			chosen.existingDistance = accDistance
			result.DistanceAdded += marginal
			result.AssignedOrderIDs = append(result.AssignedOrderIDs, order.ID)

			if chosen.courier.AtCapacity() {
				*eligible = removeEligible(*eligible, chosen)
			}

			*remaining = filterOutAssigned(*remaining, map[string]bool{order.ID: true})

			return true, nil
		}
	}

	return false, nil
}

func nearestAccruingReplan(ctx context.Context, e *Engine, eligible []*eligibility, order *model.Order) (int, float64, []model.Stop, bool, error) {
	bestIdx := -1
	bestDistance := math.Inf(1)
	var bestRoute []model.Stop

	for i, el := range eligible {
		if el.courier.State != model.CourierAccruing || !el.courier.HasCapacityFor(1) {
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
			return 0, 0, nil, false, err
		}

		if distance < bestDistance {
			bestIdx = i
			bestDistance = distance
			bestRoute = route
		}
	}

	if bestIdx == -1 {
		return 0, 0, nil, false, nil
	}

	return bestIdx, bestDistance, bestRoute, true, nil
}

func filterOutAssigned(orders []*model.Order, assigned map[string]bool) []*model.Order {
	out := orders[:0]

	for _, o := range orders {
		if !assigned[o.ID] {
			out = append(out, o)
		}
	}

	return out
}
