// Package dispatch implements the four order-to-courier matching
// strategies: baseline (greedy nearest), sequential (per-order bidding),
// combinatorial (bundle bidding), and adaptive (load-based switch between
// the latter two).
package dispatch

import (
	"context"
	"sort"

	"github.com/shortlink-org/dispatchsim/internal/domain/bundle"
	"github.com/shortlink-org/dispatchsim/internal/domain/cost"
	"github.com/shortlink-org/dispatchsim/internal/domain/geo"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
	"github.com/shortlink-org/dispatchsim/internal/domain/tsp"
)

// Strategy is one of the four stable strategy name strings.
type Strategy string

const (
	Baseline      Strategy = "baseline"
	Sequential    Strategy = "sequential"
	Combinatorial Strategy = "combinatorial"
	Adaptive      Strategy = "adaptive"
)

// Config holds the dispatch engine's tunables, sourced from the
// configuration surface.
type Config struct {
	ServiceTimeMins         float64
	HighLoadThreshold       float64
	CombinatorialWindowMins float64
	Bundle                  bundle.Config
}

// Result is what a single dispatch call produces: the ids of orders
// assigned this call, the distance to add to the fleet total (full route
// length for baseline, marginal distance for every other strategy), and
// the strategy that actually ran -- for adaptive, whichever of
// sequential/combinatorial the load check resolved to, so dispatch logs
// can be tagged with the real choice.
type Result struct {
	AssignedOrderIDs []string
	DistanceAdded    float64
	Strategy         Strategy
}

// Engine runs one of the four strategies against a snapshot of couriers
// and pending orders.
type Engine struct {
	dist   geo.Distance
	oracle *tsp.Oracle
	costFn *cost.Function
	cfg    Config
}

// NewEngine constructs a dispatch Engine.
func NewEngine(dist geo.Distance, oracle *tsp.Oracle, costFn *cost.Function, cfg Config) *Engine {
	return &Engine{dist: dist, oracle: oracle, costFn: costFn, cfg: cfg}
}

// eligibility classifies a courier for one dispatch call.
type eligibility struct {
	courier          *model.Courier
	existingDistance float64
	existingRoute    []model.Stop
}

// Dispatch clears the TSP cache (scoped to a single dispatch call, per the
// shared-resource policy) and runs the requested strategy.
func (e *Engine) Dispatch(ctx context.Context, strategy Strategy, couriers []*model.Courier, pending []*model.Order, currentTime model.Minutes, recentOrderTimes []model.Minutes) (Result, error) {
	e.oracle.ClearCache()

	eligible, err := e.computeEligible(ctx, couriers, currentTime)
	if err != nil {
		return Result{}, err
	}

	resolved := strategy
	if strategy == Adaptive {
		resolved = e.resolveAdaptive(currentTime, recentOrderTimes)
	}

	var result Result

	switch resolved {
	case Baseline:
		result, err = e.baseline(ctx, eligible, pending, currentTime)
	case Combinatorial:
		result, err = e.combinatorial(ctx, eligible, pending, currentTime)
	default:
		result, err = e.sequential(ctx, eligible, pending, currentTime)
	}

	if err != nil {
		return Result{}, err
	}

	result.Strategy = resolved

	return result, nil
}

func (e *Engine) computeEligible(ctx context.Context, couriers []*model.Courier, currentTime model.Minutes) ([]*eligibility, error) {
	var out []*eligibility

	for _, c := range couriers {
		switch c.State {
		case model.CourierDelivering:
			continue
		case model.CourierIdle:
			if c.AvailableFrom > currentTime {
				continue
			}
		case model.CourierAccruing:
			if c.AtCapacity() {
				continue
			}
		}

		route, dist, err := e.existingRoute(ctx, c)
		if err != nil {
			return nil, err
		}

		out = append(out, &eligibility{courier: c, existingDistance: dist, existingRoute: route})
	}

	return out, nil
}

func (e *Engine) existingRoute(ctx context.Context, c *model.Courier) ([]model.Stop, float64, error) {
	if len(c.AssignedOrders) == 0 {
		return nil, 0, nil
	}

	pickedUp := make(map[string]bool, len(c.AssignedOrders))
	for _, o := range c.AssignedOrders {
		if o.State() == model.OrderPickedUp {
			pickedUp[o.ID] = true
		}
	}

	return e.oracle.Solve(ctx, c.Location, c.AssignedOrders, pickedUp)
}

// resolveAdaptive computes order_rate over the trailing window and
// selects combinatorial when load is high, sequential otherwise.
func (e *Engine) resolveAdaptive(currentTime model.Minutes, recentOrderTimes []model.Minutes) Strategy {
	windowStart := currentTime - model.Minutes(e.cfg.CombinatorialWindowMins)

	count := 0

	for _, t := range recentOrderTimes {
		if t > windowStart {
			count++
		}
	}

	rate := float64(count) / e.cfg.CombinatorialWindowMins
	if rate >= e.cfg.HighLoadThreshold {
		return Combinatorial
	}

	return Sequential
}

// assignSimpleRoute builds a bare pickup->dropoff route for a single order
// and applies it to an IDLE courier, the shape every fallback path and the
// baseline strategy use.
func assignSimpleRoute(courier *model.Courier, order *model.Order, currentTime model.Minutes, travelToPickupMin, serviceTimeMins float64) {
	_ = order.MarkAssigned()

	courier.AssignedOrders = append(courier.AssignedOrders, order)
	courier.Route = []model.Stop{
		{Location: order.Pickup, Kind: model.StopPickup, OrderID: order.ID},
		{Location: order.Dropoff, Kind: model.StopDropoff, OrderID: order.ID},
	}
	courier.NextStopIndex = 0
	courier.ETA = currentTime + model.Minutes(travelToPickupMin) + model.Minutes(serviceTimeMins)
	courier.DeriveState()
}

// sortByCostThenSize orders candidate bids by (cost, -size) so ties prefer
// larger candidate bundles, the combinatorial strategy's driver-minimizing
// tie-break. size is the proposed bundle's order count, not the courier's
// full combined set.
func sortByCostThenSize(bids []bidCandidate) {
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].cost != bids[j].cost {
			return bids[i].cost < bids[j].cost
		}

		return bids[i].size > bids[j].size
	})
}

type bidCandidate struct {
	courier *eligibility
	bundle  model.Bundle
	size    int
	cost    float64
}
