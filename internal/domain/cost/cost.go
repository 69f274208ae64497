// Package cost implements the marginal-cost bid function the dispatch
// strategies use to score a candidate bundle against a courier.
package cost

import (
	"context"
	"fmt"
	"math"

	"github.com/shortlink-org/dispatchsim/internal/domain/geo"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// Config holds the cost function's tunables.
type Config struct {
	ServiceTimeMins        float64
	MaxDeliveryTimeMins    float64
	WDistance              float64
	WDelay                 float64
	BundleDiscountPerOrder float64
	PenaltyMotorbike       float64
	PenaltyBike            float64
	PenaltyCar             float64

	// DelayCapMinsPerOrder caps the per-order contribution to the delay
	// accumulator.
	DelayCapMinsPerOrder float64
}

// Infeasible is the score returned for a bid that violates capacity or the
// hard SLA cutoff.
var Infeasible = math.Inf(1)

// Function scores a candidate bundle for a courier.
type Function struct {
	dist geo.Distance
	cfg  Config
}

// NewFunction constructs a cost Function bound to a distance backend.
func NewFunction(dist geo.Distance, cfg Config) *Function {
	return &Function{dist: dist, cfg: cfg}
}

// Bid scores bundle for courier at currentTime, given the courier's
// existing route distance existingDistance (0 if idle). bundle.Orders must
// carry the FULL order set the route was planned over -- the courier's
// already-assigned orders plus the newly proposed ones -- so the temporal
// walk applies the SLA cutoff and delay accumulation to every dropoff on
// the route, not just the new orders'. Per-order normalisation and the
// bundle discount apply to the newly proposed orders only. Returns
// math.Inf(1) if the bundle is infeasible.
func (f *Function) Bid(ctx context.Context, courier *model.Courier, bundle model.Bundle, currentTime model.Minutes, existingDistance float64) (float64, error) {
	// 1. Capacity.
	newOrders := countNewOrders(courier, bundle)
	if newOrders == 0 || !courier.HasCapacityFor(newOrders) {
		return math.Inf(1), nil
	}

	// 2. Temporal walk + delay accumulation + SLA cutoff.
	totalDelay := 0.0
	cursor := courier.Location
	clock := currentTime

	for _, stop := range bundle.Route {
		travelMin, err := f.dist.TravelTimeMin(ctx, cursor, stop.Location)
		if err != nil {
			return 0, err
		}

		clock += model.Minutes(travelMin) + model.Minutes(f.cfg.ServiceTimeMins)
		cursor = stop.Location

		if stop.Kind != model.StopDropoff {
			continue
		}

		order := findOrder(bundle.Orders, stop.OrderID)
		if order == nil {
			return 0, fmt.Errorf("cost: route stop references order %s missing from bundle", stop.OrderID)
		}

		actualDuration := float64(clock - order.CreatedTime)

		// 3. Hard SLA cutoff.
		if actualDuration > f.cfg.MaxDeliveryTimeMins {
			return math.Inf(1), nil
		}

		// 4. Delay accumulator, capped per order.
		delay := math.Max(0, actualDuration-order.EstimatedDeliveryTimeMin)
		if delay > f.cfg.DelayCapMinsPerOrder {
			delay = f.cfg.DelayCapMinsPerOrder
		}

		totalDelay += delay
	}

	// 5. Marginal distance.
	marginal := bundle.TotalDistance - existingDistance

	// 6. Base score.
	score := f.cfg.WDistance*marginal + f.cfg.WDelay*totalDelay

	// 7. Vehicle penalty.
	score *= vehiclePenalty(courier.Vehicle, f.cfg)

	// 8. Per-order normalisation, over the newly proposed orders.
	score /= float64(newOrders)

	// 9. Bundle discount.
	score *= 1 - f.cfg.BundleDiscountPerOrder*float64(newOrders-1)

	return score, nil
}

func vehiclePenalty(v model.VehicleType, cfg Config) float64 {
	switch v {
	case model.VehicleMotorbike:
		return cfg.PenaltyMotorbike
	case model.VehicleBike:
		return cfg.PenaltyBike
	case model.VehicleCar:
		return cfg.PenaltyCar
	default:
		return 1.0
	}
}

func findOrder(orders []*model.Order, id string) *model.Order {
	for _, o := range orders {
		if o.ID == id {
			return o
		}
	}

	return nil
}

// countNewOrders returns how many of bundle.Orders are not already part of
// the courier's assigned orders, since a re-plan bundle may include orders
// the courier already carries.
func countNewOrders(courier *model.Courier, bundle model.Bundle) int {
	existing := make(map[string]bool, len(courier.AssignedOrders))
	for _, o := range courier.AssignedOrders {
		existing[o.ID] = true
	}

	count := 0

	for _, o := range bundle.Orders {
		if !existing[o.ID] {
			count++
		}
	}

	return count
}
