// Package bundle generates candidate order bundles via recursive spatial
// max-cut, producing O(n log n) candidates instead of enumerating every
// subset of pending orders.
package bundle

import (
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// Config holds the generator's tunables.
type Config struct {
	// MaxBundleSize is the largest bundle the generator will emit as an
	// intermediate group.
	MaxBundleSize int
	// MaxPickupDistanceKm bounds which pairs are force-emitted regardless
	// of what the recursive bipartition produced.
	MaxPickupDistanceKm float64
}

const maxRecursionDepth = 5

// Generate returns a deduplicated set of candidate bundles, each of size
// 1..MaxBundleSize, built from orders in the order given (output order is
// deterministic for a given input ordering, not otherwise meaningful).
func Generate(orders []*model.Order, cfg Config) []model.Bundle {
	if len(orders) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []model.Bundle

	emit := func(group []*model.Order) {
		if len(group) == 0 || len(group) > cfg.MaxBundleSize {
			return
		}

		sig := signatureOf(group)
		if seen[sig] {
			return
		}

		seen[sig] = true
		out = append(out, model.Bundle{Orders: append([]*model.Order(nil), group...)})
	}

	dist := pairwisePickupDistance(orders)

	emit(orders)
	bipartition(orders, dist, 0, cfg.MaxBundleSize, emit)

	for i := 0; i < len(orders); i++ {
		for j := i + 1; j < len(orders); j++ {
			if dist[key(orders[i].ID, orders[j].ID)] <= cfg.MaxPickupDistanceKm {
				emit([]*model.Order{orders[i], orders[j]})
			}
		}
	}

	for _, o := range orders {
		emit([]*model.Order{o})
	}

	return out
}

func signatureOf(group []*model.Order) string {
	ids := make([]string, len(group))
	for i, o := range group {
		ids[i] = o.ID
	}

	return model.OrderSetSignature(ids)
}

func key(a, b string) string {
	if a < b {
		return a + "|" + b
	}

	return b + "|" + a
}

// pairwisePickupDistance computes the pickup-to-pickup distance matrix
// once, keyed by unordered id pair.
func pairwisePickupDistance(orders []*model.Order) map[string]float64 {
	dist := make(map[string]float64, len(orders)*len(orders))

	for i := 0; i < len(orders); i++ {
		for j := i + 1; j < len(orders); j++ {
			d := orders[i].Pickup.HaversineKm(orders[j].Pickup)
			dist[key(orders[i].ID, orders[j].ID)] = d
		}
	}

	return dist
}

// bipartition implements the greedy 0.5-approximate max-cut: each order
// joins the side whose cut gain is larger, i.e. the side it is FARTHER
// from ends up across the cut, which keeps spatially close orders together
// on the same side. The two halves are then emitted (if within size) and
// any half still over the cap is recursed into, up to the depth cap.
func bipartition(group []*model.Order, dist map[string]float64, depth int, maxSize int, emit func([]*model.Order)) {
	if len(group) <= 1 || len(group) <= maxSize || depth >= maxRecursionDepth {
		return
	}

	var groupA, groupB []*model.Order

	for _, o := range group {
		distToA := sumDistanceTo(groupA, o, dist)
		distToB := sumDistanceTo(groupB, o, dist)

		// Placing o in A cuts every o<->B edge; placing it in B cuts every
		// o<->A edge. Pick the larger cut.
		if distToB > distToA {
			groupA = append(groupA, o)
		} else {
			groupB = append(groupB, o)
		}
	}

	emit(groupA)
	emit(groupB)

	bipartition(groupA, dist, depth+1, maxSize, emit)
	bipartition(groupB, dist, depth+1, maxSize, emit)
}

func sumDistanceTo(group []*model.Order, target *model.Order, dist map[string]float64) float64 {
	total := 0.0

	for _, o := range group {
		total += dist[key(o.ID, target.ID)]
	}

	return total
}
