// Package tsp solves the precedence-constrained routing problem each
// dispatch bid needs: given a courier's current location and a set of
// orders (some already picked up), find the minimum-distance stop sequence
// that visits every order's pickup before its dropoff.
//
// The solver is a Held-Karp dynamic program over bitmasks, the same style
// as a classic Hamiltonian-path DP, specialized for an open path (no
// return to the start) and for a per-stop prerequisite instead of a full
// cycle closure.
package tsp

import (
	"context"
	"errors"
	"math"
	"math/bits"

	"github.com/shortlink-org/dispatchsim/internal/domain/geo"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// MaxStops bounds the number of stops (2x orders) the DP will accept,
// mirroring the Held-Karp exact solver's size guard this package is
// grounded on. Bundle size is capped well below this by MAX_BUNDLE_SIZE
// and courier capacity, so the guard should never trip in practice.
const MaxStops = 20

// ErrTooManyStops is returned when the orders passed in expand to more
// than MaxStops stops (a dropoff per order plus a pickup per order not yet
// picked up).
var ErrTooManyStops = errors.New("tsp: too many stops for exact solver")

// Oracle solves the precedence-constrained routing problem, caching
// results for the lifetime of a single dispatch call.
type Oracle struct {
	dist  geo.Distance
	cache map[string]cacheEntry
}

type cacheEntry struct {
	route    []model.Stop
	distance float64
}

// NewOracle constructs an Oracle bound to a distance backend.
func NewOracle(dist geo.Distance) *Oracle {
	return &Oracle{dist: dist, cache: make(map[string]cacheEntry)}
}

// ClearCache drops every cached result. Must be called at the start of
// each dispatch call; the cache is scoped to a single call because
// couriers move between calls and a stale cache entry would return a
// route anchored at a location the courier has already left.
func (o *Oracle) ClearCache() {
	o.cache = make(map[string]cacheEntry)
}

// Solve returns the minimum-distance stop sequence starting at start and
// visiting, for each order in orders, its pickup (skipped if the order id
// is in pickedUp) before its dropoff, plus the total distance.
func (o *Oracle) Solve(ctx context.Context, start model.Location, orders []*model.Order, pickedUp map[string]bool) ([]model.Stop, float64, error) {
	if len(orders) == 0 {
		return nil, 0, nil
	}

	key := cacheKey(start, orders, pickedUp)
	if cached, ok := o.cache[key]; ok {
		return cached.route, cached.distance, nil
	}

	stops, prereq, err := buildStops(orders, pickedUp)
	if err != nil {
		return nil, 0, err
	}

	route, distance, err := solveHeldKarp(ctx, o.dist, start, stops, prereq)
	if err != nil {
		return nil, 0, err
	}

	o.cache[key] = cacheEntry{route: route, distance: distance}

	return route, distance, nil
}

// buildStops expands an order set into the stop list the DP operates on:
// a pickup stop for every order not already picked up, and a dropoff stop
// for every order, with prereq[dropoffIndex] pointing at its pickup's
// index (or -1 if no prerequisite remains).
func buildStops(orders []*model.Order, pickedUp map[string]bool) ([]model.Stop, []int, error) {
	n := 0

	for _, o := range orders {
		n++ // dropoff

		if !pickedUp[o.ID] {
			n++ // pickup
		}
	}

	if n > MaxStops {
		return nil, nil, errors.Join(ErrTooManyStops, errors.New("reduce bundle size or capacity"))
	}

	stops := make([]model.Stop, 0, n)
	prereq := make([]int, 0, n)
	pickupIndex := make(map[string]int, len(orders))

	for _, o := range orders {
		if !pickedUp[o.ID] {
			stops = append(stops, model.Stop{Location: o.Pickup, Kind: model.StopPickup, OrderID: o.ID})
			prereq = append(prereq, -1)
			pickupIndex[o.ID] = len(stops) - 1
		}
	}

	for _, o := range orders {
		stops = append(stops, model.Stop{Location: o.Dropoff, Kind: model.StopDropoff, OrderID: o.ID})

		if idx, ok := pickupIndex[o.ID]; ok {
			prereq = append(prereq, idx)
		} else {
			prereq = append(prereq, -1)
		}
	}

	return stops, prereq, nil
}

func cacheKey(start model.Location, orders []*model.Order, pickedUp map[string]bool) string {
	ids := make([]string, len(orders))
	pickedIDs := make([]string, 0, len(pickedUp))

	for i, o := range orders {
		ids[i] = o.ID
	}

	for id, v := range pickedUp {
		if v {
			pickedIDs = append(pickedIDs, id)
		}
	}

	return start.RoundedKey() + "#" + model.OrderSetSignature(ids) + "#" + model.OrderSetSignature(pickedIDs)
}

// solveHeldKarp runs the DP. dp[mask*n+j] is the minimum distance to visit
// exactly the stops in mask, ending at stop j; parent[mask*n+j] is the
// predecessor stop in that optimal transition (-1 at a base case starting
// directly from start).
func solveHeldKarp(ctx context.Context, dist geo.Distance, start model.Location, stops []model.Stop, prereq []int) ([]model.Stop, float64, error) {
	n := len(stops)

	distFromStart := make([]float64, n)
	distBetween := make([]float64, n*n)

	for i := range stops {
		d, err := dist.DistanceKm(ctx, start, stops[i].Location)
		if err != nil {
			return nil, 0, err
		}

		distFromStart[i] = d

		for j := range stops {
			if i == j {
				continue
			}

			d, err := dist.DistanceKm(ctx, stops[i].Location, stops[j].Location)
			if err != nil {
				return nil, 0, err
			}

			distBetween[i*n+j] = d
		}
	}

	totalMasks := 1 << uint(n)
	dp := make([]float64, totalMasks*n)
	parent := make([]int, totalMasks*n)

	for idx := range dp {
		dp[idx] = math.Inf(1)
		parent[idx] = -1
	}

	masksBySize := make([][]int, n+1)
	for mask := 0; mask < totalMasks; mask++ {
		size := bits.OnesCount(uint(mask))
		if size >= 1 {
			masksBySize[size] = append(masksBySize[size], mask)
		}
	}

	for i := range stops {
		if prereq[i] == -1 {
			mask := 1 << uint(i)
			dp[mask*n+i] = distFromStart[i]
		}
	}

	for size := 2; size <= n; size++ {
		for _, mask := range masksBySize[size] {
			for j := 0; j < n; j++ {
				jbit := 1 << uint(j)
				if mask&jbit == 0 {
					continue
				}

				if req := prereq[j]; req != -1 && mask&(1<<uint(req)) == 0 {
					continue
				}

				prevMask := mask ^ jbit
				if prevMask == 0 {
					continue
				}

				best := math.Inf(1)
				argk := -1

				for k := 0; k < n; k++ {
					kbit := 1 << uint(k)
					if prevMask&kbit == 0 {
						continue
					}

					base := dp[prevMask*n+k]
					if math.IsInf(base, 1) {
						continue
					}

					cand := base + distBetween[k*n+j]
					if cand < best {
						best = cand
						argk = k
					}
				}

				if argk >= 0 {
					dp[mask*n+j] = best
					parent[mask*n+j] = argk
				}
			}
		}
	}

	all := totalMasks - 1
	bestCost := math.Inf(1)
	bestLast := -1

	for j := 0; j < n; j++ {
		if dp[all*n+j] < bestCost {
			bestCost = dp[all*n+j]
			bestLast = j
		}
	}

	if bestLast < 0 || math.IsInf(bestCost, 1) {
		return nil, 0, errors.New("tsp: no feasible precedence-respecting route")
	}

	order := make([]int, n)
	mask := all
	cur := bestLast

	for idx := n - 1; idx >= 0; idx-- {
		order[idx] = cur
		prev := parent[mask*n+cur]
		mask ^= 1 << uint(cur)
		cur = prev
	}

	route := make([]model.Stop, n)
	for i, stopIdx := range order {
		route[i] = stops[stopIdx]
	}

	return route, bestCost, nil
}
