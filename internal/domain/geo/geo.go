// Package geo provides distance and travel-time lookups between locations,
// behind a single interface with two implementations: a pure great-circle
// calculation and a cached road-network façade. Upper layers stay oblivious
// to which is active, per the external GeoDist contract.
package geo

import (
	"context"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// Distance exposes the distance/travel-time contract the dispatch core
// depends on. Both Haversine and RoadDistance satisfy it.
type Distance interface {
	// DistanceKm returns the distance in kilometers between a and b.
	DistanceKm(ctx context.Context, a, b model.Location) (float64, error)
	// TravelTimeMin returns the travel time in minutes between a and b.
	TravelTimeMin(ctx context.Context, a, b model.Location) (float64, error)
}
