package geo

import (
	"context"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// Haversine is the great-circle Distance implementation: no I/O, no cache,
// used both as the default backend and as RoadDistance's fallback.
type Haversine struct {
	// AvgSpeedKmh is the fleet-average speed used to derive travel time
	// from distance (AVG_SPEED_KMH in the configuration surface).
	AvgSpeedKmh float64
}

// NewHaversine constructs a Haversine backend with the given fallback
// average speed.
func NewHaversine(avgSpeedKmh float64) *Haversine {
	return &Haversine{AvgSpeedKmh: avgSpeedKmh}
}

// DistanceKm returns the great-circle distance between a and b.
func (h *Haversine) DistanceKm(_ context.Context, a, b model.Location) (float64, error) {
	return a.HaversineKm(b), nil
}

// TravelTimeMin returns distance / AVG_SPEED_KMH * 60.
func (h *Haversine) TravelTimeMin(ctx context.Context, a, b model.Location) (float64, error) {
	km, err := h.DistanceKm(ctx, a, b)
	if err != nil {
		return 0, err
	}

	return distanceToMinutes(km, h.AvgSpeedKmh), nil
}

func distanceToMinutes(km, avgSpeedKmh float64) float64 {
	if avgSpeedKmh <= 0 {
		return 0
	}

	return km / avgSpeedKmh * 60
}
