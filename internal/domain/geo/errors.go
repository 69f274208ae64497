package geo

import "errors"

// Errors surfaced by the road-distance façade. DistanceKm and
// TravelTimeMin never return them: on failure they return a
// Haversine-derived fallback value instead. Prewarm and HealthCheck do
// return them to their caller.
var (
	ErrRoadServiceUnavailable = errors.New("road distance service unavailable")
	ErrNoRouteFound           = errors.New("no route found between points")
	ErrInvalidResponse        = errors.New("invalid road distance service response")
	ErrTableTooLarge          = errors.New("location set exceeds bulk table size limit")
)
