package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

const (
	cacheBufferItems  = 64
	roadCacheCostUnit = 1
	maxTableLocations = 100
)

type cachedLeg struct {
	DistanceKm  float64
	DurationMin float64
}

// RoadDistanceConfig configures the RoadDistance façade.
type RoadDistanceConfig struct {
	BaseURL string
	Timeout time.Duration

	// DetourFactor multiplies the Haversine distance when falling back,
	// approximating the extra distance a real road network adds over a
	// straight line (HAVERSINE_FALLBACK_MULTIPLIER).
	DetourFactor float64

	// AvgSpeedKmh backs the Haversine fallback's travel-time derivation.
	AvgSpeedKmh float64

	// CacheEntries bounds the number of (leg) entries retained.
	CacheEntries int64
}

// RoadDistance queries an external routing service for distance/duration
// and caches results keyed on rounded (origin, destination) coordinates,
// falling back to Haversine x DetourFactor whenever the service is slow,
// unreachable, or returns something unusable. Upper layers never see the
// failure, only degraded precision.
type RoadDistance struct {
	cfg        RoadDistanceConfig
	httpClient *http.Client
	cache      *ristretto.Cache[string, cachedLeg]
	fallback   *Haversine

	mu sync.Mutex
}

// NewRoadDistance constructs a RoadDistance façade with a bounded cache.
func NewRoadDistance(cfg RoadDistanceConfig) (*RoadDistance, error) {
	entries := cfg.CacheEntries
	if entries <= 0 {
		entries = 10_000
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, cachedLeg]{
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("road distance cache: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &RoadDistance{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:    cache,
		fallback: NewHaversine(cfg.AvgSpeedKmh),
	}, nil
}

// Close releases the cache's background goroutines.
func (r *RoadDistance) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

func (r *RoadDistance) cacheKey(a, b model.Location) string {
	// Symmetric: (a, b) and (b, a) must hit the same entry.
	ka, kb := a.RoundedKey(), b.RoundedKey()
	if ka > kb {
		ka, kb = kb, ka
	}

	return ka + "|" + kb
}

// DistanceKm returns the road distance, querying the service on a cache
// miss and degrading to Haversine x DetourFactor on any failure.
func (r *RoadDistance) DistanceKm(ctx context.Context, a, b model.Location) (float64, error) {
	leg, err := r.leg(ctx, a, b)
	if err != nil {
		return r.fallbackDistance(ctx, a, b)
	}

	return leg.DistanceKm, nil
}

// TravelTimeMin returns the road travel time, with the same fallback
// behavior as DistanceKm.
func (r *RoadDistance) TravelTimeMin(ctx context.Context, a, b model.Location) (float64, error) {
	leg, err := r.leg(ctx, a, b)
	if err != nil {
		return r.fallback.TravelTimeMin(ctx, a, b)
	}

	return leg.DurationMin, nil
}

func (r *RoadDistance) fallbackDistance(ctx context.Context, a, b model.Location) (float64, error) {
	km, err := r.fallback.DistanceKm(ctx, a, b)
	if err != nil {
		return 0, err
	}

	factor := r.cfg.DetourFactor
	if factor <= 0 {
		factor = 1.4
	}

	return km * factor, nil
}

func (r *RoadDistance) leg(ctx context.Context, a, b model.Location) (cachedLeg, error) {
	key := r.cacheKey(a, b)

	if cached, found := r.cache.Get(key); found {
		return cached, nil
	}

	leg, err := r.fetchLeg(ctx, a, b)
	if err != nil {
		return cachedLeg{}, err
	}

	r.cache.Set(key, leg, roadCacheCostUnit)

	return leg, nil
}

type osrmRouteResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

func (r *RoadDistance) fetchLeg(ctx context.Context, a, b model.Location) (cachedLeg, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		r.cfg.BaseURL, a.Longitude(), a.Latitude(), b.Longitude(), b.Latitude())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return cachedLeg{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return cachedLeg{}, fmt.Errorf("%w: %w", ErrRoadServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cachedLeg{}, fmt.Errorf("%w: status %d", ErrRoadServiceUnavailable, resp.StatusCode)
	}

	var parsed osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return cachedLeg{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return cachedLeg{}, ErrNoRouteFound
	}

	route := parsed.Routes[0]

	return cachedLeg{
		DistanceKm:  route.Distance / 1000,
		DurationMin: route.Duration / 60,
	}, nil
}

type osrmTableResponse struct {
	Code      string      `json:"code"`
	Distances [][]float64 `json:"distances"` // meters
	Durations [][]float64 `json:"durations"` // seconds
}

// Prewarm bulk-populates the cache for every pair in locations via a
// single table-API call, when the set is small enough. It is an
// optimization only: a failed call or an oversized set leaves the cache
// untouched and is reported through the returned error, and subsequent
// DistanceKm/TravelTimeMin calls fall back individually.
func (r *RoadDistance) Prewarm(ctx context.Context, locations []model.Location) error {
	if len(locations) > maxTableLocations {
		return fmt.Errorf("%w: %d locations", ErrTableTooLarge, len(locations))
	}

	if len(locations) < 2 {
		return nil
	}

	coords := make([]string, len(locations))
	for i, loc := range locations {
		coords[i] = fmt.Sprintf("%f,%f", loc.Longitude(), loc.Latitude())
	}

	coordStr := coords[0]
	for _, c := range coords[1:] {
		coordStr += ";" + c
	}

	url := fmt.Sprintf("%s/table/v1/driving/%s?annotations=distance,duration", r.cfg.BaseURL, coordStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build table request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRoadServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRoadServiceUnavailable, resp.StatusCode)
	}

	var table osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if table.Code != "Ok" {
		return ErrNoRouteFound
	}

	if len(table.Distances) != len(locations) || len(table.Durations) != len(locations) {
		return ErrInvalidResponse
	}

	for i := range locations {
		if len(table.Distances[i]) != len(locations) || len(table.Durations[i]) != len(locations) {
			return ErrInvalidResponse
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range locations {
		for j := range locations {
			if i == j {
				continue
			}

			key := r.cacheKey(locations[i], locations[j])
			if _, found := r.cache.Get(key); found {
				continue
			}

			r.cache.Set(key, cachedLeg{
				DistanceKm:  table.Distances[i][j] / 1000,
				DurationMin: table.Durations[i][j] / 60,
			}, roadCacheCostUnit)
		}
	}

	return nil
}

// HealthCheck reports whether the road distance service is reachable by
// fetching one fixed leg and returning its error. It neither touches the
// cache nor falls back to Haversine; nothing in the CLI calls it.
func (r *RoadDistance) HealthCheck(ctx context.Context) error {
	origin := model.MustNewLocation(52.5200, 13.4050)
	destination := model.MustNewLocation(52.5300, 13.4150)

	_, err := r.fetchLeg(ctx, origin, destination)

	return err
}
