// Package config assembles the dispatch simulator's Config from viper,
// following the same SetDefault-then-Get shape used for every external
// client constructor in this codebase.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// Config holds every tunable from the configuration surface, resolved
// once at startup.
type Config struct {
	StartTime              model.Minutes
	SimulationEndTime      model.Minutes
	SimulationSpeedMinutes float64

	AvgSpeedKmh     float64
	ServiceTimeMins float64

	HighLoadThreshold       float64
	CombinatorialWindowMins float64

	WDistance float64
	WDelay    float64

	BundleDiscountPerOrder float64

	PenaltyMotorbike float64
	PenaltyBike      float64
	PenaltyCar       float64

	MaxBundleSize       int
	MaxPickupDistanceKm float64
	MaxDeliveryTimeMins float64

	BatchWindowMins        float64
	UrgencyFractionDivisor float64

	UseRoadDistance             bool
	HaversineFallbackMultiplier float64

	OSRMBaseURL string
	OSRMTimeout time.Duration

	KafkaBrokers []string

	// OrdersFile / CouriersFile / Strategy round out the configuration
	// surface with the run's dataset paths and strategy choice -- kept
	// as viper keys alongside every other tunable rather than as CLI
	// flags, matching this codebase's all-env-var configuration idiom.
	OrdersFile   string
	CouriersFile string
	Strategy     string
}

// Load sets every documented default on v, then reads back a fully
// resolved Config. Call once at startup; v may already carry
// operator-supplied overrides (env vars, flags, a config file) that take
// precedence over these defaults since viper only applies a default when
// no other source set the key.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("START_TIME", "17:00:00")
	v.SetDefault("SIMULATION_END_TIME", "22:00:00")
	v.SetDefault("SIMULATION_SPEED_MINUTES", 1.0)
	v.SetDefault("AVG_SPEED_KMH", 35.0)
	v.SetDefault("SERVICE_TIME_MINS", 5.0)
	v.SetDefault("HIGH_LOAD_THRESHOLD", 2.0)
	v.SetDefault("COMBINATORIAL_WINDOW_MINS", 5.0)
	v.SetDefault("W_DISTANCE", 1.0)
	v.SetDefault("W_DELAY", 1.5)
	v.SetDefault("BUNDLE_DISCOUNT_PER_ORDER", 0.25)
	v.SetDefault("PENALTY_MOTORBIKE", 1.0)
	v.SetDefault("PENALTY_BIKE", 1.2)
	v.SetDefault("PENALTY_CAR", 1.4)
	v.SetDefault("MAX_BUNDLE_SIZE", 2)
	v.SetDefault("MAX_PICKUP_DISTANCE_KM", 5.0)
	v.SetDefault("MAX_DELIVERY_TIME_MINS", 52.0)
	v.SetDefault("BATCH_WINDOW_MINS", 1.0)
	v.SetDefault("URGENCY_FRACTION_DIVISOR", 3.0)
	v.SetDefault("USE_ROAD_DISTANCE", false)
	v.SetDefault("HAVERSINE_FALLBACK_MULTIPLIER", 1.4)
	v.SetDefault("OSRM_URL", "http://localhost:5000")
	v.SetDefault("OSRM_TIMEOUT", 5*time.Second)
	v.SetDefault("WATERMILL_KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("ORDERS_FILE", "testdata/orders.csv")
	v.SetDefault("COURIERS_FILE", "testdata/couriers.csv")
	v.SetDefault("STRATEGY", "adaptive")

	startTime, err := ParseClock(v.GetString("START_TIME"))
	if err != nil {
		return nil, fmt.Errorf("START_TIME: %w", err)
	}

	endTime, err := ParseClock(v.GetString("SIMULATION_END_TIME"))
	if err != nil {
		return nil, fmt.Errorf("SIMULATION_END_TIME: %w", err)
	}

	return &Config{
		StartTime:              startTime,
		SimulationEndTime:      endTime,
		SimulationSpeedMinutes: v.GetFloat64("SIMULATION_SPEED_MINUTES"),

		AvgSpeedKmh:     v.GetFloat64("AVG_SPEED_KMH"),
		ServiceTimeMins: v.GetFloat64("SERVICE_TIME_MINS"),

		HighLoadThreshold:       v.GetFloat64("HIGH_LOAD_THRESHOLD"),
		CombinatorialWindowMins: v.GetFloat64("COMBINATORIAL_WINDOW_MINS"),

		WDistance: v.GetFloat64("W_DISTANCE"),
		WDelay:    v.GetFloat64("W_DELAY"),

		BundleDiscountPerOrder: v.GetFloat64("BUNDLE_DISCOUNT_PER_ORDER"),

		PenaltyMotorbike: v.GetFloat64("PENALTY_MOTORBIKE"),
		PenaltyBike:      v.GetFloat64("PENALTY_BIKE"),
		PenaltyCar:       v.GetFloat64("PENALTY_CAR"),

		MaxBundleSize:       v.GetInt("MAX_BUNDLE_SIZE"),
		MaxPickupDistanceKm: v.GetFloat64("MAX_PICKUP_DISTANCE_KM"),
		MaxDeliveryTimeMins: v.GetFloat64("MAX_DELIVERY_TIME_MINS"),

		BatchWindowMins:        v.GetFloat64("BATCH_WINDOW_MINS"),
		UrgencyFractionDivisor: v.GetFloat64("URGENCY_FRACTION_DIVISOR"),

		UseRoadDistance:             v.GetBool("USE_ROAD_DISTANCE"),
		HaversineFallbackMultiplier: v.GetFloat64("HAVERSINE_FALLBACK_MULTIPLIER"),

		OSRMBaseURL: v.GetString("OSRM_URL"),
		OSRMTimeout: v.GetDuration("OSRM_TIMEOUT"),

		KafkaBrokers: v.GetStringSlice("WATERMILL_KAFKA_BROKERS"),

		OrdersFile:   v.GetString("ORDERS_FILE"),
		CouriersFile: v.GetString("COURIERS_FILE"),
		Strategy:     v.GetString("STRATEGY"),
	}, nil
}

// ParseClock parses an "HH:MM:SS" wall-clock string into minutes-of-day,
// the internal time representation every timestamp in the core uses.
func ParseClock(s string) (model.Minutes, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}

	seconds := 0

	if len(parts) == 3 {
		seconds, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, fmt.Errorf("invalid second in %q: %w", s, err)
		}
	}

	return model.Minutes(hours*60 + minutes + seconds/60), nil
}
