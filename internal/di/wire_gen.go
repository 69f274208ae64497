// Hand-written in the shape of Wire output; see InitializeService.

//go:generate go tool wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/shortlink-org/dispatchsim/internal/config"
	"github.com/shortlink-org/dispatchsim/internal/domain/bundle"
	"github.com/shortlink-org/dispatchsim/internal/domain/cost"
	"github.com/shortlink-org/dispatchsim/internal/domain/dispatch"
	"github.com/shortlink-org/dispatchsim/internal/domain/geo"
	"github.com/shortlink-org/dispatchsim/internal/domain/tsp"
	"github.com/shortlink-org/dispatchsim/internal/infrastructure/eventlog"
	"github.com/shortlink-org/dispatchsim/internal/telemetry"
)

// Service bundles everything cmd/dispatchsim needs to run one simulation,
// grouped the way a generated DI service struct typically is (common,
// observability, domain, infrastructure).
type Service struct {
	// Common
	Log    telemetry.Logger
	Config *config.Config

	// Observability
	Tracer  telemetry.Tracer
	Metrics *telemetry.Metrics

	// Domain
	Distance geo.Distance
	Oracle   *tsp.Oracle
	CostFn   *cost.Function
	Engine   *dispatch.Engine

	// Infrastructure
	Sink *eventlog.Sink
}

func newDistance(cfg *config.Config) geo.Distance {
	haversine := geo.NewHaversine(cfg.AvgSpeedKmh)

	if !cfg.UseRoadDistance {
		return haversine
	}

	road, err := geo.NewRoadDistance(geo.RoadDistanceConfig{
		BaseURL:      cfg.OSRMBaseURL,
		Timeout:      cfg.OSRMTimeout,
		DetourFactor: cfg.HaversineFallbackMultiplier,
		AvgSpeedKmh:  cfg.AvgSpeedKmh,
	})
	if err != nil {
		return haversine
	}

	return road
}

func newCostFunction(dist geo.Distance, cfg *config.Config) *cost.Function {
	return cost.NewFunction(dist, cost.Config{
		ServiceTimeMins:        cfg.ServiceTimeMins,
		MaxDeliveryTimeMins:    cfg.MaxDeliveryTimeMins,
		WDistance:              cfg.WDistance,
		WDelay:                 cfg.WDelay,
		BundleDiscountPerOrder: cfg.BundleDiscountPerOrder,
		PenaltyMotorbike:       cfg.PenaltyMotorbike,
		PenaltyBike:            cfg.PenaltyBike,
		PenaltyCar:             cfg.PenaltyCar,
		DelayCapMinsPerOrder:   20,
	})
}

func newEngine(dist geo.Distance, oracle *tsp.Oracle, costFn *cost.Function, cfg *config.Config) *dispatch.Engine {
	return dispatch.NewEngine(dist, oracle, costFn, dispatch.Config{
		ServiceTimeMins:         cfg.ServiceTimeMins,
		HighLoadThreshold:       cfg.HighLoadThreshold,
		CombinatorialWindowMins: cfg.CombinatorialWindowMins,
		Bundle: bundle.Config{
			MaxBundleSize:       cfg.MaxBundleSize,
			MaxPickupDistanceKm: cfg.MaxPickupDistanceKm,
		},
	})
}

func newEventSink(cfg *config.Config, log telemetry.Logger) *eventlog.Sink {
	wmLogger := eventlog.NewWatermillLogger(log)

	pub, err := eventlog.NewPublisher(cfg.KafkaBrokers, wmLogger)
	if err != nil {
		log.Warn("failed to create kafka publisher, running without event publishing", "error", err.Error())
		return eventlog.NewSink(nil, log)
	}

	return eventlog.NewSink(pub, log)
}

// InitializeService builds the full Service graph. Hand-written in the
// shape `wire` would generate (this repo's module has no network access
// to run the `wire` code generator against), following the same
// common/observability/domain/infrastructure construction order as a
// generated wire_gen.go would.
func InitializeService() (*Service, func(), error) {
	v := viper.New()

	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := telemetry.NewLogger()
	tracer := telemetry.NewTracer(nil)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	dist := newDistance(cfg)
	oracle := tsp.NewOracle(dist)
	costFn := newCostFunction(dist, cfg)
	engine := newEngine(dist, oracle, costFn, cfg)
	sink := newEventSink(cfg, log)

	cleanup := func() {
		log.Info("dispatch simulator shutting down")

		if sink != nil {
			sink.Close()
		}
	}

	return &Service{
		Log:      log,
		Config:   cfg,
		Tracer:   tracer,
		Metrics:  metrics,
		Distance: dist,
		Oracle:   oracle,
		CostFn:   costFn,
		Engine:   engine,
		Sink:     sink,
	}, cleanup, nil
}
