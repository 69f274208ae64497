//go:generate go tool wire
//go:build wireinject

// The build tag makes sure the stub is not built in the final build.

/*
Dispatch simulator DI package
*/
package di

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/shortlink-org/dispatchsim/internal/config"
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
	Log    telemetry.Logger
	Config *config.Config

	Tracer  telemetry.Tracer
	Metrics *telemetry.Metrics

	Distance geo.Distance
	Oracle   *tsp.Oracle
	CostFn   *cost.Function
	Engine   *dispatch.Engine

	Sink *eventlog.Sink
}

// DefaultSet wires the ambient stack: config, logger, tracing, metrics.
var DefaultSet = wire.NewSet(
	viper.New,
	config.Load,
	telemetry.NewLogger,
	newTracer,
	newMetrics,
)

// ServiceSet wires the domain stack on top of DefaultSet.
var ServiceSet = wire.NewSet(
	DefaultSet,

	newDistance,
	newOracle,
	newCostFunction,
	newEngine,
	newEventSink,

	NewService,
)

func newTracer() telemetry.Tracer {
	return telemetry.NewTracer(nil)
}

func newMetrics() *telemetry.Metrics {
	return telemetry.NewMetrics(prometheus.NewRegistry())
}

func newDistance(cfg *config.Config) geo.Distance {
	panic(wire.Build(wire.Value(geo.Distance(nil))))
}

func newOracle(dist geo.Distance) *tsp.Oracle {
	return tsp.NewOracle(dist)
}

func newCostFunction(dist geo.Distance, cfg *config.Config) *cost.Function {
	panic(wire.Build(wire.Value((*cost.Function)(nil))))
}

func newEngine(dist geo.Distance, oracle *tsp.Oracle, costFn *cost.Function, cfg *config.Config) *dispatch.Engine {
	panic(wire.Build(wire.Value((*dispatch.Engine)(nil))))
}

func newEventSink(cfg *config.Config, log telemetry.Logger) *eventlog.Sink {
	panic(wire.Build(wire.Value((*eventlog.Sink)(nil))))
}

func NewService(
	log telemetry.Logger,
	cfg *config.Config,
	tracer telemetry.Tracer,
	metrics *telemetry.Metrics,
	dist geo.Distance,
	oracle *tsp.Oracle,
	costFn *cost.Function,
	engine *dispatch.Engine,
	sink *eventlog.Sink,
) (*Service, func(), error) {
	cleanup := func() {
		log.Info("dispatch simulator shutting down")
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

func InitializeService() (*Service, func(), error) {
	panic(wire.Build(ServiceSet))
}
