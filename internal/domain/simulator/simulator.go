// Package simulator owns the tick-driven loop that advances couriers,
// injects orders, decides when to dispatch, and accumulates the KPI
// counters the kpi package aggregates.
package simulator

import (
	"context"

	"github.com/shortlink-org/dispatchsim/internal/domain/dispatch"
	"github.com/shortlink-org/dispatchsim/internal/domain/geo"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
	"github.com/shortlink-org/dispatchsim/internal/telemetry"
)

// Config holds the tick loop's tunables.
type Config struct {
	StartTime              model.Minutes
	EndTime                model.Minutes
	SpeedMinutes           float64
	ServiceTimeMins        float64
	BatchWindowMins        float64
	UrgencyFractionDivisor float64 // divides estimated_delivery_time_min for the urgency check
}

// Mission records one completed delivery for the KPI aggregator. ID is a
// per-record identifier, unrelated to the order's dataset id.
type Mission struct {
	ID                       string
	OrderID                  string
	CourierID                string
	CreatedTime              model.Minutes
	PickupTime               model.Minutes
	DropoffTime              model.Minutes
	EstimatedDeliveryTimeMin float64
}

// EventSink receives best-effort lifecycle notifications. A nil sink is a
// valid, fully-silent choice -- the core never depends on it.
type EventSink interface {
	OrderInjected(ctx context.Context, order *model.Order)
	OrderAssigned(ctx context.Context, orderID, courierID string)
	OrderPickedUp(ctx context.Context, orderID, courierID string, at model.Minutes)
	OrderDelivered(ctx context.Context, orderID, courierID string, at model.Minutes)
	TickCompleted(ctx context.Context, currentTime model.Minutes, pendingCount int)
}

// Simulator holds all state for one simulation run.
type Simulator struct {
	cfg    Config
	dist   geo.Distance
	engine *dispatch.Engine
	sink   EventSink
	log    telemetry.Logger

	currentTime model.Minutes

	masterOrders []*model.Order // sorted by CreatedTime, not yet injected
	pending      model.PendingQueue
	couriers     []*model.Courier

	completedMissions []Mission
	recentOrderTimes  []model.Minutes
	routeHistory      map[string][]model.Location

	driverTicks      int
	busyDriverTicks  int
	driversActivated map[string]bool
	fleetDistance    float64
}

// New constructs a Simulator over a fixed set of orders and couriers.
// Orders must already be sorted by CreatedTime (ties by insertion order),
// the ordering invariant the master list relies on. sink and log may both
// be nil; the core depends on neither.
func New(cfg Config, dist geo.Distance, engine *dispatch.Engine, sink EventSink, log telemetry.Logger, orders []*model.Order, couriers []*model.Courier) *Simulator {
	return &Simulator{
		cfg:              cfg,
		dist:             dist,
		engine:           engine,
		sink:             sink,
		log:              log,
		currentTime:      cfg.StartTime,
		masterOrders:     orders,
		couriers:         couriers,
		driversActivated: make(map[string]bool),
		routeHistory:     make(map[string][]model.Location),
	}
}

// CurrentTime returns the simulator's logical clock.
func (s *Simulator) CurrentTime() model.Minutes { return s.currentTime }

// Couriers returns the simulator's courier slice for invariant checking
// and reporting.
func (s *Simulator) Couriers() []*model.Courier { return s.couriers }

// CompletedMissions returns every mission recorded so far.
func (s *Simulator) CompletedMissions() []Mission { return s.completedMissions }

// RouteHistory returns the per-courier list of visited locations.
func (s *Simulator) RouteHistory() map[string][]model.Location { return s.routeHistory }

// DriverTicks / BusyDriverTicks / DriversActivated / FleetDistance expose
// the raw accumulators the KPI aggregator consumes.
func (s *Simulator) DriverTicks() int           { return s.driverTicks }
func (s *Simulator) BusyDriverTicks() int       { return s.busyDriverTicks }
func (s *Simulator) DriversActivatedCount() int { return len(s.driversActivated) }
func (s *Simulator) FleetDistance() float64     { return s.fleetDistance }

// AllDelivered reports whether every order has reached a terminal state.
func (s *Simulator) AllDelivered() bool {
	if len(s.masterOrders) > 0 || s.pending.Len() > 0 {
		return false
	}

	for _, c := range s.couriers {
		if len(c.AssignedOrders) > 0 {
			return false
		}
	}

	return true
}

// Run loops Tick until current_time >= EndTime or every order has been
// delivered, then fails any order still in flight, per the "no partial
// delivery, not an error" termination rule.
func (s *Simulator) Run(ctx context.Context, strategy dispatch.Strategy) error {
	for s.currentTime < s.cfg.EndTime && !s.AllDelivered() {
		if err := s.Tick(ctx, strategy); err != nil {
			return err
		}
	}

	s.failOutstandingOrders()

	return nil
}

func (s *Simulator) failOutstandingOrders() {
	for _, o := range s.pending.Orders() {
		_ = o.MarkFailed()
	}

	for _, c := range s.couriers {
		for _, o := range c.AssignedOrders {
			_ = o.MarkFailed()
		}
	}

	for _, o := range s.masterOrders {
		_ = o.MarkFailed()
	}
}

// Tick runs the seven-step sequence: advance couriers, inject orders,
// decide dispatch, dispatch, track activations, update utilization
// counters, advance time.
func (s *Simulator) Tick(ctx context.Context, strategy dispatch.Strategy) error {
	if err := s.advanceCouriers(ctx); err != nil {
		return err
	}

	s.injectOrders(ctx)

	if s.shouldDispatch(strategy) {
		if road, ok := s.dist.(*geo.RoadDistance); ok {
			locs := make([]model.Location, 0, len(s.couriers)+2*s.pending.Len())
			for _, c := range s.couriers {
				locs = append(locs, c.Location)
			}

			for _, o := range s.pending.Orders() {
				locs = append(locs, o.Pickup, o.Dropoff)
			}

			// A failed or oversized table leaves per-call fallback in place.
			_ = road.Prewarm(ctx, locs)
		}

		if err := s.dispatch(ctx, strategy); err != nil {
			return err
		}
	}

	s.trackActivations()
	s.updateUtilization()

	if s.sink != nil {
		s.sink.TickCompleted(ctx, s.currentTime, s.pending.Len())
	}

	s.currentTime += model.Minutes(s.cfg.SpeedMinutes)

	return nil
}
