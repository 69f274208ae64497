package eventlog

import (
	"context"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
	"github.com/shortlink-org/dispatchsim/internal/telemetry"
)

// Sink adapts a Publisher to the simulator's EventSink interface. Every
// method is best-effort: a publish failure is logged at warn and never
// propagated, since the core must never block on or fail from this
// optional sink.
type Sink struct {
	pub *Publisher
	log telemetry.Logger
}

// NewSink constructs a Sink. pub may be nil, in which case every method
// is a silent no-op -- useful when no Kafka brokers are configured.
func NewSink(pub *Publisher, log telemetry.Logger) *Sink {
	return &Sink{pub: pub, log: log}
}

func (s *Sink) OrderInjected(ctx context.Context, order *model.Order) {
	if s.pub == nil {
		return
	}

	if err := s.pub.PublishOrderInjected(ctx, newOrderInjectedEvent(order)); err != nil {
		s.log.Warn("publish order injected failed", "error", err.Error())
	}
}

func (s *Sink) OrderAssigned(ctx context.Context, orderID, courierID string) {
	if s.pub == nil {
		return
	}

	if err := s.pub.PublishOrderAssigned(ctx, OrderAssignedEvent{OrderID: orderID, CourierID: courierID}); err != nil {
		s.log.Warn("publish order assigned failed", "error", err.Error())
	}
}

func (s *Sink) OrderPickedUp(ctx context.Context, orderID, courierID string, at model.Minutes) {
	if s.pub == nil {
		return
	}

	e := OrderPickedUpEvent{OrderID: orderID, CourierID: courierID, PickupTime: float64(at)}
	if err := s.pub.PublishOrderPickedUp(ctx, e); err != nil {
		s.log.Warn("publish order picked up failed", "error", err.Error())
	}
}

func (s *Sink) OrderDelivered(ctx context.Context, orderID, courierID string, at model.Minutes) {
	if s.pub == nil {
		return
	}

	e := OrderDeliveredEvent{OrderID: orderID, CourierID: courierID, DropoffTime: float64(at)}
	if err := s.pub.PublishOrderDelivered(ctx, e); err != nil {
		s.log.Warn("publish order delivered failed", "error", err.Error())
	}
}

// Close releases the underlying publisher, if any.
func (s *Sink) Close() error {
	if s.pub == nil {
		return nil
	}

	return s.pub.Close()
}

func (s *Sink) TickCompleted(ctx context.Context, currentTime model.Minutes, pendingCount int) {
	if s.pub == nil {
		return
	}

	e := TickCompletedEvent{CurrentTime: float64(currentTime), PendingCount: pendingCount}
	if err := s.pub.PublishTickCompleted(ctx, e); err != nil {
		s.log.Warn("publish tick completed failed", "error", err.Error())
	}
}
