//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/dispatchsim/internal/domain/bundle"
	"github.com/shortlink-org/dispatchsim/internal/domain/cost"
	"github.com/shortlink-org/dispatchsim/internal/domain/dispatch"
	"github.com/shortlink-org/dispatchsim/internal/domain/geo"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
	"github.com/shortlink-org/dispatchsim/internal/domain/simulator"
	"github.com/shortlink-org/dispatchsim/internal/domain/tsp"
	"github.com/shortlink-org/dispatchsim/internal/infrastructure/eventlog"
	"github.com/shortlink-org/dispatchsim/internal/telemetry"
)

const flowConsumeTimeout = 30 * time.Second

// TestDispatchFlowPublishesEvents runs a small combinatorial-strategy
// simulation against a real Kafka broker and verifies the full lifecycle
// (injected -> assigned -> picked_up -> delivered) lands on the
// configured topics, exercising eventlog's Watermill/Kafka wiring end to
// end rather than against a mocked publisher.
func TestDispatchFlowPublishesEvents(t *testing.T) {
	kafkaC := SetupKafkaContainer(t)

	log := telemetry.NewLogger()
	wmLogger := eventlog.NewWatermillLogger(log)

	pub, err := eventlog.NewPublisher(kafkaC.Brokers, wmLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	sink := eventlog.NewSink(pub, log)

	dist := geo.NewHaversine(35.0)
	oracle := tsp.NewOracle(dist)
	costFn := cost.NewFunction(dist, cost.Config{
		ServiceTimeMins:        5,
		MaxDeliveryTimeMins:    52,
		WDistance:              1.0,
		WDelay:                 1.5,
		BundleDiscountPerOrder: 0.25,
		PenaltyMotorbike:       1.0,
		PenaltyBike:            1.2,
		PenaltyCar:             1.4,
		DelayCapMinsPerOrder:   20,
	})
	engine := dispatch.NewEngine(dist, oracle, costFn, dispatch.Config{
		ServiceTimeMins:         5,
		HighLoadThreshold:       2.0,
		CombinatorialWindowMins: 5,
		Bundle:                  bundle.Config{MaxBundleSize: 2, MaxPickupDistanceKm: 5},
	})

	pickup := model.MustNewLocation(25.2854, 51.5310)
	dropoffA := model.MustNewLocation(25.2900, 51.5350)
	dropoffB := model.MustNewLocation(25.2905, 51.5355)

	orderA := model.NewOrder("order-a", pickup, dropoffA, 0, 30)
	orderB := model.NewOrder("order-b", pickup, dropoffB, 0, 30)
	courier := model.NewCourier("courier-1", pickup, model.VehicleMotorbike, 2, 0)

	simCfg := simulator.Config{
		StartTime:              0,
		EndTime:                120,
		SpeedMinutes:           1,
		ServiceTimeMins:        5,
		BatchWindowMins:        1,
		UrgencyFractionDivisor: 3,
	}

	sim := simulator.New(simCfg, dist, engine, sink, log, []*model.Order{&orderA, &orderB}, []*model.Courier{&courier})

	consumeCtx, cancel := context.WithTimeout(context.Background(), flowConsumeTimeout)
	t.Cleanup(cancel)

	var (
		mu        sync.Mutex
		injected  int
		assigned  int
		pickedUp  int
		delivered int
	)

	handler := &topicCountHandler{
		onMessage: func(topic string, _ []byte) {
			mu.Lock()
			defer mu.Unlock()

			switch topic {
			case eventlog.TopicOrderInjected:
				injected++
			case eventlog.TopicOrderAssigned:
				assigned++
			case eventlog.TopicOrderPickedUp:
				pickedUp++
			case eventlog.TopicOrderDelivered:
				delivered++
			}
		},
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	consumer, err := sarama.NewConsumerGroup(kafkaC.Brokers, "integration-dispatch-flow", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = consumer.Close() })

	topics := []string{
		eventlog.TopicOrderInjected,
		eventlog.TopicOrderAssigned,
		eventlog.TopicOrderPickedUp,
		eventlog.TopicOrderDelivered,
	}

	go func() {
		for {
			if err := consumer.Consume(consumeCtx, topics, handler); err != nil {
				return
			}

			if consumeCtx.Err() != nil {
				return
			}
		}
	}()

	time.Sleep(2 * time.Second) // let the consumer group join before orders flow

	require.NoError(t, sim.Run(context.Background(), dispatch.Combinatorial))

	deadline := time.Now().Add(flowConsumeTimeout)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := delivered >= 2
		mu.Unlock()

		if done {
			break
		}

		time.Sleep(200 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, 2, injected, "both orders should be injected")
	require.Equal(t, 2, assigned, "both orders should be assigned")
	require.Equal(t, 2, pickedUp, "both orders should be picked up")
	require.Equal(t, 2, delivered, "both orders should be delivered")

	report, err := json.Marshal(sim.CompletedMissions())
	require.NoError(t, err)
	require.NotEmpty(t, report)
}

type topicCountHandler struct {
	onMessage func(topic string, payload []byte)
}

func (h *topicCountHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *topicCountHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }
func (h *topicCountHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if msg != nil && msg.Value != nil && h.onMessage != nil {
			h.onMessage(claim.Topic(), msg.Value)
		}

		sess.MarkMessage(msg, "")
	}

	return nil
}
