package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher publishes domain lifecycle events to Kafka via Watermill:
// one topic per event category. Each message carries the id of the entity
// it is about in its partition_key metadata entry; kafka.DefaultMarshaler
// copies metadata into message headers and sets no Kafka message key.
type Publisher struct {
	publisher message.Publisher
}

// NewPublisher constructs a Publisher backed by the given brokers.
func NewPublisher(brokers []string, logger watermill.LoggerAdapter) (*Publisher, error) {
	pub, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("new kafka publisher: %w", err)
	}

	return &Publisher{publisher: pub}, nil
}

// Close releases the underlying Kafka connection.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}

func (p *Publisher) publish(topic, partitionKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(metadataKeyPartitionKey, partitionKey)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

func (p *Publisher) PublishOrderInjected(_ context.Context, e OrderInjectedEvent) error {
	return p.publish(TopicOrderInjected, e.OrderID, e)
}

func (p *Publisher) PublishOrderAssigned(_ context.Context, e OrderAssignedEvent) error {
	return p.publish(TopicOrderAssigned, e.OrderID, e)
}

func (p *Publisher) PublishOrderPickedUp(_ context.Context, e OrderPickedUpEvent) error {
	return p.publish(TopicOrderPickedUp, e.OrderID, e)
}

func (p *Publisher) PublishOrderDelivered(_ context.Context, e OrderDeliveredEvent) error {
	return p.publish(TopicOrderDelivered, e.OrderID, e)
}

func (p *Publisher) PublishTickCompleted(_ context.Context, e TickCompletedEvent) error {
	return p.publish(TopicTickCompleted, "tick", e)
}
