package eventlog

// Topic name format: {domain}.{entity}.{event}.v1.
const (
	TopicOrderInjected  = "dispatch.order.injected.v1"
	TopicOrderAssigned  = "dispatch.order.assigned.v1"
	TopicOrderPickedUp  = "dispatch.order.picked_up.v1"
	TopicOrderDelivered = "dispatch.order.delivered.v1"
	TopicTickCompleted  = "dispatch.tick.completed.v1"

	metadataKeyPartitionKey = "partition_key"
)
