package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "storefront.order.events"
	TopicDeadLetterQueue = "storefront.notifications.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// EventEnvelope — wire-формат события в topic заказов. Outbox-паблишер
// сериализует запись в эту обёртку, консьюмеры разбирают её обратно.
type EventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// ParseEnvelope разбирает EventEnvelope из сообщения Kafka.
func ParseEnvelope(message *sarama.ConsumerMessage) (*EventEnvelope, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}
	return &envelope, nil
}
