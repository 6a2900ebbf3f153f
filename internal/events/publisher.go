// Package events publishes a notification each time a station record is
// stored.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Event kinds.
const (
	KindLatest  = "latest"
	KindHistory = "history"
)

// SyncEvent describes one stored latest or history record.
type SyncEvent struct {
	Kind      string    `json:"kind"`
	StationID string    `json:"station_id"`
	Date      string    `json:"date,omitempty"`
	SyncedAt  time.Time `json:"synced_at"`
	Degraded  bool      `json:"degraded"`
}

// Publisher emits sync events.
type Publisher interface {
	Publish(ctx context.Context, event SyncEvent) error
	Close() error
}

// NopPublisher discards every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, SyncEvent) error { return nil }
func (NopPublisher) Close() error                             { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher produces sync events to a Kafka topic, keyed by station id
// so events for one station stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a producer for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w}
}

// Publish writes one event.
func (p *KafkaPublisher) Publish(ctx context.Context, event SyncEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event for %s: %w", event.Kind, event.StationID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a SyncEvent into a Kafka message.
func serializeToMessage(event SyncEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sync event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "synced_at", Value: []byte(event.SyncedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
