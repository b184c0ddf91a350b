package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"skillproof/internal/platform/kafka/producer"
)

// Publisher emits audit events. Implementations must be safe for concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// KafkaPublisher publishes audit events to a Kafka topic keyed by resource,
// so events for one credential or attempt stay ordered within a partition.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
	logger   *slog.Logger
}

// NewKafkaPublisher creates a Kafka-backed audit publisher.
func NewKafkaPublisher(prod *producer.Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	if topic == "" {
		topic = "skillproof.audit.events"
	}
	return &KafkaPublisher{producer: prod, topic: topic, logger: logger}
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(event.Resource),
		Value: payload,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		// Audit must not fail the business operation; log and continue.
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit publish failed",
				"action", event.Action,
				"resource", event.Resource,
				"error", err,
			)
		}
		return nil
	}
	return nil
}

// MemorySink collects events in memory for tests and local development.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of all recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByAction returns recorded events matching the given action.
func (s *MemorySink) ByAction(action Action) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// NopPublisher discards events. Used when audit wiring is disabled.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
