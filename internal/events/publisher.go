// Package events publishes voice capture events to Kafka for downstream
// analytics: one topic for completed captures, one for backend booking
// outcomes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"voice-booking-capture-service/internal/observability/metrics"
)

// Event type discriminators carried in the payloads.
const (
	EventTypeCaptureCompleted = "voice.capture.completed"
	EventTypeBookingOutcome   = "voice.booking.outcome"
)

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicCapture string
	TopicOutcome string
	Principal    string
	Enabled      bool
}

// Publisher publishes capture and outcome events to separate Kafka topics.
// When Kafka is disabled the publisher degrades to log-only mode; callers
// never need to branch on it.
type Publisher struct {
	writerCapture *kafka.Writer
	writerOutcome *kafka.Writer
	principal     string
	topicCapture  string
	topicOutcome  string
	enabled       bool
	metrics       *metrics.Metrics
}

// New creates a Kafka event publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{enabled: false, metrics: m}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:    cfg.Principal,
			topicCapture: cfg.TopicCapture,
			topicOutcome: cfg.TopicOutcome,
			enabled:      false,
			metrics:      m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicCapture", cfg.TopicCapture).
		Str("topicOutcome", cfg.TopicOutcome).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerCapture: newWriter(cfg.TopicCapture),
		writerOutcome: newWriter(cfg.TopicOutcome),
		principal:     cfg.Principal,
		topicCapture:  cfg.TopicCapture,
		topicOutcome:  cfg.TopicOutcome,
		enabled:       true,
		metrics:       m,
	}
}

// PublishCaptureCompleted publishes a completed-capture event, keyed by
// session ID.
func (p *Publisher) PublishCaptureCompleted(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerCapture, p.topicCapture, "capture_completed", key, event)
}

// PublishBookingOutcome publishes a booking-outcome event, keyed by
// session ID.
func (p *Publisher) PublishBookingOutcome(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerOutcome, p.topicOutcome, "booking_outcome", key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerCapture != nil {
		if e := p.writerCapture.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing capture writer")
			err = e
		}
	}
	if p.writerOutcome != nil {
		if e := p.writerOutcome.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing outcome writer")
			err = e
		}
	}
	return err
}
