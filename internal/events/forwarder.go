package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/recipehub/backend/pkg/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Sink receives encoded social events outside the process
type Sink interface {
	Publish(ctx context.Context, body []byte) error
}

// BreakerConfig configures the circuit breaker in front of a Sink
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults for the forwarder breaker
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "push-forwarder",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Forwarder relays social events to a Sink through a circuit breaker.
// While the breaker is open events are skipped instead of retried.
type Forwarder struct {
	sink    Sink
	breaker *gobreaker.CircuitBreaker[any]
	logger  watermill.LoggerAdapter
}

// NewForwarder creates a Forwarder
func NewForwarder(sink Sink, cfg BreakerConfig, logger watermill.LoggerAdapter) *Forwarder {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Info("circuit breaker state changed", watermill.LogFields{
				"name": name, "from": from.String(), "to": to.String(),
			})
		},
	}
	return &Forwarder{
		sink:    sink,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger,
	}
}

// State reports the breaker state
func (f *Forwarder) State() gobreaker.State {
	return f.breaker.State()
}

// Handle is the watermill consumer for the push-forwarder handler
func (f *Forwarder) Handle(msg *message.Message) error {
	_, err := f.breaker.Execute(func() (any, error) {
		return nil, f.sink.Publish(msg.Context(), msg.Payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		f.logger.Debug("push forwarder open, skipping event", watermill.LogFields{"message_uuid": msg.UUID})
		metrics.EventsDropped.WithLabelValues(msg.Metadata.Get(metadataType), "forward").Inc()
		return nil
	}
	return err
}

// RabbitSink publishes events to a durable RabbitMQ queue
type RabbitSink struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

// NewRabbitSink dials url and declares queue
func NewRabbitSink(url, queue string) (*RabbitSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &RabbitSink{conn: conn, ch: ch, Queue: queue}, nil
}

// Publish sends body as a persistent JSON message on the default exchange
func (s *RabbitSink) Publish(ctx context.Context, body []byte) error {
	return s.ch.PublishWithContext(ctx,
		"",      // default exchange
		s.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Close closes the channel and connection
func (s *RabbitSink) Close() {
	if s == nil {
		return
	}
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
