package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/pkg/metrics"
)

// NotificationStore is where the fan-out consumer writes notifications
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

// Dispatcher runs the consumers of the social event topic on a watermill Router
type Dispatcher struct {
	router *message.Router
	bus    *Bus
	store  NotificationStore
	logger watermill.LoggerAdapter
}

// NewDispatcher creates a Router with the notification consumer registered.
// Middleware runs outer to inner: drop after exhausted retries, retry with backoff, recover panics.
func NewDispatcher(cfg Config, bus *Bus, store NotificationStore, logger watermill.LoggerAdapter) (*Dispatcher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	d := &Dispatcher{router: router, bus: bus, store: store, logger: logger}

	router.AddMiddleware(d.dropOnFailure)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}.Middleware)
	router.AddMiddleware(middleware.Recoverer)

	router.AddConsumerHandler("notifications", TopicSocial, bus.Subscriber(), d.storeNotification)
	return d, nil
}

// AddForwarder registers an additional consumer that relays every event to an external queue
func (d *Dispatcher) AddForwarder(f *Forwarder) {
	d.router.AddConsumerHandler("push-forwarder", TopicSocial, d.bus.Subscriber(), f.Handle)
}

// Start runs the router in the background and returns once it is consuming.
// The returned channel receives the result of Run when the router stops.
func (d *Dispatcher) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- d.router.Run(ctx)
	}()
	select {
	case <-d.router.Running():
	case <-ctx.Done():
	}
	return done
}

// Close stops the router, waiting for in-flight handlers up to the close timeout
func (d *Dispatcher) Close() error {
	return d.router.Close()
}

func (d *Dispatcher) storeNotification(msg *message.Message) error {
	event, err := FromMessage(msg)
	if err != nil {
		d.logger.Error("discarding undecodable event", err, watermill.LogFields{"message_uuid": msg.UUID})
		return nil
	}
	if err := event.Validate(); err != nil {
		d.logger.Error("discarding invalid event", err, watermill.LogFields{"message_uuid": msg.UUID})
		return nil
	}

	err = d.store.CreateNotification(msg.Context(), event.Notification())
	if errors.Is(err, repositories.ErrDuplicate) {
		// redelivery of an event already stored
		return nil
	}
	if err != nil {
		return fmt.Errorf("store %s notification: %w", event.Type, err)
	}
	metrics.NotificationsStored.WithLabelValues(string(event.Type)).Inc()
	return nil
}

// dropOnFailure acks a message whose handler still fails after retries.
// A lost notification is logged and counted; it never blocks the topic.
func (d *Dispatcher) dropOnFailure(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		produced, err := h(msg)
		if err != nil {
			eventType := msg.Metadata.Get(metadataType)
			handler := message.HandlerNameFromCtx(msg.Context())
			d.logger.Error("social event dropped", err, watermill.LogFields{
				"message_uuid": msg.UUID,
				"event_type":   eventType,
				"handler":      handler,
			})
			stage := "store"
			if handler != "notifications" {
				stage = "forward"
			}
			metrics.EventsDropped.WithLabelValues(eventType, stage).Inc()
			return nil, nil
		}
		return produced, nil
	}
}
