package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Config holds configuration for the in-process event bus and its consumers
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer
	OutputBuffer int64
	// BlockUntilAck makes Publish wait until every consumer has acked the event
	BlockUntilAck bool
	// CloseTimeout is how long to wait for handlers to finish when closing
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultConfig returns production defaults for the bus
func DefaultConfig() Config {
	return Config{
		OutputBuffer:         256,
		BlockUntilAck:        false,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     2 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Bus is the outbox side of notification fan-out. Mutators publish SocialEvents and return;
// consumers attached through a Dispatcher create the side-effect records.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus creates an in-process bus
func NewBus(cfg Config, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            cfg.OutputBuffer,
		BlockPublishUntilSubscriberAck: cfg.BlockUntilAck,
	}, logger)
	return &Bus{pubsub: pubsub, logger: logger}
}

// Publish hands event to the bus. Events published before any consumer subscribes are dropped.
func (b *Bus) Publish(_ context.Context, event SocialEvent) error {
	msg, err := event.ToMessage()
	if err != nil {
		return err
	}
	if err := b.pubsub.Publish(TopicSocial, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

// Subscriber exposes the consuming side to a Dispatcher
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close stops delivery
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
