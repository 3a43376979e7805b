package services

import (
	"context"

	"github.com/anonto42/recipehub/backend/internal/events"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventPublisher accepts social events for asynchronous notification fan-out
type EventPublisher interface {
	Publish(ctx context.Context, event events.SocialEvent) error
}

// fanout emits social events after the primary mutation has committed.
// A failed emit is logged and counted, never returned.
type fanout struct {
	publisher EventPublisher
	logger    logrus.FieldLogger
}

func (f fanout) emit(ctx context.Context, eventType models.NotificationType, sender *models.User, recipient primitive.ObjectID, recipe *primitive.ObjectID, text string) {
	if f.publisher == nil || sender.ID == recipient {
		return
	}
	event := events.NewSocialEvent(eventType, sender.ID, recipient, recipe, text)
	if err := f.publisher.Publish(ctx, event); err != nil {
		f.logger.WithFields(logrus.Fields{
			"event_type": eventType,
			"sender_id":  sender.ID.Hex(),
			"target_id":  recipient.Hex(),
			"error":      err.Error(),
		}).Warn("social event not published")
		metrics.EventsDropped.WithLabelValues(string(eventType), "publish").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(string(eventType)).Inc()
}

func followMessage(sender *models.User) string {
	return sender.Username + " started following you"
}

func likeMessage(sender *models.User) string {
	return sender.Username + " liked your recipe"
}

func commentMessage(sender *models.User) string {
	return sender.Username + " commented on your recipe"
}
