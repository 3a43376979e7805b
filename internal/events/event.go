package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TopicSocial carries every social event emitted by the engagement and graph services
const TopicSocial = "social.events"

const metadataType = "event_type"

// SocialEvent is emitted after a social mutation has committed.
// NotificationID is fixed when the event is created so a redelivered event maps to the same notification.
type SocialEvent struct {
	ID             string                  `json:"id"`
	NotificationID primitive.ObjectID      `json:"notificationId"`
	Type           models.NotificationType `json:"type"`
	Sender         primitive.ObjectID      `json:"sender"`
	Recipient      primitive.ObjectID      `json:"recipient"`
	Recipe         *primitive.ObjectID     `json:"recipe,omitempty"`
	Message        string                  `json:"message"`
	OccurredAt     time.Time               `json:"occurredAt"`
}

// NewSocialEvent creates an event with its message frozen at creation time
func NewSocialEvent(eventType models.NotificationType, sender, recipient primitive.ObjectID, recipe *primitive.ObjectID, text string) SocialEvent {
	return SocialEvent{
		ID:             uuid.NewString(),
		NotificationID: primitive.NewObjectID(),
		Type:           eventType,
		Sender:         sender,
		Recipient:      recipient,
		Recipe:         recipe,
		Message:        text,
		OccurredAt:     time.Now().UTC(),
	}
}

// Validate rejects events that must never become notifications
func (e SocialEvent) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Sender.IsZero() || e.Recipient.IsZero() {
		return fmt.Errorf("event %s is missing sender or recipient", e.ID)
	}
	if e.Sender == e.Recipient {
		return fmt.Errorf("event %s targets its own sender", e.ID)
	}
	return nil
}

// Notification converts the event into the record persisted by the fan-out consumer
func (e SocialEvent) Notification() *models.Notification {
	return &models.Notification{
		ID:        e.NotificationID,
		Recipient: e.Recipient,
		Sender:    e.Sender,
		Type:      e.Type,
		Recipe:    e.Recipe,
		Message:   e.Message,
		IsRead:    false,
		CreatedAt: e.OccurredAt,
	}
}

// ToMessage encodes the event as a watermill message
func (e SocialEvent) ToMessage() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal social event: %w", err)
	}
	msg := message.NewMessage(e.ID, payload)
	msg.Metadata.Set(metadataType, string(e.Type))
	return msg, nil
}

// FromMessage decodes a watermill message produced by ToMessage
func FromMessage(msg *message.Message) (SocialEvent, error) {
	var e SocialEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return SocialEvent{}, fmt.Errorf("unmarshal social event %s: %w", msg.UUID, err)
	}
	return e, nil
}
