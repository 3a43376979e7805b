package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType is the kind of social action that produced a notification
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationMention NotificationType = "mention"
	NotificationRecipe  NotificationType = "recipe"
)

// Valid reports whether t is a known notification type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow, NotificationMention, NotificationRecipe:
		return true
	}
	return false
}

// Notification is an append-only side-effect record. Message is frozen at creation;
// only IsRead changes afterwards.
type Notification struct {
	ID        primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Recipient primitive.ObjectID  `json:"recipient" bson:"recipient"`
	Sender    primitive.ObjectID  `json:"sender" bson:"sender"`
	Type      NotificationType    `json:"type" bson:"type"`
	Recipe    *primitive.ObjectID `json:"recipe,omitempty" bson:"recipe,omitempty"`
	Message   string              `json:"message" bson:"message"`
	IsRead    bool                `json:"isRead" bson:"isRead"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}

// RecipeCompact is the recipe summary embedded in notification responses
type RecipeCompact struct {
	ID    primitive.ObjectID `json:"_id"`
	Title string             `json:"title"`
	Image string             `json:"image"`
}

// NotificationView is a notification with its weak references resolved.
// Sender and Recipe are nil when the referenced entity no longer exists.
type NotificationView struct {
	ID        primitive.ObjectID `json:"_id"`
	Recipient primitive.ObjectID `json:"recipient"`
	Sender    *UserCompact       `json:"sender"`
	Type      NotificationType   `json:"type"`
	Recipe    *RecipeCompact     `json:"recipe"`
	Message   string             `json:"message"`
	IsRead    bool               `json:"isRead"`
	CreatedAt time.Time          `json:"createdAt"`
}
