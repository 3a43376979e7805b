package services

import (
	"context"
	"fmt"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const inboxLimit = 50

// InboxResult is the latest notifications of a user with the unread total
type InboxResult struct {
	Notifications []models.NotificationView `json:"notifications"`
	UnreadCount   int64                     `json:"unreadCount"`
}

// Inbox reads a user's notifications. Senders and recipes are weak references:
// a reference that no longer resolves renders as nil.
type Inbox struct {
	notifications repositories.NotificationRepository
	recipes       repositories.RecipeRepository
	populate      populator
}

// NewInbox creates a new Inbox
func NewInbox(notifications repositories.NotificationRepository, users repositories.UserRepository, recipes repositories.RecipeRepository) *Inbox {
	return &Inbox{notifications: notifications, recipes: recipes, populate: populator{users: users}}
}

// Notifications returns the latest notifications for recipient, newest first
func (s *Inbox) Notifications(ctx context.Context, recipient primitive.ObjectID) (*InboxResult, error) {
	list, err := s.notifications.GetByRecipientID(ctx, recipient, inboxLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.notifications.GetUnreadCount(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	senderIDs := make([]primitive.ObjectID, 0, len(list))
	var recipeIDs []primitive.ObjectID
	for _, n := range list {
		senderIDs = append(senderIDs, n.Sender)
		if n.Recipe != nil {
			recipeIDs = append(recipeIDs, *n.Recipe)
		}
	}
	senders, err := s.populate.compactUsers(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipeSummaries(ctx, recipeIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(list))
	for _, n := range list {
		view := models.NotificationView{
			ID:        n.ID,
			Recipient: n.Recipient,
			Sender:    senders[n.Sender],
			Type:      n.Type,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if n.Recipe != nil {
			view.Recipe = recipes[*n.Recipe]
		}
		views = append(views, view)
	}
	return &InboxResult{Notifications: views, UnreadCount: unread}, nil
}

// MarkAllRead marks every unread notification of recipient as read
func (s *Inbox) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}

func (s *Inbox) recipeSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.RecipeCompact, error) {
	found, err := s.recipes.GetRecipesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("populate recipes: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.RecipeCompact, len(found))
	for _, r := range found {
		byID[r.ID] = &models.RecipeCompact{ID: r.ID, Title: r.Title, Image: r.Image}
	}
	return byID, nil
}
