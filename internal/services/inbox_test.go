package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/testkit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInboxResolvesWeakReferences(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	owner := testkit.MustUser(t, h.store, "owner")
	fan := testkit.MustUser(t, h.store, "fan")
	gone := testkit.MustUser(t, h.store, "gone")
	recipe := testkit.MustRecipe(t, h.store, owner, "Soup")
	removed := testkit.MustRecipe(t, h.store, owner, "Removed")

	base := time.Now().Add(-time.Hour)
	notifications := []models.Notification{
		{Recipient: owner.ID, Sender: fan.ID, Type: models.NotificationLike, Recipe: &recipe.ID, Message: "fan liked your recipe", CreatedAt: base},
		{Recipient: owner.ID, Sender: gone.ID, Type: models.NotificationFollow, Message: "gone started following you", CreatedAt: base.Add(time.Minute)},
		{Recipient: owner.ID, Sender: fan.ID, Type: models.NotificationComment, Recipe: &removed.ID, Message: "fan commented on your recipe", CreatedAt: base.Add(2 * time.Minute)},
		{Recipient: fan.ID, Sender: owner.ID, Type: models.NotificationFollow, Message: "other inbox", CreatedAt: base},
	}
	for i := range notifications {
		if err := h.store.CreateNotification(ctx, &notifications[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.store.DeleteUser(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.store.DeleteRecipe(ctx, removed.ID); err != nil {
		t.Fatal(err)
	}

	res, err := h.inbox.Notifications(ctx, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.UnreadCount != 3 || len(res.Notifications) != 3 {
		t.Fatalf("expected 3 unread, got %d of %d", res.UnreadCount, len(res.Notifications))
	}
	newest := res.Notifications[0]
	if newest.Type != models.NotificationComment || newest.Recipe != nil || newest.Sender == nil {
		t.Fatalf("deleted recipe should render nil: %+v", newest)
	}
	if res.Notifications[1].Sender != nil {
		t.Fatal("deleted sender should render nil")
	}
	oldest := res.Notifications[2]
	if oldest.Recipe == nil || oldest.Recipe.Title != "Soup" || oldest.Sender.Username != "fan" {
		t.Fatalf("references should resolve: %+v", oldest)
	}

	marked, err := h.inbox.MarkAllRead(ctx, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 3 {
		t.Fatalf("marked %d", marked)
	}
	res, err = h.inbox.Notifications(ctx, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.UnreadCount != 0 || !res.Notifications[0].IsRead {
		t.Fatal("all should be read")
	}
	if n, _ := h.store.GetUnreadCount(ctx, fan.ID); n != 1 {
		t.Fatal("other inboxes are untouched")
	}
}

func TestInboxLimit(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	owner := testkit.MustUser(t, h.store, "owner")
	for i := 0; i < inboxLimit+5; i++ {
		n := &models.Notification{Recipient: owner.ID, Sender: primitive.NewObjectID(), Type: models.NotificationFollow}
		if err := h.store.CreateNotification(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	res, err := h.inbox.Notifications(ctx, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Notifications) != inboxLimit || res.UnreadCount != inboxLimit+5 {
		t.Fatalf("got %d notifications, %d unread", len(res.Notifications), res.UnreadCount)
	}
}
