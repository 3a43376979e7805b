//go:build integration

package repositories

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func mongoDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(time.Minute),
	}, "27017")

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+addr))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	db := client.Database("recipehub_test")
	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestMongoUserRepository(t *testing.T) {
	db := mongoDatabase(t)
	users := NewMongoUserRepository(db)
	ctx := context.Background()

	a := &models.User{Username: "a", Email: "a@example.com", Name: "Ann"}
	b := &models.User{Username: "b", Email: "b@example.com", Name: "Bob"}
	for _, u := range []*models.User{a, b} {
		if err := users.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	if err := users.CreateUser(ctx, &models.User{Username: "a", Email: "other@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate username: %v", err)
	}

	if _, err := users.AddToSet(ctx, a.ID, FollowingField, b.ID); err != nil {
		t.Fatal(err)
	}
	got, err := users.AddToSet(ctx, a.ID, FollowingField, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Following) != 1 {
		t.Fatalf("add to set must not duplicate, got %d", len(got.Following))
	}
	if _, err := users.AddToSet(ctx, b.ID, FollowersField, a.ID); err != nil {
		t.Fatal(err)
	}

	n, err := users.PullFromAll(ctx, FollowersField, a.ID)
	if err != nil || n != 1 {
		t.Fatalf("pull from all: n=%d err=%v", n, err)
	}
	if _, err := users.Pull(ctx, primitive.NewObjectID(), FollowingField, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pull on a missing user: %v", err)
	}

	if err := users.LinkFirebaseUID(ctx, a.ID, "uid-a"); err != nil {
		t.Fatal(err)
	}
	if err := users.LinkFirebaseUID(ctx, a.ID, "uid-other"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("relink should be refused: %v", err)
	}
	if err := users.LinkFirebaseUID(ctx, primitive.NewObjectID(), "uid-x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("link on a missing user: %v", err)
	}
	if linked, err := users.GetUserByFirebaseUID(ctx, "uid-a"); err != nil || linked.ID != a.ID {
		t.Fatalf("first link must be kept: %v", err)
	}

	found, err := users.SearchUsers(ctx, "AN", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != a.ID {
		t.Fatalf("search matched %d users", len(found))
	}
}

func TestMongoRecipeRepository(t *testing.T) {
	db := mongoDatabase(t)
	recipes := NewMongoRecipeRepository(db)
	ctx := context.Background()
	author := primitive.NewObjectID()
	fan := primitive.NewObjectID()

	soup := &models.Recipe{Title: "Lentil Soup", Author: author, Cuisine: "Indian", IsPublished: true,
		CookingTime: models.CookingTime{Prep: 10, Cook: 30}}
	draft := &models.Recipe{Title: "Secret Soup", Author: author, Cuisine: "Indian"}
	for _, r := range []*models.Recipe{soup, draft} {
		if err := recipes.CreateRecipe(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	if soup.CookingTime.Total != 40 {
		t.Fatalf("total time %d", soup.CookingTime.Total)
	}

	liked, err := recipes.AddLike(ctx, soup.ID, fan)
	if err != nil {
		t.Fatal(err)
	}
	if liked, err = recipes.AddLike(ctx, soup.ID, fan); err != nil || len(liked.Likes) != 1 {
		t.Fatalf("second like must be a no-op: %v", err)
	}

	found, err := recipes.FindRecipes(ctx, RecipeQuery{PublishedOnly: true, Text: "soup", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != soup.ID {
		t.Fatalf("published search found %d recipes", len(found))
	}
	if found, err = recipes.FindRecipes(ctx, RecipeQuery{Text: "soup.*", Limit: 10}); err != nil || len(found) != 0 {
		t.Fatalf("search text is literal: %d found, err %v", len(found), err)
	}

	top, err := recipes.TopRecipes(ctx, 5, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].LikeCount != 1 {
		t.Fatalf("top recipes %+v", top)
	}

	deleted, err := recipes.DeleteRecipesByAuthor(ctx, author)
	if err != nil || deleted != 2 {
		t.Fatalf("delete by author: %d %v", deleted, err)
	}
	if _, err := recipes.GetRecipeByID(ctx, soup.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("recipe should be gone: %v", err)
	}
}

func exerciseNotifications(t *testing.T, repo NotificationRepository) {
	t.Helper()
	ctx := context.Background()
	recipient, sender := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	ids := make([]primitive.ObjectID, 3)
	for i := range ids {
		n := &models.Notification{
			ID: primitive.NewObjectID(), Recipient: recipient, Sender: sender,
			Type: models.NotificationLike, Message: fmt.Sprintf("like %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.CreateNotification(ctx, n); err != nil {
			t.Fatal(err)
		}
		ids[i] = n.ID
		if i == 0 {
			if err := repo.CreateNotification(ctx, n); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("redelivered notification: %v", err)
			}
		}
	}

	latest, err := repo.GetByRecipientID(ctx, recipient, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 2 || latest[0].ID != ids[2] || latest[1].ID != ids[1] {
		t.Fatal("notifications should come newest first")
	}
	if unread, err := repo.GetUnreadCount(ctx, recipient); err != nil || unread != 3 {
		t.Fatalf("unread %d %v", unread, err)
	}
	if marked, err := repo.MarkAllAsRead(ctx, recipient); err != nil || marked != 3 {
		t.Fatalf("marked %d %v", marked, err)
	}
	if unread, err := repo.GetUnreadCount(ctx, recipient); err != nil || unread != 0 {
		t.Fatalf("unread after mark %d %v", unread, err)
	}
}

func TestMongoNotificationRepository(t *testing.T) {
	exerciseNotifications(t, NewMongoNotificationRepository(mongoDatabase(t)))
}

func TestPostgresNotificationRepository(t *testing.T) {
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "recipehub",
			"POSTGRES_PASSWORD": "recipehub",
			"POSTGRES_DB":       "recipehub",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(time.Minute),
	}, "5432")

	db, err := gorm.Open(postgres.Open("postgres://recipehub:recipehub@"+addr+"/recipehub?sslmode=disable"),
		&gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	repo := NewPostgresNotificationRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatal(err)
	}
	exerciseNotifications(t, repo)
}
