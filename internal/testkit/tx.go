package testkit

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/anonto42/recipehub/backend/internal/events"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transactor runs units of work against a Store. In atomic mode a failed unit restores the
// store to its state before the unit started; otherwise earlier writes stay, as on a
// standalone Mongo server.
type Transactor struct {
	store  *Store
	atomic bool
}

var _ repositories.Transactor = (*Transactor)(nil)

// NewTransactor creates a Transactor over store
func NewTransactor(store *Store, atomic bool) *Transactor {
	return &Transactor{store: store, atomic: atomic}
}

// Atomic reports whether failed units are rolled back
func (t *Transactor) Atomic() bool { return t.atomic }

// WithTransaction runs fn, rolling back on error in atomic mode
func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.atomic {
		return fn(ctx)
	}
	users, recipes, notifications := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(users, recipes, notifications)
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[primitive.ObjectID]models.User, map[primitive.ObjectID]models.Recipe, []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make(map[primitive.ObjectID]models.User, len(s.users))
	for id, u := range s.users {
		users[id] = cloneUser(u)
	}
	recipes := make(map[primitive.ObjectID]models.Recipe, len(s.recipes))
	for id, r := range s.recipes {
		recipes[id] = cloneRecipe(r)
	}
	return users, recipes, slices.Clone(s.notifications)
}

func (s *Store) restore(users map[primitive.ObjectID]models.User, recipes map[primitive.ObjectID]models.Recipe, notifications []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = maps.Clone(users)
	s.recipes = maps.Clone(recipes)
	s.notifications = notifications
}

// RecordingPublisher records published social events instead of delivering them
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.SocialEvent

	// Err, when set, is returned by every Publish
	Err error
}

// Publish records event
func (p *RecordingPublisher) Publish(_ context.Context, event events.SocialEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns the recorded events in publish order
func (p *RecordingPublisher) Events() []events.SocialEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// Count returns how many events of type t were recorded
func (p *RecordingPublisher) Count(t models.NotificationType) int {
	n := 0
	for _, e := range p.Events() {
		if e.Type == t {
			n++
		}
	}
	return n
}
