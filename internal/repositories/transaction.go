package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs a unit of work that touches more than one document.
// Atomic reports whether the unit is backed by a multi-document transaction; when it is not,
// a failure part way through leaves the earlier writes committed.
// Neither mode orders concurrent units on the same documents: two racing toggles
// can both read the old state, and the last write wins.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// MongoTransactor uses session transactions when the deployment supports them
// (replica set or sharded cluster). Standalone servers run fn directly.
type MongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

// NewMongoTransactor creates a new MongoTransactor
func NewMongoTransactor(client *mongo.Client, enabled bool) *MongoTransactor {
	return &MongoTransactor{client: client, enabled: enabled && client != nil}
}

// Atomic reports whether session transactions are in use
func (t *MongoTransactor) Atomic() bool {
	return t.enabled
}

// WithTransaction runs fn inside a session transaction, retrying on transient transaction errors
func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
