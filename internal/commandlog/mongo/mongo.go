// Package mongo provides a MongoDB implementation of commandlog.Store,
// for hosts that want crash-recoverable command history shared across
// processes.
//
// Grounded on features/runlog/mongo/clients/mongo/client.go's
// ObjectID-ordered append/list shape (insert assigns the id, List pages
// by "_id $gt cursor"), adapted to this module's
// go.mongodb.org/mongo-driver/v2 dependency (the teacher's example
// imports the v1 driver's import paths; v2 renamed bson/options/mongo
// under a /v2 prefix, see catalog/mongo/mongo.go for the same
// correction).
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/waffle-iron/core/internal/commandlog"
)

// Store is a MongoDB implementation of commandlog.Store.
type Store struct {
	collection *mongo.Collection
}

var _ commandlog.Store = (*Store)(nil)

type entryDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	ProjectID string        `bson:"project_id"`
	Command   []byte        `bson:"command"`
	Timestamp time.Time     `bson:"timestamp"`
}

// New creates a MongoDB-backed Store over an already-connected collection.
func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection}
}

// EnsureIndexes creates the compound index List relies on for ordered,
// project-scoped pagination.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("commandlog/mongo: ensure indexes: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, e *commandlog.Entry) error {
	if e == nil {
		return fmt.Errorf("commandlog/mongo: entry is required")
	}
	if e.ProjectID == "" {
		return fmt.Errorf("commandlog/mongo: project_id is required")
	}

	doc := entryDocument{
		ProjectID: e.ProjectID,
		Command:   append([]byte(nil), e.Command...),
		Timestamp: e.Timestamp.UTC(),
	}
	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("commandlog/mongo: append: %w", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("commandlog/mongo: unexpected inserted id type %T", res.InsertedID)
	}
	e.ID = oid.Hex()
	return nil
}

func (s *Store) List(ctx context.Context, projectID string, cursor string, limit int) (commandlog.Page, error) {
	if projectID == "" {
		return commandlog.Page{}, fmt.Errorf("commandlog/mongo: project_id is required")
	}
	if limit <= 0 {
		return commandlog.Page{}, fmt.Errorf("commandlog/mongo: limit must be > 0")
	}

	filter := bson.M{"project_id": projectID}
	if cursor != "" {
		oid, err := bson.ObjectIDFromHex(cursor)
		if err != nil {
			return commandlog.Page{}, fmt.Errorf("commandlog/mongo: invalid cursor %q: %w", cursor, err)
		}
		filter["_id"] = bson.M{"$gt": oid}
	}

	cur, err := s.collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit+1)),
	)
	if err != nil {
		return commandlog.Page{}, fmt.Errorf("commandlog/mongo: list: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var docs []entryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return commandlog.Page{}, fmt.Errorf("commandlog/mongo: list decode: %w", err)
	}

	var next string
	if len(docs) > limit {
		next = docs[limit-1].ID.Hex()
		docs = docs[:limit]
	}

	entries := make([]commandlog.Entry, len(docs))
	for i, d := range docs {
		entries[i] = commandlog.Entry{
			ID:        d.ID.Hex(),
			ProjectID: d.ProjectID,
			Command:   append([]byte(nil), d.Command...),
			Timestamp: d.Timestamp,
		}
	}

	return commandlog.Page{Entries: entries, NextCursor: next}, nil
}
