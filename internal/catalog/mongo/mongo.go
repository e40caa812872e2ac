// Package mongo provides a MongoDB implementation of catalog.Store, for
// a multi-seat deployment where the project catalog must survive a
// restart and be shared across hosts.
//
// Grounded on registry/store/mongo/mongo.go's document-translation and
// upsert-by-replace shape, adapted to this module's go.mongodb.org/
// mongo-driver/v2 dependency (the teacher's example imports the v1
// driver's import paths; v2 renamed bson/options/mongo under a /v2
// prefix and moved context deadlines onto client options rather than
// per-call timeouts, so mongo.Connect itself takes no context — see
// mongo_test.go's setupMongo for the construction side of that).
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/waffle-iron/core/internal/catalog"
)

// Store is a MongoDB implementation of catalog.Store.
type Store struct {
	collection *mongo.Collection
}

var _ catalog.Store = (*Store)(nil)

// entryDocument is the MongoDB document representation of a catalog.Entry.
type entryDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Path         string    `bson:"path"`
	Units        string    `bson:"units,omitempty"`
	FeatureCount int       `bson:"feature_count"`
	Tags         []string  `bson:"tags,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// New creates a MongoDB-backed Store over an already-connected collection.
func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection}
}

// EnsureIndexes creates the indexes SearchMeta and ListMeta rely on.
// Safe to call on every process start; CreateMany is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "path", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("catalog/mongo: ensure indexes: %w", err)
	}
	return nil
}

func (s *Store) SaveMeta(ctx context.Context, entry catalog.Entry) error {
	doc := toDocument(entry)
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": entry.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("catalog/mongo: save %q: %w", entry.ID, err)
	}
	return nil
}

func (s *Store) GetMeta(ctx context.Context, id string) (catalog.Entry, error) {
	var doc entryDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalog.Entry{}, catalog.ErrNotFound
		}
		return catalog.Entry{}, fmt.Errorf("catalog/mongo: get %q: %w", id, err)
	}
	return fromDocument(doc), nil
}

func (s *Store) DeleteMeta(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("catalog/mongo: delete %q: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) ListMeta(ctx context.Context, tags []string) ([]catalog.Entry, error) {
	filter := bson.M{}
	if len(tags) > 0 {
		filter["tags"] = bson.M{"$all": tags}
	}
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("catalog/mongo: list: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("catalog/mongo: list decode: %w", err)
	}
	return fromDocuments(docs), nil
}

func (s *Store) SearchMeta(ctx context.Context, query string) ([]catalog.Entry, error) {
	regex := bson.M{"$regex": escapeRegex(query), "$options": "i"}
	filter := bson.M{"$or": []bson.M{{"name": regex}, {"path": regex}}}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("catalog/mongo: search: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("catalog/mongo: search decode: %w", err)
	}
	return fromDocuments(docs), nil
}

func toDocument(e catalog.Entry) entryDocument {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return entryDocument{
		ID:           e.ID,
		Name:         e.Name,
		Path:         e.Path,
		Units:        e.Units,
		FeatureCount: e.FeatureCount,
		Tags:         tags,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func fromDocument(doc entryDocument) catalog.Entry {
	return catalog.Entry{
		ID:           doc.ID,
		Name:         doc.Name,
		Path:         doc.Path,
		Units:        doc.Units,
		FeatureCount: doc.FeatureCount,
		Tags:         doc.Tags,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func fromDocuments(docs []entryDocument) []catalog.Entry {
	out := make([]catalog.Entry, len(docs))
	for i, d := range docs {
		out[i] = fromDocument(d)
	}
	return out
}

func escapeRegex(s string) string {
	special := []string{"\\", ".", "+", "*", "?", "^", "$", "(", ")", "[", "]", "{", "}", "|"}
	result := s
	for _, c := range special {
		result = strings.ReplaceAll(result, c, "\\"+c)
	}
	return result
}
