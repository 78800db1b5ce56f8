package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// Defaults for MongoStore.
const (
	DefaultDatabase   = "heatmap"
	DefaultCollection = "layouts"
)

const connectTimeout = 10 * time.Second

// mongoDoc is the stored form of a snapshot. The layout is kept as its JSON
// encoding so that the document schema does not follow the Go types.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title,omitempty"`
	Cells     int       `bson:"cells"`
	CreatedAt time.Time `bson:"created_at"`
	Layout    []byte    `bson:"layout,omitempty"`
}

// MongoStore keeps snapshots in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to uri and uses database/collection. Empty names
// fall back to DefaultDatabase and DefaultCollection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("heatmap"))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewMongoStoreFromCollection(client.Database(database).Collection(collection))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect the collection's client.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll, now: time.Now}
}

// EnsureIndexes creates the index used by List.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, l *heatmap.Layout) (string, error) {
	if l == nil {
		return "", herrors.New(herrors.ErrCodeInvalidInput, "layout is nil")
	}
	data, err := heatmap.Marshal(l)
	if err != nil {
		return "", err
	}
	doc := mongoDoc{
		ID:        NewID(),
		Title:     l.Title,
		Cells:     len(l.Cells),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Layout:    data,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	return doc.ID, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := herrors.ValidateLayoutID(id); err != nil {
		return nil, notFound(id)
	}

	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", id, err)
	}

	l, err := heatmap.Unmarshal(doc.Layout)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return &Snapshot{ID: doc.ID, CreatedAt: doc.CreatedAt, Layout: l}, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(clampLimit(limit))).
		SetProjection(bson.M{"layout": 0})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}

	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = Summary{ID: d.ID, Title: d.Title, Cells: d.Cells, CreatedAt: d.CreatedAt}
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := herrors.ValidateLayoutID(id); err != nil {
		return notFound(id)
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client opened by NewMongoStore.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
