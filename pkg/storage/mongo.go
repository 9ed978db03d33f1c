package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
)

// Defaults for the mongo backend.
const (
	DefaultMongoDatabase   = "famtree"
	DefaultMongoCollection = "snapshots"
)

// mongoTimeout bounds a single Load or Save round trip.
const mongoTimeout = 10 * time.Second

// snapshotDoc is the stored document. Data is kept as a string so the
// snapshot stays readable in the mongo shell.
type snapshotDoc struct {
	Key       string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps the snapshot as one document keyed by _id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	key        string
}

// NewMongoStore connects to MongoDB at uri and pings the primary.
// Empty database or collection names fall back to the defaults.
func NewMongoStore(ctx context.Context, uri, database, collection, key string) (*MongoStore, error) {
	if uri == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "mongo backend needs a URI")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	if key == "" {
		key = DefaultKey
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storageError(err, "connect to mongo")
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageError(err, "ping mongo")
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		key:        key,
	}, nil
}

// Load fetches the snapshot document. A missing document is reported as absent.
func (s *MongoStore) Load(ctx context.Context) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var doc snapshotDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageError(err, "mongo find %s", s.key)
	}
	return []byte(doc.Data), true, nil
}

// Save upserts the snapshot document.
func (s *MongoStore) Save(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	doc := snapshotDoc{Key: s.key, Data: string(data), UpdatedAt: time.Now().UTC()}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageError(err, "mongo upsert %s", s.key)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
