package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// DefaultMongoConfig returns the configuration for a local MongoDB.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "flowpen",
		Collection: "revisions",
		Timeout:    5 * time.Second,
	}
}

// MongoRevisions keeps revision records in a MongoDB collection, one
// document per graph keyed by graph id.
type MongoRevisions struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoRevisions connects to MongoDB and verifies the connection.
func NewMongoRevisions(ctx context.Context, cfg MongoConfig) (*MongoRevisions, error) {
	def := DefaultMongoConfig()
	if cfg.URI == "" {
		cfg.URI = def.URI
	}
	if cfg.Database == "" {
		cfg.Database = def.Database
	}
	if cfg.Collection == "" {
		cfg.Collection = def.Collection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoRevisions{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (m *MongoRevisions) Get(ctx context.Context, graphID string) (*Revision, error) {
	var rev Revision
	err := m.coll.FindOne(ctx, bson.M{"_id": graphID}).Decode(&rev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("revision %s: %w", graphID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find revision: %w", err)
	}
	return &rev, nil
}

// Commit increments the revision number atomically on the server.
func (m *MongoRevisions) Commit(ctx context.Context, rev Revision) (*Revision, error) {
	update := bson.M{
		"$set": bson.M{
			"name":       rev.Name,
			"author_id":  rev.AuthorID,
			"files":      rev.Files,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"revision": 1},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out Revision
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": rev.GraphID}, update, opts).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("commit revision: %w", err)
	}
	return &out, nil
}

func (m *MongoRevisions) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Revisions = (*MongoRevisions)(nil)
