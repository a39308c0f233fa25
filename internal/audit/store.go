// Package audit mirrors booked trades, position updates, and per-CUSIP PV01
// risk to MongoDB as a write-only audit trail. It never restores state on boot:
// bondpipe's live services are the source of truth, the mirror is read-only
// for downstream reporting.
//
// Grounded on _examples/ndrandal-feed-simulator/internal/persist/store.go
// and schema.go (connect/ping/index pattern), adapted from a restorable
// simulator snapshot to an audit mirror: trades are inserted, positions and
// risk are upserted per CUSIP, and retention prunes old trades.
package audit

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store wraps the MongoDB client and database used by the audit mirror.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and returns a Store. If uri carries no
// database name in its path, db is used instead.
func NewStore(ctx context.Context, uri, db string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	dbName := db
	if u, err := url.Parse(uri); err == nil {
		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			dbName = name
		}
	}

	log.Printf("audit: connected to MongoDB (db=%s)", dbName)
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) {
	s.client.Disconnect(ctx)
}

// Migrate creates the mirror's indexes.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{"trades", mongo.IndexModel{
			Keys:    bson.D{{Key: "trade_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"trades", mongo.IndexModel{
			Keys: bson.D{{Key: "cusip", Value: 1}, {Key: "booked_at", Value: -1}},
		}},
		{"positions", mongo.IndexModel{
			Keys:    bson.D{{Key: "cusip", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"risk", mongo.IndexModel{
			Keys:    bson.D{{Key: "cusip", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
	}
	for _, i := range indexes {
		if _, err := s.db.Collection(i.collection).Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.collection, err)
		}
	}
	log.Println("audit: MongoDB indexes ensured")
	return nil
}
