// Package store persists scraped records in MongoDB: profile upserts keyed
// by external id, delete-then-bulk-insert replacement for child collections,
// and index bootstrap at startup.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/logger"
)

// Collection names
const (
	collProfiles = "profiles"
	collPosts    = "posts"
	collComments = "comments"
	collPeople   = "people"
)

// Store wraps the MongoDB connection and exposes the repositories
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    logger.Logger
}

// Connect establishes the MongoDB connection and verifies it with a ping
func Connect(ctx context.Context, cfg config.MongoConfig, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeStoreUnavailable, "mongo connect: %v", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, errs.Newf(errs.ErrorTypeStoreUnavailable, "mongo ping: %v", err)
	}

	log.WithField("database", cfg.Database).Info("connected to persistent store")

	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
		log:    log,
	}, nil
}

// EnsureIndexes creates all required indexes. Safe to call on every startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collProfiles: {
			{Keys: bson.D{{Key: "external_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "follower_count", Value: -1}}},
			{Keys: bson.D{{Key: "industry", Value: 1}}},
			{Keys: bson.D{{Key: "follower_count", Value: -1}, {Key: "industry", Value: 1}}},
		},
		collPosts: {
			{Keys: bson.D{{Key: "profile_id", Value: 1}}},
			{Keys: bson.D{{Key: "profile_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collComments: {
			{Keys: bson.D{{Key: "post_id", Value: 1}}},
			{Keys: bson.D{{Key: "profile_id", Value: 1}}},
		},
		collPeople: {
			{Keys: bson.D{{Key: "profile_id", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll, err)
		}
	}

	s.log.Info("store indexes ensured")
	return nil
}

// Ping checks store connectivity
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errs.Newf(errs.ErrorTypeStoreUnavailable, "mongo ping: %v", err)
	}
	return nil
}

// Close disconnects from MongoDB
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
