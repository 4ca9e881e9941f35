// Package mongodb implements the domain repositories on MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"trujobs-api/pkg/logger"
)

const (
	ColHRs            = "hrs"
	ColJobs           = "jobs"
	ColUsers          = "users"
	ColSecurityEvents = "security_events"
)

// Store owns the client and database handle shared by every repository.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	// multi-document transactions need a replica set
	transactions bool
}

func Connect(ctx context.Context, uri, dbName string, transactions bool) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping failed: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName), transactions: transactions}
	if err := s.EnsureIndexes(ctx); err != nil {
		logger.Log.Warn("mongodb: ensure indexes failed", "error", err)
	}
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	type idx struct {
		col   string
		model mongo.IndexModel
	}

	indexes := []idx{
		// one account per (provider, provider id); accounts without bindings are not indexed
		{ColHRs, mongo.IndexModel{
			Keys: bson.D{{Key: "oauth_providers.provider", Value: 1}, {Key: "oauth_providers.provider_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_oauth_binding").
				SetPartialFilterExpression(bson.D{{Key: "oauth_providers.provider_id", Value: bson.D{{Key: "$exists", Value: true}}}}),
		}},
		{ColHRs, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}}},
		{ColHRs, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}}},

		{ColJobs, mongo.IndexModel{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "company", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("job_text"),
		}},
		{ColJobs, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "posted_at", Value: -1}}}},
		{ColJobs, mongo.IndexModel{Keys: bson.D{{Key: "posted_by", Value: 1}}}},

		{ColUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},

		{ColSecurityEvents, mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: -1}}}},
		{ColSecurityEvents, mongo.IndexModel{Keys: bson.D{{Key: "event", Value: 1}}}},
	}

	for _, i := range indexes {
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}
