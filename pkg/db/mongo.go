// Package db bootstraps the MongoDB connection and the collection indexes
// the repositories rely on.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transitly/scheduler/config"
)

// Connect creates a Mongo client and returns the configured database handle.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(5*time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}

	// Verify connectivity.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo: ping failed: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes every collection depends on:
//
//	directions: unique key, TTL on created_at (direction cache expiry)
//	programs:   unique id, unique name
//	tasks:      unique id
func EnsureIndexes(ctx context.Context, database *mongo.Database, directionTTL time.Duration) error {
	directions := database.Collection("directions")
	_, err := directions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(directionTTL.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: directions indexes: %w", err)
	}

	programs := database.Collection("programs")
	_, err = programs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: programs indexes: %w", err)
	}

	tasks := database.Collection("tasks")
	_, err = tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: tasks indexes: %w", err)
	}

	return nil
}

// HealthCheck pings the Mongo client and returns nil if healthy.
func HealthCheck(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(pingCtx, nil)
}
