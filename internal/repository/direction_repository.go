package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transitly/scheduler/internal/model"
)

// DirectionRepository stores cached routing results keyed on
// "{origin}|{destination}".
//
// The collection carries a TTL index on created_at, but the reaper only
// runs periodically, so Get additionally rejects entries older than the
// configured TTL.
type DirectionRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

// NewDirectionRepository creates a repository over the `directions`
// collection with the given entry lifetime.
func NewDirectionRepository(database *mongo.Database, ttl time.Duration) *DirectionRepository {
	return &DirectionRepository{
		collection: database.Collection("directions"),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get reads a cached direction. Returns (direction, true) on a fresh hit;
// (zero, false) on a miss or an expired entry.
func (r *DirectionRepository) Get(ctx context.Context, origin, destination string) (model.Direction, bool, error) {
	var entry model.DirectionEntry
	err := r.collection.FindOne(ctx, bson.M{"key": model.DirectionKey(origin, destination)}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Direction{}, false, nil
	}
	if err != nil {
		return model.Direction{}, false, fmt.Errorf("get direction: %w", err)
	}

	if !r.fresh(entry) {
		// Expired but not yet reaped by the TTL index.
		return model.Direction{}, false, nil
	}

	return model.Direction{
		DistanceInMeter:   entry.DistanceInMeter,
		DurationInSeconds: entry.DurationInSeconds,
	}, true, nil
}

// fresh reports whether a cached entry is still within the TTL.
func (r *DirectionRepository) fresh(entry model.DirectionEntry) bool {
	return r.now().UTC().Sub(entry.CreatedAt) <= r.ttl
}

// Put upserts a direction entry, resetting created_at so the TTL clock
// restarts. Concurrent writers for the same key are idempotent.
func (r *DirectionRepository) Put(ctx context.Context, origin, destination string, direction model.Direction) error {
	entry := model.DirectionEntry{
		Key:               model.DirectionKey(origin, destination),
		DistanceInMeter:   direction.DistanceInMeter,
		DurationInSeconds: direction.DurationInSeconds,
		CreatedAt:         r.now().UTC(),
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"key": entry.Key},
		bson.M{"$set": entry},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put direction: %w", err)
	}
	return nil
}
