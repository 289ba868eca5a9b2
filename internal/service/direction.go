// Package service contains the core business logic for shuttle scheduling.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/pkg/routing"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	// ErrNoRoute means the routing provider answered with no legs for a
	// required address pair. Never cached.
	ErrNoRoute = routing.ErrNoRoute

	// ErrProvider means the routing provider call itself failed. Never
	// cached.
	ErrProvider = errors.New("routing provider error")
)

// ─── DirectionService ───────────────────────────────────────

// DirectionStore is the persistent half of the direction cache.
type DirectionStore interface {
	Get(ctx context.Context, origin, destination string) (model.Direction, bool, error)
	Put(ctx context.Context, origin, destination string, direction model.Direction) error
}

// DirectionService resolves travel distance/duration between address pairs.
//
// Read path: Redis (fast, optional) → Mongo (authoritative cache) → routing
// provider. Misses for the same key are collapsed through a single-flight
// group so at most one provider call per key is in flight; losers wait for
// the winner's result.
type DirectionService struct {
	store    DirectionStore
	provider routing.Provider
	redis    *redis.Client // nil disables the fast path
	ttl      time.Duration

	group singleflight.Group
}

// NewDirectionService wires the composite cache. redisClient may be nil.
func NewDirectionService(store DirectionStore, provider routing.Provider, redisClient *redis.Client, ttl time.Duration) *DirectionService {
	return &DirectionService{
		store:    store,
		provider: provider,
		redis:    redisClient,
		ttl:      ttl,
	}
}

const redisDirectionKeyPrefix = "direction:"

// Fetch returns the travel distance/duration from origin to destination.
// departAt is an optional hint forwarded to the provider on a cache miss;
// pass the zero time when unknown.
func (s *DirectionService) Fetch(ctx context.Context, origin, destination string, departAt time.Time) (model.Direction, error) {
	key := model.DirectionKey(origin, destination)

	// ── Fast path: Redis ────────────────────────────────
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, redisDirectionKeyPrefix+key).Bytes(); err == nil {
			var direction model.Direction
			if err := json.Unmarshal(raw, &direction); err == nil {
				return direction, nil
			}
		}
	}

	// ── Authoritative cache: Mongo ──────────────────────
	direction, ok, err := s.store.Get(ctx, origin, destination)
	if err != nil {
		return model.Direction{}, err
	}
	if ok {
		s.cacheInRedis(ctx, key, direction)
		return direction, nil
	}

	// ── Miss: ask the provider, once per key ────────────
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		direction, err := s.provider.Directions(ctx, origin, destination, departAt)
		if errors.Is(err, routing.ErrNoRoute) {
			return nil, ErrNoRoute
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}

		if err := s.store.Put(ctx, origin, destination, direction); err != nil {
			return model.Direction{}, err
		}
		s.cacheInRedis(ctx, key, direction)
		return direction, nil
	})
	if err != nil {
		return model.Direction{}, err
	}
	return result.(model.Direction), nil
}

// cacheInRedis mirrors an entry into the Redis fast path. Fire-and-forget:
// Redis being down never fails a lookup.
func (s *DirectionService) cacheInRedis(ctx context.Context, key string, direction model.Direction) {
	if s.redis == nil {
		return
	}
	if raw, err := json.Marshal(direction); err == nil {
		_ = s.redis.Set(ctx, redisDirectionKeyPrefix+key, raw, s.ttl).Err()
	}
}
