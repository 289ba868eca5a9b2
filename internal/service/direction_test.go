package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/transitly/scheduler/internal/model"
)

// fakeStore is an in-memory DirectionStore.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]model.Direction
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]model.Direction)}
}

func (s *fakeStore) Get(_ context.Context, origin, destination string) (model.Direction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.entries[model.DirectionKey(origin, destination)]
	return d, ok, nil
}

func (s *fakeStore) Put(_ context.Context, origin, destination string, d model.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[model.DirectionKey(origin, destination)] = d
	s.puts++
	return nil
}

// fakeProvider counts calls and serves canned routes.
type fakeProvider struct {
	calls  int64
	routes map[string]model.Direction
	err    error
	delay  time.Duration
}

func (p *fakeProvider) Directions(_ context.Context, origin, destination string, _ time.Time) (model.Direction, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return model.Direction{}, p.err
	}
	d, ok := p.routes[model.DirectionKey(origin, destination)]
	if !ok {
		return model.Direction{}, ErrNoRoute
	}
	return d, nil
}

func TestFetch_MissThenHit(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{routes: map[string]model.Direction{
		"A|B": {DistanceInMeter: 5000, DurationInSeconds: 600},
	}}
	svc := NewDirectionService(store, provider, nil, time.Hour)

	got, err := svc.Fetch(context.Background(), "A", "B", time.Time{})
	if err != nil {
		t.Fatalf("Fetch miss: %v", err)
	}
	if got.DistanceInMeter != 5000 || got.DurationInSeconds != 600 {
		t.Errorf("Fetch = %+v, want 5000m/600s", got)
	}
	if store.puts != 1 {
		t.Errorf("store.puts = %d, want 1", store.puts)
	}

	// Second fetch must come from the store, not the provider.
	if _, err := svc.Fetch(context.Background(), "A", "B", time.Time{}); err != nil {
		t.Fatalf("Fetch hit: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestFetch_NoRouteNotCached(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{routes: map[string]model.Direction{}}
	svc := NewDirectionService(store, provider, nil, time.Hour)

	if _, err := svc.Fetch(context.Background(), "A", "B", time.Time{}); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("Fetch = %v, want ErrNoRoute", err)
	}
	if store.puts != 0 {
		t.Errorf("NoRoute was cached: puts = %d", store.puts)
	}
}

func TestFetch_ProviderErrorWrapped(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{err: errors.New("connection reset")}
	svc := NewDirectionService(store, provider, nil, time.Hour)

	_, err := svc.Fetch(context.Background(), "A", "B", time.Time{})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("Fetch = %v, want ErrProvider", err)
	}
	if store.puts != 0 {
		t.Errorf("provider failure was cached: puts = %d", store.puts)
	}
}

func TestFetch_SingleFlight(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{
		routes: map[string]model.Direction{"A|B": {DistanceInMeter: 100, DurationInSeconds: 60}},
		delay:  50 * time.Millisecond,
	}
	svc := NewDirectionService(store, provider, nil, time.Hour)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Fetch(context.Background(), "A", "B", time.Time{}); err != nil {
				t.Errorf("concurrent Fetch: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt64(&provider.calls); calls != 1 {
		t.Errorf("provider calls = %d, want 1 (single-flight)", calls)
	}
}
