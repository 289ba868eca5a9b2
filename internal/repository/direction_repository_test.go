package repository

import (
	"testing"
	"time"

	"github.com/transitly/scheduler/internal/model"
)

// TestDirectionFreshness covers the read-side TTL check: the Mongo TTL
// reaper only runs periodically, so Get must reject entries older than the
// TTL on its own.
func TestDirectionFreshness(t *testing.T) {
	t0 := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	ttl := time.Hour
	entry := model.DirectionEntry{
		Key:               model.DirectionKey("A", "B"),
		DistanceInMeter:   5000,
		DurationInSeconds: 600,
		CreatedAt:         t0,
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just written", t0, true},
		{"within ttl", t0.Add(ttl - time.Second), true},
		{"at ttl boundary", t0.Add(ttl), true},
		{"past ttl", t0.Add(ttl + time.Second), false},
		{"long expired", t0.Add(24 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &DirectionRepository{
				ttl: ttl,
				now: func() time.Time { return tt.now },
			}
			if got := repo.fresh(entry); got != tt.want {
				t.Errorf("fresh at %s = %v, want %v", tt.now.Sub(t0), got, tt.want)
			}
		})
	}
}
