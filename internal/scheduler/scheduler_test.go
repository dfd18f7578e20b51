package scheduler

import (
	"testing"
	"time"

	"newsengine/internal/core"
)

func TestDue(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	fetched := func(ago time.Duration) *time.Time {
		ts := now.Add(-ago)
		return &ts
	}

	tests := []struct {
		name string
		feed core.Feed
		want bool
	}{
		{"never fetched", core.Feed{PollInterval: 30}, true},
		{"interval elapsed", core.Feed{PollInterval: 30, LastFetched: fetched(31 * time.Minute)}, true},
		{"exactly at interval", core.Feed{PollInterval: 30, LastFetched: fetched(30 * time.Minute)}, true},
		{"not yet due", core.Feed{PollInterval: 30, LastFetched: fetched(10 * time.Minute)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := due(tt.feed, now); got != tt.want {
				t.Errorf("due() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetTick(t *testing.T) {
	s := New(nil, nil)
	s.SetTick(5 * time.Minute)
	if s.tick != 5*time.Minute {
		t.Errorf("tick = %v, want 5m", s.tick)
	}
	s.SetTick(0)
	if s.tick != 5*time.Minute {
		t.Errorf("zero tick must be ignored, got %v", s.tick)
	}
	s.SetTick(-time.Second)
	if s.tick != 5*time.Minute {
		t.Errorf("negative tick must be ignored, got %v", s.tick)
	}
}
