package quality

import (
	"testing"
	"time"
)

func TestComposeRounding(t *testing.T) {
	now := time.Now()
	old := now.Add(-72 * time.Hour)

	// reputation 100 contributes the full 40-point cap.
	tests := []struct {
		name       string
		writing    int
		reputation int
		want       int
	}{
		{"fraction below half rounds down", 67, 100, 80},   // 40.2 + 40 = 80.2
		{"fraction above half rounds up", 68, 100, 81},     // 40.8 + 40 = 80.8
		{"high fraction rounds up", 83, 100, 90},           // 49.8 + 40 = 89.8
		{"exact integer unchanged", 60, 100, 76},           // 36.0 + 40 = 76.0
		{"low writing", 54, 100, 72},                       // 32.4 + 40 = 72.4
		{"zero everything", 0, 0, 0},
	}
	for _, tt := range tests {
		got := Compose(tt.writing, tt.reputation, &old, now)
		if got != tt.want {
			t.Errorf("%s: Compose(%d, %d) = %d, want %d",
				tt.name, tt.writing, tt.reputation, got, tt.want)
		}
	}
}

func TestRoundScoreHalfStaysDown(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{74.8, 75},
		{57.4, 57},
		{80.2, 80},
		{80.8, 81},
		{61.0, 61},
		{50.5, 50}, // exactly half rounds down
		{50.51, 51},
	}
	for _, tt := range tests {
		if got := roundScore(tt.in); got != tt.want {
			t.Errorf("roundScore(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestComposeRecencyBonus(t *testing.T) {
	now := time.Now()
	within := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}
	tests := []struct {
		name        string
		publishedAt *time.Time
		want        int
	}{
		{"under six hours", within(3 * time.Hour), 5},
		{"under a day", within(12 * time.Hour), 3},
		{"under two days", within(36 * time.Hour), 1},
		{"older", within(100 * time.Hour), 0},
		{"unknown publication time", nil, 0},
		{"future timestamp", within(-time.Hour), 0},
	}
	for _, tt := range tests {
		if got := recencyBonus(tt.publishedAt, now); got != tt.want {
			t.Errorf("%s: recencyBonus = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestComposeClampsAtHundred(t *testing.T) {
	now := time.Now()
	fresh := now.Add(-time.Hour)
	if got := Compose(100, 100, &fresh, now); got != 100 {
		t.Errorf("Compose(100, 100, fresh) = %d, want 100", got)
	}
}
