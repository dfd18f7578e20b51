// Package quality runs the composition worker: per-article writing,
// reputation, and recency signals combined into the stored quality
// score, followed by event grouping and a performance snapshot per
// batch.
package quality

import (
	"math"
	"time"
)

const (
	writingWeight    = 0.6
	reputationWeight = 0.4
	reputationCap    = 40.0
)

// Compose combines the writing score, the outlet reputation, and the
// article age into the final 0-100 quality score. The fractional part
// rounds down at exactly .5 and up above it.
func Compose(writing, reputation int, publishedAt *time.Time, now time.Time) int {
	composite := float64(writing)*writingWeight +
		math.Min(float64(reputation)*reputationWeight, reputationCap) +
		float64(recencyBonus(publishedAt, now))
	return clamp(roundScore(composite), 0, 100)
}

// recencyBonus rewards fresh articles: 5 within 6 hours, 3 within 24,
// 1 within 48, 0 otherwise or when the publication time is unknown.
func recencyBonus(publishedAt *time.Time, now time.Time) int {
	if publishedAt == nil {
		return 0
	}
	age := now.Sub(*publishedAt)
	switch {
	case age < 0:
		return 0
	case age <= 6*time.Hour:
		return 5
	case age <= 24*time.Hour:
		return 3
	case age <= 48*time.Hour:
		return 1
	default:
		return 0
	}
}

// roundScore truncates fractional parts up to and including .5 and
// rounds up above it.
func roundScore(v float64) int {
	floor := math.Floor(v)
	if v-floor > 0.5 {
		return int(floor) + 1
	}
	return int(floor)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
