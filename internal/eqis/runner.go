package eqis

import (
	"context"
	"strings"
	"time"

	"newsengine/internal/core"
	"newsengine/internal/logger"
	"newsengine/internal/persistence"
)

// Runner scores every event once per invocation, the analytics batch
// job behind `newsd analytics`.
type Runner struct {
	store   *persistence.DB
	weights Weights
	params  Params
}

// NewRunner creates a Runner with the given weights and parameters.
func NewRunner(store *persistence.DB, weights Weights, params Params) *Runner {
	return &Runner{store: store, weights: weights, params: params}
}

// Run recomputes the EQIS row of every event. Per-event failures are
// logged and the pass continues; only listing failures abort.
func (r *Runner) Run(ctx context.Context) error {
	events, err := r.store.Events.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		logger.Info("no events to score")
		return nil
	}

	profiles := r.loadProfiles(ctx)
	logger.Info("scoring events", "events", len(events))

	var scored int
	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.scoreEvent(ctx, event.ID, profiles); err != nil {
			logger.Error("event scoring failed", err, "event_id", event.ID)
			continue
		}
		scored++
	}
	logger.Info("event scoring finished", "scored", scored, "events", len(events))
	return nil
}

// loadProfiles maps lowercase outlet names to authority weights. An
// unreachable authority table degrades to the built-in defaults.
func (r *Runner) loadProfiles(ctx context.Context) map[string]OutletProfile {
	authorities, err := r.store.Reputation.ListAuthorities(ctx)
	if err != nil {
		logger.Warn("outlet authority load failed, using defaults", "error", err.Error())
		return nil
	}
	profiles := make(map[string]OutletProfile, len(authorities))
	for outlet, authority := range authorities {
		profiles[strings.ToLower(outlet)] = OutletProfile{
			AuthorityWeight: authority / 100,
			CorrectionRate:  defaultCorrectionRate,
		}
	}
	return profiles
}

func (r *Runner) scoreEvent(ctx context.Context, eventID int64, profiles map[string]OutletProfile) error {
	articles, err := r.store.Events.ArticlesForEvent(ctx, eventID)
	if err != nil {
		return err
	}
	claims, err := r.store.Events.ClaimsForEvent(ctx, eventID)
	if err != nil {
		return err
	}

	result := Compute(articles, claims, profiles, r.params, time.Now().UTC())
	result.EQIS = Combine(result.Components, r.weights)

	metrics := &core.EventMetrics{
		EventID:           eventID,
		AgeDays:           result.AgeDays,
		CoverageSites:     result.CoverageSites,
		KeywordCoherence:  result.Components["coherence"],
		BestSource:        result.BestSource,
		CorroborationRate: result.CorroborationRate,
		ContradictionRate: result.ContradictionRate,
		CorrectionRisk:    result.CorrectionRisk,
		EQISScore:         result.EQIS,
		Components:        result.Components,
	}
	if err := r.store.Events.UpsertMetrics(ctx, metrics); err != nil {
		return err
	}
	logger.Debug("event scored",
		"event_id", eventID,
		"eqis", result.EQIS,
		"best_source", result.BestSource)
	return nil
}
