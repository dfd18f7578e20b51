package grouping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"newsengine/internal/core"
	"newsengine/internal/logger"
	"newsengine/internal/metrics"
	"newsengine/internal/persistence"
)

const (
	// performanceThreshold is the minimum overall score a historical
	// snapshot needs to be restored at startup, and the line below
	// which batches are flagged as underperforming.
	performanceThreshold = 70.0

	// autoTuneTolerance keeps the tuner quiet for scores that are below
	// the threshold but close to it.
	autoTuneTolerance = 10.0

	startupWindowDays = 30

	// minSnapshotGap throttles runtime snapshots for batches that
	// created no events.
	minSnapshotGap = 5 * time.Minute
)

// Manager owns the live grouping configuration of one service
// instance: it restores the best historical configuration at startup,
// records a snapshot per batch, and emits advisory tuning suggestions
// when performance degrades. Suggestions are logged to the change-event
// table and never applied automatically.
type Manager struct {
	store    *persistence.DB
	scorer   *Scorer
	instance string

	mu           sync.Mutex
	config       core.GroupingConfig
	generation   int
	lastOverall  *float64
	lastSnapshot time.Time
}

// NewManager creates a Manager for the named service instance.
func NewManager(store *persistence.DB, instance string) *Manager {
	return &Manager{
		store:    store,
		scorer:   NewScorer(),
		instance: instance,
	}
}

// LoadStartup selects the working configuration: the best runtime or
// manual snapshot of the last 30 days scoring at least the threshold,
// else the latest snapshot of any kind, else the conservative defaults.
// The selection is recorded as a startup snapshot.
func (m *Manager) LoadStartup(ctx context.Context) (core.GroupingConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, note := m.selectStartupConfig(ctx)
	if err := cfg.Validate(); err != nil {
		logger.Warn("restored grouping config invalid, using defaults", "error", err.Error())
		cfg = core.DefaultGroupingConfig()
		note = "invalid historical config replaced with conservative defaults"
	}

	gen, err := m.store.System.MaxGeneration(ctx, m.instance)
	if err != nil {
		logger.Warn("generation lookup failed, starting at 1", "error", err.Error())
		gen = 0
	}
	m.config = cfg
	m.generation = gen + 1

	snapshot := &core.PerformanceSnapshot{
		Config:          cfg,
		Source:          core.ConfigSourceStartup,
		ServiceInstance: m.instance,
		Generation:      m.generation,
		Notes:           note,
		Trend:           core.TrendInitial,
	}
	if _, err := m.store.System.InsertSnapshot(ctx, snapshot); err != nil {
		logger.Warn("startup snapshot write failed", "error", err.Error())
	}

	logger.Info("grouping configuration loaded",
		"instance", m.instance,
		"generation", m.generation,
		"min_shared_entities", cfg.MinSharedEntities,
		"entity_overlap_threshold", cfg.EntityOverlapThreshold,
		"max_time_diff_hours", cfg.MaxTimeDiffHours)
	m.logRecentPerformance(ctx)
	return cfg, nil
}

// logRecentPerformance reports the last day's aggregate for this
// instance, so operators see the baseline a restart inherits.
func (m *Manager) logRecentPerformance(ctx context.Context) {
	summary, err := m.store.System.SummarizePerformance(ctx, m.instance, 24)
	if err != nil {
		logger.Warn("performance summary unavailable", "error", err.Error())
		return
	}
	if summary.Snapshots == 0 {
		return
	}
	logger.Info("performance over the last 24h",
		"snapshots", summary.Snapshots,
		"articles", summary.ArticlesProcessed,
		"events", summary.EventsCreated,
		"avg_overall", summary.AvgOverall,
		"best_overall", summary.BestOverall,
		"grade", Grade(summary.AvgOverall))
}

func (m *Manager) selectStartupConfig(ctx context.Context) (core.GroupingConfig, string) {
	best, err := m.store.System.BestSnapshot(ctx, startupWindowDays, performanceThreshold)
	if err == nil {
		return best.Config, fmt.Sprintf("restored high-performing config (score %.1f)", best.Scores.Overall)
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		logger.Warn("best-snapshot lookup failed", "error", err.Error())
	}

	latest, err := m.store.System.LatestSnapshot(ctx)
	if err == nil {
		return latest.Config, fmt.Sprintf("no high-scoring config in window, using latest (score %.1f)", latest.Scores.Overall)
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		logger.Warn("latest-snapshot lookup failed", "error", err.Error())
	}
	return core.DefaultGroupingConfig(), "no configuration history, conservative defaults"
}

// Current returns the active configuration.
func (m *Manager) Current() core.GroupingConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// RecordBatch scores a batch, persists a runtime snapshot, and
// considers tuning suggestions. Batches that created no events are
// throttled to one snapshot per five minutes. Snapshot failures are
// logged and do not interrupt the worker.
func (m *Manager) RecordBatch(ctx context.Context, batch core.BatchMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scores, trend := m.scorer.Score(batch, m.lastOverall)
	overall := scores.Overall
	m.lastOverall = &overall
	metrics.BatchOverallScore.Set(scores.Overall)

	if batch.EventsCreated == 0 && time.Since(m.lastSnapshot) < minSnapshotGap {
		return
	}

	snapshot := &core.PerformanceSnapshot{
		Config:          m.config,
		Metrics:         batch,
		Scores:          scores,
		Source:          core.ConfigSourceRuntime,
		ServiceInstance: m.instance,
		Generation:      m.generation,
		Notes:           fmt.Sprintf("runtime snapshot, %s trend", trend),
		Trend:           trend,
	}
	id, err := m.store.System.InsertSnapshot(ctx, snapshot)
	if err != nil {
		logger.Warn("runtime snapshot write failed", "error", err.Error())
		return
	}
	m.lastSnapshot = time.Now()

	logger.Info("batch performance recorded",
		"snapshot_id", id,
		"overall", scores.Overall,
		"grade", Grade(scores.Overall),
		"trend", string(trend))

	if scores.Overall < performanceThreshold {
		m.considerAutoTune(ctx, scores, batch, id)
	}
}

// considerAutoTune emits parameter suggestions targeting the worst
// component when the score sits well under the threshold. Caller holds
// the lock.
func (m *Manager) considerAutoTune(ctx context.Context, scores core.PerformanceScores, batch core.BatchMetrics, snapshotID int64) {
	if scores.Overall >= performanceThreshold-autoTuneTolerance {
		logger.Info("performance below threshold but within tolerance",
			"overall", scores.Overall)
		return
	}

	component, worst := worstComponent(scores)
	logger.Warn("performance significantly below threshold, suggesting adjustments",
		"overall", scores.Overall,
		"worst_component", component,
		"worst_score", worst)

	adjustments := m.suggestAdjustments(component, batch)
	if len(adjustments) == 0 {
		return
	}

	for param, change := range adjustments {
		ev := &core.ConfigChangeEvent{
			ParameterName:     param,
			OldValue:          change.old,
			NewValue:          change.new,
			ChangeReason:      "auto_tune_suggestion_" + component,
			TargetImprovement: "improve_" + component,
			SnapshotID:        &snapshotID,
			TriggeredBy:       "auto_tuner_" + m.instance,
		}
		if err := m.store.System.InsertChangeEvent(ctx, ev); err != nil {
			logger.Warn("change-event write failed", "parameter", param, "error", err.Error())
		}
	}
}

type suggestedChange struct {
	old string
	new string
}

// suggestAdjustments maps the worst component to parameter nudges
// within each parameter's bounded domain. Caller holds the lock.
func (m *Manager) suggestAdjustments(component string, batch core.BatchMetrics) map[string]suggestedChange {
	cfg := m.config
	out := map[string]suggestedChange{}

	switch component {
	case "effectiveness":
		// Low event creation: relax matching requirements.
		if batch.EventCreationRate < 0.15 {
			if cfg.MinSharedEntities > 1 {
				out["min_shared_entities"] = intChange(cfg.MinSharedEntities, cfg.MinSharedEntities-1)
			}
			if cfg.EntityOverlapThreshold > 0.150 {
				out["entity_overlap_threshold"] = floatChange(cfg.EntityOverlapThreshold,
					maxFloat(0.150, cfg.EntityOverlapThreshold-0.050))
			}
			if cfg.MaxTimeDiffHours < 72 {
				out["max_time_diff_hours"] = intChange(cfg.MaxTimeDiffHours,
					minInt(72, cfg.MaxTimeDiffHours+12))
			}
		}
	case "efficiency":
		// Slow batches: shorter entities, more aggressive noise filtering.
		if cfg.MaxEntityLength > 30 {
			out["max_entity_length"] = intChange(cfg.MaxEntityLength, 30)
		}
		if cfg.EntityNoiseThreshold < 0.300 {
			out["entity_noise_threshold"] = floatChange(cfg.EntityNoiseThreshold, 0.300)
		}
	case "coverage":
		// Low coverage: make grouping more inclusive.
		if cfg.MinSharedEntities > 1 {
			out["min_shared_entities"] = intChange(cfg.MinSharedEntities, cfg.MinSharedEntities-1)
		}
		if cfg.EntityOverlapThreshold > 0.200 {
			out["entity_overlap_threshold"] = floatChange(cfg.EntityOverlapThreshold,
				maxFloat(0.200, cfg.EntityOverlapThreshold-0.030))
		}
	case "precision":
		avg := batch.AvgArticlesPerEvent
		if avg < 1.8 {
			// Too many near-singletons: same relaxation as low coverage.
			return m.suggestAdjustments("coverage", batch)
		}
		if avg > 4.5 {
			if cfg.MinSharedEntities < 3 {
				out["min_shared_entities"] = intChange(cfg.MinSharedEntities, cfg.MinSharedEntities+1)
			}
			if cfg.EntityOverlapThreshold < 0.350 {
				out["entity_overlap_threshold"] = floatChange(cfg.EntityOverlapThreshold,
					minFloat(0.350, cfg.EntityOverlapThreshold+0.050))
			}
		}
	}
	return out
}

func worstComponent(s core.PerformanceScores) (string, float64) {
	component, worst := "effectiveness", s.Effectiveness
	if s.Efficiency < worst {
		component, worst = "efficiency", s.Efficiency
	}
	if s.Coverage < worst {
		component, worst = "coverage", s.Coverage
	}
	if s.Precision < worst {
		component, worst = "precision", s.Precision
	}
	return component, worst
}

// Update applies a manual configuration change: the merged result must
// validate as a whole, a manual snapshot records it, and each changed
// parameter gets a change-event row.
func (m *Manager) Update(ctx context.Context, updates map[string]string, reason string) error {
	if len(updates) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.config
	for param, value := range updates {
		if err := applyParameter(&next, param, value); err != nil {
			return err
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}

	old := m.config
	m.config = next
	m.generation++

	snapshot := &core.PerformanceSnapshot{
		Config:          next,
		Source:          core.ConfigSourceManual,
		ServiceInstance: m.instance,
		Generation:      m.generation,
		Notes:           "configuration updated: " + reason,
		Trend:           core.TrendInitial,
	}
	id, err := m.store.System.InsertSnapshot(ctx, snapshot)
	if err != nil {
		return err
	}

	for param := range updates {
		ev := &core.ConfigChangeEvent{
			ParameterName:     param,
			OldValue:          parameterValue(old, param),
			NewValue:          parameterValue(next, param),
			ChangeReason:      reason,
			PreviousScore:     m.lastOverall,
			TargetImprovement: "manual",
			SnapshotID:        &id,
			TriggeredBy:       "operator",
		}
		if err := m.store.System.InsertChangeEvent(ctx, ev); err != nil {
			logger.Warn("change-event write failed", "parameter", param, "error", err.Error())
		}
	}

	logger.Info("grouping configuration updated",
		"generation", m.generation, "reason", reason)
	return nil
}

func applyParameter(cfg *core.GroupingConfig, param, value string) error {
	var err error
	switch param {
	case "min_shared_entities":
		_, err = fmt.Sscanf(value, "%d", &cfg.MinSharedEntities)
	case "entity_overlap_threshold":
		_, err = fmt.Sscanf(value, "%f", &cfg.EntityOverlapThreshold)
	case "min_title_keywords":
		_, err = fmt.Sscanf(value, "%d", &cfg.MinTitleKeywords)
	case "title_keyword_bonus":
		_, err = fmt.Sscanf(value, "%f", &cfg.TitleKeywordBonus)
	case "max_time_diff_hours":
		_, err = fmt.Sscanf(value, "%d", &cfg.MaxTimeDiffHours)
	case "allow_same_outlet":
		_, err = fmt.Sscanf(value, "%t", &cfg.AllowSameOutlet)
	case "min_entity_length":
		_, err = fmt.Sscanf(value, "%d", &cfg.MinEntityLength)
	case "max_entity_length":
		_, err = fmt.Sscanf(value, "%d", &cfg.MaxEntityLength)
	case "entity_noise_threshold":
		_, err = fmt.Sscanf(value, "%f", &cfg.EntityNoiseThreshold)
	default:
		return fmt.Errorf("unknown grouping parameter %q", param)
	}
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", param, value, err)
	}
	return nil
}

func parameterValue(cfg core.GroupingConfig, param string) string {
	switch param {
	case "min_shared_entities":
		return fmt.Sprintf("%d", cfg.MinSharedEntities)
	case "entity_overlap_threshold":
		return fmt.Sprintf("%.3f", cfg.EntityOverlapThreshold)
	case "min_title_keywords":
		return fmt.Sprintf("%d", cfg.MinTitleKeywords)
	case "title_keyword_bonus":
		return fmt.Sprintf("%.3f", cfg.TitleKeywordBonus)
	case "max_time_diff_hours":
		return fmt.Sprintf("%d", cfg.MaxTimeDiffHours)
	case "allow_same_outlet":
		return fmt.Sprintf("%t", cfg.AllowSameOutlet)
	case "min_entity_length":
		return fmt.Sprintf("%d", cfg.MinEntityLength)
	case "max_entity_length":
		return fmt.Sprintf("%d", cfg.MaxEntityLength)
	case "entity_noise_threshold":
		return fmt.Sprintf("%.3f", cfg.EntityNoiseThreshold)
	}
	return ""
}

func intChange(from, to int) suggestedChange {
	return suggestedChange{old: fmt.Sprintf("%d", from), new: fmt.Sprintf("%d", to)}
}

func floatChange(from, to float64) suggestedChange {
	return suggestedChange{old: fmt.Sprintf("%.3f", from), new: fmt.Sprintf("%.3f", to)}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
