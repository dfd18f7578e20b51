package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"newsengine/internal/core"
)

// SystemRepo provides typed operations over system_config, performance
// snapshots, the config change log, and the cleanup log.
type SystemRepo struct {
	db *DB
}

// GetConfig returns the value for a system config key, or ErrNotFound.
func (r *SystemRepo) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.db.QueryRowContext(ctx,
		`SELECT value FROM system_config WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return "", mapError("get-config", err)
	}
	return value, nil
}

// SetConfig upserts a system config key.
func (r *SystemRepo) SetConfig(ctx context.Context, key, value, description string) error {
	return r.db.withTx(ctx, "set-config", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO system_config (key, value, description, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				description = EXCLUDED.description,
				updated_at = NOW()
		`, key, value, description)
		return err
	})
}

// ListConfig returns every system config key/value pair.
func (r *SystemRepo) ListConfig(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT key, value FROM system_config`)
	if err != nil {
		return nil, mapError("list-config", err)
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, mapError("list-config", err)
		}
		config[key] = value
	}
	return config, mapError("list-config", rows.Err())
}

const snapshotColumns = `
	id, min_shared_entities, entity_overlap_threshold, min_title_keywords,
	title_keyword_bonus, max_time_diff_hours, allow_same_outlet,
	min_entity_length, max_entity_length, entity_noise_threshold,
	articles_processed, events_created, processing_time_ms, entities_extracted,
	event_creation_rate, coverage_percentage, avg_articles_per_event,
	singleton_events_count, entities_per_article,
	effectiveness_score, efficiency_score, coverage_score, precision_score,
	overall_score, config_source, service_instance, generation, notes, trend,
	created_at
`

// InsertSnapshot appends a performance-config snapshot and returns its id.
func (r *SystemRepo) InsertSnapshot(ctx context.Context, s *core.PerformanceSnapshot) (int64, error) {
	var id int64
	err := r.db.withTx(ctx, "insert-snapshot", func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO performance_config_snapshots (
				min_shared_entities, entity_overlap_threshold, min_title_keywords,
				title_keyword_bonus, max_time_diff_hours, allow_same_outlet,
				min_entity_length, max_entity_length, entity_noise_threshold,
				articles_processed, events_created, processing_time_ms, entities_extracted,
				event_creation_rate, coverage_percentage, avg_articles_per_event,
				singleton_events_count, entities_per_article,
				effectiveness_score, efficiency_score, coverage_score, precision_score,
				overall_score, config_source, service_instance, generation, notes, trend,
				created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
				$10, $11, $12, $13, $14, $15, $16, $17, $18,
				$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, NOW())
			RETURNING id
		`,
			s.Config.MinSharedEntities, s.Config.EntityOverlapThreshold, s.Config.MinTitleKeywords,
			s.Config.TitleKeywordBonus, s.Config.MaxTimeDiffHours, s.Config.AllowSameOutlet,
			s.Config.MinEntityLength, s.Config.MaxEntityLength, s.Config.EntityNoiseThreshold,
			s.Metrics.ArticlesProcessed, s.Metrics.EventsCreated, s.Metrics.ProcessingTimeMS,
			s.Metrics.EntitiesExtracted, s.Metrics.EventCreationRate, s.Metrics.CoveragePercentage,
			s.Metrics.AvgArticlesPerEvent, s.Metrics.SingletonEvents, s.Metrics.EntitiesPerArticle,
			s.Scores.Effectiveness, s.Scores.Efficiency, s.Scores.Coverage, s.Scores.Precision,
			s.Scores.Overall, s.Source, s.ServiceInstance, s.Generation, s.Notes, s.Trend,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func scanSnapshot(row rowScanner) (*core.PerformanceSnapshot, error) {
	var s core.PerformanceSnapshot
	err := row.Scan(&s.ID,
		&s.Config.MinSharedEntities, &s.Config.EntityOverlapThreshold, &s.Config.MinTitleKeywords,
		&s.Config.TitleKeywordBonus, &s.Config.MaxTimeDiffHours, &s.Config.AllowSameOutlet,
		&s.Config.MinEntityLength, &s.Config.MaxEntityLength, &s.Config.EntityNoiseThreshold,
		&s.Metrics.ArticlesProcessed, &s.Metrics.EventsCreated, &s.Metrics.ProcessingTimeMS,
		&s.Metrics.EntitiesExtracted, &s.Metrics.EventCreationRate, &s.Metrics.CoveragePercentage,
		&s.Metrics.AvgArticlesPerEvent, &s.Metrics.SingletonEvents, &s.Metrics.EntitiesPerArticle,
		&s.Scores.Effectiveness, &s.Scores.Efficiency, &s.Scores.Coverage, &s.Scores.Precision,
		&s.Scores.Overall, &s.Source, &s.ServiceInstance, &s.Generation, &s.Notes, &s.Trend,
		&s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// BestSnapshot returns the highest-scoring snapshot from the last
// windowDays with overall >= minOverall and a runtime or manual source,
// or ErrNotFound.
func (r *SystemRepo) BestSnapshot(ctx context.Context, windowDays int, minOverall float64) (*core.PerformanceSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM performance_config_snapshots
		WHERE created_at > NOW() - $1 * INTERVAL '1 day'
		  AND overall_score >= $2
		  AND config_source IN ('runtime', 'manual')
		ORDER BY overall_score DESC, created_at DESC
		LIMIT 1
	`
	s, err := scanSnapshot(r.db.db.QueryRowContext(ctx, query, windowDays, minOverall))
	if err != nil {
		return nil, mapError("best-snapshot", err)
	}
	return s, nil
}

// LatestSnapshot returns the most recently created snapshot, or ErrNotFound.
func (r *SystemRepo) LatestSnapshot(ctx context.Context) (*core.PerformanceSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM performance_config_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`
	s, err := scanSnapshot(r.db.db.QueryRowContext(ctx, query))
	if err != nil {
		return nil, mapError("latest-snapshot", err)
	}
	return s, nil
}

// MaxGeneration returns the highest snapshot generation recorded for a
// service instance, 0 when the instance has none.
func (r *SystemRepo) MaxGeneration(ctx context.Context, serviceInstance string) (int, error) {
	var generation int
	err := r.db.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(generation), 0)
		FROM performance_config_snapshots
		WHERE service_instance = $1
	`, serviceInstance).Scan(&generation)
	if err != nil {
		return 0, mapError("max-generation", err)
	}
	return generation, nil
}

// PerformanceSummary is the last-N-hours aggregate for one instance.
type PerformanceSummary struct {
	Snapshots         int
	ArticlesProcessed int
	EventsCreated     int
	AvgOverall        float64
	BestOverall       float64
	WorstOverall      float64
}

// SummarizePerformance aggregates the snapshots an instance wrote in
// the last windowHours.
func (r *SystemRepo) SummarizePerformance(ctx context.Context, serviceInstance string, windowHours int) (*PerformanceSummary, error) {
	const query = `
		SELECT COUNT(*),
			COALESCE(SUM(articles_processed), 0),
			COALESCE(SUM(events_created), 0),
			COALESCE(AVG(overall_score), 0),
			COALESCE(MAX(overall_score), 0),
			COALESCE(MIN(overall_score), 0)
		FROM performance_config_snapshots
		WHERE service_instance = $1
		  AND created_at > NOW() - $2 * INTERVAL '1 hour'
	`
	var summary PerformanceSummary
	err := r.db.db.QueryRowContext(ctx, query, serviceInstance, windowHours).Scan(
		&summary.Snapshots, &summary.ArticlesProcessed, &summary.EventsCreated,
		&summary.AvgOverall, &summary.BestOverall, &summary.WorstOverall)
	if err != nil {
		return nil, mapError("summarize-performance", err)
	}
	return &summary, nil
}

// InsertChangeEvent appends one row to the parameter change log.
func (r *SystemRepo) InsertChangeEvent(ctx context.Context, ev *core.ConfigChangeEvent) error {
	return r.db.withTx(ctx, "insert-change-event", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO config_change_events (parameter_name, old_value, new_value,
				change_reason, previous_score, target_improvement, config_snapshot_id,
				triggered_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		`, ev.ParameterName, ev.OldValue, ev.NewValue, ev.ChangeReason,
			ev.PreviousScore, ev.TargetImprovement, ev.SnapshotID, ev.TriggeredBy)
		return err
	})
}

// StartCleanupRun opens a cleanup_log row in status running and returns
// its id.
func (r *SystemRepo) StartCleanupRun(ctx context.Context, runID, cleanupType string) (int64, error) {
	var id int64
	err := r.db.withTx(ctx, "start-cleanup-run", func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO cleanup_log (run_id, cleanup_type, started_at, status)
			VALUES ($1, $2, NOW(), $3)
			RETURNING id
		`, runID, cleanupType, core.CleanupRunning).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FinishCleanupRun closes a cleanup_log row with its final status and counters.
func (r *SystemRepo) FinishCleanupRun(ctx context.Context, id int64, status core.CleanupStatus, recordsDeleted, batchCount int, errorMessage string) error {
	return r.db.withTx(ctx, "finish-cleanup-run", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE cleanup_log SET
				completed_at = NOW(),
				status = $2,
				records_deleted = $3,
				batch_count = $4,
				error_message = $5
			WHERE id = $1
		`, id, status, recordsDeleted, batchCount, errorMessage)
		return err
	})
}

// DeleteArticlesBatch deletes one batch of articles older than the
// cutoff, cascading their claims and event links in the same
// transaction. Returns the number of articles removed.
func (r *SystemRepo) DeleteArticlesBatch(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	var deleted int
	err := r.db.withTx(ctx, "delete-articles-batch", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id FROM articles WHERE fetched_at < $1 ORDER BY fetched_at LIMIT $2
		`, cutoff, batchSize)
		if err != nil {
			return err
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		for _, stmt := range []string{
			`DELETE FROM claims WHERE article_id = ANY($1)`,
			`DELETE FROM event_articles WHERE article_id = ANY($1)`,
			`DELETE FROM articles WHERE id = ANY($1)`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, pq.Array(ids)); err != nil {
				return err
			}
		}
		deleted = len(ids)
		return nil
	})
	return deleted, err
}

// DeleteEventsBatch deletes one batch of events older than the cutoff
// together with their links, metrics, and article back-references.
func (r *SystemRepo) DeleteEventsBatch(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	var deleted int
	err := r.db.withTx(ctx, "delete-events-batch", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id FROM events WHERE updated_at < $1 ORDER BY updated_at LIMIT $2
		`, cutoff, batchSize)
		if err != nil {
			return err
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		for _, stmt := range []string{
			`UPDATE articles SET computed_event_id = NULL WHERE computed_event_id = ANY($1)`,
			`DELETE FROM event_metrics WHERE event_id = ANY($1)`,
			`DELETE FROM event_articles WHERE event_id = ANY($1)`,
			`DELETE FROM events WHERE id = ANY($1)`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, pq.Array(ids)); err != nil {
				return err
			}
		}
		deleted = len(ids)
		return nil
	})
	return deleted, err
}

// DeleteSnapshotsBatch deletes one batch of performance snapshots older
// than the cutoff.
func (r *SystemRepo) DeleteSnapshotsBatch(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	var deleted int
	err := r.db.withTx(ctx, "delete-snapshots-batch", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			DELETE FROM performance_config_snapshots
			WHERE id IN (
				SELECT id FROM performance_config_snapshots
				WHERE created_at < $1 ORDER BY created_at LIMIT $2
			)
		`, cutoff, batchSize)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		deleted = int(affected)
		return nil
	})
	return deleted, err
}
