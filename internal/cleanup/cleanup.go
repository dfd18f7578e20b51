// Package cleanup runs the retention job: config-driven batched
// deletion of old articles, events, and performance snapshots, with one
// cleanup_log row per run.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"newsengine/internal/core"
	"newsengine/internal/logger"
	"newsengine/internal/persistence"
)

// Retention defaults apply when a system_config key is absent or
// unparsable.
const (
	defaultArticleRetentionHours = 72
	defaultEventRetentionHours   = 168
	defaultMetricsRetentionHours = 720
	defaultBatchSize             = 500
)

// Janitor deletes expired rows in batches.
type Janitor struct {
	store *persistence.DB
}

// NewJanitor creates a Janitor over the store.
func NewJanitor(store *persistence.DB) *Janitor {
	return &Janitor{store: store}
}

type batchDeleter func(ctx context.Context, cutoff time.Time, batchSize int) (int, error)

// Run performs one full retention pass: articles, events, then
// snapshots. Each pass gets its own cleanup_log row and run id; a
// failing pass is recorded as error and the remaining passes still run.
func (j *Janitor) Run(ctx context.Context) error {
	runID := uuid.NewString()
	batchSize := j.configInt(ctx, "cleanup_batch_size", defaultBatchSize)

	passes := []struct {
		cleanupType  string
		retentionKey string
		defaultHours int
		delete       batchDeleter
	}{
		{"articles", "article_retention_hours", defaultArticleRetentionHours, j.store.System.DeleteArticlesBatch},
		{"events", "event_retention_hours", defaultEventRetentionHours, j.store.System.DeleteEventsBatch},
		{"metrics", "metrics_retention_hours", defaultMetricsRetentionHours, j.store.System.DeleteSnapshotsBatch},
	}

	var firstErr error
	for _, pass := range passes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		hours := j.configInt(ctx, pass.retentionKey, pass.defaultHours)
		cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		if err := j.runPass(ctx, runID, pass.cleanupType, cutoff, batchSize, pass.delete); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (j *Janitor) runPass(ctx context.Context, runID, cleanupType string, cutoff time.Time, batchSize int, deleteBatch batchDeleter) error {
	logID, err := j.store.System.StartCleanupRun(ctx, runID, cleanupType)
	if err != nil {
		return fmt.Errorf("open cleanup log for %s: %w", cleanupType, err)
	}

	var totalDeleted, batches int
	for {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		var deleted int
		deleted, err = deleteBatch(ctx, cutoff, batchSize)
		if err != nil {
			break
		}
		if deleted == 0 {
			break
		}
		totalDeleted += deleted
		batches++
		logger.Debug("cleanup batch deleted",
			"run_id", runID, "type", cleanupType, "deleted", deleted)
	}

	status := core.CleanupCompleted
	errorMessage := ""
	if err != nil {
		status = core.CleanupError
		errorMessage = err.Error()
	}
	if finishErr := j.store.System.FinishCleanupRun(ctx, logID, status, totalDeleted, batches, errorMessage); finishErr != nil {
		logger.Error("failed to close cleanup log", finishErr, "run_id", runID, "type", cleanupType)
	}

	if err != nil {
		logger.Error("cleanup pass failed", err,
			"run_id", runID, "type", cleanupType, "deleted", totalDeleted)
		return err
	}
	logger.Info("cleanup pass finished",
		"run_id", runID, "type", cleanupType,
		"deleted", totalDeleted, "batches", batches)
	return nil
}

// configInt reads an integer system_config value, logging and
// defaulting on absence or parse failure.
func (j *Janitor) configInt(ctx context.Context, key string, fallback int) int {
	value, err := j.store.System.GetConfig(ctx, key)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("config read failed, using default",
				"key", key, "default", fallback, "error", err.Error())
		}
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logger.Warn("invalid config value, using default",
			"key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}
