// Package health runs the startup checks every service performs before
// taking work: store reachability, schema presence, and NER model
// availability.
package health

import (
	"context"
	"fmt"

	"newsengine/internal/logger"
	"newsengine/internal/ner"
	"newsengine/internal/persistence"
)

// Check verifies the store and the schema. Connection retries are
// handled by persistence.Open; by the time a *DB exists the store was
// reachable at least once, so a single ping suffices here. A missing
// required table is fatal.
func Check(ctx context.Context, store *persistence.DB) error {
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	for _, table := range persistence.RequiredTables {
		ok, err := store.HasTable(ctx, table)
		if err != nil {
			return fmt.Errorf("schema probe failed for %s: %w", table, err)
		}
		if !ok {
			return fmt.Errorf("required table %s is missing", table)
		}
	}
	logger.Info("startup health check passed", "tables", len(persistence.RequiredTables))
	return nil
}

// Extractor probes the statistical NER model and returns a ready
// extractor. Model unavailability is a warning, not fatal: extraction
// downgrades to the rule-based recognizer inside ner.New.
func Extractor(model ner.ModelExtractor) *ner.Extractor {
	if model == nil {
		logger.Warn("NER model unavailable at startup, continuing with rule-based extraction")
	}
	return ner.New(model)
}
