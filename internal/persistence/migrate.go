package persistence

import (
	"context"
	"fmt"
)

// migrations are applied in order; every statement is idempotent so a
// fresh or partially provisioned database converges to the same schema.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS rss_feeds (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		outlet_name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_fetched TIMESTAMPTZ,
		fetch_interval_minutes INTEGER NOT NULL DEFAULT 30,
		news_agency_id BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		outlet_name TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		author TEXT,
		published_at TIMESTAMPTZ,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		text TEXT NOT NULL DEFAULT '',
		raw_html TEXT NOT NULL DEFAULT '',
		rss_feed_id BIGINT NOT NULL REFERENCES rss_feeds(id),
		quality_score INTEGER,
		quality_computed_at TIMESTAMPTZ,
		persons JSONB NOT NULL DEFAULT '[]',
		organizations JSONB NOT NULL DEFAULT '[]',
		locations JSONB NOT NULL DEFAULT '[]',
		dates JSONB NOT NULL DEFAULT '[]',
		others JSONB NOT NULL DEFAULT '[]',
		ner_extracted_at TIMESTAMPTZ,
		computed_event_id BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_fetched_at ON articles(fetched_at)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_unprocessed
		ON articles(fetched_at DESC)
		WHERE ner_extracted_at IS NULL OR quality_score IS NULL`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS event_articles (
		event_id BIGINT NOT NULL REFERENCES events(id),
		article_id BIGINT NOT NULL REFERENCES articles(id),
		relevance_score NUMERIC(4,3) NOT NULL DEFAULT 1.0,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (event_id, article_id)
	)`,
	`CREATE TABLE IF NOT EXISTS event_metrics (
		event_id BIGINT PRIMARY KEY REFERENCES events(id),
		computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		age_days NUMERIC(8,2) NOT NULL DEFAULT 0,
		coverage_sites INTEGER NOT NULL DEFAULT 0,
		keyword_coherence NUMERIC(6,2) NOT NULL DEFAULT 0,
		best_source TEXT NOT NULL DEFAULT '',
		corroboration_ratio NUMERIC(5,2) NOT NULL DEFAULT 0,
		contradiction_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		correction_risk NUMERIC(5,2) NOT NULL DEFAULT 0,
		eqis_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		components JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS claims (
		id BIGSERIAL PRIMARY KEY,
		article_id BIGINT NOT NULL REFERENCES articles(id),
		claim_text TEXT NOT NULL DEFAULT '',
		claim_type TEXT NOT NULL,
		verified_state TEXT NOT NULL DEFAULT 'unverified',
		verification_source TEXT,
		confidence NUMERIC(3,2) NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_article_id ON claims(article_id)`,
	`CREATE TABLE IF NOT EXISTS outlet_authority (
		outlet_name TEXT PRIMARY KEY,
		authority_score NUMERIC(5,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS news_agency_reputation_metrics (
		id BIGSERIAL PRIMARY KEY,
		outlet_name TEXT NOT NULL UNIQUE,
		pulitzer_awards INTEGER NOT NULL DEFAULT 0,
		murrow_awards INTEGER NOT NULL DEFAULT 0,
		peabody_awards INTEGER NOT NULL DEFAULT 0,
		emmy_awards INTEGER NOT NULL DEFAULT 0,
		george_polk_awards INTEGER NOT NULL DEFAULT 0,
		dupont_awards INTEGER NOT NULL DEFAULT 0,
		spj_awards INTEGER NOT NULL DEFAULT 0,
		other_specialized_awards INTEGER NOT NULL DEFAULT 0,
		press_freedom_ranking INTEGER,
		industry_memberships TEXT[] NOT NULL DEFAULT '{}',
		editorial_independence_rating NUMERIC(4,2) NOT NULL DEFAULT 0,
		fact_checking_standards BOOLEAN NOT NULL DEFAULT FALSE,
		correction_policy_exists BOOLEAN NOT NULL DEFAULT FALSE,
		retraction_transparency BOOLEAN NOT NULL DEFAULT FALSE,
		ownership_transparency BOOLEAN NOT NULL DEFAULT FALSE,
		funding_disclosure BOOLEAN NOT NULL DEFAULT FALSE,
		ethics_code_public BOOLEAN NOT NULL DEFAULT FALSE,
		total_awards_score INTEGER NOT NULL DEFAULT 0,
		professional_standing_score INTEGER NOT NULL DEFAULT 0,
		credibility_score INTEGER NOT NULL DEFAULT 0,
		final_reputation_score INTEGER NOT NULL DEFAULT 0,
		research_notes TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS outlet_reputation_scores (
		outlet_name TEXT PRIMARY KEY,
		reputation_score INTEGER NOT NULL,
		reputation_metrics_id BIGINT REFERENCES news_agency_reputation_metrics(id),
		total_major_awards INTEGER NOT NULL DEFAULT 0,
		has_fact_checking BOOLEAN NOT NULL DEFAULT FALSE,
		press_freedom_tier TEXT NOT NULL DEFAULT 'unknown',
		last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS system_config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS performance_config_snapshots (
		id BIGSERIAL PRIMARY KEY,
		min_shared_entities INTEGER NOT NULL,
		entity_overlap_threshold NUMERIC(4,3) NOT NULL,
		min_title_keywords INTEGER NOT NULL,
		title_keyword_bonus NUMERIC(4,3) NOT NULL,
		max_time_diff_hours INTEGER NOT NULL,
		allow_same_outlet BOOLEAN NOT NULL,
		min_entity_length INTEGER NOT NULL,
		max_entity_length INTEGER NOT NULL,
		entity_noise_threshold NUMERIC(4,3) NOT NULL,
		articles_processed INTEGER NOT NULL DEFAULT 0,
		events_created INTEGER NOT NULL DEFAULT 0,
		processing_time_ms BIGINT NOT NULL DEFAULT 0,
		entities_extracted INTEGER NOT NULL DEFAULT 0,
		event_creation_rate NUMERIC(6,4) NOT NULL DEFAULT 0,
		coverage_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
		avg_articles_per_event NUMERIC(6,2) NOT NULL DEFAULT 0,
		singleton_events_count INTEGER NOT NULL DEFAULT 0,
		entities_per_article NUMERIC(6,2) NOT NULL DEFAULT 0,
		effectiveness_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		efficiency_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		coverage_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		precision_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		overall_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		config_source TEXT NOT NULL,
		service_instance TEXT NOT NULL DEFAULT 'unknown',
		generation INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		trend TEXT NOT NULL DEFAULT 'initial',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at
		ON performance_config_snapshots(created_at)`,
	`CREATE TABLE IF NOT EXISTS config_change_events (
		id BIGSERIAL PRIMARY KEY,
		parameter_name TEXT NOT NULL,
		old_value TEXT NOT NULL DEFAULT '',
		new_value TEXT NOT NULL DEFAULT '',
		change_reason TEXT NOT NULL DEFAULT '',
		previous_score NUMERIC(5,2),
		target_improvement TEXT NOT NULL DEFAULT '',
		config_snapshot_id BIGINT,
		triggered_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cleanup_log (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		cleanup_type TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ,
		records_deleted INTEGER NOT NULL DEFAULT 0,
		batch_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	)`,
}

// RequiredTables are probed by the startup health check.
var RequiredTables = []string{
	"rss_feeds", "articles", "events", "event_articles", "event_metrics",
	"claims", "outlet_authority", "news_agency_reputation_metrics",
	"outlet_reputation_scores", "system_config",
	"performance_config_snapshots", "config_change_events", "cleanup_log",
}

// Migrate provisions the schema.
func (d *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
