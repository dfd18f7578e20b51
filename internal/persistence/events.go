package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"newsengine/internal/core"
)

// EventRepo provides typed operations over events, event_articles and
// event_metrics.
type EventRepo struct {
	db *DB
}

// MemberLink is one article membership to persist with a new event.
type MemberLink struct {
	ArticleID int64
	Relevance float64
}

// InsertWithArticles creates the event row, its article links, and the
// members' computed_event_id back-references in one transaction. The
// generated event id is returned.
func (r *EventRepo) InsertWithArticles(ctx context.Context, event *core.Event, members []MemberLink) (int64, error) {
	var eventID int64
	err := r.db.withTx(ctx, "insert-event", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO events (title, description, created_at, updated_at, active)
			VALUES ($1, $2, NOW(), NOW(), TRUE)
			RETURNING id
		`, event.Title, event.Description).Scan(&eventID)
		if err != nil {
			return err
		}
		articleIDs := make([]int64, 0, len(members))
		for _, m := range members {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO event_articles (event_id, article_id, relevance_score, added_at)
				VALUES ($1, $2, $3, NOW())
			`, eventID, m.ArticleID, m.Relevance)
			if err != nil {
				return err
			}
			articleIDs = append(articleIDs, m.ArticleID)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE articles SET computed_event_id = $1 WHERE id = ANY($2)`,
			eventID, pq.Array(articleIDs))
		return err
	})
	if err != nil {
		return 0, err
	}
	return eventID, nil
}

// LinkArticle attaches an already-ingested article to an existing event
// with a relevance score, idempotently.
func (r *EventRepo) LinkArticle(ctx context.Context, eventID, articleID int64, relevance float64) error {
	return r.db.withTx(ctx, "link-article", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO event_articles (event_id, article_id, relevance_score, added_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (event_id, article_id) DO NOTHING
		`, eventID, articleID, relevance)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE events SET updated_at = NOW() WHERE id = $1`, eventID)
		return err
	})
}

// ListActiveSince returns active events updated within the last window,
// newest first. Used by the ingester to link fresh articles to ongoing
// stories.
func (r *EventRepo) ListActiveSince(ctx context.Context, windowHours int) ([]core.Event, error) {
	const query = `
		SELECT id, title, description, created_at, updated_at, active
		FROM events
		WHERE active = TRUE AND updated_at > NOW() - $1 * INTERVAL '1 hour'
		ORDER BY updated_at DESC
	`
	return r.queryEvents(ctx, "list-active-events", query, windowHours)
}

// ListAll returns every event, oldest first, for the analytics pass.
func (r *EventRepo) ListAll(ctx context.Context) ([]core.Event, error) {
	const query = `
		SELECT id, title, description, created_at, updated_at, active
		FROM events
		ORDER BY id
	`
	return r.queryEvents(ctx, "list-events", query)
}

func (r *EventRepo) queryEvents(ctx context.Context, op, query string, args ...any) ([]core.Event, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var e core.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description,
			&e.CreatedAt, &e.UpdatedAt, &e.Active); err != nil {
			return nil, mapError(op, err)
		}
		events = append(events, e)
	}
	return events, mapError(op, rows.Err())
}

// ArticlesForEvent returns the member articles ordered by publication.
func (r *EventRepo) ArticlesForEvent(ctx context.Context, eventID int64) ([]core.Article, error) {
	const query = `
		SELECT a.id, a.url, a.outlet_name, a.title, a.author, a.published_at, a.fetched_at,
			a.text, a.rss_feed_id, a.quality_score, a.quality_computed_at,
			a.persons, a.organizations, a.locations, a.dates, a.others,
			a.ner_extracted_at, a.computed_event_id
		FROM articles a
		JOIN event_articles ea ON ea.article_id = a.id
		WHERE ea.event_id = $1
		ORDER BY a.published_at NULLS LAST, a.id
	`
	rows, err := r.db.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, mapError("articles-for-event", err)
	}
	defer rows.Close()

	var articles []core.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, mapError("articles-for-event", err)
		}
		articles = append(articles, a)
	}
	return articles, mapError("articles-for-event", rows.Err())
}

// EventClaim pairs a claim with the outlet of its article, for the
// per-outlet corroboration math.
type EventClaim struct {
	core.Claim
	OutletName string
}

// ClaimsForEvent returns every real claim on the event's member
// articles. Placeholder rows are excluded.
func (r *EventRepo) ClaimsForEvent(ctx context.Context, eventID int64) ([]EventClaim, error) {
	const query = `
		SELECT c.id, c.article_id, c.claim_text, c.claim_type, c.verified_state,
			c.verification_source, c.confidence, a.outlet_name
		FROM claims c
		JOIN articles a ON a.id = c.article_id
		JOIN event_articles ea ON ea.article_id = a.id
		WHERE ea.event_id = $1 AND c.claim_type <> 'none'
		ORDER BY c.id
	`
	rows, err := r.db.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, mapError("claims-for-event", err)
	}
	defer rows.Close()

	var claims []EventClaim
	for rows.Next() {
		var c EventClaim
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Text, &c.Type, &c.VerifiedState,
			&c.VerificationSource, &c.Confidence, &c.OutletName); err != nil {
			return nil, mapError("claims-for-event", err)
		}
		claims = append(claims, c)
	}
	return claims, mapError("claims-for-event", rows.Err())
}

// UpsertMetrics writes the EQIS row for an event, replacing all columns
// when a row for the event already exists.
func (r *EventRepo) UpsertMetrics(ctx context.Context, m *core.EventMetrics) error {
	components, err := json.Marshal(m.Components)
	if err != nil {
		return fmt.Errorf("upsert-event-metrics: %w", err)
	}
	return r.db.withTx(ctx, "upsert-event-metrics", func(tx *sql.Tx) error {
		const upsert = `
			INSERT INTO event_metrics (event_id, computed_at, age_days, coverage_sites,
				keyword_coherence, best_source, corroboration_ratio, contradiction_rate,
				correction_risk, eqis_score, components)
			VALUES ($1, NOW(), $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (event_id) DO UPDATE SET
				computed_at = NOW(),
				age_days = EXCLUDED.age_days,
				coverage_sites = EXCLUDED.coverage_sites,
				keyword_coherence = EXCLUDED.keyword_coherence,
				best_source = EXCLUDED.best_source,
				corroboration_ratio = EXCLUDED.corroboration_ratio,
				contradiction_rate = EXCLUDED.contradiction_rate,
				correction_risk = EXCLUDED.correction_risk,
				eqis_score = EXCLUDED.eqis_score,
				components = EXCLUDED.components
		`
		_, err := tx.ExecContext(ctx, upsert, m.EventID, m.AgeDays, m.CoverageSites,
			m.KeywordCoherence, m.BestSource, m.CorroborationRate, m.ContradictionRate,
			m.CorrectionRisk, m.EQISScore, components)
		return err
	})
}
