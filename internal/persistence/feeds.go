package persistence

import (
	"context"
	"database/sql"

	"newsengine/internal/config"
	"newsengine/internal/core"
)

// FeedRepo provides typed operations over the rss_feeds table.
type FeedRepo struct {
	db *DB
}

// ListActive returns every feed flagged active, ordered by outlet name.
func (r *FeedRepo) ListActive(ctx context.Context) ([]core.Feed, error) {
	const query = `
		SELECT id, url, outlet_name, active, last_fetched, fetch_interval_minutes, news_agency_id
		FROM rss_feeds
		WHERE active = TRUE
		ORDER BY outlet_name
	`
	rows, err := r.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list-active-feeds", err)
	}
	defer rows.Close()

	var feeds []core.Feed
	for rows.Next() {
		var f core.Feed
		var interval sql.NullInt64
		if err := rows.Scan(&f.ID, &f.URL, &f.OutletName, &f.Active,
			&f.LastFetched, &interval, &f.AgencyID); err != nil {
			return nil, mapError("list-active-feeds", err)
		}
		f.PollInterval = 30
		if interval.Valid {
			f.PollInterval = int(interval.Int64)
		}
		feeds = append(feeds, f)
	}
	return feeds, mapError("list-active-feeds", rows.Err())
}

// TouchLastFetched advances last_fetched to now. It is called on every
// task completion, success or handled failure, so a broken feed does not
// hot-loop the scheduler.
func (r *FeedRepo) TouchLastFetched(ctx context.Context, feedID int64) error {
	return r.db.withTx(ctx, "touch-last-fetched", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE rss_feeds SET last_fetched = NOW() WHERE id = $1`, feedID)
		return err
	})
}

// Sync reconciles the rss_feeds table with an administered feeds file:
// every feed is deactivated, then each configured feed is upserted active.
func (r *FeedRepo) Sync(ctx context.Context, feeds []config.FeedEntry) error {
	return r.db.withTx(ctx, "sync-feeds", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE rss_feeds SET active = FALSE`); err != nil {
			return err
		}
		const upsert = `
			INSERT INTO rss_feeds (url, outlet_name, category, fetch_interval_minutes, active)
			VALUES ($1, $2, $3, $4, TRUE)
			ON CONFLICT (url) DO UPDATE SET
				outlet_name = EXCLUDED.outlet_name,
				category = EXCLUDED.category,
				fetch_interval_minutes = EXCLUDED.fetch_interval_minutes,
				active = TRUE
		`
		for _, feed := range feeds {
			category := feed.Category
			if category == "" {
				category = "general"
			}
			if _, err := tx.ExecContext(ctx, upsert, feed.URL, feed.Outlet, category, feed.Interval); err != nil {
				return err
			}
		}
		return nil
	})
}
