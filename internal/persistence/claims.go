package persistence

import (
	"context"
	"database/sql"

	"newsengine/internal/core"
)

// ClaimRepo provides typed operations over the claims table.
type ClaimRepo struct {
	db *DB
}

// Insert stores one claim and returns its id.
func (r *ClaimRepo) Insert(ctx context.Context, c *core.Claim) (int64, error) {
	var id int64
	err := r.db.withTx(ctx, "insert-claim", func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO claims (article_id, claim_text, claim_type, verified_state,
				verification_source, confidence)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, c.ArticleID, c.Text, c.Type, c.VerifiedState,
			c.VerificationSource, c.Confidence).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// InsertBatch stores an article's claims in one transaction. An empty
// slice writes the placeholder row so the article is not reprocessed.
func (r *ClaimRepo) InsertBatch(ctx context.Context, articleID int64, claims []core.Claim) error {
	return r.db.withTx(ctx, "insert-claims", func(tx *sql.Tx) error {
		if len(claims) == 0 {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO claims (article_id, claim_text, claim_type, verified_state, confidence)
				VALUES ($1, '', $2, $3, 0)
			`, articleID, core.ClaimNone, core.VerifiedStateUnverified)
			return err
		}
		for _, c := range claims {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO claims (article_id, claim_text, claim_type, verified_state,
					verification_source, confidence)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, articleID, c.Text, c.Type, c.VerifiedState,
				c.VerificationSource, c.Confidence)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SelectArticlesWithoutClaims returns articles with a non-trivial body
// that have no claims row yet, oldest first, up to limit.
func (r *ClaimRepo) SelectArticlesWithoutClaims(ctx context.Context, limit int) ([]core.Article, error) {
	const query = `
		SELECT a.id, a.url, a.outlet_name, a.title, a.author, a.published_at, a.fetched_at,
			a.text, a.rss_feed_id, a.quality_score, a.quality_computed_at,
			a.persons, a.organizations, a.locations, a.dates, a.others,
			a.ner_extracted_at, a.computed_event_id
		FROM articles a
		WHERE LENGTH(a.text) > 100
		  AND NOT EXISTS (SELECT 1 FROM claims c WHERE c.article_id = a.id)
		ORDER BY a.fetched_at
		LIMIT $1
	`
	rows, err := r.db.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, mapError("select-articles-without-claims", err)
	}
	defer rows.Close()

	var articles []core.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, mapError("select-articles-without-claims", err)
		}
		articles = append(articles, a)
	}
	return articles, mapError("select-articles-without-claims", rows.Err())
}
