package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"newsengine/internal/core"
)

// ArticleRepo provides typed operations over the articles table.
type ArticleRepo struct {
	db *DB
}

// UpsertByURL inserts an article keyed by URL. On conflict it is a no-op
// and the existing id is returned with inserted=false.
func (r *ArticleRepo) UpsertByURL(ctx context.Context, a *core.Article) (int64, bool, error) {
	var id int64
	inserted := false
	err := r.db.withTx(ctx, "upsert-article", func(tx *sql.Tx) error {
		const insert = `
			INSERT INTO articles (url, outlet_name, title, author, published_at, fetched_at,
				text, raw_html, rss_feed_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (url) DO NOTHING
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, insert,
			a.URL, a.OutletName, a.Title, a.Author, a.PublishedAt, a.FetchedAt,
			a.Text, a.RawHTML, a.FeedID).Scan(&id)
		if err == nil {
			inserted = true
			return nil
		}
		if err != sql.ErrNoRows {
			return err
		}
		return tx.QueryRowContext(ctx,
			`SELECT id FROM articles WHERE url = $1`, a.URL).Scan(&id)
	})
	if err != nil {
		return 0, false, err
	}
	return id, inserted, nil
}

// Exists reports whether an article with the URL is already stored.
func (r *ArticleRepo) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, mapError("article-exists", err)
	}
	return exists, nil
}

// SelectUnprocessed claims up to limit articles for the composition
// worker. Articles missing NER come first, then recent articles whose
// quality score is null or older than one hour. Bodies of 100 chars or
// fewer are never selected.
func (r *ArticleRepo) SelectUnprocessed(ctx context.Context, limit int) ([]core.Article, error) {
	const query = `
		SELECT id, url, outlet_name, title, author, published_at, fetched_at,
			text, rss_feed_id, quality_score, quality_computed_at,
			persons, organizations, locations, dates, others,
			ner_extracted_at, computed_event_id
		FROM articles
		WHERE LENGTH(text) > 100
		  AND (ner_extracted_at IS NULL
		       OR quality_score IS NULL
		       OR quality_computed_at < NOW() - INTERVAL '1 hour')
		ORDER BY (ner_extracted_at IS NULL) DESC, fetched_at DESC
		LIMIT $1
	`
	rows, err := r.db.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, mapError("select-unprocessed", err)
	}
	defer rows.Close()

	var articles []core.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, mapError("select-unprocessed", err)
		}
		articles = append(articles, a)
	}
	return articles, mapError("select-unprocessed", rows.Err())
}

// UpdateScoresAndNER writes the composite quality score and the NER
// fields for one article in a single row update, stamping both
// computed-at columns.
func (r *ArticleRepo) UpdateScoresAndNER(ctx context.Context, articleID int64, score int, ner core.NERFields) error {
	persons, organizations, locations, dates, others, err := marshalNER(ner)
	if err != nil {
		return fmt.Errorf("update-scores-and-ner: %w", err)
	}
	return r.db.withTx(ctx, "update-scores-and-ner", func(tx *sql.Tx) error {
		const update = `
			UPDATE articles SET
				quality_score = $2,
				quality_computed_at = NOW(),
				persons = $3,
				organizations = $4,
				locations = $5,
				dates = $6,
				others = $7,
				ner_extracted_at = NOW()
			WHERE id = $1
		`
		result, err := tx.ExecContext(ctx, update, articleID,
			score, persons, organizations, locations, dates, others)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// UpdateComputedEventID points many articles at an event in one statement.
func (r *ArticleRepo) UpdateComputedEventID(ctx context.Context, articleIDs []int64, eventID int64) error {
	if len(articleIDs) == 0 {
		return nil
	}
	return r.db.withTx(ctx, "update-computed-event-id", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE articles SET computed_event_id = $1 WHERE id = ANY($2)`,
			eventID, pq.Array(articleIDs))
		return err
	})
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (core.Article, error) {
	var a core.Article
	var persons, organizations, locations, dates, others []byte
	err := row.Scan(&a.ID, &a.URL, &a.OutletName, &a.Title, &a.Author,
		&a.PublishedAt, &a.FetchedAt, &a.Text, &a.FeedID,
		&a.QualityScore, &a.QualityComputedAt,
		&persons, &organizations, &locations, &dates, &others,
		&a.NERExtractedAt, &a.ComputedEventID)
	if err != nil {
		return core.Article{}, err
	}
	if err := unmarshalNER(&a.NER, persons, organizations, locations, dates, others); err != nil {
		return core.Article{}, err
	}
	return a, nil
}

func marshalNER(ner core.NERFields) (persons, organizations, locations, dates, others []byte, err error) {
	marshal := func(list []string) ([]byte, error) {
		if list == nil {
			list = []string{}
		}
		return json.Marshal(list)
	}
	if persons, err = marshal(ner.Persons); err != nil {
		return
	}
	if organizations, err = marshal(ner.Organizations); err != nil {
		return
	}
	if locations, err = marshal(ner.Locations); err != nil {
		return
	}
	if dates, err = marshal(ner.Dates); err != nil {
		return
	}
	others, err = marshal(ner.Others)
	return
}

func unmarshalNER(ner *core.NERFields, persons, organizations, locations, dates, others []byte) error {
	for _, pair := range []struct {
		raw  []byte
		dest *[]string
	}{
		{persons, &ner.Persons},
		{organizations, &ner.Organizations},
		{locations, &ner.Locations},
		{dates, &ner.Dates},
		{others, &ner.Others},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return err
		}
	}
	return nil
}
