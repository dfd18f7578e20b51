package persistence

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"newsengine/internal/core"
)

// ReputationRepo provides typed operations over the agency reputation
// metrics, the outlet authority table, and the outlet reputation cache.
type ReputationRepo struct {
	db *DB
}

// GetCached returns the outlet reputation cache row, or ErrNotFound.
func (r *ReputationRepo) GetCached(ctx context.Context, outletName string) (*core.OutletReputation, error) {
	const query = `
		SELECT outlet_name, reputation_score, reputation_metrics_id,
			total_major_awards, has_fact_checking, press_freedom_tier, last_updated
		FROM outlet_reputation_scores
		WHERE LOWER(outlet_name) = LOWER($1)
	`
	var row core.OutletReputation
	err := r.db.db.QueryRowContext(ctx, query, outletName).Scan(
		&row.OutletName, &row.ReputationScore, &row.MetricsID,
		&row.TotalMajorAwards, &row.HasFactChecking, &row.PressFreedomTier, &row.LastUpdated)
	if err != nil {
		return nil, mapError("get-cached-reputation", err)
	}
	return &row, nil
}

// GetAgencyMetrics returns the administered reputation record for the
// outlet, matched case-insensitively on name, or ErrNotFound.
func (r *ReputationRepo) GetAgencyMetrics(ctx context.Context, outletName string) (*core.AgencyMetrics, error) {
	const query = `
		SELECT id, outlet_name, pulitzer_awards, murrow_awards, peabody_awards,
			emmy_awards, george_polk_awards, dupont_awards, spj_awards,
			other_specialized_awards, press_freedom_ranking, industry_memberships,
			editorial_independence_rating, fact_checking_standards,
			correction_policy_exists, retraction_transparency,
			ownership_transparency, funding_disclosure, ethics_code_public,
			total_awards_score, professional_standing_score, credibility_score,
			final_reputation_score, research_notes, updated_at
		FROM news_agency_reputation_metrics
		WHERE LOWER(outlet_name) = LOWER($1)
	`
	var m core.AgencyMetrics
	var memberships pq.StringArray
	var notes sql.NullString
	err := r.db.db.QueryRowContext(ctx, query, outletName).Scan(
		&m.ID, &m.OutletName, &m.PulitzerAwards, &m.MurrowAwards, &m.PeabodyAwards,
		&m.EmmyAwards, &m.PolkAwards, &m.DuPontAwards, &m.SPJAwards,
		&m.OtherSpecialized, &m.PressFreedomRanking, &memberships,
		&m.EditorialIndependence, &m.FactCheckingStandards,
		&m.CorrectionPolicy, &m.RetractionTransparency,
		&m.OwnershipTransparency, &m.FundingDisclosure, &m.EthicsCodePublic,
		&m.AwardsScore, &m.ProfessionalScore, &m.CredibilityScore,
		&m.FinalReputationScore, &notes, &m.UpdatedAt)
	if err != nil {
		return nil, mapError("get-agency-metrics", err)
	}
	m.IndustryMemberships = []string(memberships)
	m.ResearchNotes = notes.String
	return &m, nil
}

// GetAuthority returns the administered authority score for the outlet,
// or ErrNotFound.
func (r *ReputationRepo) GetAuthority(ctx context.Context, outletName string) (float64, error) {
	var score float64
	err := r.db.db.QueryRowContext(ctx, `
		SELECT authority_score FROM outlet_authority WHERE LOWER(outlet_name) = LOWER($1)
	`, outletName).Scan(&score)
	if err != nil {
		return 0, mapError("get-authority", err)
	}
	return score, nil
}

// ListAuthorities returns the full authority table as a name-keyed map.
func (r *ReputationRepo) ListAuthorities(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT outlet_name, authority_score FROM outlet_authority`)
	if err != nil {
		return nil, mapError("list-authorities", err)
	}
	defer rows.Close()

	authorities := make(map[string]float64)
	for rows.Next() {
		var name string
		var score float64
		if err := rows.Scan(&name, &score); err != nil {
			return nil, mapError("list-authorities", err)
		}
		authorities[name] = score
	}
	return authorities, mapError("list-authorities", rows.Err())
}

// SaveScores writes the derived sub-scores back onto the agency row and
// upserts the outlet reputation cache in one transaction.
func (r *ReputationRepo) SaveScores(ctx context.Context, m *core.AgencyMetrics, cache *core.OutletReputation) error {
	return r.db.withTx(ctx, "save-reputation-scores", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE news_agency_reputation_metrics SET
				total_awards_score = $2,
				professional_standing_score = $3,
				credibility_score = $4,
				final_reputation_score = $5,
				updated_at = NOW()
			WHERE id = $1
		`, m.ID, m.AwardsScore, m.ProfessionalScore, m.CredibilityScore, m.FinalReputationScore)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outlet_reputation_scores (outlet_name, reputation_score,
				reputation_metrics_id, total_major_awards, has_fact_checking,
				press_freedom_tier, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (outlet_name) DO UPDATE SET
				reputation_score = EXCLUDED.reputation_score,
				reputation_metrics_id = EXCLUDED.reputation_metrics_id,
				total_major_awards = EXCLUDED.total_major_awards,
				has_fact_checking = EXCLUDED.has_fact_checking,
				press_freedom_tier = EXCLUDED.press_freedom_tier,
				last_updated = NOW()
		`, cache.OutletName, cache.ReputationScore, cache.MetricsID,
			cache.TotalMajorAwards, cache.HasFactChecking, cache.PressFreedomTier)
		return err
	})
}

// ListAgencyNames returns every agency outlet name with its current
// final score, for the feed validator's suggestion matching.
func (r *ReputationRepo) ListAgencyNames(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT outlet_name, COALESCE(final_reputation_score, 0) FROM news_agency_reputation_metrics`)
	if err != nil {
		return nil, mapError("list-agency-names", err)
	}
	defer rows.Close()

	agencies := make(map[string]int)
	for rows.Next() {
		var name string
		var score int
		if err := rows.Scan(&name, &score); err != nil {
			return nil, mapError("list-agency-names", err)
		}
		agencies[name] = score
	}
	return agencies, mapError("list-agency-names", rows.Err())
}

// FeedAgencyRow is one row of the validator's feed-to-agency join.
type FeedAgencyRow struct {
	FeedID          int64
	FeedURL         string
	OutletName      string
	AgencyID        *int64
	ReputationScore *int
}

// ListFeedAgencyJoin joins every active feed against the agency metrics
// table by outlet name.
func (r *ReputationRepo) ListFeedAgencyJoin(ctx context.Context) ([]FeedAgencyRow, error) {
	const query = `
		SELECT f.id, f.url, f.outlet_name, m.id, m.final_reputation_score
		FROM rss_feeds f
		LEFT JOIN news_agency_reputation_metrics m
			ON LOWER(m.outlet_name) = LOWER(f.outlet_name)
		WHERE f.active = TRUE
		ORDER BY f.outlet_name
	`
	rows, err := r.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list-feed-agency-join", err)
	}
	defer rows.Close()

	var result []FeedAgencyRow
	for rows.Next() {
		var row FeedAgencyRow
		if err := rows.Scan(&row.FeedID, &row.FeedURL, &row.OutletName,
			&row.AgencyID, &row.ReputationScore); err != nil {
			return nil, mapError("list-feed-agency-join", err)
		}
		result = append(result, row)
	}
	return result, mapError("list-feed-agency-join", rows.Err())
}
