// Package reputation computes outlet reputation scores from journalism
// awards, professional standing, and credibility indicators, with a
// materialized per-outlet cache in the store.
package reputation

import (
	"context"
	"errors"

	"newsengine/internal/core"
	"newsengine/internal/logger"
	"newsengine/internal/persistence"
)

const (
	// defaultScore is returned when an outlet has neither agency
	// metrics nor an authority row.
	defaultScore = 30

	// authorityScale converts the 0-40 authority table onto the 0-100
	// reputation scale.
	authorityScale = 2.5
)

// Analyzer resolves outlet reputation through the cache, the agency
// metrics table, and the authority fallback, in that order.
type Analyzer struct {
	store *persistence.DB
}

// NewAnalyzer creates an Analyzer over the store.
func NewAnalyzer(store *persistence.DB) *Analyzer {
	return &Analyzer{store: store}
}

// Score returns the outlet's reputation in [0,100]. A cache hit is
// returned directly; otherwise the score is computed from the agency
// metrics row and written back, or the fallback chain applies. Read
// failures degrade to the fallback path rather than erroring out.
func (a *Analyzer) Score(ctx context.Context, outletName string) int {
	cached, err := a.store.Reputation.GetCached(ctx, outletName)
	if err == nil {
		return cached.ReputationScore
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		logger.Warn("reputation cache read failed, recomputing",
			"outlet", outletName, "error", err.Error())
	}

	metrics, err := a.store.Reputation.GetAgencyMetrics(ctx, outletName)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("agency metrics read failed, using authority fallback",
				"outlet", outletName, "error", err.Error())
		}
		return a.fallbackScore(ctx, outletName)
	}

	score := Compute(metrics)
	cache := &core.OutletReputation{
		OutletName:       metrics.OutletName,
		ReputationScore:  metrics.FinalReputationScore,
		MetricsID:        &metrics.ID,
		TotalMajorAwards: metrics.PulitzerAwards + metrics.MurrowAwards + metrics.PeabodyAwards + metrics.EmmyAwards,
		HasFactChecking:  metrics.FactCheckingStandards,
		PressFreedomTier: Tier(metrics.PressFreedomRanking),
	}
	if err := a.store.Reputation.SaveScores(ctx, metrics, cache); err != nil {
		logger.Warn("failed to persist reputation scores",
			"outlet", outletName, "error", err.Error())
	}
	logger.Info("reputation computed", "outlet", outletName,
		"score", score, "awards", metrics.AwardsScore,
		"professional", metrics.ProfessionalScore, "credibility", metrics.CredibilityScore)
	return score
}

// fallbackScore scales the authority table onto [0,100], or returns the
// default for unknown outlets.
func (a *Analyzer) fallbackScore(ctx context.Context, outletName string) int {
	authority, err := a.store.Reputation.GetAuthority(ctx, outletName)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("authority read failed, using default reputation",
				"outlet", outletName, "error", err.Error())
		}
		return defaultScore
	}
	scaled := int(authority * authorityScale)
	if scaled > 100 {
		scaled = 100
	}
	return scaled
}

// Compute derives the three sub-scores and the final total from the
// administered metrics, writing them onto the record. The total is
// clamped to 100.
func Compute(m *core.AgencyMetrics) int {
	m.AwardsScore = AwardsScore(m)
	m.ProfessionalScore = ProfessionalScore(m)
	m.CredibilityScore = CredibilityScore(m)

	total := m.AwardsScore + m.ProfessionalScore + m.CredibilityScore
	if total > 100 {
		total = 100
	}
	m.FinalReputationScore = total
	return total
}

// AwardsScore is the awards and recognition component, 0-60. Major
// awards are worth 10 points each up to 40; specialized awards are
// worth 5 (Polk, duPont) or 2 (SPJ, other) up to 20.
func AwardsScore(m *core.AgencyMetrics) int {
	major := (m.PulitzerAwards + m.MurrowAwards + m.PeabodyAwards + m.EmmyAwards) * 10
	if major > 40 {
		major = 40
	}
	specialized := m.PolkAwards*5 + m.DuPontAwards*5 + m.SPJAwards*2 + m.OtherSpecialized*2
	if specialized > 20 {
		specialized = 20
	}
	return major + specialized
}

// ProfessionalScore is the professional standing component, 0-25:
// press-freedom band + memberships + editorial independence +
// fact-checking standards.
func ProfessionalScore(m *core.AgencyMetrics) int {
	score := pressFreedomPoints(m.PressFreedomRanking)

	memberships := len(m.IndustryMemberships) * 2
	if memberships > 6 {
		memberships = 6
	}
	score += memberships

	independence := int(m.EditorialIndependence * 0.4)
	if independence > 4 {
		independence = 4
	}
	score += independence

	if m.FactCheckingStandards {
		score += 5
	}
	if score > 25 {
		score = 25
	}
	return score
}

// CredibilityScore is 3 points per true credibility flag, 0-15.
func CredibilityScore(m *core.AgencyMetrics) int {
	score := 0
	for _, flag := range []bool{
		m.CorrectionPolicy,
		m.RetractionTransparency,
		m.OwnershipTransparency,
		m.FundingDisclosure,
		m.EthicsCodePublic,
	} {
		if flag {
			score += 3
		}
	}
	return score
}

func pressFreedomPoints(ranking *int) int {
	if ranking == nil {
		return 5
	}
	switch {
	case *ranking <= 20:
		return 10
	case *ranking <= 50:
		return 8
	case *ranking <= 100:
		return 6
	case *ranking <= 150:
		return 4
	default:
		return 2
	}
}

// Tier buckets a press-freedom ranking for the reputation cache.
func Tier(ranking *int) core.PressFreedomTier {
	if ranking == nil {
		return core.TierUnknown
	}
	switch {
	case *ranking <= 20:
		return core.TierExcellent
	case *ranking <= 50:
		return core.TierGood
	case *ranking <= 100:
		return core.TierFair
	default:
		return core.TierPoor
	}
}
