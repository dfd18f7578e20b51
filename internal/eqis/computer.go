// Package eqis computes the Event Quality Index Score for every event:
// six 0-100 sub-scores weighted into a composite and upserted into
// event_metrics.
package eqis

import (
	"math"
	"sort"
	"strings"
	"time"

	"newsengine/internal/core"
	"newsengine/internal/persistence"
)

// Params tune the sub-score formulas. Loaded from configs/metrics.yaml.
type Params struct {
	RecencyTauDays     float64
	CoverageSaturation float64
	CoherenceMin       int
	HighRiskCap        float64
}

// DefaultParams match the shipped metrics.yaml.
func DefaultParams() Params {
	return Params{
		RecencyTauDays:     5,
		CoverageSaturation: 20,
		CoherenceMin:       2,
		HighRiskCap:        0.05,
	}
}

// Weights combine the six numeric sub-scores. They sum to 1.
type Weights map[string]float64

// DefaultWeights are used when metrics.yaml carries none.
func DefaultWeights() Weights {
	return Weights{
		"days":            0.20,
		"coverage":        0.20,
		"coherence":       0.15,
		"best_source":     0.15,
		"corroboration":   0.20,
		"correction_risk": 0.10,
	}
}

// OutletProfile carries the per-outlet inputs for best-source and
// correction-risk scoring.
type OutletProfile struct {
	AuthorityWeight float64 // authority_score / 100
	CorrectionRate  float64
}

const (
	defaultAuthorityWeight = 0.8
	defaultCorrectionRate  = 0.02

	// persistenceDayRange normalizes the unique-day count, log(1+14).
	persistenceDayRange = 14
)

// Result is everything computed for one event.
type Result struct {
	Components map[string]float64 // Numeric 0-100 sub-scores
	BestSource string
	EQIS       float64

	AgeDays           float64
	UniqueDays        int
	CoverageSites     int
	CorroborationRate float64
	ContradictionRate float64
	CorrectionRisk    float64
}

// Compute scores one event from its member articles and claims.
func Compute(articles []core.Article, claims []persistence.EventClaim, profiles map[string]OutletProfile, params Params, now time.Time) Result {
	days, ageDays, uniqueDays := scoreDays(articles, params, now)
	coverage, sites := scoreCoverage(articles, params)
	coherence := scoreCoherence(articles, params)
	bestSource, bestScore := scoreBestSource(articles, claims, profiles)
	corroboration, ratio, contradiction := scoreCorroboration(claims)
	riskScore, risk := scoreCorrectionRisk(articles, profiles, params)

	components := map[string]float64{
		"days":            days,
		"coverage":        coverage,
		"coherence":       coherence,
		"best_source":     bestScore,
		"corroboration":   corroboration,
		"correction_risk": riskScore,
	}
	return Result{
		Components:        components,
		BestSource:        bestSource,
		AgeDays:           ageDays,
		UniqueDays:        uniqueDays,
		CoverageSites:     sites,
		CorroborationRate: ratio,
		ContradictionRate: contradiction,
		CorrectionRisk:    risk,
	}
}

// Combine applies the weights to the numeric sub-scores.
func Combine(components map[string]float64, weights Weights) float64 {
	var eqis float64
	for name, score := range components {
		eqis += weights[name] * score
	}
	return eqis
}

// scoreDays blends recency of the latest article (exponential decay
// with tau days) and persistence across unique publication days
// (log-scaled against a two-week range). Events with no publication
// times score 0.
func scoreDays(articles []core.Article, params Params, now time.Time) (score, ageDays float64, uniqueDays int) {
	var first, last *time.Time
	days := map[string]bool{}
	for i := range articles {
		p := articles[i].PublishedAt
		if p == nil {
			continue
		}
		if first == nil || p.Before(*first) {
			first = p
		}
		if last == nil || p.After(*last) {
			last = p
		}
		days[p.UTC().Format("2006-01-02")] = true
	}
	if first == nil {
		return 0, 0, 0
	}

	ageDays = now.Sub(*first).Hours() / 24
	recencyDays := math.Max(0, now.Sub(*last).Hours()/24)
	recency := math.Exp(-recencyDays / params.RecencyTauDays)
	persistence := math.Log(1+float64(len(days))) / math.Log(1+persistenceDayRange)
	return 100 * (0.6*recency + 0.4*persistence), ageDays, len(days)
}

// scoreCoverage counts distinct outlet groups (host prefixes www/m/
// mobile stripped) and saturates at the configured group count.
func scoreCoverage(articles []core.Article, params Params) (float64, int) {
	if len(articles) == 0 {
		return 0, 0
	}
	groups := map[string]bool{}
	for i := range articles {
		groups[outletGroup(articles[i].OutletName)] = true
	}
	score := 100 * math.Min(1, float64(len(groups))/params.CoverageSaturation)
	return score, len(groups)
}

func outletGroup(outlet string) string {
	g := strings.ToLower(outlet)
	for _, prefix := range []string{"www.", "m.", "mobile."} {
		g = strings.ReplaceAll(g, prefix, "")
	}
	return g
}

// scoreCoherence is the mean pairwise TF-IDF cosine over the member
// bodies, scaled to 0-100. Below the minimum article count it is 0.
func scoreCoherence(articles []core.Article, params Params) float64 {
	var texts []string
	for i := range articles {
		if t := strings.TrimSpace(articles[i].Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) < params.CoherenceMin {
		return 0
	}
	return 100 * meanPairwiseCosine(texts)
}

// scoreBestSource ranks outlets by 0.6 authority + 0.2 primacy + 0.2
// verified-claim share. Primacy is the outlet's share of articles
// published in the first quartile of the event's timeline. The winning
// outlet's score is scaled to 0-100.
func scoreBestSource(articles []core.Article, claims []persistence.EventClaim, profiles map[string]OutletProfile) (string, float64) {
	var pubs []time.Time
	for i := range articles {
		if articles[i].PublishedAt != nil {
			pubs = append(pubs, *articles[i].PublishedAt)
		}
	}
	if len(pubs) == 0 {
		return "", 0
	}
	cut := firstQuartile(pubs)

	type outletStats struct {
		verified, total int
		primacy         int
		articles        int
	}
	per := map[string]*outletStats{}
	stats := func(outlet string) *outletStats {
		key := strings.ToLower(outlet)
		s, ok := per[key]
		if !ok {
			s = &outletStats{}
			per[key] = s
		}
		return s
	}

	for i := range claims {
		if claims[i].OutletName == "" {
			continue
		}
		s := stats(claims[i].OutletName)
		s.total++
		if claims[i].VerifiedState == core.VerifiedStateVerified {
			s.verified++
		}
	}
	for i := range articles {
		s := stats(articles[i].OutletName)
		s.articles++
		if p := articles[i].PublishedAt; p != nil && !p.After(cut) {
			s.primacy++
		}
	}

	bestOutlet, bestScore := "", -1.0
	// Deterministic iteration so ties resolve the same way every run.
	outlets := make([]string, 0, len(per))
	for outlet := range per {
		outlets = append(outlets, outlet)
	}
	sort.Strings(outlets)
	for _, outlet := range outlets {
		s := per[outlet]
		authority := defaultAuthorityWeight
		if p, ok := profiles[outlet]; ok {
			authority = p.AuthorityWeight
		}
		verifiedShare := float64(s.verified) / math.Max(1, float64(s.total))
		primacy := float64(s.primacy) / math.Max(1, float64(s.articles))
		score := 0.6*authority + 0.2*primacy + 0.2*verifiedShare
		if score > bestScore {
			bestScore = score
			bestOutlet = outlet
		}
	}
	return bestOutlet, 100 * bestScore
}

// firstQuartile returns the 25th-percentile time with linear
// interpolation between the two neighboring order statistics.
func firstQuartile(times []time.Time) time.Time {
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := 0.25 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	delta := sorted[hi].Sub(sorted[lo])
	return sorted[lo].Add(time.Duration(frac * float64(delta)))
}

// scoreCorroboration is the verified-claim ratio damped by the
// contested-claim rate. No claims scores 0.
func scoreCorroboration(claims []persistence.EventClaim) (score, ratio, contradiction float64) {
	if len(claims) == 0 {
		return 0, 0, 0
	}
	var verified, contested int
	for i := range claims {
		switch claims[i].VerifiedState {
		case core.VerifiedStateVerified:
			verified++
		case core.VerifiedStateContested:
			contested++
		}
	}
	total := float64(len(claims))
	ratio = float64(verified) / total
	contradiction = float64(contested) / total
	return 100 * ratio * (1 - contradiction), ratio, contradiction
}

// scoreCorrectionRisk averages the outlet correction rates weighted by
// article share and maps the result against the high-risk cap, so an
// event sourced entirely from high-correction outlets scores 0.
func scoreCorrectionRisk(articles []core.Article, profiles map[string]OutletProfile, params Params) (float64, float64) {
	if len(articles) == 0 {
		return 0, 0
	}
	counts := map[string]int{}
	for i := range articles {
		counts[strings.ToLower(articles[i].OutletName)]++
	}
	var risk float64
	total := float64(len(articles))
	for outlet, n := range counts {
		rate := defaultCorrectionRate
		if p, ok := profiles[outlet]; ok {
			rate = p.CorrectionRate
		}
		risk += float64(n) / total * rate
	}
	return 100 * (1 - math.Min(1, risk/params.HighRiskCap)), risk
}
