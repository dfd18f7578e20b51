package grouping

import (
	"math"

	"newsengine/internal/core"
)

// Component weights for the overall performance score. They sum to 1.
const (
	weightEffectiveness = 0.35
	weightEfficiency    = 0.25
	weightCoverage      = 0.25
	weightPrecision     = 0.15
)

// Performance targets for the component mappings.
const (
	eventRateTarget      = 0.30
	coverageTarget       = 60.0
	timePerArticleTarget = 100.0 // ms
	articlesPerEventMin  = 2.0
	articlesPerEventMax  = 4.0
	articlesPerEventCap  = 6.0
)

// Scorer derives the component and overall performance scores of a
// grouping batch. Stateless.
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the four component scores and the weighted overall
// for one batch. previousOverall tunes the trend; pass nil for the
// first batch of an instance.
func (s *Scorer) Score(m core.BatchMetrics, previousOverall *float64) (core.PerformanceScores, core.ScoreTrend) {
	scores := core.PerformanceScores{
		Effectiveness: effectivenessScore(m),
		Efficiency:    efficiencyScore(m),
		Coverage:      coverageScore(m),
		Precision:     precisionScore(m, nil),
	}
	overall := scores.Effectiveness*weightEffectiveness +
		scores.Efficiency*weightEfficiency +
		scores.Coverage*weightCoverage +
		scores.Precision*weightPrecision
	scores.Overall = math.Round(overall*100) / 100
	return scores, trend(scores.Overall, previousOverall)
}

// effectivenessScore rewards the event-creation rate (linear to the
// 0.30 target), adds a diversity bonus up to 15, and subtracts a
// singleton penalty up to 25.
func effectivenessScore(m core.BatchMetrics) float64 {
	rateScore := 100.0
	if m.EventCreationRate < eventRateTarget {
		rateScore = m.EventCreationRate / eventRateTarget * 100
	}

	diversityBonus := 0.0
	if m.EventsCreated > 0 && m.ArticlesProcessed > 0 {
		diversityBonus = math.Min(15, float64(m.EventsCreated)/float64(m.ArticlesProcessed)*50)
	}

	singletonPenalty := 0.0
	if m.EventsCreated > 0 {
		ratio := math.Min(1, float64(m.SingletonEvents)/float64(m.EventsCreated))
		singletonPenalty = ratio * 25
	}

	return clampScore(rateScore + diversityBonus - singletonPenalty)
}

// efficiencyScore is 100 up to 100 ms/article, declines linearly to 50
// at 2x the target, then steeply with a floor of 10. No data scores a
// neutral 50.
func efficiencyScore(m core.BatchMetrics) float64 {
	if m.ProcessingTimeMS <= 0 || m.ArticlesProcessed <= 0 {
		return 50
	}
	perArticle := float64(m.ProcessingTimeMS) / float64(m.ArticlesProcessed)
	switch {
	case perArticle <= timePerArticleTarget:
		return 100
	case perArticle <= timePerArticleTarget*2:
		excess := (perArticle - timePerArticleTarget) / timePerArticleTarget
		return clampScore(100 - excess*50)
	default:
		excess := (perArticle - timePerArticleTarget*2) / timePerArticleTarget
		return clampScore(math.Max(10, 50-excess*20))
	}
}

// coverageScore maps the percentage piecewise: 0..2/3 of target scales
// to 0..70, 2/3..target scales to 70..100, at or above target is 100.
func coverageScore(m core.BatchMetrics) float64 {
	pct := m.CoveragePercentage
	knee := coverageTarget * 0.67
	switch {
	case pct >= coverageTarget:
		return 100
	case pct >= knee:
		progress := (pct - knee) / (coverageTarget * 0.33)
		return clampScore(70 + progress*30)
	default:
		return clampScore(pct / knee * 70)
	}
}

// precisionScore is 100 in the optimal 2.0-4.0 articles/event band,
// decays toward the acceptable limit of 6.0, collapses quickly beyond
// it, and penalizes under-grouping below 2.0. A manual validation
// rating in [0,1], when supplied, blends 70/30 with the algorithmic
// score.
func precisionScore(m core.BatchMetrics, manualRating *float64) float64 {
	avg := m.AvgArticlesPerEvent
	var base float64
	switch {
	case avg >= articlesPerEventMin && avg <= articlesPerEventMax:
		base = 100
	case avg < articlesPerEventMin:
		if avg >= 1.5 {
			base = 60 + (avg-1.5)/(articlesPerEventMin-1.5)*40
		} else {
			base = math.Max(20, avg*40)
		}
	case avg <= articlesPerEventCap:
		excess := avg - articlesPerEventMax
		base = 100 - excess/(articlesPerEventCap-articlesPerEventMax)*30
	default:
		base = math.Max(10, 70-(avg-articlesPerEventCap)*10)
	}
	if manualRating != nil {
		base = base*0.7 + *manualRating*100*0.3
	}
	return clampScore(base)
}

func trend(current float64, previous *float64) core.ScoreTrend {
	if previous == nil {
		return core.TrendInitial
	}
	diff := current - *previous
	switch {
	case math.Abs(diff) < 2.0:
		return core.TrendStable
	case diff > 0:
		return core.TrendImproving
	default:
		return core.TrendDeclining
	}
}

// Grade is the letter interpretation of an overall score, used in the
// batch summary log line.
func Grade(overall float64) string {
	switch {
	case overall >= 90:
		return "A+"
	case overall >= 80:
		return "A"
	case overall >= 70:
		return "B"
	case overall >= 60:
		return "C"
	case overall >= 50:
		return "D"
	default:
		return "F"
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
