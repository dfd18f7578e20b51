package quality

import (
	"context"
	"time"

	"newsengine/internal/core"
	"newsengine/internal/grouping"
	"newsengine/internal/logger"
	"newsengine/internal/metrics"
	"newsengine/internal/ner"
	"newsengine/internal/persistence"
	"newsengine/internal/reputation"
	"newsengine/internal/writing"
)

// Worker is the quality service loop: it scores article batches, groups
// them into events, and records a performance snapshot per batch.
type Worker struct {
	store      *persistence.DB
	writing    *writing.Analyzer
	reputation *reputation.Analyzer
	extractor  *ner.Extractor
	engine     *grouping.Engine
	manager    *grouping.Manager
	batchSize  int
	sleep      time.Duration
}

// NewWorker wires the composition worker for one service instance.
func NewWorker(store *persistence.DB, extractor *ner.Extractor, instance string, batchSize int, sleep time.Duration) *Worker {
	return &Worker{
		store:      store,
		writing:    writing.NewAnalyzer(),
		reputation: reputation.NewAnalyzer(store),
		extractor:  extractor,
		engine:     grouping.NewEngine(store, extractor),
		manager:    grouping.NewManager(store, instance),
		batchSize:  batchSize,
		sleep:      sleep,
	}
}

// Run loads the grouping configuration, logs the feed-mapping report,
// and processes batches until ctx is cancelled. The in-flight article
// is finished before a shutdown takes effect.
func (w *Worker) Run(ctx context.Context) error {
	if _, err := w.manager.LoadStartup(ctx); err != nil {
		return err
	}
	reputation.NewValidator(w.store).LogReport(ctx)

	logger.Info("quality worker starting", "batch_size", w.batchSize)
	for {
		hadWork, err := w.runBatch(ctx)
		if err != nil {
			if persistence.IsRetryable(err) {
				logger.Warn("store unavailable, backing off", "error", err.Error())
			} else {
				logger.Error("quality batch failed", err)
			}
		}

		// Empty batches double the pause so an idle pipeline stays quiet.
		pause := w.sleep
		if !hadWork {
			pause = 2 * w.sleep
		}
		select {
		case <-time.After(pause):
		case <-ctx.Done():
			logger.Info("quality worker stopped")
			return nil
		}
	}
}

func (w *Worker) runBatch(ctx context.Context) (bool, error) {
	articles, err := w.store.Articles.SelectUnprocessed(ctx, w.batchSize)
	if err != nil {
		return false, err
	}
	if len(articles) == 0 {
		return false, nil
	}

	cfg := w.manager.Current()
	opts := ner.Options{
		MinEntityLength: cfg.MinEntityLength,
		MaxEntityLength: cfg.MaxEntityLength,
		NoiseThreshold:  cfg.EntityNoiseThreshold,
	}

	logger.Info("processing quality batch", "articles", len(articles))
	scored := articles[:0]
	for _, article := range articles {
		if ctx.Err() != nil {
			break
		}
		if w.scoreArticle(ctx, &article, opts) {
			scored = append(scored, article)
		}
	}
	if len(scored) == 0 {
		return true, nil
	}

	result := w.engine.Group(scored, cfg)
	w.engine.Persist(ctx, result)
	w.manager.RecordBatch(ctx, result.Metrics)
	metrics.BatchesProcessed.Inc()
	return true, nil
}

// scoreArticle computes NER, writing, reputation, and the composite
// score, and writes them in one row update. Failures are logged and
// the article is left for a later batch.
func (w *Worker) scoreArticle(ctx context.Context, article *core.Article, opts ner.Options) bool {
	extracted := w.extractor.Categorized(article.Text, article.Title, opts)
	writingScores := w.writing.Analyze(article.Text, article.Title)
	repScore := w.reputation.Score(ctx, article.OutletName)
	score := Compose(writingScores.Total, repScore, article.PublishedAt, time.Now())

	if err := w.store.Articles.UpdateScoresAndNER(ctx, article.ID, score, extracted.Fields); err != nil {
		logger.Error("failed to save article scores", err, "article_id", article.ID)
		return false
	}
	article.QualityScore = &score
	article.NER = extracted.Fields
	metrics.ArticlesScored.Inc()
	logger.Debug("article scored",
		"article_id", article.ID,
		"writing", writingScores.Total,
		"reputation", repScore,
		"quality", score)
	return true
}
