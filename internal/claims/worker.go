package claims

import (
	"context"
	"time"

	"newsengine/internal/logger"
	"newsengine/internal/metrics"
	"newsengine/internal/persistence"
)

// Worker is the claim extraction service loop.
type Worker struct {
	store     *persistence.DB
	extractor *Extractor
	batchSize int
	sleep     time.Duration
}

// NewWorker creates the claim worker.
func NewWorker(store *persistence.DB, batchSize int, sleep time.Duration) *Worker {
	return &Worker{
		store:     store,
		extractor: NewExtractor(),
		batchSize: batchSize,
		sleep:     sleep,
	}
}

// Run processes batches until ctx is cancelled. Per-article errors are
// logged and the batch continues.
func (w *Worker) Run(ctx context.Context) error {
	logger.Info("claim extractor starting", "batch_size", w.batchSize)
	for {
		hadWork, err := w.runBatch(ctx)
		if err != nil {
			if persistence.IsRetryable(err) {
				logger.Warn("store unavailable, backing off", "error", err.Error())
			} else {
				logger.Error("claim batch failed", err)
			}
		}

		pause := w.sleep
		if hadWork {
			pause = 5 * time.Second
		}
		select {
		case <-time.After(pause):
		case <-ctx.Done():
			logger.Info("claim extractor stopped")
			return nil
		}
	}
}

func (w *Worker) runBatch(ctx context.Context) (bool, error) {
	articles, err := w.store.Claims.SelectArticlesWithoutClaims(ctx, w.batchSize)
	if err != nil {
		return false, err
	}
	if len(articles) == 0 {
		return false, nil
	}

	logger.Info("processing claim batch", "articles", len(articles))
	for _, article := range articles {
		if ctx.Err() != nil {
			return true, nil
		}
		extracted := w.extractor.Extract(article.Text, article.Title, article.OutletName)
		if err := w.store.Claims.InsertBatch(ctx, article.ID, extracted); err != nil {
			logger.Error("failed to save claims", err, "article_id", article.ID)
			continue
		}
		metrics.ClaimsExtracted.Add(float64(len(extracted)))
		if len(extracted) > 0 {
			logger.Debug("claims extracted",
				"article_id", article.ID, "claims", len(extracted))
		}
	}
	return true, nil
}
