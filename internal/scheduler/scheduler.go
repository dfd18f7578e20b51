// Package scheduler drives per-feed polling with a bounded worker pool
// and per-host rate limits.
package scheduler

import (
	"context"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"newsengine/internal/core"
	"newsengine/internal/ingest"
	"newsengine/internal/logger"
	"newsengine/internal/metrics"
	"newsengine/internal/persistence"
)

const (
	defaultTick    = 30 * time.Second
	defaultWorkers = 4
	drainTimeout   = 10 * time.Second

	// perHostInterval is the minimum spacing between requests to one host.
	perHostInterval = 2 * time.Second
)

// Scheduler owns the outer polling loop.
type Scheduler struct {
	store    *persistence.DB
	ingester *ingest.Ingester
	tick     time.Duration
	workers  int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a scheduler with the default tick and pool size.
func New(store *persistence.DB, ingester *ingest.Ingester) *Scheduler {
	return &Scheduler{
		store:    store,
		ingester: ingester,
		tick:     defaultTick,
		workers:  defaultWorkers,
		limiters: make(map[string]*rate.Limiter),
	}
}

// SetTick overrides the polling tick, wired to FETCH_INTERVAL.
func (s *Scheduler) SetTick(d time.Duration) {
	if d > 0 {
		s.tick = d
	}
}

// Run blocks until ctx is cancelled. On each tick it enqueues one task
// per due feed; on shutdown it stops enqueueing and waits up to the
// drain timeout for running tasks.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Info("fetch scheduler starting",
		"tick", s.tick.String(), "workers", s.workers)

	tasks := make(chan core.Feed)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for feed := range tasks {
				s.runTask(ctx, feed)
			}
		}()
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		s.dispatchDue(ctx, tasks)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			close(tasks)
			drained := make(chan struct{})
			go func() {
				wg.Wait()
				close(drained)
			}()
			select {
			case <-drained:
			case <-time.After(drainTimeout):
				logger.Warn("scheduler drain timed out")
			}
			logger.Info("fetch scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, tasks chan<- core.Feed) {
	feeds, err := s.store.Feeds.ListActive(ctx)
	if err != nil {
		logger.Error("failed to list active feeds", err)
		return
	}
	now := time.Now().UTC()
	for _, feed := range feeds {
		if !due(feed, now) {
			continue
		}
		select {
		case tasks <- feed:
		case <-ctx.Done():
			return
		}
	}
}

func due(feed core.Feed, now time.Time) bool {
	if feed.LastFetched == nil {
		return true
	}
	interval := time.Duration(feed.PollInterval) * time.Minute
	return now.Sub(*feed.LastFetched) >= interval
}

// runTask processes one feed. last_fetched advances on success and on
// handled failure alike, so a broken feed cannot hot-loop.
func (s *Scheduler) runTask(ctx context.Context, feed core.Feed) {
	if ctx.Err() != nil {
		return
	}
	// Small jitter so simultaneous due feeds do not burst as one.
	time.Sleep(time.Duration(rand.Intn(500)) * time.Millisecond)

	if err := s.waitForHost(ctx, feed.URL); err != nil {
		return
	}

	if _, err := s.ingester.ProcessFeed(ctx, feed); err != nil {
		metrics.FeedFetchErrors.Inc()
		logger.Warn("feed processing failed",
			"feed", feed.OutletName, "url", feed.URL, "error", err.Error())
	}

	if err := s.store.Feeds.TouchLastFetched(ctx, feed.ID); err != nil {
		logger.Error("failed to update last_fetched", err, "feed_id", feed.ID)
	}
}

func (s *Scheduler) waitForHost(ctx context.Context, feedURL string) error {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	limiter, ok := s.limiters[parsed.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(perHostInterval), 1)
		s.limiters[parsed.Host] = limiter
	}
	s.mu.Unlock()
	return limiter.Wait(ctx)
}
