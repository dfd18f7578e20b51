// Package metrics defines the Prometheus instrumentation shared by the
// services and an optional /metrics listener.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsengine/internal/logger"
)

var (
	ArticlesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newsengine",
		Name:      "articles_ingested_total",
		Help:      "Articles inserted by the ingester.",
	})

	FeedFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newsengine",
		Name:      "feed_fetch_errors_total",
		Help:      "Feed-level fetch or parse failures.",
	})

	BatchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newsengine",
		Name:      "quality_batches_total",
		Help:      "Composition worker batches completed.",
	})

	ArticlesScored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newsengine",
		Name:      "articles_scored_total",
		Help:      "Articles with quality scores written.",
	})

	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newsengine",
		Name:      "events_created_total",
		Help:      "Events created by the grouping engine.",
	})

	ClaimsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newsengine",
		Name:      "claims_extracted_total",
		Help:      "Claims persisted, placeholders excluded.",
	})

	BatchOverallScore = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "newsengine",
		Name:      "grouping_overall_score",
		Help:      "Overall performance score of the last grouping batch.",
	})
)

// Serve starts the /metrics listener when addr is non-empty. Failures
// are logged, never fatal.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listener starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics listener failed", err)
		}
	}()
}
