package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ResearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_research_requests_total",
			Help: "Total number of research requests by outcome",
		},
		[]string{"outcome"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_search_requests_total",
			Help: "Total number of search API requests by status",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_search_duration_seconds",
			Help:    "Duration of search API requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_scrape_requests_total",
			Help: "Total number of page scrapes by domain and status",
		},
		[]string{"domain", "status"},
	)

	ScrapeBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_scrape_bytes_total",
			Help: "Total bytes downloaded across all scrapes",
		},
		[]string{"domain"},
	)

	SynthesisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_synthesis_duration_seconds",
			Help:    "Duration of language-model synthesis calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
)

// RecordSearch updates the search counters for one API call.
func RecordSearch(status string, d time.Duration) {
	SearchRequestsTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(d.Seconds())
}

// RecordScrape updates the scrape counters for one fetched page.
func RecordScrape(domain, status string, bytes int) {
	ScrapeRequestsTotal.WithLabelValues(domain, status).Inc()
	ScrapeBytesTotal.WithLabelValues(domain).Add(float64(bytes))
}

// RecordResearch counts a completed research request. Outcome is "ok",
// "degraded", or "failed".
func RecordResearch(outcome string) {
	ResearchRequestsTotal.WithLabelValues(outcome).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
