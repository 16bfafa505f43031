// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus counters for the citation pipeline.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Click results for CitationClicks.
const (
	ClickActivated  = "activated"
	ClickOutOfRange = "out_of_range"
)

var (
	// Rewriter metrics
	Rewrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "citelink_rewrites_total",
			Help: "Total number of marker rewrite passes that changed their input",
		},
	)

	// Tracker metrics
	Scans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citelink_scans_total",
			Help: "Total number of cited-subset scans by discovery source",
		},
		[]string{"source"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "citelink_scan_duration_seconds",
			Help:    "Cited-subset scan duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	MutationBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "citelink_mutation_batches_total",
			Help: "Total number of mutation callbacks delivered to trackers",
		},
	)

	CitationClicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citelink_citation_clicks_total",
			Help: "Total number of citation link clicks handled",
		},
		[]string{"result"},
	)

	HighlightsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "citelink_highlight_expired_total",
			Help: "Total number of active highlights cleared by their timer",
		},
	)
)

// RecordScan records one cited-subset scan.
func RecordScan(source string, elapsed time.Duration) {
	Scans.WithLabelValues(source).Inc()
	ScanDuration.Observe(elapsed.Seconds())
}

// RecordClick records a handled citation click.
func RecordClick(result string) {
	CitationClicks.WithLabelValues(result).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics server listening", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
