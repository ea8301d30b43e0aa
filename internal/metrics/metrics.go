// Package metrics exposes the prometheus collectors for the prayer clock.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultStale = "stale"
)

// Collector groups every collector registered by the application.
type Collector struct {
	Fetches        *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	Refreshes      *prometheus.CounterVec
	StaleResults   prometheus.Counter
	Reselections   *prometheus.CounterVec
	LocationLookup *prometheus.CounterVec
	CacheRequests  *prometheus.CounterVec
}

var (
	once      sync.Once
	collector *Collector
)

// Default returns the process-wide collector, registering it with the
// default prometheus registry on first use.
func Default() *Collector {
	once.Do(func() {
		collector = &Collector{
			Fetches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "prayer_clock_fetch_total",
					Help: "Timings requests by day (today/tomorrow) and result",
				},
				[]string{"day", "result"},
			),
			FetchDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "prayer_clock_fetch_duration_seconds",
					Help:    "Duration of a timings request in seconds",
					Buckets: prometheus.DefBuckets,
				},
			),
			Refreshes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "prayer_clock_refresh_total",
					Help: "Table refreshes by result (ok/error/stale)",
				},
				[]string{"result"},
			),
			StaleResults: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "prayer_clock_stale_results_total",
					Help: "Fetch results discarded because a newer request superseded them",
				},
			),
			Reselections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "prayer_clock_reselect_total",
					Help: "Next-event selections by reason",
				},
				[]string{"reason"},
			),
			LocationLookup: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "prayer_clock_location_resolve_total",
					Help: "Location lookups by source and result",
				},
				[]string{"source", "result"},
			),
			CacheRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "prayer_clock_cache_requests_total",
					Help: "In-memory timings cache lookups by result (hit/miss)",
				},
				[]string{"result"},
			),
		}
	})
	return collector
}

// ObserveFetch records one timings request.
func ObserveFetch(day string, took time.Duration, err error) {
	c := Default()
	c.FetchDuration.Observe(took.Seconds())
	c.Fetches.WithLabelValues(day, resultOf(err)).Inc()
}

// ObserveRefresh records the outcome of a table refresh.
func ObserveRefresh(result string) {
	Default().Refreshes.WithLabelValues(result).Inc()
}

// ObserveStale records a fetch result dropped by last-write-wins.
func ObserveStale() {
	c := Default()
	c.StaleResults.Inc()
	c.Refreshes.WithLabelValues(ResultStale).Inc()
}

// ObserveReselect records a next-event selection and why it happened.
func ObserveReselect(reason string) {
	Default().Reselections.WithLabelValues(reason).Inc()
}

// ObserveLocation records one location source attempt.
func ObserveLocation(source string, err error) {
	Default().LocationLookup.WithLabelValues(source, resultOf(err)).Inc()
}

// ObserveCache records a timings cache lookup.
func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	Default().CacheRequests.WithLabelValues(result).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
