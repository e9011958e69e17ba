// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline on a package-local registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application's metrics registry; callers that want to
// expose or inspect metrics gather from it.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// DaysFetched counts calendar days successfully pulled from the API.
var DaysFetched = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "ask",
	Name:      "days_fetched_total",
	Help:      "Calendar days of chat records fetched from the remote API",
})

// FetchErrors counts failed day fetches.
var FetchErrors = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "ask",
	Name:      "fetch_errors_total",
	Help:      "Remote fetch failures, including auth rejections",
})

// RecordsNormalized counts raw records loaded into tables.
var RecordsNormalized = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "ask",
	Name:      "records_normalized_total",
	Help:      "Raw chat records normalized into tabular rows",
})

// CacheHits counts day fetches served from the local cache.
var CacheHits = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "ask",
	Name:      "cache_hits_total",
	Help:      "Day fetches answered from the local SQLite cache",
})

// ReportsWritten counts rendered HTML artifacts by report kind.
var ReportsWritten = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ask",
	Name:      "reports_written_total",
	Help:      "HTML report artifacts written, by report kind",
}, []string{"kind"})

// AnalysisDuration tracks wall time of a full analysis invocation.
var AnalysisDuration = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ask",
	Name:      "analysis_duration_seconds",
	Help:      "Time to fetch, normalize, and analyze one scope",
	Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
})
