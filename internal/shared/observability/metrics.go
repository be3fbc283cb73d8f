package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File outcomes recorded by FilesProcessedTotal.
const (
	OutcomeIndexed   = "indexed"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "javaindex_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javaindex_resolve_seconds",
		Help:    "Time spent resolving one compilation unit.",
		Buckets: prometheus.DefBuckets,
	})

	FilesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "javaindex_files_processed_total",
		Help: "Files handled by the pipeline, by outcome.",
	}, []string{"repo", "outcome"})

	TypeUsagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "javaindex_type_usages_total",
		Help: "Type usages written to the store.",
	})

	UnresolvedNamesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "javaindex_unresolved_names_total",
		Help: "Simple names visited without a visible declaration.",
	})

	StoreWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javaindex_store_write_seconds",
		Help:    "Latency for persisting one file record.",
		Buckets: prometheus.DefBuckets,
	})

	IndexRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javaindex_index_run_seconds",
		Help:    "Duration of a full indexing run.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "javaindex_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	ParsersLeased = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "javaindex_parsers_leased",
		Help: "Tree-sitter parsers currently checked out of the pool.",
	})
)
