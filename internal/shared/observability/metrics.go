package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapdiff_extraction_seconds",
		Help:    "Time spent extracting a module scope from source.",
		Buckets: prometheus.DefBuckets,
	}, []string{"module"})

	SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapdiff_snapshot_seconds",
		Help:    "Time spent building one module's definition snapshot.",
		Buckets: prometheus.DefBuckets,
	})

	DiffDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapdiff_diff_seconds",
		Help:    "Time spent diffing two generations of one module.",
		Buckets: prometheus.DefBuckets,
	})

	ModulesSnapshotted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapdiff_modules_snapshotted_total",
		Help: "Total number of module snapshot builds.",
	})

	TriggersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapdiff_triggers_total",
		Help: "Total number of changed-definition triggers emitted.",
	})

	GenerationsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapdiff_generations_stored_total",
		Help: "Total number of generations persisted to the store.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapdiff_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	TrackedModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapdiff_tracked_modules",
		Help: "Current number of modules with a stored generation.",
	})
)
