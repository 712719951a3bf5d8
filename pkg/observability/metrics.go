package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// CacheRequests counts memoized calls by outcome
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_cache_requests_total",
			Help: "Total number of memoized calls",
		},
		[]string{"function", "result"}, // result: hit, miss, bypass
	)

	// CacheErrors counts failures talking to the cache store
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_cache_errors_total",
			Help: "Total number of cache store errors",
		},
		[]string{"function", "operation"}, // operation: get, set, decode
	)

	// CacheEvictions counts entries removed by the janitor
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aerosense_cache_evictions_total",
			Help: "Total number of expired cache entries evicted",
		},
	)

	// ClickHouseQueries counts total number of ClickHouse queries executed
	ClickHouseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_clickhouse_queries_total",
			Help: "Total number of ClickHouse queries executed",
		},
		[]string{"query", "status"}, // status: success, error
	)

	// ClickHouseQueryDuration measures ClickHouse query execution time
	ClickHouseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aerosense_clickhouse_query_duration_seconds",
			Help:    "ClickHouse query execution time",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"query"},
	)

	// ClickHouseRowsReturned counts rows returned to the dashboard
	ClickHouseRowsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_clickhouse_rows_returned_total",
			Help: "Total number of rows returned by ClickHouse queries",
		},
		[]string{"query"},
	)

	// QueryTruncations counts queries capped at the row limit
	QueryTruncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_query_truncations_total",
			Help: "Total number of queries limited to the row limit",
		},
		[]string{"query"},
	)

	// PlotsTotal counts rendered plots
	PlotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_plots_total",
			Help: "Total number of plot requests",
		},
		[]string{"plot", "status"},
	)

	// PlotDuration measures plot orchestration time including queries
	PlotDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aerosense_plot_duration_seconds",
			Help:    "Plot orchestration duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"plot"},
	)

	// SelectorDispatches counts selector change events
	SelectorDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_selector_dispatch_total",
			Help: "Total number of selector change events dispatched",
		},
		[]string{"selector", "status"},
	)

	// WarmerTasks counts cache warming tasks
	WarmerTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_warmer_tasks_total",
			Help: "Total number of cache warming tasks",
		},
		[]string{"task", "status"}, // status: enqueued, success, failed
	)

	// ArchivedTasksDeleted counts warmer tasks deleted after running out of retries
	ArchivedTasksDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_warmer_archived_tasks_deleted_total",
			Help: "Total number of archived warmer tasks deleted",
		},
		[]string{"queue"},
	)

	// ErrorsTotal counts total number of errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerosense_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordCacheHit records a memoized call served from the cache
func RecordCacheHit(function string) {
	CacheRequests.WithLabelValues(function, "hit").Inc()
}

// RecordCacheMiss records a memoized call that invoked the wrapped function
func RecordCacheMiss(function string) {
	CacheRequests.WithLabelValues(function, "miss").Inc()
}

// RecordCacheBypass records a call under a policy that never stores
func RecordCacheBypass(function string) {
	CacheRequests.WithLabelValues(function, "bypass").Inc()
}

// RecordCacheError records a cache store failure
func RecordCacheError(function, operation string) {
	CacheErrors.WithLabelValues(function, operation).Inc()
}

// RecordCacheEvictions records janitor evictions
func RecordCacheEvictions(count int) {
	CacheEvictions.Add(float64(count))
}

// RecordClickHouseQuery records ClickHouse query metrics
func RecordClickHouseQuery(query, status string, duration float64) {
	ClickHouseQueries.WithLabelValues(query, status).Inc()
	ClickHouseQueryDuration.WithLabelValues(query).Observe(duration)
}

// RecordClickHouseRows records rows returned by a query
func RecordClickHouseRows(query string, count int) {
	ClickHouseRowsReturned.WithLabelValues(query).Add(float64(count))
}

// RecordTruncation records a query that hit the row limit
func RecordTruncation(query string) {
	QueryTruncations.WithLabelValues(query).Inc()
}

// RecordPlot records plot orchestration metrics
func RecordPlot(plot, status string, duration float64) {
	PlotsTotal.WithLabelValues(plot, status).Inc()
	PlotDuration.WithLabelValues(plot).Observe(duration)
}

// RecordSelectorDispatch records a selector change event
func RecordSelectorDispatch(selector, status string) {
	SelectorDispatches.WithLabelValues(selector, status).Inc()
}

// RecordWarmerTask records a cache warming task state change
func RecordWarmerTask(task, status string) {
	WarmerTasks.WithLabelValues(task, status).Inc()
}

// RecordArchivedTasksDeleted records archived warmer tasks removed from queue
func RecordArchivedTasksDeleted(queue string, count int) {
	ArchivedTasksDeleted.WithLabelValues(queue).Add(float64(count))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
