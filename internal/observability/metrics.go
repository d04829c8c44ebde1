package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	activityEntriesTotal   *prometheus.CounterVec
	rollbackAttemptsTotal  *prometheus.CounterVec
	retentionDeletedTotal  prometheus.Counter
	filterCacheLookupTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityhub_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cityhub_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityhub_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		activityEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityhub_activity_entries_total",
			Help: "Activity log entries recorded, by module.",
		}, []string{"module"})

		rollbackAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityhub_rollback_attempts_total",
			Help: "Rollback attempts, by outcome.",
		}, []string{"outcome"})

		retentionDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cityhub_retention_deleted_total",
			Help: "Activity log entries removed by the retention sweep.",
		})

		filterCacheLookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityhub_filter_cache_lookups_total",
			Help: "Filter dropdown cache lookups, by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			activityEntriesTotal,
			rollbackAttemptsTotal,
			retentionDeletedTotal,
			filterCacheLookupTotal,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ActivityEntries exposes the counter for recorded audit entries.
func ActivityEntries() *prometheus.CounterVec {
	RegisterMetrics()
	return activityEntriesTotal
}

// RollbackAttempts exposes the counter for rollback outcomes.
func RollbackAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return rollbackAttemptsTotal
}

// RetentionDeleted exposes the counter for retention-swept entries.
func RetentionDeleted() prometheus.Counter {
	RegisterMetrics()
	return retentionDeletedTotal
}

// FilterCacheLookups exposes the counter for filter cache hits and misses.
func FilterCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return filterCacheLookupTotal
}
