package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcw_vote_requests_total",
		Help: "Vote submissions received, by outcome",
	}, []string{"status"})

	exportRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcw_export_requests_total",
		Help: "Export downloads served, by format and outcome",
	}, []string{"type", "status"})

	exportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mcw_export_duration_seconds",
		Help:    "Time to render one export file",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveExportRequest(format, status string) {
	exportRequestsTotal.WithLabelValues(format, status).Inc()
}

func ObserveExportDuration(seconds float64) {
	exportDuration.Observe(seconds)
}
