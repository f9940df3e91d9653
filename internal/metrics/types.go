package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds the Prometheus collectors for the scoreboard.
type Service struct {
	GamesRecorded      prometheus.Counter
	StatsRequests      prometheus.Counter
	AuthFailures       prometheus.Counter
	QueryDuration      prometheus.Histogram
	StartupTimeSeconds prometheus.Gauge
}
