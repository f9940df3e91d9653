package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		GamesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_games_recorded_total",
			Help: "The total number of games written to the store.",
		}),
		StatsRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_stats_requests_total",
			Help: "The total number of statistics requests served.",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_auth_failures_total",
			Help: "The total number of rejected credential or token checks.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoreboard_query_duration_seconds",
			Help:    "The duration of statistics queries.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scoreboard_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.GamesRecorded,
		s.StatsRequests,
		s.AuthFailures,
		s.QueryDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncGamesRecorded() {
	s.GamesRecorded.Inc()
}

func (s *Service) IncStatsRequests() {
	s.StatsRequests.Inc()
}

func (s *Service) IncAuthFailures() {
	s.AuthFailures.Inc()
}

func (s *Service) ObserveQueryDuration(duration float64) {
	s.QueryDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
