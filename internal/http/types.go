package http

import (
	"net/http"

	"github.com/mauv0809/kart-scoreboard/internal/auth"
	"github.com/mauv0809/kart-scoreboard/internal/config"
	"github.com/mauv0809/kart-scoreboard/internal/metrics"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
)

// Server holds the dependencies for the HTTP layer.
type Server struct {
	Store          scoreboard.Store
	Auth           *auth.Service
	Tokens         *auth.TokenManager
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}
