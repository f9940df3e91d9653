package http

import (
	"net/http"

	"github.com/mauv0809/kart-scoreboard/internal/auth"
	"github.com/mauv0809/kart-scoreboard/internal/config"
	"github.com/mauv0809/kart-scoreboard/internal/metrics"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
)

func NewServer(store scoreboard.Store, authSvc *auth.Service, tokens *auth.TokenManager, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Store:          store,
		Auth:           authSvc,
		Tokens:         tokens,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Mutating routes additionally go through the access-token middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), logMiddleware))

	s.Router.Handle("POST /auth", Chain(s.LoginHandler(), logMiddleware))
	s.Router.Handle("GET /auth/refresh", Chain(s.RefreshHandler(), logMiddleware))
	s.Router.Handle("DELETE /auth", Chain(s.LogoutHandler(), logMiddleware))

	s.Router.Handle("GET /groups", Chain(s.ListGroupsHandler(), logMiddleware))
	s.Router.Handle("POST /group", Chain(s.CreateGroupHandler(), logMiddleware, s.requireAuth))
	s.Router.Handle("GET /group/{id}", Chain(s.GetGroupHandler(), logMiddleware))
	s.Router.Handle("GET /group/{id}/stats", Chain(s.GroupStatsHandler(), logMiddleware))
	s.Router.Handle("GET /group/{id}/players", Chain(s.GroupPlayersHandler(), logMiddleware))
	s.Router.Handle("POST /group/{id}/player/{playerId}", Chain(s.AddPlayerToGroupHandler(), logMiddleware, s.requireAuth))
	s.Router.Handle("DELETE /group/{id}/player/{playerId}", Chain(s.RemovePlayerFromGroupHandler(), logMiddleware, s.requireAuth))
	s.Router.Handle("GET /group/{id}/badges", Chain(s.GroupBadgesHandler(), logMiddleware))
	s.Router.Handle("GET /group/{id}/head_to_head", Chain(s.HeadToHeadHandler(), logMiddleware))

	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), logMiddleware))
	s.Router.Handle("POST /player", Chain(s.CreatePlayerHandler(), logMiddleware, s.requireAuth))
	s.Router.Handle("GET /player/{id}", Chain(s.GetPlayerHandler(), logMiddleware))
	s.Router.Handle("GET /player/{id}/history", Chain(s.PlayerHistoryHandler(), logMiddleware))
	s.Router.Handle("GET /player/{id}/best_streak", Chain(s.BestStreakHandler(), logMiddleware))

	s.Router.Handle("POST /game", Chain(s.CreateGameHandler(), logMiddleware, s.requireAuth))
	s.Router.Handle("GET /game/previous_players", Chain(s.PreviousPlayersHandler(), logMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
