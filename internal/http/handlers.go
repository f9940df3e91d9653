package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kart-scoreboard/internal/auth"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
	"github.com/mauv0809/kart-scoreboard/internal/stats"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		access, refresh, err := s.Auth.Login(req.Name, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.Metrics.IncAuthFailures()
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			s.storeError(w, err, "Login failed")
			return
		}

		writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}

		access, err := s.Auth.Refresh(token)
		if err != nil {
			log.Debug("Refresh rejected", "error", err)
			s.Metrics.IncAuthFailures()
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if err := s.Auth.Logout(token); err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrWrongTokenKind) {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			s.storeError(w, err, "Failed to delete session")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListGroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeArchived := r.URL.Query().Get("includeArchived") == "true"

		groups, err := s.Store.ListGroups(includeArchived)
		if err != nil {
			s.storeError(w, err, "Failed to list groups")
			return
		}
		if groups == nil {
			groups = []scoreboard.Group{}
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func (s *Server) GetGroupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid group id", http.StatusBadRequest)
			return
		}

		group, err := s.Store.GetGroup(id)
		if notFound(err) {
			http.Error(w, "Group not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.storeError(w, err, "Failed to get group")
			return
		}
		writeJSON(w, http.StatusOK, group)
	}
}

type createGroupRequest struct {
	Name     string `json:"name"`
	MaxScore *int64 `json:"maxScore"`
}

func (s *Server) CreateGroupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		group, err := s.Store.CreateGroup(req.Name, req.MaxScore)
		if err != nil {
			s.storeError(w, err, "Failed to create group")
			return
		}
		writeJSON(w, http.StatusOK, group)
	}
}

func (s *Server) GroupStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid group id", http.StatusBadRequest)
			return
		}
		n, err := queryInt(r, "n")
		if err != nil {
			http.Error(w, "Invalid 'n' parameter", http.StatusBadRequest)
			return
		}
		skipMostRecent := r.URL.Query().Get("skipMostRecent") == "true"

		s.Metrics.IncStatsRequests()
		start := time.Now()

		rows, err := s.Store.GroupScores(groupID, scoreboard.Descending)
		if err != nil {
			s.storeError(w, err, "Failed to fetch group scores")
			return
		}
		maxScores, err := s.Store.MaxScores(groupID)
		if err != nil {
			s.storeError(w, err, "Failed to fetch max scores")
			return
		}

		if skipMostRecent {
			latest, err := s.Store.LatestGameID(groupID)
			if err != nil {
				s.storeError(w, err, "Failed to fetch latest game")
				return
			}
			rows = stats.SkipGame(rows, latest)
		}

		result := stats.Aggregate(rows, maxScores, n)
		s.Metrics.ObserveQueryDuration(time.Since(start).Seconds())

		writeJSON(w, http.StatusOK, result)
	}
}

type playerResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func playerResponses(players []scoreboard.Player) []playerResponse {
	result := make([]playerResponse, 0, len(players))
	for _, p := range players {
		result = append(result, playerResponse{ID: p.ID, Name: p.Name})
	}
	return result
}

func (s *Server) GroupPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid group id", http.StatusBadRequest)
			return
		}

		players, err := s.Store.GroupPlayers(groupID)
		if err != nil {
			s.storeError(w, err, "Failed to list group players")
			return
		}
		writeJSON(w, http.StatusOK, playerResponses(players))
	}
}

func (s *Server) AddPlayerToGroupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid group id", http.StatusBadRequest)
			return
		}
		playerID, err := pathID(r, "playerId")
		if err != nil {
			http.Error(w, "Invalid player id", http.StatusBadRequest)
			return
		}

		if err := s.Store.AddPlayerToGroup(playerID, groupID); err != nil {
			if notFound(err) {
				http.Error(w, "Unknown group or player", http.StatusNotFound)
				return
			}
			s.storeError(w, err, "Failed to add player to group")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RemovePlayerFromGroupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid group id", http.StatusBadRequest)
			return
		}
		playerID, err := pathID(r, "playerId")
		if err != nil {
			http.Error(w, "Invalid player id", http.StatusBadRequest)
			return
		}

		if err := s.Store.RemovePlayerFromGroup(playerID, groupID); err != nil {
			s.storeError(w, err, "Failed to remove player from group")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type badgesResponse struct {
	ID     int64             `json:"id"`
	Badges stats.BadgeCounts `json:"badges"`
}

func (s *Server) GroupBadgesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid group id", http.StatusBadRequest)
			return
		}

		group, err := s.Store.GetGroup(groupID)
		if notFound(err) {
			http.Error(w, "Group not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.storeError(w, err, "Failed to get group")
			return
		}
		if group.MaxScore == nil {
			http.Error(w, "Group does not have max score, so cannot have badges", http.StatusBadRequest)
			return
		}

		players, err := s.Store.GroupPlayers(groupID)
		if err != nil {
			s.storeError(w, err, "Failed to list group players")
			return
		}

		result := make([]badgesResponse, 0, len(players))
		for _, p := range players {
			scores, err := s.Store.PlayerScores(p.ID, groupID, scoreboard.Descending, 0)
			if err != nil {
				s.storeError(w, err, "Failed to fetch player scores")
				return
			}
			result = append(result, badgesResponse{
				ID:     p.ID,
				Badges: stats.Badges(scores, *group.MaxScore),
			})
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type headToHeadResponse struct {
	PlayerStats []stats.PlayerStats `json:"playerStats"`
	Histories   []stats.History     `json:"histories"`
}

func (s *Server) HeadToHeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid group id", http.StatusBadRequest)
			return
		}
		ids, err := parseIDs(r.URL.Query().Get("ids"))
		if err != nil {
			http.Error(w, "Could not parse ids", http.StatusBadRequest)
			return
		}
		n, err := queryInt(r, "n")
		if err != nil {
			http.Error(w, "Invalid 'n' parameter", http.StatusBadRequest)
			return
		}

		s.Metrics.IncStatsRequests()
		start := time.Now()

		rows, err := s.Store.CommonGames(groupID, ids, scoreboard.Descending)
		if err != nil {
			s.storeError(w, err, "Failed to fetch common games")
			return
		}
		maxScores, err := s.Store.MaxScores(groupID)
		if err != nil {
			s.storeError(w, err, "Failed to fetch max scores")
			return
		}

		response := headToHeadResponse{
			PlayerStats: stats.Aggregate(rows, maxScores, n),
			Histories:   stats.Histories(rows, n),
		}
		s.Metrics.ObserveQueryDuration(time.Since(start).Seconds())

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.ListPlayers()
		if err != nil {
			s.storeError(w, err, "Failed to list players")
			return
		}
		writeJSON(w, http.StatusOK, playerResponses(players))
	}
}

type createPlayerRequest struct {
	Name     string  `json:"name"`
	Birthday *string `json:"birthday"`
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Birthday != nil {
			if _, err := time.Parse("2006-01-02", *req.Birthday); err != nil {
				http.Error(w, "Invalid birthday, expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
		}

		player, err := s.Store.CreatePlayer(req.Name, req.Birthday)
		if errors.Is(err, scoreboard.ErrNameTaken) {
			http.Error(w, "Name must be unique", http.StatusConflict)
			return
		}
		if err != nil {
			s.storeError(w, err, "Failed to create player")
			return
		}
		writeJSON(w, http.StatusOK, playerResponse{ID: player.ID, Name: player.Name})
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid player id", http.StatusBadRequest)
			return
		}

		player, err := s.Store.GetPlayer(id)
		if notFound(err) {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.storeError(w, err, "Failed to get player")
			return
		}
		writeJSON(w, http.StatusOK, playerResponse{ID: player.ID, Name: player.DisplayName()})
	}
}

func (s *Server) PlayerHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid player id", http.StatusBadRequest)
			return
		}
		groupID, err := queryInt(r, "groupId")
		if err != nil || groupID == 0 {
			http.Error(w, "Invalid 'groupId' parameter", http.StatusBadRequest)
			return
		}
		n, err := queryInt(r, "n")
		if err != nil {
			http.Error(w, "Invalid 'n' parameter", http.StatusBadRequest)
			return
		}

		scores, err := s.Store.PlayerScores(playerID, int64(groupID), scoreboard.Descending, int64(n))
		if err != nil {
			s.storeError(w, err, "Failed to fetch player history")
			return
		}

		// The query returns most-recent-first; the response is chronological.
		for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
			scores[i], scores[j] = scores[j], scores[i]
		}
		if scores == nil {
			scores = []int64{}
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

func (s *Server) BestStreakHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid player id", http.StatusBadRequest)
			return
		}
		groupID, err := queryInt(r, "groupId")
		if err != nil || groupID == 0 {
			http.Error(w, "Invalid 'groupId' parameter", http.StatusBadRequest)
			return
		}
		n, err := queryInt(r, "n")
		if err != nil {
			http.Error(w, "Invalid 'n' parameter", http.StatusBadRequest)
			return
		}

		scores, err := s.Store.PlayerScores(playerID, int64(groupID), scoreboard.Ascending, 0)
		if err != nil {
			s.storeError(w, err, "Failed to fetch player scores")
			return
		}

		writeJSON(w, http.StatusOK, stats.BestStreak(scores, n))
	}
}

type createGameRequest struct {
	GroupID int64                  `json:"groupId"`
	Scores  []scoreboard.GameScore `json:"scores"`
}

func (s *Server) CreateGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.GroupID == 0 || len(req.Scores) == 0 {
			http.Error(w, "A game needs a group and at least one score", http.StatusBadRequest)
			return
		}

		gameID, err := s.Store.CreateGame(req.GroupID, req.Scores)
		if notFound(err) {
			http.Error(w, "Unknown group or player", http.StatusNotFound)
			return
		}
		if err != nil {
			s.storeError(w, err, "Failed to create game")
			return
		}

		s.Metrics.IncGamesRecorded()
		log.Info("Game recorded", "gameID", gameID, "groupID", req.GroupID, "players", len(req.Scores))
		writeJSON(w, http.StatusOK, map[string]int64{"id": gameID})
	}
}

func (s *Server) PreviousPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := queryInt(r, "groupId")
		if err != nil || groupID == 0 {
			http.Error(w, "Invalid 'groupId' parameter", http.StatusBadRequest)
			return
		}

		ids, err := s.Store.PreviousPlayers(int64(groupID))
		if err != nil {
			s.storeError(w, err, "Failed to fetch previous players")
			return
		}
		if ids == nil {
			ids = []int64{}
		}
		writeJSON(w, http.StatusOK, ids)
	}
}
