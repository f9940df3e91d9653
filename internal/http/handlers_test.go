package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/kart-scoreboard/internal/auth"
	"github.com/mauv0809/kart-scoreboard/internal/config"
	"github.com/mauv0809/kart-scoreboard/internal/database"
	server "github.com/mauv0809/kart-scoreboard/internal/http"
	"github.com/mauv0809/kart-scoreboard/internal/metrics"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
	"github.com/mauv0809/kart-scoreboard/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "test-secret"
	testUsername = "admin"
	testPassword = "hunter22"
)

// setupTestServer builds a server against an in-memory database with an
// isolated metrics registry, plus one admin user for the auth flows.
func setupTestServer(t *testing.T) (*server.Server, scoreboard.Store, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	store := scoreboard.New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.CreateAdminUser(testUsername, string(hash)))

	registry := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(registry)
	metricsHandler := metrics.NewMetricsHandler(registry)

	// Short access duration keeps the refresh token immediately usable.
	tokens := auth.NewTokenManager(testSecret, time.Minute, time.Hour)
	authSvc := auth.NewService(store, tokens)

	cfg := config.Config{DBName: ":memory:", Port: "8080"}
	s := server.NewServer(store, authSvc, tokens, metricsSvc, metricsHandler, cfg)

	return s, store, dbTeardown
}

func doRequest(s *server.Server, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *server.Server) (string, string) {
	t.Helper()

	body := fmt.Sprintf(`{"name": %q, "password": %q}`, testUsername, testPassword)
	rec := doRequest(s, http.MethodPost, "/auth", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair.AccessToken, pair.RefreshToken
}

func TestHealthCheck(t *testing.T) {
	s, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(s, http.MethodPost, "/auth", `{"name": "admin", "password": "wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(s, http.MethodPost, "/auth", `{"name": "nobody", "password": "hunter22"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMutatingRoutesRequireAccessToken(t *testing.T) {
	s, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(s, http.MethodPost, "/player", `{"name": "Ada"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token is the wrong kind and must not open mutating routes.
	_, refresh := login(t, s)
	rec = doRequest(s, http.MethodPost, "/player", `{"name": "Ada"}`, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access, _ := login(t, s)
	rec = doRequest(s, http.MethodPost, "/player", `{"name": "Ada"}`, access)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	s, _, teardown := setupTestServer(t)
	defer teardown()

	access, refresh := login(t, s)

	// Refresh only accepts refresh tokens.
	rec := doRequest(s, http.MethodGet, "/auth/refresh", "", access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(s, http.MethodGet, "/auth/refresh", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)

	rec = doRequest(s, http.MethodDelete, "/auth", "", refresh)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The session is gone, so the refresh token is dead.
	rec = doRequest(s, http.MethodGet, "/auth/refresh", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePlayerValidation(t *testing.T) {
	s, _, teardown := setupTestServer(t)
	defer teardown()
	access, _ := login(t, s)

	rec := doRequest(s, http.MethodPost, "/player", `{"name": "Ada", "birthday": "1990-06-15"}`, access)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodPost, "/player", `{"name": "Ada"}`, access)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(s, http.MethodPost, "/player", `{"name": "Bea", "birthday": "15/06/1990"}`, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPost, "/player", `{"name": ""}`, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGroupNotFound(t *testing.T) {
	s, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(s, http.MethodGet, "/group/999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// seedGroup writes a group with two players straight through the store.
func seedGroup(t *testing.T, store scoreboard.Store, maxScore *int64) (int64, int64, int64) {
	t.Helper()

	group, err := store.CreateGroup("G", maxScore)
	require.NoError(t, err)
	p1, err := store.CreatePlayer("Ada", nil)
	require.NoError(t, err)
	p2, err := store.CreatePlayer("Bea", nil)
	require.NoError(t, err)
	require.NoError(t, store.AddPlayerToGroup(p1.ID, group.ID))
	require.NoError(t, store.AddPlayerToGroup(p2.ID, group.ID))
	return group.ID, p1.ID, p2.ID
}

func TestCreateGameAndStatsRoundTrip(t *testing.T) {
	s, store, teardown := setupTestServer(t)
	defer teardown()
	access, _ := login(t, s)
	groupID, p1, p2 := seedGroup(t, store, nil)

	body := fmt.Sprintf(`{"groupId": %d, "scores": [{"playerId": %d, "score": 50}, {"playerId": %d, "score": 40}]}`, groupID, p1, p2)
	rec := doRequest(s, http.MethodPost, "/game", body, access)
	require.Equal(t, http.StatusOK, rec.Code)

	var created map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created["id"])

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/group/%d/stats", groupID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result []stats.PlayerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, int64(1), result[0].Wins)
	assert.Equal(t, int64(50), result[0].Points)
	assert.Equal(t, int64(0), result[1].Wins)
	assert.Equal(t, int64(1), result[1].Games)
}

func TestCreateGameValidation(t *testing.T) {
	s, store, teardown := setupTestServer(t)
	defer teardown()
	access, _ := login(t, s)
	groupID, p1, _ := seedGroup(t, store, nil)

	rec := doRequest(s, http.MethodPost, "/game", `{"groupId": 0, "scores": []}`, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := fmt.Sprintf(`{"groupId": 999, "scores": [{"playerId": %d, "score": 10}]}`, p1)
	rec = doRequest(s, http.MethodPost, "/game", body, access)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body = fmt.Sprintf(`{"groupId": %d, "scores": [{"playerId": 999, "score": 10}]}`, groupID)
	rec = doRequest(s, http.MethodPost, "/game", body, access)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroupStatsSkipMostRecent(t *testing.T) {
	s, store, teardown := setupTestServer(t)
	defer teardown()
	groupID, p1, _ := seedGroup(t, store, nil)

	// With a single game on record, skipping the most recent leaves nothing.
	_, err := store.CreateGame(groupID, []scoreboard.GameScore{{PlayerID: p1, Score: 10}})
	require.NoError(t, err)

	rec := doRequest(s, http.MethodGet, fmt.Sprintf("/group/%d/stats?skipMostRecent=true", groupID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result []stats.PlayerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result)
}

func TestGroupBadges(t *testing.T) {
	s, store, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(s, http.MethodGet, "/group/999/badges", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	noMax, _, _ := seedGroup(t, store, nil)
	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/group/%d/badges", noMax), "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	maxScore := int64(100)
	group, err := store.CreateGroup("Badged", &maxScore)
	require.NoError(t, err)
	player, err := store.CreatePlayer("Cyd", nil)
	require.NoError(t, err)
	require.NoError(t, store.AddPlayerToGroup(player.ID, group.ID))
	_, err = store.CreateGame(group.ID, []scoreboard.GameScore{{PlayerID: player.ID, Score: 100}})
	require.NoError(t, err)
	_, err = store.CreateGame(group.ID, []scoreboard.GameScore{{PlayerID: player.ID, Score: 90}})
	require.NoError(t, err)

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/group/%d/badges", group.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result []struct {
		ID     int64             `json:"id"`
		Badges stats.BadgeCounts `json:"badges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, player.ID, result[0].ID)
	assert.Equal(t, 1, result[0].Badges.Star)
	assert.Equal(t, 1, result[0].Badges.Silver)
}

func TestHeadToHead(t *testing.T) {
	s, store, teardown := setupTestServer(t)
	defer teardown()
	groupID, p1, p2 := seedGroup(t, store, nil)

	rec := doRequest(s, http.MethodGet, fmt.Sprintf("/group/%d/head_to_head?ids=1,,abc", groupID), "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// One shared game and one solo game; only the shared one counts.
	_, err := store.CreateGame(groupID, []scoreboard.GameScore{
		{PlayerID: p1, Score: 50},
		{PlayerID: p2, Score: 40},
	})
	require.NoError(t, err)
	_, err = store.CreateGame(groupID, []scoreboard.GameScore{{PlayerID: p1, Score: 60}})
	require.NoError(t, err)

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/group/%d/head_to_head?ids=%d,%d", groupID, p1, p2), "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		PlayerStats []stats.PlayerStats `json:"playerStats"`
		Histories   []stats.History     `json:"histories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.PlayerStats, 2)
	for _, ps := range result.PlayerStats {
		assert.Equal(t, int64(1), ps.Games)
	}
	require.Len(t, result.Histories, 2)
}

func TestPlayerHistoryAndBestStreak(t *testing.T) {
	s, store, teardown := setupTestServer(t)
	defer teardown()
	groupID, p1, _ := seedGroup(t, store, nil)

	for _, score := range []int64{10, 30, 20} {
		_, err := store.CreateGame(groupID, []scoreboard.GameScore{{PlayerID: p1, Score: score}})
		require.NoError(t, err)
	}

	rec := doRequest(s, http.MethodGet, fmt.Sprintf("/player/%d/history", p1), "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "groupId is required")

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/player/%d/history?groupId=%d", p1, groupID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, []int64{10, 30, 20}, history)

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/player/%d/history?groupId=%d&n=2", p1, groupID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, []int64{30, 20}, history)

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/player/%d/best_streak?groupId=%d&n=2", p1, groupID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var streak stats.Streak
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &streak))
	assert.Equal(t, []int64{30, 20}, streak.Scores)
}

func TestPreviousPlayers(t *testing.T) {
	s, store, teardown := setupTestServer(t)
	defer teardown()
	groupID, p1, _ := seedGroup(t, store, nil)

	rec := doRequest(s, http.MethodGet, "/game/previous_players", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/game/previous_players?groupId=%d", groupID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	_, err := store.CreateGame(groupID, []scoreboard.GameScore{{PlayerID: p1, Score: 10}})
	require.NoError(t, err)

	rec = doRequest(s, http.MethodGet, fmt.Sprintf("/game/previous_players?groupId=%d", groupID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ids []int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ids))
	assert.Equal(t, []int64{p1}, ids)
}

func TestCreateAndListGroups(t *testing.T) {
	s, _, teardown := setupTestServer(t)
	defer teardown()
	access, _ := login(t, s)

	rec := doRequest(s, http.MethodPost, "/group", `{"name": "Visible", "maxScore": 60}`, access)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/groups", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []scoreboard.Group
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "Visible", groups[0].Name)
	require.NotNil(t, groups[0].MaxScore)
	assert.Equal(t, int64(60), *groups[0].MaxScore)
}
