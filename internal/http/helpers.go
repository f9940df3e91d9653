package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// pathID parses a numeric path value, e.g. {id} or {playerId}.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// queryInt parses an optional numeric query parameter; absent yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// parseIDs parses a comma-delimited, URL-encoded id list. Empty segments
// are skipped; any non-numeric segment fails the whole list.
func parseIDs(raw string) ([]int64, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, part := range strings.Split(decoded, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// storeError maps unexpected store failures to a logged 500. Not-found and
// conflict conditions are handled by the callers before reaching here.
func (s *Server) storeError(w http.ResponseWriter, err error, msg string) {
	log.Error(msg, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// notFound reports whether the error is the store's not-found sentinel.
func notFound(err error) bool {
	return errors.Is(err, scoreboard.ErrNotFound)
}
