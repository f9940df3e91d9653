package scoreboard

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// store handles all database operations for the scoreboard.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	// ErrNotFound is returned when a referenced player or group does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNameTaken is returned when a unique name constraint is violated.
	ErrNameTaken = errors.New("name already taken")
)

// Order selects the chronological direction of score queries.
type Order int

const (
	// Descending orders rows most-recent-first.
	Descending Order = iota
	// Ascending orders rows oldest-first.
	Ascending
)

// Player is a registered player. Birthday is an optional "YYYY-MM-DD" date
// used only for decorating the name on the matching calendar day.
type Player struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Birthday *string `json:"-"`
}

// Group is a named leaderboard scoping players and games.
type Group struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	MaxScore *int64 `json:"maxScore"`
	Archived bool   `json:"archived"`
}

// DisplayName returns the player's name, gift-decorated on their birthday.
func (p Player) DisplayName() string {
	if p.Birthday == nil {
		return p.Name
	}
	if len(*p.Birthday) == 10 && (*p.Birthday)[5:] == time.Now().Format("01-02") {
		return "🎁 " + p.Name
	}
	return p.Name
}

// ScoreRow is one player's result in one game.
type ScoreRow struct {
	PlayerID   int64
	PlayerName string
	GameID     int64
	Points     int64
}

// GameScore is one player's score in a game being recorded.
type GameScore struct {
	PlayerID int64 `json:"playerId"`
	Score    int64 `json:"score"`
}

// AdminUser is an account allowed to mutate the scoreboard.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
}
