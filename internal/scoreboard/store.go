package scoreboard

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func (s *store) CreatePlayer(name string, birthday *string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("INSERT INTO players (name, birthday) VALUES (?, ?)", name, birthday)
	if err != nil {
		if isUniqueViolation(err) {
			return Player{}, ErrNameTaken
		}
		return Player{}, fmt.Errorf("failed to insert player: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Player{}, fmt.Errorf("failed to read new player id: %w", err)
	}
	return Player{ID: id, Name: name, Birthday: birthday}, nil
}

func (s *store) GetPlayer(id int64) (Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Player
	var birthday sql.NullString
	err := s.db.QueryRow("SELECT id, name, birthday FROM players WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &birthday)
	if err == sql.ErrNoRows {
		return Player{}, ErrNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	if birthday.Valid {
		p.Birthday = &birthday.String
	}
	return p, nil
}

func (s *store) ListPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, birthday FROM players ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (s *store) CreateGroup(name string, maxScore *int64) (Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("INSERT INTO groups (name, max_score) VALUES (?, ?)", name, maxScore)
	if err != nil {
		return Group{}, fmt.Errorf("failed to insert group: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Group{}, fmt.Errorf("failed to read new group id: %w", err)
	}
	return Group{ID: id, Name: name, MaxScore: maxScore}, nil
}

func (s *store) GetGroup(id int64) (Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.scanGroup(s.db.QueryRow("SELECT id, name, max_score, archived FROM groups WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, fmt.Errorf("failed to get group %d: %w", id, err)
	}
	return g, nil
}

func (s *store) ListGroups(includeArchived bool) ([]Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, max_score, archived FROM groups"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		g, err := s.scanGroup(rows)
		if err != nil {
			log.Error("Failed to scan group row", "error", err)
			continue
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// scanGroup scans a single group row from a row or rows scanner.
func (s *store) scanGroup(scanner interface{ Scan(...any) error }) (Group, error) {
	var g Group
	var maxScore sql.NullInt64
	if err := scanner.Scan(&g.ID, &g.Name, &maxScore, &g.Archived); err != nil {
		return Group{}, err
	}
	if maxScore.Valid {
		g.MaxScore = &maxScore.Int64
	}
	return g, nil
}

func (s *store) GroupPlayers(groupID int64) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT players.id, players.name, players.birthday
		FROM players
		INNER JOIN player_groups ON players.id = player_groups.player_id
		WHERE player_groups.group_id = ?
		ORDER BY players.id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func scanPlayers(rows *sql.Rows) ([]Player, error) {
	var players []Player
	for rows.Next() {
		var p Player
		var birthday sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &birthday); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		if birthday.Valid {
			p.Birthday = &birthday.String
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *store) AddPlayerToGroup(playerID, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRow("players", playerID); err != nil {
		return err
	}
	if err := s.requireRow("groups", groupID); err != nil {
		return err
	}

	// Re-adding an existing member is a no-op.
	_, err := s.db.Exec("INSERT OR IGNORE INTO player_groups (player_id, group_id) VALUES (?, ?)", playerID, groupID)
	if err != nil {
		return fmt.Errorf("failed to add player %d to group %d: %w", playerID, groupID, err)
	}
	return nil
}

func (s *store) RemovePlayerFromGroup(playerID, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM player_groups WHERE player_id = ? AND group_id = ?", playerID, groupID)
	if err != nil {
		return fmt.Errorf("failed to remove player %d from group %d: %w", playerID, groupID, err)
	}
	return nil
}

// requireRow checks that a row with the given id exists in the table.
func (s *store) requireRow(table string, id int64) error {
	var found int64
	err := s.db.QueryRow("SELECT id FROM "+table+" WHERE id = ?", id).Scan(&found)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s row %d: %w", table, id, err)
	}
	return nil
}

// CreateGame inserts the game and every score row in a single transaction.
// Any failure before commit leaves no trace.
func (s *store) CreateGame(groupID int64, scores []GameScore) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var exists int64
	err = tx.QueryRow("SELECT id FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return 0, ErrNotFound
	}
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to look up group %d: %w", groupID, err)
	}

	res, err := tx.Exec("INSERT INTO games (group_id, date) VALUES (?, ?)", groupID, time.Now().Unix())
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to read new game id: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO game_scores (game_id, player_id, score) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare score insert: %w", err)
	}
	defer stmt.Close()

	for _, score := range scores {
		if _, err := stmt.Exec(gameID, score.PlayerID, score.Score); err != nil {
			tx.Rollback()
			if isForeignKeyViolation(err) {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("failed to insert score for player %d: %w", score.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit game: %w", err)
	}
	return gameID, nil
}

func orderClause(order Order) string {
	if order == Ascending {
		return "ASC"
	}
	return "DESC"
}

func (s *store) GroupScores(groupID int64, order Order) ([]ScoreRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := orderClause(order)
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT game_scores.player_id, players.name, game_scores.game_id, game_scores.score
		FROM players
		INNER JOIN game_scores ON game_scores.player_id = players.id
		INNER JOIN games ON game_scores.game_id = games.id
		WHERE games.group_id = ?
		ORDER BY games.date %s, games.id %s
	`, dir, dir), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group scores: %w", err)
	}
	defer rows.Close()

	return scanScoreRows(rows)
}

func scanScoreRows(rows *sql.Rows) ([]ScoreRow, error) {
	var result []ScoreRow
	for rows.Next() {
		var row ScoreRow
		if err := rows.Scan(&row.PlayerID, &row.PlayerName, &row.GameID, &row.Points); err != nil {
			log.Error("Failed to scan score row", "error", err)
			continue
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *store) PlayerScores(playerID, groupID int64, order Order, limit int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := orderClause(order)
	query := fmt.Sprintf(`
		SELECT game_scores.score
		FROM game_scores
		INNER JOIN games ON game_scores.game_id = games.id
		WHERE game_scores.player_id = ? AND games.group_id = ?
		ORDER BY games.date %s, games.id %s
	`, dir, dir)
	args := []any{playerID, groupID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query player scores: %w", err)
	}
	defer rows.Close()

	var scores []int64
	for rows.Next() {
		var score int64
		if err := rows.Scan(&score); err != nil {
			log.Error("Failed to scan player score", "error", err)
			continue
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// MaxScores returns the highest score recorded for each of the group's games.
func (s *store) MaxScores(groupID int64) (map[int64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT games.id, MAX(game_scores.score)
		FROM games
		INNER JOIN game_scores ON games.id = game_scores.game_id
		WHERE games.group_id = ?
		GROUP BY games.id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query max scores: %w", err)
	}
	defer rows.Close()

	maxScores := make(map[int64]int64)
	for rows.Next() {
		var gameID, maxScore int64
		if err := rows.Scan(&gameID, &maxScore); err != nil {
			log.Error("Failed to scan max score row", "error", err)
			continue
		}
		maxScores[gameID] = maxScore
	}
	return maxScores, rows.Err()
}

func (s *store) LatestGameID(groupID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id int64
	err := s.db.QueryRow(`
		SELECT id FROM games
		WHERE group_id = ?
		ORDER BY date DESC, id DESC
		LIMIT 1
	`, groupID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query latest game: %w", err)
	}
	return id, nil
}

func (s *store) CommonGames(groupID int64, playerIDs []int64, order Order) ([]ScoreRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	dir := orderClause(order)
	query := fmt.Sprintf(`
		SELECT game_scores.player_id, players.name, game_scores.game_id, game_scores.score
		FROM game_scores
		INNER JOIN players ON players.id = game_scores.player_id
		INNER JOIN games ON games.id = game_scores.game_id
		WHERE game_scores.player_id IN (%[1]s) AND game_scores.game_id IN (
			SELECT game_scores.game_id
			FROM game_scores
			INNER JOIN games ON games.id = game_scores.game_id
			WHERE games.group_id = ? AND game_scores.player_id IN (%[1]s)
			GROUP BY game_scores.game_id
			HAVING COUNT(DISTINCT game_scores.player_id) = ?
		)
		ORDER BY games.date %[2]s, games.id %[2]s
	`, placeholders, dir)

	args := make([]any, 0, 2*len(playerIDs)+2)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	args = append(args, groupID)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	args = append(args, len(playerIDs))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query common games: %w", err)
	}
	defer rows.Close()

	return scanScoreRows(rows)
}

func (s *store) PreviousPlayers(groupID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT player_id FROM game_scores
		WHERE game_id = (
			SELECT id FROM games
			WHERE group_id = ?
			ORDER BY date DESC, id DESC
			LIMIT 1
		)
		ORDER BY player_id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query previous players: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			log.Error("Failed to scan previous player id", "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *store) GetAdminUser(username string) (AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user AdminUser
	err := s.db.QueryRow("SELECT id, username, password_hash FROM admin_users WHERE username = ?", username).
		Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err == sql.ErrNoRows {
		return AdminUser{}, ErrNotFound
	}
	if err != nil {
		return AdminUser{}, fmt.Errorf("failed to get admin user: %w", err)
	}
	return user, nil
}

func (s *store) CreateAdminUser(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT INTO admin_users (username, password_hash) VALUES (?, ?)", username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to insert admin user: %w", err)
	}
	return nil
}

func (s *store) CreateSession(id string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT INTO admin_sessions (id, user_id, created_at) VALUES (?, ?, ?)", id, userID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *store) SessionUser(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var username string
	err := s.db.QueryRow(`
		SELECT admin_users.username
		FROM admin_sessions
		INNER JOIN admin_users ON admin_users.id = admin_sessions.user_id
		WHERE admin_sessions.id = ?
	`, id).Scan(&username)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	return username, nil
}

func (s *store) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM admin_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
