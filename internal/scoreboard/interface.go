package scoreboard

// Store defines the interface for interacting with the scoreboard's data.
type Store interface {
	CreatePlayer(name string, birthday *string) (Player, error)
	GetPlayer(id int64) (Player, error)
	ListPlayers() ([]Player, error)

	CreateGroup(name string, maxScore *int64) (Group, error)
	GetGroup(id int64) (Group, error)
	ListGroups(includeArchived bool) ([]Group, error)
	GroupPlayers(groupID int64) ([]Player, error)
	AddPlayerToGroup(playerID, groupID int64) error
	RemovePlayerFromGroup(playerID, groupID int64) error

	// CreateGame records a game and all of its scores in one transaction
	// and returns the new game id.
	CreateGame(groupID int64, scores []GameScore) (int64, error)

	GroupScores(groupID int64, order Order) ([]ScoreRow, error)
	PlayerScores(playerID, groupID int64, order Order, limit int64) ([]int64, error)
	MaxScores(groupID int64) (map[int64]int64, error)
	// LatestGameID returns 0 (and no error) when the group has no games.
	LatestGameID(groupID int64) (int64, error)
	// CommonGames returns score rows for the group's games in which every
	// one of the given players participated.
	CommonGames(groupID int64, playerIDs []int64, order Order) ([]ScoreRow, error)
	// PreviousPlayers returns the participant ids of the group's most
	// recent game.
	PreviousPlayers(groupID int64) ([]int64, error)

	GetAdminUser(username string) (AdminUser, error)
	CreateAdminUser(username, passwordHash string) error
	CreateSession(id string, userID int64) error
	// SessionUser returns the username behind a session id.
	SessionUser(id string) (string, error)
	DeleteSession(id string) error
}
