package scoreboard

import "sync"

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreatePlayerFunc          func(name string, birthday *string) (Player, error)
	GetPlayerFunc             func(id int64) (Player, error)
	ListPlayersFunc           func() ([]Player, error)
	CreateGroupFunc           func(name string, maxScore *int64) (Group, error)
	GetGroupFunc              func(id int64) (Group, error)
	ListGroupsFunc            func(includeArchived bool) ([]Group, error)
	GroupPlayersFunc          func(groupID int64) ([]Player, error)
	AddPlayerToGroupFunc      func(playerID, groupID int64) error
	RemovePlayerFromGroupFunc func(playerID, groupID int64) error
	CreateGameFunc            func(groupID int64, scores []GameScore) (int64, error)
	GroupScoresFunc           func(groupID int64, order Order) ([]ScoreRow, error)
	PlayerScoresFunc          func(playerID, groupID int64, order Order, limit int64) ([]int64, error)
	MaxScoresFunc             func(groupID int64) (map[int64]int64, error)
	LatestGameIDFunc          func(groupID int64) (int64, error)
	CommonGamesFunc           func(groupID int64, playerIDs []int64, order Order) ([]ScoreRow, error)
	PreviousPlayersFunc       func(groupID int64) ([]int64, error)
	GetAdminUserFunc          func(username string) (AdminUser, error)
	CreateAdminUserFunc       func(username, passwordHash string) error
	CreateSessionFunc         func(id string, userID int64) error
	SessionUserFunc           func(id string) (string, error)
	DeleteSessionFunc         func(id string) error

	// Call records
	CreateGameCalls []struct {
		GroupID int64
		Scores  []GameScore
	}
	DeleteSessionCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreatePlayer(name string, birthday *string) (Player, error) {
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(name, birthday)
	}
	return Player{}, nil
}

func (m *MockStore) GetPlayer(id int64) (Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return Player{}, nil
}

func (m *MockStore) ListPlayers() ([]Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) CreateGroup(name string, maxScore *int64) (Group, error) {
	if m.CreateGroupFunc != nil {
		return m.CreateGroupFunc(name, maxScore)
	}
	return Group{}, nil
}

func (m *MockStore) GetGroup(id int64) (Group, error) {
	if m.GetGroupFunc != nil {
		return m.GetGroupFunc(id)
	}
	return Group{}, nil
}

func (m *MockStore) ListGroups(includeArchived bool) ([]Group, error) {
	if m.ListGroupsFunc != nil {
		return m.ListGroupsFunc(includeArchived)
	}
	return nil, nil
}

func (m *MockStore) GroupPlayers(groupID int64) ([]Player, error) {
	if m.GroupPlayersFunc != nil {
		return m.GroupPlayersFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) AddPlayerToGroup(playerID, groupID int64) error {
	if m.AddPlayerToGroupFunc != nil {
		return m.AddPlayerToGroupFunc(playerID, groupID)
	}
	return nil
}

func (m *MockStore) RemovePlayerFromGroup(playerID, groupID int64) error {
	if m.RemovePlayerFromGroupFunc != nil {
		return m.RemovePlayerFromGroupFunc(playerID, groupID)
	}
	return nil
}

func (m *MockStore) CreateGame(groupID int64, scores []GameScore) (int64, error) {
	m.mu.Lock()
	m.CreateGameCalls = append(m.CreateGameCalls, struct {
		GroupID int64
		Scores  []GameScore
	}{groupID, scores})
	m.mu.Unlock()
	if m.CreateGameFunc != nil {
		return m.CreateGameFunc(groupID, scores)
	}
	return 0, nil
}

func (m *MockStore) GroupScores(groupID int64, order Order) ([]ScoreRow, error) {
	if m.GroupScoresFunc != nil {
		return m.GroupScoresFunc(groupID, order)
	}
	return nil, nil
}

func (m *MockStore) PlayerScores(playerID, groupID int64, order Order, limit int64) ([]int64, error) {
	if m.PlayerScoresFunc != nil {
		return m.PlayerScoresFunc(playerID, groupID, order, limit)
	}
	return nil, nil
}

func (m *MockStore) MaxScores(groupID int64) (map[int64]int64, error) {
	if m.MaxScoresFunc != nil {
		return m.MaxScoresFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) LatestGameID(groupID int64) (int64, error) {
	if m.LatestGameIDFunc != nil {
		return m.LatestGameIDFunc(groupID)
	}
	return 0, nil
}

func (m *MockStore) CommonGames(groupID int64, playerIDs []int64, order Order) ([]ScoreRow, error) {
	if m.CommonGamesFunc != nil {
		return m.CommonGamesFunc(groupID, playerIDs, order)
	}
	return nil, nil
}

func (m *MockStore) PreviousPlayers(groupID int64) ([]int64, error) {
	if m.PreviousPlayersFunc != nil {
		return m.PreviousPlayersFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) GetAdminUser(username string) (AdminUser, error) {
	if m.GetAdminUserFunc != nil {
		return m.GetAdminUserFunc(username)
	}
	return AdminUser{}, nil
}

func (m *MockStore) CreateAdminUser(username, passwordHash string) error {
	if m.CreateAdminUserFunc != nil {
		return m.CreateAdminUserFunc(username, passwordHash)
	}
	return nil
}

func (m *MockStore) CreateSession(id string, userID int64) error {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(id, userID)
	}
	return nil
}

func (m *MockStore) SessionUser(id string) (string, error) {
	if m.SessionUserFunc != nil {
		return m.SessionUserFunc(id)
	}
	return "", nil
}

func (m *MockStore) DeleteSession(id string) error {
	m.mu.Lock()
	m.DeleteSessionCalls = append(m.DeleteSessionCalls, id)
	m.mu.Unlock()
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(id)
	}
	return nil
}

var _ Store = (*MockStore)(nil)
