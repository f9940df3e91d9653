package metrics

import "sync"

// MockMetrics is a mock implementation of the Metrics interface for testing.
type MockMetrics struct {
	mu sync.Mutex

	GamesRecordedCount int
	StatsRequestsCount int
	AuthFailuresCount  int
	QueryDurations     []float64
	StartupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncGamesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GamesRecordedCount++
}

func (m *MockMetrics) IncStatsRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatsRequestsCount++
}

func (m *MockMetrics) IncAuthFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthFailuresCount++
}

func (m *MockMetrics) ObserveQueryDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryDurations = append(m.QueryDurations, duration)
}

func (m *MockMetrics) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = duration
}

var _ Metrics = (*MockMetrics)(nil)
