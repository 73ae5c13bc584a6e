package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jwebster45206/draft-season/pkg/state"
)

// MockStorage is an in-memory Storage for tests. States are stored as
// JSON so round-trip behavior matches the real backends. Error knobs let
// tests force failures per method.
type MockStorage struct {
	mu     sync.RWMutex
	states map[string][]byte

	PingErr error
	SaveErr error
	LoadErr error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{states: make(map[string][]byte)}
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, sessionID string, gs *state.GameState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := json.Marshal(gs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = data
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, sessionID string) (*state.GameState, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.RLock()
	data, ok := m.states[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

// Corrupt overwrites a stored record with invalid JSON, for fallback
// tests.
func (m *MockStorage) Corrupt(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = []byte("{not json")
}
