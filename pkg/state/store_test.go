package state

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStorage struct {
	mu     sync.Mutex
	states map[string]*GameState

	loadErr error
	saveErr error
	saves   int
}

func newStubStorage() *stubStorage {
	return &stubStorage{states: make(map[string]*GameState)}
}

func (s *stubStorage) SaveGameState(ctx context.Context, sessionID string, gs *GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *gs
	s.states[sessionID] = &cp
	s.saves++
	return nil
}

func (s *stubStorage) LoadGameState(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	gs, ok := s.states[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *gs
	return &cp, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStore_UpdateCreatesAndSaves(t *testing.T) {
	storage := newStubStorage()
	store := NewStore(storage, testLogger())
	ctx := context.Background()

	err := store.Update(ctx, "s1", func(gs *GameState) error {
		gs.Stats.Intimacy = 15
		return nil
	})
	require.NoError(t, err)

	saved, err := storage.LoadGameState(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 15, saved.Stats.Intimacy)
	assert.Equal(t, FirstMonth, saved.CurrentMonth)
}

func TestStore_UpdateRejectionSkipsSave(t *testing.T) {
	storage := newStubStorage()
	store := NewStore(storage, testLogger())
	ctx := context.Background()

	rejection := errors.New("not allowed")
	err := store.Update(ctx, "s1", func(gs *GameState) error {
		gs.Stats.Intimacy = 99
		return rejection
	})
	assert.ErrorIs(t, err, rejection)
	assert.Equal(t, 0, storage.saves)
}

func TestStore_FallbackOnCorruptRecord(t *testing.T) {
	storage := newStubStorage()
	storage.loadErr = errors.New("invalid character 'x' looking for beginning of value")
	store := NewStore(storage, testLogger())

	// Unreadable persisted state must not brick the session.
	err := store.View(context.Background(), "s1", func(gs *GameState) error {
		assert.Equal(t, FirstMonth, gs.CurrentMonth)
		assert.Equal(t, OpeningStorybookID, gs.CurrentStorybookID)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_LiveStateIsReused(t *testing.T) {
	storage := newStubStorage()
	store := NewStore(storage, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "s1", func(gs *GameState) error {
		gs.CurrentMonth = 5
		return nil
	}))

	// A later load failure is irrelevant: the live state is already in memory.
	storage.loadErr = errors.New("backend down")
	err := store.View(ctx, "s1", func(gs *GameState) error {
		assert.Equal(t, 5, gs.CurrentMonth)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	storage := newStubStorage()
	store := NewStore(storage, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "s1", func(gs *GameState) error {
		gs.EventHistory = []string{"may_conflict"}
		gs.Stats.Mental = 70
		return nil
	}))

	snap := store.Snapshot(ctx, "s1")
	snap.Stats.Mental = 0
	snap.EventHistory[0] = "mutated"
	snap.StorybookCompleted["x"] = true

	require.NoError(t, store.View(ctx, "s1", func(gs *GameState) error {
		assert.Equal(t, 70, gs.Stats.Mental)
		assert.Equal(t, []string{"may_conflict"}, gs.EventHistory)
		assert.False(t, gs.StorybookCompleted["x"])
		return nil
	}))
}

func TestStore_SaveWithoutLiveState(t *testing.T) {
	storage := newStubStorage()
	store := NewStore(storage, testLogger())

	require.NoError(t, store.Save(context.Background(), "ghost"))
	assert.Equal(t, 0, storage.saves)
}
