package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/draft-season/pkg/state"
)

func setupSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "game.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	gs := state.NewGameState("sq-session")
	gs.CurrentMonth = 7
	gs.TrainingCountThisMonth = 2
	gs.RecordTrainingSession(state.TrainingRecord{Month: 7, Intensity: 80, Tier: "focused"})

	require.NoError(t, s.SaveGameState(ctx, "sq-session", gs))

	loaded, err := s.LoadGameState(ctx, "sq-session")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 7, loaded.CurrentMonth)
	assert.Equal(t, 2, loaded.TrainingCountThisMonth)
	require.Len(t, loaded.TrainingHistory, 1)
	assert.Equal(t, "focused", loaded.TrainingHistory[0].Tier)
}

func TestSQLiteStorage_UpsertOverwrites(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	gs := state.NewGameState("up")
	require.NoError(t, s.SaveGameState(ctx, "up", gs))

	gs.CurrentMonth = 5
	require.NoError(t, s.SaveGameState(ctx, "up", gs))

	loaded, err := s.LoadGameState(ctx, "up")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.CurrentMonth)
}

func TestSQLiteStorage_MissingReturnsNil(t *testing.T) {
	s := setupSQLite(t)

	gs, err := s.LoadGameState(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, gs)
}

func TestSQLiteStorage_Delete(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveGameState(ctx, "del", state.NewGameState("del")))
	require.NoError(t, s.DeleteGameState(ctx, "del"))

	gs, err := s.LoadGameState(ctx, "del")
	require.NoError(t, err)
	assert.Nil(t, gs)
}
