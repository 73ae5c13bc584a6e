package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwebster45206/draft-season/pkg/state"
)

// SQLiteStorage implements Storage on a local SQLite file, for single-node
// deployments and development without a Redis instance. Each game state is
// one JSON row keyed by session ID.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Storage = (*SQLiteStorage)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS game_states (
	session_id TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// NewSQLiteStorage opens (and if needed initializes) the database at path.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) SaveGameState(ctx context.Context, sessionID string, gs *state.GameState) error {
	gs.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_states (session_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		sessionID, string(data), gs.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Error("SQLite upsert failed", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to save game state: %w", err)
	}

	s.logger.Debug("Game state saved", "session_id", sessionID, "size", len(data))
	return nil
}

func (s *SQLiteStorage) LoadGameState(ctx context.Context, sessionID string) (*state.GameState, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM game_states WHERE session_id = ?`, sessionID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("SQLite select failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state %s: %w", sessionID, err)
	}
	return &gs, nil
}

func (s *SQLiteStorage) DeleteGameState(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM game_states WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}
