package state

import (
	"context"
	"log/slog"
	"sync"
)

// Storage is the persistence surface the store depends on. LoadGameState
// returns (nil, nil) when no record exists for the session.
type Storage interface {
	SaveGameState(ctx context.Context, sessionID string, gs *GameState) error
	LoadGameState(ctx context.Context, sessionID string) (*GameState, error)
}

// Store guarantees at most one live GameState per session ID inside a
// process and serializes all access to it. Different sessions proceed in
// parallel; the same session is protected by a per-session mutex.
type Store struct {
	storage Storage
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu sync.Mutex
	gs *GameState
}

func NewStore(storage Storage, logger *slog.Logger) *Store {
	return &Store{
		storage:  storage,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

func (s *Store) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// load materializes the session state, caller holds the session lock.
// Corrupt or missing records fall back to a fresh default state; load
// never fails.
func (s *Store) load(ctx context.Context, id string) *GameState {
	gs, err := s.storage.LoadGameState(ctx, id)
	if err != nil {
		s.logger.Warn("discarding unreadable game state, starting fresh", "session_id", id, "error", err)
		return NewGameState(id)
	}
	if gs == nil {
		s.logger.Info("new game started", "session_id", id)
		return NewGameState(id)
	}
	s.logger.Debug("game state loaded", "session_id", id, "month", gs.CurrentMonth)
	return gs
}

// Update runs fn with the session's single live state under its lock, then
// persists the state when fn succeeds. Rejections returned by fn skip the
// save.
func (s *Store) Update(ctx context.Context, id string, fn func(gs *GameState) error) error {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.gs == nil {
		sess.gs = s.load(ctx, id)
	}
	if err := fn(sess.gs); err != nil {
		return err
	}
	return s.storage.SaveGameState(ctx, id, sess.gs)
}

// View runs fn read-only under the session lock. fn must not retain the
// state past its return.
func (s *Store) View(ctx context.Context, id string, fn func(gs *GameState) error) error {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.gs == nil {
		sess.gs = s.load(ctx, id)
	}
	return fn(sess.gs)
}

// Snapshot returns a deep-enough copy for read-only use outside the lock,
// creating the session on first access. Long-latency work (LLM calls)
// should read a snapshot rather than hold the session lock.
func (s *Store) Snapshot(ctx context.Context, id string) GameState {
	var snap GameState
	_ = s.View(ctx, id, func(gs *GameState) error {
		snap = *gs
		snap.Stats = gs.Stats.Snapshot()
		if gs.PreviousMonthStats != nil {
			prev := gs.PreviousMonthStats.Snapshot()
			snap.PreviousMonthStats = &prev
		}
		snap.EventHistory = append([]string(nil), gs.EventHistory...)
		snap.SpecialMoments = append([]MomentCard(nil), gs.SpecialMoments...)
		snap.TrainingHistory = append([]TrainingRecord(nil), gs.TrainingHistory...)
		completed := make(map[string]bool, len(gs.StorybookCompleted))
		for k, v := range gs.StorybookCompleted {
			completed[k] = v
		}
		snap.StorybookCompleted = completed
		return nil
	})
	return snap
}

// Save persists the live state for a session. It warns and no-ops when no
// live state exists; create one through Update or View first.
func (s *Store) Save(ctx context.Context, id string) error {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.gs == nil {
		s.logger.Warn("no live game state to save", "session_id", id)
		return nil
	}
	return s.storage.SaveGameState(ctx, id, sess.gs)
}
