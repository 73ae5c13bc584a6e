package storage

import (
	"context"

	"github.com/jwebster45206/draft-season/pkg/state"
)

// Storage is the persistence contract for game sessions. LoadGameState
// returns (nil, nil) when no record exists.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	SaveGameState(ctx context.Context, sessionID string, gs *state.GameState) error
	LoadGameState(ctx context.Context, sessionID string) (*state.GameState, error)
	DeleteGameState(ctx context.Context, sessionID string) error
}
