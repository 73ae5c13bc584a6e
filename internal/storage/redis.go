package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/draft-season/pkg/state"
)

const gameStatePrefix = "gamestate:"

// RedisStorage implements Storage backed by Redis. Game states are stored
// as JSON under a prefixed session key, with no expiry: a season should
// survive any pause.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis-backed storage instance.
func NewRedisStorage(addr string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

func (r *RedisStorage) SaveGameState(ctx context.Context, sessionID string, gs *state.GameState) error {
	gs.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	key := gameStatePrefix + sessionID
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.logger.Error("Redis SET failed", "key", key, "error", err)
		return fmt.Errorf("failed to save game state: %w", err)
	}

	r.logger.Debug("Game state saved", "key", key, "size", len(data))
	return nil
}

func (r *RedisStorage) LoadGameState(ctx context.Context, sessionID string) (*state.GameState, error) {
	key := gameStatePrefix + sessionID
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Redis GET failed", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state %s: %w", sessionID, err)
	}
	return &gs, nil
}

func (r *RedisStorage) DeleteGameState(ctx context.Context, sessionID string) error {
	key := gameStatePrefix + sessionID
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Redis DEL failed", "key", key, "error", err)
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}
