package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, id string, state tictactoe.State) error
	GetByID(ctx context.Context, id string) (tictactoe.State, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - stores game sessions in Redis. Every write refreshes the session TTL.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, id string, state tictactoe.State) error {
	gameJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	err = that.client.Set(ctx, gameKey(id), gameJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (tictactoe.State, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return tictactoe.State{}, apperror.ErrSessionNotFound
	}

	if err != nil {
		return tictactoe.State{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	return decodeState([]byte(response))
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func gameKey(id string) string {
	return "game:" + id
}

func decodeState(data []byte) (tictactoe.State, error) {
	var state tictactoe.State
	if err := json.Unmarshal(data, &state); err != nil {
		return tictactoe.State{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	if err := state.Validate(); err != nil {
		return tictactoe.State{}, fmt.Errorf("stored game is corrupted: %w", err)
	}

	return state, nil
}
