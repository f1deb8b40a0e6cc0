package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, id string, state tictactoe.State) error
	GetByID(ctx context.Context, id string) (tictactoe.State, error)
	DeleteByID(ctx context.Context, id string) error
}

const sessionLockCount = 64

// GameManager - runs game transitions for sessions kept in a repository.
// Transitions of one session are serialized within the process.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	newID func() string

	sessionLocks [sessionLockCount]sync.Mutex
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		newID:    uuid.NewString,
	}
}

func (that *GameManager) NewGame(ctx context.Context) (string, tictactoe.Snapshot, error) {
	id := that.newID()
	state := tictactoe.NewState()

	if err := that.gameRepo.CreateOrUpdate(ctx, id, state); err != nil {
		return "", tictactoe.Snapshot{}, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", id)

	return id, state.Snapshot(), nil
}

func (that *GameManager) GetSnapshot(ctx context.Context, id string) (tictactoe.Snapshot, error) {
	state, err := that.getGameByID(ctx, id)
	if err != nil {
		return tictactoe.Snapshot{}, err
	}

	return state.Snapshot(), nil
}

// ApplyMove - plays cell for the player to move. A rejected move returns the unchanged snapshot with the reason.
func (that *GameManager) ApplyMove(ctx context.Context, id string, cell int) (tictactoe.Snapshot, error) {
	defer that.lockSession(id)()

	state, err := that.getGameByID(ctx, id)
	if err != nil {
		return tictactoe.Snapshot{}, err
	}

	row, col, err := entity.CellCoordinates(cell)
	if err != nil {
		return state.Snapshot(), fmt.Errorf("failed make turn: %w", err)
	}

	return that.transition(ctx, id, state, func(state tictactoe.State) (tictactoe.State, error) {
		return state.ApplyMove(cell, row, col)
	})
}

func (that *GameManager) JumpTo(ctx context.Context, id string, step int) (tictactoe.Snapshot, error) {
	defer that.lockSession(id)()

	state, err := that.getGameByID(ctx, id)
	if err != nil {
		return tictactoe.Snapshot{}, err
	}

	return that.transition(ctx, id, state, func(state tictactoe.State) (tictactoe.State, error) {
		return state.JumpTo(step)
	})
}

func (that *GameManager) ToggleSort(ctx context.Context, id string) (tictactoe.Snapshot, error) {
	defer that.lockSession(id)()

	state, err := that.getGameByID(ctx, id)
	if err != nil {
		return tictactoe.Snapshot{}, err
	}

	return that.transition(ctx, id, state, func(state tictactoe.State) (tictactoe.State, error) {
		return state.ToggleSort(), nil
	})
}

func (that *GameManager) EndGame(ctx context.Context, id string) error {
	log := that.logger.With("method", "EndGame", "gameID", id)

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	log.Info("game deleted")

	return nil
}

// IsRejection - reports whether err is a move or jump the game refused, as opposed to a storage or session failure.
func IsRejection(err error) bool {
	return errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrStepOutOfRange)
}

func (that *GameManager) transition(
	ctx context.Context,
	id string,
	state tictactoe.State,
	apply func(tictactoe.State) (tictactoe.State, error),
) (tictactoe.Snapshot, error) {
	log := that.logger.With("method", "transition", "gameID", id)

	next, err := apply(state)
	if err != nil {
		log.Debug("transition rejected", "error", err)
		return state.Snapshot(), fmt.Errorf("transition rejected: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, id, next); err != nil {
		return state.Snapshot(), fmt.Errorf("failed update game: %w", err)
	}

	return next.Snapshot(), nil
}

// lockSession - locks the mutex shared by id and returns its unlock.
func (that *GameManager) lockSession(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))

	mu := &that.sessionLocks[h.Sum32()%sessionLockCount]
	mu.Lock()

	return mu.Unlock
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (tictactoe.State, error) {
	state, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return tictactoe.State{}, fmt.Errorf("failed to get game: %w", err)
	}

	return state, nil
}
