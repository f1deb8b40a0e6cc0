package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, id string, state tictactoe.State) error {
	args := that.Called(ctx, id, state)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (tictactoe.State, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(tictactoe.State), args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestManager(repo gameRepo) *GameManager {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewGameManager(logger, repo)
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates an empty game", func(t *testing.T) {
		// Given: a manager over an in-memory repository
		repo := repository.NewMemoryGameRepository(time.Hour)
		manager := newTestManager(repo)

		// When: a new game is created
		id, snapshot, err := manager.NewGame(ctx)

		// Then: the game is stored and empty
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, 0, snapshot.StepNumber)
		assert.True(t, snapshot.XIsNext)
		assert.Equal(t, "Next player: X", snapshot.Status)

		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tictactoe.NewState(), stored)
	})

	t.Run("Every game gets its own id", func(t *testing.T) {
		manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))

		first, _, err := manager.NewGame(ctx)
		require.NoError(t, err)
		second, _, err := manager.NewGame(ctx)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Returns error if repository fails", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("string"), tictactoe.NewState()).
			Return(errRedisDown).
			Once()

		manager := newTestManager(repo)

		id, _, err := manager.NewGame(ctx)

		require.ErrorIs(t, err, errRedisDown)
		assert.Empty(t, id)
		repo.AssertExpectations(t)
	})
}

func TestGameManager_ApplyMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful move is saved", func(t *testing.T) {
		// Given: a new game
		repo := repository.NewMemoryGameRepository(time.Hour)
		manager := newTestManager(repo)
		id, _, err := manager.NewGame(ctx)
		require.NoError(t, err)

		// When: X plays the center
		snapshot, err := manager.ApplyMove(ctx, id, 4)

		// Then: the move is visible and stored with derived coordinates
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, snapshot.Board[4])
		assert.Equal(t, 1, snapshot.StepNumber)
		assert.False(t, snapshot.XIsNext)

		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Current().Row)
		assert.Equal(t, 2, stored.Current().Col)
	})

	t.Run("Occupied cell returns unchanged snapshot", func(t *testing.T) {
		// Given: X on cell 0
		repo := repository.NewMemoryGameRepository(time.Hour)
		manager := newTestManager(repo)
		id, _, err := manager.NewGame(ctx)
		require.NoError(t, err)
		_, err = manager.ApplyMove(ctx, id, 0)
		require.NoError(t, err)

		// When: O plays cell 0
		snapshot, err := manager.ApplyMove(ctx, id, 0)

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.True(t, IsRejection(err))
		assert.Equal(t, 1, snapshot.StepNumber)
		assert.Len(t, snapshot.History, 2)
	})

	t.Run("Move after win is rejected", func(t *testing.T) {
		repo := repository.NewMemoryGameRepository(time.Hour)
		manager := newTestManager(repo)
		id, _, err := manager.NewGame(ctx)
		require.NoError(t, err)

		for _, cell := range []int{0, 3, 1, 4, 2} {
			_, err = manager.ApplyMove(ctx, id, cell)
			require.NoError(t, err)
		}

		snapshot, err := manager.ApplyMove(ctx, id, 8)

		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, entity.PlayerX, snapshot.Winner)
		assert.Equal(t, 5, snapshot.StepNumber)
	})

	t.Run("Invalid cell is rejected", func(t *testing.T) {
		manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))
		id, _, err := manager.NewGame(ctx)
		require.NoError(t, err)

		_, err = manager.ApplyMove(ctx, id, 9)

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.True(t, IsRejection(err))
	})

	t.Run("Unknown session", func(t *testing.T) {
		manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))

		_, err := manager.ApplyMove(ctx, "missing", 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.False(t, IsRejection(err))
	})

	t.Run("Rejected move is not saved", func(t *testing.T) {
		// Given: a repository holding a game with X on cell 0
		state, err := tictactoe.NewState().ApplyMove(0, 3, 1)
		require.NoError(t, err)

		repo := &mockGameRepo{}
		repo.On("GetByID", ctx, "g1").Return(state, nil).Once()

		manager := newTestManager(repo)

		// When: cell 0 is played again
		_, err = manager.ApplyMove(ctx, "g1", 0)

		// Then: CreateOrUpdate is never called
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Save failure returns the previous snapshot", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("GetByID", ctx, "g1").Return(tictactoe.NewState(), nil).Once()
		repo.On("CreateOrUpdate", ctx, "g1", mock.AnythingOfType("tictactoe.State")).Return(errRedisDown).Once()

		manager := newTestManager(repo)

		snapshot, err := manager.ApplyMove(ctx, "g1", 4)

		require.ErrorIs(t, err, errRedisDown)
		assert.False(t, IsRejection(err))
		assert.Equal(t, 0, snapshot.StepNumber)
		repo.AssertExpectations(t)
	})
}

func TestGameManager_JumpTo(t *testing.T) {
	ctx := context.Background()

	t.Run("Jump then move truncates history", func(t *testing.T) {
		// Given: three moves
		manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))
		id, _, err := manager.NewGame(ctx)
		require.NoError(t, err)
		for _, cell := range []int{4, 0, 8} {
			_, err = manager.ApplyMove(ctx, id, cell)
			require.NoError(t, err)
		}

		// When: jumping to the start
		snapshot, err := manager.JumpTo(ctx, id, 0)
		require.NoError(t, err)

		// Then: history is kept and step 0 is selected
		assert.Len(t, snapshot.History, 4)
		require.NotNil(t, snapshot.SelectedStep)
		assert.Equal(t, 0, *snapshot.SelectedStep)

		// When: playing from the start
		snapshot, err = manager.ApplyMove(ctx, id, 0)
		require.NoError(t, err)

		// Then: later history is discarded
		assert.Len(t, snapshot.History, 2)
		assert.Equal(t, 1, snapshot.StepNumber)
		assert.Nil(t, snapshot.SelectedStep)
	})

	t.Run("Out of range step is rejected", func(t *testing.T) {
		manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))
		id, _, err := manager.NewGame(ctx)
		require.NoError(t, err)

		snapshot, err := manager.JumpTo(ctx, id, 3)

		require.ErrorIs(t, err, apperror.ErrStepOutOfRange)
		assert.True(t, IsRejection(err))
		assert.Equal(t, 0, snapshot.StepNumber)
	})
}

func TestGameManager_ToggleSort(t *testing.T) {
	ctx := context.Background()

	manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))
	id, _, err := manager.NewGame(ctx)
	require.NoError(t, err)
	_, err = manager.ApplyMove(ctx, id, 4)
	require.NoError(t, err)

	snapshot, err := manager.ToggleSort(ctx, id)
	require.NoError(t, err)

	assert.True(t, snapshot.SortDescending)
	assert.Equal(t, 1, snapshot.Moves[0].Step)

	snapshot, err = manager.GetSnapshot(ctx, id)
	require.NoError(t, err)
	assert.True(t, snapshot.SortDescending)
}

func TestGameManager_EndGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the session", func(t *testing.T) {
		manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))
		id, _, err := manager.NewGame(ctx)
		require.NoError(t, err)

		require.NoError(t, manager.EndGame(ctx, id))

		_, err = manager.GetSnapshot(ctx, id)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Unknown session", func(t *testing.T) {
		manager := newTestManager(repository.NewMemoryGameRepository(time.Hour))

		err := manager.EndGame(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

// trackingGameRepo - counts loads that overlap in time.
type trackingGameRepo struct {
	repository.GameRepository

	active  atomic.Int32
	maxSeen atomic.Int32
}

func (that *trackingGameRepo) GetByID(ctx context.Context, id string) (tictactoe.State, error) {
	active := that.active.Add(1)
	defer that.active.Add(-1)

	for {
		seen := that.maxSeen.Load()
		if active <= seen || that.maxSeen.CompareAndSwap(seen, active) {
			break
		}
	}

	time.Sleep(time.Millisecond)

	return that.GameRepository.GetByID(ctx, id)
}

func TestGameManager_ConcurrentTransitions(t *testing.T) {
	ctx := context.Background()

	// Given: one game toggled from many goroutines
	repo := &trackingGameRepo{GameRepository: repository.NewMemoryGameRepository(time.Hour)}
	manager := newTestManager(repo)

	id, _, err := manager.NewGame(ctx)
	require.NoError(t, err)

	const toggles = 21

	// When: all toggles run at once
	var wg sync.WaitGroup
	for range toggles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, toggleErr := manager.ToggleSort(ctx, id)
			assert.NoError(t, toggleErr)
		}()
	}
	wg.Wait()

	// Then: no update is lost and loads never overlap
	snapshot, err := manager.GetSnapshot(ctx, id)
	require.NoError(t, err)
	assert.True(t, snapshot.SortDescending)
	assert.Equal(t, int32(1), repo.maxSeen.Load())
}
