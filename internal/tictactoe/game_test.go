package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_Subscribe(t *testing.T) {
	t.Run("Subscribers receive a snapshot after each change", func(t *testing.T) {
		// Given: a game with a subscriber
		game := NewGame()

		var received []Snapshot
		game.Subscribe(func(snapshot Snapshot) {
			received = append(received, snapshot)
		})

		// When: a move, a jump and a sort toggle happen
		require.NoError(t, game.ApplyMove(4, 2, 2))
		require.NoError(t, game.JumpTo(0))
		game.ToggleSort()

		// Then: three snapshots were delivered in order
		require.Len(t, received, 3)
		assert.Equal(t, entity.PlayerX, received[0].Board[4])
		assert.Equal(t, 0, received[1].StepNumber)
		assert.True(t, received[2].SortDescending)
	})

	t.Run("Rejected move does not notify", func(t *testing.T) {
		// Given: X on cell 4
		game := NewGame()
		require.NoError(t, game.ApplyMove(4, 2, 2))

		calls := 0
		game.Subscribe(func(Snapshot) { calls++ })

		// When: O tries the same cell
		err := game.ApplyMove(4, 2, 2)

		// Then: nothing is published and state is kept
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, 0, calls)
		assert.Equal(t, 1, game.State().StepNumber)
	})

	t.Run("Rejected jump does not notify", func(t *testing.T) {
		game := NewGame()

		calls := 0
		game.Subscribe(func(Snapshot) { calls++ })

		require.ErrorIs(t, game.JumpTo(5), apperror.ErrStepOutOfRange)
		assert.Equal(t, 0, calls)
	})

	t.Run("Unsubscribe stops notifications", func(t *testing.T) {
		game := NewGame()

		first, second := 0, 0
		unsubscribe := game.Subscribe(func(Snapshot) { first++ })
		game.Subscribe(func(Snapshot) { second++ })

		require.NoError(t, game.ApplyMove(0, 3, 1))
		unsubscribe()
		require.NoError(t, game.ApplyMove(1, 3, 2))

		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
	})

	t.Run("Snapshot matches the state", func(t *testing.T) {
		game := NewGame()
		require.NoError(t, game.ApplyMove(0, 3, 1))

		assert.Equal(t, game.State().Snapshot(), game.Snapshot())
	})
}
