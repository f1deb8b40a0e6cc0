package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type memoryEntry struct {
	state     tictactoe.State
	expiresAt time.Time
}

type memoryGame struct {
	mu    sync.RWMutex
	games map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryGameRepository - keeps game sessions in process memory. Expired sessions are dropped on access.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return newMemoryGameRepository(ttl, time.Now)
}

func newMemoryGameRepository(ttl time.Duration, now func() time.Time) *memoryGame {
	return &memoryGame{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   now,
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, id string, state tictactoe.State) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.evictExpired()

	that.games[id] = memoryEntry{
		state:     state,
		expiresAt: that.now().Add(that.ttl),
	}

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (tictactoe.State, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok || that.expired(entry) {
		return tictactoe.State{}, apperror.ErrSessionNotFound
	}

	return entry.state, nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[id]
	if !ok || that.expired(entry) {
		delete(that.games, id)
		return apperror.ErrSessionNotFound
	}

	delete(that.games, id)

	return nil
}

func (that *memoryGame) expired(entry memoryEntry) bool {
	return that.ttl > 0 && !that.now().Before(entry.expiresAt)
}

// evictExpired - caller must hold the write lock.
func (that *memoryGame) evictExpired() {
	for id, entry := range that.games {
		if that.expired(entry) {
			delete(that.games, id)
		}
	}
}
