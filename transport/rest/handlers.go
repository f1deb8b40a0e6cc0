package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type gameUseCase interface {
	GetSnapshot(ctx context.Context, id string) (tictactoe.Snapshot, error)
}

type Handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase) *Handlers {
	return &Handlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

// Register - mounts the REST routes on mux.
func (that *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ping", that.PingHandler)
	mux.HandleFunc("GET /api/games/{id}", that.GetGameHandler)
}

func (that *Handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write ping response", "error", err)
	}
}

func (that *Handlers) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGameHandler")

	id := r.PathValue("id")

	snapshot, err := that.gameUseCase.GetSnapshot(r.Context(), id)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		jsonError(w, "game not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get game", "gameID", id, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(snapshot); err != nil {
		log.Error("failed to encode game", "gameID", id, "error", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
