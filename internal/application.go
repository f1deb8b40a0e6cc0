package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/rest"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/websocket"
)

// RunApp - runs the game server until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	gameRepo, closeRepo, err := NewGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeRepo(); err != nil {
			log.Error("could not close game storage", "error", err)
		}
	}()

	gameUseCase := usecase.NewGameManager(logger, gameRepo)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)
	if err = rest.Start(ctx, conf.HTTPPort, NewHandler(ctx, logger, gameUseCase)); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// NewGameRepository - picks the session store named by conf. The returned func releases it.
func NewGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, func() error, error) {
	switch conf.Storage {
	case config.StorageRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewGameRepository(redisStorage.Connection, conf.SessionTTL), redisStorage.Close, nil
	case config.StorageMemory:
		return repository.NewMemoryGameRepository(conf.SessionTTL), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStorage, conf.Storage)
	}
}

// NewHandler - REST routes plus the WebSocket endpoint on /ws.
func NewHandler(ctx context.Context, logger *slog.Logger, gameUseCase *usecase.GameManager) http.Handler {
	mux := http.NewServeMux()

	rest.NewHandlers(logger, gameUseCase).Register(mux)
	mux.HandleFunc("/ws", websocket.New(logger, gameUseCase).Handler(ctx))

	return mux
}
