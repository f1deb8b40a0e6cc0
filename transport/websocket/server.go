package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (string, tictactoe.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (tictactoe.Snapshot, error)
	ApplyMove(ctx context.Context, id string, cell int) (tictactoe.Snapshot, error)
	JumpTo(ctx context.Context, id string, step int) (tictactoe.Snapshot, error)
	ToggleSort(ctx context.Context, id string) (tictactoe.Snapshot, error)
	EndGame(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, message *Message, conn *websocket.Conn) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	server.handlers = map[string]handlerFunc{
		actionNewGame: server.handleNewGame,
		actionState:   server.handleState,
		actionMove:    server.handleMove,
		actionJump:    server.handleJump,
		actionSort:    server.handleSort,
		actionLeave:   server.handleLeave,
	}

	return server
}

// Handler - upgrades requests to WebSocket connections that live until the client leaves or ctx is canceled.
func (that *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		that.upgradeToWebSocket(ctx, writer, req)
	}
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client one at a time.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, body, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(ctx.Err(), context.Canceled) {
				log.Info("WebSocket connection closed")
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(body, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.sendErrorResponse(conn, actionError, "malformed message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
