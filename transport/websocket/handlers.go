package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

var errMalformedPayload = errors.New("malformed payload")

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleNewGame")

	gameID, snapshot, err := that.gameUseCase.NewGame(ctx)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new game")
	}

	log.Info("game started", "gameID", gameID)

	return that.sendSnapshot(conn, msg.Action, gameID, snapshot)
}

func (that *Server) handleState(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, err := that.gamePayload(msg, conn)
	if err != nil {
		return err
	}

	snapshot, err := that.gameUseCase.GetSnapshot(ctx, payloadReq.GameID)

	return that.reply(conn, msg.Action, payloadReq.GameID, snapshot, err)
}

func (that *Server) handleMove(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, err := that.gamePayload(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Cell == nil {
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	snapshot, err := that.gameUseCase.ApplyMove(ctx, payloadReq.GameID, *payloadReq.Cell)

	return that.reply(conn, msg.Action, payloadReq.GameID, snapshot, err)
}

func (that *Server) handleJump(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, err := that.gamePayload(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Step == nil {
		return that.sendErrorResponse(conn, msg.Action, "step is required")
	}

	snapshot, err := that.gameUseCase.JumpTo(ctx, payloadReq.GameID, *payloadReq.Step)

	return that.reply(conn, msg.Action, payloadReq.GameID, snapshot, err)
}

func (that *Server) handleSort(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, err := that.gamePayload(msg, conn)
	if err != nil {
		return err
	}

	snapshot, err := that.gameUseCase.ToggleSort(ctx, payloadReq.GameID)

	return that.reply(conn, msg.Action, payloadReq.GameID, snapshot, err)
}

func (that *Server) handleLeave(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleLeave")

	payloadReq, err := that.gamePayload(msg, conn)
	if err != nil {
		return err
	}

	if err = that.gameUseCase.EndGame(ctx, payloadReq.GameID); err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			return that.sendErrorResponse(conn, msg.Action, "game not found")
		}

		log.Error("failed to end game", "gameID", payloadReq.GameID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to end game")
	}

	log.Info("game left", "gameID", payloadReq.GameID)

	return that.sendMessage(conn, msg.Action, Payload{GameID: payloadReq.GameID})
}

// reply - sends the snapshot back. Moves and jumps the game refuses are answered with the unchanged snapshot and no error.
func (that *Server) reply(conn *websocket.Conn, action, gameID string, snapshot tictactoe.Snapshot, err error) error {
	log := that.logger.With("method", "reply", "action", action, "gameID", gameID)

	switch {
	case err == nil:
	case usecase.IsRejection(err):
		log.Debug("ignored rejected action", "error", err)
	case errors.Is(err, apperror.ErrSessionNotFound):
		return that.sendErrorResponse(conn, action, "game not found")
	default:
		log.Error("failed to process action", "error", err)
		return that.sendErrorResponse(conn, action, "internal error")
	}

	return that.sendSnapshot(conn, action, gameID, snapshot)
}

// gamePayload - decodes the payload and requires a game id. Invalid requests are answered here and reported as errMalformedPayload.
func (that *Server) gamePayload(msg *Message, conn *websocket.Conn) (Payload, error) {
	var payloadReq Payload

	if len(msg.Payload) == 0 {
		if err := that.sendErrorResponse(conn, msg.Action, "game_id is required"); err != nil {
			return Payload{}, err
		}
		return Payload{}, fmt.Errorf("%w: empty payload", errMalformedPayload)
	}

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		if sendErr := that.sendErrorResponse(conn, msg.Action, "malformed payload"); sendErr != nil {
			return Payload{}, sendErr
		}
		return Payload{}, fmt.Errorf("%w: %w", errMalformedPayload, err)
	}

	if payloadReq.GameID == "" {
		if err := that.sendErrorResponse(conn, msg.Action, "game_id is required"); err != nil {
			return Payload{}, err
		}
		return Payload{}, fmt.Errorf("%w: game_id is missing", errMalformedPayload)
	}

	return payloadReq, nil
}
