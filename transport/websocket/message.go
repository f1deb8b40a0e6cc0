package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	actionNewGame = "game:new"
	actionState   = "game:state"
	actionMove    = "game:move"
	actionJump    = "game:jump"
	actionSort    = "game:sort"
	actionLeave   = "game:leave"
	actionError   = "error"
)

// Message - a text frame exchanged with the browser.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	GameID string              `json:"game_id,omitempty"`
	Cell   *int                `json:"cell,omitempty"`
	Step   *int                `json:"step,omitempty"`
	Game   *tictactoe.Snapshot `json:"game,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response := Message{
		Action:  action,
		Payload: payloadJSON,
	}

	if err = conn.WriteJSON(response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *websocket.Conn, action, errorMsg string) error {
	if err := that.sendMessage(conn, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func (that *Server) sendSnapshot(conn *websocket.Conn, action, gameID string, snapshot tictactoe.Snapshot) error {
	return that.sendMessage(conn, action, Payload{
		GameID: gameID,
		Game:   &snapshot,
	})
}
