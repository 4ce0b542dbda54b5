package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
)

const (
	actionConnect     = "connect"
	actionGamesList   = "games:list"
	actionGameStart   = "game:start"
	actionGameInput   = "game:input"
	actionGameRestart = "game:restart"
	actionGameLeave   = "game:leave"
	actionGameState   = "game:state"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Client   *entity.Client    `json:"client,omitempty"`
	Game     entity.GameID     `json:"game,omitempty"`
	Input    json.RawMessage   `json:"input,omitempty"`
	Games    []entity.GameInfo `json:"games,omitempty"`
	Snapshot *entity.Snapshot  `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// connection serialises writes, snapshots arrive from timer goroutines.
type connection struct {
	ws *websocket.Conn

	writeMu  sync.Mutex
	clientMu sync.RWMutex
	clientID string
}

func (that *connection) ClientID() string {
	that.clientMu.RLock()
	defer that.clientMu.RUnlock()

	return that.clientID
}

func (that *connection) setClientID(id string) {
	that.clientMu.Lock()
	defer that.clientMu.Unlock()

	that.clientID = id
}

func (that *connection) send(action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response := Message{
		Action:  action,
		Payload: payloadJSON,
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.ws.WriteJSON(response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) sendError(action, message string) error {
	return that.send(action, Payload{Error: message})
}
