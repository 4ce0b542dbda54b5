package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/arcade-backend/internal/apperror"
	"github.com/rocketscienceinc/arcade-backend/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return conn.sendError(msg.Action, "invalid payload")
	}

	var clientID string
	if payloadReq.Client != nil {
		clientID = payloadReq.Client.ID
	}

	client, err := that.uGame.GetOrCreateClient(ctx, clientID)
	if err != nil {
		log.Error("failed to create or get client", "error", err)
		return conn.sendError(msg.Action, "failed to create a new client")
	}

	conn.setClientID(client.ID)

	log.Info("successfully connected client", "client_id", client.ID)

	return conn.send(msg.Action, Payload{Client: client, Games: that.uGame.Games()})
}

func (that *Server) handleGamesList(_ context.Context, msg *Message, conn *connection) error {
	return conn.send(msg.Action, Payload{Games: that.uGame.Games()})
}

func (that *Server) handleGameStart(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameStart")

	clientID := conn.ClientID()
	if clientID == "" {
		return conn.sendError(msg.Action, "Client is required")
	}

	payloadReq, err := decodePayload(msg)
	if err != nil || payloadReq.Game == "" {
		return conn.sendError(msg.Action, "Game is required")
	}

	_, err = that.uGame.StartGame(ctx, clientID, payloadReq.Game, that.pushState(conn))
	if errors.Is(err, apperror.ErrUnknownGame) {
		return conn.sendError(msg.Action, fmt.Sprintf("unknown game %s", payloadReq.Game))
	}

	if err != nil {
		log.Error("failed to start game", "client_id", clientID, "error", err)
		return conn.sendError(msg.Action, "failed to start game")
	}

	return nil
}

func (that *Server) handleGameInput(ctx context.Context, msg *Message, conn *connection) error {
	clientID := conn.ClientID()
	if clientID == "" {
		return conn.sendError(msg.Action, "Client is required")
	}

	payloadReq, err := decodePayload(msg)
	if err != nil || len(payloadReq.Input) == 0 {
		return conn.sendError(msg.Action, "Input is required")
	}

	_, err = that.uGame.HandleInput(ctx, clientID, payloadReq.Input)

	return that.replyOnError(conn, msg.Action, err)
}

func (that *Server) handleGameRestart(ctx context.Context, msg *Message, conn *connection) error {
	clientID := conn.ClientID()
	if clientID == "" {
		return conn.sendError(msg.Action, "Client is required")
	}

	_, err := that.uGame.Restart(ctx, clientID)

	return that.replyOnError(conn, msg.Action, err)
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	clientID := conn.ClientID()
	if clientID == "" {
		return conn.sendError(msg.Action, "Client is required")
	}

	if err := that.uGame.Leave(ctx, clientID); err != nil {
		that.logger.Error("failed to leave game", "client_id", clientID, "error", err)
		return conn.sendError(msg.Action, "failed to leave game")
	}

	return conn.send(msg.Action, Payload{Client: &entity.Client{ID: clientID}})
}

// pushState - sends every snapshot of the session to the connection.
func (that *Server) pushState(conn *connection) func(entity.Snapshot) {
	return func(snapshot entity.Snapshot) {
		if err := conn.send(actionGameState, Payload{Snapshot: &snapshot}); err != nil {
			that.logger.Debug("failed to push state", "session_id", snapshot.SessionID, "error", err)
		}
	}
}

// replyOnError - state changes are pushed as game:state, only failures get a direct reply.
func (that *Server) replyOnError(conn *connection, action string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperror.ErrNoActiveSession):
		return conn.sendError(action, "no active game")
	case errors.Is(err, apperror.ErrInvalidPayload):
		return conn.sendError(action, "invalid input")
	default:
		that.logger.Error("failed to process action", "action", action, "error", err)
		return conn.sendError(action, "internal error")
	}
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}
