package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameManager interface {
	GetOrCreateClient(ctx context.Context, id string) (*entity.Client, error)
	Games() []entity.GameInfo

	StartGame(ctx context.Context, clientID string, gameID entity.GameID, onChange func(entity.Snapshot)) (entity.Snapshot, error)
	HandleInput(ctx context.Context, clientID string, payload []byte) (entity.Snapshot, error)
	Restart(ctx context.Context, clientID string) (entity.Snapshot, error)
	Leave(ctx context.Context, clientID string) error
}

type handlerFunc func(ctx context.Context, msg *Message, conn *connection) error

type Server struct {
	logger *slog.Logger
	uGame  gameManager

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame gameManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGamesList] = server.handleGamesList
	server.handlers[actionGameStart] = server.handleGameStart
	server.handlers[actionGameInput] = server.handleGameInput
	server.handlers[actionGameRestart] = server.handleGameRestart
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that.Handler(ctx))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler - upgrades requests to WebSocket connections served until they close.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		log := that.logger.With("method", "upgradeConnection")

		ws, err := that.upgrader.Upgrade(writer, req, nil)
		if err != nil {
			log.Error("failed to upgrade connection", "error", err)
			return
		}

		log.Debug("WebSocket connection established", "remote", ws.RemoteAddr().String())

		conn := &connection{ws: ws}
		defer that.handleDisconnect(ctx, conn)

		if err = that.handleMessages(ctx, conn); err != nil {
			log.Error("error handling messages", "error", err)
		}
	})
}

// handleMessages - processes messages from the client in arrival order.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, reqBody, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("failed to read message: %w", err)
			}

			return nil
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err = conn.sendError(message.Action, "unknown action"); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// handleDisconnect - disposes whatever the client was playing.
func (that *Server) handleDisconnect(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "handleDisconnect")

	if clientID := conn.ClientID(); clientID != "" {
		if err := that.uGame.Leave(ctx, clientID); err != nil {
			log.Error("failed to leave game", "client_id", clientID, "error", err)
		}
	}

	if err := conn.ws.Close(); err != nil {
		log.Debug("failed to close connection", "error", err)
	}
}
