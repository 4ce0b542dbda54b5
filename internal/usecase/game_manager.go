package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/arcade-backend/internal/apperror"
	"github.com/rocketscienceinc/arcade-backend/internal/entity"
	"github.com/rocketscienceinc/arcade-backend/internal/repository"
	"github.com/rocketscienceinc/arcade-backend/internal/session"
)

const publishTimeout = 2 * time.Second

type clientRepo interface {
	CreateOrUpdate(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	DeleteByID(ctx context.Context, id string) error
}

type snapshotRepo interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	GetByID(ctx context.Context, sessionID string) (*entity.Snapshot, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type gameCatalog interface {
	Games() []entity.GameInfo
	Open(gameID entity.GameID, sessionID string) (session.Handle, error)
}

type activeSession struct {
	handle      session.Handle
	unsubscribe func()
	closed      atomic.Bool
}

// GameManager is the host of every client's single active session.
// Starting a game always disposes the client's previous session first.
type GameManager struct {
	logger       *slog.Logger
	catalog      gameCatalog
	clientRepo   clientRepo
	snapshotRepo snapshotRepo

	mu     sync.Mutex
	active map[string]*activeSession
}

func NewGameManager(logger *slog.Logger, catalog gameCatalog, clientRepo clientRepo, snapshotRepo snapshotRepo) *GameManager {
	return &GameManager{
		logger:  logger.With("component", "game_manager"),
		catalog: catalog,

		clientRepo:   clientRepo,
		snapshotRepo: snapshotRepo,

		active: make(map[string]*activeSession),
	}
}

// GetOrCreateClient returns the client with id, creating it when id is empty or unknown.
func (that *GameManager) GetOrCreateClient(ctx context.Context, id string) (*entity.Client, error) {
	if id != "" {
		client, err := that.clientRepo.GetByID(ctx, id)
		if err == nil {
			return that.reconcile(ctx, client)
		}

		if !errors.Is(err, repository.ErrClientNotFound) {
			return nil, fmt.Errorf("failed to get client by id: %w", err)
		}
	} else {
		id = uuid.NewString()
	}

	client := &entity.Client{ID: id}
	if err := that.clientRepo.CreateOrUpdate(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func (that *GameManager) Games() []entity.GameInfo {
	return that.catalog.Games()
}

// StartGame opens a new session of gameID for the client. onChange receives every masked snapshot.
func (that *GameManager) StartGame(ctx context.Context, clientID string, gameID entity.GameID, onChange func(entity.Snapshot)) (entity.Snapshot, error) {
	log := that.logger.With("method", "StartGame", "client_id", clientID, "game", gameID)

	if clientID == "" {
		return entity.Snapshot{}, apperror.ErrClientIsRequired
	}

	client, err := that.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get client by id: %w", err)
	}

	handle, err := that.catalog.Open(gameID, "")
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to open session: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.leaveLocked(ctx, clientID)

	current := &activeSession{handle: handle}
	current.unsubscribe = handle.Subscribe(func(snapshot entity.Snapshot) {
		if current.closed.Load() {
			return
		}

		masked := snapshot.Masked()
		that.publish(masked)

		if onChange != nil {
			onChange(masked)
		}
	})
	that.active[clientID] = current

	handle.Start()

	client.SessionID = handle.ID()
	client.Game = gameID
	if err = that.clientRepo.CreateOrUpdate(ctx, client); err != nil {
		log.Error("failed to update client", "error", err)
	}

	log.Info("game started", "session_id", handle.ID())

	return handle.Snapshot().Masked(), nil
}

// HandleInput forwards payload to the client's session. Rule rejections are not errors.
func (that *GameManager) HandleInput(_ context.Context, clientID string, payload []byte) (entity.Snapshot, error) {
	handle, err := that.handleOf(clientID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	if err = handle.HandleRawInput(payload); err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to handle input: %w", err)
	}

	return handle.Snapshot().Masked(), nil
}

func (that *GameManager) Restart(_ context.Context, clientID string) (entity.Snapshot, error) {
	handle, err := that.handleOf(clientID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	handle.Restart()

	return handle.Snapshot().Masked(), nil
}

// Leave disposes the client's session, if any.
func (that *GameManager) Leave(ctx context.Context, clientID string) error {
	that.mu.Lock()
	left := that.leaveLocked(ctx, clientID)
	that.mu.Unlock()

	if !left {
		return nil
	}

	client, err := that.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to get client by id: %w", err)
	}

	client.SessionID = ""
	client.Game = ""
	if err = that.clientRepo.CreateOrUpdate(ctx, client); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	return nil
}

// Snapshot returns the last published snapshot of a session.
func (that *GameManager) Snapshot(ctx context.Context, sessionID string) (*entity.Snapshot, error) {
	snapshot, err := that.snapshotRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return snapshot, nil
}

// Shutdown disposes every active session.
func (that *GameManager) Shutdown(ctx context.Context) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for clientID := range that.active {
		that.leaveLocked(ctx, clientID)
	}

	that.logger.Info("all sessions disposed")
}

func (that *GameManager) handleOf(clientID string) (session.Handle, error) {
	if clientID == "" {
		return nil, apperror.ErrClientIsRequired
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.active[clientID]
	if !ok {
		return nil, apperror.ErrNoActiveSession
	}

	return current.handle, nil
}

// leaveLocked - disposes the session before its snapshot is dropped.
func (that *GameManager) leaveLocked(ctx context.Context, clientID string) bool {
	current, ok := that.active[clientID]
	if !ok {
		return false
	}

	delete(that.active, clientID)

	current.closed.Store(true)
	current.unsubscribe()
	current.handle.Dispose()

	err := that.snapshotRepo.DeleteByID(ctx, current.handle.ID())
	if err != nil && !errors.Is(err, repository.ErrSnapshotNotFound) {
		that.logger.Error("failed to delete snapshot", "session_id", current.handle.ID(), "error", err)
	}

	that.logger.Info("session disposed", "client_id", clientID, "session_id", current.handle.ID())

	return true
}

// reconcile - drops a stored session reference the process no longer runs.
func (that *GameManager) reconcile(ctx context.Context, client *entity.Client) (*entity.Client, error) {
	that.mu.Lock()
	current, ok := that.active[client.ID]
	that.mu.Unlock()

	if ok && current.handle.ID() == client.SessionID {
		return client, nil
	}

	if !client.InSession() {
		return client, nil
	}

	client.SessionID = ""
	client.Game = ""
	if err := that.clientRepo.CreateOrUpdate(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

func (that *GameManager) publish(snapshot entity.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := that.snapshotRepo.Save(ctx, snapshot); err != nil {
		that.logger.Error("failed to publish snapshot", "session_id", snapshot.SessionID, "error", err)
	}
}
