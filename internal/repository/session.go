package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
)

const (
	snapshotTTL = 24 * time.Hour

	maxSaveAttempts = 3
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository keeps the latest rendered snapshot of every live session.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	GetByID(ctx context.Context, sessionID string) (*entity.Snapshot, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type dbSnapshot struct {
	client *redis.Client
}

func NewSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &dbSnapshot{
		client: client,
	}
}

// Save stores snapshot unless a newer version is already stored.
func (that *dbSnapshot) Save(ctx context.Context, snapshot entity.Snapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	key := snapshotKey(snapshot.SessionID)

	write := func(tx *redis.Tx) error {
		stored, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}

		if stored >= snapshot.Version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, snapshotJSON, snapshotTTL)
			return nil
		})

		return err
	}

	for range maxSaveAttempts {
		err = that.client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}

	if err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) GetByID(ctx context.Context, sessionID string) (*entity.Snapshot, error) {
	response, err := that.client.Get(ctx, snapshotKey(sessionID)).Bytes()

	if errors.Is(err, redis.Nil) {
		return &entity.Snapshot{}, ErrSnapshotNotFound
	}

	if err != nil {
		return &entity.Snapshot{}, fmt.Errorf("failed to get snapshot by ID: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal(response, &snapshot); err != nil {
		return &entity.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

func (that *dbSnapshot) DeleteByID(ctx context.Context, sessionID string) error {
	deleted, err := that.client.Del(ctx, snapshotKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot by ID: %w", err)
	}

	if deleted == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}

func storedVersion(ctx context.Context, tx *redis.Tx, key string) (uint64, error) {
	response, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read stored snapshot: %w", err)
	}

	var stored struct {
		Version uint64 `json:"version"`
	}
	if err = json.Unmarshal(response, &stored); err != nil {
		return 0, fmt.Errorf("failed to unmarshal stored snapshot: %w", err)
	}

	return stored.Version, nil
}

func snapshotKey(sessionID string) string {
	return "session:" + sessionID
}
