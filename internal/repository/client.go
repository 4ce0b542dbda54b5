package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
)

var ErrClientNotFound = errors.New("client not found")

type ClientRepository interface {
	CreateOrUpdate(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbClient struct {
	client *redis.Client
}

func NewClientRepository(client *redis.Client) ClientRepository {
	return &dbClient{
		client: client,
	}
}

func (that *dbClient) CreateOrUpdate(ctx context.Context, client *entity.Client) error {
	clientJSON, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("failed to marshal client: %w", err)
	}

	err = that.client.Set(ctx, clientKey(client.ID), clientJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set client: %w", err)
	}

	return nil
}

func (that *dbClient) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	response, err := that.client.Get(ctx, clientKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Client{}, ErrClientNotFound
	}

	if err != nil {
		return &entity.Client{}, fmt.Errorf("failed to get client by ID: %w", err)
	}

	var existingClient entity.Client
	if err = json.Unmarshal([]byte(response), &existingClient); err != nil {
		return &entity.Client{}, fmt.Errorf("failed to unmarshal client: %w", err)
	}

	return &existingClient, nil
}

func (that *dbClient) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, clientKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete client by ID: %w", err)
	}

	if deleted == 0 {
		return ErrClientNotFound
	}

	return nil
}

func clientKey(id string) string {
	return "client:" + id
}
