package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gretehalvorsen/wishlist/internal/domain"
)

const itemsKey = "wishlist:items"

// ItemRepository implements repository.ItemRepository using Redis. The
// wishlist is a single JSON document under one key with no expiry.
type ItemRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewItemRepository creates a new Redis-backed wishlist repository.
func NewItemRepository(client *redis.Client, logger *slog.Logger) *ItemRepository {
	return &ItemRepository{
		client: client,
		logger: logger,
	}
}

// Load retrieves the wishlist from Redis. A missing key means a fresh
// wishlist; a corrupt document is logged and treated the same way so
// that a bad write never wedges the service at startup.
func (r *ItemRepository) Load(ctx context.Context) ([]domain.Item, error) {
	data, err := r.client.Get(ctx, itemsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []domain.Item{}, nil
		}
		return nil, fmt.Errorf("redis get wishlist: %w", err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		r.logger.Warn("discarding unreadable wishlist document", "error", err)
		return []domain.Item{}, nil
	}
	if items == nil {
		items = []domain.Item{}
	}

	return items, nil
}

// Save persists the wishlist to Redis, replacing the previous document.
func (r *ItemRepository) Save(ctx context.Context, items []domain.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	if err := r.client.Set(ctx, itemsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set wishlist: %w", err)
	}

	return nil
}
