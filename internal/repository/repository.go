package repository

import (
	"context"

	"github.com/gretehalvorsen/wishlist/internal/domain"
)

// ItemRepository defines the interface for wishlist persistence operations.
// The whole wishlist is stored and loaded as a single document.
type ItemRepository interface {
	// Load retrieves the full item list. A missing or unreadable
	// document yields an empty list, never an error.
	Load(ctx context.Context) ([]domain.Item, error)

	// Save persists the full item list, overwriting the previous state.
	Save(ctx context.Context, items []domain.Item) error
}
