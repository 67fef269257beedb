package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gretehalvorsen/wishlist/internal/domain"
	"github.com/gretehalvorsen/wishlist/internal/event"
	"github.com/gretehalvorsen/wishlist/internal/pricing"
	"github.com/gretehalvorsen/wishlist/internal/repository"
	apperrors "github.com/gretehalvorsen/wishlist/pkg/errors"
)

// WishlistService implements the business logic for the wishlist. The
// item list lives in memory, guarded by mu; every mutation is persisted
// through the repository before it is committed to the in-memory copy.
type WishlistService struct {
	repo     repository.ItemRepository
	pricing  pricing.Client
	producer *event.Producer
	logger   *slog.Logger

	mu       sync.RWMutex
	items    []domain.Item
	inFlight string // item ID currently waiting on a price lookup

	sweeping atomic.Bool
}

// NewWishlistService creates the wishlist service and hydrates its
// state from the repository.
func NewWishlistService(
	ctx context.Context,
	repo repository.ItemRepository,
	pricingClient pricing.Client,
	producer *event.Producer,
	logger *slog.Logger,
) (*WishlistService, error) {
	items, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}

	logger.InfoContext(ctx, "wishlist hydrated", slog.Int("item_count", len(items)))

	return &WishlistService{
		repo:     repo,
		pricing:  pricingClient,
		producer: producer,
		logger:   logger,
		items:    items,
	}, nil
}

// Items returns a copy of the current item list.
func (s *WishlistService) Items() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Item(nil), s.items...)
}

// Totals returns the aggregate missing count and estimated cost.
func (s *WishlistService) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CalculateTotals(s.items)
}

// InFlight returns the ID of the item currently being refreshed, or ""
// when no lookup is running.
func (s *WishlistService) InFlight() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

// Sweeping reports whether a full refresh sweep is running.
func (s *WishlistService) Sweeping() bool {
	return s.sweeping.Load()
}

// AddItemInput holds the parameters for adding a wishlist item.
type AddItemInput struct {
	Name     string
	Have     int
	Want     int
	Query    string
	Provider string
}

// AddItem validates the input and prepends a new item to the list.
func (s *WishlistService) AddItem(ctx context.Context, input AddItemInput) (*domain.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	provider := domain.DefaultProvider
	if input.Provider != "" {
		provider = domain.Provider(input.Provider)
		if !provider.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown provider %q, must be one of %v", input.Provider, domain.Providers()))
		}
	}

	item := domain.Item{
		ID:       uuid.NewString(),
		Name:     name,
		Have:     max(0, input.Have),
		Want:     max(0, input.Want),
		Query:    strings.TrimSpace(input.Query),
		Provider: provider,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first, matching how the list is reviewed.
	next := make([]domain.Item, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	s.items = next

	s.publishUpdated(ctx)

	s.logger.InfoContext(ctx, "wishlist item added",
		slog.String("item_id", item.ID),
		slog.String("name", item.Name),
		slog.String("provider", string(item.Provider)),
	)

	return &item, nil
}

// UpdateItemInput holds the patchable fields of an item. Nil fields are
// left unchanged; price fields can only change through a refresh.
type UpdateItemInput struct {
	Name     *string
	Have     *int
	Want     *int
	Query    *string
	Provider *string
}

// UpdateItem applies a partial update to an existing item.
func (s *WishlistService) UpdateItem(ctx context.Context, id string, input UpdateItemInput) (*domain.Item, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, apperrors.InvalidInput("name must not be blank")
	}
	if input.Provider != nil && !domain.Provider(*input.Provider).Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown provider %q, must be one of %v", *input.Provider, domain.Providers()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NotFound("item", id)
	}

	next := append([]domain.Item(nil), s.items...)
	item := &next[idx]

	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Have != nil {
		item.Have = max(0, *input.Have)
	}
	if input.Want != nil {
		item.Want = max(0, *input.Want)
	}
	if input.Query != nil {
		item.Query = strings.TrimSpace(*input.Query)
	}
	if input.Provider != nil {
		item.Provider = domain.Provider(*input.Provider)
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	s.items = next

	s.publishUpdated(ctx)

	s.logger.InfoContext(ctx, "wishlist item updated", slog.String("item_id", id))

	updated := *item
	return &updated, nil
}

// RemoveItem deletes an item from the list.
func (s *WishlistService) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return apperrors.NotFound("item", id)
	}

	next := make([]domain.Item, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)

	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	s.items = next

	s.publishUpdated(ctx)

	s.logger.InfoContext(ctx, "wishlist item removed", slog.String("item_id", id))

	return nil
}

// indexOf returns the position of the item with the given ID, or -1.
// Callers must hold mu.
func (s *WishlistService) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// publishUpdated emits an items.updated event for the current state.
// Publish failures are logged, never surfaced. Callers must hold mu.
func (s *WishlistService) publishUpdated(ctx context.Context) {
	if err := s.producer.PublishWishlistUpdated(ctx, s.items, domain.CalculateTotals(s.items)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish items.updated event",
			slog.String("error", err.Error()),
		)
	}
}
