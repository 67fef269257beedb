package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gretehalvorsen/wishlist/internal/domain"
	apperrors "github.com/gretehalvorsen/wishlist/pkg/errors"
)

// ErrSweepInProgress is returned when a full refresh sweep is requested
// while another one is still running.
var ErrSweepInProgress = apperrors.Conflict("a refresh sweep is already running")

// ErrRefreshBusy is returned when a targeted refresh is requested while
// another lookup holds the in-flight slot.
var ErrRefreshBusy = apperrors.Conflict("another price refresh is in progress")

// RefreshItem looks up a fresh price for one item. A failed lookup is
// not an error to the caller: the item comes back with its offer fields
// cleared and the attempt timestamp set. Only an unknown ID or a busy
// in-flight slot fail the call.
func (s *WishlistService) RefreshItem(ctx context.Context, id string) (*domain.Item, error) {
	provider, query, err := s.beginRefresh(id)
	if err != nil {
		return nil, err
	}
	defer s.endRefresh()

	quote, lookupErr := s.pricing.Lookup(ctx, provider, query)

	now := time.Now().UTC()

	s.mu.Lock()
	// The item may have been removed while the lookup was running; a
	// stale result must not resurrect it.
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, apperrors.NotFound("item", id)
	}

	next := append([]domain.Item(nil), s.items...)
	if lookupErr != nil {
		next[idx].ClearOffer(now)
	} else {
		next[idx].ApplyOffer(quote.Price, quote.Currency, quote.Vendor, quote.OfferURL, now)
	}

	// A lost write here only costs a price that the next refresh will
	// fetch again, so the refresh itself still succeeds.
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.WarnContext(ctx, "failed to persist refreshed price",
			slog.String("item_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.items = next
	item := next[idx]
	s.mu.Unlock()

	if lookupErr != nil {
		s.logger.WarnContext(ctx, "price lookup failed",
			slog.String("item_id", id),
			slog.String("provider", string(provider)),
			slog.String("error", lookupErr.Error()),
		)
	}

	if err := s.producer.PublishPriceRefreshed(ctx, item, lookupErr == nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish price.refreshed event",
			slog.String("item_id", id),
			slog.String("error", err.Error()),
		)
	}

	return &item, nil
}

// beginRefresh claims the in-flight slot for the given item and returns
// the lookup parameters captured under the lock.
func (s *WishlistService) beginRefresh(id string) (domain.Provider, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return "", "", apperrors.NotFound("item", id)
	}
	if s.inFlight != "" {
		return "", "", ErrRefreshBusy
	}

	s.inFlight = id
	return s.items[idx].Provider, s.items[idx].LookupQuery(), nil
}

func (s *WishlistService) endRefresh() {
	s.mu.Lock()
	s.inFlight = ""
	s.mu.Unlock()
}

// RefreshAll refreshes every item one at a time and blocks until the
// sweep finishes. The item set is snapshotted up front, so items added
// mid-sweep wait for the next one and removed items are skipped.
func (s *WishlistService) RefreshAll(ctx context.Context) error {
	if !s.sweeping.CompareAndSwap(false, true) {
		return ErrSweepInProgress
	}
	defer s.sweeping.Store(false)

	return s.sweep(ctx)
}

// StartSweep kicks off a refresh sweep in the background and returns
// immediately. The sweep is detached from the caller's request context.
func (s *WishlistService) StartSweep() error {
	if !s.sweeping.CompareAndSwap(false, true) {
		return ErrSweepInProgress
	}

	go func() {
		defer s.sweeping.Store(false)

		ctx := context.Background()
		if err := s.sweep(ctx); err != nil {
			s.logger.Error("background refresh sweep aborted",
				slog.String("error", err.Error()),
			)
		}
	}()

	return nil
}

func (s *WishlistService) sweep(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, len(s.items))
	for i := range s.items {
		ids[i] = s.items[i].ID
	}
	s.mu.RUnlock()

	started := time.Now()
	s.logger.InfoContext(ctx, "refresh sweep started", slog.Int("item_count", len(ids)))

	var refreshed, failed, skipped int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := s.RefreshItem(ctx, id)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			skipped++
		case err != nil:
			// Busy cannot happen from inside the sweep; treat anything
			// else as a failed item and keep going.
			failed++
		case item.BestPrice == nil:
			failed++
		default:
			refreshed++
		}
	}

	s.mu.RLock()
	items := append([]domain.Item(nil), s.items...)
	s.mu.RUnlock()

	if err := s.producer.PublishWishlistUpdated(ctx, items, domain.CalculateTotals(items)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish items.updated event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "refresh sweep finished",
		slog.Int("refreshed", refreshed),
		slog.Int("failed", failed),
		slog.Int("skipped", skipped),
		slog.Duration("elapsed", time.Since(started)),
	)

	return nil
}
