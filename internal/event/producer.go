package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gretehalvorsen/wishlist/internal/domain"
	pkgkafka "github.com/gretehalvorsen/wishlist/pkg/kafka"
	"github.com/gretehalvorsen/wishlist/pkg/logger"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicWishlistUpdated = "wishlist.items.updated"
	TopicPriceRefreshed  = "wishlist.price.refreshed"
)

// Aggregate type constant.
const AggregateTypeWishlist = "wishlist"

// Source identifier for events originating from the wishlist service.
const SourceWishlistService = "wishlist-service"

// WishlistUpdatedData is the payload for an items.updated event. It
// carries the full list so downstream consumers never need a read-back.
type WishlistUpdatedData struct {
	Items         []ItemData `json:"items"`
	MissingTotal  int        `json:"missing_total"`
	EstimatedCost float64    `json:"estimated_cost"`
	Currency      string     `json:"currency"`
}

// ItemData is the item payload within wishlist events.
type ItemData struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Have      int      `json:"have"`
	Want      int      `json:"want"`
	Provider  string   `json:"provider"`
	BestPrice *float64 `json:"best_price,omitempty"`
	Vendor    string   `json:"vendor,omitempty"`
}

// PriceRefreshedData is the payload for a price.refreshed event.
type PriceRefreshedData struct {
	ItemID   string   `json:"item_id"`
	Name     string   `json:"name"`
	Provider string   `json:"provider"`
	Success  bool     `json:"success"`
	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Vendor   string   `json:"vendor,omitempty"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishWishlistUpdated publishes an items.updated event with the
// current list and its totals.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, items []domain.Item, totals domain.Totals) error {
	payload := make([]ItemData, len(items))
	for i, item := range items {
		payload[i] = ItemData{
			ID:        item.ID,
			Name:      item.Name,
			Have:      item.Have,
			Want:      item.Want,
			Provider:  string(item.Provider),
			BestPrice: item.BestPrice,
			Vendor:    item.Vendor,
		}
	}

	data := WishlistUpdatedData{
		Items:         payload,
		MissingTotal:  totals.MissingTotal,
		EstimatedCost: totals.EstimatedCost,
		Currency:      totals.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicWishlistUpdated, AggregateTypeWishlist, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create items.updated event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicWishlistUpdated, event); err != nil {
		return fmt.Errorf("publish items.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published items.updated event",
		slog.Int("item_count", len(items)),
		slog.Int("missing_total", totals.MissingTotal),
	)

	return nil
}

// PublishPriceRefreshed publishes a price.refreshed event for one item.
func (p *Producer) PublishPriceRefreshed(ctx context.Context, item domain.Item, success bool) error {
	data := PriceRefreshedData{
		ItemID:   item.ID,
		Name:     item.Name,
		Provider: string(item.Provider),
		Success:  success,
		Price:    item.BestPrice,
		Currency: item.Currency,
		Vendor:   item.Vendor,
	}

	event, err := pkgkafka.NewEvent(TopicPriceRefreshed, item.ID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create price.refreshed event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicPriceRefreshed, event); err != nil {
		return fmt.Errorf("publish price.refreshed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published price.refreshed event",
		slog.String("item_id", item.ID),
		slog.Bool("success", success),
	)

	return nil
}
