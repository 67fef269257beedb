package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gretehalvorsen/wishlist/internal/domain"
)

func setupTestRedis(t *testing.T) (*ItemRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	repo := NewItemRepository(client, logger)
	return repo, mr
}

func sampleItems() []domain.Item {
	now := time.Now().UTC().Truncate(time.Millisecond)
	price := 189.0
	return []domain.Item{
		{
			ID:          "11111111-1111-1111-1111-111111111111",
			Name:        "Figgjo Lotte cup",
			Have:        3,
			Want:        6,
			Query:       "figgjo lotte kopp",
			Provider:    domain.ProviderPrisguiden,
			BestPrice:   &price,
			Currency:    domain.HomeCurrency,
			Vendor:      "Brukthandel AS",
			OfferURL:    "https://shop.example/offer/42",
			LastChecked: &now,
		},
		{
			ID:       "22222222-2222-2222-2222-222222222222",
			Name:     "Figgjo Lotte saucer",
			Have:     6,
			Want:     6,
			Provider: domain.ProviderFinn,
		},
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestItemRepository_Load_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	items := sampleItems()
	data, err := json.Marshal(items)
	require.NoError(t, err)

	// Set data directly in miniredis.
	require.NoError(t, mr.Set("wishlist:items", string(data)))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, "Figgjo Lotte cup", got[0].Name)
	assert.Equal(t, 3, got[0].Have)
	assert.Equal(t, 6, got[0].Want)
	assert.Equal(t, domain.ProviderPrisguiden, got[0].Provider)
	require.NotNil(t, got[0].BestPrice)
	assert.Equal(t, 189.0, *got[0].BestPrice)
	assert.Equal(t, "Brukthandel AS", got[0].Vendor)
	assert.Nil(t, got[1].BestPrice)
	assert.Nil(t, got[1].LastChecked)
}

func TestItemRepository_Load_MissingKeyReturnsEmptyList(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestItemRepository_Load_CorruptDocumentReturnsEmptyList(t *testing.T) {
	repo, mr := setupTestRedis(t)

	// Set corrupted JSON data.
	require.NoError(t, mr.Set("wishlist:items", "{{not-valid-json"))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestItemRepository_Save_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	items := sampleItems()
	err := repo.Save(context.Background(), items)
	require.NoError(t, err)

	// Verify key exists in Redis.
	assert.True(t, mr.Exists("wishlist:items"))

	// Verify JSON content.
	raw, err := mr.Get("wishlist:items")
	require.NoError(t, err)

	var stored []domain.Item
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, items[0].ID, stored[0].ID)
	assert.Equal(t, items[1].ID, stored[1].ID)
}

func TestItemRepository_Save_NoExpiry(t *testing.T) {
	repo, mr := setupTestRedis(t)

	err := repo.Save(context.Background(), sampleItems())
	require.NoError(t, err)

	assert.Zero(t, mr.TTL("wishlist:items"))
}

func TestItemRepository_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)

	items := sampleItems()
	require.NoError(t, repo.Save(context.Background(), items))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestItemRepository_Save_EmptyListOverwrites(t *testing.T) {
	repo, _ := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), sampleItems()))
	require.NoError(t, repo.Save(context.Background(), []domain.Item{}))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
