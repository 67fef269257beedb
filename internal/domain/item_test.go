package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestItem_Missing(t *testing.T) {
	tests := []struct {
		name string
		have int
		want int
		miss int
	}{
		{"needs more", 2, 6, 4},
		{"exactly enough", 6, 6, 0},
		{"has surplus", 8, 6, 0},
		{"wants nothing", 3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{Have: tt.have, Want: tt.want}
			assert.Equal(t, tt.miss, item.Missing())
		})
	}
}

func TestItem_LookupQuery_FallsBackToName(t *testing.T) {
	item := Item{Name: "Arabia Ruska dinner plate"}
	assert.Equal(t, "Arabia Ruska dinner plate", item.LookupQuery())

	item.Query = "arabia ruska 25cm"
	assert.Equal(t, "arabia ruska 25cm", item.LookupQuery())
}

func TestItem_ApplyOffer(t *testing.T) {
	now := time.Now().UTC()
	item := Item{Name: "Gravy boat"}

	item.ApplyOffer(249.50, "NOK", "Brukthandel AS", "https://shop.example/offer/1", now)

	assert.Equal(t, 249.50, *item.BestPrice)
	assert.Equal(t, "NOK", item.Currency)
	assert.Equal(t, "Brukthandel AS", item.Vendor)
	assert.Equal(t, "https://shop.example/offer/1", item.OfferURL)
	assert.Equal(t, now, *item.LastChecked)
}

func TestItem_ClearOffer_ResetsAllFieldsTogether(t *testing.T) {
	now := time.Now().UTC()
	item := Item{Name: "Gravy boat"}
	item.ApplyOffer(249.50, "NOK", "Brukthandel AS", "https://shop.example/offer/1", now)

	later := now.Add(time.Hour)
	item.ClearOffer(later)

	assert.Nil(t, item.BestPrice)
	assert.Empty(t, item.Currency)
	assert.Empty(t, item.Vendor)
	assert.Empty(t, item.OfferURL)
	assert.Equal(t, later, *item.LastChecked, "failed check must still stamp the attempt time")
}

func TestProvider_Valid(t *testing.T) {
	assert.True(t, ProviderPrisguiden.Valid())
	assert.True(t, ProviderPrisjakt.Valid())
	assert.True(t, ProviderFinn.Valid())
	assert.False(t, Provider("ebay").Valid())
	assert.False(t, Provider("").Valid())
}

func TestCalculateTotals_Empty(t *testing.T) {
	totals := CalculateTotals(nil)

	assert.Zero(t, totals.MissingTotal)
	assert.Zero(t, totals.EstimatedCost)
	assert.Equal(t, HomeCurrency, totals.Currency)
}

func TestCalculateTotals_MissingWithoutPriceContributesZero(t *testing.T) {
	items := []Item{
		{Name: "Plate", Have: 2, Want: 6},
	}

	totals := CalculateTotals(items)

	assert.Equal(t, 4, totals.MissingTotal)
	assert.Zero(t, totals.EstimatedCost)
}

func TestCalculateTotals_MissingWithPrice(t *testing.T) {
	items := []Item{
		{Name: "Plate", Have: 2, Want: 6, BestPrice: floatPtr(150)},
	}

	totals := CalculateTotals(items)

	assert.Equal(t, 4, totals.MissingTotal)
	assert.Equal(t, 600.0, totals.EstimatedCost)
}

func TestCalculateTotals_MixedItems(t *testing.T) {
	items := []Item{
		{Name: "Plate", Have: 3, Want: 6, BestPrice: floatPtr(100)}, // missing 3, priced
		{Name: "Cup", Have: 4, Want: 4, BestPrice: floatPtr(50)},    // complete
		{Name: "Bowl", Have: 0, Want: 2},                            // missing 2, no price
		{Name: "Saucer", Have: 1, Want: 3, BestPrice: floatPtr(0)},  // zero price is unknown
	}

	totals := CalculateTotals(items)

	assert.Equal(t, 3+0+2+2, totals.MissingTotal)
	assert.Equal(t, 300.0, totals.EstimatedCost)
}

func TestCalculateTotals_NeverNegative(t *testing.T) {
	items := []Item{
		{Name: "Cup", Have: 10, Want: 2, BestPrice: floatPtr(80)},
	}

	totals := CalculateTotals(items)

	assert.Zero(t, totals.MissingTotal)
	assert.Zero(t, totals.EstimatedCost)
}
