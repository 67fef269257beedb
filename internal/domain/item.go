package domain

import "time"

// HomeCurrency is the currency in which wishlist totals are computed. The
// external lookup service normalizes foreign offers into this currency.
const HomeCurrency = "NOK"

// Provider identifies an external price lookup source.
type Provider string

const (
	ProviderPrisguiden Provider = "prisguiden"
	ProviderPrisjakt   Provider = "prisjakt"
	ProviderFinn       Provider = "finn"
)

// DefaultProvider is used when an item is created without an explicit provider.
const DefaultProvider = ProviderPrisguiden

// Providers lists all known lookup providers in display order.
func Providers() []Provider {
	return []Provider{ProviderPrisguiden, ProviderPrisjakt, ProviderFinn}
}

// Valid reports whether p is a known lookup provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderPrisguiden, ProviderPrisjakt, ProviderFinn:
		return true
	}
	return false
}

// Item represents one wishlist entry: a physical piece the owner wants a
// certain quantity of, together with the latest known offer for it.
//
// The offer fields (BestPrice, Currency, Vendor, OfferURL) are only ever
// written as a group: a successful lookup sets all of them, a failed lookup
// clears all of them. LastChecked is stamped on every lookup attempt, so a
// failed check is distinguishable from an item that was never checked.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Have     int      `json:"have"`
	Want     int      `json:"want"`
	Query    string   `json:"query,omitempty"`
	Provider Provider `json:"provider"`

	BestPrice *float64 `json:"best_price,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	Vendor    string   `json:"vendor,omitempty"`
	OfferURL  string   `json:"offer_url,omitempty"`

	LastChecked *time.Time `json:"last_checked,omitempty"`
}

// Missing returns how many pieces are still needed, never negative.
func (i *Item) Missing() int {
	if i.Want > i.Have {
		return i.Want - i.Have
	}
	return 0
}

// LookupQuery returns the search term to send to the price service: the
// item's query, falling back to its name when the query is blank.
func (i *Item) LookupQuery() string {
	if i.Query != "" {
		return i.Query
	}
	return i.Name
}

// ApplyOffer records a successful lookup result on the item and stamps the
// attempt time.
func (i *Item) ApplyOffer(price float64, currency, vendor, offerURL string, at time.Time) {
	i.BestPrice = &price
	i.Currency = currency
	i.Vendor = vendor
	i.OfferURL = offerURL
	i.LastChecked = &at
}

// ClearOffer resets all offer fields together after a failed lookup and
// stamps the attempt time.
func (i *Item) ClearOffer(at time.Time) {
	i.BestPrice = nil
	i.Currency = ""
	i.Vendor = ""
	i.OfferURL = ""
	i.LastChecked = &at
}

// Totals holds the wishlist-wide aggregate derived from the item collection.
type Totals struct {
	MissingTotal  int     `json:"missing_total"`
	EstimatedCost float64 `json:"estimated_cost"`
	Currency      string  `json:"currency"`
}

// CalculateTotals derives the aggregate from the given items. An item
// contributes to the estimated cost only when it is both missing pieces and
// carries a known positive price; everything else contributes exactly zero.
func CalculateTotals(items []Item) Totals {
	totals := Totals{Currency: HomeCurrency}
	for idx := range items {
		missing := items[idx].Missing()
		totals.MissingTotal += missing
		if missing > 0 && items[idx].BestPrice != nil && *items[idx].BestPrice > 0 {
			totals.EstimatedCost += float64(missing) * *items[idx].BestPrice
		}
	}
	return totals
}
