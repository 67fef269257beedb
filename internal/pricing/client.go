package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gretehalvorsen/wishlist/internal/domain"
)

// ErrLookup marks any failure to obtain a usable price for an item:
// transport errors, non-200 responses, undecodable payloads, or a
// foreign-currency quote the upstream could not convert. Callers treat
// all of these the same way, so they are folded into one sentinel.
var ErrLookup = errors.New("price lookup failed")

// Quote is a price offer normalized into the home currency.
type Quote struct {
	Price    float64
	Currency string
	Vendor   string
	OfferURL string
}

// Client looks up the current best offer for a search query.
type Client interface {
	Lookup(ctx context.Context, provider domain.Provider, query string) (*Quote, error)
}

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPClient implements Client against the price lookup API.
type HTTPClient struct {
	httpClient HTTPDoer
	baseURL    string
}

// NewHTTPClient creates a pricing client talking to the given base URL.
func NewHTTPClient(httpClient HTTPDoer, baseURL string) *HTTPClient {
	return &HTTPClient{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

type lookupResponse struct {
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	ConvertedNOK float64 `json:"convertedNOK"`
	Vendor       string  `json:"vendor"`
	URL          string  `json:"url"`
}

// Lookup queries the price API and normalizes the quote into NOK. A
// quote in a foreign currency without a conversion counts as a failed
// lookup because the wishlist totals only make sense in one currency.
func (c *HTTPClient) Lookup(ctx context.Context, provider domain.Provider, query string) (*Quote, error) {
	q := url.Values{}
	q.Set("provider", string(provider))
	q.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/lookup?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned %d", ErrLookup, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrLookup, err)
	}

	price, err := normalize(body)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Price:    price,
		Currency: domain.HomeCurrency,
		Vendor:   body.Vendor,
		OfferURL: body.URL,
	}, nil
}

func normalize(body lookupResponse) (float64, error) {
	switch {
	case body.Currency == domain.HomeCurrency && body.Price > 0:
		return body.Price, nil
	case body.ConvertedNOK > 0:
		return body.ConvertedNOK, nil
	default:
		return 0, fmt.Errorf("%w: no usable price in %q quote", ErrLookup, body.Currency)
	}
}
