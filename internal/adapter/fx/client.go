package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"digital-payment-service/config"

	"github.com/shopspring/decimal"
)

const providerName = "open-er-api"

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches exchange rates from an open.er-api.com compatible endpoint.
// No retries here: the rate resolver owns the fallback chain, so a failed
// fetch just moves it to the next source.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient HTTPClient
}

// NewClient creates an FX provider client from configuration.
func NewClient(cfg config.FXConfig, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		timeout:    10 * time.Second,
		httpClient: httpClient,
	}
}

type rateTableResponse struct {
	Result string                     `json:"result"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// FetchRate fetches the latest rate table for the base currency and picks the
// quote currency out of it.
func (c *Client) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/latest/%s", c.baseURL, from)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build fx request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read fx response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fx provider returned %d: %s", resp.StatusCode, body)
	}

	var table rateTableResponse
	if err := json.Unmarshal(body, &table); err != nil {
		return decimal.Zero, fmt.Errorf("parse fx response: %w", err)
	}
	if table.Result != "success" {
		return decimal.Zero, fmt.Errorf("fx provider result %q", table.Result)
	}

	rate, ok := table.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("fx provider has no rate for %s/%s", from, to)
	}
	if rate.IsZero() || rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("fx provider returned non-positive rate %s for %s/%s", rate, from, to)
	}
	return rate, nil
}

// Name identifies this provider in rate snapshots.
func (c *Client) Name() string {
	return providerName
}
