package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"digital-payment-service/config"
	"digital-payment-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.GatewayClient against the gateway's REST API.
type Client struct {
	baseURL    string
	apiSecret  string
	timeout    time.Duration
	retries    int
	baseWait   time.Duration
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.GatewayConfig, httpClient HTTPClient, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiSecret:  cfg.APISecret,
		timeout:    cfg.Timeout,
		retries:    cfg.FetchRetries,
		baseWait:   cfg.RetryBaseWait,
		httpClient: httpClient,
		log:        log,
	}
}

// FetchStatus retrieves the gateway's authoritative record of a payment.
// Network errors and 5xx responses are retried with exponential backoff;
// 4xx responses return immediately since they will not self-resolve.
func (c *Client) FetchStatus(ctx context.Context, paymentID string) (*ports.GatewayPayment, error) {
	url := fmt.Sprintf("%s/payments/%s", c.baseURL, paymentID)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := c.baseWait << (attempt - 1)
			c.log.Warn().
				Str("payment_id", paymentID).
				Int("attempt", attempt+1).
				Dur("backoff", wait).
				Msg("gateway fetch retry")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		payment, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return payment, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("gateway fetch exhausted retries: %w", lastErr)
}

// fetchOnce performs a single status fetch. The bool reports retryability.
func (c *Client) fetchOnce(ctx context.Context, url string) (*ports.GatewayPayment, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build gateway request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read gateway response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, ports.ErrUpstreamPaymentNotFound
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	case resp.StatusCode >= 400:
		return nil, false, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}

	payment, err := parsePayment(body)
	if err != nil {
		return nil, false, err
	}
	return payment, false, nil
}

// Cancel cancels (part of) a payment upstream. Not retried: a cancel that
// failed ambiguously must surface to the caller, not be replayed blindly.
func (c *Client) Cancel(ctx context.Context, paymentID string, amount int64, currency, reason string) (*ports.GatewayPayment, error) {
	url := fmt.Sprintf("%s/payments/%s/cancel", c.baseURL, paymentID)

	payload, err := json.Marshal(map[string]any{
		"amount":   amount,
		"currency": currency,
		"reason":   reason,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal cancel request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build cancel request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway cancel request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read cancel response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ports.ErrUpstreamPaymentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway cancel returned %d: %s", resp.StatusCode, body)
	}

	return parsePayment(body)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "PortOne "+c.apiSecret)
}

// parsePayment decodes a gateway payment, preserving the raw payload for
// audit. Unrecognized status values are kept as-is; the verification flow
// decides what to do with them.
func parsePayment(body []byte) (*ports.GatewayPayment, error) {
	var payment ports.GatewayPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("parse gateway payment: %w", err)
	}
	payment.Raw = body
	return &payment, nil
}
