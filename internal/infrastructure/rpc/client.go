package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/resilience"
)

// rateLimitCode is the JSON-RPC error code the ledger service returns when a
// caller exceeds its request quota.
const rateLimitCode = -32005

// ErrRateLimited indicates the ledger service rejected a call because of rate
// limiting, via HTTP 429 or the JSON-RPC rate-limit error code.
var ErrRateLimited = errors.New("ledger rate limited")

// IsRateLimited reports whether err carries the rate-limit signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Client is a JSON-RPC 2.0 HTTP client for the Circles ledger query service.
// Rate-limited calls are retried with exponential backoff; every other
// failure propagates immediately. Safe for concurrent use.
type Client struct {
	endpoint  string
	client    *http.Client
	retry     resilience.Policy
	requestID atomic.Uint64
}

// NewClient creates a new ledger RPC client
func NewClient(cfg *config.RPCConfig) *Client {
	return &Client{
		endpoint: cfg.URL,
		client:   &http.Client{Timeout: cfg.Timeout},
		retry: resilience.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.MaxRetryDelay,
			Retryable:   IsRateLimited,
		},
	}
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Call invokes method with params and decodes the response into result,
// which may be nil. Exhausting the retry budget on rate limits returns an
// error satisfying errors.Is(err, ErrRateLimited).
func (c *Client) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	return resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		return c.call(ctx, method, params, result)
	})
}

// call performs a single JSON-RPC exchange.
func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", method, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		if rpcResp.Error.Code == rateLimitCode {
			return fmt.Errorf("%s: %w", rpcResp.Error, ErrRateLimited)
		}
		return rpcResp.Error
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	return nil
}
