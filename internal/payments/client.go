package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"skybook/internal/shared/config"
)

// Client interface for the payment gateway (swappable in tests)
type Client interface {
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*Authorization, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error)
}

type client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a payment gateway client from configuration
func NewClient(cfg config.PaymentConfig) Client {
	return &client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// gatewayEnvelope is the gateway's standard response wrapper
type gatewayEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction opens a checkout session with the gateway. The
// returned authorization URL is where the payer completes the flow.
func (c *client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*Authorization, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var auth Authorization
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("failed to parse authorization response: %w", err)
	}
	if auth.Reference == "" {
		return nil, fmt.Errorf("gateway returned no transaction reference")
	}

	return &auth, nil
}

// VerifyTransaction asks the gateway for the authoritative state of a
// transaction by reference
func (c *client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	data, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	var result VerifyResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse verification response: %w", err)
	}

	return &result, nil
}

func (c *client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway request failed (%d): %s", resp.StatusCode, string(raw))
	}

	var envelope gatewayEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse gateway envelope: %w", err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("gateway rejected request: %s", envelope.Message)
	}

	return envelope.Data, nil
}
