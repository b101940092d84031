package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RatesClient fetches exchange rates from an external rate service.
type RatesClient interface {
	FetchRates(ctx context.Context) (map[string]float64, error)
}

type httpRatesClient struct {
	url        string
	httpClient *http.Client
}

// NewRatesClient creates a rate-service client for the given endpoint.
func NewRatesClient(url string, timeout time.Duration) RatesClient {
	return &httpRatesClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ratesResponse is the open.er-api.com response shape. Only the fields we
// consume are decoded; anything malformed is rejected at this boundary.
type ratesResponse struct {
	Result string             `json:"result"`
	Base   string             `json:"base_code"`
	Rates  map[string]float64 `json:"rates"`
}

func (c *httpRatesClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates request failed (%d): %s", resp.StatusCode, string(body))
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rates response: %w", err)
	}

	if parsed.Result != "success" || len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("rate service returned no usable rates (result=%q)", parsed.Result)
	}

	return parsed.Rates, nil
}
