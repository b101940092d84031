package currency

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/internal/shared/config"
	"skybook/pkg/logger"
)

type stubRatesClient struct {
	rates map[string]float64
	err   error
}

func (s *stubRatesClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

func newTestConverter(t *testing.T, selected string) Converter {
	t.Helper()
	return NewConverter(config.CurrencyConfig{
		BaseCurrency:    "USD",
		DefaultSelected: selected,
	}, nil, logger.New())
}

func TestConverter_ConvertTo(t *testing.T) {
	c := newTestConverter(t, "USD")

	tests := []struct {
		name     string
		amount   float64
		from     string
		to       string
		expected float64
	}{
		{name: "same currency", amount: 100, from: "USD", to: "USD", expected: 100},
		{name: "usd to eur", amount: 100, from: "USD", to: "EUR", expected: 92},
		{name: "eur back to usd", amount: 92, from: "EUR", to: "USD", expected: 100},
		{name: "cross rate eur to gbp", amount: 92, from: "EUR", to: "GBP", expected: 79},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, c.ConvertTo(tt.amount, tt.from, tt.to), 1e-9)
		})
	}
}

func TestConverter_UnknownRatePassesThrough(t *testing.T) {
	c := newTestConverter(t, "USD")

	// Missing source or target rate leaves the amount unchanged
	assert.Equal(t, 150.0, c.ConvertTo(150, "XXX", "USD"))
	assert.Equal(t, 150.0, c.ConvertTo(150, "USD", "XXX"))
}

func TestConverter_Format(t *testing.T) {
	c := newTestConverter(t, "EUR")

	assert.Equal(t, "€92.00", c.Format(100, "USD"))
}

func TestConverter_SetSelected(t *testing.T) {
	c := newTestConverter(t, "USD")

	require.NoError(t, c.SetSelected("INR"))
	assert.Equal(t, "INR", c.Selected())

	err := c.SetSelected("ZZZ")
	require.Error(t, err)
	assert.Equal(t, "INR", c.Selected(), "failed switch keeps the previous selection")
}

func TestConverter_RefreshReplacesRates(t *testing.T) {
	client := &stubRatesClient{rates: map[string]float64{"USD": 1.0, "EUR": 0.5}}
	c := NewConverter(config.CurrencyConfig{DefaultSelected: "USD"}, client, logger.New()).(*converter)

	c.refresh(context.Background())

	rate, ok := c.Rate("EUR")
	require.True(t, ok)
	assert.Equal(t, 0.5, rate)

	// A known code from the fallback table disappears with the new table
	_, ok = c.Rate("NGN")
	assert.False(t, ok)
}

func TestConverter_RefreshFailureKeepsTable(t *testing.T) {
	client := &stubRatesClient{err: errors.New("connection refused")}
	c := NewConverter(config.CurrencyConfig{DefaultSelected: "USD"}, client, logger.New()).(*converter)

	before, ok := c.Rate("EUR")
	require.True(t, ok)

	c.refresh(context.Background())

	after, ok := c.Rate("EUR")
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "$", Symbol("USD"))
	assert.Equal(t, "€", Symbol("EUR"))
	assert.Equal(t, "XOF ", Symbol("XOF"), "unknown codes fall back to the code prefix")
}
