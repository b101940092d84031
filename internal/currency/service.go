package currency

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"skybook/internal/shared/config"
	"skybook/pkg/logger"
)

// Converter converts and formats monetary amounts between currencies.
// The rate table is keyed by currency code relative to the base currency
// and refreshed periodically; the embedded fallback table keeps conversion
// available when the rate service is unreachable.
type Converter interface {
	Convert(amount float64, from string) float64
	ConvertTo(amount float64, from, to string) float64
	Format(amount float64, from string) string
	Selected() string
	SetSelected(code string) error
	Rate(code string) (float64, bool)
	Start(ctx context.Context)
	Stop()
}

type converter struct {
	mu       sync.RWMutex
	rates    map[string]float64
	selected string

	client   RatesClient
	interval time.Duration
	logger   *logger.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewConverter creates a converter seeded with the embedded fallback rates.
func NewConverter(cfg config.CurrencyConfig, client RatesClient, log *logger.Logger) Converter {
	rates := make(map[string]float64, len(fallbackRates))
	for code, rate := range fallbackRates {
		rates[code] = rate
	}

	return &converter{
		rates:    rates,
		selected: cfg.DefaultSelected,
		client:   client,
		interval: cfg.RefreshInterval,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Convert converts amount from the given currency into the currently
// selected one. If either rate is unknown the amount passes through
// unchanged so pricing stays visible in degraded mode.
func (c *converter) Convert(amount float64, from string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.convertLocked(amount, from, c.selected)
}

// ConvertTo converts amount between two explicit currencies.
func (c *converter) ConvertTo(amount float64, from, to string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.convertLocked(amount, from, to)
}

func (c *converter) convertLocked(amount float64, from, to string) float64 {
	fromRate, okFrom := c.rates[from]
	toRate, okTo := c.rates[to]
	if !okFrom || !okTo || fromRate == 0 {
		return amount
	}
	// Normalize to the base currency, then apply the target rate.
	return amount / fromRate * toRate
}

// Format renders a converted amount with the selected currency's symbol
// and a fixed two-decimal representation.
func (c *converter) Format(amount float64, from string) string {
	c.mu.RLock()
	selected := c.selected
	converted := c.convertLocked(amount, from, selected)
	c.mu.RUnlock()

	return fmt.Sprintf("%s%.2f", Symbol(selected), converted)
}

func (c *converter) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// SetSelected switches the display currency. Unknown codes are rejected so
// the converter never silently formats with a rate it does not hold.
func (c *converter) SetSelected(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rates[code]; !ok {
		return fmt.Errorf("unknown currency code %q", code)
	}
	c.selected = code
	return nil
}

func (c *converter) Rate(code string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[code]
	return rate, ok
}

// Start launches the periodic refresh loop. The first refresh runs
// immediately so a reachable rate service replaces the fallback table
// at startup.
func (c *converter) Start(ctx context.Context) {
	go func() {
		c.refresh(ctx)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.refresh(ctx)
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (c *converter) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// refresh pulls fresh rates; on failure the current table (fallback or the
// last successful fetch) stays in place.
func (c *converter) refresh(ctx context.Context) {
	if c.client == nil {
		return
	}

	rates, err := c.client.FetchRates(ctx)
	if err != nil {
		c.logger.Warn("Exchange-rate refresh failed, keeping current table",
			slog.String("error", err.Error()),
		)
		return
	}

	c.mu.Lock()
	c.rates = rates
	c.mu.Unlock()

	c.logger.Info("Exchange rates refreshed",
		slog.Int("currencies", len(rates)),
	)
}
