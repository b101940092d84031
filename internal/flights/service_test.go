package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/internal/shared/config"
	"skybook/pkg/cache"
	"skybook/pkg/logger"
)

type stubSearchClient struct {
	result   *SearchResult
	airports []Airport
	err      error
	calls    int
}

func (s *stubSearchClient) SearchFlightOffers(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubSearchClient) SearchAirports(ctx context.Context, keyword string) ([]Airport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.airports, nil
}

// memoryCache is an in-process stand-in for the Redis cache service
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) Exists(ctx context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *memoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := m.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := fetcher()
	if err != nil {
		return err
	}
	if err := m.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return m.Get(ctx, key, dest)
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

// plainFormat renders histogram labels without touching exchange rates
type plainFormat struct{}

func (plainFormat) Convert(amount float64, from string) float64       { return amount }
func (plainFormat) ConvertTo(amount float64, from, to string) float64 { return amount }
func (plainFormat) Format(amount float64, from string) string {
	return fmt.Sprintf("$%.2f", amount)
}
func (plainFormat) Selected() string                 { return "USD" }
func (plainFormat) SetSelected(code string) error    { return nil }
func (plainFormat) Rate(code string) (float64, bool) { return 1.0, true }
func (plainFormat) Start(ctx context.Context)        {}
func (plainFormat) Stop()                            {}

func validSearchCriteria() SearchCriteria {
	return SearchCriteria{
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: "2026-09-14",
		TripType:      TripOneWay,
		Adults:        1,
	}
}

func TestSearch_Validation(t *testing.T) {
	svc := NewService(&stubSearchClient{}, newMemoryCache(), plainFormat{}, config.RedisConfig{}, logger.New())

	tests := []struct {
		name   string
		mutate func(c *SearchCriteria)
	}{
		{name: "bad origin code", mutate: func(c *SearchCriteria) { c.Origin = "NEWYORK" }},
		{name: "missing departure date", mutate: func(c *SearchCriteria) { c.DepartureDate = "" }},
		{name: "no adults", mutate: func(c *SearchCriteria) { c.Adults = 0 }},
		{name: "negative children", mutate: func(c *SearchCriteria) { c.Children = -1 }},
		{name: "unknown trip type", mutate: func(c *SearchCriteria) { c.TripType = "MULTI_CITY" }},
		{name: "round trip without return date", mutate: func(c *SearchCriteria) { c.TripType = TripRoundTrip }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := validSearchCriteria()
			tt.mutate(&criteria)

			_, err := svc.Search(context.Background(), criteria)
			assert.ErrorIs(t, err, ErrInvalidCriteria)
		})
	}
}

func TestSearch_ServesRepeatsFromCache(t *testing.T) {
	client := &stubSearchClient{result: &SearchResult{
		Offers: []FlightOffer{offerWith("a", 100, 0, "AA")},
		Dictionaries: Dictionaries{
			Carriers: map[string]string{"AA": "American Airlines"},
		},
	}}

	svc := NewService(client, newMemoryCache(), plainFormat{}, config.RedisConfig{
		SearchResultTTL: time.Minute,
	}, logger.New())

	first, err := svc.Search(context.Background(), validSearchCriteria())
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []AirlineFacet{{Code: "AA", Name: "American Airlines"}}, first.Airlines)
	assert.Equal(t, []int{0}, first.StopCounts)

	// cache fill happens off the request path
	require.Eventually(t, func() bool {
		second, err := svc.Search(context.Background(), validSearchCriteria())
		return err == nil && second.CacheHit
	}, time.Second, 10*time.Millisecond)

	callsAfterFill := client.calls
	third, err := svc.Search(context.Background(), validSearchCriteria())
	require.NoError(t, err)
	assert.True(t, third.CacheHit)
	assert.Equal(t, callsAfterFill, client.calls, "provider is not asked again for identical criteria")
}

func TestFilter_AppliesStateAndHistogram(t *testing.T) {
	client := &stubSearchClient{result: &SearchResult{
		Offers: []FlightOffer{
			offerWith("cheap", 80, 0, "AA"),
			offerWith("mid", 100, 0, "AA"),
			offerWith("ceiling", 250, 1, "BA"),
			offerWith("expensive", 400, 0, "AA"),
		},
	}}

	svc := NewService(client, newMemoryCache(), plainFormat{}, config.RedisConfig{}, logger.New())

	resp, err := svc.Filter(context.Background(), validSearchCriteria(), FilterState{
		MaxPrice: 250,
		SortBy:   SortByPrice,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, []string{"cheap", "mid", "ceiling"}, offerIDs(resp.Offers))
	require.Len(t, resp.Legs, 3)
	assert.Len(t, resp.Histogram, 10)
	assert.Equal(t, "$80.00", resp.Histogram[0].Label)
}

func TestLookupAirports(t *testing.T) {
	client := &stubSearchClient{airports: []Airport{
		{IataCode: "LHR", Name: "Heathrow", City: "London", Country: "GB"},
	}}

	svc := NewService(client, newMemoryCache(), plainFormat{}, config.RedisConfig{
		AirportLookupTTL: time.Hour,
	}, logger.New())

	t.Run("keyword too short", func(t *testing.T) {
		_, err := svc.LookupAirports(context.Background(), "l")
		assert.ErrorIs(t, err, ErrInvalidCriteria)
	})

	t.Run("resolves and caches", func(t *testing.T) {
		airports, err := svc.LookupAirports(context.Background(), "lon")
		require.NoError(t, err)
		require.Len(t, airports, 1)
		assert.Equal(t, "LHR", airports[0].IataCode)
	})
}
