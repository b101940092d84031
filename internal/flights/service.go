package flights

import (
	"context"
	"errors"
	"fmt"

	"skybook/internal/currency"
	"skybook/internal/shared/config"
	"skybook/pkg/cache"
	"skybook/pkg/logger"
)

var ErrInvalidCriteria = errors.New("invalid search criteria")

// SearchClient interface for the flight-search provider (kept small so
// controllers and tests can swap the real client out)
type SearchClient interface {
	SearchFlightOffers(ctx context.Context, criteria SearchCriteria) (*SearchResult, error)
	SearchAirports(ctx context.Context, keyword string) ([]Airport, error)
}

// SearchResponse is a search result enriched with the filter facets
type SearchResponse struct {
	Criteria     SearchCriteria `json:"criteria"`
	Offers       []FlightOffer  `json:"offers"`
	Dictionaries Dictionaries   `json:"dictionaries"`
	Airlines     []AirlineFacet `json:"airlines"`
	StopCounts   []int          `json:"stop_counts"`
	CacheHit     bool           `json:"cache_hit"`
}

// FilterResponse is the filtered/sorted view over a search result
type FilterResponse struct {
	Offers    []FlightOffer  `json:"offers"`
	Histogram []PriceBucket  `json:"histogram"`
	Legs      [][]LegSummary `json:"legs"` // display legs per offer, same order
	Total     int            `json:"total"`
}

// Service interface defines the contract for flight search and filtering
type Service interface {
	Search(ctx context.Context, criteria SearchCriteria) (*SearchResponse, error)
	Filter(ctx context.Context, criteria SearchCriteria, state FilterState) (*FilterResponse, error)
	LookupAirports(ctx context.Context, keyword string) ([]Airport, error)
}

type service struct {
	client    SearchClient
	cache     cache.Service
	converter currency.Converter
	cfg       config.RedisConfig
	logger    *logger.Logger
}

// NewService creates a new flight service instance
func NewService(client SearchClient, cacheService cache.Service, converter currency.Converter, cfg config.RedisConfig, log *logger.Logger) Service {
	return &service{
		client:    client,
		cache:     cacheService,
		converter: converter,
		cfg:       cfg,
		logger:    log,
	}
}

// Search runs a provider search, serving repeated submissions of the same
// criteria from the Redis cache
func (s *service) Search(ctx context.Context, criteria SearchCriteria) (*SearchResponse, error) {
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}

	result, cacheHit, err := s.searchCached(ctx, criteria)
	if err != nil {
		return nil, err
	}

	s.logger.LogFlightSearch(ctx, criteria.Origin, criteria.Destination, len(result.Offers), cacheHit)

	return &SearchResponse{
		Criteria:     criteria,
		Offers:       result.Offers,
		Dictionaries: result.Dictionaries,
		Airlines:     AirlineFacets(result.Offers, result.Dictionaries),
		StopCounts:   StopCountFacets(result.Offers),
		CacheHit:     cacheHit,
	}, nil
}

// Filter re-runs the (cached) search and applies the user's filter state
// plus the price-distribution histogram over the filtered collection
func (s *service) Filter(ctx context.Context, criteria SearchCriteria, state FilterState) (*FilterResponse, error) {
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}

	result, _, err := s.searchCached(ctx, criteria)
	if err != nil {
		return nil, err
	}

	filtered := ApplyFilters(result.Offers, state)
	histogram := PriceHistogram(filtered, s.converter.Format)

	roundTrip := criteria.TripType == TripRoundTrip
	legs := make([][]LegSummary, len(filtered))
	for i := range filtered {
		legs[i] = PresentOffer(&filtered[i], roundTrip, result.Dictionaries)
	}

	return &FilterResponse{
		Offers:    filtered,
		Histogram: histogram,
		Legs:      legs,
		Total:     len(filtered),
	}, nil
}

// LookupAirports resolves a free-text keyword to airport records, cached
// for a day since reference data rarely changes
func (s *service) LookupAirports(ctx context.Context, keyword string) ([]Airport, error) {
	if len(keyword) < 2 {
		return nil, fmt.Errorf("%w: keyword must be at least 2 characters", ErrInvalidCriteria)
	}

	var airports []Airport
	err := s.cache.GetOrSet(ctx, cache.AirportLookupKey(keyword), s.cfg.AirportLookupTTL,
		func() (interface{}, error) {
			return s.client.SearchAirports(ctx, keyword)
		}, &airports)
	if err != nil {
		return nil, err
	}

	return airports, nil
}

func (s *service) searchCached(ctx context.Context, criteria SearchCriteria) (*SearchResult, bool, error) {
	key := cache.SearchResultKey(criteria)

	var cached SearchResult
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, true, nil
	}

	result, err := s.client.SearchFlightOffers(ctx, criteria)
	if err != nil {
		return nil, false, err
	}

	// cache fill is best-effort
	go func() {
		_ = s.cache.Set(context.Background(), key, result, s.cfg.SearchResultTTL)
	}()

	return result, false, nil
}

func validateCriteria(criteria SearchCriteria) error {
	if len(criteria.Origin) != 3 || len(criteria.Destination) != 3 {
		return fmt.Errorf("%w: origin and destination must be 3-letter IATA codes", ErrInvalidCriteria)
	}
	if criteria.DepartureDate == "" {
		return fmt.Errorf("%w: departure date is required", ErrInvalidCriteria)
	}
	if criteria.Adults < 1 {
		return fmt.Errorf("%w: at least one adult passenger is required", ErrInvalidCriteria)
	}
	if criteria.Children < 0 || criteria.Infants < 0 {
		return fmt.Errorf("%w: passenger counts cannot be negative", ErrInvalidCriteria)
	}
	if !criteria.TripType.IsValid() {
		return fmt.Errorf("%w: trip type must be ONE_WAY or ROUND_TRIP", ErrInvalidCriteria)
	}
	if criteria.TripType == TripRoundTrip && criteria.ReturnDate == "" {
		return fmt.Errorf("%w: return date is required for round-trip searches", ErrInvalidCriteria)
	}
	return nil
}
