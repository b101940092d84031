package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"skybook/internal/shared/config"
)

// AmadeusClient talks to the Amadeus self-service flight APIs. The OAuth2
// client-credentials token is cached on the client and refreshed
// transparently when expired.
type AmadeusClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewAmadeusClient creates a flight-search client from configuration
func NewAmadeusClient(cfg config.AmadeusConfig) *AmadeusClient {
	return &AmadeusClient{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// refreshToken exchanges client credentials for a fresh access token
func (c *AmadeusClient) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("token response carried no access token")
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	// renew slightly early to avoid using a token at the edge of expiry
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

// getToken returns the cached token, refreshing it when expired
func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

// doGet performs an authorized GET and returns the response body
func (c *AmadeusClient) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider request failed (%d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// raw provider response shapes. Decoded here at the boundary and converted
// into typed domain records; nothing downstream sees provider JSON.

type rawOffersResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
				Aircraft    struct {
					Code string `json:"code"`
				} `json:"aircraft"`
				Duration string `json:"duration"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
		NumberOfBookableSeats  int      `json:"numberOfBookableSeats"`
	} `json:"data"`
	Dictionaries struct {
		Carriers map[string]string `json:"carriers"`
		Aircraft map[string]string `json:"aircraft"`
	} `json:"dictionaries"`
}

type rawLocationsResponse struct {
	Data []struct {
		IataCode string `json:"iataCode"`
		Name     string `json:"name"`
		Address  struct {
			CityName    string `json:"cityName"`
			CountryName string `json:"countryName"`
		} `json:"address"`
	} `json:"data"`
}

// SearchFlightOffers queries the flight-offers search endpoint and
// normalizes the response into domain records
func (c *AmadeusClient) SearchFlightOffers(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	query := url.Values{}
	query.Set("originLocationCode", criteria.Origin)
	query.Set("destinationLocationCode", criteria.Destination)
	query.Set("departureDate", criteria.DepartureDate)
	query.Set("adults", strconv.Itoa(criteria.Adults))
	if criteria.Children > 0 {
		query.Set("children", strconv.Itoa(criteria.Children))
	}
	if criteria.Infants > 0 {
		query.Set("infants", strconv.Itoa(criteria.Infants))
	}
	if criteria.TripType == TripRoundTrip && criteria.ReturnDate != "" {
		query.Set("returnDate", criteria.ReturnDate)
	}
	if criteria.CabinClass != "" {
		query.Set("travelClass", strings.ToUpper(criteria.CabinClass))
	}
	if criteria.NonStop {
		query.Set("nonStop", "true")
	}
	if criteria.MaxPrice > 0 {
		query.Set("maxPrice", strconv.Itoa(int(criteria.MaxPrice)))
	}
	query.Set("currencyCode", "USD")

	body, err := c.doGet(ctx, "/v2/shopping/flight-offers", query)
	if err != nil {
		return nil, fmt.Errorf("flight-offers search failed: %w", err)
	}

	var raw rawOffersResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flight-offers response: %w", err)
	}

	result := &SearchResult{
		Offers: make([]FlightOffer, 0, len(raw.Data)),
		Dictionaries: Dictionaries{
			Carriers: raw.Dictionaries.Carriers,
			Aircraft: raw.Dictionaries.Aircraft,
		},
	}

	for _, d := range raw.Data {
		total, err := strconv.ParseFloat(d.Price.Total, 64)
		if err != nil {
			return nil, fmt.Errorf("offer %s carries malformed price %q: %w", d.ID, d.Price.Total, err)
		}
		if len(d.Itineraries) == 0 {
			return nil, fmt.Errorf("offer %s carries no itineraries", d.ID)
		}

		offer := FlightOffer{
			ID: d.ID,
			Price: Price{
				Total:    total,
				Currency: d.Price.Currency,
			},
			ValidatingAirlineCodes: d.ValidatingAirlineCodes,
			NumberOfBookableSeats:  d.NumberOfBookableSeats,
		}

		for _, it := range d.Itineraries {
			if len(it.Segments) == 0 {
				return nil, fmt.Errorf("offer %s carries an itinerary with no segments", d.ID)
			}
			itinerary := Itinerary{Duration: it.Duration}
			for _, seg := range it.Segments {
				depAt, err := parseSegmentTime(seg.Departure.At)
				if err != nil {
					return nil, fmt.Errorf("offer %s carries malformed departure time %q: %w", d.ID, seg.Departure.At, err)
				}
				arrAt, err := parseSegmentTime(seg.Arrival.At)
				if err != nil {
					return nil, fmt.Errorf("offer %s carries malformed arrival time %q: %w", d.ID, seg.Arrival.At, err)
				}
				itinerary.Segments = append(itinerary.Segments, Segment{
					Departure:    FlightEndpoint{IataCode: seg.Departure.IataCode, At: depAt},
					Arrival:      FlightEndpoint{IataCode: seg.Arrival.IataCode, At: arrAt},
					CarrierCode:  seg.CarrierCode,
					FlightNumber: seg.CarrierCode + seg.Number,
					AircraftCode: seg.Aircraft.Code,
					Duration:     seg.Duration,
				})
			}
			offer.Itineraries = append(offer.Itineraries, itinerary)
		}

		result.Offers = append(result.Offers, offer)
	}

	return result, nil
}

// SearchAirports queries the airport keyword lookup endpoint
func (c *AmadeusClient) SearchAirports(ctx context.Context, keyword string) ([]Airport, error) {
	query := url.Values{}
	query.Set("subType", "AIRPORT")
	query.Set("keyword", keyword)
	query.Set("page[limit]", "10")

	body, err := c.doGet(ctx, "/v1/reference-data/locations", query)
	if err != nil {
		return nil, fmt.Errorf("airport lookup failed: %w", err)
	}

	var raw rawLocationsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse airport lookup response: %w", err)
	}

	airports := make([]Airport, 0, len(raw.Data))
	for _, d := range raw.Data {
		airports = append(airports, Airport{
			IataCode: d.IataCode,
			Name:     d.Name,
			City:     d.Address.CityName,
			Country:  d.Address.CountryName,
		})
	}

	return airports, nil
}

// parseSegmentTime handles the provider's local timestamps, which arrive
// without a zone offset
func parseSegmentTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
