package flights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/internal/shared/config"
)

// newOffersServer serves the OAuth token endpoint plus a canned
// flight-offers payload.
func newOffersServer(t *testing.T, offersJSON string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","expires_in":1799}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(offersJSON))
	})
	return httptest.NewServer(mux)
}

func searchClient(baseURL string) *AmadeusClient {
	return NewAmadeusClient(config.AmadeusConfig{
		BaseURL:      baseURL,
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
	})
}

func testCriteria() SearchCriteria {
	return SearchCriteria{
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: "2026-09-14",
		TripType:      TripOneWay,
		Adults:        1,
	}
}

func TestSearchFlightOffers_DecodesOffers(t *testing.T) {
	payload := `{
		"data": [{
			"id": "1",
			"itineraries": [{
				"duration": "PT7H",
				"segments": [{
					"departure": {"iataCode": "JFK", "at": "2026-09-14T08:00:00"},
					"arrival": {"iataCode": "LHR", "at": "2026-09-14T20:00:00"},
					"carrierCode": "BA",
					"number": "178"
				}]
			}],
			"price": {"total": "640.00", "currency": "USD"},
			"validatingAirlineCodes": ["BA"]
		}],
		"dictionaries": {"carriers": {"BA": "BRITISH AIRWAYS"}}
	}`
	srv := newOffersServer(t, payload)
	defer srv.Close()

	result, err := searchClient(srv.URL).SearchFlightOffers(context.Background(), testCriteria())
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)
	assert.Equal(t, 640.00, result.Offers[0].Price.Total)
	assert.Equal(t, "BRITISH AIRWAYS", result.Dictionaries.Carriers["BA"])
}

func TestSearchFlightOffers_RejectsMalformedOffers(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name: "offer without itineraries",
			payload: `{"data": [{"id": "7",
				"itineraries": [],
				"price": {"total": "100.00", "currency": "USD"}}]}`,
			wantErr: "no itineraries",
		},
		{
			name: "itinerary without segments",
			payload: `{"data": [{"id": "8",
				"itineraries": [{"duration": "PT2H", "segments": []}],
				"price": {"total": "100.00", "currency": "USD"}}]}`,
			wantErr: "no segments",
		},
		{
			name: "malformed price",
			payload: `{"data": [{"id": "9",
				"itineraries": [{"duration": "PT2H", "segments": []}],
				"price": {"total": "a lot", "currency": "USD"}}]}`,
			wantErr: "malformed price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOffersServer(t, tt.payload)
			defer srv.Close()

			_, err := searchClient(srv.URL).SearchFlightOffers(context.Background(), testCriteria())
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
