package flights

import "time"

// TripType distinguishes one-way from round-trip searches
type TripType string

const (
	TripOneWay    TripType = "ONE_WAY"
	TripRoundTrip TripType = "ROUND_TRIP"
)

func (t TripType) IsValid() bool {
	return t == TripOneWay || t == TripRoundTrip
}

// SortKey selects the ordering applied to filtered offers
type SortKey string

const (
	SortByPrice    SortKey = "price"
	SortByDuration SortKey = "duration"
)

// Price is an offer's total price in the provider's quote currency
type Price struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// FlightEndpoint is one side of a segment (airport + local timestamp)
type FlightEndpoint struct {
	IataCode string    `json:"iata_code"`
	At       time.Time `json:"at"`
}

// Segment is a single non-stop flight within an itinerary
type Segment struct {
	Departure    FlightEndpoint `json:"departure"`
	Arrival      FlightEndpoint `json:"arrival"`
	CarrierCode  string         `json:"carrier_code"`
	FlightNumber string         `json:"flight_number"`
	AircraftCode string         `json:"aircraft_code"`
	Duration     string         `json:"duration"` // ISO-8601, e.g. "PT2H30M"
}

// Itinerary is one direction of travel (outbound or return)
type Itinerary struct {
	Duration string    `json:"duration"` // ISO-8601 total leg duration
	Segments []Segment `json:"segments"`
}

// FlightOffer is a priced, bookable itinerary combination returned by the
// search provider. Immutable once received.
type FlightOffer struct {
	ID                     string      `json:"id"`
	Itineraries            []Itinerary `json:"itineraries"`
	Price                  Price       `json:"price"`
	ValidatingAirlineCodes []string    `json:"validating_airline_codes"`
	NumberOfBookableSeats  int         `json:"number_of_bookable_seats"`
}

// Outbound returns the offer's first itinerary, nil when the offer is empty
func (o *FlightOffer) Outbound() *Itinerary {
	if len(o.Itineraries) == 0 {
		return nil
	}
	return &o.Itineraries[0]
}

// Return returns the second itinerary when present (round-trip offers)
func (o *FlightOffer) Return() *Itinerary {
	if len(o.Itineraries) < 2 {
		return nil
	}
	return &o.Itineraries[1]
}

// Dictionaries hold the code → display-name lookups supplied alongside
// each search response. Keyed lookups only, never mutated.
type Dictionaries struct {
	Carriers map[string]string `json:"carriers"`
	Aircraft map[string]string `json:"aircraft"`
}

// CarrierName resolves a carrier code, falling back to the code itself
func (d Dictionaries) CarrierName(code string) string {
	if name, ok := d.Carriers[code]; ok {
		return name
	}
	return code
}

// AircraftName resolves an aircraft code, falling back to the code itself
func (d Dictionaries) AircraftName(code string) string {
	if name, ok := d.Aircraft[code]; ok {
		return name
	}
	return code
}

// SearchCriteria captures one search submission. Immutable for the
// duration of the search; a new value is built per submission.
type SearchCriteria struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date,omitempty"`
	TripType      TripType `json:"trip_type"`
	Adults        int      `json:"adults"`
	Children      int      `json:"children"`
	Infants       int      `json:"infants"`
	CabinClass    string   `json:"cabin_class,omitempty"`
	NonStop       bool     `json:"non_stop,omitempty"`
	MaxPrice      float64  `json:"max_price,omitempty"`
}

// TotalPassengers returns the seat-holding passenger count of the search
func (c SearchCriteria) TotalPassengers() int {
	return c.Adults + c.Children + c.Infants
}

// FilterState holds the user-selected predicates and ordering applied to
// an offer collection. Empty sets mean "pass all".
type FilterState struct {
	MaxPrice float64  `json:"max_price,omitempty"`
	Stops    []int    `json:"stops,omitempty"`
	Carriers []string `json:"carriers,omitempty"`
	SortBy   SortKey  `json:"sort_by,omitempty"`
}

// SearchResult is the provider's normalized search payload
type SearchResult struct {
	Offers       []FlightOffer `json:"offers"`
	Dictionaries Dictionaries  `json:"dictionaries"`
}

// Airport is one record from the airport keyword lookup
type Airport struct {
	IataCode string `json:"iata_code"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// AirlineFacet is one entry of the airline filter facet
type AirlineFacet struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PriceBucket is one bar of the price-distribution histogram
type PriceBucket struct {
	Label string  `json:"label"` // formatted lower bound
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}
