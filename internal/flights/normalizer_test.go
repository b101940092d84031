package flights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		expected int
	}{
		{name: "hours and minutes", duration: "PT5H30M", expected: 330},
		{name: "hours only", duration: "PT2H", expected: 120},
		{name: "minutes only", duration: "PT45M", expected: 45},
		{name: "long haul", duration: "PT14H5M", expected: 845},
		{name: "empty string", duration: "", expected: 0},
		{name: "garbage input", duration: "5 hours", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDurationMinutes(tt.duration))
		})
	}
}

func TestStopCount(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		expected int
	}{
		{name: "direct flight", segments: 1, expected: 0},
		{name: "one stop", segments: 2, expected: 1},
		{name: "two stops", segments: 3, expected: 2},
		{name: "no segments", segments: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := &Itinerary{Segments: make([]Segment, tt.segments)}
			assert.Equal(t, tt.expected, StopCount(it))
		})
	}

	t.Run("nil itinerary", func(t *testing.T) {
		assert.Equal(t, 0, StopCount(nil))
	})
}

func TestAirlineFacets(t *testing.T) {
	offers := []FlightOffer{
		{ValidatingAirlineCodes: []string{"BA", "AA"}},
		{ValidatingAirlineCodes: []string{"AA"}},
		{ValidatingAirlineCodes: []string{"LH"}},
	}
	dict := Dictionaries{Carriers: map[string]string{
		"AA": "American Airlines",
		"BA": "British Airways",
	}}

	facets := AirlineFacets(offers, dict)

	assert.Equal(t, []AirlineFacet{
		{Code: "AA", Name: "American Airlines"},
		{Code: "BA", Name: "British Airways"},
		{Code: "LH", Name: "LH"}, // no dictionary entry, code passes through
	}, facets)
}

func TestStopCountFacets(t *testing.T) {
	offers := []FlightOffer{
		{Itineraries: []Itinerary{{Segments: make([]Segment, 3)}}},
		{Itineraries: []Itinerary{{Segments: make([]Segment, 1)}}},
		{Itineraries: []Itinerary{{Segments: make([]Segment, 2)}}},
		{Itineraries: []Itinerary{{Segments: make([]Segment, 1)}}},
	}

	assert.Equal(t, []int{0, 1, 2}, StopCountFacets(offers))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "5h 30m", FormatMinutes(330))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "0m", FormatMinutes(0))
}
