package flights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offerWith(id string, price float64, stops int, carriers ...string) FlightOffer {
	return FlightOffer{
		ID:                     id,
		Price:                  Price{Total: price, Currency: "USD"},
		ValidatingAirlineCodes: carriers,
		Itineraries: []Itinerary{
			{Segments: make([]Segment, stops+1)},
		},
	}
}

func offerIDs(offers []FlightOffer) []string {
	ids := make([]string, 0, len(offers))
	for i := range offers {
		ids = append(ids, offers[i].ID)
	}
	return ids
}

func TestApplyFilters_PriceCeiling(t *testing.T) {
	offers := []FlightOffer{
		offerWith("a", 100, 0, "AA"),
		offerWith("b", 250, 0, "AA"),
		offerWith("c", 80, 0, "AA"),
		offerWith("d", 400, 0, "AA"),
	}

	filtered := ApplyFilters(offers, FilterState{MaxPrice: 250, SortBy: SortByPrice})

	// Ceiling is inclusive: 250 stays, 400 goes, result sorted by price
	assert.Equal(t, []string{"c", "a", "b"}, offerIDs(filtered))
}

func TestApplyFilters_StopSet(t *testing.T) {
	offers := []FlightOffer{
		offerWith("direct", 300, 0, "AA"),
		offerWith("one-stop", 200, 1, "AA"),
		offerWith("two-stop", 100, 2, "AA"),
	}

	tests := []struct {
		name     string
		stops    []int
		expected []string
	}{
		{name: "empty set passes all", stops: nil, expected: []string{"two-stop", "one-stop", "direct"}},
		{name: "direct only", stops: []int{0}, expected: []string{"direct"}},
		{name: "direct or one stop", stops: []int{0, 1}, expected: []string{"one-stop", "direct"}},
		{name: "no match", stops: []int{3}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := ApplyFilters(offers, FilterState{Stops: tt.stops, SortBy: SortByPrice})
			assert.Equal(t, tt.expected, offerIDs(filtered))
		})
	}
}

func TestApplyFilters_CarrierSet(t *testing.T) {
	offers := []FlightOffer{
		offerWith("a", 100, 0, "AA"),
		offerWith("b", 200, 0, "BA", "LH"),
		offerWith("c", 300, 0, "EK"),
	}

	filtered := ApplyFilters(offers, FilterState{Carriers: []string{"LH", "EK"}})

	// An offer passes when any of its validating airlines is selected
	assert.Equal(t, []string{"b", "c"}, offerIDs(filtered))
}

func TestApplyFilters_SortStability(t *testing.T) {
	offers := []FlightOffer{
		offerWith("first", 150, 0, "AA"),
		offerWith("second", 150, 1, "AA"),
		offerWith("third", 150, 2, "AA"),
	}

	filtered := ApplyFilters(offers, FilterState{SortBy: SortByPrice})

	// Equal prices keep their input order
	assert.Equal(t, []string{"first", "second", "third"}, offerIDs(filtered))
}

func TestApplyFilters_SortByDuration(t *testing.T) {
	slow := offerWith("slow", 100, 0, "AA")
	slow.Itineraries[0].Duration = "PT9H"
	fast := offerWith("fast", 300, 0, "AA")
	fast.Itineraries[0].Duration = "PT5H30M"
	medium := offerWith("medium", 200, 0, "AA")
	medium.Itineraries[0].Duration = "PT7H15M"

	filtered := ApplyFilters([]FlightOffer{slow, fast, medium}, FilterState{SortBy: SortByDuration})

	assert.Equal(t, []string{"fast", "medium", "slow"}, offerIDs(filtered))
}

func TestPriceHistogram(t *testing.T) {
	format := func(amount float64, currency string) string {
		return fmt.Sprintf("$%.2f", amount)
	}

	t.Run("empty collection", func(t *testing.T) {
		assert.Nil(t, PriceHistogram(nil, format))
	})

	t.Run("all equal prices collapse to one bucket", func(t *testing.T) {
		offers := []FlightOffer{
			offerWith("a", 120, 0, "AA"),
			offerWith("b", 120, 0, "AA"),
		}

		buckets := PriceHistogram(offers, format)

		require.Len(t, buckets, 1)
		assert.Equal(t, 2, buckets[0].Count)
		assert.Equal(t, "$120.00", buckets[0].Label)
	})

	t.Run("ten equal-width buckets", func(t *testing.T) {
		offers := []FlightOffer{
			offerWith("min", 100, 0, "AA"),
			offerWith("mid", 150, 0, "AA"),
			offerWith("max", 200, 0, "AA"),
		}

		buckets := PriceHistogram(offers, format)

		require.Len(t, buckets, 10)
		assert.Equal(t, "$100.00", buckets[0].Label)
		assert.InDelta(t, 10.0, buckets[0].High-buckets[0].Low, 1e-9)
		assert.Equal(t, 1, buckets[0].Count) // 100
		assert.Equal(t, 1, buckets[5].Count) // 150
		assert.Equal(t, 1, buckets[9].Count) // 200, max lands in last bucket

		total := 0
		for _, b := range buckets {
			total += b.Count
		}
		assert.Equal(t, len(offers), total)
	})
}
