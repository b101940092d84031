package flights

import (
	"sort"
	"strconv"
	"strings"
)

// ParseDurationMinutes reduces a compact ISO-8601 duration token such as
// "PT5H30M" to a single minute count. Hour and minute components are
// extracted independently; either may be absent and counts as zero.
// Unparseable input yields zero.
func ParseDurationMinutes(duration string) int {
	s := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(duration)), "PT")
	if s == "" {
		return 0
	}

	hours := 0
	if idx := strings.Index(s, "H"); idx >= 0 {
		if h, err := strconv.Atoi(s[:idx]); err == nil {
			hours = h
		}
		s = s[idx+1:]
	}

	minutes := 0
	if idx := strings.Index(s, "M"); idx >= 0 {
		if m, err := strconv.Atoi(s[:idx]); err == nil {
			minutes = m
		}
	}

	return hours*60 + minutes
}

// StopCount derives the number of stops of a leg: segment count minus one.
// A single-segment leg is non-stop.
func StopCount(it *Itinerary) int {
	if it == nil || len(it.Segments) == 0 {
		return 0
	}
	return len(it.Segments) - 1
}

// OutboundStops returns the stop count of an offer's outbound leg
func OutboundStops(offer *FlightOffer) int {
	return StopCount(offer.Outbound())
}

// OutboundDurationMinutes returns the outbound leg duration in minutes
func OutboundDurationMinutes(offer *FlightOffer) int {
	out := offer.Outbound()
	if out == nil {
		return 0
	}
	return ParseDurationMinutes(out.Duration)
}

// AirlineFacets builds the airline filter facet: the union of all
// validating-airline codes across the offers, resolved against the
// carrier dictionary and sorted by code.
func AirlineFacets(offers []FlightOffer, dict Dictionaries) []AirlineFacet {
	seen := make(map[string]bool)
	var facets []AirlineFacet

	for i := range offers {
		for _, code := range offers[i].ValidatingAirlineCodes {
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			facets = append(facets, AirlineFacet{
				Code: code,
				Name: dict.CarrierName(code),
			})
		}
	}

	sort.Slice(facets, func(i, j int) bool {
		return facets[i].Code < facets[j].Code
	})

	return facets
}

// StopCountFacets builds the stop-count filter facet: the distinct
// outbound stop counts across the offers, sorted ascending.
func StopCountFacets(offers []FlightOffer) []int {
	seen := make(map[int]bool)
	var counts []int

	for i := range offers {
		stops := OutboundStops(&offers[i])
		if !seen[stops] {
			seen[stops] = true
			counts = append(counts, stops)
		}
	}

	sort.Ints(counts)
	return counts
}
