package flights

import "sort"

// histogramBuckets is the fixed bucket count of the price distribution
const histogramBuckets = 10

// ApplyFilters runs the filter pipeline over the full offer collection:
// price ceiling (inclusive), then stop-count set, then carrier set, then
// a stable sort by the selected key. Empty stop/carrier sets pass all
// offers through.
func ApplyFilters(offers []FlightOffer, state FilterState) []FlightOffer {
	filtered := make([]FlightOffer, 0, len(offers))

	stopSet := make(map[int]bool, len(state.Stops))
	for _, s := range state.Stops {
		stopSet[s] = true
	}

	carrierSet := make(map[string]bool, len(state.Carriers))
	for _, c := range state.Carriers {
		carrierSet[c] = true
	}

	for i := range offers {
		offer := offers[i]

		// Price ceiling: equal to the ceiling is kept
		if state.MaxPrice > 0 && offer.Price.Total > state.MaxPrice {
			continue
		}

		// Stop-count filter on the outbound leg
		if len(stopSet) > 0 && !stopSet[OutboundStops(&offer)] {
			continue
		}

		// Carrier filter: at least one validating airline must match
		if len(carrierSet) > 0 && !hasAnyCarrier(&offer, carrierSet) {
			continue
		}

		filtered = append(filtered, offer)
	}

	sortOffers(filtered, state.SortBy)
	return filtered
}

func hasAnyCarrier(offer *FlightOffer, carrierSet map[string]bool) bool {
	for _, code := range offer.ValidatingAirlineCodes {
		if carrierSet[code] {
			return true
		}
	}
	return false
}

// sortOffers orders offers ascending by the sort key. The sort is stable
// so equal keys preserve input order.
func sortOffers(offers []FlightOffer, key SortKey) {
	switch key {
	case SortByDuration:
		sort.SliceStable(offers, func(i, j int) bool {
			return OutboundDurationMinutes(&offers[i]) < OutboundDurationMinutes(&offers[j])
		})
	default: // price
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Price.Total < offers[j].Price.Total
		})
	}
}

// PriceHistogram partitions the offers' price range into ten equal-width
// buckets between the observed minimum and maximum. The label of each
// bucket is its formatted lower bound. All-equal prices collapse into a
// single bucket; an empty collection yields an empty histogram.
func PriceHistogram(offers []FlightOffer, format func(amount float64, currency string) string) []PriceBucket {
	if len(offers) == 0 {
		return nil
	}

	currency := offers[0].Price.Currency
	min := offers[0].Price.Total
	max := min
	for i := 1; i < len(offers); i++ {
		p := offers[i].Price.Total
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	if min == max {
		return []PriceBucket{{
			Label: format(min, currency),
			Low:   min,
			High:  max,
			Count: len(offers),
		}}
	}

	width := (max - min) / histogramBuckets
	buckets := make([]PriceBucket, histogramBuckets)
	for i := range buckets {
		low := min + float64(i)*width
		buckets[i] = PriceBucket{
			Label: format(low, currency),
			Low:   low,
			High:  low + width,
		}
	}

	for i := range offers {
		idx := int((offers[i].Price.Total - min) / width)
		if idx >= histogramBuckets {
			idx = histogramBuckets - 1 // max price lands in the last bucket
		}
		buckets[idx].Count++
	}

	return buckets
}
