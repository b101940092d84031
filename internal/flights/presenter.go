package flights

import (
	"fmt"
	"time"
)

// LegDirection labels one direction of travel
type LegDirection string

const (
	LegOutbound LegDirection = "OUTBOUND"
	LegReturn   LegDirection = "RETURN"
)

// NonStopLabel is rendered instead of a numeric stop count for direct legs
const NonStopLabel = "Non-stop"

// LegSummary is the per-leg display summary of an offer
type LegSummary struct {
	Direction        LegDirection `json:"direction"`
	DepartureAirport string       `json:"departure_airport"`
	DepartureTime    time.Time    `json:"departure_time"`
	ArrivalAirport   string       `json:"arrival_airport"`
	ArrivalTime      time.Time    `json:"arrival_time"`
	Duration         string       `json:"duration"` // formatted, e.g. "5h 30m"
	Stops            int          `json:"stops"`
	StopsLabel       string       `json:"stops_label"`
	Carrier          string       `json:"carrier"`
}

// PresentOffer splits an offer's itineraries into display legs. The first
// itinerary is always outbound; the second is the return leg when the
// round-trip flag is set.
func PresentOffer(offer *FlightOffer, roundTrip bool, dict Dictionaries) []LegSummary {
	var legs []LegSummary

	if out := offer.Outbound(); out != nil && len(out.Segments) > 0 {
		legs = append(legs, summarizeLeg(out, LegOutbound, dict))
	}

	if roundTrip {
		if ret := offer.Return(); ret != nil && len(ret.Segments) > 0 {
			legs = append(legs, summarizeLeg(ret, LegReturn, dict))
		}
	}

	return legs
}

func summarizeLeg(it *Itinerary, direction LegDirection, dict Dictionaries) LegSummary {
	first := it.Segments[0]
	last := it.Segments[len(it.Segments)-1]
	stops := StopCount(it)

	return LegSummary{
		Direction:        direction,
		DepartureAirport: first.Departure.IataCode,
		DepartureTime:    first.Departure.At,
		ArrivalAirport:   last.Arrival.IataCode,
		ArrivalTime:      last.Arrival.At,
		Duration:         FormatMinutes(ParseDurationMinutes(it.Duration)),
		Stops:            stops,
		StopsLabel:       stopsLabel(stops),
		Carrier:          dict.CarrierName(first.CarrierCode),
	}
}

func stopsLabel(stops int) string {
	if stops == 0 {
		return NonStopLabel
	}
	if stops == 1 {
		return "1 stop"
	}
	return fmt.Sprintf("%d stops", stops)
}

// FormatMinutes renders a minute count as "5h 30m", omitting zero parts
func FormatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
