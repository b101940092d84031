package bookings

import "time"

// BookingResponse is the API representation of a booking
type BookingResponse struct {
	BookingID        string              `json:"booking_id"`
	BookingRef       string              `json:"booking_ref"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	Origin           string              `json:"origin"`
	Destination      string              `json:"destination"`
	TripType         string              `json:"trip_type"`
	DepartureDate    time.Time           `json:"departure_date"`
	ReturnDate       *time.Time          `json:"return_date,omitempty"`
	TotalPrice       float64             `json:"total_price"`
	Currency         string              `json:"currency"`
	ContactEmail     string              `json:"contact_email"`
	Passengers       []PassengerResponse `json:"passengers,omitempty"`
	PaymentReference string              `json:"payment_reference,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
}

// PassengerResponse is the API representation of a traveller
type PassengerResponse struct {
	Type        string `json:"type"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality,omitempty"`
}

// PaymentAuthorizationResponse is returned when a checkout session opens
type PaymentAuthorizationResponse struct {
	BookingID        string `json:"booking_id"`
	BookingRef       string `json:"booking_ref"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code,omitempty"`
	Reference        string `json:"reference"`
	AmountMinor      int64  `json:"amount_minor"`
	Currency         string `json:"currency"`
}

// BookingListResponse wraps a paginated booking list
type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ToResponse converts a booking model to its API representation
func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		BookingID:        b.ID.String(),
		BookingRef:       b.BookingRef,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		Origin:           b.Origin,
		Destination:      b.Destination,
		TripType:         b.TripType,
		DepartureDate:    b.DepartureDate,
		ReturnDate:       b.ReturnDate,
		TotalPrice:       b.TotalPrice,
		Currency:         b.Currency,
		ContactEmail:     b.ContactEmail,
		PaymentReference: b.PaymentReference,
		CreatedAt:        b.CreatedAt,
		CancelledAt:      b.CancelledAt,
	}

	for _, p := range b.Passengers {
		resp.Passengers = append(resp.Passengers, PassengerResponse{
			Type:        p.Type,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: p.DateOfBirth.Format("2006-01-02"),
			Nationality: p.Nationality,
		})
	}

	return resp
}
