package bookings

import (
	"skybook/internal/flights"
)

// PassengerRequest carries the details of one traveller
type PassengerRequest struct {
	Type           string `json:"type" binding:"required,oneof=ADULT CHILD INFANT"`
	FirstName      string `json:"first_name" binding:"required,min=1,max=100"`
	LastName       string `json:"last_name" binding:"required,min=1,max=100"`
	DateOfBirth    string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	PassportNumber string `json:"passport_number" binding:"omitempty,max=20"`
	Nationality    string `json:"nationality" binding:"omitempty,len=2"`
}

// CreateBookingRequest carries the selected offer, the search it came
// from, and the traveller details
type CreateBookingRequest struct {
	Offer        flights.FlightOffer    `json:"offer" binding:"required"`
	Criteria     flights.SearchCriteria `json:"criteria" binding:"required"`
	Passengers   []PassengerRequest     `json:"passengers" binding:"required,min=1,max=9,dive"`
	ContactEmail string                 `json:"contact_email" binding:"required,email"`
	ContactPhone string                 `json:"contact_phone" binding:"omitempty,max=20"`
}

// ResolvePaymentRequest carries the gateway reference returned to the
// payer after checkout
type ResolvePaymentRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// BookingListQuery holds the optional filters for listing bookings
type BookingListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
