package bookings

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skybook/internal/currency"
	"skybook/internal/flights"
	"skybook/internal/payments"
	"skybook/internal/shared/config"
	"skybook/pkg/logger"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrNotBookingOwner   = errors.New("booking does not belong to user")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrAlreadyPaid       = errors.New("booking is already paid for")
	ErrCannotCancel      = errors.New("only confirmed bookings with a future departure can be cancelled")
	ErrInvalidBooking    = errors.New("invalid booking request")
	ErrPaymentNotStarted = errors.New("payment has not been initiated for this booking")
)

// Publisher interface for emitting booking events (to avoid circular dependency)
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error
}

// BookingConfirmedEvent is emitted once a booking's payment completes
type BookingConfirmedEvent struct {
	BookingID    string    `json:"booking_id"`
	BookingRef   string    `json:"booking_ref"`
	UserID       string    `json:"user_id"`
	ContactEmail string    `json:"contact_email"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	Departure    time.Time `json:"departure"`
	TotalPrice   float64   `json:"total_price"`
	Currency     string    `json:"currency"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error)
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error)

	// Payment operations
	InitiatePayment(ctx context.Context, bookingID, userID uuid.UUID) (*PaymentAuthorizationResponse, error)
	ResolvePayment(ctx context.Context, bookingID, userID uuid.UUID, reference string) (*BookingResponse, error)
	ReconcilePendingPayments(ctx context.Context, olderThan time.Duration) (int, error)
}

// service implements the Service interface
type service struct {
	repo      Repository
	gateway   payments.Client
	publisher Publisher
	converter currency.Converter
	cfg       config.PaymentConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates a new booking service instance
func NewService(repo Repository, gateway payments.Client, publisher Publisher, converter currency.Converter, cfg config.PaymentConfig, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		converter: converter,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// CreateBooking records a booking for the selected offer. The booking
// starts PENDING with payment PENDING and is only confirmed once the
// gateway reports a successful charge.
func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	if err := s.validateBookingRequest(req); err != nil {
		return nil, err
	}

	bookingRef, err := s.generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	offerJSON, err := json.Marshal(req.Offer)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize offer: %w", err)
	}

	outbound := req.Offer.Outbound()
	departure := outbound.Segments[0].Departure.At

	var returnDate *time.Time
	if ret := req.Offer.Return(); ret != nil && len(ret.Segments) > 0 {
		t := ret.Segments[0].Departure.At
		returnDate = &t
	}

	booking := &Booking{
		UserID:        userID,
		BookingRef:    bookingRef,
		Origin:        req.Criteria.Origin,
		Destination:   req.Criteria.Destination,
		TripType:      string(req.Criteria.TripType),
		DepartureDate: departure,
		ReturnDate:    returnDate,
		TotalPrice:    req.Offer.Price.Total,
		Currency:      req.Offer.Price.Currency,
		OfferJSON:     string(offerJSON),
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Status:        string(StatusPending),
		PaymentStatus: string(PaymentPending),
	}

	for _, p := range req.Passengers {
		dob, err := time.Parse("2006-01-02", p.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date of birth for %s %s", ErrInvalidBooking, p.FirstName, p.LastName)
		}
		booking.Passengers = append(booking.Passengers, Passenger{
			Type:           p.Type,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DateOfBirth:    dob,
			PassportNumber: p.PassportNumber,
			Nationality:    strings.ToUpper(p.Nationality),
		})
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), booking.BookingRef, userID.String())

	resp := booking.ToResponse()
	return &resp, nil
}

// GetBooking retrieves a booking by ID, enforcing ownership
func (s *service) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.getOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	resp := booking.ToResponse()
	return &resp, nil
}

// GetUserBookings retrieves bookings for a user, newest first
func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	bookings, totalCount, err := s.repo.GetUserBookings(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	resp := &BookingListResponse{
		Bookings:   make([]BookingResponse, 0, len(bookings)),
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(totalCount, query.Limit),
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, bookings[i].ToResponse())
	}

	return resp, nil
}

// CancelBooking cancels a confirmed booking with a future departure
func (s *service) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.getOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	if booking.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	if !booking.CanBeCancelled(s.now()) {
		return nil, ErrCannotCancel
	}

	booking.Cancel()
	if err := s.repo.UpdateBookingStatus(ctx, booking.ID, StatusCancelled, booking.CancelledAt); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.log.LogBookingCancelled(ctx, booking.ID.String(), userID.String())

	resp := booking.ToResponse()
	return &resp, nil
}

// InitiatePayment opens a checkout session with the gateway for a
// pending booking. Amount is charged in minor units of the booking
// currency.
func (s *service) InitiatePayment(ctx context.Context, bookingID, userID uuid.UUID) (*PaymentAuthorizationResponse, error) {
	booking, err := s.getOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	if booking.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	if booking.PaymentStatus == string(PaymentCompleted) {
		return nil, ErrAlreadyPaid
	}

	// Charge in the traveller's display currency, minor units
	chargeCurrency := s.converter.Selected()
	amount := s.converter.ConvertTo(booking.TotalPrice, booking.Currency, chargeCurrency)
	amountMinor := int64(math.Round(amount * 100))
	reference := s.generatePaymentReference(booking.ID)

	auth, err := s.gateway.InitializeTransaction(ctx, payments.InitializeRequest{
		AmountMinor: amountMinor,
		Currency:    chargeCurrency,
		Email:       booking.ContactEmail,
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Metadata: map[string]string{
			"booking_id":  booking.ID.String(),
			"booking_ref": booking.BookingRef,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	// Remember the gateway reference so the reconciliation job can
	// verify this transaction if the callback never arrives.
	booking.PaymentReference = auth.Reference
	booking.UpdatedAt = s.now()
	if err := s.repo.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to record payment reference: %w", err)
	}

	s.log.LogPaymentInitiated(ctx, booking.ID.String(), auth.Reference, amountMinor, chargeCurrency)

	return &PaymentAuthorizationResponse{
		BookingID:        booking.ID.String(),
		BookingRef:       booking.BookingRef,
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        auth.Reference,
		AmountMinor:      amountMinor,
		Currency:         chargeCurrency,
	}, nil
}

// ResolvePayment settles a booking after the payer returns from
// checkout. The gateway is re-queried so the outcome never depends on
// what the client claims happened.
func (s *service) ResolvePayment(ctx context.Context, bookingID, userID uuid.UUID, reference string) (*BookingResponse, error) {
	booking, err := s.getOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentReference == "" {
		return nil, ErrPaymentNotStarted
	}
	if booking.PaymentReference != reference {
		return nil, fmt.Errorf("%w: reference does not match this booking", ErrInvalidBooking)
	}

	if err := s.settleWithGateway(ctx, booking); err != nil {
		return nil, err
	}

	resp := booking.ToResponse()
	return &resp, nil
}

// settleWithGateway verifies the booking's transaction and applies the
// result. Shared with the reconciliation job. An abandoned or still
// pending transaction leaves the booking untouched.
func (s *service) settleWithGateway(ctx context.Context, booking *Booking) error {
	result, err := s.gateway.VerifyTransaction(ctx, booking.PaymentReference)
	if err != nil {
		return fmt.Errorf("failed to verify payment: %w", err)
	}

	switch {
	case result.Succeeded():
		booking.MarkPaymentCompleted(result.Reference)
	case result.Status == payments.TransactionFailed:
		booking.MarkPaymentFailed(result.Reference)
	default:
		// abandoned or still pending, the payer may retry
		return nil
	}

	if err := s.repo.UpdateBooking(ctx, booking); err != nil {
		return fmt.Errorf("failed to update booking after payment: %w", err)
	}

	s.log.LogPaymentResolved(ctx, booking.ID.String(), booking.PaymentReference, string(result.Status))

	if booking.IsConfirmed() && s.publisher != nil {
		event := BookingConfirmedEvent{
			BookingID:    booking.ID.String(),
			BookingRef:   booking.BookingRef,
			UserID:       booking.UserID.String(),
			ContactEmail: booking.ContactEmail,
			Origin:       booking.Origin,
			Destination:  booking.Destination,
			Departure:    booking.DepartureDate,
			TotalPrice:   booking.TotalPrice,
			Currency:     booking.Currency,
			ConfirmedAt:  booking.UpdatedAt,
		}
		if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
			// Notification delivery must not fail the booking
			s.log.ErrorWithContext(ctx, "failed to publish booking confirmation", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}
	}

	return nil
}

// ReconcilePendingPayments settles bookings whose payment callback never
// arrived by asking the gateway directly. Returns the number of bookings
// whose state changed.
func (s *service) ReconcilePendingPayments(ctx context.Context, olderThan time.Duration) (int, error) {
	stuck, err := s.repo.GetStuckPendingBookings(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending bookings: %w", err)
	}

	settled := 0
	for i := range stuck {
		booking := &stuck[i]
		before := booking.PaymentStatus
		if err := s.settleWithGateway(ctx, booking); err != nil {
			s.log.ErrorWithContext(ctx, "failed to reconcile booking payment", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
				"reference":  booking.PaymentReference,
			})
			continue
		}
		if booking.PaymentStatus != before {
			settled++
		}
	}

	return settled, nil
}

func (s *service) getOwnedBooking(ctx context.Context, bookingID, userID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.UserID != userID {
		return nil, ErrNotBookingOwner
	}

	return booking, nil
}

// validateBookingRequest checks the offer and passenger list against the
// search criteria the offer was selected from
func (s *service) validateBookingRequest(req CreateBookingRequest) error {
	if !req.Criteria.TripType.IsValid() {
		return fmt.Errorf("%w: unknown trip type %q", ErrInvalidBooking, req.Criteria.TripType)
	}

	wantItineraries := 1
	if req.Criteria.TripType == flights.TripRoundTrip {
		wantItineraries = 2
	}
	if len(req.Offer.Itineraries) != wantItineraries {
		return fmt.Errorf("%w: offer has %d itineraries, expected %d for %s",
			ErrInvalidBooking, len(req.Offer.Itineraries), wantItineraries, req.Criteria.TripType)
	}

	outbound := req.Offer.Outbound()
	if outbound == nil || len(outbound.Segments) == 0 {
		return fmt.Errorf("%w: offer has no flight segments", ErrInvalidBooking)
	}
	if req.Offer.Price.Total <= 0 {
		return fmt.Errorf("%w: offer has no price", ErrInvalidBooking)
	}

	if len(req.Passengers) != req.Criteria.TotalPassengers() {
		return fmt.Errorf("%w: %d passengers provided, search was for %d",
			ErrInvalidBooking, len(req.Passengers), req.Criteria.TotalPassengers())
	}

	counts := map[string]int{}
	for _, p := range req.Passengers {
		counts[p.Type]++
	}
	if counts[string(PassengerAdult)] != req.Criteria.Adults ||
		counts[string(PassengerChild)] != req.Criteria.Children ||
		counts[string(PassengerInfant)] != req.Criteria.Infants {
		return fmt.Errorf("%w: passenger types do not match the search (adults=%d children=%d infants=%d)",
			ErrInvalidBooking, req.Criteria.Adults, req.Criteria.Children, req.Criteria.Infants)
	}

	return nil
}

// generateBookingReference generates a unique booking reference
func (s *service) generateBookingReference() (string, error) {
	timestamp := s.now().Format("20060102")

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		randomPart[i] = alphabet[num.Int64()]
	}

	return fmt.Sprintf("SKY-%s-%s", timestamp, string(randomPart)), nil
}

// generatePaymentReference generates a gateway transaction reference
func (s *service) generatePaymentReference(bookingID uuid.UUID) string {
	shortID := strings.ReplaceAll(bookingID.String(), "-", "")[:8]
	return fmt.Sprintf("PAY_%d_%s", s.now().Unix(), strings.ToUpper(shortID))
}
