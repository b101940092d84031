package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"skybook/internal/flights"
	"skybook/internal/payments"
	"skybook/internal/shared/config"
	"skybook/pkg/logger"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateBooking(ctx context.Context, booking *Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) GetBookingByReference(ctx context.Context, ref string) (*Booking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) UpdateBooking(ctx context.Context, booking *Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error {
	args := m.Called(ctx, id, status, cancelledAt)
	return args.Error(0)
}

func (m *MockRepository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).([]Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) GetStuckPendingBookings(ctx context.Context, olderThan time.Duration) ([]Booking, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).([]Booking), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) InitializeTransaction(ctx context.Context, req payments.InitializeRequest) (*payments.Authorization, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Authorization), args.Error(1)
}

func (m *MockGateway) VerifyTransaction(ctx context.Context, reference string) (*payments.VerifyResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.VerifyResult), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// identityConverter keeps amounts and currencies unchanged in tests
type identityConverter struct{}

func (identityConverter) Convert(amount float64, from string) float64        { return amount }
func (identityConverter) ConvertTo(amount float64, from, to string) float64  { return amount }
func (identityConverter) Format(amount float64, from string) string          { return "" }
func (identityConverter) Selected() string                                   { return "USD" }
func (identityConverter) SetSelected(code string) error                      { return nil }
func (identityConverter) Rate(code string) (float64, bool)                   { return 1.0, true }
func (identityConverter) Start(ctx context.Context)                          {}
func (identityConverter) Stop()                                              {}

func newTestService(repo *MockRepository, gateway *MockGateway, publisher Publisher) Service {
	return NewService(repo, gateway, publisher, identityConverter{}, config.PaymentConfig{
		CallbackURL: "https://app.example.com/payment/callback",
	}, logger.New())
}

func validOffer(departure time.Time) flights.FlightOffer {
	return flights.FlightOffer{
		ID:                     "offer-1",
		Price:                  flights.Price{Total: 523.40, Currency: "USD"},
		ValidatingAirlineCodes: []string{"BA"},
		Itineraries: []flights.Itinerary{
			{
				Duration: "PT7H",
				Segments: []flights.Segment{{
					Departure:   flights.FlightEndpoint{IataCode: "JFK", At: departure},
					Arrival:     flights.FlightEndpoint{IataCode: "LHR", At: departure.Add(7 * time.Hour)},
					CarrierCode: "BA",
				}},
			},
		},
	}
}

func validCreateRequest(departure time.Time) CreateBookingRequest {
	return CreateBookingRequest{
		Offer: validOffer(departure),
		Criteria: flights.SearchCriteria{
			Origin:        "JFK",
			Destination:   "LHR",
			DepartureDate: departure.Format("2006-01-02"),
			TripType:      flights.TripOneWay,
			Adults:        2,
			Children:      1,
		},
		Passengers: []PassengerRequest{
			{Type: "ADULT", FirstName: "Ada", LastName: "Obi", DateOfBirth: "1988-03-14"},
			{Type: "ADULT", FirstName: "Ben", LastName: "Obi", DateOfBirth: "1985-11-02"},
			{Type: "CHILD", FirstName: "Chi", LastName: "Obi", DateOfBirth: "2018-06-21"},
		},
		ContactEmail: "ada@example.com",
	}
}

func TestCreateBooking(t *testing.T) {
	departure := time.Now().Add(30 * 24 * time.Hour)
	userID := uuid.New()

	t.Run("creates pending booking with reference", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateBooking", mock.Anything, mock.AnythingOfType("*bookings.Booking")).Return(nil)

		svc := newTestService(repo, new(MockGateway), nil)
		resp, err := svc.CreateBooking(context.Background(), userID, validCreateRequest(departure))

		require.NoError(t, err)
		assert.Equal(t, string(StatusPending), resp.Status)
		assert.Equal(t, string(PaymentPending), resp.PaymentStatus)
		assert.True(t, strings.HasPrefix(resp.BookingRef, "SKY-"))
		assert.Len(t, resp.BookingRef, len("SKY-20060102-ABCDEF"))
		assert.Len(t, resp.Passengers, 3)
		repo.AssertExpectations(t)
	})

	t.Run("rejects passenger count mismatch", func(t *testing.T) {
		req := validCreateRequest(departure)
		req.Passengers = req.Passengers[:2]

		svc := newTestService(new(MockRepository), new(MockGateway), nil)
		_, err := svc.CreateBooking(context.Background(), userID, req)

		assert.ErrorIs(t, err, ErrInvalidBooking)
	})

	t.Run("rejects passenger type mismatch", func(t *testing.T) {
		req := validCreateRequest(departure)
		req.Passengers[2].Type = "ADULT" // three adults, search was 2+1

		svc := newTestService(new(MockRepository), new(MockGateway), nil)
		_, err := svc.CreateBooking(context.Background(), userID, req)

		assert.ErrorIs(t, err, ErrInvalidBooking)
	})

	t.Run("rejects one-way offer for round-trip search", func(t *testing.T) {
		req := validCreateRequest(departure)
		req.Criteria.TripType = flights.TripRoundTrip
		req.Criteria.ReturnDate = departure.Add(7 * 24 * time.Hour).Format("2006-01-02")

		svc := newTestService(new(MockRepository), new(MockGateway), nil)
		_, err := svc.CreateBooking(context.Background(), userID, req)

		assert.ErrorIs(t, err, ErrInvalidBooking)
	})
}

func TestCancelBooking(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.New()

	tests := []struct {
		name        string
		booking     *Booking
		expectedErr error
	}{
		{
			name: "confirmed future booking cancels",
			booking: &Booking{
				ID: bookingID, UserID: userID,
				Status:        string(StatusConfirmed),
				DepartureDate: time.Now().Add(48 * time.Hour),
			},
		},
		{
			name: "past departure refuses",
			booking: &Booking{
				ID: bookingID, UserID: userID,
				Status:        string(StatusConfirmed),
				DepartureDate: time.Now().Add(-2 * time.Hour),
			},
			expectedErr: ErrCannotCancel,
		},
		{
			name: "pending booking refuses",
			booking: &Booking{
				ID: bookingID, UserID: userID,
				Status:        string(StatusPending),
				DepartureDate: time.Now().Add(48 * time.Hour),
			},
			expectedErr: ErrCannotCancel,
		},
		{
			name: "already cancelled refuses",
			booking: &Booking{
				ID: bookingID, UserID: userID,
				Status:        string(StatusCancelled),
				DepartureDate: time.Now().Add(48 * time.Hour),
			},
			expectedErr: ErrAlreadyCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetBookingByID", mock.Anything, bookingID).Return(tt.booking, nil)
			if tt.expectedErr == nil {
				repo.On("UpdateBookingStatus", mock.Anything, bookingID, StatusCancelled, mock.AnythingOfType("*time.Time")).Return(nil)
			}

			svc := newTestService(repo, new(MockGateway), nil)
			resp, err := svc.CancelBooking(context.Background(), bookingID, userID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(StatusCancelled), resp.Status)
			assert.NotNil(t, resp.CancelledAt)
			repo.AssertExpectations(t)
		})
	}

	t.Run("other user's booking is forbidden", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(&Booking{
			ID: bookingID, UserID: uuid.New(),
			Status:        string(StatusConfirmed),
			DepartureDate: time.Now().Add(48 * time.Hour),
		}, nil)

		svc := newTestService(repo, new(MockGateway), nil)
		_, err := svc.CancelBooking(context.Background(), bookingID, userID)

		assert.ErrorIs(t, err, ErrNotBookingOwner)
	})

	t.Run("missing booking maps to not found", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestService(repo, new(MockGateway), nil)
		_, err := svc.CancelBooking(context.Background(), bookingID, userID)

		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestInitiatePayment(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.New()

	pendingBooking := func() *Booking {
		return &Booking{
			ID: bookingID, UserID: userID,
			BookingRef:    "SKY-20260914-ABC123",
			TotalPrice:    523.40,
			Currency:      "USD",
			ContactEmail:  "ada@example.com",
			Status:        string(StatusPending),
			PaymentStatus: string(PaymentPending),
		}
	}

	t.Run("opens checkout in minor units", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(pendingBooking(), nil)
		repo.On("UpdateBooking", mock.Anything, mock.AnythingOfType("*bookings.Booking")).Return(nil)

		gateway := new(MockGateway)
		gateway.On("InitializeTransaction", mock.Anything, mock.MatchedBy(func(req payments.InitializeRequest) bool {
			return req.AmountMinor == 52340 && req.Currency == "USD" && req.Email == "ada@example.com"
		})).Return(&payments.Authorization{
			AuthorizationURL: "https://gateway.example.com/checkout/x1",
			Reference:        "PAY_1_DEADBEEF",
		}, nil)

		svc := newTestService(repo, gateway, nil)
		resp, err := svc.InitiatePayment(context.Background(), bookingID, userID)

		require.NoError(t, err)
		assert.Equal(t, int64(52340), resp.AmountMinor)
		assert.Equal(t, "https://gateway.example.com/checkout/x1", resp.AuthorizationURL)
		assert.Equal(t, "PAY_1_DEADBEEF", resp.Reference)
		gateway.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("already paid booking refuses", func(t *testing.T) {
		paid := pendingBooking()
		paid.Status = string(StatusConfirmed)
		paid.PaymentStatus = string(PaymentCompleted)

		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(paid, nil)

		svc := newTestService(repo, new(MockGateway), nil)
		_, err := svc.InitiatePayment(context.Background(), bookingID, userID)

		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})
}

func TestResolvePayment(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.New()
	const reference = "PAY_1_DEADBEEF"

	bookingWithReference := func() *Booking {
		return &Booking{
			ID: bookingID, UserID: userID,
			BookingRef:       "SKY-20260914-ABC123",
			TotalPrice:       523.40,
			Currency:         "USD",
			ContactEmail:     "ada@example.com",
			Status:           string(StatusPending),
			PaymentStatus:    string(PaymentPending),
			PaymentReference: reference,
		}
	}

	t.Run("successful charge confirms and publishes", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(bookingWithReference(), nil)
		repo.On("UpdateBooking", mock.Anything, mock.AnythingOfType("*bookings.Booking")).Return(nil)

		gateway := new(MockGateway)
		gateway.On("VerifyTransaction", mock.Anything, reference).Return(&payments.VerifyResult{
			Status:    payments.TransactionSuccess,
			Reference: reference,
		}, nil)

		publisher := new(MockPublisher)
		publisher.On("PublishBookingConfirmed", mock.Anything, mock.MatchedBy(func(e BookingConfirmedEvent) bool {
			return e.BookingRef == "SKY-20260914-ABC123" && e.ContactEmail == "ada@example.com"
		})).Return(nil)

		svc := newTestService(repo, gateway, publisher)
		resp, err := svc.ResolvePayment(context.Background(), bookingID, userID, reference)

		require.NoError(t, err)
		assert.Equal(t, string(StatusConfirmed), resp.Status)
		assert.Equal(t, string(PaymentCompleted), resp.PaymentStatus)
		publisher.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("abandoned checkout leaves booking pending", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(bookingWithReference(), nil)

		gateway := new(MockGateway)
		gateway.On("VerifyTransaction", mock.Anything, reference).Return(&payments.VerifyResult{
			Status:    payments.TransactionAbandoned,
			Reference: reference,
		}, nil)

		svc := newTestService(repo, gateway, nil)
		resp, err := svc.ResolvePayment(context.Background(), bookingID, userID, reference)

		require.NoError(t, err)
		assert.Equal(t, string(StatusPending), resp.Status)
		assert.Equal(t, string(PaymentPending), resp.PaymentStatus)
		repo.AssertNotCalled(t, "UpdateBooking", mock.Anything, mock.Anything)
	})

	t.Run("failed charge marks payment failed", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(bookingWithReference(), nil)
		repo.On("UpdateBooking", mock.Anything, mock.AnythingOfType("*bookings.Booking")).Return(nil)

		gateway := new(MockGateway)
		gateway.On("VerifyTransaction", mock.Anything, reference).Return(&payments.VerifyResult{
			Status:    payments.TransactionFailed,
			Reference: reference,
		}, nil)

		svc := newTestService(repo, gateway, nil)
		resp, err := svc.ResolvePayment(context.Background(), bookingID, userID, reference)

		require.NoError(t, err)
		assert.Equal(t, string(StatusPending), resp.Status)
		assert.Equal(t, string(PaymentFailed), resp.PaymentStatus)
	})

	t.Run("mismatched reference refuses", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(bookingWithReference(), nil)

		svc := newTestService(repo, new(MockGateway), nil)
		_, err := svc.ResolvePayment(context.Background(), bookingID, userID, "PAY_2_SOMEONE")

		assert.ErrorIs(t, err, ErrInvalidBooking)
	})

	t.Run("payment never initiated refuses", func(t *testing.T) {
		noRef := bookingWithReference()
		noRef.PaymentReference = ""

		repo := new(MockRepository)
		repo.On("GetBookingByID", mock.Anything, bookingID).Return(noRef, nil)

		svc := newTestService(repo, new(MockGateway), nil)
		_, err := svc.ResolvePayment(context.Background(), bookingID, userID, reference)

		assert.ErrorIs(t, err, ErrPaymentNotStarted)
	})
}

func TestReconcilePendingPayments(t *testing.T) {
	userID := uuid.New()

	stuck := Booking{
		ID: uuid.New(), UserID: userID,
		BookingRef:       "SKY-20260914-STUCK1",
		ContactEmail:     "ada@example.com",
		Status:           string(StatusPending),
		PaymentStatus:    string(PaymentPending),
		PaymentReference: "PAY_1_STUCK",
	}

	repo := new(MockRepository)
	repo.On("GetStuckPendingBookings", mock.Anything, 15*time.Minute).Return([]Booking{stuck}, nil)
	repo.On("UpdateBooking", mock.Anything, mock.AnythingOfType("*bookings.Booking")).Return(nil)

	gateway := new(MockGateway)
	gateway.On("VerifyTransaction", mock.Anything, "PAY_1_STUCK").Return(&payments.VerifyResult{
		Status:    payments.TransactionSuccess,
		Reference: "PAY_1_STUCK",
	}, nil)

	publisher := new(MockPublisher)
	publisher.On("PublishBookingConfirmed", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, gateway, publisher)
	settled, err := svc.ReconcilePendingPayments(context.Background(), 15*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
}
