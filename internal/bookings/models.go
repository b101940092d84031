package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking defines the main booking structure
type Booking struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	BookingRef       string     `gorm:"unique;not null" json:"booking_ref"`
	Origin           string     `gorm:"type:varchar(3);not null" json:"origin"`
	Destination      string     `gorm:"type:varchar(3);not null" json:"destination"`
	TripType         string     `gorm:"type:varchar(20);not null" json:"trip_type"`
	DepartureDate    time.Time  `gorm:"not null" json:"departure_date"`
	ReturnDate       *time.Time `json:"return_date,omitempty"`
	TotalPrice       float64    `gorm:"not null" json:"total_price"`
	Currency         string     `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	OfferJSON        string     `gorm:"type:jsonb;not null" json:"-"`
	ContactEmail     string     `gorm:"not null" json:"contact_email"`
	ContactPhone     string     `json:"contact_phone"`
	Status           string     `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED');default:'PENDING'" json:"status"`
	PaymentStatus    string     `gorm:"type:varchar(20);check:payment_status IN ('PENDING', 'COMPLETED', 'FAILED');default:'PENDING'" json:"payment_status"`
	PaymentReference string     `gorm:"index" json:"payment_reference,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`

	// Relationships
	Passengers []Passenger `json:"passengers,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// Passenger defines the structure for individual travellers on a booking
type Passenger struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID      uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	Type           string    `gorm:"type:varchar(10);check:type IN ('ADULT', 'CHILD', 'INFANT');not null" json:"type"`
	FirstName      string    `gorm:"not null" json:"first_name"`
	LastName       string    `gorm:"not null" json:"last_name"`
	DateOfBirth    time.Time `gorm:"not null" json:"date_of_birth"`
	PassportNumber string    `json:"passport_number,omitempty"`
	Nationality    string    `gorm:"type:varchar(2)" json:"nationality,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Relationships
	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for Passenger
func (Passenger) TableName() string {
	return "passengers"
}

// Helper methods for booking management
func (b *Booking) IsPending() bool {
	return b.Status == string(StatusPending)
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == string(StatusConfirmed)
}

func (b *Booking) IsCancelled() bool {
	return b.Status == string(StatusCancelled)
}

// CanBeCancelled reports whether the booking is eligible for cancellation
// at the given moment. Only confirmed bookings whose first departure is
// still in the future qualify.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	return b.IsConfirmed() && b.DepartureDate.After(now)
}

func (b *Booking) Cancel() {
	b.Status = string(StatusCancelled)
	now := time.Now()
	b.CancelledAt = &now
	b.UpdatedAt = now
}

func (b *Booking) MarkPaymentCompleted(reference string) {
	b.PaymentStatus = string(PaymentCompleted)
	b.Status = string(StatusConfirmed)
	b.PaymentReference = reference
	b.UpdatedAt = time.Now()
}

func (b *Booking) MarkPaymentFailed(reference string) {
	b.PaymentStatus = string(PaymentFailed)
	b.PaymentReference = reference
	b.UpdatedAt = time.Now()
}
