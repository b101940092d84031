package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what kind of message is being delivered
type NotificationType string

const (
	TypeBookingConfirmed NotificationType = "booking_confirmed"
	TypePaymentFailed    NotificationType = "payment_failed"
)

// NotificationStatus tracks delivery progress
type NotificationStatus string

const (
	StatusQueued  NotificationStatus = "QUEUED"
	StatusSending NotificationStatus = "SENDING"
	StatusSent    NotificationStatus = "SENT"
	StatusFailed  NotificationStatus = "FAILED"
)

// EmailNotification is the message envelope placed on the notification topic
type EmailNotification struct {
	ID             uuid.UUID          `json:"id"`
	Type           NotificationType   `json:"type"`
	RecipientEmail string             `json:"recipient_email"`
	Subject        string             `json:"subject"`
	Body           string             `json:"body"`
	BookingID      string             `json:"booking_id,omitempty"`
	BookingRef     string             `json:"booking_ref,omitempty"`
	Status         NotificationStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	SentAt         *time.Time         `json:"sent_at,omitempty"`
	LastError      *string            `json:"last_error,omitempty"`
}

// NewEmailNotification builds a queued notification
func NewEmailNotification(notificationType NotificationType, recipientEmail, subject, body string) *EmailNotification {
	return &EmailNotification{
		ID:             uuid.New(),
		Type:           notificationType,
		RecipientEmail: recipientEmail,
		Subject:        subject,
		Body:           body,
		Status:         StatusQueued,
		CreatedAt:      time.Now(),
	}
}

// GetPartitionKey routes all messages for one recipient to one partition
func (n *EmailNotification) GetPartitionKey() string {
	return n.RecipientEmail
}

// ToJSON serializes the notification for transport
func (n *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// MarkSent records successful delivery
func (n *EmailNotification) MarkSent() {
	n.Status = StatusSent
	now := time.Now()
	n.SentAt = &now
}

// MarkFailed records a delivery failure
func (n *EmailNotification) MarkFailed(err error) {
	n.Status = StatusFailed
	msg := err.Error()
	n.LastError = &msg
}
