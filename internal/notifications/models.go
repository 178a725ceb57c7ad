package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationTypeHoldExpired      NotificationType = "HOLD_EXPIRED"
)

// Only email channel is implemented.
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "EMAIL"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// EmailNotification is the message body carried on the notification topic.
type EmailNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	ShowID    *uuid.UUID `json:"show_id,omitempty"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Status     NotificationStatus `json:"status"`
	RetryCount int                `json:"retry_count"`
	MaxRetries int                `json:"max_retries"`
	LastError  *string            `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

// LoyaltyCreditEvent is published to the loyalty topic whenever a booking
// transitions to paid. A downstream loyalty service consumes it.
type LoyaltyCreditEvent struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *LoyaltyCreditEvent) marshal() ([]byte, error) {
	return json.Marshal(e)
}

func NewEmailNotification(nType NotificationType) *EmailNotification {
	now := time.Now()
	return &EmailNotification{
		ID:         uuid.New(),
		Type:       nType,
		Priority:   NotificationPriorityMedium,
		Status:     NotificationStatusPending,
		MaxRetries: 3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (n *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey routes all notifications for the same recipient to the
// same partition so a user's emails are delivered in order.
func (n *EmailNotification) GetPartitionKey() string {
	if n.RecipientEmail != "" {
		return n.RecipientEmail
	}
	return n.ID.String()
}

func (n *EmailNotification) IsExpired() bool {
	return n.ExpiresAt != nil && time.Now().After(*n.ExpiresAt)
}

func (n *EmailNotification) MarkSent() {
	now := time.Now()
	n.Status = NotificationStatusSent
	n.SentAt = &now
	n.UpdatedAt = now
}

func (n *EmailNotification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	n.RetryCount++
	errStr := err.Error()
	n.LastError = &errStr
	n.UpdatedAt = time.Now()
}
