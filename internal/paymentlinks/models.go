package paymentlinks

import (
	"time"

	"zinema/internal/shows"

	"github.com/google/uuid"
)

type LinkStatus string

const (
	LinkStatusActive  LinkStatus = "ACTIVE"
	LinkStatusUsed    LinkStatus = "USED"
	LinkStatusExpired LinkStatus = "EXPIRED"
)

// PaymentLink locks seats under a shareable token instead of a user, so anyone
// holding the link can complete the purchase before it expires. A link is
// consumed at most once; USED and EXPIRED are terminal.
type PaymentLink struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"show_id"`
	CreatorID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"creator_id"`
	TotalSeats int        `gorm:"not null" json:"total_seats"`
	Amount     float64    `gorm:"not null" json:"amount"`
	Status     LinkStatus `gorm:"type:varchar(20);default:'ACTIVE';check:status IN ('ACTIVE', 'USED', 'EXPIRED')" json:"status"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	SessionID  string     `gorm:"size:128" json:"session_id,omitempty"`
	BookingID  *uuid.UUID `gorm:"type:uuid" json:"booking_id,omitempty"`
	ConsumedBy *uuid.UUID `gorm:"type:uuid" json:"consumed_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relationships
	Claims []shows.SeatClaim `json:"claims,omitempty" gorm:"foreignKey:PaymentLinkID;constraint:OnDelete:SET NULL;"`
}

// TableName sets the table name for PaymentLink
func (PaymentLink) TableName() string {
	return "payment_links"
}

// IsActive reports whether the link can still be consumed
func (l *PaymentLink) IsActive(now time.Time) bool {
	return l.Status == LinkStatusActive && l.ExpiresAt.After(now)
}

// SeatLabels returns the labels of the link's claims
func (l *PaymentLink) SeatLabels() []string {
	labels := make([]string, 0, len(l.Claims))
	for _, claim := range l.Claims {
		labels = append(labels, claim.SeatLabel)
	}
	return labels
}
