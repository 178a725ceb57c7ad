package bookings

import (
	"time"

	"zinema/internal/shows"

	"github.com/google/uuid"
)

// Booking is a seat reservation: pending (unpaid, seats held until ExpiresAt)
// or paid (permanent receipt). A pending booking past its expiry is deleted by
// the expiry worker together with its seat claims.
type Booking struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"show_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	UserEmail  string     `gorm:"size:255" json:"user_email"`
	TotalSeats int        `gorm:"not null" json:"total_seats"`
	Amount     float64    `gorm:"not null" json:"amount"`
	Paid       bool       `gorm:"not null;default:false" json:"paid"`
	SessionID  string     `gorm:"index;size:128" json:"session_id,omitempty"`
	BookingRef string     `gorm:"unique;not null" json:"booking_ref"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relationships
	Claims []shows.SeatClaim `json:"claims,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// Coupon is a flat-percentage discount code applied at pricing time
type Coupon struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code       string    `gorm:"unique;not null;size:50" json:"code"`
	PercentOff int       `gorm:"not null;check:percent_off > 0 AND percent_off <= 100" json:"percent_off"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for Coupon
func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired reports whether the hold window has elapsed for a pending booking
func (b *Booking) IsExpired(now time.Time) bool {
	return !b.Paid && now.After(b.ExpiresAt)
}

// SeatLabels returns the labels of the booking's claims
func (b *Booking) SeatLabels() []string {
	labels := make([]string, 0, len(b.Claims))
	for _, claim := range b.Claims {
		labels = append(labels, claim.SeatLabel)
	}
	return labels
}
