package shows

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type ShowStatus string

const (
	ShowStatusScheduled ShowStatus = "SCHEDULED"
	ShowStatusCancelled ShowStatus = "CANCELLED"
)

// Show is a single screening of a movie. The seat grid is SeatRows lettered
// rows of SeatsPerRow seats, so valid labels run "A1" through e.g. "J20".
type Show struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	MovieTitle  string     `json:"movie_title" gorm:"not null;size:255"`
	MovieRef    string     `json:"movie_ref" gorm:"size:50"` // external catalog id (TMDB)
	Screen      string     `json:"screen" gorm:"not null;size:50"`
	StartsAt    time.Time  `json:"starts_at" gorm:"not null;index"`
	BasePrice   float64    `json:"base_price" gorm:"not null;check:base_price >= 0"`
	SeatRows    int        `json:"seat_rows" gorm:"not null;default:10;check:seat_rows > 0"`
	SeatsPerRow int        `json:"seats_per_row" gorm:"not null;default:20;check:seats_per_row > 0"`
	Status      ShowStatus `json:"status" gorm:"type:varchar(20);default:'SCHEDULED'"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SeatClaim is one seat's ownership record. A row exists if and only if the
// seat is currently held or booked; absence means available. The unique index
// on (show_id, seat_label) makes inserting a claim an atomic test-and-set.
type SeatClaim struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ShowID        uuid.UUID  `json:"show_id" gorm:"type:uuid;not null;index"`
	SeatLabel     string     `json:"seat_label" gorm:"not null;size:8"`
	OwnerToken    string     `json:"owner_token" gorm:"not null;size:64"`
	BookingID     *uuid.UUID `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	PaymentLinkID *uuid.UUID `json:"payment_link_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for Show
func (Show) TableName() string {
	return "shows"
}

// TableName sets the table name for SeatClaim
func (SeatClaim) TableName() string {
	return "seat_claims"
}

// UserToken builds the owner token for a direct user reservation
func UserToken(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// LinkToken builds the owner token for a shareable payment link hold
func LinkToken(linkID uuid.UUID) string {
	return "link:" + linkID.String()
}

// IsBookable reports whether seats can still be reserved for this show
func (s *Show) IsBookable(now time.Time) bool {
	return s.Status == ShowStatusScheduled && s.StartsAt.After(now)
}

// ValidSeatLabel checks a label like "E7" against the show's seat grid
func (s *Show) ValidSeatLabel(label string) bool {
	if len(label) < 2 {
		return false
	}
	row := label[0]
	if row < 'A' || int(row-'A') >= s.SeatRows {
		return false
	}
	num, err := strconv.Atoi(label[1:])
	if err != nil {
		return false
	}
	return num >= 1 && num <= s.SeatsPerRow
}

// SeatLabel builds a label from a zero-based row and one-based seat number
func SeatLabel(row int, number int) string {
	return fmt.Sprintf("%c%d", 'A'+row, number)
}
