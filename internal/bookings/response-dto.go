package bookings

import "time"

// ReserveResponse represents the result of a successful reservation
type ReserveResponse struct {
	BookingID      string    `json:"booking_id"`
	BookingRef     string    `json:"booking_ref"`
	Amount         float64   `json:"amount"`
	Seats          []string  `json:"seats"`
	CheckoutURL    string    `json:"checkout_url,omitempty"`
	PaymentPending bool      `json:"payment_pending,omitempty"` // seats held, checkout session failed
	ExpiresAt      time.Time `json:"expires_at"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID         string     `json:"id"`
	ShowID     string     `json:"show_id"`
	BookingRef string     `json:"booking_ref"`
	Seats      []string   `json:"seats"`
	TotalSeats int        `json:"total_seats"`
	Amount     float64    `json:"amount"`
	Paid       bool       `json:"paid"`
	ExpiresAt  time.Time  `json:"expires_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID.String(),
		ShowID:     b.ShowID.String(),
		BookingRef: b.BookingRef,
		Seats:      b.SeatLabels(),
		TotalSeats: b.TotalSeats,
		Amount:     b.Amount,
		Paid:       b.Paid,
		ExpiresAt:  b.ExpiresAt,
		PaidAt:     b.PaidAt,
		CreatedAt:  b.CreatedAt,
	}
}
