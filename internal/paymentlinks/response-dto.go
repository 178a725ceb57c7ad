package paymentlinks

import "time"

// LinkResponse represents a payment link in API responses
type LinkResponse struct {
	ID         string     `json:"id"`
	ShowID     string     `json:"show_id"`
	Seats      []string   `json:"seats"`
	TotalSeats int        `json:"total_seats"`
	Amount     float64    `json:"amount"`
	Status     LinkStatus `json:"status"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CheckoutResponse represents the result of consuming a link
type CheckoutResponse struct {
	BookingID      string    `json:"booking_id"`
	BookingRef     string    `json:"booking_ref"`
	Amount         float64   `json:"amount"`
	CheckoutURL    string    `json:"checkout_url,omitempty"`
	PaymentPending bool      `json:"payment_pending,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func toLinkResponse(l *PaymentLink, seats []string) LinkResponse {
	return LinkResponse{
		ID:         l.ID.String(),
		ShowID:     l.ShowID.String(),
		Seats:      seats,
		TotalSeats: l.TotalSeats,
		Amount:     l.Amount,
		Status:     l.Status,
		ExpiresAt:  l.ExpiresAt,
		CreatedAt:  l.CreatedAt,
	}
}
