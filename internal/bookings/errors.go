package bookings

import "errors"

var (
	// ErrBookingNotFound is returned when a booking id resolves to nothing
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidCoupon is returned for unknown or deactivated coupon codes
	ErrInvalidCoupon = errors.New("invalid coupon code")
)
