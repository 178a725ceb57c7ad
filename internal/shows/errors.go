package shows

import "errors"

var (
	// ErrShowNotFound is returned when a show id resolves to nothing
	ErrShowNotFound = errors.New("show not found")

	// ErrShowNotBookable is returned for cancelled or already-started shows
	ErrShowNotBookable = errors.New("show is not open for booking")

	// ErrInvalidSeatLabel is returned when a label is outside the show's grid
	ErrInvalidSeatLabel = errors.New("invalid seat label")

	// ErrSeatsUnavailable is returned when any requested seat already has an
	// owner. The whole claim set is rolled back; no partial holds are left.
	ErrSeatsUnavailable = errors.New("one or more seats are no longer available")
)
