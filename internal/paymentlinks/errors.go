package paymentlinks

import "errors"

var (
	// ErrLinkNotFound is returned when a link id resolves to nothing
	ErrLinkNotFound = errors.New("payment link not found")

	// ErrLinkNotActive is returned for used or expired links
	ErrLinkNotActive = errors.New("payment link has already been used or expired")

	// ErrLinkExpired is returned when the expiry timestamp has passed even if
	// the sweep has not flipped the status yet
	ErrLinkExpired = errors.New("payment link has expired")

	// ErrSeatsNoLongerAvailable is returned when the link's seats are no longer
	// all owned by the link token (a partial expiry or manual release raced us)
	ErrSeatsNoLongerAvailable = errors.New("seats are no longer held by this link")
)
