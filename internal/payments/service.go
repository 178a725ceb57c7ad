package payments

import (
	"context"
	"errors"

	"zinema/internal/bookings"
	"zinema/pkg/logger"
)

// ErrSessionNotFound is returned when the gateway references a session with no
// matching booking (for example one already reclaimed by the expiry worker).
// Callers acknowledge it to the gateway instead of provoking redelivery.
var ErrSessionNotFound = errors.New("no booking for payment session")

// NotificationPublisher interface for confirmation side effects (to avoid circular dependency)
type NotificationPublisher interface {
	PublishBookingConfirmed(ctx context.Context, booking *bookings.Booking) error
	PublishLoyaltyCredit(ctx context.Context, userID string, amount float64) error
}

// Service interface defines the contract for payment confirmation logic
type Service interface {
	// Confirm marks the booking owning the session as paid. Safe under
	// at-least-once delivery: only the call that actually performs the
	// unpaid→paid transition dispatches side effects.
	Confirm(ctx context.Context, sessionID string) error
}

type service struct {
	repo      bookings.Repository
	publisher NotificationPublisher
	log       *logger.Logger
}

// NewService creates a new payment confirmation service. publisher may be nil;
// confirmations then complete without side effects.
func NewService(repo bookings.Repository, publisher NotificationPublisher) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		log:       logger.GetDefault(),
	}
}

func (s *service) Confirm(ctx context.Context, sessionID string) error {
	booking, transitioned, err := s.repo.MarkPaidBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			// The hold expired and the booking was deleted before the gateway
			// delivered the event. Nothing to resurrect.
			return ErrSessionNotFound
		}
		return err
	}

	if !transitioned {
		// Duplicate delivery: the booking is already paid. Side effects were
		// dispatched by the call that won the transition.
		s.log.Info("duplicate payment confirmation ignored", "session_id", sessionID)
		return nil
	}

	s.log.LogBookingPaid(ctx, booking.ID.String(), sessionID)

	// Side effects are fire-and-forget: their failure never rolls back the
	// committed confirmation.
	if s.publisher != nil {
		if err := s.publisher.PublishBookingConfirmed(ctx, booking); err != nil {
			s.log.Error("failed to publish booking confirmation",
				"booking_id", booking.ID.String(), "error", err.Error())
		}
		if err := s.publisher.PublishLoyaltyCredit(ctx, booking.UserID.String(), booking.Amount); err != nil {
			s.log.Error("failed to publish loyalty credit",
				"booking_id", booking.ID.String(), "error", err.Error())
		}
	}

	return nil
}
