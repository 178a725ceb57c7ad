package paymentlinks

import (
	"context"
	"errors"
	"time"

	"zinema/internal/bookings"
	"zinema/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpiredLink describes one link swept by the expiry job
type ExpiredLink struct {
	LinkID        uuid.UUID
	ShowID        uuid.UUID
	SeatsReleased int
}

type Repository interface {
	// CreateLinkWithClaims creates the link and claims its seats under the
	// link token in one transaction. Conflicting seats abort everything with
	// shows.ErrSeatsUnavailable.
	CreateLinkWithClaims(ctx context.Context, link *PaymentLink, seatLabels []string) error

	GetLinkByID(ctx context.Context, id uuid.UUID) (*PaymentLink, error)

	// ConsumeLink atomically transfers an active link's seats to a new pending
	// booking for the consuming user and marks the link USED. All checks run
	// under a row lock on the link, so two concurrent consumers cannot both
	// succeed.
	ConsumeLink(ctx context.Context, linkID uuid.UUID, booking *bookings.Booking) (*PaymentLink, error)

	// SetSessionID records the checkout session on a consumed link
	SetSessionID(ctx context.Context, linkID uuid.UUID, sessionID string) error

	// SweepExpired releases the seats of active links past their expiry and
	// marks them EXPIRED, one transaction per link.
	SweepExpired(ctx context.Context, now time.Time) ([]ExpiredLink, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateLinkWithClaims(ctx context.Context, link *PaymentLink, seatLabels []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(link).Error; err != nil {
			return err
		}

		linkID := link.ID
		return shows.ClaimSeats(tx, link.ShowID, seatLabels, shows.LinkToken(linkID), nil, &linkID)
	})
}

func (r *repository) GetLinkByID(ctx context.Context, id uuid.UUID) (*PaymentLink, error) {
	var link PaymentLink
	err := r.db.WithContext(ctx).
		Preload("Claims").
		Where("id = ?", id).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *repository) ConsumeLink(ctx context.Context, linkID uuid.UUID, booking *bookings.Booking) (*PaymentLink, error) {
	var link PaymentLink

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", linkID).
			First(&link).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return err
		}

		now := time.Now().UTC()
		if link.Status != LinkStatusActive {
			return ErrLinkNotActive
		}
		if !link.ExpiresAt.After(now) {
			return ErrLinkExpired
		}

		// Every seat must still be owned by the link token. A partial expiry
		// or any other release means the hold is no longer intact.
		owned, err := shows.CountClaimsByLink(tx, linkID)
		if err != nil {
			return err
		}
		if owned != int64(link.TotalSeats) {
			return ErrSeatsNoLongerAvailable
		}

		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		reassigned, err := shows.ReassignClaimsToBooking(tx, linkID, booking.ID, shows.UserToken(booking.UserID))
		if err != nil {
			return err
		}
		if reassigned != int64(link.TotalSeats) {
			return ErrSeatsNoLongerAvailable
		}

		bookingID := booking.ID
		consumedBy := booking.UserID
		return tx.Model(&PaymentLink{}).
			Where("id = ? AND status = ?", linkID, LinkStatusActive).
			Updates(map[string]interface{}{
				"status":      LinkStatusUsed,
				"booking_id":  bookingID,
				"consumed_by": consumedBy,
				"updated_at":  now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *repository) SetSessionID(ctx context.Context, linkID uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&PaymentLink{}).
		Where("id = ?", linkID).
		Update("session_id", sessionID).Error
}

func (r *repository) SweepExpired(ctx context.Context, now time.Time) ([]ExpiredLink, error) {
	var dueIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&PaymentLink{}).
		Where("status = ? AND expires_at <= ?", LinkStatusActive, now).
		Pluck("id", &dueIDs).Error
	if err != nil {
		return nil, err
	}

	expired := make([]ExpiredLink, 0, len(dueIDs))

	for _, id := range dueIDs {
		entry := ExpiredLink{LinkID: id}

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var link PaymentLink
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", id).
				First(&link).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}

			// Re-check under the lock: a checkout may have consumed the link
			// between the scan and now
			if link.Status != LinkStatusActive {
				return nil
			}

			released, err := shows.ReleaseClaimsByLink(tx, link.ID)
			if err != nil {
				return err
			}

			if err := tx.Model(&PaymentLink{}).
				Where("id = ? AND status = ?", link.ID, LinkStatusActive).
				Updates(map[string]interface{}{
					"status":     LinkStatusExpired,
					"updated_at": now,
				}).Error; err != nil {
				return err
			}

			entry.ShowID = link.ShowID
			entry.SeatsReleased = int(released)
			return nil
		})
		if err != nil {
			return expired, err
		}

		if entry.ShowID != uuid.Nil {
			expired = append(expired, entry)
		}
	}

	return expired, nil
}
