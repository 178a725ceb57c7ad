package bookings

import (
	"context"
	"errors"
	"time"

	"zinema/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReleasedHold describes one booking reclaimed by the expiry worker
type ReleasedHold struct {
	BookingID uuid.UUID
	ShowID    uuid.UUID
	Seats     []string
}

type Repository interface {
	// ReserveSeats creates the booking row and its seat claims in one
	// transaction. A conflicting seat aborts the whole transaction with
	// shows.ErrSeatsUnavailable and nothing is persisted.
	ReserveSeats(ctx context.Context, booking *Booking, seatLabels []string) error

	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingBySessionID(ctx context.Context, sessionID string) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error)

	// SetSessionID records the checkout-session reference on the booking
	SetSessionID(ctx context.Context, bookingID uuid.UUID, sessionID string) error

	// MarkPaidBySession flips paid false→true for the booking owning the
	// session. The boolean reports whether this call performed the transition;
	// a duplicate delivery sees false.
	MarkPaidBySession(ctx context.Context, sessionID string) (*Booking, bool, error)

	// ReleaseExpiredHolds deletes pending bookings past their expiry together
	// with their seat claims. Deletion is conditional on paid=false re-checked
	// under a row lock, so a confirmation that lands mid-sweep wins.
	ReleaseExpiredHolds(ctx context.Context, now time.Time) ([]ReleasedHold, error)

	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	CreateCoupon(ctx context.Context, coupon *Coupon) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ReserveSeats(ctx context.Context, booking *Booking, seatLabels []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		bookingID := booking.ID
		return shows.ClaimSeats(tx, booking.ShowID, seatLabels, shows.UserToken(booking.UserID), &bookingID, nil)
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Claims").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingBySessionID(ctx context.Context, sessionID string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Claims").
		Where("session_id = ?", sessionID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	var bookingList []Booking
	var totalCount int64

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Claims").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookingList).Error
	if err != nil {
		return nil, 0, err
	}

	return bookingList, totalCount, nil
}

func (r *repository) SetSessionID(ctx context.Context, bookingID uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", bookingID).
		Update("session_id", sessionID).Error
}

func (r *repository) MarkPaidBySession(ctx context.Context, sessionID string) (*Booking, bool, error) {
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("session_id = ? AND paid = ?", sessionID, false).
		Updates(map[string]interface{}{
			"paid":       true,
			"paid_at":    now,
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, false, result.Error
	}

	booking, err := r.GetBookingBySessionID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	return booking, result.RowsAffected > 0, nil
}

func (r *repository) ReleaseExpiredHolds(ctx context.Context, now time.Time) ([]ReleasedHold, error) {
	var dueIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("paid = ? AND expires_at <= ?", false, now).
		Pluck("id", &dueIDs).Error
	if err != nil {
		return nil, err
	}

	released := make([]ReleasedHold, 0, len(dueIDs))

	// One transaction per booking: a failure on one hold must not keep the
	// rest locked past their window.
	for _, id := range dueIDs {
		hold := ReleasedHold{BookingID: id}

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var booking Booking
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", id).
				First(&booking).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil // already gone
				}
				return err
			}

			// Re-check under the lock: confirmation may have won this race
			if booking.Paid {
				return nil
			}

			seats, err := shows.ReleaseClaimsByBooking(tx, booking.ID)
			if err != nil {
				return err
			}

			if err := tx.Where("id = ? AND paid = ?", booking.ID, false).
				Delete(&Booking{}).Error; err != nil {
				return err
			}

			hold.ShowID = booking.ShowID
			hold.Seats = seats
			return nil
		})
		if err != nil {
			return released, err
		}

		if len(hold.Seats) > 0 || hold.ShowID != uuid.Nil {
			released = append(released, hold)
		}
	}

	return released, nil
}

func (r *repository) GetCouponByCode(ctx context.Context, code string) (*Coupon, error) {
	var coupon Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCoupon
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) CreateCoupon(ctx context.Context, coupon *Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}
