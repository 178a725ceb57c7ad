package shows

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Show operations
	CreateShow(ctx context.Context, show *Show) error
	GetShowByID(ctx context.Context, id uuid.UUID) (*Show, error)
	ListUpcomingShows(ctx context.Context, limit, offset int) ([]Show, int64, error)

	// Seat-claim reads
	GetOccupiedSeats(ctx context.Context, showID uuid.UUID) ([]SeatClaim, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateShow(ctx context.Context, show *Show) error {
	return r.db.WithContext(ctx).Create(show).Error
}

func (r *repository) GetShowByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) ListUpcomingShows(ctx context.Context, limit, offset int) ([]Show, int64, error) {
	var showList []Show
	var totalCount int64

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&Show{}).
		Where("status = ? AND starts_at > ?", ShowStatusScheduled, time.Now().UTC())

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("starts_at ASC").Limit(limit).Offset(offset).Find(&showList).Error
	if err != nil {
		return nil, 0, err
	}

	return showList, totalCount, nil
}

func (r *repository) GetOccupiedSeats(ctx context.Context, showID uuid.UUID) ([]SeatClaim, error) {
	var claims []SeatClaim
	err := r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("seat_label ASC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ClaimSeats inserts one claim row per label inside the caller's transaction.
// The unique index on (show_id, seat_label) rejects any label that already has
// an owner; the duplicate-key error aborts the transaction, so the claim set
// is all-or-nothing without any explicit read-then-write window.
func ClaimSeats(tx *gorm.DB, showID uuid.UUID, labels []string, ownerToken string, bookingID, linkID *uuid.UUID) error {
	claims := make([]SeatClaim, 0, len(labels))
	for _, label := range labels {
		claims = append(claims, SeatClaim{
			ShowID:        showID,
			SeatLabel:     label,
			OwnerToken:    ownerToken,
			BookingID:     bookingID,
			PaymentLinkID: linkID,
		})
	}

	if err := tx.Create(&claims).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSeatsUnavailable
		}
		return err
	}
	return nil
}

// ReleaseClaimsByBooking deletes a booking's claims and returns the freed labels
func ReleaseClaimsByBooking(tx *gorm.DB, bookingID uuid.UUID) ([]string, error) {
	var claims []SeatClaim
	if err := tx.Where("booking_id = ?", bookingID).Find(&claims).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("booking_id = ?", bookingID).Delete(&SeatClaim{}).Error; err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(claims))
	for _, c := range claims {
		labels = append(labels, c.SeatLabel)
	}
	return labels, nil
}

// ReleaseClaimsByLink deletes the claims still owned by a link's token. The
// owner check guards against deleting a claim the link checkout has already
// reassigned to a user.
func ReleaseClaimsByLink(tx *gorm.DB, linkID uuid.UUID) (int64, error) {
	result := tx.Where("payment_link_id = ? AND owner_token = ?", linkID, LinkToken(linkID)).
		Delete(&SeatClaim{})
	return result.RowsAffected, result.Error
}

// ReassignClaimsToBooking transfers a link's claims to the consuming user's
// booking, conditional on the link token still owning them. The returned count
// lets the caller verify no seat was lost to a partial expiry.
func ReassignClaimsToBooking(tx *gorm.DB, linkID uuid.UUID, bookingID uuid.UUID, userToken string) (int64, error) {
	result := tx.Model(&SeatClaim{}).
		Where("payment_link_id = ? AND owner_token = ?", linkID, LinkToken(linkID)).
		Updates(map[string]interface{}{
			"owner_token": userToken,
			"booking_id":  bookingID,
		})
	return result.RowsAffected, result.Error
}

// CountClaimsByLink counts the seats a link's token still owns
func CountClaimsByLink(tx *gorm.DB, linkID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&SeatClaim{}).
		Where("payment_link_id = ? AND owner_token = ?", linkID, LinkToken(linkID)).
		Count(&count).Error
	return count, err
}
