package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the database constraints the booking flow relies on.
// The unique index on (show_id, seat_label) is the concurrency control for seat
// claims: two transactions inserting a claim for the same seat cannot both
// commit, so a conflicting reservation fails atomically instead of racing.
func MigrateConstraints(db *gorm.DB) error {
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_show
		ON seat_claims (show_id, seat_label);
	`).Error
	if err != nil {
		return err
	}

	// Expiry worker scans pending bookings by due time
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_pending_expiry
		ON bookings (expires_at) WHERE paid = false;
	`).Error
	if err != nil {
		return err
	}

	// Link sweep scans active links by expiry
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payment_links_active_expiry
		ON payment_links (expires_at) WHERE status = 'ACTIVE';
	`).Error
	if err != nil {
		return err
	}

	return nil
}
