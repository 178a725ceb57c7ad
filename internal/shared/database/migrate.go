package database

import (
	"zinema/internal/bookings"
	"zinema/internal/paymentlinks"
	"zinema/internal/shows"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4() defaults on the models need this
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&shows.Show{},
		&shows.SeatClaim{},
		&bookings.Booking{},
		&bookings.Coupon{},
		&paymentlinks.PaymentLink{},
	)
}
