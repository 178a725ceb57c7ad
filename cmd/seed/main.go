package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"zinema/internal/bookings"
	"zinema/internal/shared/config"
	"zinema/internal/shared/database"
	"zinema/internal/shows"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Zinema Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"seat_claims",
		"payment_links",
		"bookings",
		"coupons",
		"shows",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
		fmt.Printf("  ✓ Truncated %s\n", table)
	}

	return tx.Commit().Error
}

// SeedAll creates a slate of upcoming shows and a couple of coupons
func (s *Seeder) SeedAll() error {
	if err := s.seedShows(); err != nil {
		return fmt.Errorf("failed to seed shows: %w", err)
	}
	if err := s.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}
	return nil
}

func (s *Seeder) seedShows() error {
	adminID := uuid.New()
	now := time.Now()

	slate := []shows.Show{
		{
			MovieTitle:  "Interstellar (IMAX re-release)",
			MovieRef:    "tmdb:157336",
			Screen:      "IMAX-1",
			StartsAt:    now.Add(24 * time.Hour).Truncate(time.Hour),
			BasePrice:   18.50,
			SeatRows:    12,
			SeatsPerRow: 24,
			Status:      shows.ShowStatusScheduled,
			CreatedBy:   adminID,
		},
		{
			MovieTitle:  "The Grand Budapest Hotel",
			MovieRef:    "tmdb:120467",
			Screen:      "Screen-3",
			StartsAt:    now.Add(26 * time.Hour).Truncate(time.Hour),
			BasePrice:   12.00,
			SeatRows:    10,
			SeatsPerRow: 20,
			Status:      shows.ShowStatusScheduled,
			CreatedBy:   adminID,
		},
		{
			MovieTitle:  "Spirited Away",
			MovieRef:    "tmdb:129",
			Screen:      "Screen-2",
			StartsAt:    now.Add(48 * time.Hour).Truncate(time.Hour),
			BasePrice:   10.50,
			SeatRows:    8,
			SeatsPerRow: 16,
			Status:      shows.ShowStatusScheduled,
			CreatedBy:   adminID,
		},
		{
			MovieTitle:  "Dune: Part Two",
			MovieRef:    "tmdb:693134",
			Screen:      "IMAX-1",
			StartsAt:    now.Add(72 * time.Hour).Truncate(time.Hour),
			BasePrice:   17.00,
			SeatRows:    12,
			SeatsPerRow: 24,
			Status:      shows.ShowStatusScheduled,
			CreatedBy:   adminID,
		},
	}

	for i := range slate {
		if err := s.db.PostgreSQL.Create(&slate[i]).Error; err != nil {
			return err
		}
		fmt.Printf("  ✓ Show: %s @ %s (%s)\n",
			slate[i].MovieTitle, slate[i].Screen, slate[i].StartsAt.Format(time.RFC822))
	}

	return nil
}

func (s *Seeder) seedCoupons() error {
	coupons := []bookings.Coupon{
		{Code: "OPENING10", PercentOff: 10, Active: true},
		{Code: "MATINEE25", PercentOff: 25, Active: true},
		{Code: "EXPIRED50", PercentOff: 50, Active: false},
	}

	for i := range coupons {
		if err := s.db.PostgreSQL.Create(&coupons[i]).Error; err != nil {
			return err
		}
		fmt.Printf("  ✓ Coupon: %s (%d%% off, active=%v)\n",
			coupons[i].Code, coupons[i].PercentOff, coupons[i].Active)
	}

	return nil
}
