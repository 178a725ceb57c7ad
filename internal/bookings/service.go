package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"zinema/internal/shared/config"
	"zinema/internal/shows"
	"zinema/pkg/logger"

	"github.com/google/uuid"
)

// PaymentGateway interface for checkout session creation (to avoid circular dependency)
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}

// CheckoutParams describes the session to create at the gateway
type CheckoutParams struct {
	Amount     float64
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the gateway's handle for a created session
type CheckoutSession struct {
	ID  string
	URL string
}

// Service interface defines the contract for booking business logic
type Service interface {
	// Reserve claims the requested seats for the user, creates a pending
	// booking, and opens a checkout session. On seat conflict nothing is
	// persisted. A gateway failure leaves the pending booking in place; the
	// expiry worker reclaims it if payment never completes.
	Reserve(ctx context.Context, userID uuid.UUID, userEmail string, req ReserveRequest) (*ReserveResponse, error)

	GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BookingResponse, int64, error)

	// ReleaseExpiredHolds reclaims seats from pending bookings past their hold
	// window. Called by the expiry worker.
	ReleaseExpiredHolds(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	showService shows.Service
	gateway     PaymentGateway
	cfg         *config.Config
	log         *logger.Logger
}

// NewService creates a new booking service instance
func NewService(repo Repository, showService shows.Service, gateway PaymentGateway, cfg *config.Config) Service {
	return &service{
		repo:        repo,
		showService: showService,
		gateway:     gateway,
		cfg:         cfg,
		log:         logger.GetDefault(),
	}
}

func (s *service) Reserve(ctx context.Context, userID uuid.UUID, userEmail string, req ReserveRequest) (*ReserveResponse, error) {
	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("invalid show ID: %w", err)
	}

	// Step 1: Validate the seat selection against the show's grid
	show, err := s.showService.ValidateSeatSelection(ctx, showID, req.Seats)
	if err != nil {
		return nil, err
	}

	// Step 2: Price the selection
	amount, err := s.priceSeats(ctx, show, len(req.Seats), req.CouponCode)
	if err != nil {
		return nil, err
	}

	// Step 3: Generate booking reference
	bookingRef, err := s.generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		ShowID:     showID,
		UserID:     userID,
		UserEmail:  userEmail,
		TotalSeats: len(req.Seats),
		Amount:     amount,
		Paid:       false,
		BookingRef: bookingRef,
		ExpiresAt:  time.Now().UTC().Add(s.cfg.Booking.HoldWindow),
	}

	// Step 4: Claim seats and create the booking atomically. A conflict on any
	// seat rolls the whole thing back.
	if err := s.repo.ReserveSeats(ctx, booking, req.Seats); err != nil {
		return nil, err
	}

	s.showService.InvalidateSeatCache(ctx, showID)
	s.log.LogSeatsReserved(ctx, booking.ID.String(), showID.String(), userID.String(), req.Seats)

	// Step 5: Open a checkout session. Seats are already held; a gateway
	// failure is reported but does not roll the hold back.
	resp := &ReserveResponse{
		BookingID:  booking.ID.String(),
		BookingRef: booking.BookingRef,
		Amount:     amount,
		Seats:      req.Seats,
		ExpiresAt:  booking.ExpiresAt,
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		Amount:     amount,
		Currency:   s.cfg.Payment.Currency,
		SuccessURL: s.cfg.Booking.FrontendBaseURL + s.cfg.Booking.CheckoutSuccessPath,
		CancelURL:  s.cfg.Booking.FrontendBaseURL + s.cfg.Booking.CheckoutCancelPath,
		Metadata:   map[string]string{"booking_id": booking.ID.String()},
	})
	if err != nil {
		s.log.Error("checkout session creation failed",
			"booking_id", booking.ID.String(), "error", err.Error())
		resp.PaymentPending = true
		return resp, nil
	}

	if err := s.repo.SetSessionID(ctx, booking.ID, session.ID); err != nil {
		s.log.Error("failed to store session reference",
			"booking_id", booking.ID.String(), "error", err.Error())
	}

	resp.CheckoutURL = session.URL
	return resp, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != userID {
		return nil, ErrBookingNotFound
	}

	resp := toBookingResponse(booking)
	return &resp, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BookingResponse, int64, error) {
	bookingList, total, err := s.repo.GetUserBookings(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BookingResponse, 0, len(bookingList))
	for i := range bookingList {
		responses = append(responses, toBookingResponse(&bookingList[i]))
	}
	return responses, total, nil
}

func (s *service) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	released, err := s.repo.ReleaseExpiredHolds(ctx, time.Now().UTC())
	if err != nil {
		return len(released), err
	}

	for _, hold := range released {
		s.showService.InvalidateSeatCache(ctx, hold.ShowID)
		s.log.LogHoldExpired(ctx, hold.BookingID.String(), hold.ShowID.String(), hold.Seats)
	}

	return len(released), nil
}

// priceSeats computes seat count × base price, minus any coupon discount
func (s *service) priceSeats(ctx context.Context, show *shows.Show, seatCount int, couponCode string) (float64, error) {
	amount := float64(seatCount) * show.BasePrice

	if couponCode != "" {
		coupon, err := s.repo.GetCouponByCode(ctx, couponCode)
		if err != nil {
			return 0, err
		}
		amount = amount * float64(100-coupon.PercentOff) / 100
	}

	return amount, nil
}

// generateBookingReference generates a unique booking reference
func (s *service) generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("ZNM-%s-%s", timestamp, string(randomPart)), nil
}
