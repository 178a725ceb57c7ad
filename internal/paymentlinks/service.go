package paymentlinks

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"zinema/internal/bookings"
	"zinema/internal/shared/config"
	"zinema/internal/shows"
	"zinema/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for shareable payment links
type Service interface {
	// CreateLink holds the requested seats under a shareable link token
	CreateLink(ctx context.Context, creatorID uuid.UUID, req CreateLinkRequest) (*LinkResponse, error)

	// GetLink returns link status for the share page
	GetLink(ctx context.Context, linkID uuid.UUID) (*LinkResponse, error)

	// Checkout consumes an active link for the given user: a pending booking
	// is created, the seats transfer to the user, and the link becomes USED.
	Checkout(ctx context.Context, linkID, userID uuid.UUID, userEmail string) (*CheckoutResponse, error)

	// ExpireDue releases the seats of links past their expiry. Called by the
	// sweep worker.
	ExpireDue(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	bookingRepo bookings.Repository
	showService shows.Service
	gateway     bookings.PaymentGateway
	cfg         *config.Config
	log         *logger.Logger
}

// NewService creates a new payment link service instance
func NewService(repo Repository, bookingRepo bookings.Repository, showService shows.Service, gateway bookings.PaymentGateway, cfg *config.Config) Service {
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		showService: showService,
		gateway:     gateway,
		cfg:         cfg,
		log:         logger.GetDefault(),
	}
}

func (s *service) CreateLink(ctx context.Context, creatorID uuid.UUID, req CreateLinkRequest) (*LinkResponse, error) {
	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("invalid show ID: %w", err)
	}

	show, err := s.showService.ValidateSeatSelection(ctx, showID, req.Seats)
	if err != nil {
		return nil, err
	}

	expiry := s.cfg.Booking.LinkDefaultExpiry
	if req.ExpiryMinutes > 0 {
		expiry = time.Duration(req.ExpiryMinutes) * time.Minute
	}
	if expiry < s.cfg.Booking.LinkMinimumExpiry {
		expiry = s.cfg.Booking.LinkMinimumExpiry
	}

	link := &PaymentLink{
		ShowID:     showID,
		CreatorID:  creatorID,
		TotalSeats: len(req.Seats),
		Amount:     float64(len(req.Seats)) * show.BasePrice,
		Status:     LinkStatusActive,
		ExpiresAt:  time.Now().UTC().Add(expiry),
	}

	if err := s.repo.CreateLinkWithClaims(ctx, link, req.Seats); err != nil {
		return nil, err
	}

	s.showService.InvalidateSeatCache(ctx, showID)
	s.log.Info("payment link created",
		"link_id", link.ID.String(), "show_id", showID.String(), "seats", len(req.Seats))

	resp := toLinkResponse(link, req.Seats)
	return &resp, nil
}

func (s *service) GetLink(ctx context.Context, linkID uuid.UUID) (*LinkResponse, error) {
	link, err := s.repo.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	resp := toLinkResponse(link, link.SeatLabels())
	return &resp, nil
}

func (s *service) Checkout(ctx context.Context, linkID, userID uuid.UUID, userEmail string) (*CheckoutResponse, error) {
	link, err := s.repo.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	bookingRef, err := generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &bookings.Booking{
		ShowID:     link.ShowID,
		UserID:     userID,
		UserEmail:  userEmail,
		TotalSeats: link.TotalSeats,
		Amount:     link.Amount,
		Paid:       false,
		BookingRef: bookingRef,
		ExpiresAt:  time.Now().UTC().Add(s.cfg.Booking.HoldWindow),
	}

	if _, err := s.repo.ConsumeLink(ctx, linkID, booking); err != nil {
		return nil, err
	}

	s.showService.InvalidateSeatCache(ctx, link.ShowID)

	resp := &CheckoutResponse{
		BookingID:  booking.ID.String(),
		BookingRef: booking.BookingRef,
		Amount:     booking.Amount,
		ExpiresAt:  booking.ExpiresAt,
	}

	// Seats are already transferred; a gateway failure leaves the pending
	// booking for the expiry worker to reclaim, same as the direct flow.
	session, err := s.gateway.CreateCheckoutSession(ctx, bookings.CheckoutParams{
		Amount:     booking.Amount,
		Currency:   s.cfg.Payment.Currency,
		SuccessURL: s.cfg.Booking.FrontendBaseURL + s.cfg.Booking.CheckoutSuccessPath,
		CancelURL:  s.cfg.Booking.FrontendBaseURL + s.cfg.Booking.CheckoutCancelPath,
		Metadata: map[string]string{
			"booking_id":      booking.ID.String(),
			"payment_link_id": linkID.String(),
		},
	})
	if err != nil {
		s.log.Error("checkout session creation failed for link",
			"link_id", linkID.String(), "error", err.Error())
		resp.PaymentPending = true
		return resp, nil
	}

	if err := s.repo.SetSessionID(ctx, linkID, session.ID); err != nil {
		s.log.Error("failed to store session reference on link",
			"link_id", linkID.String(), "error", err.Error())
	}
	if err := s.bookingRepo.SetSessionID(ctx, booking.ID, session.ID); err != nil {
		s.log.Error("failed to store session reference on booking",
			"booking_id", booking.ID.String(), "error", err.Error())
	}

	resp.CheckoutURL = session.URL
	return resp, nil
}

func (s *service) ExpireDue(ctx context.Context) (int, error) {
	expired, err := s.repo.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		return len(expired), err
	}

	for _, link := range expired {
		s.showService.InvalidateSeatCache(ctx, link.ShowID)
		s.log.LogPaymentLinkExpired(ctx, link.LinkID.String(), link.ShowID.String(), link.SeatsReleased)
	}

	return len(expired), nil
}

// generateBookingReference generates a unique booking reference
func generateBookingReference() (string, error) {
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
