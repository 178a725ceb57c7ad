package paymentlinks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zinema/internal/bookings"
	"zinema/internal/shared/config"
	"zinema/internal/shows"
)

// fakeLinkRepo is an in-memory Repository with the same locking semantics as
// the real one: consumption and sweeps are serialized, a link can only move
// out of ACTIVE once.
type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[uuid.UUID]*PaymentLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[uuid.UUID]*PaymentLink)}
}

func (f *fakeLinkRepo) CreateLinkWithClaims(ctx context.Context, link *PaymentLink, seatLabels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	for _, label := range seatLabels {
		linkID := link.ID
		link.Claims = append(link.Claims, shows.SeatClaim{
			ShowID:        link.ShowID,
			SeatLabel:     label,
			OwnerToken:    shows.LinkToken(link.ID),
			PaymentLinkID: &linkID,
		})
	}
	f.links[link.ID] = link
	return nil
}

func (f *fakeLinkRepo) GetLinkByID(ctx context.Context, id uuid.UUID) (*PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[id]
	if !ok {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (f *fakeLinkRepo) ConsumeLink(ctx context.Context, linkID uuid.UUID, booking *bookings.Booking) (*PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	link, ok := f.links[linkID]
	if !ok {
		return nil, ErrLinkNotFound
	}
	if link.Status != LinkStatusActive {
		return nil, ErrLinkNotActive
	}
	if !link.ExpiresAt.After(time.Now()) {
		return nil, ErrLinkExpired
	}
	if len(link.Claims) != link.TotalSeats {
		return nil, ErrSeatsNoLongerAvailable
	}

	booking.ID = uuid.New()
	for i := range link.Claims {
		link.Claims[i].OwnerToken = shows.UserToken(booking.UserID)
		link.Claims[i].BookingID = &booking.ID
		link.Claims[i].PaymentLinkID = nil
	}
	link.Status = LinkStatusUsed
	link.BookingID = &booking.ID
	link.ConsumedBy = &booking.UserID
	return link, nil
}

func (f *fakeLinkRepo) SetSessionID(ctx context.Context, linkID uuid.UUID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[linkID]
	if !ok {
		return ErrLinkNotFound
	}
	link.SessionID = sessionID
	return nil
}

func (f *fakeLinkRepo) SweepExpired(ctx context.Context, now time.Time) ([]ExpiredLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var expired []ExpiredLink
	for _, link := range f.links {
		if link.Status != LinkStatusActive || link.ExpiresAt.After(now) {
			continue
		}
		released := len(link.Claims)
		link.Claims = nil
		link.Status = LinkStatusExpired
		expired = append(expired, ExpiredLink{
			LinkID:        link.ID,
			ShowID:        link.ShowID,
			SeatsReleased: released,
		})
	}
	return expired, nil
}

// stubShowService validates against a fixed show
type stubShowService struct {
	show          *shows.Show
	invalidations int
	mu            sync.Mutex
}

func (s *stubShowService) CreateShow(ctx context.Context, createdBy uuid.UUID, req shows.CreateShowRequest) (*shows.ShowResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubShowService) GetShow(ctx context.Context, id uuid.UUID) (*shows.ShowResponse, error) {
	resp := s.show.ToResponse()
	return &resp, nil
}

func (s *stubShowService) ListShows(ctx context.Context, limit, offset int) ([]shows.ShowResponse, int64, error) {
	return nil, 0, nil
}

func (s *stubShowService) GetOccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (s *stubShowService) ValidateSeatSelection(ctx context.Context, showID uuid.UUID, seats []string) (*shows.Show, error) {
	if showID != s.show.ID {
		return nil, shows.ErrShowNotFound
	}
	for _, label := range seats {
		if !s.show.ValidSeatLabel(label) {
			return nil, shows.ErrInvalidSeatLabel
		}
	}
	return s.show, nil
}

func (s *stubShowService) InvalidateSeatCache(ctx context.Context, showID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
}

// stubBookingRepo only needs SetSessionID for the checkout flow
type stubBookingRepo struct {
	sessions map[uuid.UUID]string
}

func (s *stubBookingRepo) ReserveSeats(ctx context.Context, booking *bookings.Booking, seatLabels []string) error {
	return errors.New("not implemented")
}

func (s *stubBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	return nil, bookings.ErrBookingNotFound
}

func (s *stubBookingRepo) GetBookingBySessionID(ctx context.Context, sessionID string) (*bookings.Booking, error) {
	return nil, bookings.ErrBookingNotFound
}

func (s *stubBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]bookings.Booking, int64, error) {
	return nil, 0, nil
}

func (s *stubBookingRepo) SetSessionID(ctx context.Context, bookingID uuid.UUID, sessionID string) error {
	if s.sessions == nil {
		s.sessions = make(map[uuid.UUID]string)
	}
	s.sessions[bookingID] = sessionID
	return nil
}

func (s *stubBookingRepo) MarkPaidBySession(ctx context.Context, sessionID string) (*bookings.Booking, bool, error) {
	return nil, false, bookings.ErrBookingNotFound
}

func (s *stubBookingRepo) ReleaseExpiredHolds(ctx context.Context, now time.Time) ([]bookings.ReleasedHold, error) {
	return nil, nil
}

func (s *stubBookingRepo) GetCouponByCode(ctx context.Context, code string) (*bookings.Coupon, error) {
	return nil, bookings.ErrInvalidCoupon
}

func (s *stubBookingRepo) CreateCoupon(ctx context.Context, coupon *bookings.Coupon) error {
	return nil
}

type stubGateway struct {
	mu       sync.Mutex
	fail     bool
	sessions int
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, params bookings.CheckoutParams) (*bookings.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, errors.New("gateway unreachable")
	}
	g.sessions++
	id := fmt.Sprintf("cs_link_%d", g.sessions)
	return &bookings.CheckoutSession{ID: id, URL: "https://pay.example.com/" + id}, nil
}

func linkTestConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			HoldWindow:        10 * time.Minute,
			LinkDefaultExpiry: 10 * time.Minute,
			LinkMinimumExpiry: 5 * time.Minute,
			FrontendBaseURL:   "https://zinema.test",
		},
		Payment: config.PaymentConfig{Currency: "usd"},
	}
}

func newLinkTestService(t *testing.T) (Service, *fakeLinkRepo, *stubShowService, *stubBookingRepo, *stubGateway) {
	t.Helper()
	repo := newFakeLinkRepo()
	showSvc := &stubShowService{show: &shows.Show{
		ID:          uuid.New(),
		MovieTitle:  "Heat",
		StartsAt:    time.Now().Add(3 * time.Hour),
		BasePrice:   12.50,
		SeatRows:    10,
		SeatsPerRow: 20,
		Status:      shows.ShowStatusScheduled,
	}}
	bookingRepo := &stubBookingRepo{}
	gateway := &stubGateway{}
	svc := NewService(repo, bookingRepo, showSvc, gateway, linkTestConfig())
	return svc, repo, showSvc, bookingRepo, gateway
}

func TestCreateLink(t *testing.T) {
	svc, repo, showSvc, _, _ := newLinkTestService(t)

	resp, err := svc.CreateLink(context.Background(), uuid.New(), CreateLinkRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"A1", "A2"},
	})
	require.NoError(t, err)

	assert.Equal(t, LinkStatusActive, resp.Status)
	assert.Equal(t, 25.0, resp.Amount)
	assert.ElementsMatch(t, []string{"A1", "A2"}, resp.Seats)

	link := repo.links[uuid.MustParse(resp.ID)]
	require.NotNil(t, link)
	assert.Len(t, link.Claims, 2)
	for _, claim := range link.Claims {
		assert.Equal(t, shows.LinkToken(link.ID), claim.OwnerToken)
	}
}

func TestCreateLinkEnforcesMinimumExpiry(t *testing.T) {
	svc, repo, showSvc, _, _ := newLinkTestService(t)

	resp, err := svc.CreateLink(context.Background(), uuid.New(), CreateLinkRequest{
		ShowID:        showSvc.show.ID.String(),
		Seats:         []string{"A1"},
		ExpiryMinutes: 1, // below the 5 minute floor
	})
	require.NoError(t, err)

	link := repo.links[uuid.MustParse(resp.ID)]
	minimum := time.Now().Add(4 * time.Minute)
	assert.True(t, link.ExpiresAt.After(minimum), "expiry must be raised to the floor")
}

func TestCheckout(t *testing.T) {
	svc, repo, showSvc, bookingRepo, _ := newLinkTestService(t)
	ctx := context.Background()

	created, err := svc.CreateLink(ctx, uuid.New(), CreateLinkRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"B1", "B2"},
	})
	require.NoError(t, err)
	linkID := uuid.MustParse(created.ID)

	buyer := uuid.New()
	resp, err := svc.Checkout(ctx, linkID, buyer, "bob@example.com")
	require.NoError(t, err)

	assert.Equal(t, 25.0, resp.Amount)
	assert.NotEmpty(t, resp.CheckoutURL)

	link := repo.links[linkID]
	assert.Equal(t, LinkStatusUsed, link.Status)
	require.NotNil(t, link.ConsumedBy)
	assert.Equal(t, buyer, *link.ConsumedBy)

	// Claims now belong to the buyer, not the link
	for _, claim := range link.Claims {
		assert.Equal(t, shows.UserToken(buyer), claim.OwnerToken)
		assert.Nil(t, claim.PaymentLinkID)
	}

	// The session reference lands on both the link and the new booking
	assert.Equal(t, link.SessionID, bookingRepo.sessions[*link.BookingID])
}

func TestCheckoutSingleUse(t *testing.T) {
	svc, _, showSvc, _, _ := newLinkTestService(t)
	ctx := context.Background()

	created, err := svc.CreateLink(ctx, uuid.New(), CreateLinkRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"C1"},
	})
	require.NoError(t, err)
	linkID := uuid.MustParse(created.ID)

	_, err = svc.Checkout(ctx, linkID, uuid.New(), "bob@example.com")
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, linkID, uuid.New(), "carol@example.com")
	assert.ErrorIs(t, err, ErrLinkNotActive)
}

func TestCheckoutConcurrentConsumers(t *testing.T) {
	svc, _, showSvc, _, _ := newLinkTestService(t)
	ctx := context.Background()

	created, err := svc.CreateLink(ctx, uuid.New(), CreateLinkRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"D1"},
	})
	require.NoError(t, err)
	linkID := uuid.MustParse(created.ID)

	const consumers = 10
	var wg sync.WaitGroup
	errs := make([]error, consumers)

	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(ctx, linkID, uuid.New(), "user@example.com")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "a link is consumed at most once")
}

func TestCheckoutExpiredLink(t *testing.T) {
	svc, repo, showSvc, _, _ := newLinkTestService(t)
	ctx := context.Background()

	created, err := svc.CreateLink(ctx, uuid.New(), CreateLinkRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"E1"},
	})
	require.NoError(t, err)
	linkID := uuid.MustParse(created.ID)
	repo.links[linkID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.Checkout(ctx, linkID, uuid.New(), "bob@example.com")
	assert.ErrorIs(t, err, ErrLinkExpired)
}

func TestCheckoutUnknownLink(t *testing.T) {
	svc, _, _, _, _ := newLinkTestService(t)

	_, err := svc.Checkout(context.Background(), uuid.New(), uuid.New(), "bob@example.com")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestCheckoutToleratesGatewayFailure(t *testing.T) {
	svc, repo, showSvc, _, gateway := newLinkTestService(t)
	ctx := context.Background()
	gateway.fail = true

	created, err := svc.CreateLink(ctx, uuid.New(), CreateLinkRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"F1"},
	})
	require.NoError(t, err)
	linkID := uuid.MustParse(created.ID)

	resp, err := svc.Checkout(ctx, linkID, uuid.New(), "bob@example.com")
	require.NoError(t, err)

	// The link is consumed either way; the expiry worker reclaims the pending
	// booking if payment never completes
	assert.True(t, resp.PaymentPending)
	assert.Equal(t, LinkStatusUsed, repo.links[linkID].Status)
}

func TestExpireDue(t *testing.T) {
	svc, repo, showSvc, _, _ := newLinkTestService(t)
	ctx := context.Background()

	created, err := svc.CreateLink(ctx, uuid.New(), CreateLinkRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"G1", "G2"},
	})
	require.NoError(t, err)
	linkID := uuid.MustParse(created.ID)
	repo.links[linkID].ExpiresAt = time.Now().Add(-time.Minute)

	expired, err := svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, LinkStatusExpired, repo.links[linkID].Status)
	assert.Empty(t, repo.links[linkID].Claims)

	// Used links are never swept
	expired, err = svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
}
