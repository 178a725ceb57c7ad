package bookings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zinema/internal/shared/config"
	"zinema/internal/shows"
)

// fakeBookingRepo is an in-memory Repository. Seat claims are tracked in a
// per-show set guarded by a mutex, mirroring the unique-index behavior of the
// real table: a conflicting claim aborts the whole reservation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
	claimed  map[string]uuid.UUID // "<showID>/<label>" -> bookingID
	coupons  map[string]*Coupon
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*Booking),
		claimed:  make(map[string]uuid.UUID),
		coupons:  make(map[string]*Coupon),
	}
}

func claimKey(showID uuid.UUID, label string) string {
	return fmt.Sprintf("%s/%s", showID, label)
}

func (f *fakeBookingRepo) ReserveSeats(ctx context.Context, booking *Booking, seatLabels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, label := range seatLabels {
		if _, taken := f.claimed[claimKey(booking.ShowID, label)]; taken {
			return shows.ErrSeatsUnavailable
		}
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	for _, label := range seatLabels {
		f.claimed[claimKey(booking.ShowID, label)] = booking.ID
		booking.Claims = append(booking.Claims, shows.SeatClaim{
			ShowID:    booking.ShowID,
			SeatLabel: label,
			BookingID: &booking.ID,
		})
	}
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetBookingBySessionID(ctx context.Context, sessionID string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.SessionID == sessionID {
			return b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (f *fakeBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) SetSessionID(ctx context.Context, bookingID uuid.UUID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	b.SessionID = sessionID
	return nil
}

func (f *fakeBookingRepo) MarkPaidBySession(ctx context.Context, sessionID string) (*Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.SessionID == sessionID {
			if b.Paid {
				return b, false, nil
			}
			now := time.Now()
			b.Paid = true
			b.PaidAt = &now
			return b, true, nil
		}
	}
	return nil, false, ErrBookingNotFound
}

func (f *fakeBookingRepo) ReleaseExpiredHolds(ctx context.Context, now time.Time) ([]ReleasedHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var released []ReleasedHold
	for id, b := range f.bookings {
		if b.Paid || b.ExpiresAt.After(now) {
			continue
		}
		hold := ReleasedHold{BookingID: id, ShowID: b.ShowID}
		for key, owner := range f.claimed {
			if owner == id {
				delete(f.claimed, key)
				hold.Seats = append(hold.Seats, key)
			}
		}
		delete(f.bookings, id)
		released = append(released, hold)
	}
	return released, nil
}

func (f *fakeBookingRepo) GetCouponByCode(ctx context.Context, code string) (*Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.coupons[code]
	if !ok || !c.Active {
		return nil, ErrInvalidCoupon
	}
	return c, nil
}

func (f *fakeBookingRepo) CreateCoupon(ctx context.Context, coupon *Coupon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coupons[coupon.Code] = coupon
	return nil
}

// fakeShowService returns a fixed show for every lookup and records cache
// invalidations.
type fakeShowService struct {
	show          *shows.Show
	invalidations int
}

func (f *fakeShowService) CreateShow(ctx context.Context, createdBy uuid.UUID, req shows.CreateShowRequest) (*shows.ShowResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeShowService) GetShow(ctx context.Context, id uuid.UUID) (*shows.ShowResponse, error) {
	resp := f.show.ToResponse()
	return &resp, nil
}

func (f *fakeShowService) ListShows(ctx context.Context, limit, offset int) ([]shows.ShowResponse, int64, error) {
	return nil, 0, nil
}

func (f *fakeShowService) GetOccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (f *fakeShowService) ValidateSeatSelection(ctx context.Context, showID uuid.UUID, seats []string) (*shows.Show, error) {
	if showID != f.show.ID {
		return nil, shows.ErrShowNotFound
	}
	if !f.show.IsBookable(time.Now()) {
		return nil, shows.ErrShowNotBookable
	}
	for _, label := range seats {
		if !f.show.ValidSeatLabel(label) {
			return nil, shows.ErrInvalidSeatLabel
		}
	}
	return f.show, nil
}

func (f *fakeShowService) InvalidateSeatCache(ctx context.Context, showID uuid.UUID) {
	f.invalidations++
}

// fakeGateway opens sessions with predictable ids, or fails on demand
type fakeGateway struct {
	mu       sync.Mutex
	fail     bool
	sessions int
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, errors.New("gateway unreachable")
	}
	g.sessions++
	id := fmt.Sprintf("cs_test_%d", g.sessions)
	return &CheckoutSession{ID: id, URL: "https://pay.example.com/" + id}, nil
}

func testConfig() *config.Config {
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

func newTestService(t *testing.T) (Service, *fakeBookingRepo, *fakeShowService, *fakeGateway) {
	t.Helper()
	repo := newFakeBookingRepo()
	showSvc := &fakeShowService{show: &shows.Show{
		ID:          uuid.New(),
		MovieTitle:  "Heat",
		StartsAt:    time.Now().Add(3 * time.Hour),
		BasePrice:   12.50,
		SeatRows:    10,
		SeatsPerRow: 20,
		Status:      shows.ShowStatusScheduled,
	}}
	gateway := &fakeGateway{}
	return NewService(repo, showSvc, gateway, testConfig()), repo, showSvc, gateway
}

func TestReserve(t *testing.T) {
	svc, repo, showSvc, _ := newTestService(t)

	resp, err := svc.Reserve(context.Background(), uuid.New(), "alice@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"A1", "A2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 25.0, resp.Amount)
	assert.Equal(t, []string{"A1", "A2"}, resp.Seats)
	assert.NotEmpty(t, resp.CheckoutURL)
	assert.False(t, resp.PaymentPending)
	assert.Regexp(t, regexp.MustCompile(`^ZNM-\d{8}-[A-Z]{6}$`), resp.BookingRef)

	bookingID, err := uuid.Parse(resp.BookingID)
	require.NoError(t, err)
	stored, err := repo.GetBookingByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.False(t, stored.Paid)
	assert.NotEmpty(t, stored.SessionID)
	assert.Equal(t, 1, showSvc.invalidations)
}

func TestReserveSeatConflict(t *testing.T) {
	svc, repo, showSvc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, uuid.New(), "alice@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"E7", "E8"},
	})
	require.NoError(t, err)

	// Overlapping selection must fail entirely, including the free seat
	_, err = svc.Reserve(ctx, uuid.New(), "bob@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"E8", "E9"},
	})
	assert.ErrorIs(t, err, shows.ErrSeatsUnavailable)

	assert.Len(t, repo.bookings, 1)
	_, e9Taken := repo.claimed[claimKey(showSvc.show.ID, "E9")]
	assert.False(t, e9Taken, "losing reservation must not leave partial claims")
}

func TestReserveConcurrentOverlap(t *testing.T) {
	svc, repo, showSvc, _ := newTestService(t)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), uuid.New(), "user@example.com", ReserveRequest{
				ShowID: showSvc.show.ID.String(),
				Seats:  []string{"C5"},
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, shows.ErrSeatsUnavailable)
		}
	}
	assert.Equal(t, 1, winners, "exactly one reservation may win a seat")
	assert.Len(t, repo.bookings, 1)
}

func TestReserveWithCoupon(t *testing.T) {
	svc, repo, showSvc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateCoupon(ctx, &Coupon{Code: "MATINEE25", PercentOff: 25, Active: true}))

	resp, err := svc.Reserve(ctx, uuid.New(), "alice@example.com", ReserveRequest{
		ShowID:     showSvc.show.ID.String(),
		Seats:      []string{"A1", "A2"},
		CouponCode: "MATINEE25",
	})
	require.NoError(t, err)
	assert.InDelta(t, 18.75, resp.Amount, 0.001)
}

func TestReserveRejectsInvalidCoupon(t *testing.T) {
	svc, _, showSvc, _ := newTestService(t)

	_, err := svc.Reserve(context.Background(), uuid.New(), "alice@example.com", ReserveRequest{
		ShowID:     showSvc.show.ID.String(),
		Seats:      []string{"A1"},
		CouponCode: "NOPE",
	})
	assert.ErrorIs(t, err, ErrInvalidCoupon)
}

func TestReserveToleratesGatewayFailure(t *testing.T) {
	svc, repo, showSvc, gateway := newTestService(t)
	gateway.fail = true

	resp, err := svc.Reserve(context.Background(), uuid.New(), "alice@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"A1"},
	})
	require.NoError(t, err)

	// Seats stay held; the expiry worker reclaims them if payment never comes
	assert.True(t, resp.PaymentPending)
	assert.Empty(t, resp.CheckoutURL)
	assert.Len(t, repo.bookings, 1)
}

func TestGetBookingHidesOtherUsers(t *testing.T) {
	svc, _, showSvc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	resp, err := svc.Reserve(ctx, owner, "alice@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"A1"},
	})
	require.NoError(t, err)
	bookingID := uuid.MustParse(resp.BookingID)

	_, err = svc.GetBooking(ctx, bookingID, owner)
	require.NoError(t, err)

	_, err = svc.GetBooking(ctx, bookingID, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestReleaseExpiredHolds(t *testing.T) {
	svc, repo, showSvc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Reserve(ctx, uuid.New(), "alice@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"A1", "A2"},
	})
	require.NoError(t, err)

	// Force the hold past its window
	bookingID := uuid.MustParse(resp.BookingID)
	repo.bookings[bookingID].ExpiresAt = time.Now().Add(-time.Minute)

	released, err := svc.ReleaseExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Empty(t, repo.bookings)
	assert.Empty(t, repo.claimed)

	// The freed seats can be reserved again
	_, err = svc.Reserve(ctx, uuid.New(), "bob@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"A1", "A2"},
	})
	assert.NoError(t, err)
}

func TestReleaseExpiredHoldsSkipsPaid(t *testing.T) {
	svc, repo, showSvc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Reserve(ctx, uuid.New(), "alice@example.com", ReserveRequest{
		ShowID: showSvc.show.ID.String(),
		Seats:  []string{"A1"},
	})
	require.NoError(t, err)

	bookingID := uuid.MustParse(resp.BookingID)
	repo.bookings[bookingID].ExpiresAt = time.Now().Add(-time.Minute)
	repo.bookings[bookingID].Paid = true

	released, err := svc.ReleaseExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
	assert.Len(t, repo.bookings, 1)
}
