package shows

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShowRepo struct {
	shows  map[uuid.UUID]*Show
	claims map[uuid.UUID][]SeatClaim
}

func newFakeShowRepo() *fakeShowRepo {
	return &fakeShowRepo{
		shows:  make(map[uuid.UUID]*Show),
		claims: make(map[uuid.UUID][]SeatClaim),
	}
}

func (f *fakeShowRepo) CreateShow(ctx context.Context, show *Show) error {
	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}
	f.shows[show.ID] = show
	return nil
}

func (f *fakeShowRepo) GetShowByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	show, ok := f.shows[id]
	if !ok {
		return nil, ErrShowNotFound
	}
	return show, nil
}

func (f *fakeShowRepo) ListUpcomingShows(ctx context.Context, limit, offset int) ([]Show, int64, error) {
	out := make([]Show, 0, len(f.shows))
	for _, s := range f.shows {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeShowRepo) GetOccupiedSeats(ctx context.Context, showID uuid.UUID) ([]SeatClaim, error) {
	return f.claims[showID], nil
}

func testShow(repo *fakeShowRepo) *Show {
	show := &Show{
		ID:          uuid.New(),
		MovieTitle:  "Heat",
		Screen:      "Screen-1",
		StartsAt:    time.Now().Add(3 * time.Hour),
		BasePrice:   12.50,
		SeatRows:    10,
		SeatsPerRow: 20,
		Status:      ShowStatusScheduled,
	}
	repo.shows[show.ID] = show
	return show
}

func TestValidateSeatSelection(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)
	show := testShow(repo)

	got, err := svc.ValidateSeatSelection(context.Background(), show.ID, []string{"A1", "B2", "J20"})
	require.NoError(t, err)
	assert.Equal(t, show.ID, got.ID)
}

func TestValidateSeatSelectionRejectsUnknownShow(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)

	_, err := svc.ValidateSeatSelection(context.Background(), uuid.New(), []string{"A1"})
	assert.ErrorIs(t, err, ErrShowNotFound)
}

func TestValidateSeatSelectionRejectsEmpty(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)
	show := testShow(repo)

	_, err := svc.ValidateSeatSelection(context.Background(), show.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidSeatLabel)
}

func TestValidateSeatSelectionRejectsOffGridLabels(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)
	show := testShow(repo)

	for _, label := range []string{"K1", "A21", "A0", "zz"} {
		_, err := svc.ValidateSeatSelection(context.Background(), show.ID, []string{label})
		assert.ErrorIs(t, err, ErrInvalidSeatLabel, "label %s", label)
	}
}

func TestValidateSeatSelectionRejectsDuplicates(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)
	show := testShow(repo)

	_, err := svc.ValidateSeatSelection(context.Background(), show.ID, []string{"A1", "B2", "A1"})
	assert.ErrorIs(t, err, ErrInvalidSeatLabel)
}

func TestValidateSeatSelectionRejectsStartedShow(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)
	show := testShow(repo)
	show.StartsAt = time.Now().Add(-time.Minute)

	_, err := svc.ValidateSeatSelection(context.Background(), show.ID, []string{"A1"})
	assert.ErrorIs(t, err, ErrShowNotBookable)
}

func TestValidateSeatSelectionRejectsCancelledShow(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)
	show := testShow(repo)
	show.Status = ShowStatusCancelled

	_, err := svc.ValidateSeatSelection(context.Background(), show.ID, []string{"A1"})
	assert.ErrorIs(t, err, ErrShowNotBookable)
}

func TestGetOccupiedSeatsWithoutCache(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)
	show := testShow(repo)

	repo.claims[show.ID] = []SeatClaim{
		{ShowID: show.ID, SeatLabel: "A1"},
		{ShowID: show.ID, SeatLabel: "B2"},
	}

	labels, err := svc.GetOccupiedSeats(context.Background(), show.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "B2"}, labels)
}

func TestCreateShowRejectsPastStart(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)

	_, err := svc.CreateShow(context.Background(), uuid.New(), CreateShowRequest{
		MovieTitle: "Heat",
		Screen:     "Screen-1",
		StartsAt:   time.Now().Add(-time.Hour),
		BasePrice:  10,
	})
	assert.Error(t, err)
}

func TestCreateShowAppliesGridDefaults(t *testing.T) {
	repo := newFakeShowRepo()
	svc := NewService(repo, nil, time.Second)

	resp, err := svc.CreateShow(context.Background(), uuid.New(), CreateShowRequest{
		MovieTitle: "Heat",
		Screen:     "Screen-1",
		StartsAt:   time.Now().Add(time.Hour),
		BasePrice:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.SeatRows)
	assert.Equal(t, 20, resp.SeatsPerRow)
}
