package shows

import (
	"context"
	"fmt"
	"time"

	"zinema/internal/shared/constants"
	"zinema/pkg/cache"

	"github.com/google/uuid"
)

// Service interface defines the contract for show business logic
type Service interface {
	CreateShow(ctx context.Context, createdBy uuid.UUID, req CreateShowRequest) (*ShowResponse, error)
	GetShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error)
	ListShows(ctx context.Context, limit, offset int) ([]ShowResponse, int64, error)

	// GetOccupiedSeats returns the labels currently held or booked. Read-only,
	// served from cache when fresh.
	GetOccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error)

	// ValidateSeatSelection checks a reservation request against the show's
	// grid and booking window. Used by both reservation pathways.
	ValidateSeatSelection(ctx context.Context, showID uuid.UUID, seats []string) (*Show, error)

	// InvalidateSeatCache drops the cached seat map after any claim mutation
	InvalidateSeatCache(ctx context.Context, showID uuid.UUID)
}

type service struct {
	repo       Repository
	cache      cache.Service
	seatMapTTL time.Duration
}

// NewService creates a new show service instance. cacheService may be nil;
// occupied-seat reads then always hit the database.
func NewService(repo Repository, cacheService cache.Service, seatMapTTL time.Duration) Service {
	return &service{
		repo:       repo,
		cache:      cacheService,
		seatMapTTL: seatMapTTL,
	}
}

// CreateShow schedules a new screening
func (s *service) CreateShow(ctx context.Context, createdBy uuid.UUID, req CreateShowRequest) (*ShowResponse, error) {
	if !req.StartsAt.After(time.Now()) {
		return nil, fmt.Errorf("show start time must be in the future")
	}

	show := &Show{
		MovieTitle:  req.MovieTitle,
		MovieRef:    req.MovieRef,
		Screen:      req.Screen,
		StartsAt:    req.StartsAt.UTC(),
		BasePrice:   req.BasePrice,
		SeatRows:    req.SeatRows,
		SeatsPerRow: req.SeatsPerRow,
		Status:      ShowStatusScheduled,
		CreatedBy:   createdBy,
	}
	if show.SeatRows == 0 {
		show.SeatRows = 10
	}
	if show.SeatsPerRow == 0 {
		show.SeatsPerRow = 20
	}

	if err := s.repo.CreateShow(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) GetShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error) {
	show, err := s.repo.GetShowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) ListShows(ctx context.Context, limit, offset int) ([]ShowResponse, int64, error) {
	showList, total, err := s.repo.ListUpcomingShows(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ShowResponse, 0, len(showList))
	for _, show := range showList {
		responses = append(responses, show.ToResponse())
	}
	return responses, total, nil
}

func (s *service) GetOccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	key := constants.OccupiedSeatsKey(showID.String())

	if s.cache != nil {
		var cached []string
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	claims, err := s.repo.GetOccupiedSeats(ctx, showID)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(claims))
	for _, claim := range claims {
		labels = append(labels, claim.SeatLabel)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, labels, s.seatMapTTL)
	}

	return labels, nil
}

func (s *service) ValidateSeatSelection(ctx context.Context, showID uuid.UUID, seats []string) (*Show, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: no seats requested", ErrInvalidSeatLabel)
	}

	show, err := s.repo.GetShowByID(ctx, showID)
	if err != nil {
		return nil, err
	}

	if !show.IsBookable(time.Now()) {
		return nil, ErrShowNotBookable
	}

	seen := make(map[string]struct{}, len(seats))
	for _, label := range seats {
		if !show.ValidSeatLabel(label) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSeatLabel, label)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: duplicate seat %s", ErrInvalidSeatLabel, label)
		}
		seen[label] = struct{}{}
	}

	return show, nil
}

func (s *service) InvalidateSeatCache(ctx context.Context, showID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, constants.OccupiedSeatsKey(showID.String()))
}
