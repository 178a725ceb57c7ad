package shows

import "time"

type ShowResponse struct {
	ID          string     `json:"id"`
	MovieTitle  string     `json:"movie_title"`
	MovieRef    string     `json:"movie_ref,omitempty"`
	Screen      string     `json:"screen"`
	StartsAt    time.Time  `json:"starts_at"`
	BasePrice   float64    `json:"base_price"`
	SeatRows    int        `json:"seat_rows"`
	SeatsPerRow int        `json:"seats_per_row"`
	TotalSeats  int        `json:"total_seats"`
	Status      ShowStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

type OccupiedSeatsResponse struct {
	ShowID        string   `json:"show_id"`
	OccupiedSeats []string `json:"occupied_seats"`
}

// ToResponse converts a Show to its API representation
func (s *Show) ToResponse() ShowResponse {
	return ShowResponse{
		ID:          s.ID.String(),
		MovieTitle:  s.MovieTitle,
		MovieRef:    s.MovieRef,
		Screen:      s.Screen,
		StartsAt:    s.StartsAt,
		BasePrice:   s.BasePrice,
		SeatRows:    s.SeatRows,
		SeatsPerRow: s.SeatsPerRow,
		TotalSeats:  s.SeatRows * s.SeatsPerRow,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
}
