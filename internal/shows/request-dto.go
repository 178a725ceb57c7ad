package shows

import "time"

type CreateShowRequest struct {
	MovieTitle  string    `json:"movie_title" binding:"required,min=1,max=255"`
	MovieRef    string    `json:"movie_ref" binding:"max=50"`
	Screen      string    `json:"screen" binding:"required,max=50"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	BasePrice   float64   `json:"base_price" binding:"required,gte=0"`
	SeatRows    int       `json:"seat_rows" binding:"omitempty,min=1,max=26"`
	SeatsPerRow int       `json:"seats_per_row" binding:"omitempty,min=1,max=50"`
}

type ListShowsQuery struct {
	Limit  int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}
