package bookings

// ReserveRequest represents a seat reservation request
type ReserveRequest struct {
	ShowID     string   `json:"show_id" binding:"required,uuid"`
	Seats      []string `json:"seats" binding:"required,min=1,max=10,dive,seatlabel"`
	CouponCode string   `json:"coupon_code" binding:"omitempty,max=50"`
}

// BookingListQuery represents pagination for booking lists
type BookingListQuery struct {
	Limit  int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}
