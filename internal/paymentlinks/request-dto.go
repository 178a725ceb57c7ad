package paymentlinks

// CreateLinkRequest represents a shareable link creation request
type CreateLinkRequest struct {
	ShowID        string   `json:"show_id" binding:"required,uuid"`
	Seats         []string `json:"seats" binding:"required,min=1,max=10,dive,seatlabel"`
	ExpiryMinutes int      `json:"expiry_minutes" binding:"omitempty,min=1,max=1440"`
}
