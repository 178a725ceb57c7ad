package response

type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Code       string      `json:"code,omitempty"`   // Machine-readable failure code
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}

// Failure codes the client is expected to branch on. A seat conflict must be
// distinguishable from a generic error so the UI can prompt reselection.
const (
	CodeSeatsUnavailable = "SEATS_UNAVAILABLE"
	CodeShowNotFound     = "SHOW_NOT_FOUND"
	CodeBookingNotFound  = "BOOKING_NOT_FOUND"
	CodeHoldExpired      = "HOLD_EXPIRED"
	CodeLinkInvalid      = "LINK_INVALID"
	CodeLinkExpired      = "LINK_EXPIRED"
	CodePaymentGateway   = "PAYMENT_GATEWAY_ERROR"
)
