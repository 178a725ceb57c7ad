package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"zinema/internal/bookings"
	"zinema/internal/shared/config"
)

// HTTPGateway creates checkout sessions against the payment provider's REST
// API. It satisfies the PaymentGateway interfaces declared by the booking and
// payment-link services.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway creates a new gateway client
func NewHTTPGateway(cfg *config.Config) *HTTPGateway {
	return &HTTPGateway{
		baseURL: cfg.Payment.GatewayURL,
		apiKey:  cfg.Payment.APIKey,
		client: &http.Client{
			Timeout: cfg.Payment.RequestTimeout,
		},
	}
}

type checkoutSessionRequest struct {
	Amount     int64             `json:"amount"` // minor units
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession opens a hosted checkout session at the gateway
func (g *HTTPGateway) CreateCheckoutSession(ctx context.Context, params bookings.CheckoutParams) (*bookings.CheckoutSession, error) {
	body := checkoutSessionRequest{
		Amount:     int64(params.Amount * 100),
		Currency:   params.Currency,
		SuccessURL: params.SuccessURL,
		CancelURL:  params.CancelURL,
		Metadata:   params.Metadata,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(raw))
	}

	var session checkoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("gateway response missing session id")
	}

	return &bookings.CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// HealthCheck probes the gateway with a short timeout
func (g *HTTPGateway) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
