package payments

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zinema/internal/shared/config"
)

func webhookTestRouter(t *testing.T, repo *fakePaidRepo, publisher *recordingPublisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Payment: config.PaymentConfig{
			WebhookSecret:    testSecret,
			WebhookTolerance: 5 * time.Minute,
		},
	}

	svc := NewService(repo, publisher)
	controller := NewController(svc, cfg)

	engine := gin.New()
	api := engine.Group("/api/v1")
	SetupWebhookRoutes(api, controller)
	return engine
}

func postWebhook(router *gin.Engine, payload []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(SignatureHeader, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func completedEvent(sessionID string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","type":"%s","data":{"session_id":"%s"}}`,
		EventCheckoutCompleted, sessionID))
}

func TestHandleWebhook(t *testing.T) {
	repo := newFakePaidRepo()
	publisher := &recordingPublisher{}
	router := webhookTestRouter(t, repo, publisher)

	booking := repo.addBooking("cs_test_1")
	payload := completedEvent("cs_test_1")

	w := postWebhook(router, payload, signedHeader(payload, time.Now()))
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, booking.Paid)
	assert.Len(t, publisher.confirmations, 1)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	repo := newFakePaidRepo()
	publisher := &recordingPublisher{}
	router := webhookTestRouter(t, repo, publisher)

	booking := repo.addBooking("cs_test_1")
	payload := completedEvent("cs_test_1")

	w := postWebhook(router, payload, "t=123,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, booking.Paid)
	assert.Empty(t, publisher.confirmations)

	w = postWebhook(router, payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, booking.Paid)
}

func TestHandleWebhookAcknowledgesUnknownSession(t *testing.T) {
	repo := newFakePaidRepo()
	router := webhookTestRouter(t, repo, &recordingPublisher{})

	// The hold expired before the event arrived; retrying is pointless so the
	// endpoint must return 2xx
	payload := completedEvent("cs_gone")
	w := postWebhook(router, payload, signedHeader(payload, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleWebhookIgnoresOtherEventTypes(t *testing.T) {
	repo := newFakePaidRepo()
	publisher := &recordingPublisher{}
	router := webhookTestRouter(t, repo, publisher)

	repo.addBooking("cs_test_1")
	payload := []byte(fmt.Sprintf(`{"id":"evt_2","type":"%s","data":{"session_id":"cs_test_1"}}`,
		EventCheckoutExpired))

	w := postWebhook(router, payload, signedHeader(payload, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, publisher.confirmations)
}

func TestHandleWebhookDuplicateDelivery(t *testing.T) {
	repo := newFakePaidRepo()
	publisher := &recordingPublisher{}
	router := webhookTestRouter(t, repo, publisher)

	repo.addBooking("cs_test_1")
	payload := completedEvent("cs_test_1")

	for i := 0; i < 3; i++ {
		w := postWebhook(router, payload, signedHeader(payload, time.Now()))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Len(t, publisher.confirmations, 1)
	assert.Len(t, publisher.credits, 1)
}
