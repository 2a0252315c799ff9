package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRelaySendPostsNotification(t *testing.T) {
	received := make(chan relayPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload relayPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	relay := NewRelay(&config.Alerts{
		WebhookURL:     server.URL,
		RateLimit:      1000,
		RateLimitBurst: 10,
	}, zap.NewNop())

	relay.Send(context.Background(), &models.Notification{
		Type:     models.NotificationTradeExecuted,
		Title:    "Order executed",
		Message:  "buy Samsung 10 @ 70000 filled",
		Severity: models.SeverityInfo,
		Data:     []byte(`{"order_no":"ORD-1"}`),
	})

	select {
	case payload := <-received:
		assert.Equal(t, models.NotificationTradeExecuted, payload.Type)
		assert.Equal(t, "Order executed", payload.Title)
		assert.Equal(t, models.SeverityInfo, payload.Severity)
	case <-time.After(time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestRelayDisabledWithoutURL(t *testing.T) {
	relay := NewRelay(&config.Alerts{RateLimit: 1, RateLimitBurst: 1}, zap.NewNop())

	// Nothing to assert beyond not panicking and not blocking.
	relay.Send(context.Background(), &models.Notification{Type: "x", Title: "t", Message: "m"})
}

func TestRelaySwallowsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	relay := NewRelay(&config.Alerts{
		WebhookURL:     server.URL,
		RateLimit:      1000,
		RateLimitBurst: 10,
	}, zap.NewNop())

	assert.NotPanics(t, func() {
		relay.Send(context.Background(), &models.Notification{Type: "x", Title: "t", Message: "m"})
	})
}
