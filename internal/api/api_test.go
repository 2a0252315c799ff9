package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/database"
	"lets-trade-dashboard-go/internal/feeds"
	"lets-trade-dashboard-go/internal/notify"
	"lets-trade-dashboard-go/internal/realtime"
	"lets-trade-dashboard-go/internal/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAPITest wires a full server against an in-memory database: store,
// broker, hub, notifier and feeds, everything except the chat client.
func setupAPITest(t *testing.T) (*APIServer, *store.Store) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))

	broker := realtime.NewBroker(zap.NewNop())
	t.Cleanup(broker.Close)

	st := store.New(db, broker, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := realtime.NewHub(broker, zap.NewNop())
	go hub.Run(ctx)

	cfg := &config.Config{}
	cfg.Alerts = config.Alerts{RateLimit: 1000, RateLimitBurst: 10, WarnThreshold: 5, CriticalThreshold: 10}

	notifier := notify.NewNotifier(st, &cfg.Alerts, zap.NewNop())
	notifier.Start(broker)
	t.Cleanup(notifier.Stop)

	notificationFeed, err := feeds.NewNotificationFeed(ctx, st, broker, zap.NewNop())
	assert.NoError(t, err)
	t.Cleanup(notificationFeed.Close)

	tradeFeed := feeds.NewTradeFeed(nil, broker, zap.NewNop())
	t.Cleanup(tradeFeed.Close)

	portfolioFeed := feeds.NewPortfolioFeed(nil, broker, zap.NewNop())
	t.Cleanup(portfolioFeed.Close)

	server := NewApiServer(":0", cfg, st, hub, notifier, nil,
		notificationFeed, tradeFeed, portfolioFeed, zap.NewNop())
	return server, st
}

func doRequest(t *testing.T, server *APIServer, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupAPITest(t)

	recorder := doRequest(t, server, http.MethodGet, "/api/v1/system/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
