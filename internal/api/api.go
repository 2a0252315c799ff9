// Package api exposes the dashboard's HTTP surface: the read API for each
// page, the websocket change stream, the bot-facing webhooks and the
// strategy chat.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"lets-trade-dashboard-go/internal/ai"
	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/feeds"
	"lets-trade-dashboard-go/internal/notify"
	"lets-trade-dashboard-go/internal/realtime"
	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// APIServer wires the handlers and runs the HTTP server.
type APIServer struct {
	address string
	logger  *zap.Logger

	store    *store.Store
	hub      *realtime.Hub
	notifier *notify.Notifier
	chat     *ai.Client

	notificationFeed *feeds.NotificationFeed
	tradeFeed        *feeds.TradeFeed
	portfolioFeed    *feeds.PortfolioFeed

	allowedOrigins []string
}

// NewApiServer creates the server.
func NewApiServer(
	address string,
	cfg *config.Config,
	st *store.Store,
	hub *realtime.Hub,
	notifier *notify.Notifier,
	chat *ai.Client,
	notificationFeed *feeds.NotificationFeed,
	tradeFeed *feeds.TradeFeed,
	portfolioFeed *feeds.PortfolioFeed,
	logger *zap.Logger,
) *APIServer {
	return &APIServer{
		address:          address,
		logger:           logger,
		store:            st,
		hub:              hub,
		notifier:         notifier,
		chat:             chat,
		notificationFeed: notificationFeed,
		tradeFeed:        tradeFeed,
		portfolioFeed:    portfolioFeed,
		allowedOrigins:   cfg.Server.AllowedOrigins,
	}
}

// Router builds the full route table.
func (s *APIServer) Router() http.Handler {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	NewTradeHandler(s.store, s.logger).RegisterRoutes(subrouter)
	NewPortfolioHandler(s.store, s.logger).RegisterRoutes(subrouter)
	NewStrategyHandler(s.store, s.logger).RegisterRoutes(subrouter)
	NewSignalHandler(s.store, s.logger).RegisterRoutes(subrouter)
	NewNotificationHandler(s.notificationFeed, s.logger).RegisterRoutes(subrouter)
	NewDashboardHandler(s.store, s.tradeFeed, s.portfolioFeed, s.notificationFeed, s.logger).RegisterRoutes(subrouter)
	NewWebhookHandler(s.store, s.notifier, s.logger).RegisterRoutes(subrouter)
	NewChatHandler(s.chat, s.store, s.logger).RegisterRoutes(subrouter)
	NewSystemHandler(s.logger).RegisterRoutes(subrouter)
	NewWSHandler(s.hub, s.logger).RegisterRoutes(router)

	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.logger.Info("API server listening", zap.String("address", s.address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
