package api

import (
	"net/http"

	"lets-trade-dashboard-go/internal/feeds"
	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DashboardHandler serves the aggregate landing-page payload in one request:
// the portfolio summary, live holdings, the recent-trades panel and the
// notification badge.
type DashboardHandler struct {
	store  *store.Store
	logger *zap.Logger

	tradeFeed        *feeds.TradeFeed
	portfolioFeed    *feeds.PortfolioFeed
	notificationFeed *feeds.NotificationFeed
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(
	st *store.Store,
	tradeFeed *feeds.TradeFeed,
	portfolioFeed *feeds.PortfolioFeed,
	notificationFeed *feeds.NotificationFeed,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		store:            st,
		logger:           logger,
		tradeFeed:        tradeFeed,
		portfolioFeed:    portfolioFeed,
		notificationFeed: notificationFeed,
	}
}

// RegisterRoutes registers the dashboard route.
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
}

type dashboardPosition struct {
	models.Position
	Highlighted bool `json:"highlighted"`
}

type dashboardTrade struct {
	models.Trade
	Highlighted bool `json:"highlighted"`
}

// GetDashboard assembles the landing-page payload.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.GetPortfolioSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate portfolio", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	positions := h.portfolioFeed.Positions()
	holdings := make([]dashboardPosition, 0, len(positions))
	for _, pos := range positions {
		holdings = append(holdings, dashboardPosition{
			Position:    pos,
			Highlighted: h.portfolioFeed.Highlighted(pos.StockCode),
		})
	}

	trades := h.tradeFeed.Items()
	recent := make([]dashboardTrade, 0, len(trades))
	for _, trade := range trades {
		recent = append(recent, dashboardTrade{
			Trade:       trade,
			Highlighted: h.tradeFeed.Highlighted(trade.ID),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":       summary,
		"positions":     holdings,
		"recent_trades": recent,
		"updating":      h.tradeFeed.Updating(),
		"unread_count":  h.notificationFeed.UnreadCount(),
	})
}
