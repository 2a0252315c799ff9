package api

import (
	"net/http"
	"strconv"
	"time"

	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TradeHandler serves the trade history pages.
type TradeHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewTradeHandler creates the handler.
func NewTradeHandler(st *store.Store, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{store: st, logger: logger}
}

// RegisterRoutes registers the trade routes.
func (h *TradeHandler) RegisterRoutes(router *mux.Router) {
	tradeRouter := router.PathPrefix("/trades").Subrouter()
	tradeRouter.HandleFunc("", h.GetTrades).Methods("GET")
	tradeRouter.HandleFunc("/today", h.GetTodayTrades).Methods("GET")
	tradeRouter.HandleFunc("/{id:[0-9]+}", h.GetTradeByID).Methods("GET")
}

// GetTrades lists trades with filters and summary counts.
func (h *TradeHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := store.TradeFilter{
		Status:    query.Get("status"),
		OrderType: query.Get("order_type"),
		StockCode: query.Get("stock_code"),
		Limit:     parseIntParam(query.Get("limit"), 100),
		Offset:    parseIntParam(query.Get("offset"), 0),
	}
	if raw := query.Get("strategy_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			sid := uint(id)
			filter.StrategyID = &sid
		}
	}
	if raw := query.Get("from_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.FromDate = &t
		}
	}
	if raw := query.Get("to_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.ToDate = &t
		}
	}

	trades, total, summary, err := h.store.ListTrades(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list trades", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":   trades,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
		"summary": summary,
	})
}

// GetTodayTrades lists today's trades.
func (h *TradeHandler) GetTodayTrades(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseIntParam(query.Get("limit"), 100)
	offset := parseIntParam(query.Get("offset"), 0)

	trades, total, err := h.store.ListTodayTrades(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list today's trades", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":  trades,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetTradeByID fetches one trade.
func (h *TradeHandler) GetTradeByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	trade, err := h.store.GetTrade(r.Context(), uint(id))
	if err != nil {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
