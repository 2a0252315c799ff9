package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/notify"
	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// WebhookHandler receives the trading bot's callbacks: row changes pushed to
// /webhooks/trade-notify and free-form alerts pushed to /webhooks/alert.
type WebhookHandler struct {
	store    *store.Store
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewWebhookHandler creates the handler.
func NewWebhookHandler(st *store.Store, notifier *notify.Notifier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{store: st, notifier: notifier, logger: logger}
}

// RegisterRoutes registers the webhook routes.
func (h *WebhookHandler) RegisterRoutes(router *mux.Router) {
	webhookRouter := router.PathPrefix("/webhooks").Subrouter()
	webhookRouter.HandleFunc("/trade-notify", h.TradeNotify).Methods("POST")
	webhookRouter.HandleFunc("/alert", h.Alert).Methods("POST")
}

type changePayload struct {
	Type      string          `json:"type"`
	Table     string          `json:"table"`
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
}

type alertPayload struct {
	Type      string          `json:"type"`
	StockCode string          `json:"stock_code,omitempty"`
	Message   string          `json:"message"`
	Severity  string          `json:"severity,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// TradeNotify ingests a row change from the bot. Trade rows are upserted by
// order number; portfolio rows by stock code. The resulting change events
// drive the feeds and the notifier, so the bot only has to deliver the row.
func (h *WebhookHandler) TradeNotify(w http.ResponseWriter, r *http.Request) {
	var payload changePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.Record) == 0 {
		writeError(w, http.StatusBadRequest, "record is required")
		return
	}

	switch payload.Table {
	case models.Trade{}.TableName():
		var trade models.Trade
		if err := json.Unmarshal(payload.Record, &trade); err != nil {
			writeError(w, http.StatusBadRequest, "malformed trade record")
			return
		}
		if trade.OrderNo == "" {
			writeError(w, http.StatusBadRequest, "order_no is required")
			return
		}
		if _, err := h.store.UpsertTrade(r.Context(), &trade); err != nil {
			h.logger.Error("trade webhook upsert failed",
				zap.String("order_no", trade.OrderNo), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to apply trade change")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("trade %s applied", trade.OrderNo),
		})

	case models.Position{}.TableName():
		var pos models.Position
		if err := json.Unmarshal(payload.Record, &pos); err != nil {
			writeError(w, http.StatusBadRequest, "malformed portfolio record")
			return
		}
		if pos.StockCode == "" {
			writeError(w, http.StatusBadRequest, "stock_code is required")
			return
		}
		if _, err := h.store.UpsertPosition(r.Context(), &pos); err != nil {
			h.logger.Error("portfolio webhook upsert failed",
				zap.String("stock_code", pos.StockCode), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to apply portfolio change")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("position %s applied", pos.StockCode),
		})

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported table %q", payload.Table))
	}
}

// Alert ingests a free-form alert from the bot and emits it as a system
// notification through the normal channels.
func (h *WebhookHandler) Alert(w http.ResponseWriter, r *http.Request) {
	var payload alertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	severity := payload.Severity
	switch severity {
	case "":
		severity = models.SeverityInfo
	case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported severity %q", payload.Severity))
		return
	}

	title := "System alert"
	if payload.Type != "" {
		title = payload.Type
	}
	if payload.StockCode != "" {
		title = fmt.Sprintf("%s (%s)", title, payload.StockCode)
	}

	notification := &models.Notification{
		Type:     models.NotificationSystemAlert,
		Title:    title,
		Message:  payload.Message,
		Severity: severity,
		Data:     []byte(payload.Data),
	}
	if err := h.notifier.Emit(r.Context(), notification); err != nil {
		h.logger.Error("failed to emit alert notification", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "alert recorded",
	})
}
