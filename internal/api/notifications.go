package api

import (
	"net/http"
	"strconv"

	"lets-trade-dashboard-go/internal/feeds"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NotificationHandler serves the notification panel, backed by the live feed
// rather than direct table reads so the badge count matches the websocket
// view exactly.
type NotificationHandler struct {
	feed   *feeds.NotificationFeed
	logger *zap.Logger
}

// NewNotificationHandler creates the handler.
func NewNotificationHandler(feed *feeds.NotificationFeed, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{feed: feed, logger: logger}
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router *mux.Router) {
	notificationRouter := router.PathPrefix("/notifications").Subrouter()
	notificationRouter.HandleFunc("", h.GetNotifications).Methods("GET")
	notificationRouter.HandleFunc("/unread-count", h.GetUnreadCount).Methods("GET")
	notificationRouter.HandleFunc("/read-all", h.MarkAllRead).Methods("POST")
	notificationRouter.HandleFunc("/{id:[0-9]+}/read", h.MarkRead).Methods("POST")
}

// GetNotifications returns the current window, newest first.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseIntParam(query.Get("limit"), 0)
	unreadOnly := query.Get("unread_only") == "true"

	items := h.feed.Items()
	if unreadOnly {
		unread := items[:0]
		for _, item := range items {
			if !item.Read {
				unread = append(unread, item)
			}
		}
		items = unread
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":        items,
		"total":        len(items),
		"unread_count": h.feed.UnreadCount(),
	})
}

// GetUnreadCount returns the badge count.
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"unread_count": h.feed.UnreadCount(),
	})
}

// MarkRead flips one notification's read flag.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.feed.MarkAsRead(r.Context(), uint(id)); err != nil {
		h.logger.Error("failed to mark notification read", zap.Uint64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"unread_count": h.feed.UnreadCount(),
	})
}

// MarkAllRead clears the badge.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.MarkAllAsRead(r.Context()); err != nil {
		h.logger.Error("failed to mark all notifications read", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"unread_count": 0,
	})
}
