package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StrategyHandler serves strategy CRUD and the active toggle.
type StrategyHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewStrategyHandler creates the handler.
func NewStrategyHandler(st *store.Store, logger *zap.Logger) *StrategyHandler {
	return &StrategyHandler{store: st, logger: logger}
}

// RegisterRoutes registers the strategy routes.
func (h *StrategyHandler) RegisterRoutes(router *mux.Router) {
	strategyRouter := router.PathPrefix("/strategies").Subrouter()
	strategyRouter.HandleFunc("", h.GetStrategies).Methods("GET")
	strategyRouter.HandleFunc("", h.CreateStrategy).Methods("POST")
	strategyRouter.HandleFunc("/{id:[0-9]+}", h.GetStrategyByID).Methods("GET")
	strategyRouter.HandleFunc("/{id:[0-9]+}", h.UpdateStrategy).Methods("PATCH")
	strategyRouter.HandleFunc("/{id:[0-9]+}", h.DeleteStrategy).Methods("DELETE")
	strategyRouter.HandleFunc("/{id:[0-9]+}/toggle", h.ToggleStrategy).Methods("POST")
}

// GetStrategies lists strategies by priority.
func (h *StrategyHandler) GetStrategies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseIntParam(query.Get("limit"), 100)
	offset := parseIntParam(query.Get("offset"), 0)

	strategies, total, active, err := h.store.ListStrategies(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list strategies", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list strategies")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":        strategies,
		"total":        total,
		"active_count": active,
		"limit":        limit,
		"offset":       offset,
	})
}

// CreateStrategy inserts a strategy.
func (h *StrategyHandler) CreateStrategy(w http.ResponseWriter, r *http.Request) {
	var strategy models.Strategy
	if err := json.NewDecoder(r.Body).Decode(&strategy); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strategy.Name == "" || strategy.StrategyType == "" {
		writeError(w, http.StatusBadRequest, "name and strategy_type are required")
		return
	}

	if err := h.store.CreateStrategy(r.Context(), &strategy); err != nil {
		h.logger.Error("failed to create strategy", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create strategy")
		return
	}
	writeJSON(w, http.StatusCreated, strategy)
}

// GetStrategyByID fetches one strategy.
func (h *StrategyHandler) GetStrategyByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	strategy, err := h.store.GetStrategy(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "strategy not found")
		return
	}
	writeJSON(w, http.StatusOK, strategy)
}

// UpdateStrategy applies a partial update.
func (h *StrategyHandler) UpdateStrategy(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var update store.StrategyUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	strategy, err := h.store.UpdateStrategy(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "strategy not found")
			return
		}
		h.logger.Error("failed to update strategy", zap.Uint("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update strategy")
		return
	}
	writeJSON(w, http.StatusOK, strategy)
}

// ToggleStrategy flips the active flag.
func (h *StrategyHandler) ToggleStrategy(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	strategy, err := h.store.ToggleStrategy(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "strategy not found")
			return
		}
		h.logger.Error("failed to toggle strategy", zap.Uint("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to toggle strategy")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         strategy.ID,
		"is_active":  strategy.IsActive,
		"updated_at": strategy.UpdatedAt,
	})
}

// DeleteStrategy removes a strategy.
func (h *StrategyHandler) DeleteStrategy(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if err := h.store.DeleteStrategy(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "strategy not found")
			return
		}
		h.logger.Error("failed to delete strategy", zap.Uint("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete strategy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func pathID(r *http.Request) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id)
}
