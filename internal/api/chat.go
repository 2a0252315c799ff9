package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"lets-trade-dashboard-go/internal/ai"
	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatHandler serves the strategy chat. /chat relays the model's stream to
// the browser as server-sent events; tool calls surface as strategy previews
// which the user confirms through /chat/save.
type ChatHandler struct {
	chat   *ai.Client
	store  *store.Store
	logger *zap.Logger
}

// NewChatHandler creates the handler.
func NewChatHandler(chat *ai.Client, st *store.Store, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, store: st, logger: logger}
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	chatRouter := router.PathPrefix("/chat").Subrouter()
	chatRouter.HandleFunc("", h.Chat).Methods("POST")
	chatRouter.HandleFunc("/save", h.Save).Methods("POST")
}

type chatBody struct {
	Messages []ai.Message `json:"messages"`
}

// Chat streams one assistant turn back as server-sent events. Text arrives
// as "text" events, completed tool calls as "strategy_preview" events, and
// the turn ends with a "done" event.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var body chatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream, err := h.chat.StreamMessage(r.Context(), ai.SystemPrompt, body.Messages, ai.StrategyTools)
	if err != nil {
		h.logger.Error("chat stream failed to open", zap.Error(err))
		writeError(w, http.StatusBadGateway, "model request failed")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		ev, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Warn("chat stream interrupted", zap.Error(err))
				writeSSE(w, flusher, "error", map[string]any{"error": "stream interrupted"})
			}
			return
		}

		switch ev := ev.(type) {
		case ai.TextDelta:
			writeSSE(w, flusher, "text", map[string]any{"text": ev.Text})

		case ai.ToolCall:
			input, err := ai.ParseStrategyInput(ev)
			if err != nil {
				h.logger.Warn("malformed strategy tool call", zap.String("tool", ev.Name), zap.Error(err))
				writeSSE(w, flusher, "error", map[string]any{"error": err.Error()})
				continue
			}
			writeSSE(w, flusher, "strategy_preview", map[string]any{
				"tool":  ev.Name,
				"input": input,
			})

		case ai.MessageDone:
			writeSSE(w, flusher, "done", map[string]any{})
			return
		}
	}
}

// Save persists a confirmed strategy preview: create when no strategy_id is
// present, partial update otherwise.
func (h *ChatHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input ai.StrategyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if input.StrategyID != nil {
		strategy, err := h.store.UpdateStrategy(r.Context(), *input.StrategyID, strategyUpdateFromInput(&input))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(w, http.StatusNotFound, "strategy not found")
				return
			}
			h.logger.Error("failed to save strategy changes", zap.Uint("id", *input.StrategyID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save strategy")
			return
		}
		writeJSON(w, http.StatusOK, strategy)
		return
	}

	if input.Name == "" || input.StrategyType == "" {
		writeError(w, http.StatusBadRequest, "name and strategy_type are required")
		return
	}
	strategy, err := strategyFromInput(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.CreateStrategy(r.Context(), strategy); err != nil {
		h.logger.Error("failed to save new strategy", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save strategy")
		return
	}
	writeJSON(w, http.StatusCreated, strategy)
}

func strategyFromInput(input *ai.StrategyInput) (*models.Strategy, error) {
	strategy := &models.Strategy{
		Name:           input.Name,
		Description:    input.Description,
		StrategyType:   input.StrategyType,
		StockCodes:     pq.StringArray(input.StockCodes),
		MaxInvestment:  input.MaxInvestment,
		MaxLossRate:    input.MaxLossRate,
		TakeProfitRate: input.TakeProfitRate,
	}
	if input.Parameters != nil {
		params, err := json.Marshal(input.Parameters)
		if err != nil {
			return nil, fmt.Errorf("malformed parameters: %w", err)
		}
		strategy.Parameters = params
	}
	if input.IsActive != nil {
		strategy.IsActive = *input.IsActive
	}
	if input.Priority != nil {
		strategy.Priority = *input.Priority
	}
	return strategy, nil
}

func strategyUpdateFromInput(input *ai.StrategyInput) store.StrategyUpdate {
	update := store.StrategyUpdate{
		MaxInvestment:  input.MaxInvestment,
		MaxLossRate:    input.MaxLossRate,
		TakeProfitRate: input.TakeProfitRate,
		IsActive:       input.IsActive,
		Priority:       input.Priority,
	}
	if input.Name != "" {
		update.Name = &input.Name
	}
	if input.Description != "" {
		update.Description = &input.Description
	}
	if input.StrategyType != "" {
		update.StrategyType = &input.StrategyType
	}
	if input.StockCodes != nil {
		codes := pq.StringArray(input.StockCodes)
		update.StockCodes = &codes
	}
	if input.Parameters != nil {
		if params, err := json.Marshal(input.Parameters); err == nil {
			j := datatypes.JSON(params)
			update.Parameters = &j
		}
	}
	return update
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
