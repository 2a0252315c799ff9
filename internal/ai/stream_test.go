package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lets-trade-dashboard-go/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const sseBody = `event: message_start
data: {"type":"message_start"}

event: content_block_start
data: {"type":"content_block_start","content_block":{"type":"text"}}

event: content_block_delta
data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Creating a "}}

event: content_block_delta
data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"strategy."}}

event: content_block_stop
data: {"type":"content_block_stop"}

event: content_block_start
data: {"type":"content_block_start","content_block":{"type":"tool_use","id":"toolu_1","name":"create_strategy"}}

event: content_block_delta
data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"name\":\"Golden"}}

event: content_block_delta
data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":" Cross\",\"strategy_type\":\"moving_average\"}"}}

event: content_block_stop
data: {"type":"content_block_stop"}

event: message_stop
data: {"type":"message_stop"}

`

func newTestChatClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(&config.AI{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "test-model",
		MaxTokens: 512,
	}, zap.NewNop())
	return client, server
}

func TestStreamMessageAssemblesEvents(t *testing.T) {
	client, server := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Arrange: verify the request shape before answering.
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Tools, 2)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(sseBody))
	})
	defer server.Close()

	stream, err := client.StreamMessage(context.Background(), SystemPrompt,
		[]Message{{Role: "user", Content: "make a golden cross strategy"}}, StrategyTools)
	assert.NoError(t, err)
	defer stream.Close()

	var text string
	var calls []ToolCall
	var done bool
	for {
		ev, err := stream.Recv()
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
		switch ev := ev.(type) {
		case TextDelta:
			text += ev.Text
		case ToolCall:
			calls = append(calls, ev)
		case MessageDone:
			done = true
		}
	}

	assert.Equal(t, "Creating a strategy.", text)
	assert.True(t, done)
	assert.Len(t, calls, 1)
	assert.Equal(t, "toolu_1", calls[0].ID)
	assert.Equal(t, "create_strategy", calls[0].Name)

	input, err := ParseStrategyInput(calls[0])
	assert.NoError(t, err)
	assert.Equal(t, "Golden Cross", input.Name)
	assert.Equal(t, "moving_average", input.StrategyType)
}

func TestStreamMessageAPIError(t *testing.T) {
	client, server := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	})
	defer server.Close()

	_, err := client.StreamMessage(context.Background(), SystemPrompt, []Message{{Role: "user", Content: "hi"}}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestParseStrategyInput(t *testing.T) {
	t.Run("ModifyRequiresStrategyID", func(t *testing.T) {
		_, err := ParseStrategyInput(ToolCall{
			Name:  "modify_strategy",
			Input: json.RawMessage(`{"name":"x"}`),
		})
		assert.Error(t, err)
	})

	t.Run("ModifyWithStrategyID", func(t *testing.T) {
		input, err := ParseStrategyInput(ToolCall{
			Name:  "modify_strategy",
			Input: json.RawMessage(`{"strategy_id":3,"is_active":true}`),
		})
		assert.NoError(t, err)
		assert.Equal(t, uint(3), *input.StrategyID)
		assert.True(t, *input.IsActive)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := ParseStrategyInput(ToolCall{Name: "create_strategy", Input: json.RawMessage(`{`)})
		assert.Error(t, err)
	})

	t.Run("FullCreate", func(t *testing.T) {
		input, err := ParseStrategyInput(ToolCall{
			Name: "create_strategy",
			Input: json.RawMessage(`{
				"name":"RSI dip buyer",
				"strategy_type":"rsi",
				"stock_codes":["005930","000660"],
				"parameters":{"period":14,"oversold":30},
				"max_investment":1000000,
				"max_loss_rate":5
			}`),
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"005930", "000660"}, input.StockCodes)
		assert.Equal(t, float64(14), input.Parameters["period"])
		assert.Equal(t, 1000000, *input.MaxInvestment)
	})
}
