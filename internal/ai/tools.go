package ai

import (
	"encoding/json"
	"fmt"
)

// SystemPrompt frames the chat: the model turns a natural-language strategy
// description into structured create/modify tool calls.
const SystemPrompt = `You are a trading strategy assistant for a stock auto-trading dashboard.
The user describes a trading strategy in natural language. Ask short clarifying
questions when the description is ambiguous, then call the create_strategy tool
(or modify_strategy when the user refers to an existing strategy) with the
structured configuration. Stock codes are 6-digit KRX tickers. Keep text
responses brief; the structured record is the product.`

const strategyProperties = `
		"name": {"type": "string", "description": "Short strategy name"},
		"description": {"type": "string", "description": "One-paragraph summary of the rules"},
		"strategy_type": {
			"type": "string",
			"enum": ["manual", "moving_average", "rsi", "macd", "bollinger", "custom"]
		},
		"stock_codes": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Target stock codes; omit to apply to all"
		},
		"parameters": {
			"type": "object",
			"description": "Strategy-type specific parameters, e.g. {\"short_period\": 5, \"long_period\": 20}"
		},
		"max_investment": {"type": "integer", "description": "Maximum invested amount in KRW"},
		"max_loss_rate": {"type": "integer", "description": "Stop-loss threshold in percent"},
		"take_profit_rate": {"type": "integer", "description": "Take-profit threshold in percent"},
		"is_active": {"type": "boolean"},
		"priority": {"type": "integer"}`

// CreateStrategyTool is the schema for creating a new strategy.
var CreateStrategyTool = Tool{
	Name:        "create_strategy",
	Description: "Create a new trading strategy from the user's description.",
	InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {` + strategyProperties + `
	},
	"required": ["name", "strategy_type"]
}`),
}

// ModifyStrategyTool is the schema for changing an existing strategy.
var ModifyStrategyTool = Tool{
	Name:        "modify_strategy",
	Description: "Modify an existing trading strategy. Only include fields that change.",
	InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"strategy_id": {"type": "integer", "description": "Id of the strategy to change"},` + strategyProperties + `
	},
	"required": ["strategy_id"]
}`),
}

// StrategyTools is the tool set sent with every chat request.
var StrategyTools = []Tool{CreateStrategyTool, ModifyStrategyTool}

// StrategyInput is the argument object of a strategy tool call. It is shown
// to the user as a preview and written verbatim on save.
type StrategyInput struct {
	StrategyID     *uint          `json:"strategy_id,omitempty"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	StrategyType   string         `json:"strategy_type"`
	StockCodes     []string       `json:"stock_codes,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	MaxInvestment  *int           `json:"max_investment,omitempty"`
	MaxLossRate    *int           `json:"max_loss_rate,omitempty"`
	TakeProfitRate *int           `json:"take_profit_rate,omitempty"`
	IsActive       *bool          `json:"is_active,omitempty"`
	Priority       *int           `json:"priority,omitempty"`
}

// ParseStrategyInput decodes a strategy tool call's arguments.
func ParseStrategyInput(call ToolCall) (*StrategyInput, error) {
	var input StrategyInput
	if err := json.Unmarshal(call.Input, &input); err != nil {
		return nil, fmt.Errorf("malformed %s arguments: %w", call.Name, err)
	}
	if call.Name == "modify_strategy" && input.StrategyID == nil {
		return nil, fmt.Errorf("modify_strategy call without strategy_id")
	}
	return &input, nil
}
