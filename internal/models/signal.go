package models

import (
	"time"

	"gorm.io/datatypes"
)

// Signal recommendations.
const (
	SignalTypeBuy  = "buy"
	SignalTypeSell = "sell"
	SignalTypeHold = "hold"
)

// Signal lifecycle statuses.
const (
	SignalStatusPending  = "pending"
	SignalStatusExecuted = "executed"
	SignalStatusIgnored  = "ignored"
	SignalStatusExpired  = "expired"
)

// Signal is a strategy-generated trade recommendation awaiting execution or
// disposition. Read-only from the dashboard's perspective.
type Signal struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StrategyID uint `gorm:"not null;index" json:"strategy_id"`

	StockCode string `gorm:"size:20;not null;index" json:"stock_code"`
	StockName string `gorm:"size:100;not null" json:"stock_name"`

	SignalType string `gorm:"size:10;not null;check:signal_type IN ('buy','sell','hold')" json:"signal_type"`
	Status     string `gorm:"size:20;not null;default:'pending';check:status IN ('pending','executed','ignored','expired')" json:"status"`

	Price    float64 `gorm:"not null" json:"price"`
	Quantity *int    `json:"quantity,omitempty"`

	// Both on a 0-100 scale.
	Strength   float64 `gorm:"default:0" json:"strength"`
	Confidence float64 `gorm:"default:0" json:"confidence"`

	AnalysisData datatypes.JSON `gorm:"type:jsonb" json:"analysis_data,omitempty"`

	TradeID    *uint      `json:"trade_id,omitempty"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`

	Reason string `gorm:"type:text" json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Signal) TableName() string {
	return "signals"
}
