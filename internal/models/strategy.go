package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Strategy types.
const (
	StrategyTypeManual        = "manual"
	StrategyTypeMovingAverage = "moving_average"
	StrategyTypeRSI           = "rsi"
	StrategyTypeMACD          = "macd"
	StrategyTypeBollinger     = "bollinger"
	StrategyTypeCustom        = "custom"
)

// Strategy is a trading strategy configuration. Created from the AI chat flow
// or direct insert, toggled on and off from the dashboard.
type Strategy struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	StrategyType string `gorm:"size:50;not null;check:strategy_type IN ('manual','moving_average','rsi','macd','bollinger','custom')" json:"strategy_type"`

	// Target instruments; empty means all.
	StockCodes pq.StringArray `gorm:"type:text[]" json:"stock_codes,omitempty"`

	// Free-form per-type parameter map.
	Parameters datatypes.JSON `gorm:"type:jsonb" json:"parameters,omitempty"`

	// Risk bounds, all optional.
	MaxInvestment  *int `json:"max_investment,omitempty"`
	MaxLossRate    *int `json:"max_loss_rate,omitempty"`    // percent
	TakeProfitRate *int `json:"take_profit_rate,omitempty"` // percent

	IsActive bool `gorm:"default:false" json:"is_active"`
	Priority int  `gorm:"default:0" json:"priority"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Strategy) TableName() string {
	return "strategies"
}
