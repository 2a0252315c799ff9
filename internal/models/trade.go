package models

import "time"

// Order sides.
const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"
)

// Order lifecycle statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusExecuted  = "executed"
	OrderStatusPartial   = "partial"
	OrderStatusCancelled = "cancelled"
	OrderStatusRejected  = "rejected"
)

// Trade represents one order placed by the trading bot. The dashboard only
// reads trades; rows are written through the bot's change webhook.
type Trade struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrderNo   string `gorm:"size:50;uniqueIndex;not null" json:"order_no"`
	StockCode string `gorm:"size:20;not null;index" json:"stock_code"`
	StockName string `gorm:"size:100;not null" json:"stock_name"`

	OrderType string `gorm:"size:10;not null;check:order_type IN ('buy','sell')" json:"order_type"`
	Status    string `gorm:"size:20;not null;default:'pending';check:status IN ('pending','executed','partial','cancelled','rejected')" json:"status"`

	Quantity         int      `gorm:"not null" json:"quantity"`
	Price            float64  `gorm:"not null" json:"price"`
	ExecutedQuantity int      `gorm:"default:0" json:"executed_quantity"`
	ExecutedPrice    *float64 `json:"executed_price,omitempty"`

	// Integer references without declared foreign keys; the owning rows live
	// in tables the bot also writes to.
	StrategyID *uint `json:"strategy_id,omitempty"`
	SignalID   *uint `json:"signal_id,omitempty"`

	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}
