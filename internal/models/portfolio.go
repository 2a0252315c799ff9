package models

import "time"

// Position is one held instrument with cost basis and current valuation.
// Positions are recomputed by the trading bot; the dashboard reads them and
// refreshes the derived figures on sync.
type Position struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StockCode string `gorm:"size:20;uniqueIndex;not null" json:"stock_code"`
	StockName string `gorm:"size:100;not null" json:"stock_name"`

	Quantity     int     `gorm:"not null;default:0" json:"quantity"`
	AvgPrice     float64 `gorm:"not null" json:"avg_price"`
	CurrentPrice float64 `gorm:"not null" json:"current_price"`

	// Derived figures, cached on the row.
	TotalCost      float64 `gorm:"not null" json:"total_cost"`
	MarketValue    float64 `gorm:"not null" json:"market_value"`
	ProfitLoss     float64 `gorm:"not null;default:0" json:"profit_loss"`
	ProfitLossRate float64 `gorm:"not null;default:0" json:"profit_loss_rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Position) TableName() string {
	return "portfolio"
}

// RecalculateProfitLoss refreshes the cached valuation figures from quantity
// and prices. A zero cost basis yields a zero rate rather than dividing by
// zero.
func (p *Position) RecalculateProfitLoss() {
	p.MarketValue = float64(p.Quantity) * p.CurrentPrice
	p.ProfitLoss = p.MarketValue - p.TotalCost
	if p.TotalCost > 0 {
		p.ProfitLossRate = p.ProfitLoss / p.TotalCost * 100
	} else {
		p.ProfitLossRate = 0
	}
}
