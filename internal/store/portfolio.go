package store

import (
	"context"
	"fmt"
	"time"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"gorm.io/gorm"
)

// PortfolioSummary is the aggregate view shown at the top of the dashboard.
type PortfolioSummary struct {
	TotalValue      float64   `json:"total_value"`
	TotalCost       float64   `json:"total_cost"`
	TotalProfit     float64   `json:"total_profit"`
	ProfitRate      float64   `json:"profit_rate"`
	PositionCount   int64     `json:"position_count"`
	TodayTradeCount int64     `json:"today_trade_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// SyncResult reports what a full portfolio sync changed.
type SyncResult struct {
	Synced    int       `json:"synced_count"`
	Added     int       `json:"added"`
	Updated   int       `json:"updated"`
	Removed   int       `json:"removed"`
	Timestamp time.Time `json:"timestamp"`
}

var allowedPositionOrder = map[string]bool{
	"market_value":     true,
	"profit_loss":      true,
	"profit_loss_rate": true,
	"stock_code":       true,
	"quantity":         true,
}

// ListPositions returns portfolio positions ordered by the given column
// (market_value by default).
func (s *Store) ListPositions(ctx context.Context, orderBy string, ascending bool, limit, offset int) ([]models.Position, int64, error) {
	if limit <= 0 {
		limit = defaultTradeLimit
	}
	if !allowedPositionOrder[orderBy] {
		orderBy = "market_value"
	}
	direction := "desc"
	if ascending {
		direction = "asc"
	}

	var positions []models.Position
	var total int64

	q := s.db.WithContext(ctx).Model(&models.Position{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count positions: %w", err)
	}
	if err := q.Order(orderBy + " " + direction).
		Limit(limit).Offset(offset).
		Find(&positions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, total, nil
}

// GetPortfolioSummary aggregates the whole portfolio. A zero cost basis
// yields a zero profit rate.
func (s *Store) GetPortfolioSummary(ctx context.Context) (PortfolioSummary, error) {
	type aggregated struct {
		TotalValue  float64
		TotalCost   float64
		TotalProfit float64
		Count       int64
	}
	var agg aggregated
	err := s.db.WithContext(ctx).Model(&models.Position{}).Select(
		"COALESCE(SUM(market_value), 0) as total_value, " +
			"COALESCE(SUM(total_cost), 0) as total_cost, " +
			"COALESCE(SUM(profit_loss), 0) as total_profit, " +
			"COUNT(*) as count",
	).Scan(&agg).Error
	if err != nil {
		return PortfolioSummary{}, fmt.Errorf("failed to aggregate portfolio: %w", err)
	}

	var todayCount int64
	err = s.db.WithContext(ctx).Model(&models.Trade{}).
		Where("created_at >= ?", startOfToday()).
		Count(&todayCount).Error
	if err != nil {
		return PortfolioSummary{}, fmt.Errorf("failed to count today's trades: %w", err)
	}

	summary := PortfolioSummary{
		TotalValue:      agg.TotalValue,
		TotalCost:       agg.TotalCost,
		TotalProfit:     agg.TotalProfit,
		PositionCount:   agg.Count,
		TodayTradeCount: todayCount,
		Timestamp:       time.Now(),
	}
	if agg.TotalCost > 0 {
		summary.ProfitRate = agg.TotalProfit / agg.TotalCost * 100
	}
	return summary, nil
}

// UpsertPosition applies a position row image pushed by the bot, keyed by
// stock_code, and publishes the change event.
func (s *Store) UpsertPosition(ctx context.Context, pos *models.Position) (*models.Position, error) {
	pos.RecalculateProfitLoss()

	var existing models.Position
	err := s.db.WithContext(ctx).Where("stock_code = ?", pos.StockCode).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up position %s: %w", pos.StockCode, err)
	}

	if err == gorm.ErrRecordNotFound {
		if err := s.db.WithContext(ctx).Create(pos).Error; err != nil {
			return nil, fmt.Errorf("failed to create position %s: %w", pos.StockCode, err)
		}
		s.publish(realtime.EventInsert, models.Position{}.TableName(), pos, nil)
		return nil, nil
	}

	old := existing
	pos.ID = existing.ID
	pos.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(pos).Error; err != nil {
		return nil, fmt.Errorf("failed to update position %s: %w", pos.StockCode, err)
	}
	s.publish(realtime.EventUpdate, models.Position{}.TableName(), pos, &old)
	return &old, nil
}

// SyncPositions replaces the portfolio with the given snapshot: incoming
// rows are upserted by stock_code and rows absent from the snapshot are
// removed. One change event is published per affected row.
func (s *Store) SyncPositions(ctx context.Context, snapshot []models.Position) (SyncResult, error) {
	result := SyncResult{Timestamp: time.Now()}

	var existing []models.Position
	if err := s.db.WithContext(ctx).Find(&existing).Error; err != nil {
		return result, fmt.Errorf("failed to load current portfolio: %w", err)
	}

	seen := make(map[string]bool, len(snapshot))
	for i := range snapshot {
		pos := snapshot[i]
		seen[pos.StockCode] = true
		old, err := s.UpsertPosition(ctx, &pos)
		if err != nil {
			return result, err
		}
		if old == nil {
			result.Added++
		} else {
			result.Updated++
		}
		result.Synced++
	}

	for i := range existing {
		if seen[existing[i].StockCode] {
			continue
		}
		old := existing[i]
		if err := s.db.WithContext(ctx).Delete(&models.Position{}, old.ID).Error; err != nil {
			return result, fmt.Errorf("failed to remove position %s: %w", old.StockCode, err)
		}
		s.publish(realtime.EventDelete, models.Position{}.TableName(), nil, &old)
		result.Removed++
	}

	return result, nil
}
