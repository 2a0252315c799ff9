package store

import (
	"context"
	"fmt"
	"time"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"gorm.io/gorm"
)

// TradeFilter narrows a trade listing.
type TradeFilter struct {
	Status     string
	OrderType  string
	StockCode  string
	StrategyID *uint
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TradeSummary carries the aggregate counts shown next to the trade list.
type TradeSummary struct {
	TotalCount    int64 `json:"total_count"`
	BuyCount      int64 `json:"buy_count"`
	SellCount     int64 `json:"sell_count"`
	ExecutedCount int64 `json:"executed_count"`
	PendingCount  int64 `json:"pending_count"`
}

const defaultTradeLimit = 100

func (f *TradeFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.StockCode != "" {
		q = q.Where("stock_code = ?", f.StockCode)
	}
	if f.StrategyID != nil {
		q = q.Where("strategy_id = ?", *f.StrategyID)
	}
	if f.FromDate != nil {
		q = q.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		// ToDate is inclusive of the whole day.
		q = q.Where("created_at < ?", f.ToDate.AddDate(0, 0, 1))
	}
	return q
}

// ListTrades returns trades newest-first with the filter applied, the total
// matching count, and summary counts over the same date range.
func (s *Store) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, int64, TradeSummary, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultTradeLimit
	}

	var trades []models.Trade
	var total int64

	q := filter.apply(s.db.WithContext(ctx).Model(&models.Trade{}))
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, TradeSummary{}, fmt.Errorf("failed to count trades: %w", err)
	}
	if err := q.Order("created_at desc").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&trades).Error; err != nil {
		return nil, 0, TradeSummary{}, fmt.Errorf("failed to list trades: %w", err)
	}

	summary, err := s.tradeSummary(ctx, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, 0, TradeSummary{}, err
	}
	return trades, total, summary, nil
}

// ListTodayTrades returns today's trades newest-first.
func (s *Store) ListTodayTrades(ctx context.Context, limit, offset int) ([]models.Trade, int64, error) {
	if limit <= 0 {
		limit = defaultTradeLimit
	}
	startOfDay := startOfToday()

	var trades []models.Trade
	var total int64

	q := s.db.WithContext(ctx).Model(&models.Trade{}).Where("created_at >= ?", startOfDay)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count today's trades: %w", err)
	}
	if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&trades).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list today's trades: %w", err)
	}
	return trades, total, nil
}

// GetTrade fetches one trade by id.
func (s *Store) GetTrade(ctx context.Context, id uint) (*models.Trade, error) {
	var trade models.Trade
	if err := s.db.WithContext(ctx).First(&trade, id).Error; err != nil {
		return nil, err
	}
	return &trade, nil
}

// UpsertTrade applies a row image pushed by the bot. Matching is by order_no.
// It returns the previous row image (nil on insert) so the caller can reason
// about status transitions, and publishes the corresponding change event.
func (s *Store) UpsertTrade(ctx context.Context, trade *models.Trade) (*models.Trade, error) {
	var existing models.Trade
	err := s.db.WithContext(ctx).Where("order_no = ?", trade.OrderNo).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up trade %s: %w", trade.OrderNo, err)
	}

	if err == gorm.ErrRecordNotFound {
		if err := s.db.WithContext(ctx).Create(trade).Error; err != nil {
			return nil, fmt.Errorf("failed to create trade %s: %w", trade.OrderNo, err)
		}
		s.publish(realtime.EventInsert, models.Trade{}.TableName(), trade, nil)
		return nil, nil
	}

	old := existing
	trade.ID = existing.ID
	trade.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(trade).Error; err != nil {
		return nil, fmt.Errorf("failed to update trade %s: %w", trade.OrderNo, err)
	}
	s.publish(realtime.EventUpdate, models.Trade{}.TableName(), trade, &old)
	return &old, nil
}

func (s *Store) tradeSummary(ctx context.Context, from, to *time.Time) (TradeSummary, error) {
	q := s.db.WithContext(ctx).Model(&models.Trade{})
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	var summary TradeSummary
	type counted struct {
		Total    int64
		Buy      int64
		Sell     int64
		Executed int64
		Pending  int64
	}
	var c counted
	err := q.Select(
		"COUNT(*) as total, " +
			"COALESCE(SUM(CASE WHEN order_type = 'buy' THEN 1 ELSE 0 END), 0) as buy, " +
			"COALESCE(SUM(CASE WHEN order_type = 'sell' THEN 1 ELSE 0 END), 0) as sell, " +
			"COALESCE(SUM(CASE WHEN status = 'executed' THEN 1 ELSE 0 END), 0) as executed, " +
			"COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) as pending",
	).Scan(&c).Error
	if err != nil {
		return summary, fmt.Errorf("failed to compute trade summary: %w", err)
	}

	summary.TotalCount = c.Total
	summary.BuyCount = c.Buy
	summary.SellCount = c.Sell
	summary.ExecutedCount = c.Executed
	summary.PendingCount = c.Pending
	return summary, nil
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
