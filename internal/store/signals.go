package store

import (
	"context"
	"fmt"

	"lets-trade-dashboard-go/internal/models"
)

// SignalFilter narrows a signal listing.
type SignalFilter struct {
	StrategyID *uint
	Status     string
	SignalType string
	StockCode  string
	Limit      int
	Offset     int
}

// SignalStats carries the aggregate signal counts.
type SignalStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Executed int64 `json:"executed"`
	Ignored  int64 `json:"ignored"`
	Expired  int64 `json:"expired"`
	Buy      int64 `json:"buy_count"`
	Sell     int64 `json:"sell_count"`
	Hold     int64 `json:"hold_count"`
}

// ListSignals returns signals newest-first with the filter applied.
func (s *Store) ListSignals(ctx context.Context, filter SignalFilter) ([]models.Signal, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultTradeLimit
	}

	q := s.db.WithContext(ctx).Model(&models.Signal{})
	if filter.StrategyID != nil {
		q = q.Where("strategy_id = ?", *filter.StrategyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SignalType != "" {
		q = q.Where("signal_type = ?", filter.SignalType)
	}
	if filter.StockCode != "" {
		q = q.Where("stock_code = ?", filter.StockCode)
	}

	var signals []models.Signal
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count signals: %w", err)
	}
	if err := q.Order("created_at desc").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&signals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list signals: %w", err)
	}
	return signals, total, nil
}

// GetSignal fetches one signal by id.
func (s *Store) GetSignal(ctx context.Context, id uint) (*models.Signal, error) {
	var signal models.Signal
	if err := s.db.WithContext(ctx).First(&signal, id).Error; err != nil {
		return nil, err
	}
	return &signal, nil
}

// GetSignalStats aggregates signal counts by status and recommendation.
func (s *Store) GetSignalStats(ctx context.Context) (SignalStats, error) {
	type counted struct {
		Total    int64
		Pending  int64
		Executed int64
		Ignored  int64
		Expired  int64
		Buy      int64
		Sell     int64
		Hold     int64
	}
	var c counted
	err := s.db.WithContext(ctx).Model(&models.Signal{}).Select(
		"COUNT(*) as total, " +
			"COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) as pending, " +
			"COALESCE(SUM(CASE WHEN status = 'executed' THEN 1 ELSE 0 END), 0) as executed, " +
			"COALESCE(SUM(CASE WHEN status = 'ignored' THEN 1 ELSE 0 END), 0) as ignored, " +
			"COALESCE(SUM(CASE WHEN status = 'expired' THEN 1 ELSE 0 END), 0) as expired, " +
			"COALESCE(SUM(CASE WHEN signal_type = 'buy' THEN 1 ELSE 0 END), 0) as buy, " +
			"COALESCE(SUM(CASE WHEN signal_type = 'sell' THEN 1 ELSE 0 END), 0) as sell, " +
			"COALESCE(SUM(CASE WHEN signal_type = 'hold' THEN 1 ELSE 0 END), 0) as hold",
	).Scan(&c).Error
	if err != nil {
		return SignalStats{}, fmt.Errorf("failed to compute signal stats: %w", err)
	}

	return SignalStats{
		Total:    c.Total,
		Pending:  c.Pending,
		Executed: c.Executed,
		Ignored:  c.Ignored,
		Expired:  c.Expired,
		Buy:      c.Buy,
		Sell:     c.Sell,
		Hold:     c.Hold,
	}, nil
}
