package store

import (
	"context"
	"fmt"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// StrategyUpdate is a partial update; nil fields are left untouched.
type StrategyUpdate struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	StrategyType   *string         `json:"strategy_type,omitempty"`
	StockCodes     *pq.StringArray `json:"stock_codes,omitempty"`
	Parameters     *datatypes.JSON `json:"parameters,omitempty"`
	MaxInvestment  *int            `json:"max_investment,omitempty"`
	MaxLossRate    *int            `json:"max_loss_rate,omitempty"`
	TakeProfitRate *int            `json:"take_profit_rate,omitempty"`
	IsActive       *bool           `json:"is_active,omitempty"`
	Priority       *int            `json:"priority,omitempty"`
}

// ListStrategies returns strategies ordered by priority, with the total and
// active counts.
func (s *Store) ListStrategies(ctx context.Context, limit, offset int) ([]models.Strategy, int64, int64, error) {
	if limit <= 0 {
		limit = defaultTradeLimit
	}

	var strategies []models.Strategy
	var total, active int64

	q := s.db.WithContext(ctx).Model(&models.Strategy{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count strategies: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Strategy{}).
		Where("is_active = ?", true).Count(&active).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count active strategies: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Order("priority desc, id asc").
		Limit(limit).Offset(offset).
		Find(&strategies).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("failed to list strategies: %w", err)
	}
	return strategies, total, active, nil
}

// GetStrategy fetches one strategy by id.
func (s *Store) GetStrategy(ctx context.Context, id uint) (*models.Strategy, error) {
	var strategy models.Strategy
	if err := s.db.WithContext(ctx).First(&strategy, id).Error; err != nil {
		return nil, err
	}
	return &strategy, nil
}

// CreateStrategy inserts a strategy and publishes the change event.
func (s *Store) CreateStrategy(ctx context.Context, strategy *models.Strategy) error {
	if err := s.db.WithContext(ctx).Create(strategy).Error; err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}
	s.publish(realtime.EventInsert, models.Strategy{}.TableName(), strategy, nil)
	return nil
}

// UpdateStrategy applies a partial update and returns the fresh row.
func (s *Store) UpdateStrategy(ctx context.Context, id uint, update StrategyUpdate) (*models.Strategy, error) {
	strategy, err := s.GetStrategy(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *strategy

	if update.Name != nil {
		strategy.Name = *update.Name
	}
	if update.Description != nil {
		strategy.Description = *update.Description
	}
	if update.StrategyType != nil {
		strategy.StrategyType = *update.StrategyType
	}
	if update.StockCodes != nil {
		strategy.StockCodes = *update.StockCodes
	}
	if update.Parameters != nil {
		strategy.Parameters = *update.Parameters
	}
	if update.MaxInvestment != nil {
		strategy.MaxInvestment = update.MaxInvestment
	}
	if update.MaxLossRate != nil {
		strategy.MaxLossRate = update.MaxLossRate
	}
	if update.TakeProfitRate != nil {
		strategy.TakeProfitRate = update.TakeProfitRate
	}
	if update.IsActive != nil {
		strategy.IsActive = *update.IsActive
	}
	if update.Priority != nil {
		strategy.Priority = *update.Priority
	}

	if err := s.db.WithContext(ctx).Save(strategy).Error; err != nil {
		return nil, fmt.Errorf("failed to update strategy %d: %w", id, err)
	}
	s.publish(realtime.EventUpdate, models.Strategy{}.TableName(), strategy, &old)
	return strategy, nil
}

// ToggleStrategy flips the active flag and returns the fresh row.
func (s *Store) ToggleStrategy(ctx context.Context, id uint) (*models.Strategy, error) {
	strategy, err := s.GetStrategy(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *strategy

	strategy.IsActive = !strategy.IsActive
	if err := s.db.WithContext(ctx).Save(strategy).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle strategy %d: %w", id, err)
	}
	s.publish(realtime.EventUpdate, models.Strategy{}.TableName(), strategy, &old)
	return strategy, nil
}

// DeleteStrategy removes a strategy.
func (s *Store) DeleteStrategy(ctx context.Context, id uint) error {
	strategy, err := s.GetStrategy(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Strategy{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete strategy %d: %w", id, err)
	}
	s.publish(realtime.EventDelete, models.Strategy{}.TableName(), nil, strategy)
	return nil
}
