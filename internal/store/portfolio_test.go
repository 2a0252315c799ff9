package store

import (
	"context"
	"testing"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"github.com/stretchr/testify/assert"
)

func TestGetPortfolioSummaryEmpty(t *testing.T) {
	st, _ := setupStoreTest(t)

	summary, err := st.GetPortfolioSummary(context.Background())

	// An empty portfolio aggregates to zero everywhere, including the rate.
	assert.NoError(t, err)
	assert.Zero(t, summary.TotalValue)
	assert.Zero(t, summary.TotalCost)
	assert.Zero(t, summary.TotalProfit)
	assert.Zero(t, summary.ProfitRate)
	assert.Zero(t, summary.PositionCount)
}

func TestGetPortfolioSummaryComputesRate(t *testing.T) {
	st, _ := setupStoreTest(t)
	ctx := context.Background()

	positions := []models.Position{
		{StockCode: "005930", StockName: "Samsung", Quantity: 10, AvgPrice: 100, CurrentPrice: 110, TotalCost: 1000, MarketValue: 1100, ProfitLoss: 100, ProfitLossRate: 10},
		{StockCode: "000660", StockName: "Hynix", Quantity: 5, AvgPrice: 200, CurrentPrice: 180, TotalCost: 1000, MarketValue: 900, ProfitLoss: -100, ProfitLossRate: -10},
	}
	for i := range positions {
		assert.NoError(t, st.DB().Create(&positions[i]).Error)
	}

	summary, err := st.GetPortfolioSummary(ctx)
	assert.NoError(t, err)
	assert.Equal(t, float64(2000), summary.TotalValue)
	assert.Equal(t, float64(2000), summary.TotalCost)
	assert.Equal(t, float64(0), summary.TotalProfit)
	assert.Equal(t, float64(0), summary.ProfitRate)
	assert.Equal(t, int64(2), summary.PositionCount)
}

func TestUpsertPositionRecalculates(t *testing.T) {
	st, broker := setupStoreTest(t)
	events := collectEvents(t, broker, models.Position{}.TableName())
	ctx := context.Background()

	pos := &models.Position{
		StockCode:    "005930",
		StockName:    "Samsung",
		Quantity:     10,
		AvgPrice:     100,
		CurrentPrice: 120,
		TotalCost:    1000,
	}
	old, err := st.UpsertPosition(ctx, pos)
	assert.NoError(t, err)
	assert.Nil(t, old)
	assert.Equal(t, float64(1200), pos.MarketValue)
	assert.Equal(t, float64(200), pos.ProfitLoss)
	assert.Equal(t, float64(20), pos.ProfitLossRate)
	assert.Equal(t, realtime.EventInsert, waitEvent(t, events).Type)

	// A zero cost basis must not divide by zero.
	free := &models.Position{StockCode: "999999", StockName: "Bonus", Quantity: 3, CurrentPrice: 50}
	_, err = st.UpsertPosition(ctx, free)
	assert.NoError(t, err)
	assert.Equal(t, float64(0), free.ProfitLossRate)
	assert.Equal(t, realtime.EventInsert, waitEvent(t, events).Type)

	// Updating an existing code keeps the row identity.
	update := &models.Position{StockCode: "005930", StockName: "Samsung", Quantity: 10, AvgPrice: 100, CurrentPrice: 90, TotalCost: 1000}
	oldImage, err := st.UpsertPosition(ctx, update)
	assert.NoError(t, err)
	assert.NotNil(t, oldImage)
	assert.Equal(t, pos.ID, update.ID)
	assert.Equal(t, float64(120), oldImage.CurrentPrice)
	assert.Equal(t, realtime.EventUpdate, waitEvent(t, events).Type)
}

func TestSyncPositionsReplacesSnapshot(t *testing.T) {
	st, broker := setupStoreTest(t)
	ctx := context.Background()

	seed := []models.Position{
		{StockCode: "005930", StockName: "Samsung", Quantity: 10, AvgPrice: 100, CurrentPrice: 100, TotalCost: 1000},
		{StockCode: "000660", StockName: "Hynix", Quantity: 5, AvgPrice: 200, CurrentPrice: 200, TotalCost: 1000},
	}
	for i := range seed {
		_, err := st.UpsertPosition(ctx, &seed[i])
		assert.NoError(t, err)
	}

	events := collectEvents(t, broker, models.Position{}.TableName())

	// The snapshot keeps Samsung (changed), drops Hynix, adds Kakao.
	snapshot := []models.Position{
		{StockCode: "005930", StockName: "Samsung", Quantity: 12, AvgPrice: 100, CurrentPrice: 105, TotalCost: 1200},
		{StockCode: "035720", StockName: "Kakao", Quantity: 20, AvgPrice: 50, CurrentPrice: 55, TotalCost: 1000},
	}
	result, err := st.SyncPositions(ctx, snapshot)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Removed)

	types := map[realtime.EventType]int{}
	for i := 0; i < 3; i++ {
		types[waitEvent(t, events).Type]++
	}
	assert.Equal(t, 1, types[realtime.EventInsert])
	assert.Equal(t, 1, types[realtime.EventUpdate])
	assert.Equal(t, 1, types[realtime.EventDelete])

	positions, total, err := st.ListPositions(ctx, "", false, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, pos := range positions {
		assert.NotEqual(t, "000660", pos.StockCode)
	}
}

func TestListPositionsRejectsUnknownOrder(t *testing.T) {
	st, _ := setupStoreTest(t)
	ctx := context.Background()

	seed := []models.Position{
		{StockCode: "A", StockName: "A", Quantity: 1, CurrentPrice: 10, MarketValue: 10},
		{StockCode: "B", StockName: "B", Quantity: 1, CurrentPrice: 20, MarketValue: 20},
	}
	for i := range seed {
		assert.NoError(t, st.DB().Create(&seed[i]).Error)
	}

	// An order column outside the allowlist falls back to market_value desc.
	positions, _, err := st.ListPositions(ctx, "1; DROP TABLE portfolio", false, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, "B", positions[0].StockCode)
}
