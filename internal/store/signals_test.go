package store

import (
	"context"
	"testing"

	"lets-trade-dashboard-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func seedSignals(t *testing.T, st *Store) {
	t.Helper()
	signals := []models.Signal{
		{StrategyID: 1, StockCode: "005930", StockName: "Samsung", SignalType: models.SignalTypeBuy, Status: models.SignalStatusPending, Price: 100, Strength: 80},
		{StrategyID: 1, StockCode: "005930", StockName: "Samsung", SignalType: models.SignalTypeSell, Status: models.SignalStatusExecuted, Price: 110, Strength: 60},
		{StrategyID: 2, StockCode: "000660", StockName: "Hynix", SignalType: models.SignalTypeHold, Status: models.SignalStatusIgnored, Price: 200, Strength: 30},
	}
	for i := range signals {
		assert.NoError(t, st.DB().Create(&signals[i]).Error)
	}
}

func TestListSignalsFilters(t *testing.T) {
	st, _ := setupStoreTest(t)
	ctx := context.Background()
	seedSignals(t, st)

	t.Run("All", func(t *testing.T) {
		signals, total, err := st.ListSignals(ctx, SignalFilter{})
		assert.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, signals, 3)
	})

	t.Run("ByStrategy", func(t *testing.T) {
		sid := uint(1)
		_, total, err := st.ListSignals(ctx, SignalFilter{StrategyID: &sid})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("ByTypeAndStatus", func(t *testing.T) {
		signals, total, err := st.ListSignals(ctx, SignalFilter{
			SignalType: models.SignalTypeBuy,
			Status:     models.SignalStatusPending,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, float64(100), signals[0].Price)
	})
}

func TestGetSignalStats(t *testing.T) {
	st, _ := setupStoreTest(t)
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		stats, err := st.GetSignalStats(ctx)
		assert.NoError(t, err)
		assert.Equal(t, SignalStats{}, stats)
	})

	t.Run("Populated", func(t *testing.T) {
		seedSignals(t, st)

		stats, err := st.GetSignalStats(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(1), stats.Pending)
		assert.Equal(t, int64(1), stats.Executed)
		assert.Equal(t, int64(1), stats.Ignored)
		assert.Equal(t, int64(0), stats.Expired)
		assert.Equal(t, int64(1), stats.Buy)
		assert.Equal(t, int64(1), stats.Sell)
		assert.Equal(t, int64(1), stats.Hold)
	})
}
