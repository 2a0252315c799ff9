package feeds

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func upsertTrade(t *testing.T, st *store.Store, orderNo, status string) *models.Trade {
	t.Helper()
	trade := &models.Trade{
		OrderNo:   orderNo,
		StockCode: "005930",
		StockName: "Samsung",
		OrderType: models.OrderTypeBuy,
		Status:    status,
		Quantity:  1,
		Price:     100,
	}
	_, err := st.UpsertTrade(context.Background(), trade)
	assert.NoError(t, err)
	return trade
}

func TestTradeFeedCapsRecentTrades(t *testing.T) {
	st, broker := setupFeedTest(t)

	feed := NewTradeFeed(nil, broker, zap.NewNop())
	defer feed.Close()

	for i := 0; i < RecentTradeCap+3; i++ {
		upsertTrade(t, st, fmt.Sprintf("ORD-%d", i), models.OrderStatusPending)
	}

	assert.Eventually(t, func() bool {
		items := feed.Items()
		return len(items) == RecentTradeCap &&
			items[0].OrderNo == fmt.Sprintf("ORD-%d", RecentTradeCap+2)
	}, time.Second, 10*time.Millisecond)
}

func TestTradeFeedSeedIsTruncated(t *testing.T) {
	_, broker := setupFeedTest(t)

	seed := make([]models.Trade, RecentTradeCap+2)
	for i := range seed {
		seed[i] = models.Trade{ID: uint(i + 1), OrderNo: fmt.Sprintf("S-%d", i)}
	}
	feed := NewTradeFeed(seed, broker, zap.NewNop())
	defer feed.Close()

	assert.Len(t, feed.Items(), RecentTradeCap)
}

func TestTradeFeedUpdatesRowInPlace(t *testing.T) {
	st, broker := setupFeedTest(t)

	feed := NewTradeFeed(nil, broker, zap.NewNop())
	defer feed.Close()

	trade := upsertTrade(t, st, "ORD-1", models.OrderStatusPending)
	assert.Eventually(t, func() bool { return len(feed.Items()) == 1 }, time.Second, 10*time.Millisecond)

	upsertTrade(t, st, "ORD-1", models.OrderStatusExecuted)

	assert.Eventually(t, func() bool {
		items := feed.Items()
		return len(items) == 1 &&
			items[0].ID == trade.ID &&
			items[0].Status == models.OrderStatusExecuted
	}, time.Second, 10*time.Millisecond)
}

func TestTradeFeedHighlightExpires(t *testing.T) {
	st, broker := setupFeedTest(t)

	feed := NewTradeFeed(nil, broker, zap.NewNop())
	defer feed.Close()

	trade := upsertTrade(t, st, "ORD-1", models.OrderStatusPending)
	assert.Eventually(t, func() bool { return len(feed.Items()) == 1 }, time.Second, 10*time.Millisecond)

	assert.True(t, feed.Highlighted(trade.ID))
	assert.True(t, feed.Updating())

	// Jump the clock past both windows.
	feed.now = func() time.Time { return time.Now().Add(10 * time.Second) }
	assert.False(t, feed.Highlighted(trade.ID))
	assert.False(t, feed.Updating())
}

func TestTradeFeedSnapshotIsStable(t *testing.T) {
	st, broker := setupFeedTest(t)

	feed := NewTradeFeed(nil, broker, zap.NewNop())
	defer feed.Close()

	upsertTrade(t, st, "ORD-1", models.OrderStatusPending)
	assert.Eventually(t, func() bool { return len(feed.Items()) == 1 }, time.Second, 10*time.Millisecond)

	// A snapshot taken before a change must not be mutated by it.
	snapshot := feed.Items()
	upsertTrade(t, st, "ORD-1", models.OrderStatusExecuted)

	assert.Eventually(t, func() bool {
		return feed.Items()[0].Status == models.OrderStatusExecuted
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, models.OrderStatusPending, snapshot[0].Status)
}
