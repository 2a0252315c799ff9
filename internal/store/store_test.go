package store

import (
	"testing"
	"time"

	"lets-trade-dashboard-go/internal/database"
	"lets-trade-dashboard-go/internal/realtime"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupStoreTest creates a store backed by a fresh in-memory database so each
// test is fully isolated.
func setupStoreTest(t *testing.T) (*Store, *realtime.Broker) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))

	broker := realtime.NewBroker(zap.NewNop())
	t.Cleanup(broker.Close)

	return New(db, broker, zap.NewNop()), broker
}

// collectEvents records every event published for one table.
func collectEvents(t *testing.T, broker *realtime.Broker, table string) chan realtime.Event {
	events := make(chan realtime.Event, 16)
	sub := broker.Subscribe(table).OnEvent(func(ev realtime.Event) { events <- ev })
	t.Cleanup(sub.Close)
	return events
}

func waitEvent(t *testing.T, events chan realtime.Event) realtime.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
		return realtime.Event{}
	}
}
