package feeds

import (
	"testing"

	"lets-trade-dashboard-go/internal/database"
	"lets-trade-dashboard-go/internal/realtime"
	"lets-trade-dashboard-go/internal/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupFeedTest creates a store on a fresh in-memory database with a live
// broker, so feed tests exercise the real write → publish → reconcile path.
func setupFeedTest(t *testing.T) (*store.Store, *realtime.Broker) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))

	broker := realtime.NewBroker(zap.NewNop())
	t.Cleanup(broker.Close)

	return store.New(db, broker, zap.NewNop()), broker
}
