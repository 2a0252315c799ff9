// Package store is the repository layer over the dashboard database. Write
// methods publish row change events to the realtime broker after the write
// succeeds, which is what drives the notification triggers and the websocket
// stream.
package store

import (
	"lets-trade-dashboard-go/internal/realtime"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store wraps the shared database handle and the realtime broker.
type Store struct {
	db     *gorm.DB
	broker *realtime.Broker
	logger *zap.Logger
}

// New creates a store. All callers share the one injected *gorm.DB.
func New(db *gorm.DB, broker *realtime.Broker, logger *zap.Logger) *Store {
	return &Store{db: db, broker: broker, logger: logger}
}

// DB exposes the underlying handle for callers that need raw queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// publish emits a change event; a marshal failure is logged, never returned,
// so a completed write is not reported as failed because of the stream.
func (s *Store) publish(typ realtime.EventType, table string, record, oldRecord any) {
	ev, err := realtime.NewEvent(typ, table, record, oldRecord)
	if err != nil {
		s.logger.Error("failed to build realtime event",
			zap.String("table", table), zap.Error(err))
		return
	}
	s.broker.Publish(ev)
}
