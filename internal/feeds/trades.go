package feeds

import (
	"time"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"go.uber.org/zap"
)

const (
	// RecentTradeCap bounds the recent-trades panel.
	RecentTradeCap = 5

	highlightTTL  = 3 * time.Second
	updatingFlash = 1 * time.Second
)

// TradeFeed maintains the bounded recent-trades panel with its transient
// change highlights.
type TradeFeed struct {
	logger *zap.Logger
	sub    *realtime.Subscription

	state feedState[tradeState]

	now func() time.Time
}

type tradeState struct {
	items      []models.Trade
	highlights map[uint]time.Time
	lastChange time.Time
}

// NewTradeFeed seeds the panel with the given trades (newest first) and
// subscribes to trade changes. Callers must Close the feed.
func NewTradeFeed(seed []models.Trade, broker *realtime.Broker, logger *zap.Logger) *TradeFeed {
	if len(seed) > RecentTradeCap {
		seed = seed[:RecentTradeCap]
	}
	items := make([]models.Trade, len(seed))
	copy(items, seed)

	f := &TradeFeed{logger: logger, now: time.Now}
	f.state.set(tradeState{items: items, highlights: map[uint]time.Time{}})

	f.sub = broker.Subscribe(models.Trade{}.TableName(),
		realtime.WithEvents(realtime.EventInsert, realtime.EventUpdate)).
		OnInsert(f.onInsert).
		OnUpdate(f.onUpdate)
	return f
}

// Close tears down the subscription.
func (f *TradeFeed) Close() {
	f.sub.Close()
}

// Items returns the recent trades, newest first, never more than the cap.
func (f *TradeFeed) Items() []models.Trade {
	s := f.state.get()
	out := make([]models.Trade, len(s.items))
	copy(out, s.items)
	return out
}

// Highlighted reports whether a trade changed within the highlight window.
func (f *TradeFeed) Highlighted(id uint) bool {
	s := f.state.get()
	at, ok := s.highlights[id]
	return ok && f.now().Sub(at) < highlightTTL
}

// Updating reports the brief flash indicator shown right after any change.
func (f *TradeFeed) Updating() bool {
	s := f.state.get()
	return !s.lastChange.IsZero() && f.now().Sub(s.lastChange) < updatingFlash
}

func (f *TradeFeed) onInsert(ev realtime.Event) {
	var trade models.Trade
	if err := ev.Decode(&trade); err != nil {
		f.logger.Error("failed to decode trade insert", zap.Error(err))
		return
	}
	now := f.now()
	f.state.update(func(s *tradeState) {
		items := append([]models.Trade{trade}, s.items...)
		if len(items) > RecentTradeCap {
			items = items[:RecentTradeCap]
		}
		s.items = items
		s.highlights = pruneHighlights(s.highlights, now)
		s.highlights[trade.ID] = now
		s.lastChange = now
	})
}

func (f *TradeFeed) onUpdate(ev realtime.Event) {
	var trade models.Trade
	if err := ev.Decode(&trade); err != nil {
		f.logger.Error("failed to decode trade update", zap.Error(err))
		return
	}
	now := f.now()
	f.state.update(func(s *tradeState) {
		items := make([]models.Trade, len(s.items))
		copy(items, s.items)
		for i := range items {
			if items[i].ID == trade.ID {
				items[i] = trade
				break
			}
		}
		s.items = items
		s.highlights = pruneHighlights(s.highlights, now)
		s.highlights[trade.ID] = now
		s.lastChange = now
	})
}

// pruneHighlights copies the map forward, dropping expired entries so the
// set cannot grow without bound.
func pruneHighlights(highlights map[uint]time.Time, now time.Time) map[uint]time.Time {
	out := make(map[uint]time.Time, len(highlights))
	for id, at := range highlights {
		if now.Sub(at) < highlightTTL {
			out[id] = at
		}
	}
	return out
}
