package feeds

import (
	"sort"
	"time"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"go.uber.org/zap"
)

// PortfolioFeed mirrors the portfolio table, keyed by stock code, with the
// same transient change highlights as the trades panel.
type PortfolioFeed struct {
	logger *zap.Logger
	sub    *realtime.Subscription

	state feedState[portfolioState]

	now func() time.Time
}

type portfolioState struct {
	positions  map[string]models.Position
	highlights map[string]time.Time
}

// NewPortfolioFeed seeds the view and subscribes to portfolio changes.
// Callers must Close the feed.
func NewPortfolioFeed(seed []models.Position, broker *realtime.Broker, logger *zap.Logger) *PortfolioFeed {
	positions := make(map[string]models.Position, len(seed))
	for _, pos := range seed {
		positions[pos.StockCode] = pos
	}

	f := &PortfolioFeed{logger: logger, now: time.Now}
	f.state.set(portfolioState{positions: positions, highlights: map[string]time.Time{}})

	f.sub = broker.Subscribe(models.Position{}.TableName()).
		OnInsert(f.onChange).
		OnUpdate(f.onChange).
		OnDelete(f.onDelete)
	return f
}

// Close tears down the subscription.
func (f *PortfolioFeed) Close() {
	f.sub.Close()
}

// Positions returns the current holdings ordered by market value, largest
// first.
func (f *PortfolioFeed) Positions() []models.Position {
	s := f.state.get()
	out := make([]models.Position, 0, len(s.positions))
	for _, pos := range s.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MarketValue != out[j].MarketValue {
			return out[i].MarketValue > out[j].MarketValue
		}
		return out[i].StockCode < out[j].StockCode
	})
	return out
}

// Highlighted reports whether a position changed within the highlight
// window.
func (f *PortfolioFeed) Highlighted(stockCode string) bool {
	s := f.state.get()
	at, ok := s.highlights[stockCode]
	return ok && f.now().Sub(at) < highlightTTL
}

func (f *PortfolioFeed) onChange(ev realtime.Event) {
	var pos models.Position
	if err := ev.Decode(&pos); err != nil {
		f.logger.Error("failed to decode portfolio event", zap.Error(err))
		return
	}
	now := f.now()
	f.state.update(func(s *portfolioState) {
		positions := clonePositions(s.positions)
		positions[pos.StockCode] = pos
		s.positions = positions

		highlights := make(map[string]time.Time, len(s.highlights)+1)
		for code, at := range s.highlights {
			if now.Sub(at) < highlightTTL {
				highlights[code] = at
			}
		}
		highlights[pos.StockCode] = now
		s.highlights = highlights
	})
}

func (f *PortfolioFeed) onDelete(ev realtime.Event) {
	var pos models.Position
	if err := ev.DecodeOld(&pos); err != nil {
		f.logger.Error("failed to decode portfolio delete", zap.Error(err))
		return
	}
	f.state.update(func(s *portfolioState) {
		positions := clonePositions(s.positions)
		delete(positions, pos.StockCode)
		s.positions = positions
	})
}

func clonePositions(in map[string]models.Position) map[string]models.Position {
	out := make(map[string]models.Position, len(in))
	for code, pos := range in {
		out[code] = pos
	}
	return out
}
