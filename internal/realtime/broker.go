package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Broker is the process-wide change stream. Store writes publish events here;
// subscriptions fan them out to in-process consumers and the websocket hub.
type Broker struct {
	logger *zap.Logger

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewBroker creates a new broker.
func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		logger: logger,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscribe opens a subscription to one table's change stream (or every
// table with TableAll). The caller owns the subscription and must Close it.
func (b *Broker) Subscribe(table string, opts ...SubscribeOption) *Subscription {
	s := &Subscription{
		broker:    b,
		logger:    b.logger,
		table:     table,
		queueSize: defaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan Event, s.queueSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		// A subscription against a closed broker delivers nothing.
		s.closeOnce.Do(func() { close(s.done) })
		return s
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	s.stopped.Add(1)
	go s.dispatch()
	return s
}

// Publish fans one event out to every matching subscription. Delivery is
// asynchronous; Publish never blocks on a slow consumer.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		if s.wants(ev) {
			s.enqueue(ev)
		}
	}
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Close shuts down the broker and every remaining subscription.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	remaining := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		remaining = append(remaining, s)
	}
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for _, s := range remaining {
		s.Close()
	}
}
