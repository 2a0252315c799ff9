package realtime

import (
	"sync"

	"go.uber.org/zap"
)

const defaultQueueSize = 256

// RowFilter decides whether a subscription wants a particular event.
type RowFilter func(Event) bool

// SubscribeOption configures a subscription.
type SubscribeOption func(*Subscription)

// WithEvents restricts delivery to the given event types. Default is all.
func WithEvents(types ...EventType) SubscribeOption {
	return func(s *Subscription) {
		s.events = make(map[EventType]bool, len(types))
		for _, t := range types {
			s.events[t] = true
		}
	}
}

// WithRowFilter restricts delivery to events the filter accepts.
func WithRowFilter(filter RowFilter) SubscribeOption {
	return func(s *Subscription) {
		s.filter = filter
	}
}

// WithQueueSize overrides the subscription's queue capacity.
func WithQueueSize(n int) SubscribeOption {
	return func(s *Subscription) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// Subscription is one logical subscription to a table's change stream.
// Events are delivered through a bounded queue drained by a single dispatch
// goroutine, so callbacks for one subscription never run concurrently.
//
// Close is idempotent and blocks until the dispatcher has stopped; no
// callback fires after Close returns.
type Subscription struct {
	broker *Broker
	logger *zap.Logger

	table     string
	events    map[EventType]bool // nil means all
	filter    RowFilter
	queueSize int

	queue chan Event
	done  chan struct{}

	closeOnce sync.Once
	stopped   sync.WaitGroup

	mu       sync.RWMutex
	onInsert func(Event)
	onUpdate func(Event)
	onDelete func(Event)
	onEvent  func(Event)
}

// OnInsert registers the insert callback.
func (s *Subscription) OnInsert(fn func(Event)) *Subscription {
	s.mu.Lock()
	s.onInsert = fn
	s.mu.Unlock()
	return s
}

// OnUpdate registers the update callback. The event carries both old and new
// row images.
func (s *Subscription) OnUpdate(fn func(Event)) *Subscription {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
	return s
}

// OnDelete registers the delete callback.
func (s *Subscription) OnDelete(fn func(Event)) *Subscription {
	s.mu.Lock()
	s.onDelete = fn
	s.mu.Unlock()
	return s
}

// OnEvent registers a callback invoked for every delivered event, before the
// per-type callback.
func (s *Subscription) OnEvent(fn func(Event)) *Subscription {
	s.mu.Lock()
	s.onEvent = fn
	s.mu.Unlock()
	return s
}

// wants reports whether the event passes the subscription's filters.
func (s *Subscription) wants(ev Event) bool {
	if s.table != TableAll && s.table != ev.Table {
		return false
	}
	if s.events != nil && !s.events[ev.Type] {
		return false
	}
	if s.filter != nil && !s.filter(ev) {
		return false
	}
	return true
}

// enqueue hands an event to the subscription's queue. When the queue is full
// the oldest pending event is dropped; the provider contract makes no
// delivery guarantee across overload, only ordering of what is delivered.
func (s *Subscription) enqueue(ev Event) {
	select {
	case s.queue <- ev:
		return
	default:
	}

	select {
	case old := <-s.queue:
		s.logger.Warn("subscription queue full, dropping oldest event",
			zap.String("table", s.table),
			zap.String("dropped_type", string(old.Type)))
	default:
	}

	select {
	case s.queue <- ev:
	case <-s.done:
	default:
	}
}

// dispatch drains the queue until Close.
func (s *Subscription) dispatch() {
	defer s.stopped.Done()
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.queue:
			// Re-check teardown so no callback fires once Close has begun.
			select {
			case <-s.done:
				return
			default:
			}
			s.deliver(ev)
		}
	}
}

func (s *Subscription) deliver(ev Event) {
	s.mu.RLock()
	onEvent, onInsert, onUpdate, onDelete := s.onEvent, s.onInsert, s.onUpdate, s.onDelete
	s.mu.RUnlock()

	if onEvent != nil {
		onEvent(ev)
	}
	switch ev.Type {
	case EventInsert:
		if onInsert != nil {
			onInsert(ev)
		}
	case EventUpdate:
		if onUpdate != nil {
			onUpdate(ev)
		}
	case EventDelete:
		if onDelete != nil {
			onDelete(ev)
		}
	}
}

// Close tears the subscription down exactly once. It detaches from the
// broker, stops the dispatcher and waits for any in-flight callback to
// return.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.broker.remove(s)
		close(s.done)
		s.stopped.Wait()
	})
}
