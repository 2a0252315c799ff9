// Package feeds holds the live dashboard views: small stateful reconcilers
// fed by realtime subscriptions. Each feed owns its state exclusively and is
// updated by a single dispatch goroutine, so consumers only ever observe a
// consistent snapshot.
package feeds

import (
	"context"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"
	"lets-trade-dashboard-go/internal/store"

	"go.uber.org/zap"
)

// NotificationFeed maintains the newest-first notification window and the
// unread badge count.
type NotificationFeed struct {
	store  *store.Store
	logger *zap.Logger
	sub    *realtime.Subscription

	state feedState[notificationState]
}

type notificationState struct {
	items  []models.Notification
	unread int
}

// NewNotificationFeed loads the initial window and subscribes to insert and
// update events on the notifications table. Callers must Close the feed.
func NewNotificationFeed(ctx context.Context, st *store.Store, broker *realtime.Broker, logger *zap.Logger) (*NotificationFeed, error) {
	items, err := st.RecentNotifications(ctx, store.NotificationWindow, false)
	if err != nil {
		return nil, err
	}

	f := &NotificationFeed{store: st, logger: logger}
	f.state.set(notificationState{items: items, unread: countUnread(items)})

	f.sub = broker.Subscribe(models.Notification{}.TableName(),
		realtime.WithEvents(realtime.EventInsert, realtime.EventUpdate)).
		OnInsert(f.onInsert).
		OnUpdate(f.onUpdate)
	return f, nil
}

// Close tears down the subscription; no state updates happen afterwards.
func (f *NotificationFeed) Close() {
	f.sub.Close()
}

// Items returns a copy of the current window, newest first.
func (f *NotificationFeed) Items() []models.Notification {
	s := f.state.get()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the current unread badge count.
func (f *NotificationFeed) UnreadCount() int {
	return f.state.get().unread
}

// MarkAsRead writes the read flag through the store and applies the change
// to the local window without waiting for the echoed realtime event. The
// echo is harmless: the unread count is recomputed from the window, so a
// duplicate delivery cannot decrement it twice.
func (f *NotificationFeed) MarkAsRead(ctx context.Context, id uint) error {
	updated, err := f.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return err
	}
	f.state.update(func(s *notificationState) {
		s.items = replaceByID(s.items, updated)
		s.unread = countUnread(s.items)
	})
	return nil
}

// MarkAllAsRead flips every unread notification and zeroes the badge.
func (f *NotificationFeed) MarkAllAsRead(ctx context.Context) error {
	if _, err := f.store.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	f.state.update(func(s *notificationState) {
		items := make([]models.Notification, len(s.items))
		copy(items, s.items)
		for i := range items {
			items[i].Read = true
		}
		s.items = items
		s.unread = 0
	})
	return nil
}

func (f *NotificationFeed) onInsert(ev realtime.Event) {
	var n models.Notification
	if err := ev.Decode(&n); err != nil {
		f.logger.Error("failed to decode notification insert", zap.Error(err))
		return
	}
	f.state.update(func(s *notificationState) {
		s.items = append([]models.Notification{n}, s.items...)
		if len(s.items) > store.NotificationWindow {
			s.items = s.items[:store.NotificationWindow]
		}
		s.unread = countUnread(s.items)
	})
}

func (f *NotificationFeed) onUpdate(ev realtime.Event) {
	var n models.Notification
	if err := ev.Decode(&n); err != nil {
		f.logger.Error("failed to decode notification update", zap.Error(err))
		return
	}
	f.state.update(func(s *notificationState) {
		s.items = replaceByID(s.items, &n)
		s.unread = countUnread(s.items)
	})
}

func countUnread(items []models.Notification) int {
	count := 0
	for i := range items {
		if !items[i].Read {
			count++
		}
	}
	return count
}

// replaceByID returns a fresh slice with the matching row swapped out.
// Published slices are never mutated in place, so readers can hold a
// snapshot without a lock.
func replaceByID(items []models.Notification, n *models.Notification) []models.Notification {
	out := make([]models.Notification, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == n.ID {
			out[i] = *n
			break
		}
	}
	return out
}
