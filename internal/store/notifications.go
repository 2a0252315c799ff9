package store

import (
	"context"
	"fmt"
	"time"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"gorm.io/datatypes"
)

// Notifications keep the most recent rows only; the dashboard retains a
// 50-row window.
const NotificationWindow = 50

// RecentNotifications returns the newest notifications first.
func (s *Store) RecentNotifications(ctx context.Context, limit int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > NotificationWindow {
		limit = NotificationWindow
	}

	q := s.db.WithContext(ctx).Model(&models.Notification{})
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("created_at desc, id desc").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadNotificationCount counts rows with read=false.
func (s *Store) UnreadNotificationCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("read = ?", false).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// CreateNotification inserts a notification row and publishes the change
// event the dashboard feed listens for.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Severity == "" {
		n.Severity = models.SeverityInfo
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.publish(realtime.EventInsert, models.Notification{}.TableName(), n, nil)
	return nil
}

// HasNotificationForOrder reports whether a notification of the given type
// already references the order. Used as the dedup guard so a repeated status
// echo cannot produce a second trade_executed row.
func (s *Store) HasNotificationForOrder(ctx context.Context, notifType, orderNo string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("type = ?", notifType).
		Where(datatypes.JSONQuery("data").Equals(orderNo, "order_no")).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for existing notification: %w", err)
	}
	return count > 0, nil
}

// MarkNotificationRead flips the read flag for one notification. Marking an
// already-read notification is a no-op; no event is published for it.
func (s *Store) MarkNotificationRead(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	if n.Read {
		return &n, nil
	}

	old := n
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	if err := s.db.WithContext(ctx).Save(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	s.publish(realtime.EventUpdate, models.Notification{}.TableName(), &n, &old)
	return &n, nil
}

// MarkAllNotificationsRead flips the read flag for every unread notification
// and returns how many were affected.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var unread []models.Notification
	if err := s.db.WithContext(ctx).Where("read = ?", false).Find(&unread).Error; err != nil {
		return 0, fmt.Errorf("failed to load unread notifications: %w", err)
	}

	now := time.Now()
	for i := range unread {
		old := unread[i]
		unread[i].Read = true
		unread[i].ReadAt = &now
		if err := s.db.WithContext(ctx).Save(&unread[i]).Error; err != nil {
			return int64(i), fmt.Errorf("failed to mark notification %d read: %w", old.ID, err)
		}
		s.publish(realtime.EventUpdate, models.Notification{}.TableName(), &unread[i], &old)
	}
	return int64(len(unread)), nil
}
