package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types.
const (
	NotificationTradeCreated   = "trade_created"
	NotificationTradeExecuted  = "trade_executed"
	NotificationPortfolioAlert = "portfolio_alert"
	NotificationSystemAlert    = "system_alert"
)

// Notification severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Notification is a user-facing event row. Created by the trigger paths on
// trade/portfolio changes; the dashboard only flips the read flag. There is
// no deletion path.
type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Type     string `gorm:"size:50;not null" json:"type"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Message  string `gorm:"type:text;not null" json:"message"`
	Severity string `gorm:"size:20;not null;default:'info';check:severity IN ('info','warning','critical')" json:"severity"`

	// Opaque payload attached by the emitter.
	Data datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`

	Read   bool       `gorm:"default:false;index" json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
