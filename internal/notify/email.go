package notify

import (
	"fmt"

	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Emailer sends critical-severity notifications by email. Like the webhook
// relay, delivery failures are logged and swallowed.
type Emailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
	logger *zap.Logger
}

// NewEmailer creates an emailer, or nil when email alerts are disabled.
func NewEmailer(cfg *config.Alerts, logger *zap.Logger) *Emailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" || cfg.EmailTo == "" {
		return nil
	}
	return &Emailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.EmailFrom,
		to:     cfg.EmailTo,
		logger: logger,
	}
}

// Send emails one notification.
func (e *Emailer) Send(n *models.Notification) {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s", n.Severity, n.Title))
	m.SetBody("text/plain", n.Message)

	if err := e.dialer.DialAndSend(m); err != nil {
		e.logger.Warn("email alert failed", zap.String("type", n.Type), zap.Error(err))
	}
}
