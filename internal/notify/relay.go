package notify

import (
	"context"

	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Relay forwards notifications to the configured outbound webhook URL.
// Relay failures are logged and swallowed; they never affect the write that
// produced the notification.
type Relay struct {
	client  *resty.Client
	limiter *rate.Limiter
	url     string
	logger  *zap.Logger
}

// NewRelay creates a relay. An empty webhook URL disables it.
func NewRelay(cfg *config.Alerts, logger *zap.Logger) *Relay {
	return &Relay{
		client:  resty.New(),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		url:     cfg.WebhookURL,
		logger:  logger,
	}
}

// relayPayload is the body posted to the outbound webhook.
type relayPayload struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Data     any    `json:"data,omitempty"`
}

// Send posts one notification to the outbound webhook.
func (r *Relay) Send(ctx context.Context, n *models.Notification) {
	if r.url == "" {
		return
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("webhook relay rate limiter interrupted", zap.Error(err))
		return
	}

	payload := relayPayload{
		Type:     n.Type,
		Title:    n.Title,
		Message:  n.Message,
		Severity: n.Severity,
		Data:     n.Data,
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(r.url)
	if err != nil {
		r.logger.Warn("webhook relay failed", zap.String("type", n.Type), zap.Error(err))
		return
	}
	if resp.IsError() {
		r.logger.Warn("webhook relay rejected",
			zap.String("type", n.Type),
			zap.Int("status", resp.StatusCode()))
	}
}
