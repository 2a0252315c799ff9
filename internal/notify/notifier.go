// Package notify implements the notification trigger paths: row changes on
// trades and portfolio produce notification rows, which are then relayed to
// the outbound webhook and, for critical severity, by email.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"
	"lets-trade-dashboard-go/internal/store"

	"go.uber.org/zap"
)

// Notifier owns the trigger logic. Start subscribes it to the trade and
// portfolio change streams; Stop tears the subscriptions down.
type Notifier struct {
	store   *store.Store
	relay   *Relay
	emailer *Emailer
	logger  *zap.Logger

	warnThreshold     float64
	criticalThreshold float64

	subs []*realtime.Subscription
}

// NewNotifier creates a notifier.
func NewNotifier(st *store.Store, cfg *config.Alerts, logger *zap.Logger) *Notifier {
	return &Notifier{
		store:             st,
		relay:             NewRelay(cfg, logger),
		emailer:           NewEmailer(cfg, logger),
		logger:            logger,
		warnThreshold:     cfg.WarnThreshold,
		criticalThreshold: cfg.CriticalThreshold,
	}
}

// Start attaches the notifier to the change streams.
func (n *Notifier) Start(broker *realtime.Broker) {
	tradeSub := broker.Subscribe(models.Trade{}.TableName(),
		realtime.WithEvents(realtime.EventInsert, realtime.EventUpdate)).
		OnInsert(func(ev realtime.Event) { n.handleTradeInsert(context.Background(), ev) }).
		OnUpdate(func(ev realtime.Event) { n.handleTradeUpdate(context.Background(), ev) })

	portfolioSub := broker.Subscribe(models.Position{}.TableName(),
		realtime.WithEvents(realtime.EventUpdate)).
		OnUpdate(func(ev realtime.Event) { n.handlePortfolioUpdate(context.Background(), ev) })

	n.subs = append(n.subs, tradeSub, portfolioSub)
}

// Stop detaches the notifier.
func (n *Notifier) Stop() {
	for _, sub := range n.subs {
		sub.Close()
	}
	n.subs = nil
}

// Emit writes a notification row and forwards it to the configured outbound
// channels. The write error is returned; relay and email failures are not.
func (n *Notifier) Emit(ctx context.Context, notification *models.Notification) error {
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		return err
	}

	n.relay.Send(ctx, notification)
	if n.emailer != nil && notification.Severity == models.SeverityCritical {
		n.emailer.Send(notification)
	}
	return nil
}

func (n *Notifier) handleTradeInsert(ctx context.Context, ev realtime.Event) {
	var trade models.Trade
	if err := ev.Decode(&trade); err != nil {
		n.logger.Error("failed to decode trade insert event", zap.Error(err))
		return
	}

	notification := &models.Notification{
		Type:     models.NotificationTradeCreated,
		Title:    "New order placed",
		Message:  fmt.Sprintf("%s %s %d @ %.0f (%s)", trade.OrderType, trade.StockName, trade.Quantity, trade.Price, trade.OrderNo),
		Severity: models.SeverityInfo,
		Data:     tradeData(&trade),
	}
	if err := n.Emit(ctx, notification); err != nil {
		n.logger.Error("failed to emit trade_created notification", zap.Error(err))
	}

	// A trade can arrive already executed; that still counts as the
	// pending→executed transition.
	if trade.Status == models.OrderStatusExecuted {
		n.emitTradeExecuted(ctx, &trade)
	}
}

func (n *Notifier) handleTradeUpdate(ctx context.Context, ev realtime.Event) {
	var trade, old models.Trade
	if err := ev.Decode(&trade); err != nil {
		n.logger.Error("failed to decode trade update event", zap.Error(err))
		return
	}
	if err := ev.DecodeOld(&old); err != nil {
		n.logger.Error("failed to decode trade update old image", zap.Error(err))
		return
	}

	// Only the transition into executed fires; repeated echoes of an already
	// executed row do not.
	if trade.Status != models.OrderStatusExecuted || old.Status == models.OrderStatusExecuted {
		return
	}
	n.emitTradeExecuted(ctx, &trade)
}

func (n *Notifier) emitTradeExecuted(ctx context.Context, trade *models.Trade) {
	// Dedup guard: at most one trade_executed notification per order, even
	// when the same transition is delivered through more than one path.
	exists, err := n.store.HasNotificationForOrder(ctx, models.NotificationTradeExecuted, trade.OrderNo)
	if err != nil {
		n.logger.Error("trade_executed dedup check failed", zap.Error(err))
		return
	}
	if exists {
		return
	}

	price := trade.Price
	if trade.ExecutedPrice != nil {
		price = *trade.ExecutedPrice
	}
	notification := &models.Notification{
		Type:     models.NotificationTradeExecuted,
		Title:    "Order executed",
		Message:  fmt.Sprintf("%s %s %d @ %.0f filled (%s)", trade.OrderType, trade.StockName, trade.ExecutedQuantity, price, trade.OrderNo),
		Severity: models.SeverityInfo,
		Data:     tradeData(trade),
	}
	if err := n.Emit(ctx, notification); err != nil {
		n.logger.Error("failed to emit trade_executed notification", zap.Error(err))
	}
}

func (n *Notifier) handlePortfolioUpdate(ctx context.Context, ev realtime.Event) {
	var pos, old models.Position
	if err := ev.Decode(&pos); err != nil {
		n.logger.Error("failed to decode portfolio update event", zap.Error(err))
		return
	}
	if err := ev.DecodeOld(&old); err != nil {
		n.logger.Error("failed to decode portfolio update old image", zap.Error(err))
		return
	}

	severity, threshold, crossed := n.crossedThreshold(old.ProfitLossRate, pos.ProfitLossRate)
	if !crossed {
		return
	}

	direction := "profit"
	if pos.ProfitLossRate < 0 {
		direction = "loss"
	}
	notification := &models.Notification{
		Type:     models.NotificationPortfolioAlert,
		Title:    fmt.Sprintf("%s crossed %.0f%% %s", pos.StockName, threshold, direction),
		Message:  fmt.Sprintf("%s (%s) is at %.2f%% (%+.0f)", pos.StockName, pos.StockCode, pos.ProfitLossRate, pos.ProfitLoss),
		Severity: severity,
		Data:     positionData(&pos),
	}
	if err := n.Emit(ctx, notification); err != nil {
		n.logger.Error("failed to emit portfolio_alert notification", zap.Error(err))
	}
}

// crossedThreshold reports whether the profit/loss rate moved across an
// alert threshold, in either direction, between the old and new row images.
// The highest threshold crossed wins.
func (n *Notifier) crossedThreshold(oldRate, newRate float64) (severity string, threshold float64, crossed bool) {
	for _, tier := range []struct {
		threshold float64
		severity  string
	}{
		{n.criticalThreshold, models.SeverityCritical},
		{n.warnThreshold, models.SeverityWarning},
	} {
		if tier.threshold <= 0 {
			continue
		}
		if newRate >= tier.threshold && oldRate < tier.threshold {
			return tier.severity, tier.threshold, true
		}
		if newRate <= -tier.threshold && oldRate > -tier.threshold {
			return tier.severity, tier.threshold, true
		}
	}
	return "", 0, false
}

func tradeData(trade *models.Trade) []byte {
	data, _ := json.Marshal(map[string]any{
		"order_no":   trade.OrderNo,
		"stock_code": trade.StockCode,
		"order_type": trade.OrderType,
		"status":     trade.Status,
		"quantity":   trade.Quantity,
		"price":      trade.Price,
	})
	return data
}

func positionData(pos *models.Position) []byte {
	data, _ := json.Marshal(map[string]any{
		"stock_code":       pos.StockCode,
		"quantity":         pos.Quantity,
		"profit_loss":      pos.ProfitLoss,
		"profit_loss_rate": pos.ProfitLossRate,
	})
	return data
}
