package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lets-trade-dashboard-go/internal/ai"
	"lets-trade-dashboard-go/internal/api"
	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/database"
	"lets-trade-dashboard-go/internal/feeds"
	"lets-trade-dashboard-go/internal/logger"
	"lets-trade-dashboard-go/internal/notify"
	"lets-trade-dashboard-go/internal/realtime"
	"lets-trade-dashboard-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		// NewDatabase already ran the migration; nothing left to do.
		log.Info("Migration complete.")
		return
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Change stream plumbing: every store write publishes through the broker.
	broker := realtime.NewBroker(log)
	defer broker.Close()

	st := store.New(db, broker, log)

	hub := realtime.NewHub(broker, log)
	go hub.Run(ctx)

	// Notification triggers attach before the feeds so their rows are already
	// flowing when the dashboard loads.
	notifier := notify.NewNotifier(st, &cfg.Alerts, log)
	notifier.Start(broker)
	defer notifier.Stop()

	notificationFeed, err := feeds.NewNotificationFeed(ctx, st, broker, log)
	if err != nil {
		log.Fatal("Failed to load notifications", zap.Error(err))
	}
	defer notificationFeed.Close()

	recentTrades, _, _, err := st.ListTrades(ctx, store.TradeFilter{Limit: feeds.RecentTradeCap})
	if err != nil {
		log.Fatal("Failed to load recent trades", zap.Error(err))
	}
	tradeFeed := feeds.NewTradeFeed(recentTrades, broker, log)
	defer tradeFeed.Close()

	positions, _, err := st.ListPositions(ctx, "", false, 0, 0)
	if err != nil {
		log.Fatal("Failed to load portfolio", zap.Error(err))
	}
	portfolioFeed := feeds.NewPortfolioFeed(positions, broker, log)
	defer portfolioFeed.Close()

	var chat *ai.Client
	if cfg.AI.APIKey != "" {
		chat = ai.NewClient(&cfg.AI, log)
	} else {
		log.Warn("No model API key configured; strategy chat is disabled")
	}

	server := api.NewApiServer(
		fmt.Sprintf(":%d", cfg.Server.Port),
		&cfg,
		st,
		hub,
		notifier,
		chat,
		notificationFeed,
		tradeFeed,
		portfolioFeed,
		log,
	)
	if err := server.Run(ctx); err != nil {
		log.Fatal("API server failed", zap.Error(err))
	}

	log.Info("Dashboard server has been shut down.")
}
