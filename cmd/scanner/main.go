package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"depot-radar-go/internal/binance"
	"depot-radar-go/internal/config"
	"depot-radar-go/internal/dashboard"
	"depot-radar-go/internal/database"
	"depot-radar-go/internal/logger"
	"depot-radar-go/internal/market"
	"depot-radar-go/internal/news"
	"depot-radar-go/internal/scanner"
	"depot-radar-go/internal/strategy"
	"depot-radar-go/internal/yahoo"
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
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize provider clients
	yahooClient := yahoo.NewClient(&cfg.Yahoo, log.Named("yahoo"))
	binanceClient := binance.NewRestClient(&cfg.Binance, log.Named("binance"))
	if _, err := binanceClient.GetServerTime(); err != nil {
		log.Fatal("Failed to connect to Binance API", zap.Error(err))
	}
	log.Info("Successfully connected to Binance API.")

	// Wire the scan pipeline
	aggregator := market.NewAggregator(
		market.NewStockFetcher(yahooClient),
		market.NewCryptoFetcher(binanceClient),
		log.Named("aggregator"),
	)
	strat := strategy.New(db, log.Named("strategy"), cfg.Scan.Threshold, cfg.Trading.FeeRate)
	traffic := news.NewTrafficLight(yahooClient, cfg.Scan.NewsLimit, log.Named("news"))
	fundScanner := scanner.NewScanner(yahooClient, cfg.Scan.Universe, log.Named("scanner"))
	search := market.NewSearch(yahooClient, binanceClient, log.Named("search"))

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the dashboard engine
	engine := dashboard.NewEngine(log.Named("engine"), &cfg, aggregator, strat, traffic, fundScanner, search)
	if err := engine.Run(ctx); err != nil {
		log.Fatal("Engine failed", zap.Error(err))
	}

	log.Info("Scanner has been shut down.")
}
