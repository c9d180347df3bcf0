package dashboard

import (
	"context"
	"fmt"

	"depot-radar-go/internal/config"
	"depot-radar-go/internal/market"
	"depot-radar-go/internal/models"
	"depot-radar-go/internal/news"
	"depot-radar-go/internal/scanner"
	"depot-radar-go/internal/strategy"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScanResult is one overreaction candidate annotated with its news flag.
type ScanResult struct {
	Ticker       models.Ticker `json:"ticker"`
	TrafficLight news.Light    `json:"traffic_light"`
}

// Engine drives the scheduled scan cycle: aggregate quotes, find
// overreactions, annotate candidates with the news traffic light.
type Engine struct {
	logger     *zap.Logger
	cfg        *config.Config
	aggregator *market.Aggregator
	strategy   *strategy.Strategy
	traffic    *news.TrafficLight
	scanner    *scanner.Scanner
	search     *market.Search
	cron       *cron.Cron
}

// NewEngine creates a new dashboard engine.
func NewEngine(logger *zap.Logger, cfg *config.Config, aggregator *market.Aggregator, strat *strategy.Strategy, traffic *news.TrafficLight, fund *scanner.Scanner, search *market.Search) *Engine {
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		aggregator: aggregator,
		strategy:   strat,
		traffic:    traffic,
		scanner:    fund,
		search:     search,
		cron:       cron.New(cron.WithSeconds()),
	}
}

// Run schedules the scan cycle and blocks until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	schedule := e.cfg.Scan.Schedule
	if _, err := e.cron.AddFunc(schedule, func() {
		if _, err := e.ScanOnce(ctx); err != nil {
			e.logger.Error("Scan cycle failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to register scan schedule %q: %w", schedule, err)
	}

	if e.cfg.Scan.RunOnStart {
		if _, err := e.ScanOnce(ctx); err != nil {
			e.logger.Error("Initial scan failed", zap.Error(err))
		}
	}

	e.cron.Start()
	e.logger.Info("Scan scheduler started", zap.String("schedule", schedule))

	<-ctx.Done()
	e.logger.Info("Stopping scan scheduler...")
	<-e.cron.Stop().Done()
	return nil
}

// ScanOnce runs a single scan cycle and returns the annotated candidates.
// Fetch failures of individual symbols only shrink the batch; a
// persistence failure aborts the cycle.
func (e *Engine) ScanOnce(ctx context.Context) ([]ScanResult, error) {
	e.logger.Info("Starting scan cycle",
		zap.Int("stock_symbols", len(e.cfg.Scan.StockSymbols)),
		zap.Int("crypto_symbols", len(e.cfg.Scan.CryptoSymbols)),
	)

	quotes, failed := e.aggregator.FetchAll(e.cfg.Scan.StockSymbols, e.cfg.Scan.CryptoSymbols)
	if len(failed) > 0 {
		e.logger.Warn("Partial fetch cycle", zap.Int("fetched", len(quotes)), zap.Int("dropped", len(failed)))
	}

	candidates, err := e.strategy.FindOverreactions(quotes)
	if err != nil {
		return nil, err
	}

	results := make([]ScanResult, 0, len(candidates))
	for _, cand := range candidates {
		light := e.traffic.Classify(cand.Symbol)
		results = append(results, ScanResult{Ticker: cand, TrafficLight: light})
		e.logger.Info("Overreaction candidate",
			zap.String("symbol", cand.Symbol),
			zap.Float64("last_price", cand.LastPrice),
			zap.Float64("change_pct", cand.ChangePct),
			zap.String("traffic_light", string(light)),
		)
	}

	e.logger.Info("Scan cycle complete", zap.Int("candidates", len(results)))
	return results, nil
}

// FilterFundamentals runs the fundamental scan over the configured
// universe. Independent of the overreaction cycle.
func (e *Engine) FilterFundamentals(criteria scanner.Criteria) []scanner.Match {
	return e.scanner.Filter(criteria)
}

// SearchInstruments finds instruments matching the query across venues.
func (e *Engine) SearchInstruments(query string) []market.SearchResult {
	return e.search.Find(query)
}

// OpenPaperTrade opens a simulated position at the symbol's current quoted
// price. The symbol is resolved as a stock first, then as crypto.
func (e *Engine) OpenPaperTrade(symbol string, quantity float64, side string) (*models.Trade, error) {
	quotes, _ := e.aggregator.FetchAll([]string{symbol}, nil)
	if _, ok := quotes[symbol]; !ok {
		quotes, _ = e.aggregator.FetchAll(nil, []string{symbol})
	}
	quote, ok := quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote available for %s", symbol)
	}
	return e.strategy.OpenPaperTrade(symbol, quantity, quote.Price, side)
}
