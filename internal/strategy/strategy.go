package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"depot-radar-go/internal/market"
	"depot-radar-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Strategy implements the overreaction scan and the paper trade executor.
type Strategy struct {
	db        *gorm.DB
	logger    *zap.Logger
	threshold float64
	feeRate   float64
}

// New creates a Strategy with the given overreaction threshold (percent)
// and round-trip fee rate.
func New(db *gorm.DB, logger *zap.Logger, threshold, feeRate float64) *Strategy {
	return &Strategy{
		db:        db,
		logger:    logger,
		threshold: threshold,
		feeRate:   feeRate,
	}
}

// FindOverreactions selects every quote whose absolute change percentage
// meets the threshold and upserts its snapshot. All upserts of one call
// commit as a single transaction; a failed commit propagates and leaves no
// partial state. Candidates come back in sorted symbol order.
//
// Upserts are last-write-wins. Concurrent scans over the same symbol race;
// run one engine per database.
func (s *Strategy) FindOverreactions(quotes map[string]market.Quote) ([]models.Ticker, error) {
	symbols := make([]string, 0, len(quotes))
	for symbol, quote := range quotes {
		if math.Abs(quote.ChangePct) >= s.threshold {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)

	candidates := make([]models.Ticker, 0, len(symbols))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, symbol := range symbols {
			ticker, err := upsertTicker(tx, symbol, quotes[symbol])
			if err != nil {
				return err
			}
			candidates = append(candidates, *ticker)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("overreaction scan commit failed: %w", err)
	}

	s.logger.Info("Overreaction scan complete",
		zap.Int("quotes", len(quotes)),
		zap.Int("candidates", len(candidates)),
		zap.Float64("threshold", s.threshold),
	)
	return candidates, nil
}

// upsertTicker mutates the existing snapshot in place or creates a new one
// without a name. Symbol matching is exact and case-sensitive.
func upsertTicker(tx *gorm.DB, symbol string, quote market.Quote) (*models.Ticker, error) {
	var ticker models.Ticker
	err := tx.Where("symbol = ?", symbol).First(&ticker).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ticker = models.Ticker{
			Symbol:    symbol,
			LastPrice: quote.Price,
			ChangePct: quote.ChangePct,
		}
		if err := tx.Create(&ticker).Error; err != nil {
			return nil, fmt.Errorf("failed to create snapshot for %s: %w", symbol, err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", symbol, err)
	default:
		ticker.LastPrice = quote.Price
		ticker.ChangePct = quote.ChangePct
		if err := tx.Save(&ticker).Error; err != nil {
			return nil, fmt.Errorf("failed to update snapshot for %s: %w", symbol, err)
		}
	}
	return &ticker, nil
}

// OpenPaperTrade records a new simulated position in open status.
// Fees cover the full round trip and are charged once here. There is no
// netting: multiple open trades in the same symbol are allowed.
func (s *Strategy) OpenPaperTrade(symbol string, quantity, price float64, side string) (*models.Trade, error) {
	trade := models.Trade{
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: price,
		EntryTime:  time.Now().UTC(),
		Side:       side,
		Fees:       price * quantity * s.feeRate,
		Status:     models.StatusOpen,
	}

	if err := s.db.Create(&trade).Error; err != nil {
		return nil, fmt.Errorf("failed to record paper trade: %w", err)
	}

	s.logger.Info("Paper trade opened",
		zap.Uint("trade_id", trade.ID),
		zap.String("symbol", symbol),
		zap.String("side", side),
		zap.Float64("quantity", quantity),
		zap.Float64("entry_price", price),
		zap.Float64("fees", trade.Fees),
	)
	return &trade, nil
}

// ClosePaperTrade transitions an open trade to closed at the given exit
// price and realizes its P&L. Fees were already charged at entry.
func (s *Strategy) ClosePaperTrade(id uint, exitPrice float64) (*models.Trade, error) {
	var trade models.Trade
	if err := s.db.First(&trade, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load trade %d: %w", id, err)
	}
	if trade.Status != models.StatusOpen {
		return nil, fmt.Errorf("trade %d is not open", id)
	}

	var pnl float64
	if trade.Side == models.SideSell {
		pnl = (trade.EntryPrice - exitPrice) * trade.Quantity
	} else {
		pnl = (exitPrice - trade.EntryPrice) * trade.Quantity
	}
	pnl -= trade.Fees

	now := time.Now().UTC()
	trade.Status = models.StatusClosed
	trade.ExitPrice = exitPrice
	trade.ExitTime = &now
	trade.RealizedPnL = pnl

	if err := s.db.Save(&trade).Error; err != nil {
		return nil, fmt.Errorf("failed to close trade %d: %w", id, err)
	}

	s.logger.Info("Paper trade closed",
		zap.Uint("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("realized_pnl", pnl),
	)
	return &trade, nil
}

// OpenTrades lists all open paper trades, most recent entry first.
func (s *Strategy) OpenTrades() ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Where("status = ?", models.StatusOpen).Order("entry_time desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list open trades: %w", err)
	}
	return trades, nil
}

// AllTrades lists every paper trade, most recent entry first.
func (s *Strategy) AllTrades() ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Order("entry_time desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}
