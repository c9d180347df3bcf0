package market

import (
	"fmt"
	"strconv"
	"sync"

	"depot-radar-go/internal/binance"
	"depot-radar-go/internal/yahoo"
	"go.uber.org/zap"
)

// StockProvider serves daily closing prices.
type StockProvider interface {
	GetRecentCloses(symbol string, days int) ([]yahoo.Close, error)
}

// CryptoProvider serves 24h rolling-window ticker statistics.
type CryptoProvider interface {
	GetTicker24h(symbol string) (*binance.Ticker24hResponse, error)
}

// StockFetcher normalizes stock quotes from daily closes.
type StockFetcher struct {
	provider StockProvider
}

// NewStockFetcher creates a new StockFetcher.
func NewStockFetcher(provider StockProvider) *StockFetcher {
	return &StockFetcher{provider: provider}
}

// Fetch builds a quote from the last two daily closes.
// Fewer than two closes yields ErrInsufficientHistory.
func (f *StockFetcher) Fetch(symbol string) (Quote, error) {
	closes, err := f.provider.GetRecentCloses(symbol, 2)
	if err != nil {
		return Quote{}, err
	}
	if len(closes) < 2 {
		return Quote{}, fmt.Errorf("%w for %s: got %d closes", ErrInsufficientHistory, symbol, len(closes))
	}

	prev := closes[len(closes)-2].Price
	curr := closes[len(closes)-1].Price
	if prev == 0 {
		return Quote{}, fmt.Errorf("zero previous close for %s", symbol)
	}

	return Quote{
		Symbol:    symbol,
		Price:     curr,
		ChangePct: (curr - prev) / prev * 100,
		Type:      TypeStock,
		Window:    WindowDailyClose,
	}, nil
}

// CryptoFetcher normalizes crypto quotes from the venue's 24h statistics.
type CryptoFetcher struct {
	provider CryptoProvider
}

// NewCryptoFetcher creates a new CryptoFetcher.
func NewCryptoFetcher(provider CryptoProvider) *CryptoFetcher {
	return &CryptoFetcher{provider: provider}
}

// Fetch builds a quote from the 24h ticker. The change percentage is the
// venue's own rolling-24h figure, taken verbatim.
func (f *CryptoFetcher) Fetch(symbol string) (Quote, error) {
	ticker, err := f.provider.GetTicker24h(symbol)
	if err != nil {
		return Quote{}, err
	}

	price, err := strconv.ParseFloat(ticker.LastPrice, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to parse price %q for %s: %w", ticker.LastPrice, symbol, err)
	}
	change, err := strconv.ParseFloat(ticker.PriceChangePercent, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to parse change %q for %s: %w", ticker.PriceChangePercent, symbol, err)
	}

	return Quote{
		Symbol:    symbol,
		Price:     price,
		ChangePct: change,
		Type:      TypeCrypto,
		Window:    WindowRolling24h,
	}, nil
}

// Aggregator merges stock and crypto quotes into one symbol-keyed mapping.
type Aggregator struct {
	stocks  *StockFetcher
	cryptos *CryptoFetcher
	logger  *zap.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(stocks *StockFetcher, cryptos *CryptoFetcher, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		stocks:  stocks,
		cryptos: cryptos,
		logger:  logger,
	}
}

type fetchResult struct {
	symbol string
	quote  Quote
	err    error
}

// FetchAll fetches every symbol once, concurrently, and merges the results.
// It is fail-open: a symbol whose fetch fails is absent from the quote
// mapping and recorded in the failure mapping instead. No fetch error ever
// aborts the batch.
func (a *Aggregator) FetchAll(stockSymbols, cryptoSymbols []string) (map[string]Quote, map[string]error) {
	total := len(stockSymbols) + len(cryptoSymbols)
	results := make(chan fetchResult, total)

	var wg sync.WaitGroup
	for _, s := range stockSymbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			quote, err := a.stocks.Fetch(symbol)
			results <- fetchResult{symbol: symbol, quote: quote, err: err}
		}(s)
	}
	for _, s := range cryptoSymbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			quote, err := a.cryptos.Fetch(symbol)
			results <- fetchResult{symbol: symbol, quote: quote, err: err}
		}(s)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	quotes := make(map[string]Quote, total)
	failed := make(map[string]error)
	for res := range results {
		if res.err != nil {
			a.logger.Warn("Dropping symbol from fetch cycle",
				zap.String("symbol", res.symbol),
				zap.Error(res.err),
			)
			failed[res.symbol] = res.err
			continue
		}
		quotes[res.symbol] = res.quote
	}

	return quotes, failed
}
