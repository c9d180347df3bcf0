package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"depot-radar-go/internal/binance"
	"depot-radar-go/internal/config"
	"depot-radar-go/internal/market"
	"depot-radar-go/internal/models"
	"depot-radar-go/internal/news"
	"depot-radar-go/internal/strategy"
	"depot-radar-go/internal/yahoo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type MockStockProvider struct {
	mock.Mock
}

func (m *MockStockProvider) GetRecentCloses(symbol string, days int) ([]yahoo.Close, error) {
	args := m.Called(symbol, days)
	return args.Get(0).([]yahoo.Close), args.Error(1)
}

type MockCryptoProvider struct {
	mock.Mock
}

func (m *MockCryptoProvider) GetTicker24h(symbol string) (*binance.Ticker24hResponse, error) {
	args := m.Called(symbol)
	return args.Get(0).(*binance.Ticker24hResponse), args.Error(1)
}

type MockNewsProvider struct {
	mock.Mock
}

func (m *MockNewsProvider) GetRecentNews(symbol string, limit int) ([]yahoo.NewsItem, error) {
	args := m.Called(symbol, limit)
	return args.Get(0).([]yahoo.NewsItem), args.Error(1)
}

func setupEngine(t *testing.T, stocks *MockStockProvider, cryptos *MockCryptoProvider, newsProv *MockNewsProvider, cfg *config.Config) *Engine {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Ticker{}, &models.Trade{}))

	log := zap.NewNop()
	aggregator := market.NewAggregator(
		market.NewStockFetcher(stocks),
		market.NewCryptoFetcher(cryptos),
		log,
	)
	strat := strategy.New(db, log, cfg.Scan.Threshold, cfg.Trading.FeeRate)
	traffic := news.NewTrafficLight(newsProv, cfg.Scan.NewsLimit, log)

	return NewEngine(log, cfg, aggregator, strat, traffic, nil, nil)
}

func scanConfig(stockSymbols, cryptoSymbols []string) *config.Config {
	return &config.Config{
		Scan: config.Scan{
			StockSymbols:  stockSymbols,
			CryptoSymbols: cryptoSymbols,
			Threshold:     5.0,
			NewsLimit:     3,
		},
		Trading: config.Trading{FeeRate: 0.002},
	}
}

func closesOf(prices ...float64) []yahoo.Close {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]yahoo.Close, 0, len(prices))
	for i, p := range prices {
		closes = append(closes, yahoo.Close{Date: day.AddDate(0, 0, i), Price: p})
	}
	return closes
}

func TestScanOnce_AnnotatesCandidates(t *testing.T) {
	stocks := new(MockStockProvider)
	stocks.On("GetRecentCloses", "AAPL", 2).Return(closesOf(100, 106), nil) // +6%, candidate
	stocks.On("GetRecentCloses", "MSFT", 2).Return(closesOf(300, 303), nil) // +1%, not a candidate

	cryptos := new(MockCryptoProvider)
	cryptos.On("GetTicker24h", "BTCUSDT").Return((*binance.Ticker24hResponse)(nil), errors.New("venue down"))

	newsProv := new(MockNewsProvider)
	newsProv.On("GetRecentNews", "AAPL", 3).Return([]yahoo.NewsItem{{Title: "Earnings"}}, nil)

	engine := setupEngine(t, stocks, cryptos, newsProv, scanConfig([]string{"AAPL", "MSFT"}, []string{"BTCUSDT"}))

	results, err := engine.ScanOnce(context.Background())

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Ticker.Symbol)
	assert.Equal(t, 106.0, results[0].Ticker.LastPrice)
	assert.Equal(t, news.LightRed, results[0].TrafficLight)
}

func TestScanOnce_NoCandidates(t *testing.T) {
	stocks := new(MockStockProvider)
	stocks.On("GetRecentCloses", "AAPL", 2).Return(closesOf(100, 101), nil)

	engine := setupEngine(t, stocks, new(MockCryptoProvider), new(MockNewsProvider), scanConfig([]string{"AAPL"}, nil))

	results, err := engine.ScanOnce(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestOpenPaperTrade_AtQuotedPrice(t *testing.T) {
	stocks := new(MockStockProvider)
	stocks.On("GetRecentCloses", "AAPL", 2).Return(closesOf(100, 150), nil)

	engine := setupEngine(t, stocks, new(MockCryptoProvider), new(MockNewsProvider), scanConfig(nil, nil))

	trade, err := engine.OpenPaperTrade("AAPL", 10, models.SideBuy)

	assert.NoError(t, err)
	assert.Equal(t, 150.0, trade.EntryPrice)
	assert.Equal(t, 3.0, trade.Fees)
}

func TestOpenPaperTrade_UnknownSymbol(t *testing.T) {
	stocks := new(MockStockProvider)
	stocks.On("GetRecentCloses", "NOPE", 2).Return([]yahoo.Close(nil), errors.New("not found"))
	cryptos := new(MockCryptoProvider)
	cryptos.On("GetTicker24h", "NOPE").Return((*binance.Ticker24hResponse)(nil), errors.New("invalid symbol"))

	engine := setupEngine(t, stocks, cryptos, new(MockNewsProvider), scanConfig(nil, nil))

	_, err := engine.OpenPaperTrade("NOPE", 1, models.SideBuy)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no quote available")
}
