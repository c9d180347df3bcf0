package market

import (
	"errors"
	"testing"
	"time"

	"depot-radar-go/internal/binance"
	"depot-radar-go/internal/yahoo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockStockProvider is a mock implementation of the StockProvider.
type MockStockProvider struct {
	mock.Mock
}

func (m *MockStockProvider) GetRecentCloses(symbol string, days int) ([]yahoo.Close, error) {
	args := m.Called(symbol, days)
	return args.Get(0).([]yahoo.Close), args.Error(1)
}

// MockCryptoProvider is a mock implementation of the CryptoProvider.
type MockCryptoProvider struct {
	mock.Mock
}

func (m *MockCryptoProvider) GetTicker24h(symbol string) (*binance.Ticker24hResponse, error) {
	args := m.Called(symbol)
	return args.Get(0).(*binance.Ticker24hResponse), args.Error(1)
}

func closesOf(prices ...float64) []yahoo.Close {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]yahoo.Close, 0, len(prices))
	for i, p := range prices {
		closes = append(closes, yahoo.Close{Date: day.AddDate(0, 0, i), Price: p})
	}
	return closes
}

func newAggregator(stocks StockProvider, cryptos CryptoProvider) *Aggregator {
	return NewAggregator(NewStockFetcher(stocks), NewCryptoFetcher(cryptos), zap.NewNop())
}

func TestStockFetcher_ChangeFromCloses(t *testing.T) {
	provider := new(MockStockProvider)
	provider.On("GetRecentCloses", "AAPL", 2).Return(closesOf(100, 106), nil)

	quote, err := NewStockFetcher(provider).Fetch("AAPL")

	assert.NoError(t, err)
	assert.Equal(t, 106.0, quote.Price)
	assert.InDelta(t, 6.0, quote.ChangePct, 1e-9)
	assert.Equal(t, TypeStock, quote.Type)
	assert.Equal(t, WindowDailyClose, quote.Window)
	provider.AssertExpectations(t)
}

func TestStockFetcher_InsufficientHistory(t *testing.T) {
	provider := new(MockStockProvider)
	provider.On("GetRecentCloses", "IPO", 2).Return(closesOf(42), nil)

	_, err := NewStockFetcher(provider).Fetch("IPO")

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestCryptoFetcher_Uses24hChangeVerbatim(t *testing.T) {
	provider := new(MockCryptoProvider)
	provider.On("GetTicker24h", "BTCUSDT").Return(&binance.Ticker24hResponse{
		Symbol:             "BTCUSDT",
		LastPrice:          "60000.50",
		PriceChangePercent: "-6.25",
	}, nil)

	quote, err := NewCryptoFetcher(provider).Fetch("BTCUSDT")

	assert.NoError(t, err)
	assert.Equal(t, 60000.50, quote.Price)
	assert.Equal(t, -6.25, quote.ChangePct)
	assert.Equal(t, TypeCrypto, quote.Type)
	assert.Equal(t, WindowRolling24h, quote.Window)
}

func TestAggregator_PartialFailure(t *testing.T) {
	stocks := new(MockStockProvider)
	stocks.On("GetRecentCloses", "AAPL", 2).Return(closesOf(100, 103), nil)
	stocks.On("GetRecentCloses", "MSFT", 2).Return([]yahoo.Close(nil), errors.New("provider down"))
	stocks.On("GetRecentCloses", "NVDA", 2).Return(closesOf(400, 380), nil)

	cryptos := new(MockCryptoProvider)

	quotes, failed := newAggregator(stocks, cryptos).FetchAll([]string{"AAPL", "MSFT", "NVDA"}, nil)

	assert.Len(t, quotes, 2)
	assert.Contains(t, quotes, "AAPL")
	assert.Contains(t, quotes, "NVDA")
	assert.NotContains(t, quotes, "MSFT")
	assert.Len(t, failed, 1)
	assert.Error(t, failed["MSFT"])
}

func TestAggregator_MergesVenues(t *testing.T) {
	stocks := new(MockStockProvider)
	stocks.On("GetRecentCloses", "AAPL", 2).Return(closesOf(100, 106), nil)

	cryptos := new(MockCryptoProvider)
	cryptos.On("GetTicker24h", "BTCUSDT").Return(&binance.Ticker24hResponse{
		LastPrice:          "60000",
		PriceChangePercent: "7.1",
	}, nil)

	quotes, failed := newAggregator(stocks, cryptos).FetchAll([]string{"AAPL"}, []string{"BTCUSDT"})

	assert.Empty(t, failed)
	assert.Len(t, quotes, 2)
	assert.Equal(t, TypeStock, quotes["AAPL"].Type)
	assert.Equal(t, TypeCrypto, quotes["BTCUSDT"].Type)
}

func TestAggregator_InsufficientHistoryIsDropped(t *testing.T) {
	stocks := new(MockStockProvider)
	stocks.On("GetRecentCloses", "IPO", 2).Return(closesOf(42), nil)

	quotes, failed := newAggregator(stocks, new(MockCryptoProvider)).FetchAll([]string{"IPO"}, nil)

	assert.Empty(t, quotes)
	assert.ErrorIs(t, failed["IPO"], ErrInsufficientHistory)
}
