package market

import (
	"strings"

	"depot-radar-go/internal/binance"
	"depot-radar-go/internal/yahoo"
	"go.uber.org/zap"
)

const searchLimit = 5

// SymbolSearcher searches stock symbols by free-text query.
type SymbolSearcher interface {
	SearchQuotes(query string, count int) ([]yahoo.SearchQuote, error)
}

// ExchangeInfoProvider lists the crypto exchange's symbols.
type ExchangeInfoProvider interface {
	GetExchangeInfo() (*binance.ExchangeInfoResponse, error)
}

// SearchResult is one instrument hit across venues.
type SearchResult struct {
	Symbol string         `json:"symbol"`
	Name   string         `json:"name"`
	Type   InstrumentType `json:"type"`
}

// Search finds instruments across both venues.
type Search struct {
	stocks  SymbolSearcher
	cryptos ExchangeInfoProvider
	logger  *zap.Logger
}

// NewSearch creates a new cross-venue Search.
func NewSearch(stocks SymbolSearcher, cryptos ExchangeInfoProvider, logger *zap.Logger) *Search {
	return &Search{
		stocks:  stocks,
		cryptos: cryptos,
		logger:  logger,
	}
}

// Find returns up to five stock hits and five crypto hits for the query.
// A failing venue contributes nothing; the other venue's hits still come back.
func (s *Search) Find(query string) []SearchResult {
	var results []SearchResult

	quotes, err := s.stocks.SearchQuotes(query, searchLimit)
	if err != nil {
		s.logger.Warn("Stock symbol search failed", zap.String("query", query), zap.Error(err))
	} else {
		for _, q := range quotes {
			name := q.ShortName
			if name == "" {
				name = q.LongName
			}
			results = append(results, SearchResult{
				Symbol: q.Symbol,
				Name:   name,
				Type:   TypeStock,
			})
		}
	}

	info, err := s.cryptos.GetExchangeInfo()
	if err != nil {
		s.logger.Warn("Crypto symbol search failed", zap.String("query", query), zap.Error(err))
		return results
	}

	needle := strings.ToUpper(query)
	matched := 0
	for _, sym := range info.Symbols {
		if matched >= searchLimit {
			break
		}
		if strings.Contains(sym.Symbol, needle) {
			results = append(results, SearchResult{
				Symbol: sym.Symbol,
				Name:   sym.Symbol,
				Type:   TypeCrypto,
			})
			matched++
		}
	}

	return results
}
