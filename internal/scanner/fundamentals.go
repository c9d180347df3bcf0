package scanner

import (
	"math"

	"depot-radar-go/internal/yahoo"
	"go.uber.org/zap"
)

// missingRatio stands in for an absent valuation ratio (PE, price/book),
// so that any reasonable upper-bound filter rejects the instrument.
const missingRatio = 9999

// FundamentalsProvider serves fundamental fields for one symbol.
type FundamentalsProvider interface {
	GetFundamentals(symbol string) (*yahoo.Fundamentals, error)
}

// Criteria is the set of fundamental filters. Nil fields impose no
// constraint; present fields are combined with logical AND.
type Criteria struct {
	Sector           *string  `json:"sector,omitempty"`
	TrailingPEMax    *float64 `json:"trailing_pe_max,omitempty"`
	MarketCapMin     *float64 `json:"market_cap_min,omitempty"`
	MarketCapMax     *float64 `json:"market_cap_max,omitempty"`
	DividendYieldMin *float64 `json:"dividend_yield_min,omitempty"`
	PriceToBookMax   *float64 `json:"price_to_book_max,omitempty"`
	ProfitMarginsMin *float64 `json:"profit_margins_min,omitempty"`
}

// Match is one instrument that passed all filters.
type Match struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	TrailingPE    *float64 `json:"pe,omitempty"`
	DividendYield float64  `json:"div_yield"`
}

// Scanner evaluates fundamental criteria against a fixed instrument universe.
// The universe is injected, not baked in, and its order is the result order.
type Scanner struct {
	provider FundamentalsProvider
	universe []string
	logger   *zap.Logger
}

// NewScanner creates a new Scanner over the given universe.
func NewScanner(provider FundamentalsProvider, universe []string, logger *zap.Logger) *Scanner {
	return &Scanner{
		provider: provider,
		universe: universe,
		logger:   logger,
	}
}

// Filter re-fetches fundamentals for every universe member and returns
// those matching all present criteria, in universe order. A symbol whose
// fetch fails is skipped, never an error.
func (s *Scanner) Filter(criteria Criteria) []Match {
	var results []Match

	for _, symbol := range s.universe {
		info, err := s.provider.GetFundamentals(symbol)
		if err != nil {
			s.logger.Warn("Skipping symbol in fundamental scan",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}

		if !matches(info, criteria) {
			continue
		}

		divYield := 0.0
		if info.DividendYield != nil {
			divYield = *info.DividendYield * 100
		}
		results = append(results, Match{
			Symbol:        symbol,
			Name:          info.Name,
			Sector:        info.Sector,
			Price:         info.CurrentPrice,
			MarketCap:     info.MarketCap,
			TrailingPE:    info.TrailingPE,
			DividendYield: divYield,
		})
	}

	return results
}

// matches evaluates the criteria conjunction with explicit missing-data
// policy: a missing value fails a minimum-type filter and passes a
// maximum-type filter, except ratio upper bounds where a missing value is
// sentineled large so the instrument still fails.
func matches(info *yahoo.Fundamentals, c Criteria) bool {
	if c.Sector != nil && info.Sector != *c.Sector {
		return false
	}
	if c.TrailingPEMax != nil && valueOr(info.TrailingPE, missingRatio) > *c.TrailingPEMax {
		return false
	}
	if c.MarketCapMin != nil && valueOr(info.MarketCap, 0) < *c.MarketCapMin {
		return false
	}
	if c.MarketCapMax != nil && valueOr(info.MarketCap, math.Inf(1)) > *c.MarketCapMax {
		return false
	}
	if c.DividendYieldMin != nil && valueOr(info.DividendYield, 0) < *c.DividendYieldMin {
		return false
	}
	if c.PriceToBookMax != nil && valueOr(info.PriceToBook, missingRatio) > *c.PriceToBookMax {
		return false
	}
	if c.ProfitMarginsMin != nil && valueOr(info.ProfitMargins, 0) < *c.ProfitMarginsMin {
		return false
	}
	return true
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
