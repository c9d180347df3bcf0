package news

import (
	"depot-radar-go/internal/yahoo"
	"go.uber.org/zap"
)

// Light is the binary news sentiment flag.
type Light string

const (
	// LightRed marks a symbol with recent news: the price move may be
	// news-driven rather than technical.
	LightRed Light = "red"
	// LightGreen marks a symbol without recent news (or whose news fetch
	// failed): treated as a purely technical move.
	LightGreen Light = "green"
)

// Provider serves recent news items for a symbol.
type Provider interface {
	GetRecentNews(symbol string, limit int) ([]yahoo.NewsItem, error)
}

// TrafficLight classifies symbols red or green based on news presence.
// It is a heuristic annotation, not a trading decision.
type TrafficLight struct {
	provider Provider
	limit    int
	logger   *zap.Logger
}

// NewTrafficLight creates a new TrafficLight checking up to limit items.
func NewTrafficLight(provider Provider, limit int, logger *zap.Logger) *TrafficLight {
	return &TrafficLight{
		provider: provider,
		limit:    limit,
		logger:   logger,
	}
}

// Classify returns red iff at least one recent news item exists for the
// symbol. A fetch failure degrades to green.
func (t *TrafficLight) Classify(symbol string) Light {
	items, err := t.provider.GetRecentNews(symbol, t.limit)
	if err != nil {
		t.logger.Warn("News fetch failed, defaulting to green",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return LightGreen
	}
	if len(items) > 0 {
		return LightRed
	}
	return LightGreen
}
