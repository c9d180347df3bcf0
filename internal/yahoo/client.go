package yahoo

import (
	"context"
	"fmt"
	"time"

	"depot-radar-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	chartBaseURL = "https://query1.finance.yahoo.com"
	queryBaseURL = "https://query2.finance.yahoo.com"

	// Yahoo rejects requests without a browser user agent.
	userAgent = "Mozilla/5.0"
)

// Close is one daily closing price.
type Close struct {
	Date  time.Time
	Price float64
}

// Fundamentals holds the optional fundamental fields for one instrument.
// Nil means the provider did not report the field.
type Fundamentals struct {
	Symbol        string
	Name          string
	Sector        string
	CurrentPrice  *float64
	MarketCap     *float64
	TrailingPE    *float64
	DividendYield *float64
	PriceToBook   *float64
	ProfitMargins *float64
}

// NewsItem is one news article attached to a symbol.
type NewsItem struct {
	Title       string
	Publisher   string
	Link        string
	PublishedAt time.Time
}

// SearchQuote is one symbol hit from the search endpoint.
type SearchQuote struct {
	Symbol    string
	ShortName string
	LongName  string
}

// Client talks to the public Yahoo Finance endpoints: daily closes,
// fundamentals, news and symbol search.
type Client struct {
	chart   *resty.Client
	query   *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewClient creates a new Yahoo Finance client.
func NewClient(cfg *config.Yahoo, logger *zap.Logger) *Client {
	return &Client{
		chart:   resty.New().SetBaseURL(chartBaseURL).SetHeader("User-Agent", userAgent),
		query:   resty.New().SetBaseURL(queryBaseURL).SetHeader("User-Agent", userAgent),
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
}

// doRequest executes a request after waiting for the rate limiter.
// One attempt per call; a failed symbol is dropped for the cycle, not retried.
func (c *Client) doRequest(ctx context.Context, client *resty.Client, method, url string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", client.BaseURL+url))
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
	}

	return resp, nil
}

// chartResponse is the v8 chart API response.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetRecentCloses fetches up to days daily closing prices for a symbol,
// oldest first. Null bars (holidays etc.) are skipped.
func (c *Client) GetRecentCloses(symbol string, days int) ([]Close, error) {
	rng := "1mo"
	if days <= 5 {
		rng = "5d"
	}

	var chart chartResponse
	req := c.chart.R().
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    rng,
		}).
		SetResult(&chart)
	ctx := context.Background()

	_, err := c.doRequest(ctx, c.chart, "GET", "/v8/finance/chart/"+symbol, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get closes for %s: %w", symbol, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	closes := make([]Close, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // null bar
		}
		closes = append(closes, Close{
			Date:  time.Unix(ts, 0),
			Price: *quote.Close[i],
		})
	}

	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	return closes, nil
}

// rawValue is Yahoo's numeric field wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// quoteSummaryResponse is the v10 quoteSummary API response, limited to the
// modules we request.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
			Price *struct {
				LongName string `json:"longName"`
			} `json:"price"`
			SummaryDetail *struct {
				TrailingPE    *rawValue `json:"trailingPE"`
				DividendYield *rawValue `json:"dividendYield"`
				MarketCap     *rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				PriceToBook *rawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				CurrentPrice  *rawValue `json:"currentPrice"`
				ProfitMargins *rawValue `json:"profitMargins"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetFundamentals fetches the fundamental fields for one symbol.
// Fields the provider does not report stay nil.
func (c *Client) GetFundamentals(symbol string) (*Fundamentals, error) {
	var summary quoteSummaryResponse
	req := c.query.R().
		SetQueryParam("modules", "assetProfile,price,summaryDetail,defaultKeyStatistics,financialData").
		SetResult(&summary)
	ctx := context.Background()

	_, err := c.doRequest(ctx, c.query, "GET", "/v10/finance/quoteSummary/"+symbol, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get fundamentals for %s: %w", symbol, err)
	}

	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary api error for %s: %s", symbol, summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no fundamentals returned for %s", symbol)
	}

	result := summary.QuoteSummary.Result[0]
	f := &Fundamentals{Symbol: symbol}

	if result.AssetProfile != nil {
		f.Sector = result.AssetProfile.Sector
	}
	if result.Price != nil {
		f.Name = result.Price.LongName
	}
	if sd := result.SummaryDetail; sd != nil {
		f.TrailingPE = unwrap(sd.TrailingPE)
		f.DividendYield = unwrap(sd.DividendYield)
		f.MarketCap = unwrap(sd.MarketCap)
	}
	if ks := result.DefaultKeyStatistics; ks != nil {
		f.PriceToBook = unwrap(ks.PriceToBook)
	}
	if fd := result.FinancialData; fd != nil {
		f.CurrentPrice = unwrap(fd.CurrentPrice)
		f.ProfitMargins = unwrap(fd.ProfitMargins)
	}

	return f, nil
}

func unwrap(v *rawValue) *float64 {
	if v == nil {
		return nil
	}
	return v.Raw
}

// searchResponse is the v1 search API response.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
	} `json:"quotes"`
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// GetRecentNews fetches up to limit recent news items for a symbol.
func (c *Client) GetRecentNews(symbol string, limit int) ([]NewsItem, error) {
	var search searchResponse
	req := c.query.R().
		SetQueryParams(map[string]string{
			"q":           symbol,
			"quotesCount": "0",
			"newsCount":   fmt.Sprintf("%d", limit),
		}).
		SetResult(&search)
	ctx := context.Background()

	_, err := c.doRequest(ctx, c.query, "GET", "/v1/finance/search", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get news for %s: %w", symbol, err)
	}

	items := make([]NewsItem, 0, len(search.News))
	for _, n := range search.News {
		items = append(items, NewsItem{
			Title:       n.Title,
			Publisher:   n.Publisher,
			Link:        n.Link,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0),
		})
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// SearchQuotes searches symbols matching the query, up to count hits.
func (c *Client) SearchQuotes(query string, count int) ([]SearchQuote, error) {
	var search searchResponse
	req := c.query.R().
		SetQueryParams(map[string]string{
			"q":           query,
			"quotesCount": fmt.Sprintf("%d", count),
			"newsCount":   "0",
		}).
		SetResult(&search)
	ctx := context.Background()

	_, err := c.doRequest(ctx, c.query, "GET", "/v1/finance/search", req)
	if err != nil {
		return nil, fmt.Errorf("symbol search failed for %q: %w", query, err)
	}

	quotes := make([]SearchQuote, 0, len(search.Quotes))
	for _, q := range search.Quotes {
		quotes = append(quotes, SearchQuote{
			Symbol:    q.Symbol,
			ShortName: q.ShortName,
			LongName:  q.LongName,
		})
	}
	if len(quotes) > count {
		quotes = quotes[:count]
	}
	return quotes, nil
}
