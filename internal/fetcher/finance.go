package fetcher

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pulsedash/pulsedash/internal/model"
)

const (
	chartPoints = 5

	stockFunction  = "TIME_SERIES_DAILY_ADJUSTED"
	cryptoFunction = "DIGITAL_CURRENCY_DAILY"
	cryptoMarket   = "USD"

	stockSeriesKey  = "Time Series (Daily)"
	cryptoSeriesKey = "Time Series (Digital Currency Daily)"
)

// Close price keys, in lookup order. Crypto series use the suffixed key on
// older API versions.
var closeKeys = []string{"4. close", "4a. close (USD)"}

// FinanceFetcher reads daily series from Alpha Vantage.
type FinanceFetcher struct {
	up      *upstream
	baseURL string
	apiKey  string
}

// NewFinanceFetcher creates a FinanceFetcher.
func NewFinanceFetcher(baseURL, apiKey string, opts Options) *FinanceFetcher {
	return &FinanceFetcher{
		up:      newUpstream(ProviderFinance, opts),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// FinanceRequest names the watchlist for one finance snapshot.
type FinanceRequest struct {
	Stocks []string
	Crypto []string
	Cash   float64
}

// Stock returns the snapshot for one equity symbol, or nil.
func (f *FinanceFetcher) Stock(ctx context.Context, symbol string) *model.Asset {
	return f.asset(ctx, symbol, stockFunction, stockSeriesKey, nil)
}

// Crypto returns the snapshot for one digital currency, priced in USD, or nil.
func (f *FinanceFetcher) Crypto(ctx context.Context, symbol string) *model.Asset {
	return f.asset(ctx, symbol, cryptoFunction, cryptoSeriesKey, url.Values{"market": {cryptoMarket}})
}

func (f *FinanceFetcher) asset(ctx context.Context, symbol, function, seriesKey string, extra url.Values) *model.Asset {
	unit := "quote:" + symbol

	if f.apiKey == "" {
		f.up.drop(ctx, unit, ErrNotConfigured)
		return nil
	}

	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	for k, v := range extra {
		q[k] = v
	}
	q.Set("apikey", f.apiKey)

	// Rate-limit and error replies are 200s that carry a "Note" or
	// "Information" string instead of a series.
	var resp map[string]json.RawMessage
	if err := f.up.getJSON(ctx, unit, f.baseURL+"/query?"+q.Encode(), nil, &resp); err != nil {
		f.up.drop(ctx, unit, err)
		return nil
	}

	var series map[string]map[string]string
	if raw, ok := resp[seriesKey]; ok {
		if err := json.Unmarshal(raw, &series); err != nil {
			f.up.drop(ctx, unit, &UpstreamError{Provider: ProviderFinance, Unit: unit, Status: 200, Err: malformed("%v", err)})
			return nil
		}
	}

	asset, err := buildAsset(symbol, series)
	if err != nil {
		f.up.drop(ctx, unit, &UpstreamError{Provider: ProviderFinance, Unit: unit, Status: 200, Err: err})
		return nil
	}
	return asset
}

// buildAsset derives an asset from a date-keyed daily series. The five most
// recent dates are charted oldest first; change is last minus previous close.
func buildAsset(symbol string, series map[string]map[string]string) (*model.Asset, error) {
	if len(series) == 0 {
		return nil, malformed("missing time series")
	}

	dates := make([]string, 0, len(series))
	for date := range series {
		dates = append(dates, date)
	}
	// ISO dates sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > chartPoints {
		dates = dates[:chartPoints]
	}

	chart := make([]model.ChartPoint, len(dates))
	for i, date := range dates {
		value, err := closeValue(series[date])
		if err != nil {
			return nil, malformed("close for %s: %v", date, err)
		}
		chart[len(dates)-1-i] = model.ChartPoint{Date: date, Value: value}
	}

	price := chart[len(chart)-1].Value
	previous := price
	if len(chart) > 1 {
		previous = chart[len(chart)-2].Value
	}
	change := round2(price - previous)

	return &model.Asset{
		Symbol:        symbol,
		Name:          symbol,
		Price:         price,
		Change:        change,
		ChangePercent: percentChange(price, previous),
		IsPositive:    change >= 0,
		ChartData:     chart,
	}, nil
}

func closeValue(point map[string]string) (float64, error) {
	for _, key := range closeKeys {
		if raw, ok := point[key]; ok {
			return strconv.ParseFloat(raw, 64)
		}
	}
	return 0, malformed("no close price")
}

// Fetch builds the finance snapshot. Stocks and crypto fan out together;
// failed symbols are dropped and every aggregate covers only the rest.
func (f *FinanceFetcher) Fetch(ctx context.Context, req FinanceRequest) *model.Finance {
	type unit struct {
		symbol string
		crypto bool
	}

	units := make([]unit, 0, len(req.Stocks)+len(req.Crypto))
	for _, s := range req.Stocks {
		units = append(units, unit{symbol: s})
	}
	for _, s := range req.Crypto {
		units = append(units, unit{symbol: s, crypto: true})
	}

	results := fanOut(ctx, units, func(ctx context.Context, u unit) *model.Asset {
		if u.crypto {
			return f.Crypto(ctx, u.symbol)
		}
		return f.Stock(ctx, u.symbol)
	})

	return BuildFinance(
		compact(results[:len(req.Stocks)]),
		compact(results[len(req.Stocks):]),
		req.Cash,
	)
}

// BuildFinance aggregates already fetched assets into a finance snapshot.
func BuildFinance(stocks, crypto []model.Asset, cash float64) *model.Finance {
	stockNow, stockPrev := totals(stocks)
	cryptoNow, cryptoPrev := totals(crypto)

	return &model.Finance{
		Overview: model.FinanceOverview{
			Portfolio: summary(stockNow+cryptoNow+cash, stockPrev+cryptoPrev+cash),
			Stocks:    summary(stockNow, stockPrev),
			Crypto:    summary(cryptoNow, cryptoPrev),
			Cash:      model.AssetSummary{Value: cash, Change: 0, IsPositive: true},
		},
		Stocks:           stocks,
		Crypto:           crypto,
		PortfolioHistory: portfolioHistory(append(append([]model.Asset(nil), stocks...), crypto...), cash),
	}
}

// totals sums the latest and previous prices of assets.
func totals(assets []model.Asset) (current, previous float64) {
	for _, a := range assets {
		current += a.Price
		previous += previousClose(a)
	}
	return current, previous
}

// previousClose is the second newest chart value, or the price itself
// when the chart has a single point.
func previousClose(a model.Asset) float64 {
	if n := len(a.ChartData); n > 1 {
		return a.ChartData[n-2].Value
	}
	return a.Price
}

func summary(current, previous float64) model.AssetSummary {
	change := percentChange(current, previous)
	return model.AssetSummary{
		Value:      round2(current),
		Change:     change,
		IsPositive: change >= 0,
	}
}

// portfolioHistory sums chart values per date across assets, plus cash,
// ordered oldest first.
func portfolioHistory(assets []model.Asset, cash float64) []model.ChartPoint {
	byDate := make(map[string]float64)
	for _, a := range assets {
		for _, p := range a.ChartData {
			byDate[p.Date] += p.Value
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	history := make([]model.ChartPoint, 0, len(dates))
	for _, date := range dates {
		history = append(history, model.ChartPoint{Date: date, Value: round2(byDate[date] + cash)})
	}
	return history
}

func percentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
