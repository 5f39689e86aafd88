package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulsedash/pulsedash/internal/model"
)

var fixtureDates = []string{"2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06", "2024-06-07"}

// dailySeries builds a series keyed by fixtureDates, closes oldest first,
// plus an older date that must fall outside the chart window.
func dailySeries(closeKey string, closes ...float64) map[string]any {
	series := map[string]any{
		"2024-05-31": map[string]string{closeKey: "1.00"},
	}
	for i, c := range closes {
		series[fixtureDates[i]] = map[string]string{
			"1. open":   "0",
			closeKey:    fmt.Sprintf("%.2f", c),
			"5. volume": "100",
		}
	}
	return series
}

func financeServer(t *testing.T, stocks map[string][]float64, crypto map[string][]float64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/query" || q.Get("apikey") != "akey" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		symbol := q.Get("symbol")

		switch q.Get("function") {
		case stockFunction:
			closes, ok := stocks[symbol]
			if !ok {
				writeJSON(t, w, map[string]any{"Error Message": "Invalid API call."})
				return
			}
			writeJSON(t, w, map[string]any{
				"Meta Data":    map[string]string{"2. Symbol": symbol},
				stockSeriesKey: dailySeries("4. close", closes...),
			})
		case cryptoFunction:
			if q.Get("market") != "USD" {
				t.Errorf("crypto market = %q", q.Get("market"))
			}
			closes, ok := crypto[symbol]
			if !ok {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			writeJSON(t, w, map[string]any{
				"Meta Data":     map[string]string{"2. Digital Currency Code": symbol},
				cryptoSeriesKey: dailySeries("4a. close (USD)", closes...),
			})
		default:
			t.Errorf("unexpected function %q", q.Get("function"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFinanceFetcher_StockDerivation(t *testing.T) {
	t.Parallel()

	srv := financeServer(t, map[string][]float64{"AAPL": {100, 102, 101, 105, 107}}, nil)
	opts, _ := newTestOptions(t)
	f := NewFinanceFetcher(srv.URL, "akey", opts)

	asset := f.Stock(context.Background(), "AAPL")
	if asset == nil {
		t.Fatal("Stock returned nil")
	}

	if asset.Price != 107 || asset.Change != 2 || !asset.IsPositive {
		t.Errorf("price/change/positive = %v/%v/%v, want 107/2/true", asset.Price, asset.Change, asset.IsPositive)
	}
	if asset.ChangePercent != 1.9 {
		t.Errorf("ChangePercent = %v, want 1.9", asset.ChangePercent)
	}
	if asset.Symbol != "AAPL" || asset.Name != "AAPL" {
		t.Errorf("unexpected identity: %+v", asset)
	}

	want := []float64{100, 102, 101, 105, 107}
	if len(asset.ChartData) != len(want) {
		t.Fatalf("chart = %+v", asset.ChartData)
	}
	for i, p := range asset.ChartData {
		if p.Value != want[i] || p.Date != fixtureDates[i] {
			t.Errorf("chart[%d] = %+v, want %s=%v", i, p, fixtureDates[i], want[i])
		}
	}
}

func TestBuildAsset_Edges(t *testing.T) {
	t.Parallel()

	single, err := buildAsset("ONE", map[string]map[string]string{"2024-06-07": {"4. close": "50.5"}})
	if err != nil {
		t.Fatalf("buildAsset failed: %v", err)
	}
	if single.Change != 0 || !single.IsPositive || single.Price != 50.5 {
		t.Errorf("single point asset = %+v", single)
	}

	falling, err := buildAsset("DN", map[string]map[string]string{
		"2024-06-06": {"4. close": "10.46"},
		"2024-06-07": {"4. close": "10.00"},
	})
	if err != nil {
		t.Fatalf("buildAsset failed: %v", err)
	}
	if falling.Change != -0.46 || falling.IsPositive {
		t.Errorf("falling asset change = %v positive = %v", falling.Change, falling.IsPositive)
	}

	if _, err := buildAsset("NONE", nil); err == nil {
		t.Error("expected error for missing series")
	}
	if _, err := buildAsset("BAD", map[string]map[string]string{"2024-06-07": {"4. close": "abc"}}); err == nil {
		t.Error("expected error for non-numeric close")
	}
	if _, err := buildAsset("NOCLOSE", map[string]map[string]string{"2024-06-07": {"1. open": "1"}}); err == nil {
		t.Error("expected error for missing close")
	}
}

func TestFinanceFetcher_DropsFailedSymbols(t *testing.T) {
	t.Parallel()

	stocks := map[string][]float64{
		"AAPL": {10, 10, 10, 10, 20},
		"GOOG": {5, 5, 5, 5, 10},
		"AMZN": {1, 1, 1, 1, 2},
	}
	srv := financeServer(t, stocks, nil)
	opts, recorder := newTestOptions(t)
	f := NewFinanceFetcher(srv.URL, "akey", opts)

	finance := f.Fetch(context.Background(), FinanceRequest{
		Stocks: []string{"AAPL", "FAIL1", "GOOG", "FAIL2", "AMZN"},
	})
	if finance == nil {
		t.Fatal("Fetch returned nil")
	}

	wantOrder := []string{"AAPL", "GOOG", "AMZN"}
	if len(finance.Stocks) != len(wantOrder) {
		t.Fatalf("stocks = %+v", finance.Stocks)
	}
	for i, s := range finance.Stocks {
		if s.Symbol != wantOrder[i] {
			t.Errorf("stocks[%d] = %s, want %s", i, s.Symbol, wantOrder[i])
		}
	}

	// 32 now against 16 before.
	if finance.Overview.Stocks.Value != 32 || finance.Overview.Stocks.Change != 100 || !finance.Overview.Stocks.IsPositive {
		t.Errorf("stocks summary = %+v", finance.Overview.Stocks)
	}
	if finance.Overview.Portfolio.Value != 32 {
		t.Errorf("portfolio value = %v, want 32", finance.Overview.Portfolio.Value)
	}
	if len(finance.Crypto) != 0 {
		t.Errorf("crypto = %+v, want empty", finance.Crypto)
	}

	if dropped := recorder.Snapshot().DroppedUnits[ProviderFinance]; dropped != 2 {
		t.Errorf("dropped finance units = %d, want 2", dropped)
	}
}

func TestFinanceFetcher_StocksCryptoAndCash(t *testing.T) {
	t.Parallel()

	srv := financeServer(t,
		map[string][]float64{"MSFT": {100, 100, 100, 100, 110}},
		map[string][]float64{"BTC": {1000, 1000, 1000, 1000, 900}},
	)
	opts, _ := newTestOptions(t)
	f := NewFinanceFetcher(srv.URL, "akey", opts)

	finance := f.Fetch(context.Background(), FinanceRequest{
		Stocks: []string{"MSFT"},
		Crypto: []string{"BTC", "DOGE"},
		Cash:   890,
	})

	if len(finance.Crypto) != 1 || finance.Crypto[0].Symbol != "BTC" || finance.Crypto[0].IsPositive {
		t.Fatalf("crypto = %+v", finance.Crypto)
	}

	ov := finance.Overview
	if ov.Crypto.Value != 900 || ov.Crypto.Change != -10 || ov.Crypto.IsPositive {
		t.Errorf("crypto summary = %+v", ov.Crypto)
	}
	if ov.Cash != (model.AssetSummary{Value: 890, Change: 0, IsPositive: true}) {
		t.Errorf("cash summary = %+v", ov.Cash)
	}
	// 110 + 900 + 890 = 1900 against 100 + 1000 + 890 = 1990.
	if ov.Portfolio.Value != 1900 || ov.Portfolio.Change != -4.52 || ov.Portfolio.IsPositive {
		t.Errorf("portfolio summary = %+v", ov.Portfolio)
	}

	if len(finance.PortfolioHistory) != 5 {
		t.Fatalf("history = %+v", finance.PortfolioHistory)
	}
	first, last := finance.PortfolioHistory[0], finance.PortfolioHistory[4]
	if first.Date != "2024-06-03" || first.Value != 1990 {
		t.Errorf("history[0] = %+v", first)
	}
	if last.Date != "2024-06-07" || last.Value != 1900 {
		t.Errorf("history[4] = %+v", last)
	}
}

func TestFinanceFetcher_RateLimitNoteYieldsNil(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	t.Cleanup(srv.Close)

	opts, _ := newTestOptions(t)
	f := NewFinanceFetcher(srv.URL, "akey", opts)

	if got := f.Stock(context.Background(), "AAPL"); got != nil {
		t.Errorf("Stock() = %+v, want nil", got)
	}
}

func TestBuildFinance_Empty(t *testing.T) {
	t.Parallel()

	finance := BuildFinance(nil, nil, 0)
	if finance.Overview.Portfolio.Value != 0 || finance.Overview.Portfolio.Change != 0 || !finance.Overview.Portfolio.IsPositive {
		t.Errorf("empty portfolio = %+v", finance.Overview.Portfolio)
	}
	if len(finance.PortfolioHistory) != 0 {
		t.Errorf("history = %+v, want empty", finance.PortfolioHistory)
	}
}
