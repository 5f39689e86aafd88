package model

// ChartPoint is one (label, value) sample of a time series.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Asset is a normalized stock or crypto snapshot.
// IsPositive is always Change >= 0 and ChartData is ordered oldest first.
type Asset struct {
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name"`
	Price         float64      `json:"price"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"changePercent"`
	IsPositive    bool         `json:"isPositive"`
	ChartData     []ChartPoint `json:"chartData"`
}

// AssetSummary is an aggregate figure for one asset class.
// Change is a percentage relative to the previous sample.
type AssetSummary struct {
	Value      float64 `json:"value"`
	Change     float64 `json:"change"`
	IsPositive bool    `json:"isPositive"`
}

// FinanceOverview groups the per-class summaries.
type FinanceOverview struct {
	Portfolio AssetSummary `json:"portfolio"`
	Stocks    AssetSummary `json:"stocks"`
	Crypto    AssetSummary `json:"crypto"`
	Cash      AssetSummary `json:"cash"`
}

// Finance is the finance dashboard snapshot.
// Only successfully fetched assets appear in Stocks and Crypto.
type Finance struct {
	Overview         FinanceOverview `json:"overview"`
	Stocks           []Asset         `json:"stocks"`
	Crypto           []Asset         `json:"crypto"`
	PortfolioHistory []ChartPoint    `json:"portfolioHistory"`
}
