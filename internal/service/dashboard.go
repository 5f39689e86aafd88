package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pulsedash/pulsedash/internal/fetcher"
	"github.com/pulsedash/pulsedash/internal/model"
)

// WeatherSource provides weather snapshots.
type WeatherSource interface {
	Fetch(ctx context.Context, lat, lon float64) *model.Weather
	Current(ctx context.Context, lat, lon float64) *model.CurrentWeather
}

// NewsSource provides news snapshots.
type NewsSource interface {
	Fetch(ctx context.Context, category string) *model.News
	Headlines(ctx context.Context) []model.Headline
}

// GitHubSource provides GitHub profile snapshots.
type GitHubSource interface {
	Fetch(ctx context.Context) *model.GitHub
	Events(ctx context.Context) []model.GitHubEvent
}

// FinanceSource provides finance snapshots.
type FinanceSource interface {
	Fetch(ctx context.Context, req fetcher.FinanceRequest) *model.Finance
}

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64
	Lon float64
}

// DashboardDefaults fills in finance parameters a request leaves out.
type DashboardDefaults struct {
	Stocks []string
	Crypto []string
	Cash   float64
}

// DashboardService assembles widget snapshots. Snapshots are fetched
// fresh on every call and never stored.
type DashboardService struct {
	weather  WeatherSource
	news     NewsSource
	github   GitHubSource
	finance  FinanceSource
	defaults DashboardDefaults
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(weather WeatherSource, news NewsSource, github GitHubSource, finance FinanceSource, defaults DashboardDefaults) *DashboardService {
	return &DashboardService{
		weather:  weather,
		news:     news,
		github:   github,
		finance:  finance,
		defaults: defaults,
	}
}

// Weather returns the weather snapshot at loc, or nil.
func (s *DashboardService) Weather(ctx context.Context, loc Location) *model.Weather {
	return s.weather.Fetch(ctx, loc.Lat, loc.Lon)
}

// News returns the news snapshot for category, or nil.
func (s *DashboardService) News(ctx context.Context, category string) *model.News {
	return s.news.Fetch(ctx, category)
}

// GitHub returns the GitHub snapshot, or nil.
func (s *DashboardService) GitHub(ctx context.Context) *model.GitHub {
	return s.github.Fetch(ctx)
}

// FinanceInput selects the watchlist. Nil slices and a nil Cash fall back
// to the configured defaults; an explicitly empty slice means none.
type FinanceInput struct {
	Stocks []string
	Crypto []string
	Cash   *float64
}

// Finance returns the finance snapshot.
func (s *DashboardService) Finance(ctx context.Context, input FinanceInput) *model.Finance {
	req := fetcher.FinanceRequest{
		Stocks: input.Stocks,
		Crypto: input.Crypto,
		Cash:   s.defaults.Cash,
	}
	if req.Stocks == nil {
		req.Stocks = s.defaults.Stocks
	}
	if req.Crypto == nil {
		req.Crypto = s.defaults.Crypto
	}
	if input.Cash != nil {
		req.Cash = *input.Cash
	}
	return s.finance.Fetch(ctx, req)
}

// Overview fetches the landing widgets concurrently. Weather is only
// requested when loc is known.
func (s *DashboardService) Overview(ctx context.Context, loc *Location) *model.Overview {
	overview := &model.Overview{}

	var g errgroup.Group
	if loc != nil {
		g.Go(func() error {
			overview.Weather = s.weather.Current(ctx, loc.Lat, loc.Lon)
			return nil
		})
	}
	g.Go(func() error {
		overview.Headlines = s.news.Headlines(ctx)
		return nil
	})
	g.Go(func() error {
		overview.Activity = s.github.Events(ctx)
		return nil
	})
	_ = g.Wait()

	if overview.Headlines == nil {
		overview.Headlines = []model.Headline{}
	}
	if overview.Activity == nil {
		overview.Activity = []model.GitHubEvent{}
	}
	return overview
}
