package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pulsedash/pulsedash/internal/metrics"
)

// Provider names used in logs, metrics and breaker names.
const (
	ProviderWeather = "weather"
	ProviderNews    = "news"
	ProviderGitHub  = "github"
	ProviderFinance = "finance"
)

// Options carries the dependencies shared by every fetcher.
type Options struct {
	Client  *http.Client
	Logger  *slog.Logger
	Metrics metrics.Recorder
	Breaker BreakerConfig
}

func (o Options) withDefaults() Options {
	if o.Client == nil {
		o.Client = NewHTTPClient(DefaultClientTimeout)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewNoop()
	}
	if o.Breaker == (BreakerConfig{}) {
		o.Breaker = DefaultBreakerConfig()
	}
	return o
}

// upstream performs JSON GETs against one provider.
type upstream struct {
	provider string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger
	metrics  metrics.Recorder
}

func newUpstream(provider string, opts Options) *upstream {
	opts = opts.withDefaults()
	logger := opts.Logger.With("component", "fetcher."+provider)
	return &upstream{
		provider: provider,
		client:   opts.Client,
		breaker:  newBreaker(provider, opts.Breaker, logger),
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// getJSON fetches url and decodes the body into dst.
// Any failure is returned as *UpstreamError.
func (u *upstream) getJSON(ctx context.Context, unit, url string, header http.Header, dst any) error {
	if err := ctx.Err(); err != nil {
		return &UpstreamError{Provider: u.provider, Unit: unit, Err: err}
	}

	start := time.Now()

	_, err := u.breaker.Execute(func() (interface{}, error) {
		err := u.do(ctx, unit, url, header, dst)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: err}
		}
		return nil, err
	})

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	u.metrics.ObserveUpstreamFetch(u.provider, status, time.Since(start))

	if err == nil {
		return nil
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr
	}
	// Breaker rejections (open or too many half-open requests).
	return &UpstreamError{Provider: u.provider, Unit: unit, Err: err}
}

// abandonedError marks a call cut short by its own caller's context.
// The breaker does not hold it against the provider.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

func (u *upstream) do(ctx context.Context, unit, url string, header http.Header, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &UpstreamError{Provider: u.provider, Unit: unit, Err: err}
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return &UpstreamError{Provider: u.provider, Unit: unit, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &UpstreamError{Provider: u.provider, Unit: unit, Status: resp.StatusCode, Err: ErrUpstreamStatus}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return &UpstreamError{
			Provider: u.provider,
			Unit:     unit,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%w: %v", ErrMalformed, err),
		}
	}
	return nil
}

// drop logs a failed unit and counts it.
// Callers replace the unit with its zero value and continue.
func (u *upstream) drop(ctx context.Context, unit string, err error) {
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		upErr = &UpstreamError{Provider: u.provider, Unit: unit, Err: err}
	}
	u.metrics.IncUpstreamUnitDropped(u.provider)
	u.logger.WarnContext(ctx, "upstream fetch failed",
		slog.String("unit", upErr.Unit),
		slog.Int("status", upErr.Status),
		slog.String("error", upErr.Err.Error()),
	)
}
