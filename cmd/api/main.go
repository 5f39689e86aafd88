// Package main is the entrypoint for the Pulsedash API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pulsedash/pulsedash/internal/auth"
	"github.com/pulsedash/pulsedash/internal/cache"
	"github.com/pulsedash/pulsedash/internal/config"
	"github.com/pulsedash/pulsedash/internal/fetcher"
	"github.com/pulsedash/pulsedash/internal/handler"
	"github.com/pulsedash/pulsedash/internal/metrics"
	"github.com/pulsedash/pulsedash/internal/repository"
	"github.com/pulsedash/pulsedash/internal/server"
	"github.com/pulsedash/pulsedash/internal/service"
)

// credentialBackend is a credential store that can report its health.
type credentialBackend interface {
	service.CredentialStore
	handler.HealthChecker
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open credential store",
			"backend", cfg.StoreBackend,
			"error", err,
		)
		os.Exit(1)
	}

	tokens, err := newTokenIssuer(cfg)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	// Upstream fetchers share one HTTP client.
	opts := fetcher.Options{
		Client:  fetcher.NewHTTPClient(cfg.UpstreamTimeout),
		Logger:  logger,
		Metrics: recorder,
	}

	authService := service.NewAuthService(store, tokens, recorder)
	dashboardService := service.NewDashboardService(
		fetcher.NewWeatherFetcher(cfg.WeatherBaseURL, cfg.WeatherAPIKey, opts),
		fetcher.NewNewsFetcher(cfg.NewsBaseURL, cfg.NewsAPIKey, cfg.NewsLookback, opts),
		fetcher.NewGitHubFetcher(cfg.GitHubBaseURL, cfg.GitHubUsername, cfg.GitHubToken, opts),
		fetcher.NewFinanceFetcher(cfg.AlphaVantageBaseURL, cfg.AlphaVantageAPIKey, opts),
		service.DashboardDefaults{
			Stocks: cfg.FinanceStocks,
			Crypto: cfg.FinanceCrypto,
			Cash:   cfg.FinanceCash,
		},
	)

	r := setupRouter(routes{
		root:      handler.New(),
		health:    handler.NewHealthHandler(logger).WithCheck(cfg.StoreBackend, store),
		metrics:   handler.NewMetricsHandler(registry),
		auth:      handler.NewAuthHandler(authService, logger),
		dashboard: handler.NewDashboardHandler(dashboardService, logger),
		verifier:  tokens,
	}, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown(cfg.StoreBackend, closeStore)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newTokenIssuer signs sessions with the configured secret. Every session
// lives exactly auth.DefaultTokenTTL.
func newTokenIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	return auth.NewTokenIssuer([]byte(cfg.JWTSecret), auth.DefaultTokenTTL)
}

// openStore connects the configured credential backend. The returned
// function releases its connections.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (credentialBackend, server.ShutdownFunc, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		c, err := cache.New(ctx, cfg.RedisURL, cache.Options{
			PoolSize:    cfg.RedisPoolSize,
			DialTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis %s: %s", redactURL(cfg.RedisURL), sanitizeError(err, cfg.RedisURL))
		}
		logger.Info("connected to Redis")
		return repository.NewRedisStore(c), func(context.Context) error { return c.Close() }, nil

	default:
		if cfg.MigrateOnStart {
			if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return nil, nil, fmt.Errorf("migrate: %s", sanitizeError(err, cfg.DatabaseURL))
			}
			logger.Info("database migrations applied")
		}

		repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
			MaxConns:       cfg.DBMaxConns,
			MinConns:       cfg.DBMinConns,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres %s: %s", redactURL(cfg.DatabaseURL), sanitizeError(err, cfg.DatabaseURL))
		}
		logger.Info("connected to database")
		return repo, func(context.Context) error {
			repo.Close()
			return nil
		}, nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
