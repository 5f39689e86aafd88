//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulsedash/pulsedash/internal/auth"
	"github.com/pulsedash/pulsedash/internal/config"
	"github.com/pulsedash/pulsedash/internal/fetcher"
	"github.com/pulsedash/pulsedash/internal/handler"
	"github.com/pulsedash/pulsedash/internal/handler/dto"
	"github.com/pulsedash/pulsedash/internal/metrics"
	"github.com/pulsedash/pulsedash/internal/model"
	"github.com/pulsedash/pulsedash/internal/repository"
	"github.com/pulsedash/pulsedash/internal/service"
	"github.com/pulsedash/pulsedash/internal/testutil"
)

const dailySeries = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2026-03-02": {"4. close": "100.00"},
		"2026-03-03": {"4. close": "102.00"},
		"2026-03-04": {"4. close": "101.00"},
		"2026-03-05": {"4. close": "105.00"},
		"2026-03-06": {"4. close": "107.00"}
	}
}`

// startAPI runs the full stack against PostgreSQL and a stub finance upstream.
func startAPI(t *testing.T) *httptest.Server {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	if err := repository.Migrate(ctx, databaseURL); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	repo, err := repository.New(ctx, databaseURL, repository.DefaultPoolConfig())
	if err != nil {
		t.Fatalf("repository.New failed: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("AcquireDBLock failed: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })
	if err := testutil.TruncateUsers(ctx, repo.Pool()); err != nil {
		t.Fatalf("TruncateUsers failed: %v", err)
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "AAPL" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, dailySeries)
	}))
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(registry)

	tokens, err := auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), auth.DefaultTokenTTL)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}

	opts := fetcher.Options{Client: upstream.Client(), Logger: logger, Metrics: recorder}
	dashboard := service.NewDashboardService(
		fetcher.NewWeatherFetcher(upstream.URL, "k", opts),
		fetcher.NewNewsFetcher(upstream.URL, "k", 0, opts),
		fetcher.NewGitHubFetcher(upstream.URL, "ada", "", opts),
		fetcher.NewFinanceFetcher(upstream.URL, "k", opts),
		service.DashboardDefaults{Stocks: []string{"AAPL"}},
	)

	cfg := &config.Config{AppEnv: "development", MaxRequestBodySize: 1 << 20}
	r := setupRouter(routes{
		root:      handler.New(),
		health:    handler.NewHealthHandler(logger).WithCheck("postgres", repo),
		metrics:   handler.NewMetricsHandler(registry),
		auth:      handler.NewAuthHandler(service.NewAuthService(repo, tokens, recorder), logger),
		dashboard: handler.NewDashboardHandler(dashboard, logger),
		verifier:  tokens,
	}, cfg, logger)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestIntegrationSmoke(t *testing.T) {
	srv := startAPI(t)

	email := testutil.UniqueEmail("smoke")
	register := dto.RegisterRequest{Name: "Ada", Email: email, Password: "correct horse"}

	var registered dto.AuthResponse
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", register, &registered); status != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", status)
	}

	var dup dto.ErrorResponse
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", register, &dup); status != http.StatusBadRequest || dup.Code != "USER_EXISTS" {
		t.Fatalf("duplicate register = %d %q, want 400 USER_EXISTS", status, dup.Code)
	}

	var bad dto.ErrorResponse
	login := dto.LoginRequest{Email: email, Password: "wrong"}
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", login, &bad); status != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", status)
	}

	var loggedIn dto.AuthResponse
	login.Password = register.Password
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", login, &loggedIn); status != http.StatusOK {
		t.Fatalf("login status = %d, want 200", status)
	}

	var me dto.MeResponse
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/v1/me", loggedIn.Token, nil, &me); status != http.StatusOK {
		t.Fatalf("me status = %d, want 200", status)
	}
	if me.Email != email {
		t.Errorf("me email = %q, want %q", me.Email, email)
	}

	var registeredMe dto.MeResponse
	doJSON(t, http.MethodGet, srv.URL+"/api/v1/me", registered.Token, nil, &registeredMe)
	if registeredMe.ID != me.ID {
		t.Errorf("register and login subjects differ: %q vs %q", registeredMe.ID, me.ID)
	}

	var finance dto.DataResponse[model.Finance]
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/v1/dashboard/finance?stocks=AAPL,MSFT&crypto=", loggedIn.Token, nil, &finance); status != http.StatusOK {
		t.Fatalf("finance status = %d, want 200", status)
	}
	if finance.Data == nil || len(finance.Data.Stocks) != 1 {
		t.Fatalf("expected one surviving stock, got %+v", finance.Data)
	}
	if aapl := finance.Data.Stocks[0]; aapl.Price != 107 || aapl.Change != 2 || !aapl.IsPositive {
		t.Errorf("unexpected AAPL snapshot: %+v", aapl)
	}

	var github dto.DataResponse[model.GitHub]
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/v1/dashboard/github", loggedIn.Token, nil, &github); status != http.StatusOK || github.Data != nil {
		t.Errorf("github = %d %+v, want 200 with null data", status, github.Data)
	}

	var health handler.HealthResponse
	if status := doJSON(t, http.MethodGet, srv.URL+"/readyz", "", nil, &health); status != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", status)
	}
}
