package handler

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pulsedash/pulsedash/internal/handler/dto"
	"github.com/pulsedash/pulsedash/internal/middleware"
	"github.com/pulsedash/pulsedash/internal/model"
	"github.com/pulsedash/pulsedash/internal/service"
)

// Query limits.
const (
	maxCategoryLength = 64
	maxSymbols        = 10
)

var symbolRegex = regexp.MustCompile(`^[A-Za-z0-9.\-]{1,12}$`)

// Dashboard is the dashboard service as seen by the HTTP layer.
type Dashboard interface {
	Overview(ctx context.Context, loc *service.Location) *model.Overview
	Weather(ctx context.Context, loc service.Location) *model.Weather
	News(ctx context.Context, category string) *model.News
	GitHub(ctx context.Context) *model.GitHub
	Finance(ctx context.Context, input service.FinanceInput) *model.Finance
}

// DashboardHandler serves widget snapshots. A failed upstream fetch is
// reported as {"data": null} with status 200.
type DashboardHandler struct {
	svc    Dashboard
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc Dashboard, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		svc:    svc,
		logger: logger,
	}
}

// Overview handles GET /api/v1/dashboard/overview?lat=&lon=.
// Coordinates are optional; without them the weather slot is null.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r.URL.Query(), false)
	if err != nil {
		h.invalidQuery(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DataResponse[model.Overview]{Data: h.svc.Overview(r.Context(), loc)})
}

// Weather handles GET /api/v1/dashboard/weather?lat=&lon=.
func (h *DashboardHandler) Weather(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r.URL.Query(), true)
	if err != nil {
		h.invalidQuery(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DataResponse[model.Weather]{Data: h.svc.Weather(r.Context(), *loc)})
}

// News handles GET /api/v1/dashboard/news?category=.
func (h *DashboardHandler) News(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if len(category) > maxCategoryLength {
		h.invalidQuery(w, r, errors.New("category is too long"))
		return
	}
	writeJSON(w, http.StatusOK, dto.DataResponse[model.News]{Data: h.svc.News(r.Context(), category)})
}

// GitHub handles GET /api/v1/dashboard/github.
func (h *DashboardHandler) GitHub(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.DataResponse[model.GitHub]{Data: h.svc.GitHub(r.Context())})
}

// Finance handles GET /api/v1/dashboard/finance?stocks=&crypto=&cash=.
// Omitted parameters fall back to the configured watchlist.
func (h *DashboardHandler) Finance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		input service.FinanceInput
		err   error
	)
	if input.Stocks, err = parseSymbols(q, "stocks"); err != nil {
		h.invalidQuery(w, r, err)
		return
	}
	if input.Crypto, err = parseSymbols(q, "crypto"); err != nil {
		h.invalidQuery(w, r, err)
		return
	}
	if q.Has("cash") {
		cash, err := strconv.ParseFloat(q.Get("cash"), 64)
		if err != nil || cash < 0 || math.IsInf(cash, 0) || math.IsNaN(cash) {
			h.invalidQuery(w, r, errors.New("cash must be a non-negative number"))
			return
		}
		input.Cash = &cash
	}

	writeJSON(w, http.StatusOK, dto.DataResponse[model.Finance]{Data: h.svc.Finance(r.Context(), input)})
}

// parseLocation reads lat and lon. Both must be present together; when
// neither is and required is false, it returns nil.
func parseLocation(q url.Values, required bool) (*service.Location, error) {
	if !q.Has("lat") && !q.Has("lon") && !required {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, errors.New("lat must be a number between -90 and 90")
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return nil, errors.New("lon must be a number between -180 and 180")
	}
	return &service.Location{Lat: lat, Lon: lon}, nil
}

// parseSymbols reads a comma-separated symbol list. A missing parameter
// yields nil; a present but empty one yields an empty, non-nil list.
func parseSymbols(q url.Values, key string) ([]string, error) {
	if !q.Has(key) {
		return nil, nil
	}

	symbols := []string{}
	for _, s := range strings.Split(q.Get(key), ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !symbolRegex.MatchString(s) {
			return nil, errors.New(key + " contains an invalid symbol")
		}
		symbols = append(symbols, s)
	}
	if len(symbols) > maxSymbols {
		return nil, errors.New(key + " lists too many symbols")
	}
	return symbols, nil
}

func (h *DashboardHandler) invalidQuery(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("invalid_query",
		"path", r.URL.Path,
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
}
