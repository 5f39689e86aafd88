package fetcher

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/pulsedash/pulsedash/internal/model"
)

const (
	forecastDays = 7
	hourlyPoints = 8

	weatherHourLayout = "2006-01-02 15:04"
	weatherDayLayout  = "2006-01-02"
)

// WeatherFetcher reads forecasts from weatherapi.com.
type WeatherFetcher struct {
	up      *upstream
	baseURL string
	apiKey  string
}

// NewWeatherFetcher creates a WeatherFetcher.
func NewWeatherFetcher(baseURL, apiKey string, opts Options) *WeatherFetcher {
	return &WeatherFetcher{
		up:      newUpstream(ProviderWeather, opts),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type weatherCondition struct {
	Text string `json:"text"`
}

type forecastResponse struct {
	Location *struct {
		Name string `json:"name"`
	} `json:"location"`
	Current *struct {
		TempC      float64          `json:"temp_c"`
		FeelsLikeC float64          `json:"feelslike_c"`
		Humidity   int              `json:"humidity"`
		WindKph    float64          `json:"wind_kph"`
		Condition  weatherCondition `json:"condition"`
	} `json:"current"`
	Forecast *struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64          `json:"maxtemp_c"`
				MinTempC  float64          `json:"mintemp_c"`
				Condition weatherCondition `json:"condition"`
			} `json:"day"`
			Hour []struct {
				Time      string           `json:"time"`
				TempC     float64          `json:"temp_c"`
				Condition weatherCondition `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Fetch returns the weather snapshot for the given coordinates, or nil.
func (f *WeatherFetcher) Fetch(ctx context.Context, lat, lon float64) *model.Weather {
	const unit = "forecast"

	if f.apiKey == "" {
		f.up.drop(ctx, unit, ErrNotConfigured)
		return nil
	}

	q := url.Values{}
	q.Set("key", f.apiKey)
	q.Set("q", fmt.Sprintf("%g,%g", lat, lon))
	q.Set("days", fmt.Sprint(forecastDays))
	q.Set("aqi", "no")
	q.Set("alerts", "no")

	var resp forecastResponse
	if err := f.up.getJSON(ctx, unit, f.baseURL+"/forecast.json?"+q.Encode(), nil, &resp); err != nil {
		f.up.drop(ctx, unit, err)
		return nil
	}

	weather, err := buildWeather(&resp)
	if err != nil {
		f.up.drop(ctx, unit, &UpstreamError{Provider: ProviderWeather, Unit: unit, Status: 200, Err: err})
		return nil
	}
	return weather
}

func buildWeather(resp *forecastResponse) (*model.Weather, error) {
	if resp.Current == nil || resp.Location == nil || resp.Forecast == nil {
		return nil, malformed("missing current, location or forecast")
	}
	if len(resp.Forecast.ForecastDay) == 0 {
		return nil, malformed("empty forecast")
	}

	cur := resp.Current
	weather := &model.Weather{
		Current: model.CurrentWeather{
			Temp:      roundTemp(cur.TempC),
			FeelsLike: roundTemp(cur.FeelsLikeC),
			Humidity:  cur.Humidity,
			WindSpeed: cur.WindKph,
			Condition: cur.Condition.Text,
			Icon:      WeatherIcon(cur.Condition.Text),
		},
		Locations: []model.WeatherLocation{{
			Name:      resp.Location.Name,
			Temp:      roundTemp(cur.TempC),
			Condition: cur.Condition.Text,
			Icon:      WeatherIcon(cur.Condition.Text),
		}},
	}

	hours := resp.Forecast.ForecastDay[0].Hour
	if len(hours) > hourlyPoints {
		hours = hours[:hourlyPoints]
	}
	weather.Hourly = make([]model.HourlyWeather, 0, len(hours))
	for _, h := range hours {
		t, err := time.Parse(weatherHourLayout, h.Time)
		if err != nil {
			return nil, malformed("hour time %q", h.Time)
		}
		weather.Hourly = append(weather.Hourly, model.HourlyWeather{
			Time: t.Format("3 PM"),
			Temp: roundTemp(h.TempC),
			Icon: WeatherIcon(h.Condition.Text),
		})
	}

	weather.Daily = make([]model.DailyWeather, 0, len(resp.Forecast.ForecastDay))
	for _, d := range resp.Forecast.ForecastDay {
		t, err := time.Parse(weatherDayLayout, d.Date)
		if err != nil {
			return nil, malformed("forecast date %q", d.Date)
		}
		weather.Daily = append(weather.Daily, model.DailyWeather{
			Day:  t.Format("Mon"),
			High: roundTemp(d.Day.MaxTempC),
			Low:  roundTemp(d.Day.MinTempC),
			Icon: WeatherIcon(d.Day.Condition.Text),
		})
	}

	return weather, nil
}

// WeatherIcon maps a provider condition text to an icon key.
// Matching is case-sensitive and checked in a fixed order; unknown text is cloud.
func WeatherIcon(condition string) string {
	switch {
	case strings.Contains(condition, "Cloud"):
		return model.IconCloud
	case strings.Contains(condition, "Rain"):
		return model.IconRain
	case strings.Contains(condition, "Drizzle"):
		return model.IconDrizzle
	case strings.Contains(condition, "Snow"):
		return model.IconSnow
	case strings.Contains(condition, "Clear"):
		return model.IconSun
	default:
		return model.IconCloud
	}
}

// roundTemp rounds half up, so -2.5 becomes -2.
func roundTemp(c float64) int {
	return int(math.Floor(c + 0.5))
}

type currentResponse struct {
	Current *struct {
		TempC      float64          `json:"temp_c"`
		FeelsLikeC float64          `json:"feelslike_c"`
		Humidity   int              `json:"humidity"`
		WindKph    float64          `json:"wind_kph"`
		Condition  weatherCondition `json:"condition"`
	} `json:"current"`
}

// Current returns current conditions only, or nil. It is a single cheap
// call used by the overview.
func (f *WeatherFetcher) Current(ctx context.Context, lat, lon float64) *model.CurrentWeather {
	const unit = "current"

	if f.apiKey == "" {
		f.up.drop(ctx, unit, ErrNotConfigured)
		return nil
	}

	q := url.Values{}
	q.Set("key", f.apiKey)
	q.Set("q", fmt.Sprintf("%g,%g", lat, lon))

	var resp currentResponse
	if err := f.up.getJSON(ctx, unit, f.baseURL+"/current.json?"+q.Encode(), nil, &resp); err != nil {
		f.up.drop(ctx, unit, err)
		return nil
	}
	if resp.Current == nil {
		f.up.drop(ctx, unit, &UpstreamError{Provider: ProviderWeather, Unit: unit, Status: 200, Err: malformed("missing current")})
		return nil
	}

	cur := resp.Current
	return &model.CurrentWeather{
		Temp:      roundTemp(cur.TempC),
		FeelsLike: roundTemp(cur.FeelsLikeC),
		Humidity:  cur.Humidity,
		WindSpeed: cur.WindKph,
		Condition: cur.Condition.Text,
		Icon:      WeatherIcon(cur.Condition.Text),
	}
}
