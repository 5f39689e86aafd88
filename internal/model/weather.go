package model

// Weather condition icon keys.
const (
	IconCloud   = "cloud"
	IconRain    = "rain"
	IconDrizzle = "drizzle"
	IconSnow    = "snow"
	IconSun     = "sun"
)

// CurrentWeather holds current conditions. Temperatures are whole degrees Celsius.
type CurrentWeather struct {
	Temp      int     `json:"temp"`
	FeelsLike int     `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	WindSpeed float64 `json:"wind_speed"`
	Condition string  `json:"weather"`
	Icon      string  `json:"icon"`
}

// HourlyWeather is one hourly forecast point.
type HourlyWeather struct {
	Time string `json:"time"`
	Temp int    `json:"temp"`
	Icon string `json:"icon"`
}

// DailyWeather is one daily forecast point.
type DailyWeather struct {
	Day  string `json:"day"`
	High int    `json:"high"`
	Low  int    `json:"low"`
	Icon string `json:"icon"`
}

// WeatherLocation summarizes conditions at a named place.
type WeatherLocation struct {
	Name      string `json:"name"`
	Temp      int    `json:"temp"`
	Condition string `json:"weather"`
	Icon      string `json:"icon"`
}

// Weather is the weather dashboard snapshot.
type Weather struct {
	Current   CurrentWeather    `json:"current"`
	Hourly    []HourlyWeather   `json:"hourly"`
	Daily     []DailyWeather    `json:"daily"`
	Locations []WeatherLocation `json:"locations"`
}
