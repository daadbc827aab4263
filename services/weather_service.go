package services

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"agrisense-http-service/config"
)

// CurrentWeather is the merged multi-source payload served to clients
type CurrentWeather struct {
	Temperature   float64     `json:"temperature"`
	FeelsLike     float64     `json:"feelsLike"`
	Humidity      float64     `json:"humidity"`
	WindSpeed     float64     `json:"windSpeed"`
	WindDirection string      `json:"windDirection"`
	Pressure      float64     `json:"pressure"`
	Visibility    float64     `json:"visibility"`
	UVIndex       float64     `json:"uvIndex"`
	CloudCover    float64     `json:"cloudCover"`
	DewPoint      float64     `json:"dewPoint"`
	Condition     string      `json:"condition"`
	Icon          string      `json:"icon"`
	Location      string      `json:"location"`
	Country       string      `json:"country,omitempty"`
	LastUpdated   string      `json:"lastUpdated"`
	AirQuality    *AirQuality `json:"airQuality,omitempty"`
	DataSources   []string    `json:"dataSources"`
	SourceCount   int         `json:"sourceCount"`
	IsFallback    bool        `json:"isFallback,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// ForecastDay is one merged day of the 7-day forecast
type ForecastDay struct {
	Day           string   `json:"day"`
	Date          string   `json:"date"`
	TempMax       float64  `json:"tempMax"`
	TempMin       float64  `json:"tempMin"`
	Precipitation float64  `json:"precipitation"`
	Humidity      float64  `json:"humidity"`
	WindSpeed     float64  `json:"windSpeed"`
	Condition     string   `json:"condition"`
	Icon          string   `json:"icon"`
	Color         string   `json:"color"`
	DataSources   []string `json:"dataSources"`
	IsFallback    bool     `json:"isFallback,omitempty"`
}

// WeatherServiceInterface aggregates multiple upstream providers into a
// single merged reading. Both methods always return a payload; total
// upstream failure yields a fallback marked IsFallback.
type WeatherServiceInterface interface {
	GetCurrent(ctx context.Context, lat, lon, city string) *CurrentWeather
	GetForecast(ctx context.Context, lat, lon string) []ForecastDay
}

// WeatherService implements WeatherServiceInterface. Provider order is the
// condition priority: the first provider reporting a non-empty condition
// string wins.
type WeatherService struct {
	providers []WeatherProvider
	config    *config.Config
}

// NewWeatherService builds the aggregator with the default provider set.
// OpenWeatherMap is only registered when its API key is configured.
func NewWeatherService(cfg *config.Config) *WeatherService {
	client := newProviderClient()
	providers := []WeatherProvider{
		NewWeatherAPIProvider(cfg, client),
		NewOpenMeteoProvider(cfg, client),
	}
	if cfg.OpenWeatherKey != "" {
		providers = append(providers, NewOpenWeatherProvider(cfg, client))
	}
	return &WeatherService{providers: providers, config: cfg}
}

// NewWeatherServiceWithProviders builds an aggregator over an explicit
// provider list
func NewWeatherServiceWithProviders(cfg *config.Config, providers ...WeatherProvider) *WeatherService {
	return &WeatherService{providers: providers, config: cfg}
}

// GetCurrent fans out to every provider concurrently and merges whatever
// survives. Individual failures are logged and skipped.
func (s *WeatherService) GetCurrent(ctx context.Context, lat, lon, city string) *CurrentWeather {
	snapshots := make([]*WeatherSnapshot, len(s.providers))

	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p WeatherProvider) {
			defer wg.Done()
			snap, err := p.FetchCurrent(ctx, lat, lon)
			if err != nil {
				config.Warning("Weather provider %s failed: %v", p.Name(), err)
				return
			}
			snapshots[i] = snap
		}(i, p)
	}
	wg.Wait()

	ok := make([]*WeatherSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap != nil {
			ok = append(ok, snap)
		}
	}

	if len(ok) == 0 {
		config.Error("All weather providers failed for %s,%s", lat, lon)
		return &CurrentWeather{
			Temperature: 0,
			Condition:   "Unavailable",
			Location:    city,
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
			DataSources: []string{},
			IsFallback:  true,
			Error:       "weather data temporarily unavailable",
		}
	}

	return mergeCurrent(ok, city)
}

// mergeCurrent averages numeric fields over the sources that report them
// and resolves descriptive fields by provider priority
func mergeCurrent(snapshots []*WeatherSnapshot, city string) *CurrentWeather {
	merged := &CurrentWeather{
		Temperature: avg(snapshots, func(s *WeatherSnapshot) (float64, bool) { return s.Temperature, true }),
		Humidity:    avg(snapshots, func(s *WeatherSnapshot) (float64, bool) { return s.Humidity, true }),
		WindSpeed:   avg(snapshots, func(s *WeatherSnapshot) (float64, bool) { return s.WindSpeed, true }),
		Pressure:    1013,
		Visibility:  10,
		Location:    city,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		SourceCount: len(snapshots),
	}

	merged.FeelsLike = merged.Temperature
	if v, found := avgPtr(snapshots, func(s *WeatherSnapshot) *float64 { return s.FeelsLike }); found {
		merged.FeelsLike = v
	}
	if v, found := avgPtr(snapshots, func(s *WeatherSnapshot) *float64 { return s.CloudCover }); found {
		merged.CloudCover = v
	}
	if v, found := avgPtr(snapshots, func(s *WeatherSnapshot) *float64 { return s.Pressure }); found {
		merged.Pressure = v
	}
	if v, found := avgPtr(snapshots, func(s *WeatherSnapshot) *float64 { return s.Visibility }); found {
		merged.Visibility = v
	}
	if v, found := avgPtr(snapshots, func(s *WeatherSnapshot) *float64 { return s.UVIndex }); found {
		merged.UVIndex = v
	}

	merged.DewPoint = DewPoint(merged.Temperature, merged.Humidity)

	// Descriptive fields come from the first source that reports them
	merged.Condition = "Partly Cloudy"
	for _, snap := range snapshots {
		if snap.Condition != "" {
			merged.Condition = snap.Condition
			break
		}
	}
	for _, snap := range snapshots {
		if snap.Icon != "" {
			merged.Icon = snap.Icon
			break
		}
	}
	if merged.Icon == "" {
		merged.Icon = ConditionIcon(merged.Condition)
	}
	for _, snap := range snapshots {
		if snap.WindDirection != "" {
			merged.WindDirection = snap.WindDirection
			break
		}
	}
	for _, snap := range snapshots {
		if snap.Location != "" {
			merged.Location = snap.Location
			merged.Country = snap.Country
			break
		}
	}
	for _, snap := range snapshots {
		if snap.AirQuality != nil {
			aq := *snap.AirQuality
			aq.Category = AQICategory(aq.AQI)
			merged.AirQuality = &aq
			break
		}
	}

	merged.DataSources = make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		merged.DataSources = append(merged.DataSources, snap.Source)
	}

	merged.Temperature = round1(merged.Temperature)
	merged.FeelsLike = round1(merged.FeelsLike)
	merged.Humidity = round1(merged.Humidity)
	merged.WindSpeed = round1(merged.WindSpeed)
	merged.DewPoint = round1(merged.DewPoint)
	merged.CloudCover = round1(merged.CloudCover)

	return merged
}

// GetForecast merges the daily forecasts of WeatherAPI and Open-Meteo by
// day index. Days reported by only one source pass through unaveraged.
func (s *WeatherService) GetForecast(ctx context.Context, lat, lon string) []ForecastDay {
	results := make([][]ProviderForecastDay, len(s.providers))
	names := make([]string, len(s.providers))

	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p WeatherProvider) {
			defer wg.Done()
			days, err := p.FetchForecast(ctx, lat, lon)
			if err != nil {
				config.Warning("Forecast provider %s failed: %v", p.Name(), err)
				return
			}
			results[i] = days
			names[i] = p.Name()
		}(i, p)
	}
	wg.Wait()

	maxLen := 0
	for _, days := range results {
		if len(days) > maxLen {
			maxLen = len(days)
		}
	}
	if maxLen > 7 {
		maxLen = 7
	}

	if maxLen == 0 {
		config.Error("All forecast providers failed for %s,%s", lat, lon)
		return fallbackForecast()
	}

	merged := make([]ForecastDay, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		var (
			tempMax, tempMin, precip, humidity, wind float64
			nVal, nHum                               int
			condition, icon, date                    string
			sources                                  []string
		)
		for j, days := range results {
			if i >= len(days) {
				continue
			}
			day := days[i]
			tempMax += day.TempMax
			tempMin += day.TempMin
			precip += day.Precipitation
			wind += day.WindSpeed
			nVal++
			if day.Humidity != nil {
				humidity += *day.Humidity
				nHum++
			}
			if condition == "" && day.Condition != "" {
				condition = day.Condition
				icon = day.Icon
			}
			if date == "" {
				date = day.Date
			}
			sources = append(sources, names[j])
		}

		n := float64(nVal)
		day := ForecastDay{
			Day:           dayLabel(i, date),
			Date:          date,
			TempMax:       round1(tempMax / n),
			TempMin:       round1(tempMin / n),
			Precipitation: round1(precip / n),
			WindSpeed:     round1(wind / n),
			Condition:     condition,
			Icon:          icon,
			DataSources:   sources,
		}
		if nHum > 0 {
			day.Humidity = round1(humidity / float64(nHum))
		}
		if day.Condition == "" {
			day.Condition = conditionFromPrecip(day.Precipitation)
		}
		if day.Icon == "" {
			day.Icon = ConditionIcon(day.Condition)
		}
		day.Color = ConditionColor(day.Condition)
		merged = append(merged, day)
	}

	return merged
}

// fallbackForecast is served when every forecast source fails
func fallbackForecast() []ForecastDay {
	days := make([]ForecastDay, 0, 7)
	now := time.Now()
	for i := 0; i < 7; i++ {
		date := now.AddDate(0, 0, i).Format("2006-01-02")
		days = append(days, ForecastDay{
			Day:         dayLabel(i, date),
			Date:        date,
			Condition:   "Unavailable",
			Icon:        ConditionIcon(""),
			Color:       ConditionColor(""),
			DataSources: []string{},
			IsFallback:  true,
		})
	}
	return days
}

func dayLabel(index int, date string) string {
	switch index {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Weekday().String()
	}
	return time.Now().AddDate(0, 0, index).Weekday().String()
}

func conditionFromPrecip(precipitation float64) string {
	switch {
	case precipitation > 70:
		return "Rainy"
	case precipitation > 40:
		return "Scattered Showers"
	default:
		return "Partly Cloudy"
	}
}

// DewPoint applies the Magnus approximation
func DewPoint(tempC, humidity float64) float64 {
	if humidity <= 0 {
		return tempC
	}
	const a, b = 17.27, 237.7
	alpha := (a*tempC)/(b+tempC) + math.Log(humidity/100)
	return (b * alpha) / (a - alpha)
}

// AQICategory maps the US EPA index (1-6) to a display label
func AQICategory(aqi int) string {
	switch {
	case aqi <= 1:
		return "Good"
	case aqi == 2:
		return "Moderate"
	case aqi == 3:
		return "Unhealthy for Sensitive Groups"
	case aqi == 4:
		return "Unhealthy"
	case aqi == 5:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

// ConditionIcon maps a condition string to an emoji icon
func ConditionIcon(condition string) string {
	c := strings.ToLower(condition)
	switch {
	case strings.Contains(c, "thunder") || strings.Contains(c, "storm"):
		return "⛈️"
	case strings.Contains(c, "rain") || strings.Contains(c, "drizzle") || strings.Contains(c, "shower"):
		return "🌧️"
	case strings.Contains(c, "snow") || strings.Contains(c, "sleet"):
		return "🌨️"
	case strings.Contains(c, "fog") || strings.Contains(c, "mist") || strings.Contains(c, "haze"):
		return "🌫️"
	case strings.Contains(c, "clear") || strings.Contains(c, "sunny"):
		return "☀️"
	case strings.Contains(c, "cloud") || strings.Contains(c, "overcast"):
		return "⛅"
	default:
		return "🌤️"
	}
}

// ConditionColor maps a condition string to a UI accent color
func ConditionColor(condition string) string {
	c := strings.ToLower(condition)
	switch {
	case strings.Contains(c, "thunder") || strings.Contains(c, "storm"):
		return "#7c3aed"
	case strings.Contains(c, "rain") || strings.Contains(c, "drizzle") || strings.Contains(c, "shower"):
		return "#3b82f6"
	case strings.Contains(c, "snow"):
		return "#93c5fd"
	case strings.Contains(c, "clear") || strings.Contains(c, "sunny"):
		return "#f59e0b"
	case strings.Contains(c, "cloud") || strings.Contains(c, "overcast"):
		return "#94a3b8"
	default:
		return "#60a5fa"
	}
}

func avg(snapshots []*WeatherSnapshot, pick func(*WeatherSnapshot) (float64, bool)) float64 {
	var sum float64
	var n int
	for _, snap := range snapshots {
		if v, ok := pick(snap); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func avgPtr(snapshots []*WeatherSnapshot, pick func(*WeatherSnapshot) *float64) (float64, bool) {
	var sum float64
	var n int
	for _, snap := range snapshots {
		if v := pick(snap); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
