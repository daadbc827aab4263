package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"agrisense-http-service/config"
)

// WeatherSnapshot is a normalized current-conditions reading from a single
// provider. Optional fields are pointers so absence is distinguishable from
// zero when averaging.
type WeatherSnapshot struct {
	Temperature   float64     `json:"temperature"`
	FeelsLike     *float64    `json:"feelsLike,omitempty"`
	Humidity      float64     `json:"humidity"`
	WindSpeed     float64     `json:"windSpeed"`
	WindDirection string      `json:"windDirection,omitempty"`
	CloudCover    *float64    `json:"cloudCover,omitempty"`
	Precipitation *float64    `json:"precipitation,omitempty"`
	Pressure      *float64    `json:"pressure,omitempty"`
	Visibility    *float64    `json:"visibility,omitempty"`
	UVIndex       *float64    `json:"uvIndex,omitempty"`
	Condition     string      `json:"condition,omitempty"`
	Icon          string      `json:"icon,omitempty"`
	Location      string      `json:"location,omitempty"`
	Country       string      `json:"country,omitempty"`
	AirQuality    *AirQuality `json:"airQuality,omitempty"`
	Source        string      `json:"source"`
}

// AirQuality carries the US EPA index plus particulate readings
type AirQuality struct {
	AQI      int     `json:"aqi"`
	PM25     float64 `json:"pm25"`
	PM10     float64 `json:"pm10"`
	Category string  `json:"category,omitempty"`
}

// ProviderForecastDay is one normalized day of a provider forecast
type ProviderForecastDay struct {
	Date          string
	TempMax       float64
	TempMin       float64
	Precipitation float64 // chance of rain, percent
	Humidity      *float64
	WindSpeed     float64
	Condition     string
	Icon          string
}

// WeatherProvider abstracts one upstream weather source. Implementations
// return an error on any failure; the aggregator decides what to do with
// partial results.
type WeatherProvider interface {
	Name() string
	FetchCurrent(ctx context.Context, lat, lon string) (*WeatherSnapshot, error)
	FetchForecast(ctx context.Context, lat, lon string) ([]ProviderForecastDay, error)
}

// newProviderClient builds the shared outbound HTTP client. A single
// attempt per provider per call; the timeout is the only cancellation.
func newProviderClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func fetchJSON(ctx context.Context, client *http.Client, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

// ---------------------------------------------------------------------------
// WeatherAPI (weatherapi.com)
// ---------------------------------------------------------------------------

type weatherAPIProvider struct {
	key     string
	baseURL string
	client  *http.Client
}

// NewWeatherAPIProvider creates the WeatherAPI adapter
func NewWeatherAPIProvider(cfg *config.Config, client *http.Client) WeatherProvider {
	return &weatherAPIProvider{
		key:     cfg.WeatherAPIKey,
		baseURL: cfg.WeatherAPIURL,
		client:  client,
	}
}

func (p *weatherAPIProvider) Name() string { return "WeatherAPI" }

type weatherAPICurrentResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		FeelsLike float64 `json:"feelslike_c"`
		Humidity  float64 `json:"humidity"`
		WindKph   float64 `json:"wind_kph"`
		WindDir   string  `json:"wind_dir"`
		Pressure  float64 `json:"pressure_mb"`
		VisKm     float64 `json:"vis_km"`
		UV        float64 `json:"uv"`
		Cloud     float64 `json:"cloud"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
		AirQuality map[string]float64 `json:"air_quality"`
	} `json:"current"`
}

func (p *weatherAPIProvider) FetchCurrent(ctx context.Context, lat, lon string) (*WeatherSnapshot, error) {
	u := fmt.Sprintf("%s/current.json?key=%s&q=%s,%s&aqi=yes", p.baseURL, url.QueryEscape(p.key), lat, lon)

	var data weatherAPICurrentResponse
	if err := fetchJSON(ctx, p.client, u, &data); err != nil {
		return nil, fmt.Errorf("weatherapi current: %w", err)
	}

	cur := data.Current
	snapshot := &WeatherSnapshot{
		Temperature:   cur.TempC,
		FeelsLike:     &cur.FeelsLike,
		Humidity:      cur.Humidity,
		WindSpeed:     cur.WindKph,
		WindDirection: cur.WindDir,
		CloudCover:    &cur.Cloud,
		Pressure:      &cur.Pressure,
		Visibility:    &cur.VisKm,
		UVIndex:       &cur.UV,
		Condition:     cur.Condition.Text,
		Icon:          cur.Condition.Icon,
		Location:      data.Location.Name,
		Country:       data.Location.Country,
		Source:        p.Name(),
	}

	if aq := cur.AirQuality; len(aq) > 0 {
		epa := aq["us-epa-index"]
		if epa < 1 {
			epa = 1
		}
		snapshot.AirQuality = &AirQuality{
			AQI:  int(epa + 0.5),
			PM25: aq["pm2_5"],
			PM10: aq["pm10"],
		}
	}

	return snapshot, nil
}

type weatherAPIForecastResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC     float64 `json:"maxtemp_c"`
				MinTempC     float64 `json:"mintemp_c"`
				ChanceOfRain float64 `json:"daily_chance_of_rain"`
				AvgHumidity  float64 `json:"avghumidity"`
				MaxWindKph   float64 `json:"maxwind_kph"`
				Condition    struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *weatherAPIProvider) FetchForecast(ctx context.Context, lat, lon string) ([]ProviderForecastDay, error) {
	u := fmt.Sprintf("%s/forecast.json?key=%s&q=%s,%s&days=7&aqi=no", p.baseURL, url.QueryEscape(p.key), lat, lon)

	var data weatherAPIForecastResponse
	if err := fetchJSON(ctx, p.client, u, &data); err != nil {
		return nil, fmt.Errorf("weatherapi forecast: %w", err)
	}

	days := make([]ProviderForecastDay, 0, len(data.Forecast.ForecastDay))
	for _, fd := range data.Forecast.ForecastDay {
		humidity := fd.Day.AvgHumidity
		days = append(days, ProviderForecastDay{
			Date:          fd.Date,
			TempMax:       fd.Day.MaxTempC,
			TempMin:       fd.Day.MinTempC,
			Precipitation: fd.Day.ChanceOfRain,
			Humidity:      &humidity,
			WindSpeed:     fd.Day.MaxWindKph,
			Condition:     fd.Day.Condition.Text,
			Icon:          fd.Day.Condition.Icon,
		})
	}
	return days, nil
}

// ---------------------------------------------------------------------------
// Open-Meteo (open-meteo.com, no API key)
// ---------------------------------------------------------------------------

type openMeteoProvider struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteoProvider creates the Open-Meteo adapter
func NewOpenMeteoProvider(cfg *config.Config, client *http.Client) WeatherProvider {
	return &openMeteoProvider{
		baseURL: cfg.OpenMeteoURL,
		client:  client,
	}
}

func (p *openMeteoProvider) Name() string { return "Open-Meteo" }

type openMeteoCurrentResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		FeelsLike     float64 `json:"apparent_temperature"`
		Precipitation float64 `json:"precipitation"`
		CloudCover    float64 `json:"cloud_cover"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
	} `json:"current"`
}

func (p *openMeteoProvider) FetchCurrent(ctx context.Context, lat, lon string) (*WeatherSnapshot, error) {
	u := fmt.Sprintf("%s/forecast?latitude=%s&longitude=%s&current=temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,cloud_cover,wind_speed_10m,wind_direction_10m&timezone=auto",
		p.baseURL, lat, lon)

	var data openMeteoCurrentResponse
	if err := fetchJSON(ctx, p.client, u, &data); err != nil {
		return nil, fmt.Errorf("open-meteo current: %w", err)
	}

	cur := data.Current
	return &WeatherSnapshot{
		Temperature:   cur.Temperature,
		FeelsLike:     &cur.FeelsLike,
		Humidity:      cur.Humidity,
		WindSpeed:     cur.WindSpeed,
		WindDirection: CompassDirection(cur.WindDirection),
		CloudCover:    &cur.CloudCover,
		Precipitation: &cur.Precipitation,
		Source:        p.Name(),
	}, nil
}

type openMeteoForecastResponse struct {
	Daily struct {
		Time          []string  `json:"time"`
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		PrecipProbMax []float64 `json:"precipitation_probability_max"`
		WindSpeedMax  []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func (p *openMeteoProvider) FetchForecast(ctx context.Context, lat, lon string) ([]ProviderForecastDay, error) {
	u := fmt.Sprintf("%s/forecast?latitude=%s&longitude=%s&daily=temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_speed_10m_max&timezone=auto",
		p.baseURL, lat, lon)

	var data openMeteoForecastResponse
	if err := fetchJSON(ctx, p.client, u, &data); err != nil {
		return nil, fmt.Errorf("open-meteo forecast: %w", err)
	}

	daily := data.Daily
	n := len(daily.Time)
	if n > 7 {
		n = 7
	}

	days := make([]ProviderForecastDay, 0, n)
	for i := 0; i < n; i++ {
		day := ProviderForecastDay{Date: daily.Time[i]}
		if i < len(daily.TempMax) {
			day.TempMax = daily.TempMax[i]
		}
		if i < len(daily.TempMin) {
			day.TempMin = daily.TempMin[i]
		}
		if i < len(daily.PrecipProbMax) {
			day.Precipitation = daily.PrecipProbMax[i]
		}
		if i < len(daily.WindSpeedMax) {
			day.WindSpeed = daily.WindSpeedMax[i]
		}
		days = append(days, day)
	}
	return days, nil
}

// ---------------------------------------------------------------------------
// OpenWeatherMap (openweathermap.org). Current conditions only; registered
// as a third averaging source when OPENWEATHER_API_KEY is set.
// ---------------------------------------------------------------------------

type openWeatherProvider struct {
	key     string
	baseURL string
	client  *http.Client
}

// NewOpenWeatherProvider creates the OpenWeatherMap adapter
func NewOpenWeatherProvider(cfg *config.Config, client *http.Client) WeatherProvider {
	return &openWeatherProvider{
		key:     cfg.OpenWeatherKey,
		baseURL: cfg.OpenWeatherURL,
		client:  client,
	}
}

func (p *openWeatherProvider) Name() string { return "OpenWeatherMap" }

type openWeatherCurrentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s in metric units
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Name string `json:"name"`
}

func (p *openWeatherProvider) FetchCurrent(ctx context.Context, lat, lon string) (*WeatherSnapshot, error) {
	u := fmt.Sprintf("%s/weather?lat=%s&lon=%s&units=metric&appid=%s", p.baseURL, lat, lon, url.QueryEscape(p.key))

	var data openWeatherCurrentResponse
	if err := fetchJSON(ctx, p.client, u, &data); err != nil {
		return nil, fmt.Errorf("openweathermap current: %w", err)
	}

	condition := ""
	if len(data.Weather) > 0 {
		condition = data.Weather[0].Main
	}

	windKph := data.Wind.Speed * 3.6
	return &WeatherSnapshot{
		Temperature:   data.Main.Temp,
		FeelsLike:     &data.Main.FeelsLike,
		Humidity:      data.Main.Humidity,
		WindSpeed:     windKph,
		WindDirection: CompassDirection(data.Wind.Deg),
		CloudCover:    &data.Clouds.All,
		Pressure:      &data.Main.Pressure,
		Condition:     condition,
		Location:      data.Name,
		Source:        p.Name(),
	}, nil
}

func (p *openWeatherProvider) FetchForecast(ctx context.Context, lat, lon string) ([]ProviderForecastDay, error) {
	// Daily forecasts need the paid One Call plan; the merged forecast uses
	// WeatherAPI and Open-Meteo only.
	return nil, fmt.Errorf("openweathermap: daily forecast not supported")
}

// CompassDirection converts wind degrees to a 16-point compass label
func CompassDirection(deg float64) string {
	directions := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	idx := int(deg/22.5+0.5) % 16
	if idx < 0 {
		idx += 16
	}
	return directions[idx]
}
