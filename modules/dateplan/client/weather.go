package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/modules/dateplan/entity"
)

// WeatherProvider returns a forecast for a location over the next days.
type WeatherProvider interface {
	Name() string
	GetForecast(ctx context.Context, location string, days int) (*entity.Forecast, error)
}

// OpenWeather forecasts come in 3-hour steps for at most five days.
const (
	openWeatherStepsPerDay = 8
	openWeatherMaxDays     = 5
)

type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenWeatherClient(apiKey, baseURL string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: constants.DefaultTimeout},
	}
}

func (c *OpenWeatherClient) Name() string { return "openweather" }

type openWeatherResponse struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

func (c *OpenWeatherClient) GetForecast(ctx context.Context, location string, days int) (*entity.Forecast, error) {
	days = max(1, min(days, openWeatherMaxDays))

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("cnt", fmt.Sprint(days*openWeatherStepsPerDay))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweather returned status %d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode openweather response: %w", err)
	}

	forecast := &entity.Forecast{}
	for _, item := range body.List {
		desc := ""
		if len(item.Weather) > 0 {
			desc = item.Weather[0].Description
		}
		forecast.Details = append(forecast.Details, entity.ForecastEntry{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Description: desc,
			TempC:       item.Main.Temp,
		})
	}
	if len(forecast.Details) == 0 {
		return nil, fmt.Errorf("openweather returned no forecast for %q", location)
	}

	city := body.City.Name
	if city == "" {
		city = location
	}
	forecast.Summary = summarizeForecast(city, forecast.Details)
	return forecast, nil
}

// summarizeForecast keeps the midday-most entry of each day.
func summarizeForecast(city string, details []entity.ForecastEntry) string {
	type pick struct {
		entry entity.ForecastEntry
		dist  int
	}
	var order []string
	daily := map[string]pick{}
	for _, d := range details {
		day := d.Time.Format("Mon Jan 02")
		dist := abs(d.Time.Hour() - 12)
		p, ok := daily[day]
		if !ok {
			order = append(order, day)
		}
		if !ok || dist < p.dist {
			daily[day] = pick{entry: d, dist: dist}
		}
	}

	parts := make([]string, 0, len(order))
	for _, day := range order {
		e := daily[day].entry
		parts = append(parts, fmt.Sprintf("%s: %s, %.0f°C", day, e.Description, e.TempC))
	}
	return fmt.Sprintf("%s - %s", city, strings.Join(parts, "; "))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type MockWeatherClient struct{}

func NewMockWeatherClient() *MockWeatherClient { return &MockWeatherClient{} }

func (c *MockWeatherClient) Name() string { return "mock_weather" }

func (c *MockWeatherClient) GetForecast(_ context.Context, location string, days int) (*entity.Forecast, error) {
	return &entity.Forecast{Summary: fmt.Sprintf("Always Sunny in Mockland (%s, next %d days)", location, days)}, nil
}
