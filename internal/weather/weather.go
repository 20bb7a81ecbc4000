// Package weather looks up current conditions for a coordinate so the
// recommendation service can pick clothes for the actual weather.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"

// Conditions is a snapshot of the weather at one place.
type Conditions struct {
	TemperatureC float64 `json:"temperature_celsius"`
	Condition    string  `json:"condition"` // Clear, Rain, Snow, Clouds...
}

// Provider returns the current conditions at a coordinate.
type Provider interface {
	Current(ctx context.Context, lat, lon float64) (Conditions, error)
}

// New returns an OpenWeatherMap client, or the offline Mock when apiKey
// is empty.
func New(apiKey string) Provider {
	if apiKey == "" {
		slog.Warn("OPENWEATHERMAP_API_KEY not set, using mocked weather data")
		return Mock{}
	}
	return NewOpenWeatherMap(apiKey, "")
}

// OpenWeatherMap queries the OpenWeatherMap current weather API.
type OpenWeatherMap struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOpenWeatherMap creates a client.  An empty endpoint selects the
// public API.
func NewOpenWeatherMap(apiKey, endpoint string) *OpenWeatherMap {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &OpenWeatherMap{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type owmResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// Current fetches conditions in metric units.
func (o *OpenWeatherMap) Current(ctx context.Context, lat, lon float64) (Conditions, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", o.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("weather: build request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Conditions{}, fmt.Errorf("weather: api returned status %d: %s", resp.StatusCode, string(body))
	}
	var r owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Conditions{}, fmt.Errorf("weather: decode response: %w", err)
	}
	c := Conditions{TemperatureC: r.Main.Temp}
	if len(r.Weather) > 0 {
		c.Condition = r.Weather[0].Main
	}
	return c, nil
}

// Mock answers without network access.  A few fixed coordinates give
// distinct weather for tests and demos.
type Mock struct{}

// Current returns canned conditions: (10,10) snow, (20,20) rain, (0,0)
// warm and clear, anywhere else mild and clear.
func (Mock) Current(_ context.Context, lat, lon float64) (Conditions, error) {
	switch {
	case lat == 10 && lon == 10:
		return Conditions{TemperatureC: 5, Condition: "Snow"}, nil
	case lat == 20 && lon == 20:
		return Conditions{TemperatureC: 15, Condition: "Rain"}, nil
	case lat == 0 && lon == 0:
		return Conditions{TemperatureC: 25, Condition: "Clear"}, nil
	}
	return Conditions{TemperatureC: 22, Condition: "Clear"}, nil
}
