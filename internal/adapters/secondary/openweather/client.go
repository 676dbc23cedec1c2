// Package openweather implements a client for the OpenWeatherMap
// current-conditions API. This package serves as a secondary adapter,
// translating coordinate lookups into provider calls and mapping the
// response back to port types.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/ports"
)

// Client implements the WeatherClient interface for OpenWeatherMap.
type Client struct {
	// baseURL is the provider base endpoint
	baseURL string

	// apiKey authenticates requests to the provider
	apiKey string

	// httpClient handles HTTP communication with timeout configuration
	httpClient *http.Client

	// logger records API interactions and errors
	logger *zap.Logger
}

// NewClient creates a new OpenWeatherMap client.
//
// Parameters:
//   - baseURL: provider base URL (typically https://api.openweathermap.org)
//   - apiKey: OpenWeatherMap API credential
//   - httpClient: HTTP client with timeout configuration
//   - logger: Zap logger for API interaction logging
//
// Returns:
//   - *Client: Configured weather client
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// currentResponse represents the subset of the provider's current-weather
// payload the service maps into a domain Weather.
type currentResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// CurrentConditions retrieves current weather for the coordinates,
// requesting metric units so temperatures arrive in Celsius.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - lat, lon: Geographic coordinates
//
// Returns:
//   - *ports.WeatherObservation: Raw observation prior to rounding
//   - error: HTTP error, non-200 status, or empty conditions array
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64) (*ports.WeatherObservation, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	endpoint := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "StylistService/1.0")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()

		if err != nil {
			c.logger.Error("failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload currentResponse

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("no weather conditions in response")
	}

	return &ports.WeatherObservation{
		LocationName: payload.Name,
		CountryCode:  payload.Sys.Country,
		Condition:    payload.Weather[0].Main,
		Description:  payload.Weather[0].Description,
		Temperature:  payload.Main.Temp,
		FeelsLike:    payload.Main.FeelsLike,
		MinTemp:      payload.Main.TempMin,
		MaxTemp:      payload.Main.TempMax,
		Humidity:     payload.Main.Humidity,
		Pressure:     payload.Main.Pressure,
		WindSpeed:    payload.Wind.Speed,
	}, nil
}
