// Package ipapi implements a client for the ip-api.com geolocation API.
// This package serves as a secondary adapter, translating IP lookups into
// provider calls and converting responses back to port types.
package ipapi

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

// Client implements the GeoClient interface against ip-api.com's free
// JSON endpoint.
type Client struct {
	// baseURL is the provider base endpoint
	baseURL string

	// httpClient handles HTTP communication with timeout configuration
	httpClient *http.Client

	// logger records API interactions and errors
	logger *zap.Logger
}

// NewClient creates a new geolocation API client.
//
// Parameters:
//   - baseURL: provider base URL (typically http://ip-api.com)
//   - httpClient: HTTP client with timeout configuration
//   - logger: Zap logger for API interaction logging
//
// Returns:
//   - *Client: Configured geolocation client
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// lookupResponse represents the provider's JSON payload. Status is
// "success" or "fail"; Message carries the failure reason.
type lookupResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Lookup resolves an IP address to an approximate location.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - ip: Routable IP address to resolve
//
// Returns:
//   - *ports.GeoResult: Resolved city, country, and coordinates
//   - error: HTTP error, non-200 status, or provider "fail" status
func (c *Client) Lookup(ctx context.Context, ip string) (*ports.GeoResult, error) {
	endpoint := fmt.Sprintf("%s/json/%s", c.baseURL, url.PathEscape(ip))
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
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var payload lookupResponse

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if payload.Status != "success" {
		return nil, fmt.Errorf("geolocation lookup failed: %s", payload.Message)
	}

	return &ports.GeoResult{
		City:        payload.City,
		Country:     payload.Country,
		CountryCode: payload.CountryCode,
		Lat:         payload.Lat,
		Lon:         payload.Lon,
	}, nil
}
