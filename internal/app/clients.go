package app

import (
	"context"

	"github.com/fashionai/stylist-service/internal/core/ports"
	"github.com/fashionai/stylist-service/internal/infrastructure/circuitbreaker"
)

// CircuitBreakerGeoClient wraps a GeoClient with circuit breaker
// protection. A flapping geolocation provider trips the breaker and the
// location service falls back to the default city until it recovers.
type CircuitBreakerGeoClient struct {
	client ports.GeoClient
	cb     *circuitbreaker.CircuitBreakerWrapper
}

// Lookup resolves an IP address through the circuit breaker.
func (c *CircuitBreakerGeoClient) Lookup(ctx context.Context, ip string) (*ports.GeoResult, error) {
	var result *ports.GeoResult

	err := c.cb.Execute(ctx, "Lookup", func() error {
		var err error
		result, err = c.client.Lookup(ctx, ip)

		return err
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// CircuitBreakerWeatherClient wraps a WeatherClient with circuit breaker
// protection. When the breaker opens, the weather service serves
// synthetic conditions instead of hammering the provider.
type CircuitBreakerWeatherClient struct {
	client ports.WeatherClient
	cb     *circuitbreaker.CircuitBreakerWrapper
}

// CurrentConditions fetches weather through the circuit breaker.
func (c *CircuitBreakerWeatherClient) CurrentConditions(ctx context.Context, lat, lon float64) (*ports.WeatherObservation, error) {
	var result *ports.WeatherObservation

	err := c.cb.Execute(ctx, "CurrentConditions", func() error {
		var err error
		result, err = c.client.CurrentConditions(ctx, lat, lon)

		return err
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// CircuitBreakerTextGenerator wraps a TextGenerator with circuit breaker
// protection. An open breaker routes outfit generation to the mood
// fallback table.
type CircuitBreakerTextGenerator struct {
	client ports.TextGenerator
	cb     *circuitbreaker.CircuitBreakerWrapper
}

// GenerateText runs the generation call through the circuit breaker.
func (c *CircuitBreakerTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	var result string

	err := c.cb.Execute(ctx, "GenerateText", func() error {
		var err error
		result, err = c.client.GenerateText(ctx, prompt)

		return err
	})

	if err != nil {
		return "", err
	}

	return result, nil
}
