package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

// weatherCacheTTL bounds how long a live observation is reused before the
// provider is asked again. Keeps paid API volume down without going stale.
const weatherCacheTTL = 10 * time.Minute

// Fixed constants of the synthetic model.
const (
	syntheticHumidity  = 65
	syntheticPressure  = 1013
	syntheticWindSpeed = 3.5
)

type weatherService struct {
	client  ports.WeatherClient
	enabled bool
	cache   ports.CacheService
	logger  *zap.Logger
	now     func() time.Time
}

// NewWeatherService creates a weather provider. enabled is computed once
// from credential presence by the caller; when false the live client is
// never consulted and every call returns synthetic weather.
func NewWeatherService(client ports.WeatherClient, enabled bool, cache ports.CacheService, logger *zap.Logger) ports.WeatherProvider {
	return &weatherService{
		client:  client,
		enabled: enabled,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Current returns current conditions for the location. Any failure along
// the live path degrades to the synthetic model; the method never fails.
func (s *weatherService) Current(ctx context.Context, loc domain.Location) domain.Weather {
	if !s.enabled || s.client == nil {
		s.logger.Debug("weather provider disabled, using synthetic model",
			zap.String("location", loc.Display()))

		return s.synthetic(loc)
	}

	key := fmt.Sprintf("weather:%.2f:%.2f", loc.Lat, loc.Lon)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached domain.Weather

			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached
			}
		}
	}

	obs, err := s.client.CurrentConditions(ctx, loc.Lat, loc.Lon)

	if err != nil {
		s.logger.Warn("weather lookup failed, using synthetic model",
			zap.String("location", loc.Display()),
			zap.Error(err))

		return s.synthetic(loc)
	}

	weather := domain.Weather{
		Location:    observationDisplay(obs, loc),
		Temperature: roundDegrees(obs.Temperature),
		Condition:   obs.Condition,
		Description: obs.Description,
		Humidity:    obs.Humidity,
		Pressure:    obs.Pressure,
		WindSpeed:   obs.WindSpeed,
		FeelsLike:   roundDegrees(obs.FeelsLike),
		MinTemp:     roundDegrees(obs.MinTemp),
		MaxTemp:     roundDegrees(obs.MaxTemp),
		Synthetic:   false,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(weather); err == nil {
			_ = s.cache.Set(ctx, key, raw, weatherCacheTTL)
		}
	}

	s.logger.Info("live weather retrieved",
		zap.String("location", weather.Location),
		zap.Int("temperature", weather.Temperature),
		zap.String("condition", weather.Condition))

	return weather
}

// synthetic computes deterministic placeholder weather from the location
// and the current clock. Identical (location, clock) inputs always yield
// identical output; there is no randomness.
func (s *weatherService) synthetic(loc domain.Location) domain.Weather {
	now := s.now()
	hour := now.Hour()
	month := now.Month()

	base := 20.0

	switch loc.CountryCode {
	case "EG":
		base = 28
	case "US", "CA":
		base = 15
	case "RU", "NO", "SE", "FI":
		base = 8
	}

	if hour >= 22 || hour <= 6 {
		base -= 5
	}

	if hour >= 12 && hour <= 16 {
		base += 3
	}

	switch {
	case month == time.December || month <= time.February:
		base -= 8
	case month >= time.July && month <= time.September:
		base += 10
	}

	condition := "Clear"

	switch loc.CountryCode {
	case "GB", "UK", "IE":
		condition = "Clouds"
	}

	return domain.Weather{
		Location:    loc.Display(),
		Temperature: roundDegrees(base),
		Condition:   condition,
		Description: "partly cloudy",
		Humidity:    syntheticHumidity,
		Pressure:    syntheticPressure,
		WindSpeed:   syntheticWindSpeed,
		FeelsLike:   roundDegrees(base + 1),
		MinTemp:     roundDegrees(base - 3),
		MaxTemp:     roundDegrees(base + 5),
		Synthetic:   true,
	}
}

// observationDisplay prefers the provider's station name, falling back to
// the resolved location when the provider omits it.
func observationDisplay(obs *ports.WeatherObservation, loc domain.Location) string {
	if obs.LocationName == "" {
		return loc.Display()
	}

	if obs.CountryCode == "" {
		return obs.LocationName
	}

	return fmt.Sprintf("%s, %s", obs.LocationName, obs.CountryCode)
}

func roundDegrees(v float64) int {
	return int(math.Round(v))
}
