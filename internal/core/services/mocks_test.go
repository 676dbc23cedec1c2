// Package services contains unit tests for the core stylist services.
package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

// MockGeoClient is a mock implementation of the GeoClient interface.
type MockGeoClient struct {
	mock.Mock
}

// Lookup mocks the geolocation Lookup method.
func (m *MockGeoClient) Lookup(ctx context.Context, ip string) (*ports.GeoResult, error) {
	args := m.Called(ctx, ip)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ports.GeoResult), args.Error(1)
}

// MockWeatherClient is a mock implementation of the WeatherClient interface.
type MockWeatherClient struct {
	mock.Mock
}

// CurrentConditions mocks the live weather lookup.
func (m *MockWeatherClient) CurrentConditions(ctx context.Context, lat, lon float64) (*ports.WeatherObservation, error) {
	args := m.Called(ctx, lat, lon)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ports.WeatherObservation), args.Error(1)
}

// MockCacheService is a mock implementation of the CacheService interface.
type MockCacheService struct {
	mock.Mock
}

// Get mocks the cache Get method.
func (m *MockCacheService) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}

// Set mocks the cache Set method.
func (m *MockCacheService) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete mocks the cache Delete method.
func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Clear mocks the cache Clear method.
func (m *MockCacheService) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTextGenerator is a mock implementation of the TextGenerator interface.
type MockTextGenerator struct {
	mock.Mock
}

// GenerateText mocks the text-generation call.
func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockRepository is a mock implementation of the DailyOutfitRepository interface.
type MockRepository struct {
	mock.Mock
}

// Insert mocks record persistence.
func (m *MockRepository) Insert(ctx context.Context, rec *domain.DailyOutfitRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// LatestByOwner mocks the most-recent-record lookup.
func (m *MockRepository) LatestByOwner(ctx context.Context, ownerID string) (*domain.DailyOutfitRecord, error) {
	args := m.Called(ctx, ownerID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DailyOutfitRecord), args.Error(1)
}

// DeleteExpired mocks expired-record cleanup.
func (m *MockRepository) DeleteExpired(ctx context.Context, ownerID string, before time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, before)
	return args.Get(0).(int64), args.Error(1)
}

// LogGeneration mocks the audit log write.
func (m *MockRepository) LogGeneration(ctx context.Context, event ports.GenerationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// stubResolver returns a fixed location for every Resolve call.
type stubResolver struct {
	location domain.Location
}

func (s *stubResolver) Resolve(ctx context.Context, clientIP string) domain.Location {
	return s.location
}

// stubWeather returns fixed conditions for every Current call.
type stubWeather struct {
	weather domain.Weather
}

func (s *stubWeather) Current(ctx context.Context, loc domain.Location) domain.Weather {
	return s.weather
}

// stubGenerator returns a fixed outfit and generation flag.
type stubGenerator struct {
	outfit    domain.Outfit
	generated bool
}

func (s *stubGenerator) Generate(ctx context.Context, mood domain.Mood, occasion string, weather domain.Weather) (domain.Outfit, bool) {
	return s.outfit, s.generated
}

func (s *stubGenerator) WeatherFallback(weather domain.Weather) domain.Outfit {
	return s.outfit
}
