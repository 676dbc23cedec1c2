package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

// fixedClock pins the synthetic model to a known instant.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestWeatherService_Current_Disabled verifies the synthetic path is
// taken when no credential is configured.
func TestWeatherService_Current_Disabled(t *testing.T) {
	mockClient := new(MockWeatherClient)
	service := NewWeatherService(mockClient, false, nil, zap.NewNop())

	weather := service.Current(context.Background(), DefaultLocation)

	assert.True(t, weather.Synthetic)
	assert.Equal(t, "Cairo, Egypt", weather.Location)
	mockClient.AssertNotCalled(t, "CurrentConditions", mock.Anything, mock.Anything, mock.Anything)
}

// TestWeatherService_Current_ClientError verifies upstream failures
// degrade to synthetic conditions.
func TestWeatherService_Current_ClientError(t *testing.T) {
	mockClient := new(MockWeatherClient)
	service := NewWeatherService(mockClient, true, nil, zap.NewNop())

	mockClient.On("CurrentConditions", mock.Anything, DefaultLocation.Lat, DefaultLocation.Lon).
		Return(nil, errors.New("upstream down"))

	weather := service.Current(context.Background(), DefaultLocation)

	assert.True(t, weather.Synthetic)
	assert.Equal(t, syntheticHumidity, weather.Humidity)
	assert.Equal(t, syntheticPressure, weather.Pressure)
	mockClient.AssertExpectations(t)
}

// TestWeatherService_Current_Live verifies observation mapping and
// temperature rounding.
func TestWeatherService_Current_Live(t *testing.T) {
	mockClient := new(MockWeatherClient)
	service := NewWeatherService(mockClient, true, nil, zap.NewNop())

	mockClient.On("CurrentConditions", mock.Anything, 51.5074, -0.1278).
		Return(&ports.WeatherObservation{
			LocationName: "London",
			CountryCode:  "GB",
			Condition:    "Rain",
			Description:  "light rain",
			Temperature:  12.6,
			FeelsLike:    11.4,
			MinTemp:      9.5,
			MaxTemp:      14.49,
			Humidity:     81,
			Pressure:     1008,
			WindSpeed:    5.2,
		}, nil)

	weather := service.Current(context.Background(), domain.Location{
		City: "London", Country: "United Kingdom", CountryCode: "GB",
		Lat: 51.5074, Lon: -0.1278,
	})

	assert.False(t, weather.Synthetic)
	assert.Equal(t, "London, GB", weather.Location)
	assert.Equal(t, 13, weather.Temperature)
	assert.Equal(t, 11, weather.FeelsLike)
	assert.Equal(t, 10, weather.MinTemp)
	assert.Equal(t, 14, weather.MaxTemp)
	assert.Equal(t, "Rain", weather.Condition)
	assert.Equal(t, 81, weather.Humidity)
	assert.Equal(t, 1008, weather.Pressure)
	mockClient.AssertExpectations(t)
}

// TestWeatherService_Current_CacheHit verifies a cached observation is
// served without touching the upstream client.
func TestWeatherService_Current_CacheHit(t *testing.T) {
	mockClient := new(MockWeatherClient)
	mockCache := new(MockCacheService)
	service := NewWeatherService(mockClient, true, mockCache, zap.NewNop())

	cached := domain.Weather{Location: "Cairo, Egypt", Temperature: 30, Condition: "Clear"}
	raw, err := json.Marshal(cached)
	assert.NoError(t, err)

	mockCache.On("Get", mock.Anything, "weather:30.04:31.24").Return(raw, nil)

	weather := service.Current(context.Background(), DefaultLocation)

	assert.Equal(t, cached, weather)
	mockClient.AssertNotCalled(t, "CurrentConditions", mock.Anything, mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

// TestWeatherService_Current_CachesLiveResult verifies a fresh observation
// is written back with the weather TTL.
func TestWeatherService_Current_CachesLiveResult(t *testing.T) {
	mockClient := new(MockWeatherClient)
	mockCache := new(MockCacheService)
	service := NewWeatherService(mockClient, true, mockCache, zap.NewNop())

	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("cache miss"))
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything, weatherCacheTTL).Return(nil)
	mockClient.On("CurrentConditions", mock.Anything, mock.Anything, mock.Anything).
		Return(&ports.WeatherObservation{
			LocationName: "Cairo",
			CountryCode:  "EG",
			Condition:    "Clear",
			Temperature:  31.2,
		}, nil)

	weather := service.Current(context.Background(), DefaultLocation)

	assert.Equal(t, 31, weather.Temperature)
	mockCache.AssertExpectations(t)
	mockClient.AssertExpectations(t)
}

// TestWeatherService_Synthetic_Deterministic verifies identical location
// and clock inputs always produce identical output.
func TestWeatherService_Synthetic_Deterministic(t *testing.T) {
	clock := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

	service := &weatherService{
		logger: zap.NewNop(),
		now:    fixedClock(clock),
	}

	first := service.synthetic(DefaultLocation)
	second := service.synthetic(DefaultLocation)

	assert.Equal(t, first, second)
	assert.True(t, first.Synthetic)
}

// TestWeatherService_Synthetic_Model exercises the regional base, time of
// day, and seasonal adjustments of the synthetic model.
func TestWeatherService_Synthetic_Model(t *testing.T) {
	tests := []struct {
		name         string
		location     domain.Location
		clock        time.Time
		expectedTemp int
		expectedCond string
	}{
		{
			// Egypt base 28, afternoon +3, March neutral
			name:         "egypt spring afternoon",
			location:     DefaultLocation,
			clock:        time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC),
			expectedTemp: 31,
			expectedCond: "Clear",
		},
		{
			// Egypt base 28, night -5, January winter -8
			name:         "egypt winter night",
			location:     DefaultLocation,
			clock:        time.Date(2025, time.January, 10, 23, 0, 0, 0, time.UTC),
			expectedTemp: 15,
			expectedCond: "Clear",
		},
		{
			// US base 15, August summer +10, morning neutral
			name:         "us summer morning",
			location:     domain.Location{City: "New York", Country: "United States", CountryCode: "US"},
			clock:        time.Date(2025, time.August, 10, 10, 0, 0, 0, time.UTC),
			expectedTemp: 25,
			expectedCond: "Clear",
		},
		{
			// Nordic base 8, December winter -8, afternoon +3
			name:         "norway winter afternoon",
			location:     domain.Location{City: "Oslo", Country: "Norway", CountryCode: "NO"},
			clock:        time.Date(2025, time.December, 10, 13, 0, 0, 0, time.UTC),
			expectedTemp: 3,
			expectedCond: "Clear",
		},
		{
			// UK gets clouds, base 20, March neutral, morning neutral
			name:         "uk is cloudy",
			location:     domain.Location{City: "London", Country: "United Kingdom", CountryCode: "GB"},
			clock:        time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC),
			expectedTemp: 20,
			expectedCond: "Clouds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &weatherService{
				logger: zap.NewNop(),
				now:    fixedClock(tt.clock),
			}

			weather := service.synthetic(tt.location)

			assert.Equal(t, tt.expectedTemp, weather.Temperature)
			assert.Equal(t, tt.expectedCond, weather.Condition)
			assert.Equal(t, tt.expectedTemp+1, weather.FeelsLike)
			assert.Equal(t, tt.expectedTemp-3, weather.MinTemp)
			assert.Equal(t, tt.expectedTemp+5, weather.MaxTemp)
			assert.True(t, weather.Synthetic)
		})
	}
}
