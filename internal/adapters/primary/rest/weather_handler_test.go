package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
)

// fixedResolver returns the same location for every request.
type fixedResolver struct {
	location domain.Location
}

func (f *fixedResolver) Resolve(ctx context.Context, clientIP string) domain.Location {
	return f.location
}

// fixedWeather returns the same conditions for every request.
type fixedWeather struct {
	weather domain.Weather
}

func (f *fixedWeather) Current(ctx context.Context, loc domain.Location) domain.Weather {
	return f.weather
}

// fixedOutfits returns a static outfit from both generation paths.
type fixedOutfits struct {
	outfit domain.Outfit
}

func (f *fixedOutfits) Generate(ctx context.Context, mood domain.Mood, occasion string, weather domain.Weather) (domain.Outfit, bool) {
	return f.outfit, false
}

func (f *fixedOutfits) WeatherFallback(weather domain.Weather) domain.Outfit {
	return f.outfit
}

func newTestWeatherHandler() *WeatherHandler {
	return NewWeatherHandler(
		&fixedResolver{location: domain.Location{City: "Cairo", Country: "Egypt", CountryCode: "EG", Approximate: true}},
		&fixedWeather{weather: domain.Weather{Location: "Cairo, Egypt", Temperature: 28, Condition: "Clear", Synthetic: true}},
		&fixedOutfits{outfit: domain.Outfit{
			Title: "Summer Breeze",
			Items: []string{"Breathable T-Shirt", "Shorts", "Sandals", "Sunglasses"},
		}},
		zap.NewNop(),
	)
}

// TestWeatherHandler_GetCurrentWeather verifies the detected-location
// weather response shape.
func TestWeatherHandler_GetCurrentWeather(t *testing.T) {
	handler := newTestWeatherHandler()

	req := httptest.NewRequest("GET", "/api/v1/weather/current", nil)
	rr := httptest.NewRecorder()

	handler.GetCurrentWeather(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body WeatherResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 28, body.Weather.Temperature)
	assert.NotNil(t, body.Location)
	assert.Equal(t, "Cairo", body.Location.City)
	assert.False(t, body.Location.DetectedByIP)
}

// TestWeatherHandler_GetWeatherByCoordinates tests coordinate validation
// and the success path.
func TestWeatherHandler_GetWeatherByCoordinates(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
	}{
		{name: "valid coordinates", queryParams: "?lat=51.5&lon=-0.12", expectedStatus: http.StatusOK},
		{name: "missing lat", queryParams: "?lon=-0.12", expectedStatus: http.StatusBadRequest},
		{name: "missing lon", queryParams: "?lat=51.5", expectedStatus: http.StatusBadRequest},
		{name: "non-numeric lat", queryParams: "?lat=north&lon=-0.12", expectedStatus: http.StatusBadRequest},
		{name: "latitude out of range", queryParams: "?lat=95&lon=0", expectedStatus: http.StatusBadRequest},
		{name: "longitude out of range", queryParams: "?lat=0&lon=185", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestWeatherHandler()

			req := httptest.NewRequest("GET", "/api/v1/weather/coordinates"+tt.queryParams, nil)
			rr := httptest.NewRecorder()

			handler.GetWeatherByCoordinates(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedStatus == http.StatusOK {
				var body WeatherResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.True(t, body.Success)
				assert.Nil(t, body.Location)
			}
		})
	}
}

// TestWeatherHandler_GetAutoRecommendations verifies each recommended item
// carries its inferred wardrobe category.
func TestWeatherHandler_GetAutoRecommendations(t *testing.T) {
	handler := newTestWeatherHandler()

	req := httptest.NewRequest("GET", "/api/v1/weather/recommendations/auto", nil)
	rr := httptest.NewRecorder()

	handler.GetAutoRecommendations(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body RecommendationResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Summer Breeze", body.Outfit.Title)
	assert.Len(t, body.Items, 4)

	categories := make(map[string]string)

	for _, item := range body.Items {
		categories[item.Name] = item.Category
	}

	assert.Equal(t, "top", categories["Breathable T-Shirt"])
	assert.Equal(t, "bottom", categories["Shorts"])
	assert.Equal(t, "shoes", categories["Sandals"])
	assert.Equal(t, "accessory", categories["Sunglasses"])
}
