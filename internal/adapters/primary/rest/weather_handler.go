package rest

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
	"github.com/fashionai/stylist-service/internal/middleware"
)

// WeatherHandler handles HTTP requests for weather lookups and
// weather-driven outfit recommendations.
type WeatherHandler struct {
	locations ports.LocationResolver
	weather   ports.WeatherProvider
	outfits   ports.OutfitGenerator
	logger    *zap.Logger
}

// NewWeatherHandler creates a new HTTP handler for weather operations.
func NewWeatherHandler(
	locations ports.LocationResolver,
	weather ports.WeatherProvider,
	outfits ports.OutfitGenerator,
	logger *zap.Logger,
) *WeatherHandler {
	return &WeatherHandler{
		locations: locations,
		weather:   weather,
		outfits:   outfits,
		logger:    logger,
	}
}

// WeatherResponse is the JSON structure returned by the weather endpoints.
type WeatherResponse struct {
	Success  bool           `json:"success"`
	Weather  domain.Weather `json:"weather"`
	Location *OOTDLocation  `json:"location,omitempty"`
}

// recommendedItem pairs a wardrobe item with its inferred category so the
// UI can group recommendations by slot.
type recommendedItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// RecommendationResponse is the JSON structure returned by the automatic
// weather-based recommendation endpoint.
type RecommendationResponse struct {
	Success bool              `json:"success"`
	Outfit  domain.Outfit     `json:"outfit"`
	Items   []recommendedItem `json:"items"`
	Weather domain.Weather    `json:"weather"`
}

// GetCurrentWeather handles GET requests for weather at the caller's
// detected location. Resolution and the weather fetch never fail; at
// worst the response carries synthetic conditions for the default city.
func (h *WeatherHandler) GetCurrentWeather(w http.ResponseWriter, r *http.Request) {
	location := h.locations.Resolve(r.Context(), middleware.GetClientIP(r))
	weather := h.weather.Current(r.Context(), location)

	h.respondWithJSON(w, http.StatusOK, WeatherResponse{
		Success: true,
		Weather: weather,
		Location: &OOTDLocation{
			City:         location.City,
			Country:      location.Country,
			DetectedByIP: !location.Approximate,
		},
	})
}

// GetWeatherByCoordinates handles GET requests for weather at explicit
// coordinates. Unlike IP detection, the caller supplied these values, so
// malformed input is a client error rather than a fallback case.
func (h *WeatherHandler) GetWeatherByCoordinates(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)

	if latErr != nil || lonErr != nil {
		h.respondWithError(
			w,
			http.StatusBadRequest,
			"INVALID_COORDINATES",
			"Query parameters 'lat' and 'lon' must be valid numbers",
		)

		return
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		h.respondWithError(
			w,
			http.StatusBadRequest,
			"INVALID_COORDINATES",
			"Coordinates out of range",
		)

		return
	}

	weather := h.weather.Current(r.Context(), domain.Location{Lat: lat, Lon: lon})

	h.respondWithJSON(w, http.StatusOK, WeatherResponse{
		Success: true,
		Weather: weather,
	})
}

// GetAutoRecommendations handles GET requests for a weather-driven outfit
// recommendation without AI involvement. The outfit comes straight from
// the temperature-banded templates, and each item is annotated with its
// wardrobe category.
func (h *WeatherHandler) GetAutoRecommendations(w http.ResponseWriter, r *http.Request) {
	location := h.locations.Resolve(r.Context(), middleware.GetClientIP(r))
	weather := h.weather.Current(r.Context(), location)
	outfit := h.outfits.WeatherFallback(weather)

	items := make([]recommendedItem, 0, len(outfit.Items))

	for _, name := range outfit.Items {
		items = append(items, recommendedItem{
			Name:     name,
			Category: string(domain.ClassifyItem(name)),
		})
	}

	h.respondWithJSON(w, http.StatusOK, RecommendationResponse{
		Success: true,
		Outfit:  outfit,
		Items:   items,
		Weather: weather,
	})
}

// respondWithJSON sends a JSON response with the specified status code.
func (h *WeatherHandler) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	respondJSON(w, status, payload, h.logger)
}

// respondWithError sends a standardized error response.
func (h *WeatherHandler) respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	}, h.logger)
}
