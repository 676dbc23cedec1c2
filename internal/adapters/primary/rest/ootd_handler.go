// Package rest implements HTTP handlers for the stylist service
// endpoints. This package serves as the primary adapter, translating
// HTTP requests into domain operations and formatting responses for the
// wardrobe UI.
package rest

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
	"github.com/fashionai/stylist-service/internal/middleware"
)

// OOTDHandler handles HTTP requests for the outfit-of-the-day feature.
type OOTDHandler struct {
	// service provides the daily outfit cache operations
	service ports.OOTDService

	// logger records request processing events and errors
	logger *zap.Logger
}

// NewOOTDHandler creates a new HTTP handler for daily outfit operations.
//
// Parameters:
//   - service: OOTDService interface for the cache flow
//   - logger: Zap logger for request logging and error tracking
//
// Returns:
//   - *OOTDHandler: Configured handler instance
func NewOOTDHandler(service ports.OOTDService, logger *zap.Logger) *OOTDHandler {
	return &OOTDHandler{
		service: service,
		logger:  logger,
	}
}

// TimeUntilRefresh tells the UI how long the current outfit remains
// valid. Server-computed from the persisted expiry; clients render a
// countdown seeded from this value rather than doing their own 24h math.
type TimeUntilRefresh struct {
	Hours   int   `json:"hours"`
	Minutes int   `json:"minutes"`
	TotalMs int64 `json:"totalMs"`
}

// OOTDLocation is the detected-location block of the OOTD response,
// present only on freshly generated results.
type OOTDLocation struct {
	City         string `json:"city"`
	Country      string `json:"country"`
	DetectedByIP bool   `json:"detectedByIP"`
}

// OOTDResponse is the JSON structure returned by the smart OOTD endpoint.
type OOTDResponse struct {
	Success          bool             `json:"success"`
	Outfit           domain.Outfit    `json:"outfit"`
	Weather          domain.Weather   `json:"weather"`
	Location         *OOTDLocation    `json:"location,omitempty"`
	IsCached         bool             `json:"isCached"`
	IsFallback       bool             `json:"isFallback,omitempty"`
	TimeUntilRefresh TimeUntilRefresh `json:"timeUntilRefresh"`
	GeneratedAt      string           `json:"generatedAt"`
}

// ErrorResponse represents a standardized error response structure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetTodayOutfit handles GET requests for the outfit of the day.
//
// Query parameters 'mood' and 'occasion' are optional; unrecognized
// moods normalize to the product default. Failures inside the cache flow
// never surface as errors here: the service degrades to fallback data,
// so the only non-200 from this endpoint is a missing authenticated user.
func (h *OOTDHandler) GetTodayOutfit(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	if ownerID == "" {
		h.respondWithError(
			w,
			http.StatusUnauthorized,
			"AUTH_REQUIRED",
			"Authentication required",
		)

		return
	}

	mood := domain.ParseMood(r.URL.Query().Get("mood"))
	occasion := r.URL.Query().Get("occasion")

	if occasion == "" {
		occasion = "casual"
	}

	clientIP := middleware.GetClientIP(r)

	result, err := h.service.TodayOutfit(r.Context(), ownerID, clientIP, mood, occasion)

	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, h.buildResponse(result))
}

// buildResponse maps a cache result onto the wire shape, computing the
// remaining validity window against the server clock.
func (h *OOTDHandler) buildResponse(result *ports.OOTDResult) OOTDResponse {
	rec := result.Record
	remaining := rec.TimeUntilExpiry(time.Now())

	resp := OOTDResponse{
		Success:    true,
		Outfit:     rec.Outfit,
		Weather:    rec.Weather,
		IsCached:   result.Cached,
		IsFallback: result.Fallback,
		TimeUntilRefresh: TimeUntilRefresh{
			Hours:   int(remaining / time.Hour),
			Minutes: int(remaining % time.Hour / time.Minute),
			TotalMs: remaining.Milliseconds(),
		},
		GeneratedAt: rec.GeneratedAt.UTC().Format(time.RFC3339),
	}

	if !result.Cached {
		resp.Location = &OOTDLocation{
			City:         result.Location.City,
			Country:      result.Location.Country,
			DetectedByIP: !result.Location.Approximate,
		}
	}

	return resp
}

// respondWithJSON sends a JSON response with the specified status code.
func (h *OOTDHandler) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	respondJSON(w, status, payload, h.logger)
}

// respondWithError sends a standardized error response.
func (h *OOTDHandler) respondWithError(w http.ResponseWriter, status int, code, message string) {
	response := ErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	}

	h.respondWithJSON(w, status, response)
}

// handleServiceError maps domain errors to HTTP responses. The cache
// contract makes errors here rare: only invalid caller identity reaches
// this path in practice.
func (h *OOTDHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var e *domain.StyleError

	switch {
	case errors.As(err, &e):
		switch e.Code {
		case "MISSING_OWNER":
			h.respondWithError(w, http.StatusUnauthorized, e.Code, e.Message)
		default:
			h.respondWithError(
				w,
				http.StatusInternalServerError,
				"INTERNAL_ERROR",
				"An unexpected error occurred",
			)
		}
	default:
		h.logger.Error("unexpected error",
			zap.Error(err),
			zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)

		h.respondWithError(
			w,
			http.StatusInternalServerError,
			"INTERNAL_ERROR",
			"An unexpected error occurred",
		)
	}
}
