package rest

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/ports"
)

// defaultStatsWindowDays is the lookback window when the caller does not
// supply one.
const defaultStatsWindowDays = 7

// StatsHandler exposes aggregate generation activity from the audit
// trail.
type StatsHandler struct {
	stats  ports.GenerationStatsProvider
	logger *zap.Logger
}

// NewStatsHandler creates the stats handler. stats may be nil when the
// service runs without a database; the endpoint then reports an empty
// window.
func NewStatsHandler(stats ports.GenerationStatsProvider, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger,
	}
}

// StatsResponse is the JSON structure returned by the stats endpoint.
type StatsResponse struct {
	Success bool                   `json:"success"`
	Since   string                 `json:"since"`
	Stats   map[string]interface{} `json:"stats"`
}

// GetGenerationStats handles GET requests for generation statistics.
// Accepts an optional 'days' query parameter (1-90) controlling the
// lookback window. A missing database or query failure yields an empty
// stats block rather than an error.
func (h *StatsHandler) GetGenerationStats(w http.ResponseWriter, r *http.Request) {
	days := defaultStatsWindowDays

	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)

		if err != nil || parsed < 1 || parsed > 90 {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{
				Success: false,
				Error:   "INVALID_WINDOW",
				Message: "days must be an integer between 1 and 90",
			}, h.logger)

			return
		}

		days = parsed
	}

	since := time.Now().AddDate(0, 0, -days)

	resp := StatsResponse{
		Success: true,
		Since:   since.UTC().Format(time.RFC3339),
		Stats:   map[string]interface{}{},
	}

	if h.stats == nil {
		respondJSON(w, http.StatusOK, resp, h.logger)
		return
	}

	stats, err := h.stats.GenerationStats(r.Context(), since)

	if err != nil {
		h.logger.Warn("generation stats query failed", zap.Error(err))
		respondJSON(w, http.StatusOK, resp, h.logger)

		return
	}

	resp.Stats = stats
	respondJSON(w, http.StatusOK, resp, h.logger)
}
