package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

// ootdService is the daily outfit cache. It memoizes one generated outfit
// per user for 24 hours and orchestrates location, weather, and outfit
// generation on a miss.
type ootdService struct {
	repo      ports.DailyOutfitRepository
	locations ports.LocationResolver
	weather   ports.WeatherProvider
	outfits   ports.OutfitGenerator
	logger    *zap.Logger
	now       func() time.Time
}

// NewOOTDService creates the daily outfit cache. repo may be nil when the
// database is unavailable; the service then serves ephemeral results only.
func NewOOTDService(
	repo ports.DailyOutfitRepository,
	locations ports.LocationResolver,
	weather ports.WeatherProvider,
	outfits ports.OutfitGenerator,
	logger *zap.Logger,
) ports.OOTDService {
	return &ootdService{
		repo:      repo,
		locations: locations,
		weather:   weather,
		outfits:   outfits,
		logger:    logger,
		now:       time.Now,
	}
}

// TodayOutfit returns the user's outfit of the day, generating one if no
// unexpired record exists. The returned error is always nil for valid
// input: every degraded path resolves to a usable result, at worst an
// ephemeral fallback record.
func (s *ootdService) TodayOutfit(ctx context.Context, ownerID, clientIP string, mood domain.Mood, occasion string) (*ports.OOTDResult, error) {
	if ownerID == "" {
		return nil, &domain.StyleError{
			Code:    "MISSING_OWNER",
			Message: "An authenticated user is required for the daily outfit",
		}
	}

	now := s.now()

	if s.repo != nil {
		rec, err := s.repo.LatestByOwner(ctx, ownerID)

		if err != nil {
			s.logger.Warn("daily outfit lookup failed, regenerating",
				zap.String("owner_id", ownerID),
				zap.Error(err))
		}

		if rec != nil && !rec.Expired(now) {
			s.logger.Info("daily outfit cache hit",
				zap.String("owner_id", ownerID),
				zap.Duration("remaining", rec.TimeUntilExpiry(now)))

			return &ports.OOTDResult{Record: rec, Cached: true}, nil
		}

		// Opportunistic cleanup. Correctness never depends on this: the
		// read path already ignores expired rows.
		if deleted, err := s.repo.DeleteExpired(ctx, ownerID, now); err != nil {
			s.logger.Warn("expired outfit cleanup failed",
				zap.String("owner_id", ownerID),
				zap.Error(err))
		} else if deleted > 0 {
			s.logger.Debug("expired outfits removed",
				zap.String("owner_id", ownerID),
				zap.Int64("deleted", deleted))
		}
	}

	start := time.Now()
	location := s.locations.Resolve(ctx, clientIP)
	weather := s.weather.Current(ctx, location)
	outfit, generated := s.outfits.Generate(ctx, mood, occasion, weather)

	source := "fallback"

	if generated {
		source = "ai"
	}

	rec := domain.NewDailyOutfitRecord(ownerID, outfit, weather, now)

	if s.repo == nil {
		rec.Ephemeral = true

		return &ports.OOTDResult{Record: rec, Fallback: true, Source: source, Location: location}, nil
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		s.logger.Error("failed to persist daily outfit, returning ephemeral result",
			zap.String("owner_id", ownerID),
			zap.Error(err))

		rec.Ephemeral = true

		return &ports.OOTDResult{Record: rec, Fallback: true, Source: source, Location: location}, nil
	}

	s.logGeneration(ctx, rec, location, source, time.Since(start))

	s.logger.Info("daily outfit generated",
		zap.String("owner_id", ownerID),
		zap.String("title", outfit.Title),
		zap.String("location", weather.Location),
		zap.Bool("ai_generated", generated),
		zap.Time("expires_at", rec.ExpiresAt))

	return &ports.OOTDResult{Record: rec, Source: source, Location: location}, nil
}

// logGeneration records the audit row for a fresh generation. Best effort;
// a failure here never affects the caller.
func (s *ootdService) logGeneration(ctx context.Context, rec *domain.DailyOutfitRecord, loc domain.Location, source string, elapsed time.Duration) {
	event := ports.GenerationEvent{
		OwnerID:     rec.OwnerID,
		City:        loc.City,
		Country:     loc.Country,
		Condition:   rec.Weather.Condition,
		Source:      source,
		Temperature: rec.Weather.Temperature,
		DurationMs:  elapsed.Milliseconds(),
		Synthetic:   rec.Weather.Synthetic,
	}

	if err := s.repo.LogGeneration(ctx, event); err != nil {
		s.logger.Debug("generation audit log failed", zap.Error(err))
	}
}
