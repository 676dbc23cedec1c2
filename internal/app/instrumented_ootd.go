package app

import (
	"context"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
	"github.com/fashionai/stylist-service/internal/observability"
)

// InstrumentedOOTDService records generation metrics around the daily
// outfit cache.
type InstrumentedOOTDService struct {
	inner     ports.OOTDService
	telemetry *observability.Telemetry
}

// NewInstrumentedOOTDService wraps the service with telemetry recording.
func NewInstrumentedOOTDService(inner ports.OOTDService, telemetry *observability.Telemetry) ports.OOTDService {
	return &InstrumentedOOTDService{
		inner:     inner,
		telemetry: telemetry,
	}
}

// TodayOutfit delegates to the inner service and records whether the
// result was a cache hit or a fresh generation.
func (s *InstrumentedOOTDService) TodayOutfit(ctx context.Context, ownerID, clientIP string, mood domain.Mood, occasion string) (*ports.OOTDResult, error) {
	result, err := s.inner.TodayOutfit(ctx, ownerID, clientIP, mood, occasion)

	if err != nil {
		return nil, err
	}

	if result.Cached {
		s.telemetry.RecordCacheHit(ctx, "daily_outfit")
	} else {
		s.telemetry.RecordCacheMiss(ctx, "daily_outfit")
		s.telemetry.RecordGeneration(ctx, result.Source, result.Record.Weather.Synthetic)
	}

	return result, nil
}
