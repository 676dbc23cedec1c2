package app

import (
	"context"
	"time"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
	"github.com/fashionai/stylist-service/internal/infrastructure/database"
)

// RepositoryAdapter adapts the PostgreSQL store to the
// DailyOutfitRepository port.
type RepositoryAdapter struct {
	db *database.PostgresDB
}

// NewRepositoryAdapter creates an adapter for the given database.
func NewRepositoryAdapter(db *database.PostgresDB) *RepositoryAdapter {
	return &RepositoryAdapter{db: db}
}

// Insert persists a daily outfit record.
func (a *RepositoryAdapter) Insert(ctx context.Context, rec *domain.DailyOutfitRecord) error {
	return a.db.InsertDailyOutfit(ctx, rec)
}

// LatestByOwner returns the owner's most recent record, or nil when none
// exists.
func (a *RepositoryAdapter) LatestByOwner(ctx context.Context, ownerID string) (*domain.DailyOutfitRecord, error) {
	return a.db.LatestDailyOutfit(ctx, ownerID)
}

// DeleteExpired removes the owner's records that expired at or before
// the cutoff.
func (a *RepositoryAdapter) DeleteExpired(ctx context.Context, ownerID string, before time.Time) (int64, error) {
	return a.db.DeleteExpiredDailyOutfits(ctx, ownerID, before)
}

// LogGeneration records a generation audit event.
func (a *RepositoryAdapter) LogGeneration(ctx context.Context, event ports.GenerationEvent) error {
	return a.db.LogGeneration(ctx, event)
}

// GenerationStats aggregates generation activity since the given time.
func (a *RepositoryAdapter) GenerationStats(ctx context.Context, since time.Time) (map[string]interface{}, error) {
	return a.db.GetGenerationStats(ctx, since)
}
