package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutfitTTL is the validity window of a cached daily outfit. ExpiresAt is
// always GeneratedAt plus exactly this duration and is never mutated
// independently.
const OutfitTTL = 24 * time.Hour

// DailyOutfitRecord memoizes one generated outfit per user together with
// the weather it was generated under. At most one unexpired record per
// user is authoritative at any instant; stale duplicates may transiently
// exist and are resolved by reading the most recent GeneratedAt.
type DailyOutfitRecord struct {
	ID          uuid.UUID
	OwnerID     string
	Outfit      Outfit
	Weather     Weather
	GeneratedAt time.Time
	ExpiresAt   time.Time

	// Ephemeral marks a record that was returned to the caller but never
	// written to storage, produced only on the total-failure path.
	Ephemeral bool
}

// NewDailyOutfitRecord builds a record whose expiry is pinned to the
// generation time.
func NewDailyOutfitRecord(ownerID string, outfit Outfit, weather Weather, now time.Time) *DailyOutfitRecord {
	return &DailyOutfitRecord{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Outfit:      outfit,
		Weather:     weather,
		GeneratedAt: now,
		ExpiresAt:   now.Add(OutfitTTL),
	}
}

// Expired reports whether the record is no longer valid at the given instant.
func (r *DailyOutfitRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// TimeUntilExpiry returns the remaining validity window. The value is for
// caller display only and is never persisted.
func (r *DailyOutfitRecord) TimeUntilExpiry(now time.Time) time.Duration {
	if r.Expired(now) {
		return 0
	}

	return r.ExpiresAt.Sub(now)
}
