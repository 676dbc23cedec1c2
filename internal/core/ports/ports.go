// Package ports defines the interfaces between the core services and
// their primary/secondary adapters.
package ports

import (
	"context"
	"time"

	"github.com/fashionai/stylist-service/internal/core/domain"
)

// OOTDResult is what the daily outfit cache hands to the endpoint layer.
type OOTDResult struct {
	Record *domain.DailyOutfitRecord

	// Cached is true when an unexpired stored record was returned as-is.
	Cached bool

	// Fallback is true when the record is ephemeral: generation partially
	// or fully degraded and nothing was persisted.
	Fallback bool

	// Source identifies how a fresh outfit was produced, "ai" or
	// "fallback". Empty on cache hits.
	Source string

	// Location is the resolved client location; only meaningful on a
	// freshly generated result.
	Location domain.Location
}

// OOTDService is the daily outfit cache: one generated outfit per user
// per 24-hour window, regenerated on expiry.
type OOTDService interface {
	TodayOutfit(ctx context.Context, ownerID, clientIP string, mood domain.Mood, occasion string) (*OOTDResult, error)
}

// LocationResolver maps a client IP to an approximate location. It never
// fails: non-routable input and lookup errors both yield the fixed
// default location.
type LocationResolver interface {
	Resolve(ctx context.Context, clientIP string) domain.Location
}

// WeatherProvider returns current conditions for a location. It never
// fails: a missing credential or upstream error yields deterministic
// synthetic weather.
type WeatherProvider interface {
	Current(ctx context.Context, loc domain.Location) domain.Weather
}

// OutfitGenerator produces outfit recommendations. Generate never fails;
// the second return reports whether the text-generation provider produced
// the outfit (false means a static fallback was substituted).
type OutfitGenerator interface {
	Generate(ctx context.Context, mood domain.Mood, occasion string, weather domain.Weather) (domain.Outfit, bool)

	// WeatherFallback is the deterministic weather-only template path.
	// It performs no external calls and is safe on the total-failure path.
	WeatherFallback(weather domain.Weather) domain.Outfit
}

// GeoResult is the raw payload from an IP-geolocation lookup.
type GeoResult struct {
	City        string
	Country     string
	CountryCode string
	Lat         float64
	Lon         float64
}

// GeoClient performs the external IP-geolocation lookup.
type GeoClient interface {
	Lookup(ctx context.Context, ip string) (*GeoResult, error)
}

// WeatherObservation is the raw payload from a live weather provider,
// prior to rounding and domain mapping.
type WeatherObservation struct {
	LocationName string
	CountryCode  string
	Condition    string
	Description  string
	Temperature  float64
	FeelsLike    float64
	MinTemp      float64
	MaxTemp      float64
	Humidity     int
	Pressure     int
	WindSpeed    float64
}

// WeatherClient performs the external current-conditions lookup.
type WeatherClient interface {
	CurrentConditions(ctx context.Context, lat, lon float64) (*WeatherObservation, error)
}

// TextGenerator performs the external text-generation call used for
// outfit recommendations.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenerationEvent is one row of the generation audit trail.
type GenerationEvent struct {
	OwnerID     string
	City        string
	Country     string
	Condition   string
	Source      string
	Temperature int
	DurationMs  int64
	Synthetic   bool
}

// DailyOutfitRepository persists daily outfit records. LatestByOwner
// returns (nil, nil) when the owner has no records at all.
type DailyOutfitRepository interface {
	Insert(ctx context.Context, rec *domain.DailyOutfitRecord) error
	LatestByOwner(ctx context.Context, ownerID string) (*domain.DailyOutfitRecord, error)
	DeleteExpired(ctx context.Context, ownerID string, before time.Time) (int64, error)
	LogGeneration(ctx context.Context, event GenerationEvent) error
}

// GenerationStatsProvider reports aggregate outfit generation activity
// from the audit trail.
type GenerationStatsProvider interface {
	GenerationStats(ctx context.Context, since time.Time) (map[string]interface{}, error)
}

// CacheService is a byte-value cache with per-entry TTL, used to memoize
// upstream weather lookups.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// RateLimitService enforces a sliding-window request limit per client.
type RateLimitService interface {
	Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error)
	Reset(ctx context.Context, identifier string) error
}
