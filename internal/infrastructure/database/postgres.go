package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

type PostgresDB struct {
	db     *sql.DB
	logger *zap.Logger
}

type Config struct {
	Host                  string
	Port                  int
	User                  string
	Password              string
	Database              string
	SSLMode               string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

func NewPostgresDB(cfg Config, logger *zap.Logger) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgDB := &PostgresDB{
		db:     db,
		logger: logger,
	}

	if err := pgDB.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pgDB, nil
}

// createTables ensures the schema exists on startup. Deployments that run
// the migrate command get the same schema from the versioned migrations;
// this path covers local and test environments.
func (p *PostgresDB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS daily_outfits (
            id UUID PRIMARY KEY,
            owner_id VARCHAR(64) NOT NULL,
            outfit JSONB NOT NULL,
            weather JSONB NOT NULL,
            generated_at TIMESTAMP WITH TIME ZONE NOT NULL,
            expires_at TIMESTAMP WITH TIME ZONE NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_daily_outfits_owner_generated ON daily_outfits(owner_id, generated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_outfits_expires_at ON daily_outfits(expires_at)`,

		`CREATE TABLE IF NOT EXISTS outfit_generations (
            id SERIAL PRIMARY KEY,
            owner_id VARCHAR(64) NOT NULL,
            timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            city VARCHAR(100),
            country VARCHAR(100),
            condition VARCHAR(50),
            source VARCHAR(20) NOT NULL,
            temperature INT,
            duration_ms BIGINT,
            synthetic_weather BOOLEAN DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_outfit_generations_owner ON outfit_generations(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outfit_generations_timestamp ON outfit_generations(timestamp)`,
	}

	for _, query := range queries {
		if _, err := p.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// InsertDailyOutfit persists a generated record. The outfit and weather
// snapshots are stored as JSONB so the read path returns exactly what was
// generated, independent of later template changes.
func (p *PostgresDB) InsertDailyOutfit(ctx context.Context, rec *domain.DailyOutfitRecord) error {
	tracer := otel.Tracer("database")
	ctx, span := tracer.Start(ctx, "InsertDailyOutfit")
	defer span.End()

	span.SetAttributes(
		attribute.String("owner_id", rec.OwnerID),
		attribute.String("record_id", rec.ID.String()),
	)

	outfitJSON, err := json.Marshal(rec.Outfit)
	if err != nil {
		return fmt.Errorf("failed to marshal outfit: %w", err)
	}

	weatherJSON, err := json.Marshal(rec.Weather)
	if err != nil {
		return fmt.Errorf("failed to marshal weather: %w", err)
	}

	query := `
        INSERT INTO daily_outfits (id, owner_id, outfit, weather, generated_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	start := time.Now()
	_, err = p.db.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		outfitJSON,
		weatherJSON,
		rec.GeneratedAt,
		rec.ExpiresAt,
	)

	duration := time.Since(start)
	if err != nil {
		p.logger.Error("failed to insert daily outfit",
			zap.Error(err),
			zap.String("owner_id", rec.OwnerID),
			zap.Duration("duration", duration),
		)
		span.RecordError(err)
		return err
	}

	p.logger.Debug("daily outfit inserted",
		zap.String("owner_id", rec.OwnerID),
		zap.Duration("duration", duration),
	)

	return nil
}

// LatestDailyOutfit returns the most recently generated record for the
// owner, or nil when the owner has none. Expiry is not filtered here; the
// caller decides what an expired record means.
func (p *PostgresDB) LatestDailyOutfit(ctx context.Context, ownerID string) (*domain.DailyOutfitRecord, error) {
	tracer := otel.Tracer("database")
	ctx, span := tracer.Start(ctx, "LatestDailyOutfit")
	defer span.End()

	span.SetAttributes(attribute.String("owner_id", ownerID))

	query := `
        SELECT id, owner_id, outfit, weather, generated_at, expires_at
        FROM daily_outfits
        WHERE owner_id = $1
        ORDER BY generated_at DESC
        LIMIT 1
    `

	var (
		id          uuid.UUID
		owner       string
		outfitJSON  []byte
		weatherJSON []byte
		generatedAt time.Time
		expiresAt   time.Time
	)

	err := p.db.QueryRowContext(ctx, query, ownerID).Scan(
		&id, &owner, &outfitJSON, &weatherJSON, &generatedAt, &expiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rec := &domain.DailyOutfitRecord{
		ID:          id,
		OwnerID:     owner,
		GeneratedAt: generatedAt,
		ExpiresAt:   expiresAt,
	}

	if err := json.Unmarshal(outfitJSON, &rec.Outfit); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outfit: %w", err)
	}

	if err := json.Unmarshal(weatherJSON, &rec.Weather); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weather: %w", err)
	}

	return rec, nil
}

// DeleteExpiredDailyOutfits removes records for the owner whose expiry is
// at or before the cutoff, returning how many rows were deleted.
func (p *PostgresDB) DeleteExpiredDailyOutfits(ctx context.Context, ownerID string, before time.Time) (int64, error) {
	tracer := otel.Tracer("database")
	ctx, span := tracer.Start(ctx, "DeleteExpiredDailyOutfits")
	defer span.End()

	span.SetAttributes(attribute.String("owner_id", ownerID))

	query := `DELETE FROM daily_outfits WHERE owner_id = $1 AND expires_at <= $2`

	result, err := p.db.ExecContext(ctx, query, ownerID, before)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// LogGeneration records an audit row for a fresh outfit generation.
func (p *PostgresDB) LogGeneration(ctx context.Context, event ports.GenerationEvent) error {
	tracer := otel.Tracer("database")
	ctx, span := tracer.Start(ctx, "LogGeneration")
	defer span.End()

	span.SetAttributes(
		attribute.String("owner_id", event.OwnerID),
		attribute.String("source", event.Source),
	)

	query := `
        INSERT INTO outfit_generations (
            owner_id, city, country, condition, source,
            temperature, duration_ms, synthetic_weather
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	start := time.Now()
	_, err := p.db.ExecContext(ctx, query,
		event.OwnerID,
		event.City,
		event.Country,
		event.Condition,
		event.Source,
		event.Temperature,
		event.DurationMs,
		event.Synthetic,
	)

	duration := time.Since(start)
	if err != nil {
		p.logger.Error("failed to log generation",
			zap.Error(err),
			zap.String("owner_id", event.OwnerID),
			zap.Duration("duration", duration),
		)
		span.RecordError(err)
		return err
	}

	return nil
}

// GetGenerationStats aggregates generation activity since the given time.
func (p *PostgresDB) GetGenerationStats(ctx context.Context, since time.Time) (map[string]interface{}, error) {
	query := `
        SELECT
            COUNT(*) as total_generations,
            AVG(duration_ms) as avg_duration,
            SUM(CASE WHEN source = 'ai' THEN 1 ELSE 0 END)::float / COUNT(*)::float as ai_rate,
            SUM(CASE WHEN synthetic_weather THEN 1 ELSE 0 END)::float / COUNT(*)::float as synthetic_rate
        FROM outfit_generations
        WHERE timestamp >= $1
    `

	var stats struct {
		TotalGenerations int
		AvgDuration      sql.NullFloat64
		AIRate           sql.NullFloat64
		SyntheticRate    sql.NullFloat64
	}

	err := p.db.QueryRowContext(ctx, query, since).Scan(
		&stats.TotalGenerations,
		&stats.AvgDuration,
		&stats.AIRate,
		&stats.SyntheticRate,
	)

	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"total_generations":      stats.TotalGenerations,
		"avg_duration_ms":        stats.AvgDuration.Float64,
		"ai_generation_rate":     stats.AIRate.Float64,
		"synthetic_weather_rate": stats.SyntheticRate.Float64,
	}

	return result, nil
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) Ping() error {
	return p.db.Ping()
}

// DB exposes the underlying connection for migration tooling.
func (p *PostgresDB) DB() *sql.DB {
	return p.db
}
