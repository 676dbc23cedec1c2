package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
)

func newTestOOTDService(repo ports.DailyOutfitRepository, now time.Time) *ootdService {
	return &ootdService{
		repo:      repo,
		locations: &stubResolver{location: DefaultLocation},
		weather:   &stubWeather{weather: domain.Weather{Location: "Cairo, Egypt", Temperature: 28, Condition: "Clear", Synthetic: true}},
		outfits:   &stubGenerator{outfit: domain.Outfit{Title: "Urban Explorer Look", Items: []string{"Jacket"}}, generated: true},
		logger:    zap.NewNop(),
		now:       func() time.Time { return now },
	}
}

// TestOOTDService_TodayOutfit_MissingOwner verifies the only error path:
// no authenticated user.
func TestOOTDService_TodayOutfit_MissingOwner(t *testing.T) {
	service := newTestOOTDService(nil, time.Now())

	result, err := service.TodayOutfit(context.Background(), "", "8.8.8.8", domain.MoodConfident, "casual")

	assert.Nil(t, result)

	var styleErr *domain.StyleError
	assert.ErrorAs(t, err, &styleErr)
	assert.Equal(t, "MISSING_OWNER", styleErr.Code)
}

// TestOOTDService_TodayOutfit_CacheHit verifies an unexpired record is
// returned as-is with no regeneration.
func TestOOTDService_TodayOutfit_CacheHit(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	existing := domain.NewDailyOutfitRecord("user-1", domain.Outfit{Title: "Yesterday's Pick"}, domain.Weather{}, now.Add(-2*time.Hour))

	mockRepo := new(MockRepository)
	mockRepo.On("LatestByOwner", mock.Anything, "user-1").Return(existing, nil)

	service := newTestOOTDService(mockRepo, now)

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, existing, result.Record)
	mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestOOTDService_TodayOutfit_ExpiredRegenerates verifies an expired
// record triggers cleanup and a fresh generation pinned to now+TTL.
func TestOOTDService_TodayOutfit_ExpiredRegenerates(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	expired := domain.NewDailyOutfitRecord("user-1", domain.Outfit{Title: "Stale"}, domain.Weather{}, now.Add(-25*time.Hour))

	mockRepo := new(MockRepository)
	mockRepo.On("LatestByOwner", mock.Anything, "user-1").Return(expired, nil)
	mockRepo.On("DeleteExpired", mock.Anything, "user-1", now).Return(int64(1), nil)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("LogGeneration", mock.Anything, mock.Anything).Return(nil)

	service := newTestOOTDService(mockRepo, now)

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.False(t, result.Cached)
	assert.False(t, result.Fallback)
	assert.Equal(t, "Urban Explorer Look", result.Record.Outfit.Title)
	assert.Equal(t, now, result.Record.GeneratedAt)
	assert.Equal(t, now.Add(domain.OutfitTTL), result.Record.ExpiresAt)
	assert.Equal(t, "ai", result.Source)
	mockRepo.AssertExpectations(t)
}

// TestOOTDService_TodayOutfit_LookupErrorRegenerates verifies a failed
// read falls through to generation instead of erroring.
func TestOOTDService_TodayOutfit_LookupErrorRegenerates(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	mockRepo := new(MockRepository)
	mockRepo.On("LatestByOwner", mock.Anything, "user-1").Return(nil, errors.New("connection reset"))
	mockRepo.On("DeleteExpired", mock.Anything, "user-1", now).Return(int64(0), nil)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("LogGeneration", mock.Anything, mock.Anything).Return(nil)

	service := newTestOOTDService(mockRepo, now)

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.False(t, result.Cached)
	assert.NotNil(t, result.Record)
	mockRepo.AssertExpectations(t)
}

// TestOOTDService_TodayOutfit_InsertFailure verifies persistence failure
// yields an ephemeral fallback result, never an error.
func TestOOTDService_TodayOutfit_InsertFailure(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	mockRepo := new(MockRepository)
	mockRepo.On("LatestByOwner", mock.Anything, "user-1").Return(nil, nil)
	mockRepo.On("DeleteExpired", mock.Anything, "user-1", now).Return(int64(0), nil)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	service := newTestOOTDService(mockRepo, now)

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.True(t, result.Record.Ephemeral)
	assert.Equal(t, "Urban Explorer Look", result.Record.Outfit.Title)
	mockRepo.AssertNotCalled(t, "LogGeneration", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestOOTDService_TodayOutfit_NilRepo verifies the service still serves
// ephemeral results with no storage wired at all.
func TestOOTDService_TodayOutfit_NilRepo(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	service := newTestOOTDService(nil, now)

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.True(t, result.Record.Ephemeral)
	assert.Equal(t, DefaultLocation, result.Location)
}

// duplicateRepo stores every inserted record and resolves reads by newest
// generatedAt, the same contract the SQL store provides with its
// ORDER BY generated_at DESC LIMIT 1.
type duplicateRepo struct {
	records []*domain.DailyOutfitRecord
}

func (r *duplicateRepo) Insert(ctx context.Context, rec *domain.DailyOutfitRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *duplicateRepo) LatestByOwner(ctx context.Context, ownerID string) (*domain.DailyOutfitRecord, error) {
	var latest *domain.DailyOutfitRecord

	for _, rec := range r.records {
		if rec.OwnerID != ownerID {
			continue
		}

		if latest == nil || rec.GeneratedAt.After(latest.GeneratedAt) {
			latest = rec
		}
	}

	return latest, nil
}

func (r *duplicateRepo) DeleteExpired(ctx context.Context, ownerID string, before time.Time) (int64, error) {
	var kept []*domain.DailyOutfitRecord
	var deleted int64

	for _, rec := range r.records {
		if rec.OwnerID == ownerID && rec.Expired(before) {
			deleted++
			continue
		}

		kept = append(kept, rec)
	}

	r.records = kept
	return deleted, nil
}

func (r *duplicateRepo) LogGeneration(ctx context.Context, event ports.GenerationEvent) error {
	return nil
}

// TestOOTDService_TodayOutfit_DuplicateRecordsNewestWins verifies that
// duplicate stored records for one owner resolve to the newest by
// generatedAt, with no regeneration.
func TestOOTDService_TodayOutfit_DuplicateRecordsNewestWins(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	repo := &duplicateRepo{}
	repo.records = append(repo.records,
		domain.NewDailyOutfitRecord("user-1", domain.Outfit{Title: "Earlier Pick"}, domain.Weather{}, now.Add(-5*time.Hour)),
		domain.NewDailyOutfitRecord("user-1", domain.Outfit{Title: "Newest Pick"}, domain.Weather{}, now.Add(-time.Hour)),
	)

	service := newTestOOTDService(repo, now)

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, "Newest Pick", result.Record.Outfit.Title)
	assert.Len(t, repo.records, 2)
}

// TestOOTDService_TodayOutfit_ExpiredLatestNeverResurrectsSibling verifies
// an expired latest record forces regeneration; an older duplicate still
// carrying a future expiry is never served in its place.
func TestOOTDService_TodayOutfit_ExpiredLatestNeverResurrectsSibling(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	sibling := domain.NewDailyOutfitRecord("user-1", domain.Outfit{Title: "Sibling Pick"}, domain.Weather{}, now.Add(-30*time.Hour))
	sibling.ExpiresAt = now.Add(time.Hour)

	stale := domain.NewDailyOutfitRecord("user-1", domain.Outfit{Title: "Stale Pick"}, domain.Weather{}, now.Add(-26*time.Hour))

	repo := &duplicateRepo{records: []*domain.DailyOutfitRecord{sibling, stale}}

	service := newTestOOTDService(repo, now)

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, "Urban Explorer Look", result.Record.Outfit.Title)

	current, err := repo.LatestByOwner(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "Urban Explorer Look", current.Outfit.Title)
}

// TestOOTDService_TodayOutfit_FallbackSource verifies the audit source is
// "fallback" when the generator substitutes a static outfit.
func TestOOTDService_TodayOutfit_FallbackSource(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	var logged ports.GenerationEvent

	mockRepo := new(MockRepository)
	mockRepo.On("LatestByOwner", mock.Anything, "user-1").Return(nil, nil)
	mockRepo.On("DeleteExpired", mock.Anything, "user-1", now).Return(int64(0), nil)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("LogGeneration", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			logged = args.Get(1).(ports.GenerationEvent)
		}).
		Return(nil)

	service := newTestOOTDService(mockRepo, now)
	service.outfits = &stubGenerator{outfit: domain.Outfit{Title: "Urban Explorer Look", Items: []string{"Jacket"}}, generated: false}

	result, err := service.TodayOutfit(context.Background(), "user-1", "8.8.8.8", domain.MoodConfident, "casual")

	assert.NoError(t, err)
	assert.Equal(t, "fallback", result.Source)
	assert.Equal(t, "fallback", logged.Source)
	assert.Equal(t, "user-1", logged.OwnerID)
	assert.True(t, logged.Synthetic)
	mockRepo.AssertExpectations(t)
}
