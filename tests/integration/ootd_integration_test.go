//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/adapters/primary/rest"
	"github.com/fashionai/stylist-service/internal/adapters/secondary/ipapi"
	"github.com/fashionai/stylist-service/internal/adapters/secondary/openweather"
	"github.com/fashionai/stylist-service/internal/core/domain"
	"github.com/fashionai/stylist-service/internal/core/ports"
	"github.com/fashionai/stylist-service/internal/core/services"
	"github.com/fashionai/stylist-service/internal/middleware"
)

// memoryRepo is an in-memory DailyOutfitRepository for the end-to-end flow.
type memoryRepo struct {
	mu      sync.Mutex
	records map[string][]*domain.DailyOutfitRecord
	events  []ports.GenerationEvent
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string][]*domain.DailyOutfitRecord)}
}

func (r *memoryRepo) Insert(ctx context.Context, rec *domain.DailyOutfitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.OwnerID] = append(r.records[rec.OwnerID], rec)
	return nil
}

func (r *memoryRepo) LatestByOwner(ctx context.Context, ownerID string) (*domain.DailyOutfitRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.records[ownerID]

	if len(recs) == 0 {
		return nil, nil
	}

	latest := recs[0]

	for _, rec := range recs[1:] {
		if rec.GeneratedAt.After(latest.GeneratedAt) {
			latest = rec
		}
	}

	return latest, nil
}

func (r *memoryRepo) DeleteExpired(ctx context.Context, ownerID string, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []*domain.DailyOutfitRecord
	var deleted int64

	for _, rec := range r.records[ownerID] {
		if rec.Expired(before) {
			deleted++
			continue
		}

		kept = append(kept, rec)
	}

	r.records[ownerID] = kept
	return deleted, nil
}

func (r *memoryRepo) LogGeneration(ctx context.Context, event ports.GenerationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

type OOTDIntegrationSuite struct {
	suite.Suite
	server      *httptest.Server
	mockGeo     *httptest.Server
	mockWeather *httptest.Server
	repo        *memoryRepo
	geoDown     bool
	weatherDown bool
}

func TestOOTDIntegrationSuite(t *testing.T) {
	suite.Run(t, new(OOTDIntegrationSuite))
}

func (s *OOTDIntegrationSuite) SetupSuite() {
	s.setupMockGeo()
	s.setupMockWeather()
}

func (s *OOTDIntegrationSuite) SetupTest() {
	s.repo = newMemoryRepo()
	s.geoDown = false
	s.weatherDown = false
	s.setupApplication()
}

func (s *OOTDIntegrationSuite) TearDownTest() {
	s.server.Close()
}

func (s *OOTDIntegrationSuite) TearDownSuite() {
	s.mockGeo.Close()
	s.mockWeather.Close()
}

func (s *OOTDIntegrationSuite) setupMockGeo() {
	s.mockGeo = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.geoDown {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"status": "success",
			"city": "Berlin",
			"country": "Germany",
			"countryCode": "DE",
			"lat": 52.52,
			"lon": 13.405
		}`)
	}))
}

func (s *OOTDIntegrationSuite) setupMockWeather() {
	s.mockWeather = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.weatherDown {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"name": "Berlin",
			"sys": {"country": "DE"},
			"weather": [{"main": "Rain", "description": "light rain"}],
			"main": {"temp": 12.4, "feels_like": 11.1, "temp_min": 10.2, "temp_max": 14.8, "humidity": 78, "pressure": 1012},
			"wind": {"speed": 4.1}
		}`)
	}))
}

func (s *OOTDIntegrationSuite) setupApplication() {
	logger := zap.NewNop()
	httpClient := &http.Client{Timeout: 5 * time.Second}

	geoClient := ipapi.NewClient(s.mockGeo.URL, httpClient, logger)
	weatherClient := openweather.NewClient(s.mockWeather.URL, "test-key", httpClient, logger)

	locations := services.NewLocationService(geoClient, logger)
	weather := services.NewWeatherService(weatherClient, true, nil, logger)
	outfits := services.NewOutfitGenerator(nil, false, logger)
	ootd := services.NewOOTDService(s.repo, locations, weather, outfits, logger)

	ootdHandler := rest.NewOOTDHandler(ootd, logger)
	weatherHandler := rest.NewWeatherHandler(locations, weather, outfits, logger)
	auth := middleware.NewAuthMiddleware("", logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware)
	api.HandleFunc("/outfits/smart/ootd", ootdHandler.GetTodayOutfit).Methods("GET")
	api.HandleFunc("/weather/current", weatherHandler.GetCurrentWeather).Methods("GET")
	api.HandleFunc("/weather/recommendations/auto", weatherHandler.GetAutoRecommendations).Methods("GET")

	s.server = httptest.NewServer(router)
}

func (s *OOTDIntegrationSuite) getJSON(target string) (int, map[string]interface{}) {
	req, err := http.NewRequest("GET", s.server.URL+target, nil)
	s.Require().NoError(err)

	// Routable address so the resolver consults the geo provider.
	req.Header.Set("X-Forwarded-For", "93.184.216.34")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)

	defer resp.Body.Close()

	body := map[string]interface{}{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))

	return resp.StatusCode, body
}

// TestFreshGenerationUsesLiveProviders drives the full flow: IP lookup,
// live weather, fallback outfit, persistence.
func (s *OOTDIntegrationSuite) TestFreshGenerationUsesLiveProviders() {
	status, body := s.getJSON("/api/v1/outfits/smart/ootd?mood=chill")

	s.Equal(http.StatusOK, status)
	s.Equal(true, body["success"])
	s.Equal(false, body["isCached"])

	weather := body["weather"].(map[string]interface{})
	s.Equal("Berlin, DE", weather["location"])
	s.Equal(float64(12), weather["temperature"])
	s.Equal(false, weather["isMock"])

	location := body["location"].(map[string]interface{})
	s.Equal("Berlin", location["city"])
	s.Equal(true, location["detectedByIP"])

	outfit := body["outfit"].(map[string]interface{})
	s.Equal("Cozy Comfort Outfit", outfit["title"])

	s.Len(s.repo.records["dev_user"], 1)
	s.Len(s.repo.events, 1)
	s.Equal("fallback", s.repo.events[0].Source)
}

// TestSecondRequestIsCached verifies the memoization window.
func (s *OOTDIntegrationSuite) TestSecondRequestIsCached() {
	status, first := s.getJSON("/api/v1/outfits/smart/ootd")
	s.Equal(http.StatusOK, status)

	status, second := s.getJSON("/api/v1/outfits/smart/ootd?mood=edgy")
	s.Equal(http.StatusOK, status)
	s.Equal(true, second["isCached"])

	firstOutfit := first["outfit"].(map[string]interface{})
	secondOutfit := second["outfit"].(map[string]interface{})
	s.Equal(firstOutfit["title"], secondOutfit["title"])

	// Only the first request generated and persisted.
	s.Len(s.repo.records["dev_user"], 1)
}

// TestUpstreamOutagesStillServe verifies both providers failing still
// yields a complete outfit response built on defaults.
func (s *OOTDIntegrationSuite) TestUpstreamOutagesStillServe() {
	s.geoDown = true
	s.weatherDown = true

	status, body := s.getJSON("/api/v1/outfits/smart/ootd")

	s.Equal(http.StatusOK, status)
	s.Equal(true, body["success"])

	weather := body["weather"].(map[string]interface{})
	s.Equal(true, weather["isMock"])

	location := body["location"].(map[string]interface{})
	s.Equal("Cairo", location["city"])
	s.Equal(false, location["detectedByIP"])

	outfit := body["outfit"].(map[string]interface{})
	items := outfit["items"].([]interface{})
	s.GreaterOrEqual(len(items), 5)
}

// TestDuplicateRecordsServeNewest verifies the read path tolerates
// duplicate stored records for one user and serves the newest one.
func (s *OOTDIntegrationSuite) TestDuplicateRecordsServeNewest() {
	now := time.Now()

	older := domain.NewDailyOutfitRecord("dev_user",
		domain.Outfit{Title: "Earlier Pick", Items: []string{"Cardigan", "Tee", "Jeans", "Sneakers", "Tote"}},
		domain.Weather{}, now.Add(-6*time.Hour))
	newer := domain.NewDailyOutfitRecord("dev_user",
		domain.Outfit{Title: "Latest Pick", Items: []string{"Blazer", "Shirt", "Trousers", "Loafers", "Watch"}},
		domain.Weather{}, now.Add(-time.Hour))

	s.Require().NoError(s.repo.Insert(context.Background(), older))
	s.Require().NoError(s.repo.Insert(context.Background(), newer))

	status, body := s.getJSON("/api/v1/outfits/smart/ootd")

	s.Equal(http.StatusOK, status)
	s.Equal(true, body["isCached"])

	outfit := body["outfit"].(map[string]interface{})
	s.Equal("Latest Pick", outfit["title"])

	// No regeneration; both stored records remain.
	s.Len(s.repo.records["dev_user"], 2)
}

// TestWeatherEndpointsShareTheStack sanity checks the supporting weather
// routes against the same wiring.
func (s *OOTDIntegrationSuite) TestWeatherEndpointsShareTheStack() {
	status, body := s.getJSON("/api/v1/weather/current")
	s.Equal(http.StatusOK, status)

	weather := body["weather"].(map[string]interface{})
	s.Equal("Rain", weather["condition"])

	status, body = s.getJSON("/api/v1/weather/recommendations/auto")
	s.Equal(http.StatusOK, status)

	items := body["items"].([]interface{})
	s.NotEmpty(items)

	first := items[0].(map[string]interface{})
	s.NotEmpty(first["category"])
}
