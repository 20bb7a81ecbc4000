package router

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/goleak"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
    "github.com/Enochrwa/wardrobe-system-backend/internal/handler"
    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
    "github.com/Enochrwa/wardrobe-system-backend/internal/utils"
)

func TestMain(m *testing.M) {
    goleak.VerifyTestMain(m)
}

const secret = "router-secret"

type stubRecommender struct{ calls int }

func (s *stubRecommender) RecommendOutfitForOccasion(context.Context, uint64, recommend.Request) ([]recommend.OutfitRecommendation, error) {
    s.calls++
    return nil, nil
}

func (s *stubRecommender) RecommendItemsForOccasion(context.Context, uint64, recommend.Request) ([]recommend.ItemRecommendation, error) {
    s.calls++
    return nil, nil
}

func (s *stubRecommender) SuggestWardrobeAdditions(context.Context, uint64, int) ([]recommend.CategorySuggestion, error) {
    s.calls++
    return nil, nil
}

func (s *stubRecommender) Statistics(context.Context, uint64) (recommend.WardrobeStats, error) {
    s.calls++
    return recommend.WardrobeStats{TotalItems: 2}, nil
}

func (s *stubRecommender) DefaultK() int { return 3 }

func newServer(t *testing.T) (*echo.Echo, *stubRecommender) {
    t.Helper()
    rec := &stubRecommender{}
    e := echo.New()
    RegisterRoutes(e, Deps{
        JWTSecret: secret,
        Cache:     config.CacheConfig{Enabled: false},
        RateLimit: config.RateLimitConfig{Enabled: false},
        Metrics:   metrics.New(),
        Auth:      &handler.AuthHandler{Cfg: config.Config{JWTSecret: secret}},
        Items:     &handler.ItemHandler{},
        Outfits:   &handler.OutfitHandler{},
        Plans:     &handler.PlanHandler{},
        Occasions: &handler.OccasionHandler{},
        History:   &handler.HistoryHandler{},
        Profile:   &handler.ProfileHandler{},
        Recommend: handler.NewRecommendHandler(rec, nil, nil),
    })
    return e, rec
}

func TestRegisterRoutes_Table(t *testing.T) {
    e, _ := newServer(t)

    got := map[string]bool{}
    for _, r := range e.Routes() {
        got[r.Method+" "+r.Path] = true
    }
    for _, want := range []string{
        "GET /healthz",
        "GET /metrics",
        "POST /v1/auth/register",
        "POST /v1/auth/login",
        "POST /v1/auth/refresh",
        "POST /v1/auth/logout",
        "GET /v1/me",
        "GET /v1/profile",
        "PUT /v1/profile",
        "POST /v1/items",
        "GET /v1/items",
        "GET /v1/items/:id",
        "PUT /v1/items/:id",
        "DELETE /v1/items/:id",
        "POST /v1/outfits",
        "GET /v1/outfits",
        "GET /v1/outfits/:id",
        "PUT /v1/outfits/:id",
        "DELETE /v1/outfits/:id",
        "POST /v1/plans/week",
        "GET /v1/plans",
        "PUT /v1/plans/:date",
        "DELETE /v1/plans/:date",
        "POST /v1/occasions",
        "GET /v1/occasions",
        "GET /v1/occasions/:id",
        "PUT /v1/occasions/:id",
        "DELETE /v1/occasions/:id",
        "POST /v1/history",
        "GET /v1/history",
        "GET /v1/history/:id",
        "GET /v1/recommendations/outfits",
        "GET /v1/recommendations/items",
        "GET /v1/recommendations/additions",
        "GET /v1/statistics/wardrobe",
    } {
        assert.True(t, got[want], "missing route %s", want)
    }
}

func TestRegisterRoutes_AuthRequired(t *testing.T) {
    e, svc := newServer(t)

    req := httptest.NewRequest(http.MethodGet, "/v1/statistics/wardrobe", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Zero(t, svc.calls)

    tok, err := utils.NewAccessToken(secret, 5, "ngozi", 15)
    require.NoError(t, err)
    req = httptest.NewRequest(http.MethodGet, "/v1/statistics/wardrobe", nil)
    req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"total_items":2`)
    assert.Equal(t, 1, svc.calls)
}

func TestRegisterRoutes_HealthAndMetrics(t *testing.T) {
    e, _ := newServer(t)

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    assert.Equal(t, http.StatusOK, rec.Code)

    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "go_goroutines")
}
