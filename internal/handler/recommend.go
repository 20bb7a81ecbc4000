package handler

import (
    "context"
    "errors"
    "log/slog"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
    "github.com/Enochrwa/wardrobe-system-backend/internal/weather"
)

// Recommender is implemented by *recommend.Service.
type Recommender interface {
    RecommendOutfitForOccasion(ctx context.Context, userID uint64, req recommend.Request) ([]recommend.OutfitRecommendation, error)
    RecommendItemsForOccasion(ctx context.Context, userID uint64, req recommend.Request) ([]recommend.ItemRecommendation, error)
    SuggestWardrobeAdditions(ctx context.Context, userID uint64, limit int) ([]recommend.CategorySuggestion, error)
    Statistics(ctx context.Context, userID uint64) (recommend.WardrobeStats, error)
    DefaultK() int
}

// RecommendHandler serves /v1/recommendations and /v1/statistics.
type RecommendHandler struct {
    Svc     Recommender
    Weather weather.Provider
    Metrics *metrics.Metrics
    Now     func() time.Time
}

func NewRecommendHandler(svc Recommender, w weather.Provider, m *metrics.Metrics) *RecommendHandler {
    if svc == nil {
        panic("nil service passed to NewRecommendHandler")
    }
    return &RecommendHandler{Svc: svc, Weather: w, Metrics: m, Now: time.Now}
}

// outcome labels a result for the recommendation metrics.
func outcome(err error) string {
    switch {
    case err == nil:
        return "ok"
    case errors.Is(err, recommend.ErrNotFound):
        return "not_found"
    case errors.Is(err, recommend.ErrValidation):
        return "invalid"
    case errors.Is(err, recommend.ErrStoreUnavailable):
        return "store_unavailable"
    }
    return "error"
}

// request reads occasion, k, season and weather from the query string.
// lat and lon, when both present, look up the current weather and derive
// the season from the temperature; an explicit season still wins.
func (h *RecommendHandler) request(c echo.Context) (recommend.Request, *weather.Conditions, string) {
    now := h.Now()
    req := recommend.Request{
        Occasion: c.QueryParam("occasion"),
        Season:   c.QueryParam("season"),
        Weather:  c.QueryParam("weather"),
        At:       now,
        K:        h.Svc.DefaultK(),
    }
    if v := c.QueryParam("k"); v != "" {
        k, err := strconv.Atoi(v)
        if err != nil {
            return req, nil, "k must be an integer"
        }
        req.K = k
    }

    latS, lonS := c.QueryParam("lat"), c.QueryParam("lon")
    if latS == "" && lonS == "" {
        return req, nil, ""
    }
    lat, errLat := strconv.ParseFloat(latS, 64)
    lon, errLon := strconv.ParseFloat(lonS, 64)
    if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
        return req, nil, "lat and lon must be valid coordinates"
    }
    if h.Weather == nil || req.Season != "" {
        return req, nil, ""
    }
    cond, err := h.Weather.Current(c.Request().Context(), lat, lon)
    if err != nil {
        // fall back to the calendar season
        slog.WarnContext(c.Request().Context(), "weather lookup failed", "lat", lat, "lon", lon, "err", err)
        return req, nil, ""
    }
    req.Season = string(recommend.SeasonFromTemperature(cond.TemperatureC, now.Month()))
    return req, &cond, ""
}

// Outfits handles GET /v1/recommendations/outfits.
func (h *RecommendHandler) Outfits(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    req, cond, msg := h.request(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    start := time.Now()
    recs, err := h.Svc.RecommendOutfitForOccasion(c.Request().Context(), uid, req)
    h.Metrics.ObserveRecommendation("outfits", outcome(err), time.Since(start))
    if err != nil {
        return fail(c, err, "recommendation failed")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "occasion":        strings.ToLower(strings.TrimSpace(req.Occasion)),
        "weather":         cond,
        "recommendations": recs,
    })
}

// Items handles GET /v1/recommendations/items.
func (h *RecommendHandler) Items(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    req, cond, msg := h.request(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    start := time.Now()
    recs, err := h.Svc.RecommendItemsForOccasion(c.Request().Context(), uid, req)
    h.Metrics.ObserveRecommendation("items", outcome(err), time.Since(start))
    if err != nil {
        return fail(c, err, "recommendation failed")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "occasion":        strings.ToLower(strings.TrimSpace(req.Occasion)),
        "weather":         cond,
        "recommendations": recs,
    })
}

// Additions handles GET /v1/recommendations/additions?k=.  Without k every
// under-represented category is listed.
func (h *RecommendHandler) Additions(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    limit := 0
    if v := c.QueryParam("k"); v != "" {
        if limit, err = strconv.Atoi(v); err != nil {
            return badRequest(c, "k must be an integer")
        }
    }
    start := time.Now()
    sugg, err := h.Svc.SuggestWardrobeAdditions(c.Request().Context(), uid, limit)
    h.Metrics.ObserveRecommendation("additions", outcome(err), time.Since(start))
    if err != nil {
        return fail(c, err, "suggestion failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"suggestions": sugg})
}

// Statistics handles GET /v1/statistics/wardrobe.
func (h *RecommendHandler) Statistics(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    st, err := h.Svc.Statistics(c.Request().Context(), uid)
    if err != nil {
        return fail(c, err, "statistics failed")
    }
    return c.JSON(http.StatusOK, st)
}
