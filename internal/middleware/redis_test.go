package middleware

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strconv"
    "strings"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { rdb.Close() })
    return mr, rdb
}

// asUser stands in for JWTAuth: X-User carries the caller's id.
func asUser(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error {
        if v := c.Request().Header.Get("X-User"); v != "" {
            id, _ := strconv.ParseUint(v, 10, 64)
            c.Set(UserIDKey, id)
        }
        return next(c)
    }
}

func request(e *echo.Echo, method, target string, user uint64) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, nil)
    req.Header.Set("X-User", strconv.FormatUint(user, 10))
    return serve(e, req)
}

func keysWithPrefix(mr *miniredis.Miniredis, prefix string) []string {
    var out []string
    for _, k := range mr.Keys() {
        if strings.HasPrefix(k, prefix) {
            out = append(out, k)
        }
    }
    return out
}

func TestRedisCache_HitMissAndInvalidation(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        TTL:          time.Minute,
        KeyStrategy:  "user_route_query",
        Prefix:       "wardrobe:cache",
        MaxBodyBytes: 1 << 20,
    }
    calls := 0
    e := echo.New()
    g := e.Group("/v1", asUser, NewRedisCache(cfg, rdb))
    g.GET("/items", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"calls": calls})
    })
    g.POST("/items", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
    g.GET("/broken", func(c echo.Context) error {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "boom"})
    })

    body := func(rec *httptest.ResponseRecorder) float64 {
        var out map[string]float64
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
        return out["calls"]
    }

    rec := request(e, http.MethodGet, "/v1/items?season=winter", 1)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.Equal(t, 1.0, body(rec))

    rec = request(e, http.MethodGet, "/v1/items?season=winter", 1)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
    assert.Equal(t, 1.0, body(rec))
    assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

    // another user never sees user 1's entry
    rec = request(e, http.MethodGet, "/v1/items?season=winter", 2)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.Equal(t, 2.0, body(rec))

    require.Len(t, keysWithPrefix(mr, "wardrobe:cache:user:1:"), 1)
    require.Len(t, keysWithPrefix(mr, "wardrobe:cache:user:2:"), 1)
    assert.Equal(t, time.Minute, mr.TTL(keysWithPrefix(mr, "wardrobe:cache:user:1:")[0]))

    rec = request(e, http.MethodPost, "/v1/items", 1)
    require.Equal(t, http.StatusCreated, rec.Code)
    assert.Empty(t, keysWithPrefix(mr, "wardrobe:cache:user:1:"))
    assert.Len(t, keysWithPrefix(mr, "wardrobe:cache:user:2:"), 1)

    rec = request(e, http.MethodGet, "/v1/items?season=winter", 1)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.Equal(t, 3.0, body(rec))

    // failures are not cached
    request(e, http.MethodGet, "/v1/broken", 3)
    assert.Empty(t, keysWithPrefix(mr, "wardrobe:cache:user:3:"))
}

func TestInvalidateUser(t *testing.T) {
    mr, rdb := newRedis(t)
    for _, k := range []string{
        "wardrobe:cache:user:1:a", "wardrobe:cache:user:1:b",
        "wardrobe:cache:user:12:a", "wardrobe:cache:user:2:a", "other:user:1:a",
    } {
        require.NoError(t, mr.Set(k, "x"))
    }
    // more than one DEL batch
    for i := 0; i < 250; i++ {
        require.NoError(t, mr.Set(fmt.Sprintf("wardrobe:cache:user:3:%d", i), "x"))
    }

    ctx := context.Background()
    require.NoError(t, InvalidateUser(ctx, rdb, "wardrobe:cache", 1))
    require.NoError(t, InvalidateUser(ctx, rdb, "wardrobe:cache", 3))

    assert.ElementsMatch(t,
        []string{"other:user:1:a", "wardrobe:cache:user:12:a", "wardrobe:cache:user:2:a"},
        mr.Keys())

    assert.NoError(t, InvalidateUser(ctx, nil, "wardrobe:cache", 1))
}

func TestTake_TokenBucket(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := config.RateLimitConfig{Capacity: 2, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}
    ctx := context.Background()
    t0 := time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)

    res, err := take(ctx, rdb, cfg, "rl:a", t0)
    require.NoError(t, err)
    assert.True(t, res.allowed)
    assert.Equal(t, int64(1), res.remaining)

    res, err = take(ctx, rdb, cfg, "rl:a", t0.Add(100*time.Millisecond))
    require.NoError(t, err)
    assert.True(t, res.allowed)
    assert.Equal(t, int64(0), res.remaining)

    res, err = take(ctx, rdb, cfg, "rl:a", t0.Add(400*time.Millisecond))
    require.NoError(t, err)
    assert.False(t, res.allowed)
    assert.Equal(t, 600*time.Millisecond, res.retry)

    // buckets are independent
    res, err = take(ctx, rdb, cfg, "rl:b", t0.Add(400*time.Millisecond))
    require.NoError(t, err)
    assert.True(t, res.allowed)

    res, err = take(ctx, rdb, cfg, "rl:a", t0.Add(time.Second))
    require.NoError(t, err)
    assert.True(t, res.allowed, "one token refilled after the interval")
    assert.Equal(t, int64(0), res.remaining)

    // a long pause refills to capacity, not beyond
    res, err = take(ctx, rdb, cfg, "rl:a", t0.Add(time.Hour))
    require.NoError(t, err)
    assert.True(t, res.allowed)
    assert.Equal(t, int64(1), res.remaining)

    assert.Equal(t, time.Minute, mr.TTL("rl:a"))
}

func TestTokenBucket_Middleware(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := config.RateLimitConfig{
        Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour,
        TTL: time.Hour, KeyStrategy: "user", Prefix: "wardrobe:rl",
    }
    e := echo.New()
    e.GET("/v1/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, asUser, NewTokenBucket(cfg, rdb))

    rec := request(e, http.MethodGet, "/v1/me", 1)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
    assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

    rec = request(e, http.MethodGet, "/v1/me", 1)
    require.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
    var out map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    assert.Equal(t, "rate limit exceeded", out["error"])
    assert.Equal(t, 3600.0, out["retry_after"])

    rec = request(e, http.MethodGet, "/v1/me", 2)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.True(t, mr.Exists("wardrobe:rl:user:1"))

    // an unreachable Redis lets requests through
    mr.Close()
    rec = request(e, http.MethodGet, "/v1/me", 1)
    assert.Equal(t, http.StatusOK, rec.Code)
}
