package middleware

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus/testutil"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
    "github.com/Enochrwa/wardrobe-system-backend/internal/utils"
)

const secret = "test-secret"

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.GET("/me", func(c echo.Context) error {
        id, ok := UserID(c)
        require.True(t, ok)
        return c.JSON(http.StatusOK, echo.Map{"id": id, "username": c.Get(UsernameKey)})
    }, JWTAuth(secret))

    tok, err := utils.NewAccessToken(secret, 42, "ada", 5)
    require.NoError(t, err)

    req := httptest.NewRequest(http.MethodGet, "/me", nil)
    req.Header.Set("Authorization", "Bearer "+tok.Token)
    rec := serve(e, req)
    require.Equal(t, http.StatusOK, rec.Code)
    var body map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, 42.0, body["id"])
    assert.Equal(t, "ada", body["username"])

    tests := map[string]string{
        "no header":    "",
        "not bearer":   "Basic abc",
        "garbage":      "Bearer abc.def.ghi",
        "wrong secret": "Bearer " + mustToken(t, "other", 42),
    }
    for name, header := range tests {
        t.Run(name, func(t *testing.T) {
            req := httptest.NewRequest(http.MethodGet, "/me", nil)
            if header != "" {
                req.Header.Set("Authorization", header)
            }
            assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
        })
    }
}

func mustToken(t *testing.T, key string, id uint64) string {
    t.Helper()
    tok, err := utils.NewAccessToken(key, id, "x", 5)
    require.NoError(t, err)
    return tok.Token
}

func TestUserIDAndSubject(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

    _, ok := UserID(c)
    assert.False(t, ok)
    assert.Equal(t, "anon", subject(c))

    c.Set(UserIDKey, "7")
    _, ok = UserID(c)
    assert.False(t, ok, "string ids are not accepted")

    c.Set(UserIDKey, uint64(7))
    id, ok := UserID(c)
    assert.True(t, ok)
    assert.Equal(t, uint64(7), id)
    assert.Equal(t, "7", subject(c))
}

func TestCacheKeyFrom(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "wardrobe:cache", KeyStrategy: "user_route_query"}
    e := echo.New()
    ctxFor := func(target string, uid uint64) echo.Context {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        c.SetPath("/v1/recommendations/outfits")
        if uid != 0 {
            c.Set(UserIDKey, uid)
        }
        return c
    }

    a := cacheKeyFrom(cfg, ctxFor("/v1/recommendations/outfits?occasion=casual&k=3", 1))
    b := cacheKeyFrom(cfg, ctxFor("/v1/recommendations/outfits?k=3&occasion=casual", 1))
    other := cacheKeyFrom(cfg, ctxFor("/v1/recommendations/outfits?occasion=casual&k=3", 2))
    diffQuery := cacheKeyFrom(cfg, ctxFor("/v1/recommendations/outfits?occasion=formal&k=3", 1))

    assert.Equal(t, a, b, "query order must not matter")
    assert.NotEqual(t, a, other)
    assert.NotEqual(t, a, diffQuery)
    assert.True(t, strings.HasPrefix(a, "wardrobe:cache:user:1:"))
    assert.True(t, strings.HasPrefix(other, "wardrobe:cache:user:2:"))

    for _, strategy := range []string{"route", "route_query", "user_route"} {
        cfg.KeyStrategy = strategy
        one := cacheKeyFrom(cfg, ctxFor("/v1/recommendations/outfits?occasion=casual", 1))
        two := cacheKeyFrom(cfg, ctxFor("/v1/recommendations/outfits?occasion=casual", 2))
        assert.NotEqual(t, one, two, strategy)
        assert.True(t, strings.HasPrefix(one, "wardrobe:cache:user:1:"), strategy)
        assert.True(t, strings.HasPrefix(two, "wardrobe:cache:user:2:"), strategy)
    }
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
    require.NoError(t, err)

    status, gotHdr, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
    assert.Equal(t, `{"ok":true}`, string(body))

    _, _, _, ok = decodePayload([]byte{0, 0})
    assert.False(t, ok)
    _, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 50, '{'})
    assert.False(t, ok)
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
    e := echo.New()
    calls := 0
    h := func(c echo.Context) error { calls++; return c.String(http.StatusOK, "ok") }
    e.GET("/a", h,
        NewRedisCache(config.CacheConfig{Enabled: true}, nil),
        NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))

    for i := 0; i < 3; i++ {
        rec := serve(e, httptest.NewRequest(http.MethodGet, "/a", nil))
        assert.Equal(t, http.StatusOK, rec.Code)
        assert.Empty(t, rec.Header().Get("X-Cache"))
    }
    assert.Equal(t, 3, calls)
    assert.NoError(t, InvalidateUser(context.Background(), nil, "p", 1))
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
    req.RemoteAddr = "10.0.0.1:1234"
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/items")
    c.Set(UserIDKey, uint64(5))

    cfg := config.RateLimitConfig{Prefix: "rl"}
    assert.Equal(t, "rl:ip:10.0.0.1:user:5:route:GET /v1/items", buildRateKey(cfg, c))
    cfg.KeyStrategy = "user"
    assert.Equal(t, "rl:user:5", buildRateKey(cfg, c))
    cfg.KeyStrategy = "ip"
    assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(cfg, c))
}

func TestRequestLogger(t *testing.T) {
    var buf bytes.Buffer
    log := slog.New(slog.NewJSONHandler(&buf, nil))
    m := metrics.New()

    e := echo.New()
    e.Use(RequestLogger(log, m))
    e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
    e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

    assert.Equal(t, http.StatusNoContent, serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
    assert.Equal(t, http.StatusInternalServerError, serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil)).Code)

    lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
    require.Len(t, lines, 2)

    var first, second map[string]any
    require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
    require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
    assert.Equal(t, "INFO", first["level"])
    assert.Equal(t, 204.0, first["status"])
    assert.Equal(t, "anon", first["user"])
    assert.Equal(t, "ERROR", second["level"])
    assert.Equal(t, "boom", second["err"])

    n, err := testutil.GatherAndCount(m.Registry, "wardrobe_http_requests_total")
    require.NoError(t, err)
    assert.Equal(t, 2, n)
}
