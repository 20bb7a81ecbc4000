package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
    t.Helper()
    for k, v := range map[string]string{
        "APP_ENV":                "test",
        "APP_PORT":               "8080",
        "DB_USER":                "wardrobe",
        "DB_HOST":                "127.0.0.1",
        "DB_PORT":                "3306",
        "DB_NAME":                "wardrobe",
        "JWT_SECRET":             "s3cret",
        "ACCESS_TOKEN_TTL_MIN":   "15",
        "REFRESH_TOKEN_TTL_DAYS": "7",
        "BCRYPT_COST":            "4",
    } {
        t.Setenv(k, v)
    }
}

func TestLoad_Defaults(t *testing.T) {
    setRequired(t)

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, 15, cfg.AccessTTLMin)
    assert.Equal(t, RecommendConfig{TopK: 3, RecencyDays: 3, RecencyPenalty: 0.5}, cfg.Recommend)
    assert.False(t, cfg.Queue.Enabled)
    assert.Equal(t, "wardrobe.events", cfg.Queue.Name)
}

func TestLoad_Overrides(t *testing.T) {
    setRequired(t)
    t.Setenv("RECOMMEND_TOP_K", "5")
    t.Setenv("RECOMMEND_RECENCY_DAYS", "7")
    t.Setenv("RECOMMEND_RECENCY_PENALTY", "0.25")
    t.Setenv("QUEUE_ENABLED", "yes")
    t.Setenv("DB_BOOTSTRAP", "1")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, 5, cfg.Recommend.TopK)
    assert.Equal(t, 7, cfg.Recommend.RecencyDays)
    assert.Equal(t, 0.25, cfg.Recommend.RecencyPenalty)
    assert.True(t, cfg.Queue.Enabled)
    assert.True(t, cfg.DBBootstrap)
}

func TestLoad_ReportsAllProblems(t *testing.T) {
    setRequired(t)
    t.Setenv("JWT_SECRET", "")
    t.Setenv("DB_NAME", "")
    t.Setenv("BCRYPT_COST", "high")
    t.Setenv("RECOMMEND_TOP_K", "99")

    _, err := Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "DB_NAME, JWT_SECRET")
    assert.Contains(t, err.Error(), `BCRYPT_COST="high"`)
    assert.Contains(t, err.Error(), "RECOMMEND_TOP_K")
}

func TestLoadRateLimitConfig(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    rl := LoadRateLimitConfig()
    assert.Equal(t, 1, rl.Capacity)
    assert.Equal(t, 2*time.Second, rl.RefillInterval)
    assert.Equal(t, 10*time.Second, rl.TTL)
    assert.Equal(t, "wardrobe:rl", rl.Prefix)
}

func TestLoadCacheConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_ENABLED", "false")

    cc := LoadCacheConfig()
    assert.False(t, cc.Enabled)
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cc.Methods)
    assert.Equal(t, "user_route_query", cc.KeyStrategy)
    assert.Equal(t, 30*time.Second, cc.TTL)
}

func TestLoadRedisConfig(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    t.Setenv("REDIS_HOST", "")
    t.Setenv("REDIS_DB", "2")
    t.Setenv("REDIS_TLS", "TRUE")

    rc := LoadRedisConfig()
    assert.Equal(t, RedisConfig{Addr: "cache:6380", DB: 2, TLS: true}, rc)
}
