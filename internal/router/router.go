package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
    "github.com/Enochrwa/wardrobe-system-backend/internal/handler"
    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
    "github.com/Enochrwa/wardrobe-system-backend/internal/middleware"
)

// Deps carries everything the routes need.  Redis, Metrics and DB may be
// nil; the matching features are then switched off.
type Deps struct {
    JWTSecret string
    DB        handler.Pinger
    Redis     *redis.Client
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    Metrics   *metrics.Metrics

    Auth      *handler.AuthHandler
    Items     *handler.ItemHandler
    Outfits   *handler.OutfitHandler
    Plans     *handler.PlanHandler
    Occasions *handler.OccasionHandler
    History   *handler.HistoryHandler
    Profile   *handler.ProfileHandler
    Recommend *handler.RecommendHandler
}

// RegisterRoutes mounts the public endpoints, the auth endpoints and the
// protected /v1 API on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
    // liveness and scraping stay outside rate limiting
    e.GET("/healthz", handler.Health(d.DB))
    if d.Metrics != nil {
        e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
    }

    // Unauthenticated operations issue or exchange tokens.  They share the
    // IP based buckets of the limiter.
    a := e.Group("/v1/auth", middleware.NewTokenBucket(d.RateLimit, d.Redis))
    a.POST("/register", d.Auth.Register)
    a.POST("/login", d.Auth.Login)
    a.POST("/refresh", d.Auth.Refresh)
    a.POST("/logout", d.Auth.Logout)

    // JWTAuth runs first so the limiter and the cache see the caller.
    v1 := e.Group("/v1",
        middleware.JWTAuth(d.JWTSecret),
        middleware.NewTokenBucket(d.RateLimit, d.Redis),
        middleware.NewRedisCache(d.Cache, d.Redis),
    )
    v1.GET("/me", d.Auth.Me)

    v1.GET("/profile", d.Profile.Get)
    v1.PUT("/profile", d.Profile.Put)

    v1.POST("/items", d.Items.Create)
    v1.GET("/items", d.Items.List)
    v1.GET("/items/:id", d.Items.Get)
    v1.PUT("/items/:id", d.Items.Update)
    v1.DELETE("/items/:id", d.Items.Delete)

    v1.POST("/outfits", d.Outfits.Create)
    v1.GET("/outfits", d.Outfits.List)
    v1.GET("/outfits/:id", d.Outfits.Get)
    v1.PUT("/outfits/:id", d.Outfits.Update)
    v1.DELETE("/outfits/:id", d.Outfits.Delete)

    v1.POST("/plans/week", d.Plans.Week)
    v1.GET("/plans", d.Plans.List)
    v1.PUT("/plans/:date", d.Plans.Put)
    v1.DELETE("/plans/:date", d.Plans.Delete)

    v1.POST("/occasions", d.Occasions.Create)
    v1.GET("/occasions", d.Occasions.List)
    v1.GET("/occasions/:id", d.Occasions.Get)
    v1.PUT("/occasions/:id", d.Occasions.Update)
    v1.DELETE("/occasions/:id", d.Occasions.Delete)

    v1.POST("/history", d.History.Create)
    v1.GET("/history", d.History.List)
    v1.GET("/history/:id", d.History.Get)

    v1.GET("/recommendations/outfits", d.Recommend.Outfits)
    v1.GET("/recommendations/items", d.Recommend.Items)
    v1.GET("/recommendations/additions", d.Recommend.Additions)
    v1.GET("/statistics/wardrobe", d.Recommend.Statistics)
}
