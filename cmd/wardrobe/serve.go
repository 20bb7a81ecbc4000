package main

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"
    "github.com/spf13/cobra"
    "golang.org/x/sync/errgroup"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
    "github.com/Enochrwa/wardrobe-system-backend/internal/handler"
    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
    "github.com/Enochrwa/wardrobe-system-backend/internal/middleware"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/repository"
    "github.com/Enochrwa/wardrobe-system-backend/internal/router"
    "github.com/Enochrwa/wardrobe-system-backend/internal/weather"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "serve",
        Short: "Run the HTTP API and the event consumer",
        Args:  cobra.NoArgs,
        RunE:  runServe,
    }
}

func runServe(cmd *cobra.Command, _ []string) error {
    cfg, err := config.Load()
    if err != nil {
        return err
    }
    ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := openDB(cmd, cfg)
    if err != nil {
        return err
    }
    defer db.Close()

    // nil when Redis is unreachable; cache and rate limiting are then off
    rdb := config.NewRedisClient(config.LoadRedisConfig())
    if rdb != nil {
        defer rdb.Close()
    }
    cacheCfg := config.LoadCacheConfig()

    m := metrics.New()
    var events queue.Publisher = queue.Nop{}
    if cfg.Queue.Enabled {
        p := queue.NewAMQPPublisher(cfg.Queue.URL, cfg.Queue.Name, m)
        defer p.Close()
        events = p
    }

    svc, err := newService(cfg, db)
    if err != nil {
        return err
    }
    store := repository.NewStore(db)

    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Use(echomw.Recover())
    e.Use(middleware.RequestLogger(slog.Default(), m))
    router.RegisterRoutes(e, router.Deps{
        JWTSecret: cfg.JWTSecret,
        DB:        db,
        Redis:     rdb,
        Cache:     cacheCfg,
        RateLimit: config.LoadRateLimitConfig(),
        Metrics:   m,
        Auth:      handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
        Items:     handler.NewItemHandler(store.Items, svc.Catalog(), events),
        Outfits:   handler.NewOutfitHandler(store.Outfits, events),
        Plans:     handler.NewPlanHandler(store.Plans, events),
        Occasions: handler.NewOccasionHandler(repository.NewOccasionRepo(db), svc, events),
        History:   handler.NewHistoryHandler(store.History, events),
        Profile:   handler.NewProfileHandler(store.Profiles, events),
        Recommend: handler.NewRecommendHandler(svc, weather.New(cfg.Weather.APIKey), m),
    })

    g, gctx := errgroup.WithContext(ctx)
    addr := ":" + cfg.Port
    g.Go(func() error {
        slog.Info("listening", "addr", addr, "env", cfg.Env)
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return fmt.Errorf("http server: %w", err)
        }
        return nil
    })
    g.Go(func() error {
        <-gctx.Done()
        sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
        defer cancel()
        slog.Info("shutting down")
        return e.Shutdown(sctx)
    })
    if cfg.Queue.Enabled {
        c := &queue.Consumer{
            URL:      cfg.Queue.URL,
            Queue:    cfg.Queue.Name,
            Prefetch: 16,
            Handle:   invalidateOnEvent(rdb, cacheCfg.Prefix),
            Metrics:  m,
            Log:      slog.Default(),
        }
        g.Go(func() error { return c.Run(gctx) })
    }
    return g.Wait()
}

// invalidateOnEvent drops the cached responses of the event's user.  The
// HTTP path already invalidates on its own writes, so this covers changes
// published to the queue by producers that do not pass through it.
func invalidateOnEvent(rdb *redis.Client, prefix string) queue.HandlerFunc {
    return func(ctx context.Context, ev queue.Event) error {
        slog.DebugContext(ctx, "wardrobe event", "id", ev.ID, "type", ev.Type, "user", ev.UserID)
        return middleware.InvalidateUser(ctx, rdb, prefix, ev.UserID)
    }
}
