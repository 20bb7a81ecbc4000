package middleware

import (
    "log/slog"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/metrics"
)

// RequestLogger logs one line per request and feeds the HTTP metrics.
// m may be nil.  Server errors log at error level, client errors at warn.
func RequestLogger(log *slog.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let the error handler write the response so the status is final
                c.Error(err)
            }
            req, res := c.Request(), c.Response()
            elapsed := time.Since(start)
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            m.ObserveRequest(req.Method, route, res.Status, elapsed)

            level := slog.LevelInfo
            switch {
            case res.Status >= 500:
                level = slog.LevelError
            case res.Status >= 400:
                level = slog.LevelWarn
            }
            attrs := []any{
                "method", req.Method,
                "path", req.URL.Path,
                "route", route,
                "status", res.Status,
                "user", subject(c),
                "duration", elapsed,
                "bytes", res.Size,
            }
            if err != nil {
                attrs = append(attrs, "err", err)
            }
            log.Log(req.Context(), level, "request", attrs...)
            return nil
        }
    }
}
