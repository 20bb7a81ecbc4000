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

    "github.com/Enochrwa/wardrobe-system-backend/internal/middleware"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
    "github.com/Enochrwa/wardrobe-system-backend/internal/repository"
)

// dbTimeout bounds the database work of one request.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID returns the authenticated user.  Routes behind JWTAuth always
// have one; the error path only guards against wiring mistakes.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := middleware.UserID(c); ok {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    return id, err == nil && id > 0
}

// fail maps repository and recommendation errors to a status code.  Only
// unexpected failures are logged; they are answered with msg.
func fail(c echo.Context, err error, msg string) error {
    switch {
    case errors.Is(err, repository.ErrNotFound), errors.Is(err, recommend.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": errText(err, "not found")})
    case errors.Is(err, recommend.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrInvalid):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "references a resource you do not own"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": msg})
    case errors.Is(err, recommend.ErrStoreUnavailable):
        slog.ErrorContext(c.Request().Context(), msg, "path", c.Path(), "err", err)
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable"})
    case errors.Is(err, context.DeadlineExceeded):
        slog.ErrorContext(c.Request().Context(), msg, "path", c.Path(), "err", err)
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "timed out"})
    }
    slog.ErrorContext(c.Request().Context(), msg, "path", c.Path(), "err", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// errText keeps the recommendation core's message, which tells the user
// what is missing, and falls back to def for bare repository errors.
func errText(err error, def string) string {
    if errors.Is(err, recommend.ErrNotFound) {
        return err.Error()
    }
    return def
}

// publish sends ev without failing the request.
func publish(c echo.Context, p queue.Publisher, ev queue.Event) {
    if p == nil {
        return
    }
    // the request context may end before the broker answers
    ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 3*time.Second)
    defer cancel()
    if err := p.Publish(ctx, ev); err != nil {
        slog.Warn("event publish failed", "type", ev.Type, "user", ev.UserID, "err", err)
    }
}

func normalizeWord(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
