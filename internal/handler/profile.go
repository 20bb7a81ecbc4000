package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
)

// ProfileStore is implemented by repository.ProfileRepo.
type ProfileStore interface {
    Get(ctx context.Context, userID uint64) (model.Profile, error)
    Upsert(ctx context.Context, p *model.Profile) error
}

// ProfileHandler serves /v1/profile.
type ProfileHandler struct {
    Profiles ProfileStore
    Events   queue.Publisher
}

func NewProfileHandler(profiles ProfileStore, events queue.Publisher) *ProfileHandler {
    if profiles == nil {
        panic("nil repository passed to NewProfileHandler")
    }
    return &ProfileHandler{Profiles: profiles, Events: events}
}

// Get handles GET /v1/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    p, err := h.Profiles.Get(ctx, uid)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, p)
}

// Put handles PUT /v1/profile and replaces all preferences.
func (h *ProfileHandler) Put(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        PreferredStyles []string `json:"preferred_styles"`
        PreferredColors []string `json:"preferred_colors"`
        AvoidedColors   []string `json:"avoided_colors"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    avoided := make(map[string]bool, len(body.AvoidedColors))
    for _, col := range body.AvoidedColors {
        avoided[normalizeWord(col)] = true
    }
    for _, col := range body.PreferredColors {
        if avoided[normalizeWord(col)] {
            return badRequest(c, "color "+col+" is both preferred and avoided")
        }
    }
    p := model.Profile{UserID: uid, PreferredStyles: body.PreferredStyles, PreferredColors: body.PreferredColors, AvoidedColors: body.AvoidedColors}
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Profiles.Upsert(ctx, &p); err != nil {
        return fail(c, err, "could not save profile")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventProfileChanged, uid))
    return c.JSON(http.StatusOK, p)
}
