package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
)

// HistoryStore is implemented by repository.HistoryRepo.
type HistoryStore interface {
    Record(ctx context.Context, h *model.StyleHistoryRecord) error
    Get(ctx context.Context, userID, id uint64) (model.StyleHistoryRecord, error)
    List(ctx context.Context, userID uint64, offset, limit int) ([]model.StyleHistoryRecord, error)
}

// HistoryHandler serves the append-only wear log under /v1/history.
type HistoryHandler struct {
    History HistoryStore
    Events  queue.Publisher
    Now     func() time.Time
}

func NewHistoryHandler(history HistoryStore, events queue.Publisher) *HistoryHandler {
    if history == nil {
        panic("nil repository passed to NewHistoryHandler")
    }
    return &HistoryHandler{History: history, Events: events, Now: time.Now}
}

// Create handles POST /v1/history.  Exactly one of item_id and outfit_id
// is required; worn_at defaults to now and may not be in the future.
func (h *HistoryHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        ItemID   *uint64    `json:"item_id"`
        OutfitID *uint64    `json:"outfit_id"`
        WornAt   *time.Time `json:"worn_at"`
        Notes    string     `json:"notes"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if (body.ItemID == nil) == (body.OutfitID == nil) {
        return badRequest(c, "exactly one of item_id and outfit_id is required")
    }
    if (body.ItemID != nil && *body.ItemID == 0) || (body.OutfitID != nil && *body.OutfitID == 0) {
        return badRequest(c, "ids must be positive")
    }
    now := h.Now().UTC()
    rec := model.StyleHistoryRecord{UserID: uid, ItemID: body.ItemID, OutfitID: body.OutfitID, WornAt: now, Notes: strings.TrimSpace(body.Notes)}
    if body.WornAt != nil {
        if body.WornAt.After(now.Add(time.Minute)) {
            return badRequest(c, "worn_at is in the future")
        }
        rec.WornAt = body.WornAt.UTC()
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.History.Record(ctx, &rec); err != nil {
        return fail(c, err, "could not record wear")
    }
    ev := queue.NewEvent(queue.EventWorn, uid)
    if rec.ItemID != nil {
        ev = ev.WithItem(*rec.ItemID)
    } else {
        ev = ev.WithOutfit(*rec.OutfitID)
    }
    publish(c, h.Events, ev)
    return c.JSON(http.StatusCreated, rec)
}

// List handles GET /v1/history?skip=&limit=, newest first.
func (h *HistoryHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    offset, limit, ok := paging(c, 50)
    if !ok {
        return badRequest(c, "skip and limit must be non-negative, limit at most 1000")
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    recs, err := h.History.List(ctx, uid, offset, limit)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, echo.Map{"history": recs})
}

// Get handles GET /v1/history/:id.
func (h *HistoryHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := pathID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    rec, err := h.History.Get(ctx, uid, id)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, rec)
}
