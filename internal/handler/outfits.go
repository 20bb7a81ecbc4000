package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
)

// OutfitStore is implemented by repository.OutfitRepo.
type OutfitStore interface {
    Create(ctx context.Context, o *model.Outfit) error
    Get(ctx context.Context, userID, id uint64) (model.Outfit, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Outfit, error)
    Update(ctx context.Context, o *model.Outfit) error
    Delete(ctx context.Context, userID, id uint64) error
}

// OutfitHandler serves /v1/outfits.
type OutfitHandler struct {
    Outfits OutfitStore
    Events  queue.Publisher
}

func NewOutfitHandler(outfits OutfitStore, events queue.Publisher) *OutfitHandler {
    if outfits == nil {
        panic("nil repository passed to NewOutfitHandler")
    }
    return &OutfitHandler{Outfits: outfits, Events: events}
}

type outfitBody struct {
    Name     string   `json:"name"`
    ItemIDs  []uint64 `json:"item_ids"`
    Occasion string   `json:"occasion"`
    Tags     []string `json:"tags"`
}

func (b *outfitBody) outfit(userID uint64) (model.Outfit, string) {
    b.Name = strings.TrimSpace(b.Name)
    if b.Name == "" {
        return model.Outfit{}, "name is required"
    }
    if len(b.ItemIDs) == 0 {
        return model.Outfit{}, "item_ids must not be empty"
    }
    seen := make(map[uint64]bool, len(b.ItemIDs))
    for _, id := range b.ItemIDs {
        if id == 0 || seen[id] {
            return model.Outfit{}, "item_ids must be distinct item ids"
        }
        seen[id] = true
    }
    occasion := ""
    if strings.TrimSpace(b.Occasion) != "" {
        occ, err := recommend.NormalizeOccasion(b.Occasion)
        if err != nil {
            return model.Outfit{}, "invalid occasion"
        }
        occasion = occ
    }
    return model.Outfit{UserID: userID, Name: b.Name, ItemIDs: b.ItemIDs, Occasion: occasion, Tags: b.Tags}, ""
}

// Create handles POST /v1/outfits.  Every item must belong to the caller.
func (h *OutfitHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body outfitBody
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    o, msg := body.outfit(uid)
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Outfits.Create(ctx, &o); err != nil {
        return fail(c, err, "could not create outfit")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventWardrobeChanged, uid).WithOutfit(o.ID))
    return c.JSON(http.StatusCreated, o)
}

// List handles GET /v1/outfits.
func (h *OutfitHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    outfits, err := h.Outfits.ListByUser(ctx, uid)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, echo.Map{"outfits": outfits})
}

// Get handles GET /v1/outfits/:id.
func (h *OutfitHandler) Get(c echo.Context) error {
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
    o, err := h.Outfits.Get(ctx, uid, id)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, o)
}

// Update handles PUT /v1/outfits/:id and replaces the item list.
func (h *OutfitHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := pathID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    var body outfitBody
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    o, msg := body.outfit(uid)
    if msg != "" {
        return badRequest(c, msg)
    }
    o.ID = id
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Outfits.Update(ctx, &o); err != nil {
        return fail(c, err, "update failed")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventWardrobeChanged, uid).WithOutfit(id))
    return c.JSON(http.StatusOK, o)
}

// Delete handles DELETE /v1/outfits/:id.
func (h *OutfitHandler) Delete(c echo.Context) error {
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
    if err := h.Outfits.Delete(ctx, uid, id); err != nil {
        return fail(c, err, "delete failed")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventWardrobeChanged, uid).WithOutfit(id))
    return c.NoContent(http.StatusNoContent)
}
