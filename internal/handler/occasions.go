package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
)

// OccasionStore is implemented by repository.OccasionRepo.
type OccasionStore interface {
    Create(ctx context.Context, o *model.Occasion) error
    Get(ctx context.Context, userID, id uint64) (model.Occasion, error)
    List(ctx context.Context, userID uint64, offset, limit int) ([]model.Occasion, error)
    Update(ctx context.Context, o *model.Occasion) error
    Delete(ctx context.Context, userID, id uint64) error
}

// OccasionHandler serves /v1/occasions.  Single occasions come back with
// outfit suggestions for their name and date; listings do not.
type OccasionHandler struct {
    Occasions OccasionStore
    Svc       Recommender
    Events    queue.Publisher
}

func NewOccasionHandler(occasions OccasionStore, svc Recommender, events queue.Publisher) *OccasionHandler {
    if occasions == nil || svc == nil {
        panic("nil dependency passed to NewOccasionHandler")
    }
    return &OccasionHandler{Occasions: occasions, Svc: svc, Events: events}
}

// occasionView is an occasion with its suggestions.
type occasionView struct {
    model.Occasion
    SuggestedOutfits []recommend.OutfitRecommendation `json:"suggested_outfits"`
}

type occasionBody struct {
    Name     string  `json:"name"`
    Date     *string `json:"date"`
    OutfitID *uint64 `json:"outfit_id"`
    Notes    string  `json:"notes"`
}

// parseOccasionDate accepts a calendar day or an RFC 3339 timestamp.
func parseOccasionDate(s string) (time.Time, bool) {
    s = strings.TrimSpace(s)
    if t, ok := parseDate(s); ok {
        return t, true
    }
    t, err := time.Parse(time.RFC3339, s)
    return t.UTC(), err == nil
}

func (b occasionBody) occasion(userID uint64) (model.Occasion, string) {
    o := model.Occasion{UserID: userID, Name: strings.TrimSpace(b.Name), Notes: strings.TrimSpace(b.Notes)}
    if o.Name == "" {
        return o, "name is required"
    }
    if len(o.Name) > 255 {
        return o, "name must be at most 255 characters"
    }
    if b.Date != nil && strings.TrimSpace(*b.Date) != "" {
        t, ok := parseOccasionDate(*b.Date)
        if !ok {
            return o, "date must be YYYY-MM-DD or RFC 3339"
        }
        o.Date = &t
    }
    if b.OutfitID != nil {
        if *b.OutfitID == 0 {
            return o, "outfit_id must be positive"
        }
        id := *b.OutfitID
        o.OutfitID = &id
    }
    return o, ""
}

// suggest ranks the user's outfits for o.  A name that is not a usable
// occasion tag, or a wardrobe with nothing suitable, yields no
// suggestions rather than an error.
func (h *OccasionHandler) suggest(ctx context.Context, o model.Occasion) ([]recommend.OutfitRecommendation, error) {
    req := recommend.Request{Occasion: o.Name, K: h.Svc.DefaultK()}
    if o.Date != nil {
        req.At = *o.Date
    }
    recs, err := h.Svc.RecommendOutfitForOccasion(ctx, o.UserID, req)
    if errors.Is(err, recommend.ErrNotFound) || errors.Is(err, recommend.ErrValidation) {
        return []recommend.OutfitRecommendation{}, nil
    }
    return recs, err
}

func (h *OccasionHandler) view(c echo.Context, status int, o model.Occasion) error {
    ctx, cancel := dbCtx(c)
    defer cancel()
    recs, err := h.suggest(ctx, o)
    if err != nil {
        return fail(c, err, "could not suggest outfits")
    }
    return c.JSON(status, occasionView{Occasion: o, SuggestedOutfits: recs})
}

// Create handles POST /v1/occasions.
func (h *OccasionHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body occasionBody
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    o, msg := body.occasion(uid)
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Occasions.Create(ctx, &o); err != nil {
        return fail(c, err, "could not create occasion")
    }
    publish(c, h.Events, occasionEvent(o))
    return h.view(c, http.StatusCreated, o)
}

// List handles GET /v1/occasions?skip=&limit=.
func (h *OccasionHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    offset, limit, ok := paging(c, 100)
    if !ok {
        return badRequest(c, "skip and limit must be non-negative, limit at most 1000")
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    occasions, err := h.Occasions.List(ctx, uid, offset, limit)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, echo.Map{"occasions": occasions})
}

// Get handles GET /v1/occasions/:id.
func (h *OccasionHandler) Get(c echo.Context) error {
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
    o, err := h.Occasions.Get(ctx, uid, id)
    if err != nil {
        return fail(c, err, "db error")
    }
    return h.view(c, http.StatusOK, o)
}

// Update handles PUT /v1/occasions/:id.  The body replaces the occasion;
// a missing outfit_id unassigns the outfit.
func (h *OccasionHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := pathID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    var body occasionBody
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    o, msg := body.occasion(uid)
    if msg != "" {
        return badRequest(c, msg)
    }
    o.ID = id
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Occasions.Update(ctx, &o); err != nil {
        return fail(c, err, "update failed")
    }
    publish(c, h.Events, occasionEvent(o))
    return h.view(c, http.StatusOK, o)
}

// Delete handles DELETE /v1/occasions/:id.
func (h *OccasionHandler) Delete(c echo.Context) error {
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
    if err := h.Occasions.Delete(ctx, uid, id); err != nil {
        return fail(c, err, "delete failed")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventOccasionChanged, uid))
    return c.NoContent(http.StatusNoContent)
}

func occasionEvent(o model.Occasion) queue.Event {
    ev := queue.NewEvent(queue.EventOccasionChanged, o.UserID)
    if o.OutfitID != nil {
        ev = ev.WithOutfit(*o.OutfitID)
    }
    return ev
}
