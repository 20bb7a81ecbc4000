package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
    "github.com/Enochrwa/wardrobe-system-backend/internal/repository"
)

// ItemStore is implemented by repository.ItemRepo.
type ItemStore interface {
    Create(ctx context.Context, it *model.Item) error
    Get(ctx context.Context, userID, id uint64) (model.Item, error)
    List(ctx context.Context, userID uint64, f repository.ItemFilter) ([]model.Item, error)
    Update(ctx context.Context, it *model.Item) error
    Delete(ctx context.Context, userID, id uint64) error
}

// CategoryAliaser expands a category to all of its spellings.  It is
// implemented by recommend.Catalog.
type CategoryAliaser interface {
    CategoryAliases(raw string) []string
}

// ItemHandler serves /v1/items.
type ItemHandler struct {
    Items      ItemStore
    Categories CategoryAliaser
    Events     queue.Publisher
}

func NewItemHandler(items ItemStore, categories CategoryAliaser, events queue.Publisher) *ItemHandler {
    if items == nil {
        panic("nil repository passed to NewItemHandler")
    }
    return &ItemHandler{Items: items, Categories: categories, Events: events}
}

// categoryFilter turns ?category= into the spellings to match, so
// "footwear" also lists items saved as "sneakers" or "shoes".
func (h *ItemHandler) categoryFilter(raw string) []string {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return nil
    }
    if h.Categories == nil {
        return []string{raw}
    }
    return h.Categories.CategoryAliases(raw)
}

type itemBody struct {
    Name     string   `json:"name"`
    Brand    string   `json:"brand"`
    Category string   `json:"category"`
    Colors   []string `json:"colors"`
    Seasons  []string `json:"seasons"`
    Tags     []string `json:"tags"`
    Favorite bool     `json:"favorite"`
}

// validate trims the body and checks required fields and season tags.
func (b *itemBody) validate() string {
    b.Name = strings.TrimSpace(b.Name)
    b.Category = strings.TrimSpace(b.Category)
    if b.Name == "" || b.Category == "" {
        return "name and category are required"
    }
    for _, s := range b.Seasons {
        if _, ok := recommend.ParseSeason(s); !ok && !strings.EqualFold(strings.TrimSpace(s), "all") {
            return "unknown season " + strconv.Quote(s)
        }
    }
    return ""
}

func (b itemBody) item(userID uint64) model.Item {
    return model.Item{
        UserID: userID, Name: b.Name, Brand: strings.TrimSpace(b.Brand), Category: b.Category,
        Colors: b.Colors, Seasons: b.Seasons, Tags: b.Tags, Favorite: b.Favorite,
    }
}

// Create handles POST /v1/items.
func (h *ItemHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body itemBody
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if msg := body.validate(); msg != "" {
        return badRequest(c, msg)
    }
    it := body.item(uid)
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Items.Create(ctx, &it); err != nil {
        return fail(c, err, "could not create item")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventWardrobeChanged, uid).WithItem(it.ID))
    return c.JSON(http.StatusCreated, it)
}

// List handles GET /v1/items?category=&season=&favorite=&skip=&limit=.
func (h *ItemHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    f := repository.ItemFilter{Categories: h.categoryFilter(c.QueryParam("category")), Season: c.QueryParam("season")}
    if f.Season != "" {
        s, ok := recommend.ParseSeason(f.Season)
        if !ok {
            return badRequest(c, "unknown season")
        }
        f.Season = string(s)
    }
    if v := c.QueryParam("favorite"); v != "" {
        fav, err := strconv.ParseBool(v)
        if err != nil {
            return badRequest(c, "favorite must be true or false")
        }
        f.Favorite = &fav
    }
    var ok bool
    if f.Offset, f.Limit, ok = paging(c, 100); !ok {
        return badRequest(c, "skip and limit must be non-negative, limit at most 1000")
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    items, err := h.Items.List(ctx, uid, f)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// paging reads skip and limit.  A missing limit becomes def.
func paging(c echo.Context, def int) (offset, limit int, ok bool) {
    limit = def
    if v := c.QueryParam("skip"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 0 {
            return 0, 0, false
        }
        offset = n
    }
    if v := c.QueryParam("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 || n > 1000 {
            return 0, 0, false
        }
        limit = n
    }
    return offset, limit, true
}

// Get handles GET /v1/items/:id.
func (h *ItemHandler) Get(c echo.Context) error {
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
    it, err := h.Items.Get(ctx, uid, id)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, it)
}

// Update handles PUT /v1/items/:id.
func (h *ItemHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := pathID(c)
    if !ok {
        return badRequest(c, "invalid id")
    }
    var body itemBody
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if msg := body.validate(); msg != "" {
        return badRequest(c, msg)
    }
    it := body.item(uid)
    it.ID = id
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Items.Update(ctx, &it); err != nil {
        return fail(c, err, "update failed")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventWardrobeChanged, uid).WithItem(id))
    return c.JSON(http.StatusOK, it)
}

// Delete handles DELETE /v1/items/:id.
func (h *ItemHandler) Delete(c echo.Context) error {
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
    if err := h.Items.Delete(ctx, uid, id); err != nil {
        return fail(c, err, "delete failed")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventWardrobeChanged, uid).WithItem(id))
    return c.NoContent(http.StatusNoContent)
}
