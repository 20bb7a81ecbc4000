package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
)

// PlanStore is implemented by repository.PlanRepo.
type PlanStore interface {
    Upsert(ctx context.Context, p *model.PlanEntry) error
    ListRange(ctx context.Context, userID uint64, from, to time.Time) ([]model.PlanEntry, error)
    Delete(ctx context.Context, userID uint64, date time.Time) error
    SetWeek(ctx context.Context, userID uint64, start time.Time, occasion string, days map[time.Weekday]uint64) ([]model.PlanEntry, error)
}

// maxPlanRange bounds GET /v1/plans.
const maxPlanRange = 92 * 24 * time.Hour

// PlanHandler serves /v1/plans.
type PlanHandler struct {
    Plans  PlanStore
    Events queue.Publisher
    Now    func() time.Time
}

func NewPlanHandler(plans PlanStore, events queue.Publisher) *PlanHandler {
    if plans == nil {
        panic("nil repository passed to NewPlanHandler")
    }
    return &PlanHandler{Plans: plans, Events: events, Now: time.Now}
}

func parseDate(s string) (time.Time, bool) {
    t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
    return t, err == nil
}

var weekdays = map[string]time.Weekday{
    "sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
    "thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
    "sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
    "thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func normalizeOptionalOccasion(s string) (string, bool) {
    if strings.TrimSpace(s) == "" {
        return "", true
    }
    occ, err := recommend.NormalizeOccasion(s)
    return occ, err == nil
}

// Put handles PUT /v1/plans/:date (YYYY-MM-DD) and replaces the day's plan.
func (h *PlanHandler) Put(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    date, ok := parseDate(c.Param("date"))
    if !ok {
        return badRequest(c, "date must be YYYY-MM-DD")
    }
    var body struct {
        OutfitID uint64 `json:"outfit_id"`
        Occasion string `json:"occasion"`
        Notes    string `json:"notes"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if body.OutfitID == 0 {
        return badRequest(c, "outfit_id is required")
    }
    occ, ok := normalizeOptionalOccasion(body.Occasion)
    if !ok {
        return badRequest(c, "invalid occasion")
    }
    p := model.PlanEntry{UserID: uid, Date: date, OutfitID: body.OutfitID, Occasion: occ, Notes: strings.TrimSpace(body.Notes)}
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Plans.Upsert(ctx, &p); err != nil {
        return fail(c, err, "could not save plan")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventPlanChanged, uid).WithOutfit(p.OutfitID))
    return c.JSON(http.StatusOK, p)
}

// List handles GET /v1/plans?from=&to=.  The default range is the seven
// days starting today.
func (h *PlanHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    from := model.DateOnly(h.Now())
    if v := c.QueryParam("from"); v != "" {
        var ok bool
        if from, ok = parseDate(v); !ok {
            return badRequest(c, "from must be YYYY-MM-DD")
        }
    }
    to := from.AddDate(0, 0, 6)
    if v := c.QueryParam("to"); v != "" {
        var ok bool
        if to, ok = parseDate(v); !ok {
            return badRequest(c, "to must be YYYY-MM-DD")
        }
    }
    if to.Before(from) || to.Sub(from) > maxPlanRange {
        return badRequest(c, "to must follow from by at most 92 days")
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    plans, err := h.Plans.ListRange(ctx, uid, from, to)
    if err != nil {
        return fail(c, err, "db error")
    }
    return c.JSON(http.StatusOK, echo.Map{"from": from.Format(time.DateOnly), "to": to.Format(time.DateOnly), "plans": plans})
}

// Delete handles DELETE /v1/plans/:date.
func (h *PlanHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    date, ok := parseDate(c.Param("date"))
    if !ok {
        return badRequest(c, "date must be YYYY-MM-DD")
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Plans.Delete(ctx, uid, date); err != nil {
        return fail(c, err, "delete failed")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventPlanChanged, uid))
    return c.NoContent(http.StatusNoContent)
}

// Week handles POST /v1/plans/week.  days maps weekday names to outfit
// ids for the seven days starting at start_date; null clears a day and
// omitted days are left as they are.
func (h *PlanHandler) Week(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        StartDate string             `json:"start_date"`
        Occasion  string             `json:"occasion"`
        Days      map[string]*uint64 `json:"days"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    start, ok := parseDate(body.StartDate)
    if !ok {
        return badRequest(c, "start_date must be YYYY-MM-DD")
    }
    if len(body.Days) == 0 {
        return badRequest(c, "days must not be empty")
    }
    occ, ok := normalizeOptionalOccasion(body.Occasion)
    if !ok {
        return badRequest(c, "invalid occasion")
    }
    days := make(map[time.Weekday]uint64, len(body.Days))
    for name, id := range body.Days {
        wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
        if !ok {
            return badRequest(c, "unknown weekday "+name)
        }
        if _, dup := days[wd]; dup {
            return badRequest(c, "weekday given twice: "+name)
        }
        if id == nil {
            days[wd] = 0
        } else {
            if *id == 0 {
                return badRequest(c, "outfit ids must be positive")
            }
            days[wd] = *id
        }
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    plans, err := h.Plans.SetWeek(ctx, uid, start, occ, days)
    if err != nil {
        return fail(c, err, "could not save weekly plan")
    }
    publish(c, h.Events, queue.NewEvent(queue.EventPlanChanged, uid))
    return c.JSON(http.StatusOK, echo.Map{
        "start_date": start.Format(time.DateOnly),
        "end_date":   start.AddDate(0, 0, 6).Format(time.DateOnly),
        "plans":      plans,
    })
}
