package recommend

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

var occasionPattern = regexp.MustCompile(`^[a-z][a-z0-9 _-]{0,31}$`)

// Request carries the caller's inputs for one recommendation pass.
type Request struct {
	// Occasion tag, e.g. "casual", "formal", "work".  Required.
	Occasion string
	// Season overrides the season derived from At.
	Season string
	// Weather is a coarse weather word (hot, cold, mild, rain, snow).  It
	// is ignored when Season is set.
	Weather string
	// At is the moment the outfit is for.  Zero means now.
	At time.Time
	// K is the number of results, 1..MaxK.
	K int
}

// Context is the snapshot one scoring pass works on.
type Context struct {
	UserID   uint64
	Occasion string
	// Rule is the catalog rule for Occasion.  KnownOccasion is false when
	// the catalog had no entry and the default occasion's rule was used.
	Rule          OccasionRule
	KnownOccasion bool
	Season        Season
	At            time.Time
	WindowDays    int

	Items           []model.Item
	ExcludedItems   map[uint64]bool
	ExcludedOutfits map[uint64]bool

	PreferredColors map[string]bool
	AvoidedColors   map[string]bool
}

// Builder assembles a Context from the store.
type Builder struct {
	store      Store
	catalog    *Catalog
	windowDays int
	now        func() time.Time
}

// NewBuilder returns a Builder reading from store.  windowDays is the
// recency window; items and outfits worn or planned within it are
// excluded from the top of the ranking.
func NewBuilder(store Store, catalog *Catalog, windowDays int, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{store: store, catalog: catalog, windowDays: windowDays, now: now}
}

// NormalizeOccasion lower-cases and validates an occasion tag.
func NormalizeOccasion(tag string) (string, error) {
	o := strings.ToLower(strings.TrimSpace(tag))
	if o == "" {
		return "", validationf("occasion is required")
	}
	if !occasionPattern.MatchString(o) {
		return "", validationf("malformed occasion tag %q", tag)
	}
	return o, nil
}

func (b *Builder) resolveSeason(req Request, at time.Time) (Season, error) {
	if req.Season != "" {
		s, ok := ParseSeason(req.Season)
		if !ok {
			return "", validationf("unknown season %q", req.Season)
		}
		return s, nil
	}
	if req.Weather != "" {
		s, ok := SeasonFromWeather(req.Weather)
		if !ok {
			return "", validationf("unknown weather %q", req.Weather)
		}
		return s, nil
	}
	return SeasonFor(at), nil
}

// Build validates req and reads the user's wardrobe state.  It fails
// with ErrNotFound when the user has no items at all, or none in one of
// the categories the occasion requires.
func (b *Builder) Build(ctx context.Context, userID uint64, req Request) (Context, error) {
	occasion, err := NormalizeOccasion(req.Occasion)
	if err != nil {
		return Context{}, err
	}
	at := req.At
	if at.IsZero() {
		at = b.now()
	}
	at = at.UTC()
	season, err := b.resolveSeason(req, at)
	if err != nil {
		return Context{}, err
	}
	rule, known := b.catalog.Occasion(occasion)

	items, err := b.store.GetItemsByUser(ctx, userID)
	if err != nil {
		return Context{}, storeErr("get items", err)
	}
	if len(items) == 0 {
		return Context{}, notFoundf("user %d has no wardrobe items", userID)
	}
	owned := map[string]bool{}
	for _, it := range items {
		owned[b.catalog.CanonicalCategory(it.Category)] = true
	}
	for _, req := range rule.Required {
		if !owned[b.catalog.CanonicalCategory(req)] {
			return Context{}, notFoundf("no %s in wardrobe for occasion %q", req, occasion)
		}
	}

	c := Context{
		UserID:          userID,
		Occasion:        occasion,
		Rule:            rule,
		KnownOccasion:   known,
		Season:          season,
		At:              at,
		WindowDays:      b.windowDays,
		Items:           items,
		ExcludedItems:   map[uint64]bool{},
		ExcludedOutfits: map[uint64]bool{},
		PreferredColors: map[string]bool{},
		AvoidedColors:   map[string]bool{},
	}
	if err := b.collectExclusions(ctx, &c); err != nil {
		return Context{}, err
	}

	profile, err := b.store.GetProfile(ctx, userID)
	if err != nil {
		return Context{}, storeErr("get profile", err)
	}
	for _, col := range profile.PreferredColors {
		c.PreferredColors[normalizeColor(col)] = true
	}
	for _, col := range profile.AvoidedColors {
		c.AvoidedColors[normalizeColor(col)] = true
	}
	return c, nil
}

func (b *Builder) collectExclusions(ctx context.Context, c *Context) error {
	if b.windowDays <= 0 {
		return nil
	}
	cutoff := c.At.Add(-time.Duration(b.windowDays) * 24 * time.Hour)
	recent := func(t time.Time) bool { return t.After(cutoff) && !t.After(c.At) }

	for _, it := range c.Items {
		if it.LastWorn != nil && recent(*it.LastWorn) {
			c.ExcludedItems[it.ID] = true
		}
	}

	// the store counts its window back from the wall clock, so a request
	// for a past moment has to reach further to cover [cutoff, At]
	days := b.windowDays
	if lag := b.now().Sub(c.At); lag > 0 {
		days += int((lag + 24*time.Hour - 1) / (24 * time.Hour))
	}
	history, err := b.store.GetRecentHistory(ctx, c.UserID, days)
	if err != nil {
		return storeErr("get recent history", err)
	}
	for _, h := range history {
		if !recent(h.WornAt) {
			continue
		}
		if h.ItemID != nil {
			c.ExcludedItems[*h.ItemID] = true
		}
		if h.OutfitID != nil {
			c.ExcludedOutfits[*h.OutfitID] = true
		}
	}

	day := model.DateOnly(c.At)
	for d := 1; d <= b.windowDays; d++ {
		plan, err := b.store.GetActivePlan(ctx, c.UserID, day.AddDate(0, 0, -d))
		if err != nil {
			return storeErr("get active plan", err)
		}
		if plan != nil && plan.OutfitID != 0 {
			c.ExcludedOutfits[plan.OutfitID] = true
		}
	}
	return nil
}
