package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// Result is the outcome of scoring one candidate.
type Result struct {
	// Score in [0,1], rounded to three decimals.
	Score  float64
	Reason string
	// Recent marks candidates worn or planned inside the recency window.
	// Their Score already carries the recency penalty.
	Recent bool
}

// Scorer rates candidates against a Context.  Implementations must be
// pure: the same inputs always give the same Result.
type Scorer interface {
	ScoreItem(item model.Item, c Context) Result
	ScoreOutfit(outfit model.Outfit, items []model.Item, c Context) Result
}

// Heuristic is the rule-based Scorer.  Each candidate gets a category
// fit, a season fit and a color fit, combined as a weighted mean with
// the catalog weights.
type Heuristic struct {
	Catalog *Catalog
	// RecencyPenalty multiplies the score of recent candidates.
	RecencyPenalty float64
}

// NewHeuristic returns a Heuristic over catalog.
func NewHeuristic(catalog *Catalog, recencyPenalty float64) *Heuristic {
	return &Heuristic{Catalog: catalog, RecencyPenalty: recencyPenalty}
}

type components struct {
	category, season, color float64
}

func (h *Heuristic) combine(p components, recent bool) float64 {
	w := h.Catalog.Weights
	sum := w.Category + w.Season + w.Color
	s := (w.Category*p.category + w.Season*p.season + w.Color*p.color) / sum
	if recent {
		s *= h.RecencyPenalty
	}
	return round3(clamp01(s))
}

// ScoreItem scores a single item.
func (h *Heuristic) ScoreItem(item model.Item, c Context) Result {
	p := components{
		category: h.categoryFit(item, c),
		season:   seasonFit(item, c.Season),
		color:    h.colorAffinity(item, c),
	}
	recent := c.ExcludedItems[item.ID]
	return Result{
		Score:  h.combine(p, recent),
		Reason: h.reason(p, c, recent),
		Recent: recent,
	}
}

// ScoreOutfit scores an outfit given its resolved items.  An outfit
// without items scores zero.
func (h *Heuristic) ScoreOutfit(outfit model.Outfit, items []model.Item, c Context) Result {
	if len(items) == 0 {
		return Result{Score: 0, Reason: "outfit has no items"}
	}

	var p components
	covered := map[string]bool{}
	for _, it := range items {
		p.category += h.categoryFit(it, c)
		p.season += seasonFit(it, c.Season)
		p.color += h.colorAffinity(it, c)
		covered[h.Catalog.CanonicalCategory(it.Category)] = true
	}
	n := float64(len(items))
	p.category /= n
	p.season /= n
	p.color /= n

	if len(c.Rule.Required) > 0 {
		have := 0
		for _, req := range c.Rule.Required {
			if covered[h.Catalog.CanonicalCategory(req)] {
				have++
			}
		}
		coverage := float64(have) / float64(len(c.Rule.Required))
		p.category = 0.5*p.category + 0.5*coverage
	}
	if o := strings.ToLower(strings.TrimSpace(outfit.Occasion)); o != "" && o == c.Occasion {
		p.category = math.Min(1, p.category+0.1)
	}
	p.color = 0.5*p.color + 0.5*h.harmony(items)

	recent := c.ExcludedOutfits[outfit.ID]
	for _, it := range items {
		if c.ExcludedItems[it.ID] {
			recent = true
			break
		}
	}
	return Result{
		Score:  h.combine(p, recent),
		Reason: h.reason(p, c, recent),
		Recent: recent,
	}
}

func (h *Heuristic) categoryFit(item model.Item, c Context) float64 {
	return clamp01(c.Rule.Categories[h.Catalog.CanonicalCategory(item.Category)])
}

func seasonFit(item model.Item, s Season) float64 {
	if len(item.Seasons) == 0 {
		return 0.5
	}
	for _, tag := range item.Seasons {
		t := normalizeSeasonTag(tag)
		if t == allSeasons || t == string(s) {
			return 1
		}
	}
	return 0
}

// colorAffinity is the best palette match over the item's colors,
// nudged by the user's color preferences.
func (h *Heuristic) colorAffinity(item model.Item, c Context) float64 {
	if len(item.Colors) == 0 {
		return 0.5
	}
	palette := map[string]bool{}
	for _, col := range c.Rule.Colors {
		palette[normalizeColor(col)] = true
	}
	anyColor := c.Rule.AcceptsAnyColor()

	best := 0.0
	for _, raw := range item.Colors {
		col := normalizeColor(raw)
		var s float64
		switch {
		case palette[col]:
			s = 1.0
		case h.Catalog.IsNeutral(col):
			s = 0.8
		case anyColor:
			s = 0.7
		default:
			s = 0.4
		}
		if c.PreferredColors[col] {
			s += 0.1
		}
		if c.AvoidedColors[col] {
			s -= 0.2
		}
		s = clamp01(s)
		if s > best {
			best = s
		}
	}
	return best
}

// harmony is the mean pairwise compatibility of the items' dominant
// colors.
func (h *Heuristic) harmony(items []model.Item) float64 {
	var colors []string
	for _, it := range items {
		if len(it.Colors) > 0 {
			colors = append(colors, it.Colors[0])
		}
	}
	if len(colors) < 2 {
		return 1.0
	}
	total, pairs := 0.0, 0
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			total += h.Catalog.Harmony(colors[i], colors[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func (h *Heuristic) reason(p components, c Context, recent bool) string {
	var parts []string
	occ := c.Occasion
	if !c.KnownOccasion {
		occ = c.Occasion + " (default rules)"
	}
	switch {
	case p.category >= 0.8:
		parts = append(parts, "well suited to "+occ)
	case p.category >= 0.5:
		parts = append(parts, "acceptable for "+occ)
	default:
		parts = append(parts, "a weak fit for "+occ)
	}
	switch {
	case p.season >= 0.99:
		parts = append(parts, "right for "+string(c.Season))
	case p.season > 0:
		parts = append(parts, "partly right for "+string(c.Season))
	default:
		parts = append(parts, "not meant for "+string(c.Season))
	}
	switch {
	case p.color >= 0.8:
		parts = append(parts, "colors match")
	case p.color >= 0.5:
		parts = append(parts, "colors are neutral")
	default:
		parts = append(parts, "colors clash")
	}
	s := strings.Join(parts, "; ")
	if recent {
		s += fmt.Sprintf("; worn in the last %d days", c.WindowDays)
	}
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
