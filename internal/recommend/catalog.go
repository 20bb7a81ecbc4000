package recommend

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Weights balances the three scoring components.  They are normalized
// by their sum, so only the ratios matter.
type Weights struct {
	Category float64 `yaml:"category"`
	Season   float64 `yaml:"season"`
	Color    float64 `yaml:"color"`
}

// OccasionRule describes what an occasion asks of a wardrobe.
type OccasionRule struct {
	// Required categories must be present in the wardrobe, otherwise the
	// occasion cannot be dressed for at all.
	Required []string `yaml:"required"`
	// Categories maps canonical category to its fit in [0,1].  Missing
	// categories fit 0.
	Categories map[string]float64 `yaml:"categories"`
	// Colors is the occasion palette; "any" accepts every color.
	Colors []string `yaml:"colors"`
}

// AcceptsAnyColor reports whether the palette is unrestricted.
func (r OccasionRule) AcceptsAnyColor() bool {
	for _, c := range r.Colors {
		if normalizeColor(c) == "any" {
			return true
		}
	}
	return false
}

type colorPair struct {
	A     string  `yaml:"a"`
	B     string  `yaml:"b"`
	Score float64 `yaml:"score"`
}

type colorTable struct {
	Neutrals []string    `yaml:"neutrals"`
	Default  float64     `yaml:"default"`
	Pairs    []colorPair `yaml:"pairs"`
}

// Catalog is the fixed rule set of the heuristic scorer: occasion rules,
// category aliases and the color compatibility table.  It is read-only
// after construction and safe for concurrent use.
type Catalog struct {
	Weights         Weights                 `yaml:"weights"`
	Essentials      []string                `yaml:"essentials"`
	DefaultOccasion string                  `yaml:"default_occasion"`
	Occasions       map[string]OccasionRule `yaml:"occasions"`
	Aliases         map[string][]string     `yaml:"categories"`
	Colors          colorTable              `yaml:"colors"`

	aliasIndex map[string]string
	spellings  map[string][]string
	neutrals   map[string]bool
	pairs      map[[2]string]float64
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic("recommend: embedded catalog is invalid: " + err.Error())
	}
	return c
}

// LoadCatalog reads a catalog from path, or returns the embedded one
// when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) init() error {
	w := c.Weights
	if w.Category < 0 || w.Season < 0 || w.Color < 0 || w.Category+w.Season+w.Color <= 0 {
		return fmt.Errorf("catalog: weights must be non-negative with a positive sum")
	}
	if len(c.Occasions) == 0 {
		return fmt.Errorf("catalog: no occasions defined")
	}

	occasions := make(map[string]OccasionRule, len(c.Occasions))
	for tag, rule := range c.Occasions {
		occasions[strings.ToLower(strings.TrimSpace(tag))] = rule
	}
	c.Occasions = occasions
	c.DefaultOccasion = strings.ToLower(strings.TrimSpace(c.DefaultOccasion))
	if _, ok := c.Occasions[c.DefaultOccasion]; !ok {
		return fmt.Errorf("catalog: default occasion %q is not defined", c.DefaultOccasion)
	}

	c.aliasIndex = map[string]string{}
	for canonical, aliases := range c.Aliases {
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		c.aliasIndex[canonical] = canonical
		for _, a := range aliases {
			c.aliasIndex[strings.ToLower(strings.TrimSpace(a))] = canonical
		}
	}
	c.spellings = map[string][]string{}
	for alias, canonical := range c.aliasIndex {
		if alias != "" {
			c.spellings[canonical] = append(c.spellings[canonical], alias)
		}
	}
	for _, s := range c.spellings {
		sort.Strings(s)
	}

	c.neutrals = map[string]bool{}
	for _, n := range c.Colors.Neutrals {
		c.neutrals[normalizeColor(n)] = true
	}
	c.pairs = map[[2]string]float64{}
	for _, p := range c.Colors.Pairs {
		if p.Score < 0 || p.Score > 1 {
			return fmt.Errorf("catalog: color pair %s/%s score %.2f outside [0,1]", p.A, p.B, p.Score)
		}
		c.pairs[pairKey(normalizeColor(p.A), normalizeColor(p.B))] = p.Score
	}
	return nil
}

// Occasion returns the rule for tag, falling back to the default
// occasion for tags the catalog does not know.  The boolean reports
// whether tag itself was found.
func (c *Catalog) Occasion(tag string) (OccasionRule, bool) {
	if r, ok := c.Occasions[tag]; ok {
		return r, true
	}
	return c.Occasions[c.DefaultOccasion], false
}

// CanonicalCategory maps a free-form category to its canonical name.
// Unknown categories are returned lower-cased so they still group.
func (c *Catalog) CanonicalCategory(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := c.aliasIndex[k]; ok {
		return canonical
	}
	return k
}

// CategoryAliases returns every spelling that maps to the same canonical
// category as raw, the canonical name included, sorted.  An unknown
// category comes back on its own.
func (c *Catalog) CategoryAliases(raw string) []string {
	canonical := c.CanonicalCategory(raw)
	if canonical == "" {
		return nil
	}
	if s, ok := c.spellings[canonical]; ok {
		return append([]string(nil), s...)
	}
	return []string{canonical}
}

// IsNeutral reports whether color goes with anything.
func (c *Catalog) IsNeutral(color string) bool { return c.neutrals[normalizeColor(color)] }

// Harmony looks up how well two colors go together, in [0,1].
func (c *Catalog) Harmony(a, b string) float64 {
	a, b = normalizeColor(a), normalizeColor(b)
	switch {
	case a == "" || b == "":
		return c.Colors.Default
	case c.neutrals[a] || c.neutrals[b]:
		return 1.0
	case a == b:
		return 0.9
	}
	if s, ok := c.pairs[pairKey(a, b)]; ok {
		return s
	}
	return c.Colors.Default
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func normalizeColor(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "grey" {
		return "gray"
	}
	return s
}
