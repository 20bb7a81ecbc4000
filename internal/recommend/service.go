package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// MaxK caps the number of results one call may ask for.
const MaxK = 50

// Config tunes the Service.  Zero values select the defaults.
type Config struct {
	TopK           int     // default result count for callers that omit K (3)
	RecencyDays    int     // recency window in days (3)
	RecencyPenalty float64 // score multiplier for recent candidates (0.5)
	Now            func() time.Time
}

func (c Config) withDefaults() Config {
	if c.TopK <= 0 {
		c.TopK = 3
	}
	if c.RecencyDays <= 0 {
		c.RecencyDays = 3
	}
	if c.RecencyPenalty <= 0 || c.RecencyPenalty > 1 {
		c.RecencyPenalty = 0.5
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// OutfitRecommendation is one ranked outfit.
type OutfitRecommendation struct {
	Outfit model.Outfit `json:"outfit"`
	Items  []model.Item `json:"items"`
	Score  float64      `json:"score"`
	Reason string       `json:"reason"`
	Recent bool         `json:"recent"`
}

// ItemRecommendation is one ranked item.
type ItemRecommendation struct {
	Item   model.Item `json:"item"`
	Score  float64    `json:"score"`
	Reason string     `json:"reason"`
	Recent bool       `json:"recent"`
}

// Service ranks a user's items and outfits for an occasion.  It only
// reads from the store and holds no per-request state, so one Service
// serves all requests.
type Service struct {
	store   Store
	catalog *Catalog
	cfg     Config
	builder *Builder
	scorer  Scorer
}

// Option customizes a Service.
type Option func(*Service)

// WithScorer replaces the heuristic scorer.
func WithScorer(s Scorer) Option {
	return func(svc *Service) { svc.scorer = s }
}

// NewService wires the context builder and scorer over store.
func NewService(store Store, catalog *Catalog, cfg Config, opts ...Option) *Service {
	if store == nil {
		panic("recommend: nil store")
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	cfg = cfg.withDefaults()
	s := &Service{
		store:   store,
		catalog: catalog,
		cfg:     cfg,
		builder: NewBuilder(store, catalog, cfg.RecencyDays, cfg.Now),
		scorer:  NewHeuristic(catalog, cfg.RecencyPenalty),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DefaultK is the result count used when a caller does not ask for one.
func (s *Service) DefaultK() int { return s.cfg.TopK }

// Catalog returns the occasion catalog the service scores with.
func (s *Service) Catalog() *Catalog { return s.catalog }

func validateK(k int) error {
	if k <= 0 || k > MaxK {
		return validationf("k must be between 1 and %d, got %d", MaxK, k)
	}
	return nil
}

// RecommendOutfitForOccasion ranks the user's outfits for req and
// returns at most req.K of them, best first.  Outfits worn or planned in
// the recency window only appear when fewer than K other outfits exist.
func (s *Service) RecommendOutfitForOccasion(ctx context.Context, userID uint64, req Request) ([]OutfitRecommendation, error) {
	if err := validateK(req.K); err != nil {
		return nil, err
	}
	c, err := s.builder.Build(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	outfits, err := s.store.GetOutfitsByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("get outfits", err)
	}
	if len(outfits) == 0 {
		return nil, notFoundf("user %d has no outfits", userID)
	}

	byID := make(map[uint64]model.Item, len(c.Items))
	for _, it := range c.Items {
		byID[it.ID] = it
	}

	cands := make([]candidate, 0, len(outfits))
	recs := make([]OutfitRecommendation, 0, len(outfits))
	for _, o := range outfits {
		items, ok := resolveItems(o, byID)
		if !ok || len(items) == 0 {
			continue
		}
		r := s.scorer.ScoreOutfit(o, items, c)
		recs = append(recs, OutfitRecommendation{Outfit: o, Items: items, Score: r.Score, Reason: r.Reason, Recent: r.Recent})
		cands = append(cands, candidate{idx: len(recs) - 1, id: o.ID, score: r.Score, created: o.CreatedAt, recent: r.Recent})
	}
	if len(cands) == 0 {
		return nil, notFoundf("user %d has no outfits made of owned items", userID)
	}

	picked := rank(cands, req.K)
	out := make([]OutfitRecommendation, len(picked))
	for i, cd := range picked {
		out[i] = recs[cd.idx]
	}
	return out, nil
}

// RecommendItemsForOccasion ranks single items the same way outfits
// are ranked.
func (s *Service) RecommendItemsForOccasion(ctx context.Context, userID uint64, req Request) ([]ItemRecommendation, error) {
	if err := validateK(req.K); err != nil {
		return nil, err
	}
	c, err := s.builder.Build(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	recs := make([]ItemRecommendation, len(c.Items))
	cands := make([]candidate, len(c.Items))
	for i, it := range c.Items {
		r := s.scorer.ScoreItem(it, c)
		recs[i] = ItemRecommendation{Item: it, Score: r.Score, Reason: r.Reason, Recent: r.Recent}
		cands[i] = candidate{idx: i, id: it.ID, score: r.Score, created: it.CreatedAt, recent: r.Recent}
	}
	picked := rank(cands, req.K)
	out := make([]ItemRecommendation, len(picked))
	for i, cd := range picked {
		out[i] = recs[cd.idx]
	}
	return out, nil
}

// resolveItems maps an outfit's item ids to the owner's items.  It
// reports false when the outfit references an item the owner does not
// have.
func resolveItems(o model.Outfit, byID map[uint64]model.Item) ([]model.Item, bool) {
	items := make([]model.Item, 0, len(o.ItemIDs))
	for _, id := range o.ItemIDs {
		it, ok := byID[id]
		if !ok {
			return nil, false
		}
		items = append(items, it)
	}
	return items, true
}

type candidate struct {
	idx     int
	id      uint64
	score   float64
	created time.Time
	recent  bool
}

func less(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if !a.created.Equal(b.created) {
		return a.created.After(b.created)
	}
	return a.id > b.id
}

// rank orders cands and keeps k of them.  Recent candidates fill the
// list only when there are fewer than k fresh ones; the result is
// re-sorted so scores never increase down the list.
func rank(cands []candidate, k int) []candidate {
	sorted := append([]candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	var fresh, recent []candidate
	for _, c := range sorted {
		if c.recent {
			recent = append(recent, c)
		} else {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) >= k {
		return fresh[:k]
	}
	need := k - len(fresh)
	if need > len(recent) {
		need = len(recent)
	}
	out := append(fresh, recent[:need]...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
