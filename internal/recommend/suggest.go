package recommend

import (
	"context"
	"fmt"
	"sort"
)

// CategorySuggestion names a category the wardrobe is short of.
type CategorySuggestion struct {
	Category string `json:"category"`
	Owned    int    `json:"owned"`
	Reason   string `json:"reason"`
}

// SuggestWardrobeAdditions runs a gap analysis over the user's items.
// Each essential category and each category the user already owns is
// counted; categories below the mean count are suggested, largest
// deficit first, ties by name.  limit caps the list and 0 means no cap.
func (s *Service) SuggestWardrobeAdditions(ctx context.Context, userID uint64, limit int) ([]CategorySuggestion, error) {
	if limit < 0 {
		return nil, validationf("limit must not be negative, got %d", limit)
	}
	items, err := s.store.GetItemsByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("get items", err)
	}
	if len(items) == 0 {
		return nil, notFoundf("user %d has no wardrobe items", userID)
	}

	counts := map[string]int{}
	for _, e := range s.catalog.Essentials {
		counts[s.catalog.CanonicalCategory(e)] = 0
	}
	for _, it := range items {
		counts[s.catalog.CanonicalCategory(it.Category)]++
	}
	delete(counts, "")

	mean := float64(len(items)) / float64(len(counts))
	type gap struct {
		category string
		owned    int
		deficit  float64
	}
	var gaps []gap
	for cat, n := range counts {
		if float64(n) < mean {
			gaps = append(gaps, gap{category: cat, owned: n, deficit: mean - float64(n)})
		}
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].deficit != gaps[j].deficit {
			return gaps[i].deficit > gaps[j].deficit
		}
		return gaps[i].category < gaps[j].category
	})
	if limit > 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}

	out := make([]CategorySuggestion, len(gaps))
	for i, g := range gaps {
		reason := fmt.Sprintf("you own %d %s items against an average of %.1f per category", g.owned, g.category, mean)
		if g.owned == 0 {
			reason = fmt.Sprintf("no %s items yet; it is a wardrobe essential", g.category)
		}
		out[i] = CategorySuggestion{Category: g.category, Owned: g.owned, Reason: reason}
	}
	return out, nil
}
