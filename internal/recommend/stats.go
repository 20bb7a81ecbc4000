package recommend

import (
	"context"
	"math"
	"sort"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// statsTopN is the length of the most and least worn lists.
const statsTopN = 5

// CategoryUsage is the share of the wardrobe one category takes.
type CategoryUsage struct {
	Category   string  `json:"category"`
	ItemCount  int     `json:"item_count"`
	Percentage float64 `json:"usage_percentage"`
}

// WardrobeStats summarizes a user's wardrobe.
type WardrobeStats struct {
	TotalItems      int             `json:"total_items"`
	TotalOutfits    int             `json:"total_outfits"`
	ItemsByCategory map[string]int  `json:"items_by_category"`
	ItemsBySeason   map[string]int  `json:"items_by_season"`
	MostWorn        []model.Item    `json:"most_worn_items"`
	LeastWorn       []model.Item    `json:"least_worn_items"`
	FavoriteCount   int             `json:"favorite_items_count"`
	CategoryUsage   []CategoryUsage `json:"category_usage"`
}

// Summarize computes wardrobe statistics.  Categories are grouped by
// canonical name; items without a category count as "uncategorized".
// Only worn items are listed as most worn.
func (c *Catalog) Summarize(items []model.Item, outfits []model.Outfit) WardrobeStats {
	st := WardrobeStats{
		TotalItems:      len(items),
		TotalOutfits:    len(outfits),
		ItemsByCategory: map[string]int{},
		ItemsBySeason:   map[string]int{},
		MostWorn:        []model.Item{},
		LeastWorn:       []model.Item{},
		CategoryUsage:   []CategoryUsage{},
	}
	for _, it := range items {
		cat := c.CanonicalCategory(it.Category)
		if cat == "" {
			cat = "uncategorized"
		}
		st.ItemsByCategory[cat]++
		for _, s := range it.Seasons {
			if tag := normalizeSeasonTag(s); tag != "" {
				st.ItemsBySeason[tag]++
			}
		}
		if it.Favorite {
			st.FavoriteCount++
		}
	}

	byWear := append([]model.Item(nil), items...)
	sort.SliceStable(byWear, func(i, j int) bool {
		if byWear[i].TimesWorn != byWear[j].TimesWorn {
			return byWear[i].TimesWorn > byWear[j].TimesWorn
		}
		return byWear[i].ID < byWear[j].ID
	})
	for _, it := range byWear {
		if it.TimesWorn == 0 || len(st.MostWorn) == statsTopN {
			break
		}
		st.MostWorn = append(st.MostWorn, it)
	}
	for i := len(byWear) - 1; i >= 0 && len(st.LeastWorn) < statsTopN; i-- {
		st.LeastWorn = append(st.LeastWorn, byWear[i])
	}

	if len(items) > 0 {
		for cat, n := range st.ItemsByCategory {
			pct := math.Round(float64(n)*10000/float64(len(items))) / 100
			st.CategoryUsage = append(st.CategoryUsage, CategoryUsage{Category: cat, ItemCount: n, Percentage: pct})
		}
		sort.Slice(st.CategoryUsage, func(i, j int) bool {
			a, b := st.CategoryUsage[i], st.CategoryUsage[j]
			if a.ItemCount != b.ItemCount {
				return a.ItemCount > b.ItemCount
			}
			return a.Category < b.Category
		})
	}
	return st
}

// Statistics reads the user's wardrobe and summarizes it.  Unlike the
// recommendation calls an empty wardrobe is not an error.
func (s *Service) Statistics(ctx context.Context, userID uint64) (WardrobeStats, error) {
	items, err := s.store.GetItemsByUser(ctx, userID)
	if err != nil {
		return WardrobeStats{}, storeErr("get items", err)
	}
	outfits, err := s.store.GetOutfitsByUser(ctx, userID)
	if err != nil {
		return WardrobeStats{}, storeErr("get outfits", err)
	}
	return s.catalog.Summarize(items, outfits), nil
}
