package recommend

import (
	"context"
	"time"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// Store is the persistence collaborator of the recommendation core.
// Implementations return empty results, not errors, when a user has no
// data; GetActivePlan returns nil when no entry exists for the day.  Any
// error is treated as a store failure and surfaced to the caller.
type Store interface {
	GetItemsByUser(ctx context.Context, userID uint64) ([]model.Item, error)
	GetOutfitsByUser(ctx context.Context, userID uint64) ([]model.Outfit, error)
	GetRecentHistory(ctx context.Context, userID uint64, windowDays int) ([]model.StyleHistoryRecord, error)
	GetActivePlan(ctx context.Context, userID uint64, date time.Time) (*model.PlanEntry, error)
	GetProfile(ctx context.Context, userID uint64) (model.Profile, error)
}
