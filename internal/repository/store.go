package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
	"github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
)

// Store adapts the repositories to the read contract of the
// recommendation service.
type Store struct {
	Items    *ItemRepo
	Outfits  *OutfitRepo
	History  *HistoryRepo
	Plans    *PlanRepo
	Profiles *ProfileRepo
	Now      func() time.Time
}

var _ recommend.Store = (*Store)(nil)

// NewStore builds a Store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Items:    NewItemRepo(db),
		Outfits:  NewOutfitRepo(db),
		History:  NewHistoryRepo(db),
		Plans:    NewPlanRepo(db),
		Profiles: NewProfileRepo(db),
		Now:      time.Now,
	}
}

func (s *Store) GetItemsByUser(ctx context.Context, userID uint64) ([]model.Item, error) {
	return s.Items.ListByUser(ctx, userID)
}

func (s *Store) GetOutfitsByUser(ctx context.Context, userID uint64) ([]model.Outfit, error) {
	return s.Outfits.ListByUser(ctx, userID)
}

// GetRecentHistory returns wear records from the last windowDays days.
func (s *Store) GetRecentHistory(ctx context.Context, userID uint64, windowDays int) ([]model.StyleHistoryRecord, error) {
	since := s.Now().UTC().AddDate(0, 0, -windowDays)
	return s.History.Since(ctx, userID, since)
}

func (s *Store) GetActivePlan(ctx context.Context, userID uint64, date time.Time) (*model.PlanEntry, error) {
	return s.Plans.GetByDate(ctx, userID, date)
}

func (s *Store) GetProfile(ctx context.Context, userID uint64) (model.Profile, error) {
	return s.Profiles.Get(ctx, userID)
}
