package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// OccasionRepo stores the user's occasions.  An assigned outfit must
// belong to the same user.
type OccasionRepo struct{ DB *sql.DB }

func NewOccasionRepo(db *sql.DB) *OccasionRepo { return &OccasionRepo{DB: db} }

const occasionColumns = "id,user_id,name,occasion_date,outfit_id,notes,created_at,updated_at"

func scanOccasion(s rowScanner) (model.Occasion, error) {
	var (
		o        model.Occasion
		date     sql.NullTime
		outfitID sql.NullInt64
	)
	err := s.Scan(&o.ID, &o.UserID, &o.Name, &date, &outfitID, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if date.Valid {
		t := date.Time.UTC()
		o.Date = &t
	}
	o.OutfitID = nullID(outfitID)
	return o, err
}

func occasionArgs(o *model.Occasion) (date, outfit any) {
	if o.Date != nil {
		date = o.Date.UTC()
	}
	if o.OutfitID != nil {
		outfit = *o.OutfitID
	}
	return date, outfit
}

// Create inserts o and reloads it with its generated columns.
func (r *OccasionRepo) Create(ctx context.Context, o *model.Occasion) error {
	o.Name = strings.TrimSpace(o.Name)
	if o.OutfitID != nil {
		if err := checkOutfitOwner(ctx, r.DB, o.UserID, *o.OutfitID); err != nil {
			return err
		}
	}
	date, outfit := occasionArgs(o)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO occasions (user_id,name,occasion_date,outfit_id,notes) VALUES (?,?,?,?,?)",
		o.UserID, o.Name, date, outfit, o.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.Get(ctx, o.UserID, uint64(id))
	if err != nil {
		return err
	}
	*o = created
	return nil
}

// Get fetches one of the user's occasions.
func (r *OccasionRepo) Get(ctx context.Context, userID, id uint64) (model.Occasion, error) {
	o, err := scanOccasion(r.DB.QueryRowContext(ctx,
		"SELECT "+occasionColumns+" FROM occasions WHERE id=? AND user_id=?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrNotFound
	}
	return o, err
}

// List returns the user's occasions, latest date first.  Undated
// occasions come last.
func (r *OccasionRepo) List(ctx context.Context, userID uint64, offset, limit int) ([]model.Occasion, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+occasionColumns+" FROM occasions WHERE user_id=? ORDER BY occasion_date DESC, id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Occasion{}
	for rows.Next() {
		o, err := scanOccasion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Update replaces the occasion's fields.  A nil OutfitID unassigns the
// outfit.
func (r *OccasionRepo) Update(ctx context.Context, o *model.Occasion) error {
	o.Name = strings.TrimSpace(o.Name)
	if o.OutfitID != nil {
		if err := checkOutfitOwner(ctx, r.DB, o.UserID, *o.OutfitID); err != nil {
			return err
		}
	}
	date, outfit := occasionArgs(o)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE occasions SET name=?,occasion_date=?,outfit_id=?,notes=? WHERE id=? AND user_id=?",
		o.Name, date, outfit, o.Notes, o.ID, o.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, o.UserID, o.ID); err != nil {
			return err
		}
	}
	updated, err := r.Get(ctx, o.UserID, o.ID)
	if err != nil {
		return err
	}
	*o = updated
	return nil
}

// Delete removes one of the user's occasions.
func (r *OccasionRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM occasions WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
