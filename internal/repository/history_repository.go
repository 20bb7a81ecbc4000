package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// HistoryRepo is the append-only wear log.  It has no update or delete.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

const historyColumns = "id,user_id,item_id,outfit_id,worn_at,notes"

func scanHistory(s rowScanner) (model.StyleHistoryRecord, error) {
	var (
		h                model.StyleHistoryRecord
		itemID, outfitID sql.NullInt64
	)
	err := s.Scan(&h.ID, &h.UserID, &itemID, &outfitID, &h.WornAt, &h.Notes)
	h.ItemID, h.OutfitID = nullID(itemID), nullID(outfitID)
	h.WornAt = h.WornAt.UTC()
	return h, err
}

// Record appends a wear event and bumps times_worn and last_worn on the
// worn item, or on every item of the worn outfit, in one transaction.
// Exactly one of ItemID and OutfitID must be set (ErrInvalid otherwise)
// and it must belong to h.UserID (ErrForbidden or ErrNotFound).
func (r *HistoryRepo) Record(ctx context.Context, h *model.StyleHistoryRecord) error {
	if (h.ItemID == nil) == (h.OutfitID == nil) {
		return ErrInvalid
	}
	if h.WornAt.IsZero() {
		h.WornAt = time.Now()
	}
	h.WornAt = h.WornAt.UTC().Truncate(time.Second)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		table = "wardrobe_items"
		ref   = h.ItemID
	)
	if h.OutfitID != nil {
		table, ref = "outfits", h.OutfitID
	}
	var owner uint64
	err = tx.QueryRowContext(ctx, "SELECT user_id FROM "+table+" WHERE id=? FOR UPDATE", *ref).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != h.UserID {
		return ErrForbidden
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO style_history (user_id,item_id,outfit_id,worn_at,notes) VALUES (?,?,?,?,?)",
		h.UserID, h.ItemID, h.OutfitID, h.WornAt, h.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// last_worn only moves forward so back-dated entries keep it intact
	const bump = "UPDATE wardrobe_items SET times_worn=times_worn+1, last_worn=GREATEST(COALESCE(last_worn, ?), ?) WHERE user_id=? AND "
	if h.ItemID != nil {
		_, err = tx.ExecContext(ctx, bump+"id=?", h.WornAt, h.WornAt, h.UserID, *h.ItemID)
	} else {
		_, err = tx.ExecContext(ctx, bump+"id IN (SELECT item_id FROM outfit_items WHERE outfit_id=?)",
			h.WornAt, h.WornAt, h.UserID, *h.OutfitID)
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// Get fetches one of the user's wear records.
func (r *HistoryRepo) Get(ctx context.Context, userID, id uint64) (model.StyleHistoryRecord, error) {
	h, err := scanHistory(r.DB.QueryRowContext(ctx,
		"SELECT "+historyColumns+" FROM style_history WHERE id=? AND user_id=?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return h, ErrNotFound
	}
	return h, err
}

// List returns the user's most recent wear records, newest first.
func (r *HistoryRepo) List(ctx context.Context, userID uint64, offset, limit int) ([]model.StyleHistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(ctx,
		"SELECT "+historyColumns+" FROM style_history WHERE user_id=? ORDER BY worn_at DESC, id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
}

// Since returns the user's wear records at or after t.
func (r *HistoryRepo) Since(ctx context.Context, userID uint64, t time.Time) ([]model.StyleHistoryRecord, error) {
	return r.query(ctx,
		"SELECT "+historyColumns+" FROM style_history WHERE user_id=? AND worn_at>=? ORDER BY worn_at DESC, id DESC",
		userID, t.UTC())
}

func (r *HistoryRepo) query(ctx context.Context, q string, args ...any) ([]model.StyleHistoryRecord, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.StyleHistoryRecord{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
