package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// OutfitRepo encapsulates queries on outfits and outfit_items.
type OutfitRepo struct{ DB *sql.DB }

func NewOutfitRepo(db *sql.DB) *OutfitRepo { return &OutfitRepo{DB: db} }

const outfitColumns = "id,user_id,name,occasion,tags,created_at,updated_at"

// checkOwnedItems verifies inside tx that every id names an item of
// userID.  Items are locked so a concurrent delete cannot slip between
// the check and the insert.
func checkOwnedItems(ctx context.Context, tx *sql.Tx, userID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	uniq := map[uint64]bool{}
	args := []any{userID}
	for _, id := range ids {
		if !uniq[id] {
			uniq[id] = true
			args = append(args, id)
		}
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM wardrobe_items WHERE user_id=? AND id IN ("+placeholders(len(uniq))+") FOR UPDATE",
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if n != len(uniq) {
		return ErrForbidden
	}
	return nil
}

func insertOutfitItems(ctx context.Context, tx *sql.Tx, outfitID uint64, ids []uint64) error {
	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO outfit_items (outfit_id,item_id,position) VALUES (?,?,?)", outfitID, id, pos); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts o and its item list in one transaction.  It returns
// ErrForbidden when an item does not belong to o.UserID.
func (r *OutfitRepo) Create(ctx context.Context, o *model.Outfit) error {
	o.Occasion = strings.ToLower(strings.TrimSpace(o.Occasion))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := checkOwnedItems(ctx, tx, o.UserID, o.ItemIDs); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO outfits (user_id,name,occasion,tags) VALUES (?,?,?,?)",
		o.UserID, o.Name, o.Occasion, encodeList(o.Tags))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := insertOutfitItems(ctx, tx, uint64(id), o.ItemIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	created, err := r.Get(ctx, o.UserID, uint64(id))
	if err != nil {
		return err
	}
	*o = created
	return nil
}

// Update replaces name, occasion, tags and the item list of one of the
// user's outfits.
func (r *OutfitRepo) Update(ctx context.Context, o *model.Outfit) error {
	o.Occasion = strings.ToLower(strings.TrimSpace(o.Occasion))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM outfits WHERE id=? AND user_id=? FOR UPDATE", o.ID, o.UserID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := checkOwnedItems(ctx, tx, o.UserID, o.ItemIDs); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE outfits SET name=?,occasion=?,tags=? WHERE id=?", o.Name, o.Occasion, encodeList(o.Tags), o.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM outfit_items WHERE outfit_id=?", o.ID); err != nil {
		return err
	}
	if err := insertOutfitItems(ctx, tx, o.ID, o.ItemIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	updated, err := r.Get(ctx, o.UserID, o.ID)
	if err != nil {
		return err
	}
	*o = updated
	return nil
}

// Get fetches one of the user's outfits with its items in order.
func (r *OutfitRepo) Get(ctx context.Context, userID, id uint64) (model.Outfit, error) {
	outfits, err := r.list(ctx, "WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return model.Outfit{}, err
	}
	if len(outfits) == 0 {
		return model.Outfit{}, ErrNotFound
	}
	return outfits[0], nil
}

// ListByUser returns all of the user's outfits, newest first.
func (r *OutfitRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Outfit, error) {
	return r.list(ctx, "WHERE user_id=?", userID)
}

func (r *OutfitRepo) list(ctx context.Context, where string, args ...any) ([]model.Outfit, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+outfitColumns+" FROM outfits "+where+" ORDER BY created_at DESC, id DESC", args...)
	if err != nil {
		return nil, err
	}
	outfits := []model.Outfit{}
	index := map[uint64]int{}
	for rows.Next() {
		var (
			o    model.Outfit
			tags string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Name, &o.Occasion, &tags, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		o.Tags = decodeList(tags)
		o.ItemIDs = []uint64{}
		index[o.ID] = len(outfits)
		outfits = append(outfits, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(outfits) == 0 {
		return outfits, nil
	}

	ids := make([]any, 0, len(outfits))
	for _, o := range outfits {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.DB.QueryContext(ctx,
		"SELECT outfit_id,item_id FROM outfit_items WHERE outfit_id IN ("+placeholders(len(ids))+") ORDER BY outfit_id, position", ids...)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var outfitID, itemID uint64
		if err := itemRows.Scan(&outfitID, &itemID); err != nil {
			return nil, err
		}
		i := index[outfitID]
		outfits[i].ItemIDs = append(outfits[i].ItemIDs, itemID)
	}
	return outfits, itemRows.Err()
}

// Delete removes one of the user's outfits along with its plan entries.
func (r *OutfitRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM outfits WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
