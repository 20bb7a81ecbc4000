package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// ItemFilter narrows an item listing.  Zero values do not filter.
// Categories lists the accepted spellings of one category, any of which
// matches.  Categories and Season match case-insensitively; Season also
// matches items tagged "all".
type ItemFilter struct {
	Categories []string
	Season   string
	Favorite *bool
	Offset   int
	Limit    int
}

// ItemRepo encapsulates queries on wardrobe_items.  Every method is
// scoped by user so one user can never read or change another's items.
type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

const itemColumns = "id,user_id,name,brand,category,colors,seasons,tags,favorite,times_worn,last_worn,created_at,updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (model.Item, error) {
	var (
		it                    model.Item
		colors, seasons, tags string
		lastWorn              sql.NullTime
	)
	err := s.Scan(&it.ID, &it.UserID, &it.Name, &it.Brand, &it.Category, &colors, &seasons, &tags,
		&it.Favorite, &it.TimesWorn, &lastWorn, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return it, err
	}
	it.Colors, it.Seasons, it.Tags = decodeList(colors), decodeList(seasons), decodeList(tags)
	it.LastWorn = nullTime(lastWorn)
	return it, nil
}

// Create inserts it and fills in the generated ID and timestamps.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	it.Category = strings.ToLower(strings.TrimSpace(it.Category))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO wardrobe_items (user_id,name,brand,category,colors,seasons,tags,favorite) VALUES (?,?,?,?,?,?,?,?)",
		it.UserID, it.Name, it.Brand, it.Category, encodeList(it.Colors), encodeList(it.Seasons), encodeList(it.Tags), it.Favorite)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.Get(ctx, it.UserID, uint64(id))
	if err != nil {
		return err
	}
	*it = created
	return nil
}

// Get fetches one of the user's items.
func (r *ItemRepo) Get(ctx context.Context, userID, id uint64) (model.Item, error) {
	it, err := scanItem(r.DB.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM wardrobe_items WHERE id=? AND user_id=?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return it, ErrNotFound
	}
	return it, err
}

// List returns the user's items matching f, newest first.
func (r *ItemRepo) List(ctx context.Context, userID uint64, f ItemFilter) ([]model.Item, error) {
	q := "SELECT " + itemColumns + " FROM wardrobe_items WHERE user_id=?"
	args := []any{userID}
	var cats []string
	for _, c := range f.Categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) > 0 {
		q += " AND category IN (" + placeholders(len(cats)) + ")"
		for _, c := range cats {
			args = append(args, c)
		}
	}
	if f.Season != "" {
		// seasons is a JSON array of lower-cased strings
		q += " AND (JSON_CONTAINS(seasons, JSON_QUOTE(?)) OR JSON_CONTAINS(seasons, '\"all\"'))"
		args = append(args, strings.ToLower(strings.TrimSpace(f.Season)))
	}
	if f.Favorite != nil {
		q += " AND favorite=?"
		args = append(args, *f.Favorite)
	}
	q += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	return r.query(ctx, q, args...)
}

// ListByUser returns every item the user owns.
func (r *ItemRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Item, error) {
	return r.List(ctx, userID, ItemFilter{})
}

func (r *ItemRepo) query(ctx context.Context, q string, args ...any) ([]model.Item, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update overwrites the editable fields of one of the user's items.
// Wear counters are owned by the history log and are left alone.
func (r *ItemRepo) Update(ctx context.Context, it *model.Item) error {
	it.Category = strings.ToLower(strings.TrimSpace(it.Category))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE wardrobe_items SET name=?,brand=?,category=?,colors=?,seasons=?,tags=?,favorite=? WHERE id=? AND user_id=?",
		it.Name, it.Brand, it.Category, encodeList(it.Colors), encodeList(it.Seasons), encodeList(it.Tags), it.Favorite, it.ID, it.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 rows for no-op updates too, so check existence
		if _, err := r.Get(ctx, it.UserID, it.ID); err != nil {
			return err
		}
	}
	updated, err := r.Get(ctx, it.UserID, it.ID)
	if err != nil {
		return err
	}
	*it = updated
	return nil
}

// Delete removes one of the user's items.  Outfits using it lose the
// item through the outfit_items foreign key.
func (r *ItemRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM wardrobe_items WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
