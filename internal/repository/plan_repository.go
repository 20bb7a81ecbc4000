package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// PlanRepo stores plan entries.  A unique key on (user_id, plan_date)
// keeps at most one entry per user and day; writes are upserts.
type PlanRepo struct{ DB *sql.DB }

func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{DB: db} }

const planColumns = "id,user_id,plan_date,occasion,outfit_id,notes,created_at,updated_at"

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanPlan(s rowScanner) (model.PlanEntry, error) {
	var p model.PlanEntry
	err := s.Scan(&p.ID, &p.UserID, &p.Date, &p.Occasion, &p.OutfitID, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	p.Date = model.DateOnly(p.Date)
	return p, err
}

// checkOutfitOwner reports ErrNotFound for a missing outfit and
// ErrForbidden for one owned by someone else.
func checkOutfitOwner(ctx context.Context, db execQuerier, userID, outfitID uint64) error {
	var owner uint64
	err := db.QueryRowContext(ctx, "SELECT user_id FROM outfits WHERE id=?", outfitID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}

func upsertPlan(ctx context.Context, db execQuerier, p *model.PlanEntry) error {
	if err := checkOutfitOwner(ctx, db, p.UserID, p.OutfitID); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO plan_entries (user_id,plan_date,occasion,outfit_id,notes) VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE occasion=VALUES(occasion), outfit_id=VALUES(outfit_id), notes=VALUES(notes)`,
		p.UserID, p.Date.Format(time.DateOnly), p.Occasion, p.OutfitID, p.Notes)
	return err
}

// Upsert assigns p.OutfitID to p.Date, replacing any earlier entry for
// that day.  The outfit must belong to p.UserID.
func (r *PlanRepo) Upsert(ctx context.Context, p *model.PlanEntry) error {
	p.Date = model.DateOnly(p.Date)
	p.Occasion = strings.ToLower(strings.TrimSpace(p.Occasion))
	if err := upsertPlan(ctx, r.DB, p); err != nil {
		return err
	}
	stored, err := r.GetByDate(ctx, p.UserID, p.Date)
	if err != nil {
		return err
	}
	if stored == nil {
		return ErrNotFound
	}
	*p = *stored
	return nil
}

// GetByDate returns the user's entry for the day of date, or nil.
func (r *PlanRepo) GetByDate(ctx context.Context, userID uint64, date time.Time) (*model.PlanEntry, error) {
	p, err := scanPlan(r.DB.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM plan_entries WHERE user_id=? AND plan_date=?",
		userID, model.DateOnly(date).Format(time.DateOnly)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListRange returns entries with from <= date <= to, by date.
func (r *PlanRepo) ListRange(ctx context.Context, userID uint64, from, to time.Time) ([]model.PlanEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+planColumns+" FROM plan_entries WHERE user_id=? AND plan_date BETWEEN ? AND ? ORDER BY plan_date",
		userID, model.DateOnly(from).Format(time.DateOnly), model.DateOnly(to).Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	plans := []model.PlanEntry{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Delete removes the user's entry for the day of date.
func (r *PlanRepo) Delete(ctx context.Context, userID uint64, date time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM plan_entries WHERE user_id=? AND plan_date=?", userID, model.DateOnly(date).Format(time.DateOnly))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetWeek plans the seven days starting at start in one transaction.
// days maps a weekday to an outfit; weekdays mapped to 0 are cleared and
// weekdays absent from days are left untouched.
func (r *PlanRepo) SetWeek(ctx context.Context, userID uint64, start time.Time, occasion string, days map[time.Weekday]uint64) ([]model.PlanEntry, error) {
	start = model.DateOnly(start)
	occasion = strings.ToLower(strings.TrimSpace(occasion))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		outfitID, ok := days[day.Weekday()]
		if !ok {
			continue
		}
		if outfitID == 0 {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM plan_entries WHERE user_id=? AND plan_date=?", userID, day.Format(time.DateOnly)); err != nil {
				return nil, err
			}
			continue
		}
		p := model.PlanEntry{UserID: userID, Date: day, Occasion: occasion, OutfitID: outfitID}
		if err := upsertPlan(ctx, tx, &p); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.ListRange(ctx, userID, start, start.AddDate(0, 0, 6))
}
