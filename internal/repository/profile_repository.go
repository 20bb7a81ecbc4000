package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Enochrwa/wardrobe-system-backend/internal/model"
)

// ProfileRepo stores style preferences, one row per user.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Get returns the user's profile.  A user who never saved one gets the
// zero profile with empty lists.
func (r *ProfileRepo) Get(ctx context.Context, userID uint64) (model.Profile, error) {
	var styles, preferred, avoided string
	p := model.Profile{UserID: userID}
	err := r.DB.QueryRowContext(ctx,
		"SELECT preferred_styles,preferred_colors,avoided_colors,updated_at FROM user_profiles WHERE user_id=?",
		userID).Scan(&styles, &preferred, &avoided, &p.UpdatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	p.PreferredStyles, p.PreferredColors, p.AvoidedColors = decodeList(styles), decodeList(preferred), decodeList(avoided)
	return p, nil
}

// Upsert replaces the user's profile.
func (r *ProfileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id,preferred_styles,preferred_colors,avoided_colors) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE preferred_styles=VALUES(preferred_styles), preferred_colors=VALUES(preferred_colors), avoided_colors=VALUES(avoided_colors)`,
		p.UserID, encodeList(p.PreferredStyles), encodeList(p.PreferredColors), encodeList(p.AvoidedColors))
	if err != nil {
		return err
	}
	stored, err := r.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	*p = stored
	return nil
}
