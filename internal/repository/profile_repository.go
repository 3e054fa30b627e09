package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/yitocode/members-api/internal/model"
)

// ProfileRepo is the MySQL implementation of ProfileRepository,
// mirroring the `profiles` table.  The identity_id column carries a
// unique key so each identity holds at most one profile.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileColumns = "id,identity_id,picture,last_name,social_media,created_at,updated_at"

// Create inserts a profile and fills in its generated ID.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	var social any
	if len(p.SocialMedia) > 0 {
		social = p.SocialMedia
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO profiles (identity_id, picture, last_name, social_media) VALUES (?,?,?,?)",
		p.IdentityID, p.Picture, p.LastName, social)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrProfileExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// FindByID fetches a profile by id.
func (r *ProfileRepo) FindByID(ctx context.Context, id uint64) (*model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id=? LIMIT 1", id))
}

// ListByIdentity returns the identity's profiles with skip/take
// pagination.  take<=0 falls back to a page of 20.
func (r *ProfileRepo) ListByIdentity(ctx context.Context, identityID uint64, skip, take int) ([]model.Profile, error) {
	if take <= 0 {
		take = 20
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE identity_id=? ORDER BY id LIMIT ? OFFSET ?",
		identityID, take, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		var (
			p      model.Profile
			social sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.IdentityID, &p.Picture, &p.LastName, &social, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if social.Valid {
			p.SocialMedia = []byte(social.String)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of a profile.
func (r *ProfileRepo) Update(ctx context.Context, p *model.Profile) error {
	var social any
	if len(p.SocialMedia) > 0 {
		social = p.SocialMedia
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET picture=?, last_name=?, social_media=? WHERE id=?",
		p.Picture, p.LastName, social, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// Delete removes a profile by id.
func (r *ProfileRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM profiles WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func scanProfile(row *sql.Row) (*model.Profile, error) {
	var (
		p      model.Profile
		social sql.NullString
	)
	err := row.Scan(&p.ID, &p.IdentityID, &p.Picture, &p.LastName, &social, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if social.Valid {
		p.SocialMedia = []byte(social.String)
	}
	return &p, nil
}
