package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/yitocode/members-api/internal/model"
)

// IdentityRepo is the MySQL implementation of IdentityRepository,
// mirroring the `identities` table.
type IdentityRepo struct{ DB *sql.DB }

func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{DB: db} }

const identityColumns = "id,email,password_hash,phone_number,nickname,name,last_name,roles,created_at,updated_at"

// Create inserts the identity and fills in its generated ID.  The
// unique keys on email, nickname and phone_number make the duplicate
// check atomic; a 1062 duplicate-key error from any of them is mapped
// to ErrDuplicateIdentity.
func (r *IdentityRepo) Create(ctx context.Context, ident *model.Identity) error {
	ident.Email = strings.ToLower(strings.TrimSpace(ident.Email))
	if len(ident.Roles) == 0 {
		ident.Roles = model.RoleSet{model.RoleUser}
	}
	var phone any
	if ident.PhoneNumber != "" {
		phone = ident.PhoneNumber
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO identities (email, password_hash, phone_number, nickname, name, last_name, roles) VALUES (?,?,?,?,?,?,?)",
		ident.Email, ident.PasswordHash, phone, ident.Nickname, ident.Name, ident.LastName, ident.Roles.String())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateIdentity
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ident.ID = uint64(id)
	return nil
}

// FindByID fetches an identity by id.
func (r *IdentityRepo) FindByID(ctx context.Context, id uint64) (*model.Identity, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+identityColumns+" FROM identities WHERE id=? LIMIT 1", id))
}

// FindByEmail fetches an identity by normalized email.
func (r *IdentityRepo) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+identityColumns+" FROM identities WHERE email=? LIMIT 1", email))
}

// FindAnyUnique fetches an identity matching any of the unique fields.
// Blank arguments are excluded from the match so that a social signup
// with no phone number does not collide with other phone-less rows.
func (r *IdentityRepo) FindAnyUnique(ctx context.Context, email, nickname, phone string) (*model.Identity, error) {
	var (
		conds []string
		args  []any
	)
	if email != "" {
		conds = append(conds, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(email)))
	}
	if nickname != "" {
		conds = append(conds, "nickname=?")
		args = append(args, nickname)
	}
	if phone != "" {
		conds = append(conds, "phone_number=?")
		args = append(args, phone)
	}
	if len(conds) == 0 {
		return nil, ErrNotFound
	}
	query := "SELECT " + identityColumns + " FROM identities WHERE " + strings.Join(conds, " OR ") + " LIMIT 1"
	return r.scanOne(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *IdentityRepo) scanOne(row *sql.Row) (*model.Identity, error) {
	var (
		ident model.Identity
		phone sql.NullString
		last  sql.NullString
		roles string
	)
	err := row.Scan(&ident.ID, &ident.Email, &ident.PasswordHash, &phone,
		&ident.Nickname, &ident.Name, &last, &roles, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ident.PhoneNumber = phone.String
	ident.LastName = last.String
	ident.Roles = model.ParseRoleSet(roles)
	return &ident, nil
}
