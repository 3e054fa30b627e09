package repository

import (
	"context"

	"github.com/yitocode/members-api/internal/model"
)

// IdentityRepository owns identity records.  Implementations must back
// FindAnyUnique/Create with storage-level unique keys so that two
// concurrent signups with the same email, nickname or phone cannot
// both succeed; the duplicate insert must surface ErrDuplicateIdentity.
type IdentityRepository interface {
	// Create persists a new identity and fills in its ID.  The
	// PasswordHash field must already be hashed by the caller.
	Create(ctx context.Context, ident *model.Identity) error
	// FindByID returns the identity with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id uint64) (*model.Identity, error)
	// FindByEmail returns the identity with the given (normalized)
	// email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
	// FindAnyUnique returns an identity matching any of the unique
	// fields (blank arguments are ignored), or ErrNotFound when none
	// match.  Used for signup duplicate detection.
	FindAnyUnique(ctx context.Context, email, nickname, phone string) (*model.Identity, error)
}

// ProfileRepository owns the one-to-one profiles of identities.
type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	FindByID(ctx context.Context, id uint64) (*model.Profile, error)
	// ListByIdentity returns the profiles owned by an identity with
	// skip/take pagination.
	ListByIdentity(ctx context.Context, identityID uint64, skip, take int) ([]model.Profile, error)
	Update(ctx context.Context, p *model.Profile) error
	Delete(ctx context.Context, id uint64) error
}

// NotificationRepository owns broadcast notification records.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id uint64) (*model.Notification, error)
	List(ctx context.Context, skip, take int) ([]model.Notification, error)
	Update(ctx context.Context, n *model.Notification) error
	Delete(ctx context.Context, id uint64) error
}

// SessionRepository owns server-side session records (stateful auth
// mode).  Delete must be idempotent: removing a missing session is not
// an error.
type SessionRepository interface {
	Create(ctx context.Context) (*model.Session, error)
	Find(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
}
