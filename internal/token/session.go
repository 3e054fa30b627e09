package token

import (
	"context"
	"errors"
	"time"

	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/repository"
)

// SessionIssuer backs credentials with server-side session records.
// The artifact value is the opaque session id carried in the `sid`
// cookie; resolving it loads the owning identity from the store.
type SessionIssuer struct {
	sessions   repository.SessionRepository
	identities repository.IdentityRepository
	ttl        time.Duration
}

func NewSessionIssuer(sessions repository.SessionRepository, identities repository.IdentityRepository, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionIssuer{sessions: sessions, identities: identities, ttl: ttl}
}

func (i *SessionIssuer) Mode() string { return ModeSession }

// Issue creates a session bound to the identity.
func (i *SessionIssuer) Issue(ctx context.Context, ident *model.Identity) (*Artifact, error) {
	s, err := i.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	s.IdentityID = ident.ID
	if err := i.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	return &Artifact{
		Value:     s.ID,
		ExpiresAt: time.Now().UTC().Add(i.ttl),
		Session:   s,
	}, nil
}

// Resolve loads the session and its owning identity, then writes the
// record back so the idle TTL restarts: a session dies only after a
// full TTL of inactivity, not a fixed interval after creation.  A
// missing or idle-expired session resolves to ErrExpired; a session
// never bound to an identity to ErrInvalid.
func (i *SessionIssuer) Resolve(ctx context.Context, value string) (*Resolved, error) {
	if value == "" {
		return nil, ErrInvalid
	}
	s, err := i.sessions.Find(ctx, value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExpired
		}
		return nil, err
	}
	if s.IdentityID == 0 {
		return nil, ErrInvalid
	}
	ident, err := i.identities.FindByID(ctx, s.IdentityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalid
		}
		return nil, err
	}
	if err := i.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	return &Resolved{Identity: ident, Session: s}, nil
}

// Revoke destroys the session.  The underlying delete is idempotent.
func (i *SessionIssuer) Revoke(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	return i.sessions.Delete(ctx, value)
}

// Persist writes the session back to the store.  Called after the
// handler ran so consumed flash values stay consumed on the next
// request.
func (i *SessionIssuer) Persist(ctx context.Context, s *model.Session) error {
	if s == nil {
		return nil
	}
	return i.sessions.Save(ctx, s)
}

var _ Issuer = (*SessionIssuer)(nil)
