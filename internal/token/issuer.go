// Package token abstracts credential issuance.  One deployment runs
// exactly one Issuer, chosen at startup by AUTH_MODE: the stateless
// JWT issuer or the Redis-backed session issuer.  The two are never
// mixed within a request.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/yitocode/members-api/internal/model"
)

const (
	// ModeJWT issues signed bearer tokens; nothing is stored server-side.
	ModeJWT = "jwt"
	// ModeSession issues opaque session ids backed by Redis.
	ModeSession = "session"
)

// ErrExpired is returned by Resolve for a credential past its expiry.
var ErrExpired = errors.New("credential expired")

// ErrInvalid is returned by Resolve for a malformed, tampered or
// unknown credential.
var ErrInvalid = errors.New("invalid credential")

// Artifact is the credential handed back to the client after a
// successful signup or signin.
type Artifact struct {
	// Value is the serialized bearer token (jwt mode) or the opaque
	// session id (session mode).
	Value string
	// ExpiresAt is when the credential stops being accepted.
	ExpiresAt time.Time
	// Session is the server-side record in session mode, nil otherwise.
	Session *model.Session
}

// Resolved is the caller identity recovered from a presented
// credential.
type Resolved struct {
	Identity *model.Identity
	// Session is set in session mode so handlers can read flash values
	// and logout can destroy the record.
	Session *model.Session
}

// Issuer turns an authenticated identity into a credential artifact
// and resolves presented credentials back into identities.
type Issuer interface {
	// Mode returns ModeJWT or ModeSession.
	Mode() string
	// Issue creates a fresh credential for the identity.
	Issue(ctx context.Context, ident *model.Identity) (*Artifact, error)
	// Resolve validates a presented credential value.  It returns
	// ErrExpired or ErrInvalid on failure; both map to the same
	// external rejection.
	Resolve(ctx context.Context, value string) (*Resolved, error)
	// Revoke invalidates a credential.  Stateless tokens cannot be
	// revoked server-side, so the jwt implementation is a no-op; the
	// session implementation is idempotent.
	Revoke(ctx context.Context, value string) error
	// Persist writes session state mutated during a request (consumed
	// flash values, new bag entries) back to the store.  The jwt
	// implementation is a no-op.
	Persist(ctx context.Context, s *model.Session) error
}
