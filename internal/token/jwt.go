package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yitocode/members-api/internal/model"
)

// JWTIssuer signs HS256 bearer tokens carrying the identity's id,
// email and roles.  Verification is a pure computation (signature plus
// expiry check) and never touches shared state.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTIssuer builds a JWTIssuer.  A non-positive ttl falls back to
// the one-hour default.
func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTIssuer) Mode() string { return ModeJWT }

// Issue signs a fresh token for the identity with a renewed expiry.
func (i *JWTIssuer) Issue(_ context.Context, ident *model.Identity) (*Artifact, error) {
	now := time.Now().UTC()
	exp := now.Add(i.ttl)
	roles := make([]string, len(ident.Roles))
	for n, r := range ident.Roles {
		roles[n] = string(r)
	}
	claims := jwt.MapClaims{
		"sub":   ident.ID,
		"email": ident.Email,
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return nil, err
	}
	return &Artifact{Value: signed, ExpiresAt: exp}, nil
}

// Resolve parses and validates a bearer token.  The identity is
// reconstructed entirely from the claims; no store lookup happens on
// the hot path.
func (i *JWTIssuer) Resolve(_ context.Context, value string) (*Resolved, error) {
	tok, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}

	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return nil, ErrInvalid
	}
	email, _ := claims["email"].(string)

	var roles model.RoleSet
	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok && s != "" {
				roles = append(roles, model.Role(s))
			}
		}
	}

	return &Resolved{Identity: &model.Identity{
		ID:    uint64(sub),
		Email: email,
		Roles: roles,
	}}, nil
}

// Revoke is a no-op: stateless tokens stay valid until expiry and the
// client is instructed to discard them.
func (i *JWTIssuer) Revoke(context.Context, string) error { return nil }

// Persist is a no-op: jwt mode keeps no server-side session state.
func (i *JWTIssuer) Persist(context.Context, *model.Session) error { return nil }

var _ Issuer = (*JWTIssuer)(nil)
