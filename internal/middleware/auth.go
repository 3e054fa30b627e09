// Package middleware provides the request-interception stages shared
// by all routes: credential resolution, role checks, sliding token
// renewal and rate limiting.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/token"
)

// Context keys under which the auth gate stores what it resolved.
const (
	// ContextIdentity holds the resolved *model.Identity.
	ContextIdentity = "identity"
	// ContextSession holds the *model.Session in session mode.
	ContextSession = "session"
	// ContextCredential holds the raw presented credential value.
	ContextCredential = "credential"
)

// SessionCookie is the cookie carrying the session id in session mode.
const SessionCookie = "sid"

// Policy controls how the auth gate treats a request's credential.
type Policy int

const (
	// Required rejects any request without a valid credential before
	// the handler runs.
	Required Policy = iota
	// Optional attaches the identity when a valid credential is
	// presented and lets the handler decide otherwise.
	Optional
	// RejectIfPresent rejects requests that already carry a valid
	// credential.  Used on signup/signin so an authenticated caller
	// cannot authenticate twice.
	RejectIfPresent
)

// Authenticate returns the authentication gate for the given issuer
// and policy.  In jwt mode the credential comes from the
// Authorization header ("Bearer <token>"); in session mode from the
// sid cookie.  Expired and malformed credentials produce the same
// rejection shape.
func Authenticate(iss token.Issuer, policy Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value := credentialFrom(c, iss.Mode())
			if value == "" {
				if policy == Required {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credential"})
				}
				return next(c)
			}

			res, err := iss.Resolve(c.Request().Context(), value)
			if err != nil {
				if errors.Is(err, token.ErrExpired) || errors.Is(err, token.ErrInvalid) {
					if policy == Required {
						return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired credential"})
					}
					// Optional and RejectIfPresent treat a dead
					// credential the same as an absent one.
					return next(c)
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
			}

			if policy == RejectIfPresent {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "already authenticated"})
			}

			c.Set(ContextIdentity, res.Identity)
			c.Set(ContextCredential, value)
			if res.Session != nil {
				c.Set(ContextSession, res.Session)
			}
			return next(c)
		}
	}
}

// credentialFrom extracts the raw credential for the active auth mode.
func credentialFrom(c echo.Context, mode string) string {
	if mode == token.ModeJWT {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return ""
	}
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
