package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/model"
)

// RequireRole returns the role authorization gate.  It must run after
// Authenticate(Required): the request is allowed iff the resolved
// identity's role set intersects the required set (OR semantics).  A
// missing or malformed identity record is an internal fault, reported
// generically and never treated as an allow.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := c.Get(ContextIdentity).(*model.Identity)
			if !ok || ident == nil || len(ident.Roles) == 0 {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
			}
			if !ident.Roles.Intersects(roles) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "role requirement not met"})
			}
			return next(c)
		}
	}
}
