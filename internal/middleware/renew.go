package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/token"
)

// RenewToken keeps the credential sliding on every protected request.
//
// In jwt mode a fresh bearer token is written to the Authorization
// response header just before the status line goes out, skipped for
// server-side failures (5xx).  In session mode the resolver already
// restarted the idle TTL; this stage writes back any session state the
// handler mutated, so a consumed flash value stays consumed on the
// next request.
func RenewToken(iss token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if iss.Mode() != token.ModeJWT {
				err := next(c)
				if s, ok := c.Get(ContextSession).(*model.Session); ok && s != nil && s.Dirty {
					if perr := iss.Persist(c.Request().Context(), s); perr != nil {
						c.Logger().Errorf("persist session: %v", perr)
					}
				}
				return err
			}
			c.Response().Before(func() {
				if c.Response().Status >= 500 {
					return
				}
				ident, ok := c.Get(ContextIdentity).(*model.Identity)
				if !ok || ident == nil {
					return
				}
				art, err := iss.Issue(c.Request().Context(), ident)
				if err != nil {
					return
				}
				c.Response().Header().Set(echo.HeaderAuthorization, art.Value)
			})
			return next(c)
		}
	}
}
