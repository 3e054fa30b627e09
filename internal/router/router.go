// Package router wires HTTP routes to their handlers and gates.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/handler"
	"github.com/yitocode/members-api/internal/middleware"
	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/token"
)

// Deps collects everything route registration needs.  Social may be
// nil when Google OAuth is not configured; RateLimit may be nil when
// the limiter is disabled.
type Deps struct {
	Auth          *handler.AuthHandler
	Social        *handler.SocialHandler
	Profiles      *handler.ProfileHandler
	Notifications *handler.NotificationHandler
	Issuer        token.Issuer
	RateLimit     echo.MiddlewareFunc
}

// Register registers all routes on the Echo instance.
//
// The auth endpoints run under the reject-if-present policy so an
// authenticated caller cannot sign up or sign in again; signout runs
// under Optional so it can destroy a live session but also succeed
// for a caller whose credential already expired.  Everything under
// the protected group requires a valid credential, and the sliding
// renewal stage re-issues bearer tokens on successful responses.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	guestOnly := middleware.Authenticate(d.Issuer, middleware.RejectIfPresent)

	g := e.Group("/v1/auth")
	if d.RateLimit != nil {
		g.Use(d.RateLimit)
	}
	g.POST("/signup", d.Auth.Signup, guestOnly)
	g.POST("/signin", d.Auth.Signin, guestOnly)
	g.POST("/signout", d.Auth.Signout, middleware.Authenticate(d.Issuer, middleware.Optional))
	if d.Social != nil {
		g.GET("/google", d.Social.RedirectToGoogle, guestOnly)
		g.GET("/google/callback", d.Social.GoogleCallback, guestOnly)
	}

	auth := e.Group("/v1")
	auth.Use(middleware.Authenticate(d.Issuer, middleware.Required))
	auth.Use(middleware.RenewToken(d.Issuer))

	auth.GET("/me", d.Auth.Me)

	p := auth.Group("/profiles")
	p.GET("", d.Profiles.List)
	p.POST("", d.Profiles.Create)
	p.GET("/:profileId", d.Profiles.Get)
	p.PATCH("/:profileId", d.Profiles.Patch, middleware.RequireRole(model.RoleCreator, model.RoleOwner))
	p.PUT("/:profileId", d.Profiles.Put, middleware.RequireRole(model.RoleCreator, model.RoleOwner))
	p.DELETE("/:profileId", d.Profiles.Delete, middleware.RequireRole(model.RoleOwner))

	n := auth.Group("/notifications")
	n.GET("", d.Notifications.List)
	n.POST("", d.Notifications.Create)
	n.GET("/:notificationId", d.Notifications.Get)
	n.PATCH("/:notificationId", d.Notifications.Update)
	n.PUT("/:notificationId", d.Notifications.Update)
	n.DELETE("/:notificationId", d.Notifications.Delete)
}
