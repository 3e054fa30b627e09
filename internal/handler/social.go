package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/oauth"
	"github.com/yitocode/members-api/internal/repository"
	"github.com/yitocode/members-api/internal/token"
)

// stateCookie carries the OAuth state value between the redirect and
// the callback.
const stateCookie = "oauth_state"

// SocialHandler implements Google sign-in: redirect to the consent
// page, then exchange the callback code, find-or-create the identity
// by verified email and issue a credential like a regular signin.
type SocialHandler struct {
	Provider   oauth.Provider
	Identities repository.IdentityRepository
	Issuer     token.Issuer
}

func NewSocialHandler(p oauth.Provider, idents repository.IdentityRepository, iss token.Issuer) *SocialHandler {
	return &SocialHandler{Provider: p, Identities: idents, Issuer: iss}
}

// RedirectToGoogle sends the caller to the consent page with a fresh
// state value pinned in a short-lived cookie.
func (h *SocialHandler) RedirectToGoogle(c echo.Context) error {
	state, err := randomHex(16)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start sign-in"})
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.Provider.LoginURL(state))
}

// GoogleCallback validates the state, exchanges the code for a
// verified email and signs the caller in, creating the identity on
// first contact.
func (h *SocialHandler) GoogleCallback(c echo.Context) error {
	state := c.QueryParam("state")
	cookie, err := c.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid oauth state"})
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing authorization code"})
	}

	info, err := h.Provider.Exchange(c.Request().Context(), code)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "sign-in with the provider failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ident, err := h.Identities.FindByEmail(ctx, info.Email)
	switch {
	case err == nil:
		// Existing account, proceed to issuance.
	case errors.Is(err, repository.ErrNotFound):
		ident, err = h.createFromProvider(ctx, info)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign-in failed"})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign-in failed"})
	}

	art, err := h.Issuer.Issue(ctx, ident)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue credential failed"})
	}

	cred := writeCredential(c, h.Issuer, art)
	return c.JSON(http.StatusOK, authResp{
		Identity:   identityView(ident),
		Credential: cred,
		Message:    "signed in with Google",
	})
}

// createFromProvider registers a social-only identity.  The nickname
// gets a collision-free random suffix and the phone number stays
// empty; both can be completed later through profile management.
// Creation retries once on a nickname collision.
func (h *SocialHandler) createFromProvider(ctx context.Context, info *oauth.UserInfo) (*model.Identity, error) {
	for attempt := 0; attempt < 2; attempt++ {
		suffix, err := randomHex(4)
		if err != nil {
			return nil, err
		}
		ident := &model.Identity{
			Email:    info.Email,
			Nickname: "user-" + suffix,
			Name:     info.Name,
			Roles:    model.RoleSet{model.RoleUser},
		}
		err = h.Identities.Create(ctx, ident)
		if err == nil {
			return ident, nil
		}
		if !errors.Is(err, repository.ErrDuplicateIdentity) {
			return nil, err
		}
	}
	return nil, repository.ErrDuplicateIdentity
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
