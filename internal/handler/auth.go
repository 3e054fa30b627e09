package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/middleware"
	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/password"
	"github.com/yitocode/members-api/internal/queue"
	"github.com/yitocode/members-api/internal/repository"
	"github.com/yitocode/members-api/internal/token"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the signup/signin/signout
// endpoints.
type AuthHandler struct {
	Identities repository.IdentityRepository
	Issuer     token.Issuer
	BcryptCost int
	AMQPURL    string // empty disables the welcome-mail event
}

func NewAuthHandler(idents repository.IdentityRepository, iss token.Issuer, bcryptCost int, amqpURL string) *AuthHandler {
	return &AuthHandler{Identities: idents, Issuer: iss, BcryptCost: bcryptCost, AMQPURL: amqpURL}
}

// ----- DTOs -----

type signupReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Nickname    string `json:"nickname"`
	Name        string `json:"name"`
	LastName    string `json:"last_name"`
}

type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityPart struct {
	ID          uint64   `json:"id"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Nickname    string   `json:"nickname"`
	Name        string   `json:"name,omitempty"`
	Roles       []string `json:"roles"`
}

type credentialPart struct {
	Type    string    `json:"type"` // "bearer" or "session"
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Identity   identityPart   `json:"identity"`
	Credential credentialPart `json:"credential"`
	Message    string         `json:"message,omitempty"`
}

func identityView(ident *model.Identity) identityPart {
	roles := make([]string, len(ident.Roles))
	for i, r := range ident.Roles {
		roles[i] = string(r)
	}
	return identityPart{
		ID:          ident.ID,
		Email:       ident.Email,
		PhoneNumber: ident.PhoneNumber,
		Nickname:    ident.Nickname,
		Name:        ident.Name,
		Roles:       roles,
	}
}

// writeCredential serializes the issued artifact into the response:
// Authorization header for bearer tokens, sid cookie for sessions.
func writeCredential(c echo.Context, iss token.Issuer, art *token.Artifact) credentialPart {
	if iss.Mode() == token.ModeJWT {
		c.Response().Header().Set(echo.HeaderAuthorization, art.Value)
		return credentialPart{Type: "bearer", Value: art.Value, Expires: art.ExpiresAt}
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    art.Value,
		Path:     "/",
		Expires:  art.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return credentialPart{Type: "session", Value: art.Value, Expires: art.ExpiresAt}
}

// Signup registers a local identity: password policy, duplicate check,
// hash, persist, issue credential and fire off the welcome mail.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Nickname = strings.TrimSpace(req.Nickname)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.Email == "" || req.Password == "" || req.Nickname == "" || req.PhoneNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password, nickname and phone_number are required"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}

	// Policy runs before hashing and before any store access.
	if err := password.Validate(req.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "the password does not meet the requirements or is too common"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Early duplicate check for a friendly message; the unique keys on
	// the table close the race between check and insert.
	if _, err := h.Identities.FindAnyUnique(ctx, req.Email, req.Nickname, req.PhoneNumber); err == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "the email, nickname or phone number is already registered"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	hash, err := password.Hash(req.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	ident := &model.Identity{
		Email:        req.Email,
		PasswordHash: hash,
		PhoneNumber:  req.PhoneNumber,
		Nickname:     req.Nickname,
		Name:         req.Name,
		LastName:     req.LastName,
		Roles:        model.RoleSet{model.RoleUser},
	}
	if err := h.Identities.Create(ctx, ident); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "the email, nickname or phone number is already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	art, err := h.Issuer.Issue(ctx, ident)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue credential failed"})
	}

	// Fire-and-forget: the signup response never waits on the broker.
	if h.AMQPURL != "" {
		ev := queue.WelcomeEmailEvent{
			IdentityID: ident.ID,
			Email:      ident.Email,
			Nickname:   ident.Nickname,
			SignedUpAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = queue.PublishWelcomeEmail(ctx, h.AMQPURL, ev)
		}()
	}

	cred := writeCredential(c, h.Issuer, art)
	return c.JSON(http.StatusCreated, authResp{
		Identity:   identityView(ident),
		Credential: cred,
		Message:    "user " + ident.Nickname + " has been registered",
	})
}

// Signin verifies a local credential and issues a token or session.
// A missing account and a wrong password produce the same rejection
// so callers cannot enumerate registered emails.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ident, err := h.Identities.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "the email or password is incorrect"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signin failed"})
	}
	if !password.Verify(ident.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "the email or password is incorrect"})
	}

	art, err := h.Issuer.Issue(ctx, ident)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue credential failed"})
	}

	cred := writeCredential(c, h.Issuer, art)
	return c.JSON(http.StatusOK, authResp{
		Identity:   identityView(ident),
		Credential: cred,
		Message:    "user " + ident.Nickname + " has signed in",
	})
}

// Signout invalidates the presented credential.  Sessions are
// destroyed server-side (idempotently); bearer tokens are simply
// discarded by the client.  Always 204.
func (h *AuthHandler) Signout(c echo.Context) error {
	var value string
	if v, ok := c.Get(middleware.ContextCredential).(string); ok {
		value = v
	} else if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
		value = cookie.Value
	}

	if value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if err := h.Issuer.Revoke(ctx, value); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signout failed"})
		}
	}
	if h.Issuer.Mode() == token.ModeSession {
		// Expire the cookie regardless of whether a session existed.
		c.SetCookie(&http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated identity (protected endpoint).
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := c.Get(middleware.ContextIdentity).(*model.Identity)
	if !ok || ident == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credential"})
	}
	return c.JSON(http.StatusOK, echo.Map{"identity": identityView(ident)})
}
