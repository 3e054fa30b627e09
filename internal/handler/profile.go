package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/middleware"
	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/repository"
)

// ProfileHandler implements the profile CRUD endpoints.  All routes
// run behind the auth gate; write operations carry role gates at the
// router level.
type ProfileHandler struct {
	Profiles repository.ProfileRepository
}

func NewProfileHandler(profiles repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

type profileReq struct {
	Picture     string          `json:"picture"`
	LastName    string          `json:"last_name"`
	SocialMedia json.RawMessage `json:"social_media,omitempty"`
}

type profileResp struct {
	ID          uint64          `json:"id"`
	IdentityID  uint64          `json:"identity_id"`
	Picture     string          `json:"picture"`
	LastName    string          `json:"last_name"`
	SocialMedia json.RawMessage `json:"social_media,omitempty"`
}

func profileView(p *model.Profile) profileResp {
	return profileResp{
		ID:          p.ID,
		IdentityID:  p.IdentityID,
		Picture:     p.Picture,
		LastName:    p.LastName,
		SocialMedia: p.SocialMedia,
	}
}

func currentIdentity(c echo.Context) (*model.Identity, bool) {
	ident, ok := c.Get(middleware.ContextIdentity).(*model.Identity)
	return ident, ok && ident != nil
}

// skipTake parses the pagination query parameters.
func skipTake(c echo.Context) (int, int, error) {
	skip, take := 0, 20
	if s := c.QueryParam("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, errors.New("invalid skip")
		}
		skip = n
	}
	if s := c.QueryParam("take"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, 0, errors.New("invalid take")
		}
		take = n
	}
	return skip, take, nil
}

// List returns the caller's profiles with skip/take pagination.
func (h *ProfileHandler) List(c echo.Context) error {
	ident, ok := currentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credential"})
	}
	skip, take, err := skipTake(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	profiles, err := h.Profiles.ListByIdentity(ctx, ident.ID, skip, take)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list profiles failed"})
	}
	out := make([]profileResp, len(profiles))
	for i := range profiles {
		out[i] = profileView(&profiles[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"profiles": out})
}

// Get returns a profile by id.
func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := pathID(c, "profileId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, profileView(p))
}

// Create adds the caller's profile.  A second profile for the same
// identity is rejected.
func (h *ProfileHandler) Create(c echo.Context) error {
	ident, ok := currentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credential"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Picture == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "picture and last_name are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p := &model.Profile{
		IdentityID:  ident.ID,
		Picture:     req.Picture,
		LastName:    req.LastName,
		SocialMedia: req.SocialMedia,
	}
	if err := h.Profiles.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProfileExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a profile already exists for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"profile": profileView(p), "message": "profile saved"})
}

// Patch partially updates a profile; absent fields keep their value.
func (h *ProfileHandler) Patch(c echo.Context) error {
	return h.update(c, false)
}

// Put replaces a profile; all required fields must be present.
func (h *ProfileHandler) Put(c echo.Context) error {
	return h.update(c, true)
}

func (h *ProfileHandler) update(c echo.Context, replace bool) error {
	id, err := pathID(c, "profileId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if replace && (req.Picture == "" || req.LastName == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "picture and last_name are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}

	if replace {
		p.Picture = req.Picture
		p.LastName = req.LastName
		p.SocialMedia = req.SocialMedia
	} else {
		if req.Picture != "" {
			p.Picture = req.Picture
		}
		if req.LastName != "" {
			p.LastName = req.LastName
		}
		if len(req.SocialMedia) > 0 {
			p.SocialMedia = req.SocialMedia
		}
	}

	if err := h.Profiles.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, profileView(p))
}

// Delete removes a profile by id.
func (h *ProfileHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "profileId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Profiles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete profile failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
