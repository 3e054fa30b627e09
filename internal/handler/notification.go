package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/repository"
)

// NotificationHandler implements CRUD for broadcast notifications.
type NotificationHandler struct {
	Notifications repository.NotificationRepository
}

func NewNotificationHandler(n repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

type notificationReq struct {
	Text string `json:"text"`
}

type notificationResp struct {
	ID   uint64 `json:"id"`
	Text string `json:"text"`
}

// List returns notifications with skip/take pagination.
func (h *NotificationHandler) List(c echo.Context) error {
	skip, take, err := skipTake(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Notifications.List(ctx, skip, take)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list notifications failed"})
	}
	out := make([]notificationResp, len(list))
	for i, n := range list {
		out[i] = notificationResp{ID: n.ID, Text: n.Text}
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a notification by id.
func (h *NotificationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "notificationId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Notifications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load notification failed"})
	}
	return c.JSON(http.StatusOK, notificationResp{ID: n.ID, Text: n.Text})
}

// Create inserts a notification.
func (h *NotificationHandler) Create(c echo.Context) error {
	var req notificationReq
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n := &model.Notification{Text: req.Text}
	if err := h.Notifications.Create(ctx, n); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create notification failed"})
	}
	return c.JSON(http.StatusCreated, notificationResp{ID: n.ID, Text: n.Text})
}

// Update rewrites a notification's text (used by both PATCH and PUT;
// text is the only mutable field).
func (h *NotificationHandler) Update(c echo.Context) error {
	id, err := pathID(c, "notificationId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	var req notificationReq
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n := &model.Notification{ID: id, Text: req.Text}
	if err := h.Notifications.Update(ctx, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update notification failed"})
	}
	return c.JSON(http.StatusOK, notificationResp{ID: id, Text: req.Text})
}

// Delete removes a notification by id.
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "notificationId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Notifications.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete notification failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
