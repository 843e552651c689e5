package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"farm-management/internal/middleware"
	"farm-management/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	filter, err := notification.ParseFilter(c.Query("filter"))
	if err != nil {
		return mapError(err)
	}

	snap, err := h.notifService.Feed(c.UserContext(), scopeFromRequest(c, user), filter)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(snap)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.GetUnreadCount(c.UserContext(), scopeFromRequest(c, user))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	snap, err := h.notifService.MarkAsRead(c.UserContext(), scopeFromRequest(c, user), notifID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(snap)
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	snap, err := h.notifService.MarkAllAsRead(c.UserContext(), scopeFromRequest(c, user))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(snap)
}

// RequestDelete starts the two-step delete. The client shows the returned
// prompt and, once the user accepts, calls Delete with the token.
func (h *NotificationHandler) RequestDelete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	confirmation, err := h.notifService.RequestDelete(c.UserContext(), scopeFromRequest(c, user), notifID)
	if err != nil {
		return mapError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(confirmation)
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	token := c.Query("confirm")
	if token == "" {
		return middleware.BadRequest("Delete requires a confirmation token")
	}

	snap, err := h.notifService.ConfirmDelete(c.UserContext(), scopeFromRequest(c, user), notifID, token)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(snap)
}

// ReleaseSession drops the caller's board, e.g. when the notifications view is
// closed.
func (h *NotificationHandler) ReleaseSession(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	h.notifService.Release(scopeFromRequest(c, user))
	return c.SendStatus(fiber.StatusNoContent)
}
