package handler

import (
	"github.com/gofiber/fiber/v2"

	"farm-management/internal/domain"
	"farm-management/internal/middleware"
	"farm-management/internal/service/notification"
)

type AdminHandler struct {
	notifService notification.Service
}

func NewAdminHandler(notifService notification.Service) *AdminHandler {
	return &AdminHandler{notifService: notifService}
}

func (h *AdminHandler) SendNotification(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var input domain.SendNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.notifService.Send(c.UserContext(), user, input)
	if err != nil {
		return mapError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
