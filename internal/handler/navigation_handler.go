package handler

import (
	"github.com/gofiber/fiber/v2"

	"farm-management/internal/service/navigation"
)

type NavigationHandler struct {
	navService navigation.Service
}

func NewNavigationHandler(navService navigation.Service) *NavigationHandler {
	return &NavigationHandler{navService: navService}
}

func (h *NavigationHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	menu, err := h.navService.Resolve(c.UserContext(), user, c.Query("path", "/"), c.Query("farm_id"))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(menu)
}
