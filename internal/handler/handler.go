package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"farm-management/internal/domain"
	"farm-management/internal/middleware"
	"farm-management/internal/service"
	"farm-management/internal/service/navigation"
	"farm-management/internal/service/notification"
)

type Handlers struct {
	Navigation   *NavigationHandler
	Shell        *ShellHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Navigation:   NewNavigationHandler(services.Navigation),
		Shell:        NewShellHandler(services.Navigation, services.Notification),
		Notification: NewNotificationHandler(services.Notification),
		Admin:        NewAdminHandler(services.Notification),
	}
}

// mapError translates service errors into HTTP errors. Unknown errors are
// returned unchanged and end up as 500s.
func mapError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNoRole):
		return middleware.Forbidden("User has no role assigned")
	case errors.Is(err, navigation.ErrFarmAccessDenied),
		errors.Is(err, notification.ErrFarmAccessDenied):
		return middleware.NotFound("Farm not found or access denied")
	case errors.Is(err, notification.ErrFarmNotFound):
		return middleware.NotFound("Farm not found")
	case errors.Is(err, notification.ErrNotFound):
		return middleware.NotFound("Notification not found")
	case errors.Is(err, notification.ErrUnknownFilter):
		return middleware.BadRequest("Unknown notification filter")
	case errors.Is(err, notification.ErrInvalidInput):
		return middleware.BadRequest("Title and message are required")
	case errors.Is(err, notification.ErrRecipientInvalid):
		return middleware.BadRequest("Recipient is not assigned to this farm")
	case errors.Is(err, notification.ErrInvalidConfirmation):
		return middleware.Gone("Delete confirmation is invalid or has expired")
	case errors.Is(err, notification.ErrBoardClosed):
		return fiber.NewError(fiber.StatusConflict, "Notification view was closed, reload and try again")
	default:
		return err
	}
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return nil, middleware.Unauthorized("User not found")
	}
	return user, nil
}

// scopeFromRequest reads the farm from the :farmId route param or, failing
// that, the farm_id query parameter. Scopes outlive the request in the board
// registry, so the farm id is copied out of fiber's request buffer.
func scopeFromRequest(c *fiber.Ctx, user *domain.User) domain.Scope {
	farmID := c.Params("farmId")
	if farmID == "" {
		farmID = c.Query("farm_id")
	}
	return domain.Scope{UserID: user.ID, FarmID: utils.CopyString(farmID)}
}
