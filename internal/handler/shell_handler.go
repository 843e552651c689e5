package handler

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"farm-management/internal/domain"
	"farm-management/internal/service/navigation"
	"farm-management/internal/service/notification"
)

type ShellHandler struct {
	navService   navigation.Service
	notifService notification.Service
}

func NewShellHandler(navService navigation.Service, notifService notification.Service) *ShellHandler {
	return &ShellHandler{navService: navService, notifService: notifService}
}

type ShellResponse struct {
	User        *domain.User     `json:"user"`
	Menu        *navigation.Menu `json:"menu"`
	UnreadCount int64            `json:"unread_count"`
}

// Get returns everything the layout shell renders: the user, the menu for the
// current route and the unread badge.
func (h *ShellHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	path := c.Query("path", "/")
	farmID := c.Query("farm_id")
	route := domain.ParseRoute(path, farmID)

	resp := ShellResponse{User: user}
	g, ctx := errgroup.WithContext(c.UserContext())

	g.Go(func() error {
		menu, err := h.navService.Resolve(ctx, user, path, farmID)
		if err != nil {
			return err
		}
		resp.Menu = menu
		return nil
	})

	g.Go(func() error {
		scope := domain.Scope{UserID: user.ID}
		if route.InFarmScope {
			scope.FarmID = route.FarmID
		}
		count, err := h.notifService.GetUnreadCount(ctx, scope)
		if err != nil {
			return err
		}
		resp.UnreadCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return mapError(err)
	}

	return c.JSON(resp)
}
