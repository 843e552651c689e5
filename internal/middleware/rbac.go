package middleware

import (
	"github.com/gofiber/fiber/v2"

	"farm-management/internal/domain"
)

// RequireAnyRole admits the request when the current user classifies as one of
// roles. Users whose flags carry no role are rejected.
func RequireAnyRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !user.HasAnyRole(roles...) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func RequireAdministrative() fiber.Handler {
	return RequireAnyRole(domain.RoleAdmin, domain.RoleSuperuser)
}
