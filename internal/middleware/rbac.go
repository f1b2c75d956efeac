package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/utils"
)

// RequireRole ensures the authenticated user holds one of the allowed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := RoleFromCtx(c)
		if !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		if _, permitted := allowed[role]; !permitted {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RoleFromCtx reads the authenticated role bound by JWTProtected.
func RoleFromCtx(c *fiber.Ctx) (models.Role, bool) {
	value := c.Locals(LocalUserRole)
	role, ok := value.(models.Role)
	return role, ok
}

// UserIDFromCtx reads the authenticated subject bound by JWTProtected.
func UserIDFromCtx(c *fiber.Ctx) (uint, bool) {
	value := c.Locals(LocalUserID)
	id, ok := value.(uint)
	return id, ok
}
