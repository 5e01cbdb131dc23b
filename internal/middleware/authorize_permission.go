package middleware

import (
	"sfms-backend/internal/constants"
	"sfms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AuthorizePermission gates a route on the principal's role.
// A missing principal is 401, a permission absent from constants.PermissionRoles is 500,
// and a role outside the allowed list is 403.
func AuthorizePermission(permission string) fiber.Handler {
	allowed := constants.PermissionRoles[permission]
	return func(c *fiber.Ctx) error {
		if GetUser(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if len(allowed) == 0 {
			zerolog.Ctx(c.UserContext()).Error().Str("permission", permission).Msg("permission has no roles")
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		role := GetRole(c)
		if role == "" {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, role) {
			return response.Forbidden(c, "User is Forbidden from performing this action", fiber.Map{"required": permission})
		}
		return c.Next()
	}
}
