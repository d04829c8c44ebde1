package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/orbicityhub/cityhub-api/internal/rbac"
	"github.com/orbicityhub/cityhub-api/internal/utils"
)

// CurrentUser builds the RBAC identity from the authenticated request.
// Returns nil when no user is bound to the request.
func CurrentUser(c *fiber.Ctx) *rbac.User {
	value := c.Locals("user_id")
	if value == nil {
		return nil
	}

	var id uint
	switch v := value.(type) {
	case uint:
		id = v
	case int:
		if v < 0 {
			return nil
		}
		id = uint(v)
	default:
		return nil
	}

	role := rbac.ParseRole(normalizeRoleValue(c.Locals("user_role")))
	return &rbac.User{ID: id, Role: role}
}

// RequireRole ensures the authenticated user's role ranks at least as high
// as the given role.
func RequireRole(required rbac.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if err := rbac.RequireRole(user, required); err != nil {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequirePermission ensures the authenticated user's role is on the exact
// allow-list for the module/action pair.
func RequirePermission(module rbac.Module, action rbac.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if err := rbac.RequirePermission(user, module, action); err != nil {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
