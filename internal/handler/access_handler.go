package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/orbicityhub/cityhub-api/internal/dto"
	"github.com/orbicityhub/cityhub-api/internal/middleware"
	"github.com/orbicityhub/cityhub-api/internal/rbac"
	"github.com/orbicityhub/cityhub-api/internal/utils"
)

// AccessHandler reports the current user's module visibility and per-module
// permissions so the UI can hide what the operator may not touch.
type AccessHandler struct {
	logger zerolog.Logger
}

// NewAccessHandler constructs the handler.
func NewAccessHandler(logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		logger: logger.With().Str("component", "access_handler").Logger(),
	}
}

// Register attaches the access inspection routes.
func (h *AccessHandler) Register(router fiber.Router) {
	router.Get("/modules", h.modules)
	router.Get("/modules/:module", h.modulePermissions)
}

func (h *AccessHandler) modules(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	modules := rbac.AccessibleModules(user)
	names := make([]string, 0, len(modules))
	for _, module := range modules {
		names = append(names, string(module))
	}

	return utils.SendSuccess(c, "accessible modules", dto.AccessibleModulesResponse{
		Role:    string(user.Role),
		Modules: names,
	})
}

func (h *AccessHandler) modulePermissions(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	module, ok := rbac.ParseModule(c.Params("module"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "unknown module")
	}

	actions := rbac.ModulePermissions(user, module)
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, string(action))
	}

	return utils.SendSuccess(c, "module permissions", dto.ModulePermissionsResponse{
		Module:  string(module),
		Actions: names,
	})
}
