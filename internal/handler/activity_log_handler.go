package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/orbicityhub/cityhub-api/internal/dto"
	"github.com/orbicityhub/cityhub-api/internal/middleware"
	"github.com/orbicityhub/cityhub-api/internal/rbac"
	"github.com/orbicityhub/cityhub-api/internal/service"
	"github.com/orbicityhub/cityhub-api/internal/utils"
)

// ActivityLogHandler exposes the audit trail endpoints.
type ActivityLogHandler struct {
	service service.ActivityLogService
	logger  zerolog.Logger
}

// NewActivityLogHandler constructs the handler.
func NewActivityLogHandler(service service.ActivityLogService, logger zerolog.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_log_handler").Logger(),
	}
}

// Register attaches the activity log routes. Rollback is rate-limited since
// it mutates shared state and its snapshots can be large.
func (h *ActivityLogHandler) Register(router fiber.Router) {
	view := middleware.RequirePermission(rbac.ModuleActivityLog, rbac.ActionView)

	router.Get("", view, h.list)
	router.Post("", view, h.create)
	router.Get("/action-types", view, h.actionTypes)
	router.Get("/modules", view, h.modules)
	router.Post("/cleanup",
		middleware.RequirePermission(rbac.ModuleActivityLog, rbac.ActionCleanup),
		h.cleanup)
	router.Post("/:id/rollback",
		middleware.RequirePermission(rbac.ModuleActivityLog, rbac.ActionRollback),
		middleware.RateLimit("activity_rollback", 10, time.Minute),
		h.rollback)
}

func (h *ActivityLogHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	userID, err := parseQueryInt(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	req := dto.ActivityLogListRequest{
		Page:       page,
		Limit:      limit,
		ActionType: c.Query("action_type"),
		Module:     c.Query("module"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	if userID > 0 {
		id := uint(userID)
		req.UserID = &id
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.SendSuccess(c, "activity logs", response)
}

func (h *ActivityLogHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityLogCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if payload.UserID == nil {
		if id := userIDFromContext(c); id > 0 {
			payload.UserID = &id
		}
	}
	if payload.IPAddress == "" {
		payload.IPAddress = c.IP()
	}
	if payload.UserAgent == "" {
		payload.UserAgent = c.Get(fiber.HeaderUserAgent)
	}

	response, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to record activity log entry")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "failed to record activity log entry")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity log entry recorded", response)
}

func (h *ActivityLogHandler) actionTypes(c *fiber.Ctx) error {
	values, err := h.service.ActionTypes(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load action types")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load action types")
	}
	return utils.SendSuccess(c, "action types", dto.FilterValuesResponse{Values: values})
}

func (h *ActivityLogHandler) modules(c *fiber.Ctx) error {
	values, err := h.service.Modules(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load modules")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load modules")
	}
	return utils.SendSuccess(c, "modules", dto.FilterValuesResponse{Values: values})
}

func (h *ActivityLogHandler) rollback(c *fiber.Ctx) error {
	logID, err := c.ParamsInt("id")
	if err != nil || logID <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity log id")
	}

	var payload dto.RollbackRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if payload.UserID == 0 {
		payload.UserID = userIDFromContext(c)
	}
	if payload.UserID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "user id is required")
	}

	response, err := h.service.Rollback(c.Context(), uint(logID), payload.UserID)
	if err != nil {
		return h.rollbackError(c, err)
	}

	return utils.SendSuccess(c, response.Message, response)
}

func (h *ActivityLogHandler) rollbackError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLogNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotRollbackable):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAlreadyRolledBack):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRollbackWindowExpired):
		return utils.SendError(c, fiber.StatusGone, err.Error())
	default:
		h.logger.Error().Err(err).Msg("rollback failed")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "rollback failed")
	}
}

func (h *ActivityLogHandler) cleanup(c *fiber.Ctx) error {
	response, err := h.service.Cleanup(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("cleanup failed")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "cleanup failed")
	}
	return utils.SendSuccess(c, "cleanup completed", response)
}
