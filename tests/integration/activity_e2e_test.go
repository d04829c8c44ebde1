package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orbicityhub/cityhub-api/internal/config"
	"github.com/orbicityhub/cityhub-api/internal/dto"
	"github.com/orbicityhub/cityhub-api/internal/handler"
	"github.com/orbicityhub/cityhub-api/internal/middleware"
	"github.com/orbicityhub/cityhub-api/internal/models"
	"github.com/orbicityhub/cityhub-api/internal/repository"
	"github.com/orbicityhub/cityhub-api/internal/router"
	"github.com/orbicityhub/cityhub-api/internal/service"
)

const testRoleHeader = "X-Test-Role"

func setupActivityApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ActivityLog{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	activityRepo := repository.NewActivityLogRepository(db)
	activityService := service.NewActivityLogService(activityRepo, nil, 0, nil, validate, logger)

	activityHandler := handler.NewActivityLogHandler(activityService, logger)
	accessHandler := handler.NewAccessHandler(logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "CityHub API Test", JWTSecret: "secret"}, router.Dependencies{
		ActivityLogHandler: activityHandler,
		AccessHandler:      accessHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			role := c.Get(testRoleHeader)
			if role == "" {
				role = "admin"
			}
			c.Locals("user_id", uint(9001))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, role string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set(testRoleHeader, role)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func TestActivityLogEndToEndFlow(t *testing.T) {
	app := setupActivityApp(t)

	// Step 1: a manager records a mutating action
	resp := doJSON(t, app, http.MethodPost, "/api/v1/activity-logs", "manager", map[string]interface{}{
		"actionType":   "update",
		"targetEntity": "booking",
		"targetId":     "314",
		"module":       "reservations",
		"oldValue":     map[string]interface{}{"entityType": "booking", "payload": map[string]int{"guests": 2}},
		"newValue":     map[string]interface{}{"entityType": "booking", "payload": map[string]int{"guests": 4}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool                          `json:"success"`
		Data    dto.ActivityLogCreateResponse `json:"data"`
	}
	decode(t, resp, &created)
	require.True(t, created.Success)
	require.NotZero(t, created.Data.ID)

	// Step 2: the trail lists the entry newest first
	resp = doJSON(t, app, http.MethodGet, "/api/v1/activity-logs?module=reservations", "manager", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Success bool                        `json:"success"`
		Data    dto.ActivityLogListResponse `json:"data"`
	}
	decode(t, resp, &listed)
	require.True(t, listed.Success)
	require.Equal(t, int64(1), listed.Data.Total)
	require.Equal(t, created.Data.ID, listed.Data.Logs[0].ID)
	require.Equal(t, uint(9001), *listed.Data.Logs[0].UserID)

	// Step 3: staff may not read the trail
	resp = doJSON(t, app, http.MethodGet, "/api/v1/activity-logs", "staff", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Step 4: the manager rolls the action back and gets the prior snapshot
	rollbackPath := fmt.Sprintf("/api/v1/activity-logs/%d/rollback", created.Data.ID)
	resp = doJSON(t, app, http.MethodPost, rollbackPath, "manager", map[string]interface{}{"userId": 9001})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rolled struct {
		Success bool                 `json:"success"`
		Data    dto.RollbackResponse `json:"data"`
	}
	decode(t, resp, &rolled)
	require.True(t, rolled.Success)
	require.True(t, rolled.Data.Success)
	require.Equal(t, "booking", rolled.Data.TargetEntity)
	require.Equal(t, "314", rolled.Data.TargetID)
	require.JSONEq(t, `{"entityType":"booking","payload":{"guests":2}}`, string(rolled.Data.OldValue))

	// Step 5: a repeat rollback is refused
	resp = doJSON(t, app, http.MethodPost, rollbackPath, "manager", map[string]interface{}{"userId": 9001})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var refused struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, resp, &refused)
	require.False(t, refused.Success)
	require.Equal(t, "this action has already been rolled back", refused.Message)

	// Step 6: cleanup is admin only
	resp = doJSON(t, app, http.MethodPost, "/api/v1/activity-logs/cleanup", "manager", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/activity-logs/cleanup", "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cleaned struct {
		Success bool                `json:"success"`
		Data    dto.CleanupResponse `json:"data"`
	}
	decode(t, resp, &cleaned)
	require.True(t, cleaned.Success)
	require.Zero(t, cleaned.Data.Deleted)
}

func TestAccessEndpointsEndToEnd(t *testing.T) {
	app := setupActivityApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/access/modules", "staff", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var modules struct {
		Success bool                          `json:"success"`
		Data    dto.AccessibleModulesResponse `json:"data"`
	}
	decode(t, resp, &modules)
	require.True(t, modules.Success)
	require.Equal(t, "staff", modules.Data.Role)
	require.Contains(t, modules.Data.Modules, "reservations")
	require.NotContains(t, modules.Data.Modules, "finance")

	resp = doJSON(t, app, http.MethodGet, "/api/v1/access/modules/ai_agent", "manager", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var perms struct {
		Success bool                          `json:"success"`
		Data    dto.ModulePermissionsResponse `json:"data"`
	}
	decode(t, resp, &perms)
	require.True(t, perms.Success)
	require.Equal(t, []string{"view", "approve"}, perms.Data.Actions)
}
