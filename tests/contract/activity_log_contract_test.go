package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/orbicityhub/cityhub-api/internal/dto"
	"github.com/orbicityhub/cityhub-api/internal/handler"
)

type stubActivityService struct {
	list     dto.ActivityLogListResponse
	rollback dto.RollbackResponse
}

func (s stubActivityService) Create(context.Context, dto.ActivityLogCreateRequest) (dto.ActivityLogCreateResponse, error) {
	return dto.ActivityLogCreateResponse{ID: 1}, nil
}

func (s stubActivityService) List(context.Context, dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error) {
	return s.list, nil
}

func (s stubActivityService) ActionTypes(context.Context) ([]string, error) {
	return []string{"create", "update"}, nil
}

func (s stubActivityService) Modules(context.Context) ([]string, error) {
	return []string{"finance", "reservations"}, nil
}

func (s stubActivityService) Rollback(context.Context, uint, uint) (dto.RollbackResponse, error) {
	return s.rollback, nil
}

func (s stubActivityService) Cleanup(context.Context) (dto.CleanupResponse, error) {
	return dto.CleanupResponse{Deleted: 0}, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func newContractApp(svc stubActivityService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/activity-logs", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	handler.NewActivityLogHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestActivityLogListContract(t *testing.T) {
	schema := compileSchema(t, "activity_log_list.schema.json")

	now := time.Now().UTC()
	userID := uint(7)
	rolledBackBy := uint(9)
	rolledBackAt := now.Add(-time.Minute)
	svc := stubActivityService{
		list: dto.ActivityLogListResponse{
			Logs: []dto.ActivityLogResponse{
				{
					ID:           12,
					UserID:       &userID,
					ActionType:   "update",
					TargetEntity: "booking",
					TargetID:     "42",
					OldValue:     json.RawMessage(`{"price":100}`),
					NewValue:     json.RawMessage(`{"price":120}`),
					IPAddress:    "10.0.0.1",
					UserAgent:    "curl/8.0",
					Module:       "reservations",
					Rollbackable: true,
					CreatedAt:    now,
				},
				{
					ID:           11,
					ActionType:   "delete",
					Module:       "finance",
					Rollbackable: true,
					CreatedAt:    now.Add(-time.Hour),
					RolledBackAt: &rolledBackAt,
					RolledBackBy: &rolledBackBy,
				},
			},
			Total:      2,
			Page:       1,
			TotalPages: 1,
		},
	}

	app := newContractApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity-logs", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestRollbackContract(t *testing.T) {
	schema := compileSchema(t, "rollback.schema.json")

	svc := stubActivityService{
		rollback: dto.RollbackResponse{
			Success:      true,
			Message:      "action rolled back",
			OldValue:     json.RawMessage(`{"price":100}`),
			TargetEntity: "booking",
			TargetID:     "42",
		},
	}

	app := newContractApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/activity-logs/12/rollback", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
