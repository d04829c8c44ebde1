package performance_test

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orbicityhub/cityhub-api/internal/handler"
	"github.com/orbicityhub/cityhub-api/internal/models"
	"github.com/orbicityhub/cityhub-api/internal/repository"
	"github.com/orbicityhub/cityhub-api/internal/service"
)

func setupActivityPerformanceApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))

	// Seed dataset
	now := time.Now().UTC()
	modules := []string{"finance", "marketing", "reservations", "logistics"}
	userID := uint(42)
	for i := 0; i < 1000; i++ {
		entry := models.ActivityLog{
			UserID:       &userID,
			ActionType:   "update",
			TargetEntity: "booking",
			TargetID:     fmt.Sprintf("%d", i),
			OldValue:     []byte(`{"guests":2}`),
			NewValue:     []byte(`{"guests":3}`),
			Module:       modules[i%len(modules)],
			Rollbackable: true,
			CreatedAt:    now.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&entry).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	activityRepo := repository.NewActivityLogRepository(db)
	activityService := service.NewActivityLogService(activityRepo, nil, 0, nil, validate, zerolog.Nop())
	activityHandler := handler.NewActivityLogHandler(activityService, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/activity-logs", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	activityHandler.Register(group)

	return app
}

func TestActivityLogListP95LatencyBelow250ms(t *testing.T) {
	app := setupActivityPerformanceApp(t)

	runs := 40
	durations := make([]time.Duration, 0, runs)

	for i := 0; i < runs; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/activity-logs?limit=50&module=reservations", nil)
		start := time.Now()
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	p95 := durations[index]

	require.LessOrEqual(t, p95, 250*time.Millisecond)
}
