package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orbicityhub/cityhub-api/internal/dto"
	"github.com/orbicityhub/cityhub-api/internal/events"
	"github.com/orbicityhub/cityhub-api/internal/models"
	"github.com/orbicityhub/cityhub-api/internal/observability"
	"github.com/orbicityhub/cityhub-api/internal/repository"
)

const (
	// RollbackWindow is the period after an action during which it may be
	// undone. The boundary is exclusive: exactly 15:00 minutes is expired.
	RollbackWindow = 15 * time.Minute

	// RetentionPeriod is how long entries are kept before the sweep
	// bulk-retires them.
	RetentionPeriod = 90 * 24 * time.Hour

	defaultListLimit = 50
	maxListLimit     = 200

	actionTypesCacheKey = "activity:filters:action-types"
	modulesCacheKey     = "activity:filters:modules"
)

// ActivityLogService exposes the audit trail: recording, listing, the
// time-boxed rollback, and retention cleanup.
type ActivityLogService interface {
	Create(ctx context.Context, req dto.ActivityLogCreateRequest) (dto.ActivityLogCreateResponse, error)
	List(ctx context.Context, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error)
	ActionTypes(ctx context.Context) ([]string, error)
	Modules(ctx context.Context) ([]string, error)
	Rollback(ctx context.Context, logID, userID uint) (dto.RollbackResponse, error)
	Cleanup(ctx context.Context) (dto.CleanupResponse, error)
}

type activityLogService struct {
	repo      repository.ActivityLogRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	publisher *events.Publisher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewActivityLogService constructs the activity log service. cache and
// publisher may be nil; the service then skips caching and event emission.
func NewActivityLogService(repo repository.ActivityLogRepository, cache *redis.Client, cacheTTL time.Duration, publisher *events.Publisher, validate *validator.Validate, logger zerolog.Logger) ActivityLogService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &activityLogService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "activity_log_service").Logger(),
		tracer:    otel.Tracer("cityhub/activity"),
		now:       time.Now,
	}
}

func (s *activityLogService) Create(ctx context.Context, req dto.ActivityLogCreateRequest) (dto.ActivityLogCreateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityLogCreateResponse{}, err
	}

	rollbackable := true
	if req.Rollbackable != nil {
		rollbackable = *req.Rollbackable
	}

	// Targets are not validated against live records: logging must not fail
	// merely because the referenced entity was already deleted.
	entry := models.ActivityLog{
		UserID:       req.UserID,
		ActionType:   s.clean(req.ActionType),
		TargetEntity: s.clean(req.TargetEntity),
		TargetID:     s.clean(req.TargetID),
		OldValue:     datatypes.JSON(req.OldValue),
		NewValue:     datatypes.JSON(req.NewValue),
		IPAddress:    s.clean(req.IPAddress),
		UserAgent:    s.clean(req.UserAgent),
		Module:       strings.ToLower(s.clean(req.Module)),
		Rollbackable: rollbackable,
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log entry")
		return dto.ActivityLogCreateResponse{}, err
	}

	observability.ActivityEntries().WithLabelValues(moduleLabel(entry.Module)).Inc()
	s.publisher.Publish(events.ActivityEvent{
		Kind:       events.KindCreated,
		LogID:      entry.ID,
		UserID:     entry.UserID,
		ActionType: entry.ActionType,
		Module:     entry.Module,
		OccurredAt: entry.CreatedAt,
	})

	return dto.ActivityLogCreateResponse{ID: entry.ID}, nil
}

func (s *activityLogService) List(ctx context.Context, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	} else if limit > maxListLimit {
		limit = maxListLimit
	}

	filter := repository.ActivityLogFilter{
		Page:       page,
		Limit:      limit,
		UserID:     req.UserID,
		ActionType: strings.TrimSpace(req.ActionType),
		Module:     strings.ToLower(strings.TrimSpace(req.Module)),
	}

	startDate, err := parseDateBound(req.StartDate)
	if err != nil {
		return dto.ActivityLogListResponse{}, fmt.Errorf("invalid start date: %w", err)
	}
	filter.StartDate = startDate

	endDate, err := parseDateBound(req.EndDate)
	if err != nil {
		return dto.ActivityLogListResponse{}, fmt.Errorf("invalid end date: %w", err)
	}
	filter.EndDate = endDate

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		// Listings degrade to an empty page so the UI never hard-fails on a
		// storage outage.
		s.logger.Error().Err(err).Msg("failed to list activity logs")
		return dto.ActivityLogListResponse{Logs: []dto.ActivityLogResponse{}, Page: page}, nil
	}

	logs := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		logs = append(logs, dto.NewActivityLogResponse(entry))
	}

	return dto.ActivityLogListResponse{
		Logs:       logs,
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *activityLogService) ActionTypes(ctx context.Context) ([]string, error) {
	return s.distinctValues(ctx, actionTypesCacheKey, s.repo.DistinctActionTypes)
}

func (s *activityLogService) Modules(ctx context.Context) ([]string, error) {
	return s.distinctValues(ctx, modulesCacheKey, s.repo.DistinctModules)
}

func (s *activityLogService) Rollback(ctx context.Context, logID, userID uint) (dto.RollbackResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity.rollback",
		trace.WithAttributes(attribute.Int64("activity.log_id", int64(logID))))
	defer span.End()

	entry, err := s.repo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.rollbackRefused(span, "not_found", ErrLogNotFound)
		}
		observability.RollbackAttempts().WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Uint("log_id", logID).Msg("failed to load activity log entry")
		return dto.RollbackResponse{}, err
	}

	if !entry.Rollbackable {
		return s.rollbackRefused(span, "not_rollbackable", ErrNotRollbackable)
	}

	if entry.RolledBack() {
		return s.rollbackRefused(span, "already_rolled_back", ErrAlreadyRolledBack)
	}

	now := s.now()
	if now.Sub(entry.CreatedAt) >= RollbackWindow {
		return s.rollbackRefused(span, "expired", ErrRollbackWindowExpired)
	}

	ok, err := s.repo.MarkRolledBack(ctx, logID, userID, now)
	if err != nil {
		observability.RollbackAttempts().WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Uint("log_id", logID).Msg("failed to mark entry rolled back")
		return dto.RollbackResponse{}, err
	}
	if !ok {
		// Lost the race against a concurrent rollback.
		return s.rollbackRefused(span, "already_rolled_back", ErrAlreadyRolledBack)
	}

	observability.RollbackAttempts().WithLabelValues("success").Inc()
	span.SetAttributes(attribute.String("activity.rollback_outcome", "success"))
	s.logger.Info().
		Uint("log_id", logID).
		Uint("user_id", userID).
		Str("action_type", entry.ActionType).
		Msg("activity rolled back")

	s.publisher.Publish(events.ActivityEvent{
		Kind:       events.KindRolledBack,
		LogID:      entry.ID,
		UserID:     &userID,
		ActionType: entry.ActionType,
		Module:     entry.Module,
		OccurredAt: now,
	})

	// The caller re-applies OldValue; the log has no knowledge of how to
	// write back arbitrary entity types.
	return dto.RollbackResponse{
		Success:      true,
		Message:      "action rolled back",
		OldValue:     json.RawMessage(entry.OldValue),
		TargetEntity: entry.TargetEntity,
		TargetID:     entry.TargetID,
	}, nil
}

func (s *activityLogService) Cleanup(ctx context.Context) (dto.CleanupResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity.cleanup")
	defer span.End()

	cutoff := s.now().Add(-RetentionPeriod)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("retention cleanup failed")
		return dto.CleanupResponse{}, err
	}

	observability.RetentionDeleted().Add(float64(deleted))
	span.SetAttributes(attribute.Int64("activity.deleted", deleted))
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("retention cleanup removed entries")
	}

	return dto.CleanupResponse{Deleted: deleted}, nil
}

func (s *activityLogService) rollbackRefused(span trace.Span, outcome string, cause error) (dto.RollbackResponse, error) {
	observability.RollbackAttempts().WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("activity.rollback_outcome", outcome))
	return dto.RollbackResponse{}, cause
}

func (s *activityLogService) distinctValues(ctx context.Context, cacheKey string, load func(context.Context) ([]string, error)) ([]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var values []string
			if err := json.Unmarshal([]byte(cached), &values); err == nil {
				observability.FilterCacheLookups().WithLabelValues("hit").Inc()
				return values, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to read filter cache")
		}
	}

	values, err := load(ctx)
	if err != nil {
		// Filter dropdowns degrade to empty on storage outage.
		s.logger.Error().Err(err).Str("key", cacheKey).Msg("failed to load distinct filter values")
		return []string{}, nil
	}
	if values == nil {
		values = []string{}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(values); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to write filter cache")
			}
		}
	}

	observability.FilterCacheLookups().WithLabelValues("miss").Inc()
	return values, nil
}

func (s *activityLogService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func moduleLabel(module string) string {
	if module == "" {
		return "none"
	}
	return module
}

// parseDateBound accepts RFC 3339 timestamps or plain dates. Both bounds are
// compared inclusively against entry creation times.
func parseDateBound(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
