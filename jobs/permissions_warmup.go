package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/meridian-bms/meridian/internal/authz"
	"github.com/meridian-bms/meridian/internal/users"
)

// ActiveUserLister abstracts the read-only user lookup the warmup needs.
type ActiveUserLister interface {
	ListActive(ctx context.Context, limit int) ([]users.User, error)
}

// PermissionsWarmupJob precomputes effective permission sets for active
// users so gated requests after a deploy or invalidation hit warm cache.
type PermissionsWarmupJob struct {
	Checker *authz.Checker
	Users   ActiveUserLister
	Logger  *slog.Logger
}

// NewPermissionsWarmupJob wires dependencies for the warmup handler.
func NewPermissionsWarmupJob(checker *authz.Checker, repo ActiveUserLister, logger *slog.Logger) *PermissionsWarmupJob {
	return &PermissionsWarmupJob{Checker: checker, Users: repo, Logger: logger}
}

// Handle processes TaskPermissionsWarmup tasks.
func (j *PermissionsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Checker == nil || j.Users == nil {
		return errors.New("permissions warmup: handler not configured")
	}
	var payload PermissionsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("run_id", uuid.NewString()))
	logger.Info("starting permissions warmup", slog.Int("limit", payload.Limit))

	active, err := j.Users.ListActive(ctx, payload.Limit)
	if err != nil {
		logger.Error("list active users", slog.Any("error", err))
		return err
	}

	warmed := 0
	for _, u := range active {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.Checker.EffectivePermissions(ctx, u.ID, u.Role); err != nil {
			// A single failing user should not abort the sweep.
			logger.Warn("warm effective set", slog.Int64("user_id", u.ID), slog.Any("error", err))
			continue
		}
		warmed++
	}

	logger.Info("permissions warmup complete", slog.Int("users", len(active)), slog.Int("warmed", warmed))
	return nil
}

func (j *PermissionsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
