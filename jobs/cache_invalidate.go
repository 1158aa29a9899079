package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/shelf-inventory/shelf/internal/jobs"
)

// Bumper invalidates every cached provider payload.
type Bumper interface {
	Bump(ctx context.Context) error
}

// InvalidateJob bumps the provider cache version, typically after a bulk
// import in the inventory service.
type InvalidateJob struct {
	Cache   Bumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewInvalidateJob wires dependencies for the invalidation handler.
func NewInvalidateJob(cache Bumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *InvalidateJob {
	return &InvalidateJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes cache invalidation tasks.
func (j *InvalidateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("cache invalidate: handler not configured")
	}
	var payload InvalidatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskCacheInvalidate)
	err := j.Cache.Bump(ctx)
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Error("bump provider cache", slog.String("job", TaskCacheInvalidate), slog.Any("error", err))
	} else {
		logger.Info("provider cache invalidated", slog.String("job", TaskCacheInvalidate), slog.String("reason", payload.Reason))
	}
	return tracker.End(err)
}
