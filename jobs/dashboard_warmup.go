package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/shelf-inventory/shelf/internal/jobs"
	"github.com/shelf-inventory/shelf/internal/provider"
	"github.com/shelf-inventory/shelf/internal/query"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// UserLister discovers the accounts to warm when a task names none.
type UserLister interface {
	ActiveUserIDs(ctx context.Context) ([]string, error)
}

// WarmupJob refetches dashboard queries through the provider cache so the
// first page view of the day is served from Redis.
type WarmupJob struct {
	Provider provider.Provider
	Users    UserLister
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	// Timeout bounds the fetches of one account.
	Timeout time.Duration
	clock   func() time.Time
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(p provider.Provider, users UserLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{
		Provider: p,
		Users:    users,
		Logger:   logger,
		Metrics:  metrics,
		Timeout:  20 * time.Second,
		clock:    time.Now,
	}
}

// Handle processes dashboard warmup tasks. A rejected account is skipped; any
// other failure is returned after the remaining accounts were tried so asynq
// retries the task.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Provider == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	users := payload.UserIDs
	if len(users) == 0 {
		if j.Users == nil {
			logger.Info("no account source configured, skipping warmup")
			return nil
		}
		listed, err := j.Users.ActiveUserIDs(ctx)
		if err != nil {
			logger.Error("load warmup accounts", slog.Any("error", err))
			return err
		}
		users = listed
	}
	keys := warmupKeys(payload.Keys)

	start := j.now()
	warmed := make(map[query.Key]int, len(keys))
	for _, userID := range users {
		if err := j.warmUser(ctx, userID, keys, warmed); err != nil {
			if errors.Is(err, provider.ErrUnauthorized) {
				logger.Warn("warmup rejected", slog.String("user_id", userID))
				continue
			}
			logger.Error("warm account", slog.String("user_id", userID), slog.Any("error", err))
			if resultErr == nil {
				resultErr = err
			}
		}
	}
	for key, n := range warmed {
		j.metrics().AddWarmed(string(key), n)
	}

	logger.Info("completed dashboard warmup",
		slog.Int("accounts", len(users)),
		slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

func (j *WarmupJob) warmUser(ctx context.Context, userID string, keys []query.Key, warmed map[query.Key]int) error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	userCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, key := range keys {
		req := provider.Request{Key: key, UserID: userID, Fresh: true}
		if _, err := j.Provider.Fetch(userCtx, req); err != nil {
			return err
		}
		warmed[key]++
	}
	return nil
}

func warmupKeys(names []string) []query.Key {
	if len(names) == 0 {
		return provider.DashboardKeys
	}
	keys := make([]query.Key, 0, len(names))
	for _, name := range names {
		keys = append(keys, query.Key(name))
	}
	return keys
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *WarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
