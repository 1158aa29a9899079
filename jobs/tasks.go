package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates the provider cache for dashboard queries.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskCacheInvalidate bumps the provider cache version.
	TaskCacheInvalidate = "dashboard:cache_invalidate"
)

// WarmupPayload selects the accounts and queries to warm. Empty lists mean
// every active account and every dashboard query.
type WarmupPayload struct {
	UserIDs []string `json:"userIds,omitempty"`
	Keys    []string `json:"keys,omitempty"`
}

// NewWarmupTask constructs a dashboard warmup task.
func NewWarmupTask(userIDs ...string) (*asynq.Task, error) {
	data, err := json.Marshal(WarmupPayload{UserIDs: userIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// InvalidatePayload records why the cache was invalidated.
type InvalidatePayload struct {
	Reason string `json:"reason"`
}

// NewInvalidateTask constructs a cache invalidation task.
func NewInvalidateTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(InvalidatePayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheInvalidate, data), nil
}
