package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func TestHealthReportsQueueDepth(t *testing.T) {
	h := NewHandler(fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Retry: 1}}, nil)

	rr := httptest.NewRecorder()
	h.HealthForTest(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body QueueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, QueueHealth{Queue: QueueDefault, Pending: 4, Retry: 1}, body)
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(nil, nil).HealthForTest(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"queue":"default"`)
}

func TestHealthInspectorFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(fakeInspector{err: errors.New("redis down")}, nil).
		HealthForTest(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

type capturingEnqueuer struct {
	tasks []*asynq.Task
}

func (c *capturingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueDefault}, nil
}

func (c *capturingEnqueuer) Close() error { return nil }

func TestClientEnqueuesTasks(t *testing.T) {
	enq := &capturingEnqueuer{}
	client := NewClientWith(enq)

	_, err := client.EnqueueWarmup(context.Background(), "u-1")
	require.NoError(t, err)
	_, err = client.EnqueueInvalidate(context.Background(), "manual")
	require.NoError(t, err)

	require.Len(t, enq.tasks, 2)
	assert.Equal(t, TaskDashboardWarmup, enq.tasks[0].Type())
	var warm WarmupPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &warm))
	assert.Equal(t, []string{"u-1"}, warm.UserIDs)
	assert.Equal(t, TaskCacheInvalidate, enq.tasks[1].Type())
}
