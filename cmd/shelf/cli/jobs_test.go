package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/shelf-inventory/shelf/jobs"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) { return s.info, s.err }
func (s stubInspector) Close() error                                        { return nil }

func TestRunTriggerWarmup(t *testing.T) {
	enq := &stubEnqueuer{}
	cli := NewJobsCLIWith(jobs.NewClientWith(enq), stubInspector{})

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := cli.Run(context.Background(), []string{"trigger", jobs.TaskDashboardWarmup, "u-1", "u-2"}, stdout, stderr)

	require.Zero(t, code)
	require.Empty(t, stderr.String())
	require.Contains(t, stdout.String(), "enqueued dashboard:warmup as t-1")
	require.Len(t, enq.tasks, 1)
	var payload jobs.WarmupPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.Equal(t, []string{"u-1", "u-2"}, payload.UserIDs)
}

func TestRunTriggerUnknownJob(t *testing.T) {
	cli := NewJobsCLIWith(jobs.NewClientWith(&stubEnqueuer{}), stubInspector{})

	stderr := new(bytes.Buffer)
	code := cli.Run(context.Background(), []string{"trigger", "mail:send"}, new(bytes.Buffer), stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unsupported job mail:send")
}

func TestRunStatsJSON(t *testing.T) {
	inspector := stubInspector{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Active: 1}}
	cli := NewJobsCLIWith(jobs.NewClientWith(&stubEnqueuer{}), inspector)

	stdout := new(bytes.Buffer)
	code := cli.Run(context.Background(), []string{"stats", "-json"}, stdout, new(bytes.Buffer))

	require.Zero(t, code)
	var stats QueueStats
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &stats))
	require.Equal(t, QueueStats{Queue: jobs.QueueDefault, Pending: 2, Active: 1}, stats)
}

func TestRunStatsInspectorError(t *testing.T) {
	cli := NewJobsCLIWith(nil, stubInspector{err: errors.New("redis down")})

	stderr := new(bytes.Buffer)
	code := cli.Run(context.Background(), []string{"stats"}, new(bytes.Buffer), stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "redis down")
}

func TestRunUsage(t *testing.T) {
	cli := NewJobsCLIWith(nil, nil)
	stderr := new(bytes.Buffer)
	require.Equal(t, 2, cli.Run(context.Background(), nil, new(bytes.Buffer), stderr))
	require.Contains(t, stderr.String(), "usage")
}
