package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/shelf-inventory/shelf/internal/jobs"
	"github.com/shelf-inventory/shelf/internal/provider"
)

type recordingProvider struct {
	mu       sync.Mutex
	requests []provider.Request
	failFor  map[string]error
}

func (p *recordingProvider) Fetch(ctx context.Context, req provider.Request) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if err := p.failFor[req.UserID]; err != nil {
		return nil, err
	}
	return []any{}, nil
}

type staticUsers struct {
	ids []string
	err error
}

func (u staticUsers) ActiveUserIDs(ctx context.Context) ([]string, error) {
	return u.ids, u.err
}

func newWarmup(p provider.Provider, users UserLister) *WarmupJob {
	return NewWarmupJob(p, users, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestWarmupFetchesEveryDashboardQueryFresh(t *testing.T) {
	p := &recordingProvider{}
	job := newWarmup(p, staticUsers{ids: []string{"u-1", "u-2"}})

	task, err := NewWarmupTask()
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, p.requests, 2*len(provider.DashboardKeys))
	for _, req := range p.requests {
		assert.True(t, req.Fresh)
		assert.Contains(t, []string{"u-1", "u-2"}, req.UserID)
	}
}

func TestWarmupNamedAccountsSkipLister(t *testing.T) {
	p := &recordingProvider{}
	job := newWarmup(p, staticUsers{err: errors.New("should not be called")})

	task, err := NewWarmupTask("u-9")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.NotEmpty(t, p.requests)
	assert.Equal(t, "u-9", p.requests[0].UserID)
}

func TestWarmupSkipsRejectedAccounts(t *testing.T) {
	p := &recordingProvider{failFor: map[string]error{"u-1": provider.ErrUnauthorized}}
	job := newWarmup(p, staticUsers{ids: []string{"u-1", "u-2"}})

	task, err := NewWarmupTask()
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	var warmed int
	for _, req := range p.requests {
		if req.UserID == "u-2" {
			warmed++
		}
	}
	assert.Equal(t, len(provider.DashboardKeys), warmed)
}

func TestWarmupReturnsUpstreamFailure(t *testing.T) {
	boom := errors.New("connection refused")
	p := &recordingProvider{failFor: map[string]error{"u-1": boom}}
	job := newWarmup(p, staticUsers{ids: []string{"u-1", "u-2"}})

	task, err := NewWarmupTask()
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), boom)
}

func TestWarmupRejectsMalformedPayload(t *testing.T) {
	job := newWarmup(&recordingProvider{}, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWarmupWithoutAccountSourceIsNoop(t *testing.T) {
	p := &recordingProvider{}
	job := newWarmup(p, nil)

	task, err := NewWarmupTask()
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Empty(t, p.requests)
}
