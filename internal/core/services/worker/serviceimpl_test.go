package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-2025.net/faktory-client/internal/adapter/logging"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

func TestWorkerRegistrationService(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewWorkerRegistrationService(repo, logging.NewNopLogger())

	opts := domain.ConnectionOptions{Hostname: "host-a", Pid: 42, WorkerID: "wid-1", Labels: []string{"golang"}}
	info := domain.NewWorkerInfo(opts, []string{"default"})
	info.LastHeartbeat = time.Time{}
	require.NoError(t, svc.RegisterWorker(ctx, info))

	got, err := svc.GetWorker(ctx, "wid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "host-a", got.Hostname)
	assert.Equal(t, "connected", got.State)
	assert.False(t, got.LastHeartbeat.IsZero())

	require.NoError(t, svc.Heartbeat(ctx, "wid-1", domain.StateQuiet))
	got, err = svc.GetWorker(ctx, "wid-1")
	require.NoError(t, err)
	assert.Equal(t, "quiet", got.State)

	assert.Error(t, svc.Heartbeat(ctx, "unknown", domain.StateConnected))

	all, err := svc.GetAllWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeregisterWorker(ctx, "wid-1"))
	got, err = svc.GetWorker(ctx, "wid-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
