package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/citycare/issue-service/internal/auth"
	"github.com/citycare/issue-service/internal/events"
	"github.com/citycare/issue-service/internal/service"
)

type recordingSubscriber struct {
	order *[]string
	name  string
}

func (r recordingSubscriber) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventIssueReported, func(context.Context, events.Event) error {
		*r.order = append(*r.order, r.name)
		return nil
	})
}

func TestStartNotificationWorkerKeepsOrder(t *testing.T) {
	var order []string
	dispatcher := events.NewInMemoryDispatcher()

	StartNotificationWorker(dispatcher,
		recordingSubscriber{order: &order, name: "first"},
		nil,
		recordingSubscriber{order: &order, name: "second"},
	)

	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventIssueReported, "u-1", "i-1", nil)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStartNotificationWorkerWiresAudit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	StartNotificationWorker(dispatcher, service.NewAuditLogger(zap.New(core)))

	event := events.New(events.EventIssueStatusChanged, "admin-1", "i-1", events.IssueStatusChangedPayload{
		OldStatus: "PENDING",
		NewStatus: "RESOLVED",
	})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "RESOLVED", entries[0].ContextMap()["new_status"])
}

func TestRevocationSweeperRejectsBadSpec(t *testing.T) {
	_, err := NewRevocationSweeper("every now and then", auth.NewMemoryRevocationStore(), zap.NewNop())
	assert.Error(t, err)
}

func TestRevocationSweeperPurgesExpired(t *testing.T) {
	store := auth.NewMemoryRevocationStore()
	ctx := context.Background()
	require.NoError(t, store.Revoke(ctx, "short", time.Now().Add(20*time.Millisecond)))
	require.NoError(t, store.Revoke(ctx, "live", time.Now().Add(time.Hour)))
	require.Equal(t, 2, store.Len())
	time.Sleep(50 * time.Millisecond)

	sweeper, err := NewRevocationSweeper("@every 1h", store, zap.NewNop())
	require.NoError(t, err)

	sweeper.Start()
	sweeper.sweep()
	sweeper.Stop()

	assert.Equal(t, 1, store.Len())
	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestStartMailWorkerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var started atomic.Bool

	done := StartMailWorker(ctx, runnerFunc(func(ctx context.Context) error {
		started.Store(true)
		<-ctx.Done()
		return ctx.Err()
	}), zap.NewNop())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mail worker did not stop")
	}
	assert.True(t, started.Load())
}

func TestStartMailWorkerLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	done := StartMailWorker(context.Background(), runnerFunc(func(context.Context) error {
		return errors.New("broker gone")
	}), zap.New(core))
	<-done

	assert.Equal(t, 1, logs.FilterMessage("mail worker stopped").Len())
}
