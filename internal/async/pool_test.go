package async

import (
	"context"
	"testing"
	"time"

	"chatwave/internal/auth"
	"chatwave/internal/domain/chatuser"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.DevelopmentMode)
}

func TestSubmitCarriesAmbientState(t *testing.T) {
	pool := NewPool("test", 1, 4, testLogger())
	defer pool.Close()

	principal := auth.Principal{UserID: uuid.New(), Username: "mina", Role: chatuser.RoleUser}
	ctx := logger.WithRequestID(context.Background(), "req-42")
	ctx = auth.WithPrincipal(ctx, principal)

	done := make(chan struct{})
	var gotRequestID string
	var gotPrincipal auth.Principal
	var hadPrincipal bool

	pool.Submit(ctx, func(taskCtx context.Context) {
		gotRequestID, _ = taskCtx.Value(logger.RequestIdKey).(string)
		gotPrincipal, hadPrincipal = auth.PrincipalFromContext(taskCtx)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	assert.Equal(t, "req-42", gotRequestID)
	require.True(t, hadPrincipal)
	assert.Equal(t, principal, gotPrincipal)
}

func TestSubmitTaskContextIndependentOfCaller(t *testing.T) {
	pool := NewPool("test", 1, 4, testLogger())
	defer pool.Close()

	callerCtx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	pool.Submit(callerCtx, func(taskCtx context.Context) {
		done <- taskCtx.Err()
	})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestSubmitRunsOnCallerWhenQueueFull(t *testing.T) {
	// No workers and no queue space: every submit degrades to caller-runs.
	pool := NewPool("test", 0, 0, testLogger())

	ran := false
	pool.Submit(context.Background(), func(taskCtx context.Context) {
		ran = true
	})
	assert.True(t, ran)
}

func TestSubmitRunsOnCallerAfterClose(t *testing.T) {
	pool := NewPool("test", 1, 4, testLogger())
	pool.Close()

	ran := false
	pool.Submit(context.Background(), func(taskCtx context.Context) {
		ran = true
	})
	assert.True(t, ran)
}

func TestSubmitRecoversPanic(t *testing.T) {
	pool := NewPool("test", 0, 0, testLogger())

	assert.NotPanics(t, func() {
		pool.Submit(context.Background(), func(taskCtx context.Context) {
			panic("boom")
		})
	})
}

func TestCloseWaitsForInFlightTasks(t *testing.T) {
	pool := NewPool("test", 2, 8, testLogger())

	started := make(chan struct{})
	finished := false
	pool.Submit(context.Background(), func(taskCtx context.Context) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished = true
	})

	<-started
	pool.Close()
	assert.True(t, finished)
}
