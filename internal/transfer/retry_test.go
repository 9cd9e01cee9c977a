package transfer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
)

func (e *testEnv) addWithRetries(t *testing.T, maxRetries int) string {
	t.Helper()
	id, err := e.svc.AddTask(model.TransferSpec{
		Direction:   model.DirectionDownload,
		Source:      "s3://bucket/key",
		Destination: "/tmp/key",
		TotalBytes:  1000,
		MaxRetries:  maxRetries,
	})
	require.NoError(t, err)
	return id
}

func TestFail_RecordsErrorKind(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 2, 10)

	env.startOne(t, ids[0]).Fail(ids[0], errors.New("timeout"), true)
	env.startOne(t, ids[1]).Fail(ids[1], errors.New("access denied"), false)

	first := env.task(t, ids[0])
	assert.Equal(t, model.TaskStatusFailed, first.Status)
	assert.Equal(t, model.ErrorKindTransfer, first.Error.Kind)
	assert.Equal(t, "timeout", first.Error.Message)
	assert.False(t, first.FinishedAt.IsZero())

	second := env.task(t, ids[1])
	assert.Equal(t, model.ErrorKindPermanent, second.Error.Kind)
	assert.Zero(t, env.svc.Queue().Active)
}

func TestFail_IgnoresPauseAndCancelEchoes(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 1, 10)
	ev := env.startOne(t, ids[0])

	ev.Fail(ids[0], fmt.Errorf("upload: %w", model.ErrPaused), true)
	ev.Fail(ids[0], model.ErrCancelled, true)

	assert.Equal(t, model.TaskStatusInProgress, env.status(t, ids[0]))
}

func TestRetry_StopsAtMaxRetries(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addWithRetries(t, 3)
	env.startOne(t, id)

	for i := 1; i <= 3; i++ {
		env.exec.eventsFor(t, id).Fail(id, errors.New("reset"), true)
		env.svc.Retry(id)
		task := env.task(t, id)
		require.Equal(t, model.TaskStatusInProgress, task.Status)
		assert.Equal(t, i, task.RetryCount)
		assert.Nil(t, task.Error)
	}

	env.exec.eventsFor(t, id).Fail(id, errors.New("reset"), true)
	env.svc.Retry(id)

	task := env.task(t, id)
	assert.Equal(t, model.TaskStatusFailed, task.Status)
	assert.Equal(t, 3, task.RetryCount)
	assert.Len(t, env.exec.startsFor(id), 4)
}

func TestRetry_IgnoresPermanentKind(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addWithRetries(t, 1)
	env.startOne(t, id).Fail(id, errors.New("no such bucket"), false)

	env.svc.Retry(id)

	assert.Equal(t, model.TaskStatusInProgress, env.status(t, id))
}

func TestRetry_OnlyFromFailed(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addWithRetries(t, 3)

	env.svc.Retry(id)
	env.svc.Retry("task-missing")

	assert.Equal(t, model.TaskStatusPending, env.status(t, id))
	assert.Empty(t, env.exec.startsFor(id))
}

func TestRetry_RejectedWithoutFreeSlot(t *testing.T) {
	env := newTestEnv(t, func(o *config.Options) { o.MaxConcurrentTransfers = 1 })
	id := env.addWithRetries(t, 3)
	other := env.addWithRetries(t, 3)
	env.startOne(t, id).Fail(id, errors.New("reset"), true)
	env.startOne(t, other)

	env.svc.Retry(id)

	task := env.task(t, id)
	assert.Equal(t, model.TaskStatusFailed, task.Status)
	assert.Zero(t, task.RetryCount)
}

func TestRetry_ContinuesFromPreservedParts(t *testing.T) {
	env := newTestEnv(t, nil)
	id, ev := startWithParts(t, env, 2)
	ev.Fail(id, errors.New("reset"), true)
	env.svc.Sync()

	env.svc.Retry(id)
	env.svc.Sync()

	starts := env.exec.startsFor(id)
	require.Len(t, starts, 2)
	assert.Equal(t, 3, starts[1].StartPart)
	assert.Empty(t, starts[1].StaleSession)
	assert.EqualValues(t, 200, env.task(t, id).TransferredBytes)
}

func TestRetry_RestartsWhenNothingPreserved(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addWithRetries(t, 3)
	ev := env.startOne(t, id)
	ev.MultipartStarted(id, model.MultipartState{SessionID: "u9", ChunkSize: 100, TotalParts: 10})
	ev.Progress(id, 50, 1000)
	ev.Fail(id, errors.New("reset"), true)
	env.svc.Sync()

	env.svc.Retry(id)
	env.svc.Sync()

	req := env.exec.startsFor(id)[1]
	assert.Nil(t, req.Multipart)
	assert.Equal(t, 1, req.StartPart)
	assert.Equal(t, "u9", req.StaleSession)

	task := env.task(t, id)
	assert.Zero(t, task.TransferredBytes)
	assert.Nil(t, task.Multipart)
}

func TestRetryAllFailed(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 3, 10)
	env.startOne(t, ids[0]).Fail(ids[0], errors.New("a"), true)
	env.startOne(t, ids[1]).Fail(ids[1], errors.New("b"), true)
	env.svc.Sync()

	env.svc.RetryAllFailed()
	env.svc.Sync()

	assert.Len(t, env.svc.GetActiveTasks(), 2)
	assert.Equal(t, model.TaskStatusPending, env.status(t, ids[2]))
}

func TestAutoRetry_BacksOff(t *testing.T) {
	env := newTestEnv(t, func(o *config.Options) {
		o.RetryOnFailure = true
		o.RetryDelay = time.Second
	})
	id := env.addWithRetries(t, 3)
	env.startOne(t, id).Fail(id, errors.New("reset"), true)
	env.svc.Sync()

	env.clock.Advance(999 * time.Millisecond)
	assert.Equal(t, model.TaskStatusFailed, env.status(t, id))

	env.clock.Advance(time.Millisecond)
	task := env.task(t, id)
	assert.Equal(t, model.TaskStatusInProgress, task.Status)
	assert.Equal(t, 1, task.RetryCount)

	env.exec.eventsFor(t, id).Fail(id, errors.New("reset"), true)
	env.svc.Sync()

	env.clock.Advance(time.Second)
	assert.Equal(t, model.TaskStatusFailed, env.status(t, id))

	env.clock.Advance(time.Second)
	assert.Equal(t, model.TaskStatusInProgress, env.status(t, id))
}

func TestAutoRetry_WaitsForFreeSlot(t *testing.T) {
	env := newTestEnv(t, func(o *config.Options) {
		o.MaxConcurrentTransfers = 1
		o.RetryOnFailure = true
		o.RetryDelay = time.Second
	})
	id := env.addWithRetries(t, 3)
	other := env.addWithRetries(t, 3)
	env.startOne(t, id).Fail(id, errors.New("reset"), true)
	ev := env.startOne(t, other)

	env.clock.Advance(time.Second)
	assert.Equal(t, model.TaskStatusFailed, env.status(t, id))
	assert.Equal(t, 1, env.clock.Pending())

	ev.Complete(other, model.TransferResult{})
	env.svc.Sync()
	env.clock.Advance(time.Second)

	assert.Equal(t, model.TaskStatusInProgress, env.status(t, id))
}

func TestAutoRetry_CancelledByRemove(t *testing.T) {
	env := newTestEnv(t, func(o *config.Options) { o.RetryOnFailure = true })
	id := env.addWithRetries(t, 3)
	env.startOne(t, id).Fail(id, errors.New("reset"), true)
	env.svc.Sync()
	require.Equal(t, 1, env.clock.Pending())

	env.svc.RemoveTask(id)
	env.svc.Sync()

	assert.Zero(t, env.clock.Pending())
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		base    time.Duration
		retries int
		want    time.Duration
	}{
		{time.Second, 0, time.Second},
		{time.Second, 1, 2 * time.Second},
		{time.Second, 5, 32 * time.Second},
		{time.Second, 6, time.Minute},
		{time.Second, 50, time.Minute},
		{2 * time.Minute, 0, time.Minute},
		{0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d", tt.base, tt.retries), func(t *testing.T) {
			assert.Equal(t, tt.want, retryBackoff(tt.base, tt.retries))
		})
	}
}
