package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/s3-upload-tool/internal/model"
)

func TestUpdateStatistics(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 3, 1000)
	done := env.startOne(t, ids[0])
	failed := env.startOne(t, ids[1])

	env.clock.Advance(10 * time.Second)
	done.Complete(ids[0], model.TransferResult{})
	failed.Progress(ids[1], 500, 1000)
	failed.Fail(ids[1], errors.New("reset"), true)
	env.svc.Sync()

	st := env.svc.UpdateStatistics()

	assert.Equal(t, 3, st.TotalFiles)
	assert.Equal(t, 1, st.CompletedFiles)
	assert.Equal(t, 1, st.FailedFiles)
	assert.EqualValues(t, 3000, st.TotalBytes)
	assert.EqualValues(t, 1500, st.TransferredBytes)
	assert.Equal(t, 10*time.Second, st.Elapsed)
	assert.InDelta(t, 150.0, st.AverageSpeed, 1e-9)
	assert.Equal(t, st, env.svc.Statistics())
}

func TestUpdateStatistics_NothingStarted(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addUploads(t, 2, 100)
	env.svc.Sync()
	env.clock.Advance(time.Minute)

	st := env.svc.UpdateStatistics()

	assert.Equal(t, 2, st.TotalFiles)
	assert.Zero(t, st.Elapsed)
	assert.Zero(t, st.AverageSpeed)
}

func TestResetStatistics(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 2, 1000)
	env.startOne(t, ids[0]).Complete(ids[0], model.TransferResult{})
	env.svc.Sync()
	env.clock.Advance(10 * time.Second)
	env.svc.UpdateStatistics()

	env.svc.ResetStatistics()

	assert.Equal(t, model.TransferStatistics{}, env.svc.Statistics())
	assert.Equal(t, model.TaskStatusCompleted, env.status(t, ids[0]))

	// Nothing moved since the reset.
	env.clock.Advance(5 * time.Second)
	st := env.svc.UpdateStatistics()
	assert.Equal(t, 5*time.Second, st.Elapsed)
	assert.EqualValues(t, 1000, st.TransferredBytes)
	assert.Zero(t, st.AverageSpeed)

	ev := env.startOne(t, ids[1])
	env.clock.Advance(5 * time.Second)
	ev.Progress(ids[1], 500, 1000)
	env.svc.Sync()

	st = env.svc.UpdateStatistics()
	assert.Equal(t, 10*time.Second, st.Elapsed)
	assert.InDelta(t, 50.0, st.AverageSpeed, 1e-9)
}

func TestResetStatistics_RemovedTasksDoNotGoNegative(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 2, 1000)
	env.startOne(t, ids[0]).Complete(ids[0], model.TransferResult{})
	env.startOne(t, ids[1])
	env.svc.Sync()

	env.svc.ResetStatistics()
	env.svc.RemoveTask(ids[0])
	env.svc.Sync()
	env.clock.Advance(time.Second)

	st := env.svc.UpdateStatistics()
	assert.Zero(t, st.AverageSpeed)
}
