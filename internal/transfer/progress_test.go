package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/s3-upload-tool/internal/model"
)

func TestUpdateTaskProgress_DiscardsRegression(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 1, 1000)
	env.startOne(t, ids[0])

	env.svc.UpdateTaskProgress(ids[0], 50, 500)
	env.svc.UpdateTaskProgress(ids[0], 40, 400)

	task := env.task(t, ids[0])
	assert.InDelta(t, 50.0, task.Progress, 1e-9)
	assert.EqualValues(t, 500, task.TransferredBytes)
}

func TestUpdateTaskProgress_IgnoredUnlessRunning(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 1, 1000)

	env.svc.UpdateTaskProgress(ids[0], 50, 500)

	assert.Zero(t, env.task(t, ids[0]).TransferredBytes)
}

func TestUpdateTaskProgress_ClampsPercent(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 1, 1000)
	env.startOne(t, ids[0])

	env.svc.UpdateTaskProgress(ids[0], 180, 1000)

	assert.InDelta(t, 100.0, env.task(t, ids[0]).Progress, 1e-9)
}

func TestProgress_SpeedAndETA(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 1, 1000)
	ev := env.startOne(t, ids[0])

	env.clock.Advance(time.Second)
	ev.Progress(ids[0], 100, 1000)

	task := env.task(t, ids[0])
	assert.InDelta(t, 100.0, task.Speed, 1e-9)
	assert.Equal(t, 9, task.ETASec)
	assert.InDelta(t, 10.0, task.Progress, 1e-9)

	env.clock.Advance(time.Second)
	ev.Progress(ids[0], 300, 1000)

	task = env.task(t, ids[0])
	assert.InDelta(t, 150.0, task.Speed, 1e-9)
	assert.Equal(t, 5, task.ETASec)
	assert.InDelta(t, 150.0, env.svc.Queue().OverallSpeed, 1e-9)
}

func TestProgress_SpeedWindowForgetsOldSamples(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 1, 100000)
	ev := env.startOne(t, ids[0])

	// A slow start followed by steady 1000 B/s.
	env.clock.Advance(10 * time.Second)
	ev.Progress(ids[0], 10, 0)
	var sent int64 = 10
	for range speedWindow {
		env.clock.Advance(time.Second)
		sent += 1000
		ev.Progress(ids[0], sent, 0)
	}

	assert.InDelta(t, 1000.0, env.task(t, ids[0]).Speed, 1e-9)
}

func TestProgress_AdoptsLearnedTotal(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 1, 0)
	ev := env.startOne(t, ids[0])
	assert.Equal(t, -1, env.task(t, ids[0]).ETASec)

	ev.Progress(ids[0], 50, 200)

	task := env.task(t, ids[0])
	assert.EqualValues(t, 200, task.TotalBytes)
	assert.InDelta(t, 25.0, task.Progress, 1e-9)
}

func TestComplete_FillsProgress(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 2, 0)
	ev := env.startOne(t, ids[0])
	ev.Progress(ids[0], 70, 0)
	ev.Complete(ids[0], model.TransferResult{ETag: "abc", Location: "s3://bucket/file.bin"})

	task := env.task(t, ids[0])
	assert.Equal(t, model.TaskStatusCompleted, task.Status)
	assert.InDelta(t, 100.0, task.Progress, 1e-9)
	assert.EqualValues(t, 70, task.TotalBytes)
	assert.Equal(t, -1, task.ETASec)
	assert.Equal(t, "abc", task.Result.ETag)
}

func TestCalculateOverallProgress(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Zero(t, env.svc.CalculateOverallProgress())

	ids := env.addUploads(t, 2, 1000)
	env.startOne(t, ids[0])
	env.startOne(t, ids[1])

	env.svc.UpdateTaskProgress(ids[0], 50, 500)
	env.svc.UpdateTaskProgress(ids[1], 25, 250)
	env.svc.Sync()

	assert.InDelta(t, 37.5, env.svc.CalculateOverallProgress(), 1e-9)
	assert.InDelta(t, 37.5, env.svc.Queue().OverallProgress, 1e-9)
}

func TestCalculateOverallProgress_UnknownTotals(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addUploads(t, 2, 0)
	env.svc.Sync()

	assert.Zero(t, env.svc.CalculateOverallProgress())
}

func TestEstimateETA(t *testing.T) {
	assert.Equal(t, -1, estimateETA(100, 0))
	assert.Equal(t, 0, estimateETA(0, 10))
	assert.Equal(t, 4, estimateETA(31, 10))
	assert.Equal(t, 3, estimateETA(30, 10))
}
