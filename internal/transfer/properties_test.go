package transfer

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
)

// transitionRecorder checks every update against the state machine.
type transitionRecorder struct {
	mu         sync.Mutex
	last       map[string]*model.TransferTask
	violations []string
}

func (r *transitionRecorder) record(task *model.TransferTask) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.last[task.ID]
	r.last[task.ID] = task
	if !ok {
		return
	}
	if prev.Status != task.Status && !prev.Status.CanTransitionTo(task.Status) {
		r.violations = append(r.violations, prev.Status.String()+" -> "+task.Status.String())
	}
	if prev.Status == model.TaskStatusInProgress && task.Status == model.TaskStatusInProgress &&
		task.TransferredBytes < prev.TransferredBytes {
		r.violations = append(r.violations, "progress went backwards for "+task.ID)
	}
}

func TestRandomCommands_KeepInvariants(t *testing.T) {
	const limit = 3
	rec := &transitionRecorder{last: make(map[string]*model.TransferTask)}
	env := newTestEnv(t, func(o *config.Options) {
		o.MaxConcurrentTransfers = limit
		o.MaxRetries = 2
	}, WithUpdateCallback(rec.record))

	rng := rand.New(rand.NewSource(7))
	ids := env.addUploads(t, 8, 1000)
	sent := map[string]int64{}

	pick := func() string { return ids[rng.Intn(len(ids))] }
	events := func(id string) (Events, bool) {
		env.exec.mu.Lock()
		defer env.exec.mu.Unlock()
		ev, ok := env.exec.events[id]
		return ev, ok
	}

	for step := 0; step < 2000; step++ {
		id := pick()
		switch rng.Intn(12) {
		case 0:
			env.svc.Start(id)
		case 1:
			env.svc.StartAll()
		case 2:
			env.svc.Pause(id)
		case 3:
			env.svc.Resume(id)
		case 4:
			env.svc.Cancel(id)
		case 5:
			env.svc.Retry(id)
		case 6:
			if ev, ok := events(id); ok {
				sent[id] += int64(rng.Intn(100))
				ev.Progress(id, min(sent[id], 1000), 1000)
			}
		case 7:
			if ev, ok := events(id); ok {
				ev.Complete(id, model.TransferResult{})
			}
		case 8:
			if ev, ok := events(id); ok {
				ev.Fail(id, errors.New("flaky"), rng.Intn(2) == 0)
			}
		case 9:
			env.svc.UpdateTaskProgress(id, float64(rng.Intn(100)), int64(rng.Intn(1000)))
		case 10:
			if rng.Intn(10) == 0 {
				ids = append(ids, env.addUploads(t, 1, 1000)...)
			}
		case 11:
			if rng.Intn(20) == 0 {
				env.svc.PauseAll()
			}
		}

		env.svc.Sync()
		q := env.svc.Queue()
		require.LessOrEqual(t, q.Active, limit, "step %d", step)
		require.Len(t, env.svc.GetActiveTasks(), q.Active, "step %d", step)

		for _, task := range env.svc.GetAllTasks() {
			require.LessOrEqual(t, task.RetryCount, task.MaxRetries, "step %d", step)
			require.GreaterOrEqual(t, task.Progress, 0.0)
			require.LessOrEqual(t, task.Progress, 100.0)
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Empty(t, rec.violations)
}

func TestClearAll_AfterRandomActivity(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addUploads(t, 6, 100)
	env.svc.StartAll()
	env.svc.Pause(ids[0])
	env.svc.Sync()
	env.exec.eventsFor(t, ids[1]).Complete(ids[1], model.TransferResult{})
	env.exec.eventsFor(t, ids[2]).Fail(ids[2], errors.New("x"), false)
	env.svc.Sync()

	var unfinished []string
	for _, task := range env.svc.GetAllTasks() {
		if !task.Status.IsTerminal() {
			unfinished = append(unfinished, task.ID)
		}
	}

	env.svc.ClearAll()
	env.svc.Sync()

	assert.ElementsMatch(t, unfinished, env.exec.cancelledIDs())
	assert.Empty(t, env.svc.GetAllTasks())
	assert.Zero(t, env.svc.Queue().Active)
	assert.Zero(t, env.svc.Queue().Pending)
}
