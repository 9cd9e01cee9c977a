package transfer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/observability/observabilitytest"
	"github.com/ytget/s3-upload-tool/internal/waiting/waitingtest"
)

var testStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeExecutor records calls and hands the events back to the test.
type fakeExecutor struct {
	mu        sync.Mutex
	starts    []StartRequest
	events    map[string]Events
	paused    []string
	cancelled []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{events: make(map[string]Events)}
}

func (f *fakeExecutor) StartTransfer(req StartRequest, events Events) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, req)
	f.events[req.Task.ID] = events
}

func (f *fakeExecutor) Pause(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = append(f.paused, id)
}

func (f *fakeExecutor) Cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
}

// eventsFor returns the events of the latest attempt of id.
func (f *fakeExecutor) eventsFor(t *testing.T, id string) Events {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	require.True(t, ok, "task %s was never started", id)
	return ev
}

func (f *fakeExecutor) startsFor(id string) []StartRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StartRequest
	for _, req := range f.starts {
		if req.Task.ID == id {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeExecutor) cancelledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

func (f *fakeExecutor) pausedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paused...)
}

// fakeProber answers identity checks with a fixed token or error.
type fakeProber struct {
	mu    sync.Mutex
	token string
	err   error
	calls int
}

func (p *fakeProber) set(token string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token, p.err = token, err
}

func (p *fakeProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProber) Identity(_ context.Context, _ *model.TransferTask) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.token, p.err
}

// fakeStore keeps saved tasks in memory.
type fakeStore struct {
	mu    sync.Mutex
	saved map[string]*model.TransferTask
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]*model.TransferTask)}
}

func (s *fakeStore) Save(task *model.TransferTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[task.ID] = task
	return nil
}

func (s *fakeStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, id)
	return nil
}

func (s *fakeStore) get(id string) (*model.TransferTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.saved[id]
	return t, ok
}

type testEnv struct {
	svc   *Service
	exec  *fakeExecutor
	clock *waitingtest.FakeClock
}

// newTestEnv builds a service with no start delay unless mutate sets one.
func newTestEnv(t *testing.T, mutate func(*config.Options), extra ...Option) *testEnv {
	t.Helper()

	o := config.Defaults()
	o.StartDelay = 0
	o.RetryDelay = time.Second
	if mutate != nil {
		mutate(&o)
	}

	exec := newFakeExecutor()
	clock := waitingtest.NewFakeClock(testStart)
	opts := append([]Option{
		WithOptions(o),
		WithClock(clock),
		WithLogger(observabilitytest.NewTestLogger(t)),
	}, extra...)

	svc := NewService(exec, opts...)
	t.Cleanup(svc.Close)
	return &testEnv{svc: svc, exec: exec, clock: clock}
}

func (e *testEnv) addUploads(t *testing.T, n int, total int64) []string {
	t.Helper()
	specs := make([]model.TransferSpec, n)
	for i := range specs {
		specs[i] = model.TransferSpec{
			Direction:   model.DirectionUpload,
			Source:      "/data/file.bin",
			Destination: "s3://bucket/file.bin",
			TotalBytes:  total,
		}
	}
	ids, err := e.svc.AddTasks(specs)
	require.NoError(t, err)
	return ids
}

func (e *testEnv) task(t *testing.T, id string) *model.TransferTask {
	t.Helper()
	e.svc.Sync()
	task, ok := e.svc.GetTask(id)
	require.True(t, ok, "task %s not found", id)
	return task
}

func (e *testEnv) status(t *testing.T, id string) model.TaskStatus {
	t.Helper()
	return e.task(t, id).Status
}

// startOne starts id and waits for it to be in progress.
func (e *testEnv) startOne(t *testing.T, id string) Events {
	t.Helper()
	e.svc.Start(id)
	require.Equal(t, model.TaskStatusInProgress, e.status(t, id))
	return e.exec.eventsFor(t, id)
}

// waitUntil polls cond, applying pending messages before each check.
func (e *testEnv) waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		e.svc.Sync()
		return cond()
	}, 2*time.Second, time.Millisecond)
}
