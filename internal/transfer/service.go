package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/observability"
	"github.com/ytget/s3-upload-tool/internal/waiting"
)

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("transfer: service closed")

// identityTimeout bounds one identity probe.
const identityTimeout = 30 * time.Second

// Service is the transfer queue manager.
type Service struct {
	logger   *observability.CoreLogger
	executor Executor
	prober   IdentityProber
	store    ResumeStore
	clock    waiting.Clock

	registry *registry
	mailbox  *mailbox
	stats    statsCollector

	// active counts slots in use, including slots reserved for an identity
	// check. Written only by the dispatcher.
	active atomic.Int32
	limit  atomic.Int32

	// Owned by the dispatcher goroutine.
	opts        config.Options
	onUpdate    func(*model.TransferTask)
	attempts    map[string]uint64
	attemptSeq  uint64
	probing     map[string]pendingProbe
	probeSeq    uint64
	speed       *speedTracker
	retryTimers map[string]func() bool
	draining    bool
	nextStartAt time.Time
	roundStarts int
	admitTimer  func() bool
	heldStarts  map[string]struct{} // direct starts waiting out StartDelay

	ctx       context.Context
	cancel    context.CancelFunc
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Manager = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *observability.CoreLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithProber enables identity checks before continuing multipart state.
func WithProber(prober IdentityProber) Option {
	return func(s *Service) { s.prober = prober }
}

// WithStore persists multipart state for restarts.
func WithStore(store ResumeStore) Option {
	return func(s *Service) { s.store = store }
}

// WithOptions sets the queue configuration.
func WithOptions(opts config.Options) Option {
	return func(s *Service) { s.opts = opts.Normalize() }
}

// WithClock replaces the wall clock, for tests.
func WithClock(clock waiting.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithUpdateCallback is SetUpdateCallback at construction time.
func WithUpdateCallback(fn func(*model.TransferTask)) Option {
	return func(s *Service) { s.onUpdate = fn }
}

// NewService creates the queue and starts its dispatcher. Close releases it.
func NewService(executor Executor, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		logger:      observability.NewNoOpLogger(),
		executor:    executor,
		clock:       waiting.SystemClock(),
		registry:    newRegistry(),
		mailbox:     newMailbox(),
		opts:        config.Defaults().Normalize(),
		attempts:    make(map[string]uint64),
		probing:     make(map[string]pendingProbe),
		speed:       newSpeedTracker(),
		retryTimers: make(map[string]func() bool),
		heldStarts:  make(map[string]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limit.Store(int32(s.opts.EffectiveLimit()))

	go s.run()
	return s
}

// SetUpdateCallback sets the function called with a copy of a task after
// each change. It runs on the dispatcher goroutine and must not call
// blocking Service methods such as AddTask or Sync.
func (s *Service) SetUpdateCallback(callback func(*model.TransferTask)) {
	s.post(setCallbackMsg{fn: callback})
}

// SetOptions replaces the configuration. Lowering the limit does not stop
// running transfers; new ones wait until the count drops.
func (s *Service) SetOptions(opts config.Options) {
	s.post(setOptionsMsg{opts: opts.Normalize()})
}

// AddTask validates spec and enqueues a pending task.
func (s *Service) AddTask(spec model.TransferSpec) (string, error) {
	ids, err := s.AddTasks([]model.TransferSpec{spec})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AddTasks enqueues a batch. Nothing is added if any spec is invalid.
func (s *Service) AddTasks(specs []model.TransferSpec) ([]string, error) {
	now := s.clock.Now()
	tasks := make([]*model.TransferTask, 0, len(specs))
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, &model.Error{Op: "add", Kind: model.ErrorKindValidation, Err: fmt.Errorf("spec %d: %w", i, err)}
		}
		tasks = append(tasks, newTask(spec, now))
	}

	if err := s.submit(tasks, false); err != nil {
		return nil, err
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids, nil
}

// RestoreTasks re-enqueues tasks loaded from a ResumeStore as pending,
// keeping their multipart state and byte counts.
func (s *Service) RestoreTasks(tasks []*model.TransferTask) error {
	restored := make([]*model.TransferTask, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || t.ID == "" {
			return &model.Error{Op: "restore", Kind: model.ErrorKindValidation, Err: model.ErrInvalidSpec}
		}
		restored = append(restored, restoredTask(t))
	}
	return s.submit(restored, true)
}

func (s *Service) submit(tasks []*model.TransferTask, restored bool) error {
	done := make(chan error, 1)
	if !s.post(addTasksMsg{tasks: tasks, restored: restored, done: done}) {
		return ErrClosed
	}
	return <-done
}

// Start admits the task if it is pending and a slot is free.
func (s *Service) Start(id string) { s.post(startMsg{id: id}) }

// StartAll admits pending tasks in creation order up to the limit and keeps
// admitting as slots free up, until CancelAll or ClearAll.
func (s *Service) StartAll() { s.post(startAllMsg{}) }

// Pause suspends an in-progress task.
func (s *Service) Pause(id string) { s.post(pauseMsg{id: id}) }

// PauseAll suspends every in-progress task and stops automatic admission.
func (s *Service) PauseAll() { s.post(pauseAllMsg{}) }

// Resume continues a paused task from its preserved parts.
func (s *Service) Resume(id string) { s.post(resumeMsg{id: id}) }

// Cancel aborts a pending, in-progress or paused task.
func (s *Service) Cancel(id string) { s.post(cancelMsg{id: id}) }

// CancelAll cancels every cancellable task and stops automatic admission.
func (s *Service) CancelAll() { s.post(cancelAllMsg{}) }

// Retry restarts a failed task if it has retries left and a slot is free.
func (s *Service) Retry(id string) { s.post(retryMsg{id: id}) }

// RetryAllFailed retries failed tasks in creation order.
func (s *Service) RetryAllFailed() { s.post(retryAllFailedMsg{}) }

// RemoveTask deletes a task, cancelling it first if it is still running.
func (s *Service) RemoveTask(id string) { s.post(removeMsg{ids: []string{id}}) }

// RemoveTasks deletes several tasks.
func (s *Service) RemoveTasks(ids []string) {
	s.post(removeMsg{ids: append([]string(nil), ids...)})
}

// ClearCompleted removes completed tasks.
func (s *Service) ClearCompleted() { s.post(clearByStatusMsg{status: model.TaskStatusCompleted}) }

// ClearFailed removes failed tasks.
func (s *Service) ClearFailed() { s.post(clearByStatusMsg{status: model.TaskStatusFailed}) }

// ClearAll cancels every unfinished task at the executor, then removes all.
func (s *Service) ClearAll() { s.post(clearAllMsg{}) }

// UpdateTaskProgress records progress reported outside the executor events.
func (s *Service) UpdateTaskProgress(id string, percent float64, transferredBytes int64) {
	s.post(updateProgressMsg{id: id, percent: percent, transferred: transferredBytes})
}

// GetTask returns a copy of the task.
func (s *Service) GetTask(id string) (*model.TransferTask, bool) {
	return s.registry.snapshot(id)
}

// GetTasksByStatus returns copies of tasks in the given status.
func (s *Service) GetTasksByStatus(status model.TaskStatus) []*model.TransferTask {
	return s.registry.list(func(t *model.TransferTask) bool { return t.Status == status })
}

// GetPendingTasks returns tasks waiting for admission.
func (s *Service) GetPendingTasks() []*model.TransferTask {
	return s.GetTasksByStatus(model.TaskStatusPending)
}

// GetActiveTasks returns tasks that are transferring.
func (s *Service) GetActiveTasks() []*model.TransferTask {
	return s.GetTasksByStatus(model.TaskStatusInProgress)
}

// GetCompletedTasks returns finished tasks.
func (s *Service) GetCompletedTasks() []*model.TransferTask {
	return s.GetTasksByStatus(model.TaskStatusCompleted)
}

// GetFailedTasks returns failed tasks.
func (s *Service) GetFailedTasks() []*model.TransferTask {
	return s.GetTasksByStatus(model.TaskStatusFailed)
}

// GetAllTasks returns all tasks in creation order.
func (s *Service) GetAllTasks() []*model.TransferTask {
	return s.registry.list(nil)
}

// Sync waits until every message posted before it has been applied.
func (s *Service) Sync() {
	done := make(chan struct{})
	if !s.post(syncMsg{done: done}) {
		return
	}
	<-done
}

// Close stops the dispatcher. Messages already posted are applied first;
// later commands are ignored. Running transfers are left to the executor.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		s.mailbox.close()
		close(s.stop)
		<-s.done
		s.cancel()
	})
}

func (s *Service) post(msg message) bool {
	return s.mailbox.post(msg)
}

func (s *Service) run() {
	defer close(s.done)
	for {
		select {
		case <-s.mailbox.notify:
			s.apply(s.mailbox.drain())
		case <-s.stop:
			s.apply(s.mailbox.drain())
			s.shutdown()
			return
		}
	}
}

func (s *Service) apply(msgs []message) {
	for _, msg := range msgs {
		s.handle(msg)
	}
}

func (s *Service) handle(msg message) {
	switch m := msg.(type) {
	case addTasksMsg:
		m.done <- s.addTasks(m.tasks, m.restored)
	case startMsg:
		s.start(m.id)
	case startAllMsg:
		s.startAll()
	case pauseMsg:
		s.pause(m.id)
	case pauseAllMsg:
		s.draining = false
		for _, id := range s.registry.ids(isStatus(model.TaskStatusInProgress)) {
			s.pause(id)
		}
	case resumeMsg:
		s.resume(m.id)
	case cancelMsg:
		s.cancelTask(m.id)
		s.admit()
	case cancelAllMsg:
		s.draining = false
		for _, id := range s.registry.ids(isCancellable) {
			s.cancelTask(id)
		}
	case retryMsg:
		s.retry(m.id, m.auto)
	case retryAllFailedMsg:
		for _, id := range s.registry.ids(isStatus(model.TaskStatusFailed)) {
			s.retry(id, false)
		}
	case removeMsg:
		for _, id := range m.ids {
			s.removeTask(id)
		}
		s.admit()
	case clearByStatusMsg:
		for _, id := range s.registry.ids(isStatus(m.status)) {
			s.removeTask(id)
		}
	case clearAllMsg:
		s.clearAll()
	case admitTickMsg:
		s.admitTimer = nil
		s.startHeld()
		s.admit()
	case updateProgressMsg:
		if t := s.registry.get(m.id); t != nil && t.Status == model.TaskStatusInProgress {
			s.applyProgress(t, m.percent, m.transferred, t.TotalBytes)
		}
	case setOptionsMsg:
		s.opts = m.opts
		s.limit.Store(int32(s.opts.EffectiveLimit()))
		s.logger.Info("transfer: options updated", "options", s.opts.String())
		s.admit()
	case setCallbackMsg:
		s.onUpdate = m.fn
	case syncMsg:
		close(m.done)
	case progressMsg:
		s.onProgress(m)
	case completeMsg:
		s.onComplete(m)
	case failMsg:
		s.onFail(m)
	case multipartStartedMsg:
		s.onMultipartStarted(m)
	case partCompletedMsg:
		s.onPartCompleted(m)
	case identityMsg:
		s.onIdentity(m)
	default:
		s.logger.CaptureError(errors.New("transfer: unknown message"), "type", fmt.Sprintf("%T", msg))
	}
}

func (s *Service) shutdown() {
	if s.admitTimer != nil {
		s.admitTimer()
		s.admitTimer = nil
	}
	for id, stop := range s.retryTimers {
		stop()
		delete(s.retryTimers, id)
	}
}

func (s *Service) addTasks(tasks []*model.TransferTask, restored bool) error {
	for _, t := range tasks {
		if t.MaxRetries == 0 {
			t.MaxRetries = s.opts.MaxRetries
		}
		if err := s.registry.insert(t); err != nil {
			// Earlier tasks of the batch stay; their ids are unique.
			return &model.Error{Op: "add", TaskID: t.ID, Kind: model.ErrorKindValidation, Err: err}
		}
		if restored {
			s.logger.Info("transfer: task restored", "task_id", t.ID, "parts", len(partsOf(t)))
		} else {
			s.logger.Debug("transfer: task added", "task_id", t.ID, "direction", t.Direction)
		}
		s.notify(t)
	}
	s.admit()
	return nil
}

func (s *Service) start(id string) {
	t := s.registry.get(id)
	if t == nil || t.Status != model.TaskStatusPending {
		return
	}
	if _, busy := s.probing[id]; busy {
		return
	}
	if !s.hasFreeSlot() {
		s.logger.Debug("transfer: start rejected, no free slot", "task_id", id, "kind", model.ErrorKindConcurrencyRejection)
		return
	}
	if wait := s.nextStartAt.Sub(s.clock.Now()); wait > 0 {
		s.heldStarts[id] = struct{}{}
		s.armAdmission(wait)
		return
	}
	s.startPending(t)
	s.paceStart()
}

// startHeld retries the direct starts that were waiting for the admission
// delay, in creation order.
func (s *Service) startHeld() {
	if len(s.heldStarts) == 0 {
		return
	}
	held := s.registry.ids(func(t *model.TransferTask) bool {
		_, ok := s.heldStarts[t.ID]
		return ok
	})
	s.heldStarts = make(map[string]struct{})
	for _, id := range held {
		s.start(id)
	}
}

func (s *Service) startPending(t *model.TransferTask) {
	if s.needsIdentityCheck(t) {
		s.beginProbe(t, launchStart)
		return
	}
	s.reserve()
	s.launch(t, launchStart, "")
}

func (s *Service) pause(id string) {
	t := s.registry.get(id)
	if t == nil || t.Status != model.TaskStatusInProgress {
		return
	}

	s.executor.Pause(id)
	now := s.clock.Now()
	s.registry.update(id, func(t *model.TransferTask) {
		s.transition(t, model.TaskStatusPaused)
		t.PausedAt = now
		t.Speed = 0
		t.ETASec = -1
	})
	s.endAttempt(id)
	s.release()
	s.save(t)
	s.logger.Info("transfer: paused", "task_id", id, "parts", len(partsOf(t)))
	s.notify(t)
	s.admit()
}

func (s *Service) resume(id string) {
	t := s.registry.get(id)
	if t == nil || t.Status != model.TaskStatusPaused {
		return
	}
	if _, busy := s.probing[id]; busy {
		return
	}
	if !s.hasFreeSlot() {
		s.logger.Debug("transfer: resume rejected, no free slot", "task_id", id, "kind", model.ErrorKindConcurrencyRejection)
		return
	}

	if s.needsIdentityCheck(t) {
		s.beginProbe(t, launchResume)
		return
	}
	s.reserve()
	s.launch(t, launchResume, "")
}

// cancelTask marks the task cancelled. The caller decides when to admit.
func (s *Service) cancelTask(id string) {
	t := s.registry.get(id)
	if t == nil || !isCancellable(t) {
		return
	}

	s.executor.Cancel(id)
	if t.Status == model.TaskStatusInProgress {
		s.release()
	}
	s.dropProbe(id)

	now := s.clock.Now()
	s.registry.update(id, func(t *model.TransferTask) {
		s.transition(t, model.TaskStatusCancelled)
		t.CancelledAt = now
		t.FinishedAt = now
		t.Speed = 0
		t.ETASec = -1
	})
	s.endAttempt(id)
	s.forget(id)
	s.logger.Info("transfer: cancelled", "task_id", id)
	s.notify(t)
}

func (s *Service) removeTask(id string) {
	t := s.registry.get(id)
	if t == nil {
		return
	}

	if holdsSession(t) {
		s.executor.Cancel(id)
		if t.Status == model.TaskStatusInProgress {
			s.release()
		}
	}
	s.dropProbe(id)
	s.stopRetryTimer(id)
	s.endAttempt(id)
	delete(s.heldStarts, id)
	s.registry.remove(id)
	s.forget(id)
	s.logger.Debug("transfer: task removed", "task_id", id)
}

// holdsSession reports whether the executor may still hold work for t:
// unfinished tasks, and failed ones whose multipart upload is still open.
func holdsSession(t *model.TransferTask) bool {
	if !t.Status.IsTerminal() {
		return true
	}
	return t.Status == model.TaskStatusFailed && t.Multipart != nil
}

func (s *Service) clearAll() {
	s.draining = false
	for _, id := range s.registry.ids(holdsSession) {
		s.executor.Cancel(id)
	}
	for _, id := range s.registry.clear() {
		s.stopRetryTimer(id)
		s.forget(id)
	}
	s.probing = make(map[string]pendingProbe)
	s.heldStarts = make(map[string]struct{})
	s.attempts = make(map[string]uint64)
	s.speed = newSpeedTracker()
	s.active.Store(0)
	s.logger.Info("transfer: queue cleared")
}

func (s *Service) onComplete(m completeMsg) {
	t := s.current(m.id, m.attempt)
	if t == nil {
		return
	}

	now := s.clock.Now()
	result := m.result
	s.registry.update(m.id, func(t *model.TransferTask) {
		s.transition(t, model.TaskStatusCompleted)
		t.Progress = 100
		if t.TotalBytes > 0 {
			t.TransferredBytes = t.TotalBytes
		} else {
			t.TotalBytes = t.TransferredBytes
		}
		t.Speed = 0
		t.ETASec = -1
		t.FinishedAt = now
		t.Error = nil
		t.Result = &result
	})
	s.endAttempt(m.id)
	s.release()
	s.forget(m.id)
	s.logger.Info("transfer: completed", "task_id", m.id, "bytes", t.TransferredBytes)
	s.notify(t)
	s.admit()
}

func (s *Service) onFail(m failMsg) {
	t := s.current(m.id, m.attempt)
	if t == nil {
		return
	}
	if errors.Is(m.err, model.ErrCancelled) || errors.Is(m.err, model.ErrPaused) {
		// The executor echoing our own pause or cancel.
		return
	}

	kind := model.ErrorKindTransfer
	if !m.retryable {
		kind = model.ErrorKindPermanent
	}
	message := "unknown error"
	if m.err != nil {
		message = m.err.Error()
	}

	now := s.clock.Now()
	s.registry.update(m.id, func(t *model.TransferTask) {
		s.transition(t, model.TaskStatusFailed)
		t.Error = &model.TaskError{Kind: kind, Message: message}
		t.FinishedAt = now
		t.Speed = 0
		t.ETASec = -1
	})
	s.endAttempt(m.id)
	s.release()
	s.save(t)
	s.logger.Warn("transfer: failed", "task_id", m.id, "kind", kind, "error", message, "retries", t.RetryCount)
	s.notify(t)

	if s.opts.RetryOnFailure && t.RetryCount < t.MaxRetries {
		s.scheduleRetry(m.id, t.RetryCount)
	}
	s.admit()
}

// current returns the live task if it is in progress and the event belongs
// to its running attempt.
func (s *Service) current(id string, attempt uint64) *model.TransferTask {
	t := s.registry.get(id)
	if t == nil || t.Status != model.TaskStatusInProgress || s.attempts[id] != attempt {
		s.logger.Debug("transfer: discarding late event", "task_id", id)
		return nil
	}
	return t
}

type launchKind int

const (
	launchStart launchKind = iota
	launchResume
	launchRetry
)

func (k launchKind) String() string {
	switch k {
	case launchStart:
		return "start"
	case launchResume:
		return "resume"
	case launchRetry:
		return "retry"
	}
	return "unknown"
}

// launch moves a task with a reserved slot to in-progress and hands it to
// the executor.
func (s *Service) launch(t *model.TransferTask, kind launchKind, staleSession string) {
	now := s.clock.Now()
	resumable := s.opts.Resumable && t.Multipart != nil
	s.registry.update(t.ID, func(t *model.TransferTask) {
		s.transition(t, model.TaskStatusInProgress)
		switch kind {
		case launchStart:
			t.StartedAt = now
		case launchRetry:
			t.RetryCount++
			t.StartedAt = now
			t.FinishedAt = time.Time{}
			if t.Error != nil && t.Error.Kind != model.ErrorKindResumeInvalidated {
				t.Error = nil
			}
		case launchResume:
			if t.Error != nil && t.Error.Kind == model.ErrorKindTransfer {
				t.Error = nil
			}
		}
		if !resumable {
			// Nothing to continue from: the executor starts at byte zero.
			// A resume keeps the recorded progress, lower samples are
			// dropped until the new attempt passes it.
			t.Multipart = nil
			if kind != launchResume {
				t.TransferredBytes = 0
				t.Progress = 0
			}
		}
		t.Speed = 0
		t.ETASec = -1
	})

	s.attemptSeq++
	attempt := s.attemptSeq
	s.attempts[t.ID] = attempt
	s.speed.reset(t.ID, now, t.TransferredBytes)

	req := StartRequest{Task: t.Clone(), StartPart: 1, StaleSession: staleSession}
	if t.Multipart != nil {
		req.Multipart = t.Multipart.Clone()
		req.StartPart = t.Multipart.NextPartNumber()
	}

	s.logger.Info("transfer: started",
		"task_id", t.ID, "how", kind.String(), "start_part", req.StartPart, "retry", t.RetryCount)
	s.executor.StartTransfer(req, &taskEvents{s: s, attempt: attempt})
	s.notify(t)
}

// transition applies a state machine edge. Illegal edges are reported and
// not applied.
func (s *Service) transition(t *model.TransferTask, next model.TaskStatus) {
	if !t.Status.CanTransitionTo(next) {
		s.logger.CaptureError(errors.New("transfer: illegal status transition"),
			"task_id", t.ID, "from", t.Status.String(), "to", next.String())
		return
	}
	t.Status = next
}

func (s *Service) endAttempt(id string) {
	delete(s.attempts, id)
	s.speed.drop(id)
}

func (s *Service) hasFreeSlot() bool {
	return int(s.active.Load()) < s.opts.EffectiveLimit()
}

func (s *Service) reserve() {
	s.active.Add(1)
}

func (s *Service) release() {
	if s.active.Add(-1) < 0 {
		s.active.Store(0)
	}
}

func (s *Service) save(t *model.TransferTask) {
	if s.store == nil || !s.opts.Resumable || t.Multipart == nil {
		return
	}
	if err := s.store.Save(t.Clone()); err != nil {
		s.logger.CaptureError(err, "task_id", t.ID, "op", "save resume state")
	}
}

func (s *Service) forget(id string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.logger.CaptureError(err, "task_id", id, "op", "delete resume state")
	}
}

func (s *Service) notify(t *model.TransferTask) {
	if s.onUpdate != nil {
		s.onUpdate(t.Clone())
	}
}

func newTask(spec model.TransferSpec, now time.Time) *model.TransferTask {
	return &model.TransferTask{
		ID:          generateTaskID(),
		Direction:   spec.Direction,
		Name:        spec.Name,
		Source:      spec.Source,
		Destination: spec.Destination,
		Status:      model.TaskStatusPending,
		TotalBytes:  spec.TotalBytes,
		ETASec:      -1,
		MaxRetries:  spec.MaxRetries,
		CreatedAt:   now,
	}
}

// restoredTask resets a persisted task to pending, keeping what a resume
// needs.
func restoredTask(t *model.TransferTask) *model.TransferTask {
	c := t.Clone()
	c.Status = model.TaskStatusPending
	c.Speed = 0
	c.ETASec = -1
	c.PausedAt = time.Time{}
	c.CancelledAt = time.Time{}
	c.FinishedAt = time.Time{}
	c.Result = nil
	if c.Multipart == nil {
		c.TransferredBytes = 0
		c.Progress = 0
	}
	return c
}

func isStatus(status model.TaskStatus) func(*model.TransferTask) bool {
	return func(t *model.TransferTask) bool { return t.Status == status }
}

func isCancellable(t *model.TransferTask) bool {
	switch t.Status {
	case model.TaskStatusPending, model.TaskStatusInProgress, model.TaskStatusPaused:
		return true
	case model.TaskStatusCompleted, model.TaskStatusFailed, model.TaskStatusCancelled:
		return false
	}
	return false
}

func partsOf(t *model.TransferTask) []model.CompletedPart {
	if t.Multipart == nil {
		return nil
	}
	return t.Multipart.CompletedParts
}
