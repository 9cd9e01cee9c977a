package transfer

import (
	"context"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
)

// Executor performs the byte transfer for tasks.
//
// Methods are called from the dispatcher goroutine and must return promptly.
// Outcomes are reported asynchronously through the Events given to
// StartTransfer. After Pause or Cancel the executor should stop emitting
// events for that id; late events are discarded anyway.
type Executor interface {
	StartTransfer(req StartRequest, events Events)
	Pause(id string)
	Cancel(id string)
}

// StartRequest describes one attempt at a task.
type StartRequest struct {
	Task *model.TransferTask

	// Multipart is the preserved state to continue from, nil for a fresh
	// transfer.
	Multipart *model.MultipartState

	// StartPart is the first part number the executor should send.
	StartPart int

	// StaleSession is a multipart session that was invalidated and should
	// be discarded on the remote side before starting over.
	StaleSession string
}

// Events is how an executor reports back. Implementations are safe for
// concurrent use; calls only enqueue.
//
// PartCompleted must be reported in part number order.
type Events interface {
	Progress(id string, transferred, total int64)
	Complete(id string, result model.TransferResult)
	Fail(id string, err error, retryable bool)
	MultipartStarted(id string, state model.MultipartState)
	PartCompleted(id string, part model.CompletedPart)
}

// IdentityProber returns the current identity token of the remote side of a
// task, e.g. an ETag or a version id. A change since the multipart session
// started means the preserved parts can no longer be trusted.
type IdentityProber interface {
	Identity(ctx context.Context, task *model.TransferTask) (string, error)
}

// ResumeStore persists multipart state so transfers survive a restart.
type ResumeStore interface {
	Save(task *model.TransferTask) error
	Delete(id string) error
}

// Manager is the command and query surface the UI layers depend on.
type Manager interface {
	SetUpdateCallback(func(*model.TransferTask))
	SetOptions(opts config.Options)

	AddTask(spec model.TransferSpec) (string, error)
	AddTasks(specs []model.TransferSpec) ([]string, error)
	RestoreTasks(tasks []*model.TransferTask) error
	RemoveTask(id string)
	RemoveTasks(ids []string)
	ClearCompleted()
	ClearFailed()
	ClearAll()

	Start(id string)
	StartAll()
	Pause(id string)
	PauseAll()
	Resume(id string)
	Cancel(id string)
	CancelAll()
	Retry(id string)
	RetryAllFailed()
	UpdateTaskProgress(id string, percent float64, transferredBytes int64)

	GetTask(id string) (*model.TransferTask, bool)
	GetTasksByStatus(status model.TaskStatus) []*model.TransferTask
	GetPendingTasks() []*model.TransferTask
	GetActiveTasks() []*model.TransferTask
	GetCompletedTasks() []*model.TransferTask
	GetFailedTasks() []*model.TransferTask
	GetAllTasks() []*model.TransferTask

	CalculateOverallProgress() float64
	Queue() model.QueueSnapshot
	UpdateStatistics() model.TransferStatistics
	Statistics() model.TransferStatistics
	ResetStatistics()

	Sync()
	Close()
}
