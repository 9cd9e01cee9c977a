package s3exec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/observability"
	"github.com/ytget/s3-upload-tool/internal/transfer"
)

// abortTimeout bounds cleanup calls made after a transfer has stopped.
const abortTimeout = 30 * time.Second

// Executor runs transfers against S3, one goroutine per running task.
type Executor struct {
	client S3API
	fs     afero.Fs
	logger *observability.CoreLogger
	now    func() time.Time

	mu   sync.Mutex
	opts config.Options
	jobs map[string]*job

	// sessions holds open multipart uploads by task id, including those of
	// paused and failed tasks, so that Cancel can abort them.
	sessions map[string]uploadSession

	wg sync.WaitGroup
}

type job struct {
	cancel context.CancelCauseFunc
}

type uploadSession struct {
	ref      ObjectRef
	uploadID string
}

var _ transfer.Executor = (*Executor)(nil)

// Option configures an Executor.
type Option func(*Executor)

func WithLogger(logger *observability.CoreLogger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithFs replaces the local filesystem, for tests.
func WithFs(fs afero.Fs) Option {
	return func(e *Executor) { e.fs = fs }
}

// WithOptions sets chunking, part concurrency and download behaviour.
func WithOptions(opts config.Options) Option {
	return func(e *Executor) { e.opts = opts.Normalize() }
}

func NewExecutor(client S3API, opts ...Option) *Executor {
	e := &Executor{
		client:   client,
		fs:       afero.NewOsFs(),
		logger:   observability.NewNoOpLogger(),
		now:      time.Now,
		opts:     config.Defaults().Normalize(),
		jobs:     make(map[string]*job),
		sessions: make(map[string]uploadSession),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetOptions applies to transfers started afterwards.
func (e *Executor) SetOptions(opts config.Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = opts.Normalize()
}

// StartTransfer implements transfer.Executor.
func (e *Executor) StartTransfer(req transfer.StartRequest, events transfer.Events) {
	id := req.Task.ID
	ctx, cancel := context.WithCancelCause(context.Background())
	j := &job{cancel: cancel}

	e.mu.Lock()
	if old, ok := e.jobs[id]; ok {
		old.cancel(model.ErrCancelled)
	}
	e.jobs[id] = j
	opts := e.opts
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.finish(id, j)
		e.run(ctx, req, events, opts)
	}()
}

// Pause implements transfer.Executor. The multipart session is kept.
func (e *Executor) Pause(id string) {
	e.mu.Lock()
	j := e.jobs[id]
	e.mu.Unlock()

	if j != nil {
		j.cancel(model.ErrPaused)
	}
}

// Cancel implements transfer.Executor. An open multipart upload is aborted,
// by the running transfer itself or here when none is running.
func (e *Executor) Cancel(id string) {
	e.mu.Lock()
	j := e.jobs[id]
	session, hasSession := e.sessions[id]
	if j == nil {
		delete(e.sessions, id)
	}
	e.mu.Unlock()

	if j != nil {
		j.cancel(model.ErrCancelled)
		return
	}
	if hasSession {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.abortUpload(session.ref, session.uploadID)
		}()
	}
}

// Wait blocks until every transfer goroutine has returned.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) run(ctx context.Context, req transfer.StartRequest, events transfer.Events, opts config.Options) {
	id := req.Task.ID
	logger := e.logger.With("task_id", id, "direction", req.Task.Direction)
	logger.Debug("s3exec: transfer starting", "start_part", req.StartPart)

	var (
		result model.TransferResult
		err    error
	)
	switch req.Task.Direction {
	case model.DirectionUpload:
		result, err = e.upload(ctx, req, events, opts)
	case model.DirectionDownload:
		result, err = e.download(ctx, req, events, opts)
	default:
		err = fmt.Errorf("%w: unknown direction %q", model.ErrInvalidSpec, req.Task.Direction)
	}

	if cause := context.Cause(ctx); errors.Is(cause, model.ErrPaused) || errors.Is(cause, model.ErrCancelled) {
		logger.Debug("s3exec: transfer stopped", "cause", cause)
		return
	}
	if err != nil {
		retryable := isRetryable(err) && !errors.Is(err, model.ErrInvalidSpec)
		logger.Debug("s3exec: transfer failed", "error", err, "retryable", retryable)
		events.Fail(id, err, retryable)
		return
	}
	events.Complete(id, result)
}

func (e *Executor) finish(id string, j *job) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.jobs[id] == j {
		delete(e.jobs, id)
	}
	j.cancel(nil)
}

func (e *Executor) trackSession(id string, s uploadSession) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[id] = s
}

func (e *Executor) forgetSession(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, id)
}

// abortUpload discards a multipart upload. Failures are logged only: S3
// lifecycle rules eventually clean up what is left.
func (e *Executor) abortUpload(ref ObjectRef, uploadID string) {
	if uploadID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), abortTimeout)
	defer cancel()

	_, err := e.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(ref.Bucket),
		Key:      aws.String(ref.Key),
		UploadId: aws.String(uploadID),
	})
	switch {
	case err == nil:
		e.logger.Debug("s3exec: multipart upload aborted", "object", ref.String(), "upload_id", uploadID)
	case isNoSuchUpload(err):
	default:
		e.logger.Warn("s3exec: abort failed", "object", ref.String(), "upload_id", uploadID, "error", err)
	}
}

func stoppedByCancel(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), model.ErrCancelled)
}

func trimQuotes(s string) string {
	return strings.Trim(s, "\"")
}
