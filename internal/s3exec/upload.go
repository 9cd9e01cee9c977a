package s3exec

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/transfer"
)

// Part level retries, below the queue's own task retries.
const (
	partAttempts   = 3
	partRetryDelay = 500 * time.Millisecond
	partMaxDelay   = 5 * time.Second
)

const defaultContentType = "application/octet-stream"

// sourceFile is what uploads need from a local file.
type sourceFile interface {
	io.ReadSeeker
	io.ReaderAt
}

func (e *Executor) upload(
	ctx context.Context,
	req transfer.StartRequest,
	events transfer.Events,
	opts config.Options,
) (model.TransferResult, error) {
	task := req.Task
	ref, err := ParseObjectURI(task.Destination)
	if err != nil {
		return model.TransferResult{}, err
	}

	f, err := e.fs.Open(task.Source)
	if err != nil {
		return model.TransferResult{}, fmt.Errorf("opening %s: %w", task.Source, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return model.TransferResult{}, fmt.Errorf("stat %s: %w", task.Source, err)
	}
	size := info.Size()

	contentType, err := detectContentType(f)
	if err != nil {
		return model.TransferResult{}, fmt.Errorf("reading %s: %w", task.Source, err)
	}

	if req.StaleSession != "" {
		e.abortUpload(ref, req.StaleSession)
	}

	prev := req.Multipart
	continuing := prev != nil && prev.SessionID != "" && prev.ChunkSize > 0
	if continuing && partCount(size, prev.ChunkSize) != prev.TotalParts {
		// The file no longer splits into the recorded parts.
		e.logger.Warn("s3exec: source changed size, restarting upload", "task_id", task.ID, "object", ref.String())
		e.abortUpload(ref, prev.SessionID)
		continuing = false
	}

	events.Progress(task.ID, 0, size)
	if !continuing && size < opts.MultipartThreshold {
		return e.putObject(ctx, task.ID, ref, f, size, contentType, events)
	}

	var state *model.MultipartState
	if continuing {
		state = prev.Clone()
	} else {
		state, err = e.createUpload(ctx, ref, size, contentType, fingerprint(info), opts.ChunkSize)
		if err != nil {
			return model.TransferResult{}, err
		}
	}
	return e.multipartUpload(ctx, task.ID, ref, f, size, state, events, opts)
}

func (e *Executor) putObject(
	ctx context.Context,
	id string,
	ref ObjectRef,
	f io.ReadSeeker,
	size int64,
	contentType string,
	events transfer.Events,
) (model.TransferResult, error) {
	reporter := newProgressReporter(0, size, func(n, total int64) { events.Progress(id, n, total) })
	body := NewProgressReader(f, func(n int64) { reporter.set(0, n) })

	out, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(ref.Bucket),
		Key:           aws.String(ref.Key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return model.TransferResult{}, fmt.Errorf("put %s: %w", ref, err)
	}
	reporter.flush()

	return model.TransferResult{
		ETag:      trimQuotes(aws.ToString(out.ETag)),
		VersionID: aws.ToString(out.VersionId),
		Location:  ref.String(),
	}, nil
}

func (e *Executor) createUpload(
	ctx context.Context,
	ref ObjectRef,
	size int64,
	contentType, identity string,
	chunkSize int64,
) (*model.MultipartState, error) {
	out, err := e.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(ref.Bucket),
		Key:         aws.String(ref.Key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("create multipart upload %s: %w", ref, err)
	}
	return &model.MultipartState{
		SessionID:     aws.ToString(out.UploadId),
		ChunkSize:     chunkSize,
		TotalParts:    partCount(size, chunkSize),
		IdentityToken: identity,
	}, nil
}

func (e *Executor) multipartUpload(
	ctx context.Context,
	id string,
	ref ObjectRef,
	f sourceFile,
	size int64,
	state *model.MultipartState,
	events transfer.Events,
	opts config.Options,
) (model.TransferResult, error) {
	e.trackSession(id, uploadSession{ref: ref, uploadID: state.SessionID})
	events.MultipartStarted(id, *state.Clone())
	defer func() {
		if stoppedByCancel(ctx) {
			e.forgetSession(id)
			e.abortUpload(ref, state.SessionID)
		}
	}()

	var mu sync.Mutex
	completed := make([]types.CompletedPart, 0, state.TotalParts)
	for _, p := range state.CompletedParts {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ContentID),
			PartNumber: aws.Int32(int32(p.Number)),
		})
	}

	reporter := newProgressReporter(state.CompletedBytes(), size, func(n, total int64) { events.Progress(id, n, total) })
	acker := newPartAcker(state.NextPartNumber(), func(p model.CompletedPart) { events.PartCompleted(id, p) })

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.PartConcurrency)
	for number := state.NextPartNumber(); number <= state.TotalParts; number++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			offset, length := partRange(number, size, state.ChunkSize)
			etag, err := e.uploadPart(gctx, ref, state.SessionID, f, number, offset, length, reporter)
			if err != nil {
				return err
			}

			mu.Lock()
			completed = append(completed, types.CompletedPart{
				ETag:       aws.String(etag),
				PartNumber: aws.Int32(int32(number)),
			})
			mu.Unlock()
			acker.done(model.CompletedPart{Number: number, ContentID: etag, Size: length})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.TransferResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.TransferResult{}, err
	}
	reporter.flush()

	sort.Slice(completed, func(i, j int) bool {
		return aws.ToInt32(completed[i].PartNumber) < aws.ToInt32(completed[j].PartNumber)
	})
	out, err := e.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(ref.Bucket),
		Key:             aws.String(ref.Key),
		UploadId:        aws.String(state.SessionID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return model.TransferResult{}, fmt.Errorf("complete multipart upload %s: %w", ref, err)
	}
	e.forgetSession(id)

	return model.TransferResult{
		ETag:      trimQuotes(aws.ToString(out.ETag)),
		VersionID: aws.ToString(out.VersionId),
		Location:  aws.ToString(out.Location),
	}, nil
}

func (e *Executor) uploadPart(
	ctx context.Context,
	ref ObjectRef,
	uploadID string,
	f io.ReaderAt,
	number int,
	offset, length int64,
	reporter *progressReporter,
) (string, error) {
	var etag string
	err := retry.Do(
		func() error {
			body := NewProgressReader(io.NewSectionReader(f, offset, length), func(n int64) {
				reporter.set(number, n)
			})
			out, err := e.client.UploadPart(ctx, &s3.UploadPartInput{
				Bucket:        aws.String(ref.Bucket),
				Key:           aws.String(ref.Key),
				UploadId:      aws.String(uploadID),
				PartNumber:    aws.Int32(int32(number)),
				Body:          body,
				ContentLength: aws.Int64(length),
			})
			if err != nil {
				return err
			}
			etag = aws.ToString(out.ETag)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(partAttempts),
		retry.Delay(partRetryDelay),
		retry.MaxDelay(partMaxDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("upload part %d of %s: %w", number, ref, err)
	}
	return etag, nil
}

// detectContentType sniffs the start of r and rewinds it.
func detectContentType(r io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return "", serr
	}
	if err != nil || mt == nil {
		return defaultContentType, nil
	}
	return mt.String(), nil
}

// fingerprint identifies a local file version for resume checks.
func fingerprint(info os.FileInfo) string {
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano())
}
