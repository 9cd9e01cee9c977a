package s3exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/platform"
	"github.com/ytget/s3-upload-tool/internal/transfer"
)

// partialSuffix marks a download that has not finished yet.
const partialSuffix = ".part"

// downloadSession names a fresh ranged download into partial. Every new
// session gets its own id so parts acknowledged for an earlier one are
// never carried over.
func downloadSession(partial string) string {
	return partial + "#" + uuid.NewString()
}

func isDownloadSession(id, partial string) bool {
	return strings.HasPrefix(id, partial+"#")
}

func (e *Executor) download(
	ctx context.Context,
	req transfer.StartRequest,
	events transfer.Events,
	opts config.Options,
) (model.TransferResult, error) {
	task := req.Task
	ref, err := ParseObjectURI(task.Source)
	if err != nil {
		return model.TransferResult{}, err
	}
	dest, err := platform.ValidateDownloadPath(e.fs, task.Destination, opts.CreateDirectories)
	if err != nil {
		return model.TransferResult{}, err
	}

	head, err := e.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return model.TransferResult{}, fmt.Errorf("head %s: %w", ref, err)
	}
	size := aws.ToInt64(head.ContentLength)
	etag := aws.ToString(head.ETag)

	partial := dest + partialSuffix
	prev := req.Multipart
	continuing := prev != nil && isDownloadSession(prev.SessionID, partial) && prev.ChunkSize > 0 &&
		prev.TotalParts == partCount(size, prev.ChunkSize)

	defer func() {
		if stoppedByCancel(ctx) {
			_ = e.fs.Remove(partial)
		}
	}()

	events.Progress(task.ID, 0, size)
	if !continuing && size < opts.MultipartThreshold {
		err = e.getObject(ctx, task.ID, ref, etag, partial, size, events)
	} else {
		state := prev.Clone()
		if !continuing {
			state = &model.MultipartState{
				SessionID:     downloadSession(partial),
				ChunkSize:     opts.ChunkSize,
				TotalParts:    partCount(size, opts.ChunkSize),
				IdentityToken: trimQuotes(etag),
			}
		}
		err = e.rangedDownload(ctx, task.ID, ref, etag, partial, size, state, continuing, events, opts)
	}
	if err != nil {
		return model.TransferResult{}, err
	}

	final, err := e.finalize(partial, dest, opts.Overwrite)
	if err != nil {
		return model.TransferResult{}, err
	}
	return model.TransferResult{
		ETag:      trimQuotes(etag),
		VersionID: aws.ToString(head.VersionId),
		Location:  ref.String(),
		LocalPath: final,
	}, nil
}

func (e *Executor) getObject(
	ctx context.Context,
	id string,
	ref ObjectRef,
	etag, partial string,
	size int64,
	events transfer.Events,
) error {
	out, err := e.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket:  aws.String(ref.Bucket),
		Key:     aws.String(ref.Key),
		IfMatch: ifMatch(etag),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", ref, err)
	}
	defer out.Body.Close()

	f, err := e.fs.OpenFile(partial, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, platform.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("creating %s: %w", partial, err)
	}
	defer f.Close()

	reporter := newProgressReporter(0, size, func(n, total int64) { events.Progress(id, n, total) })
	pw := &progressWriter{callback: func(n int64) { reporter.set(0, n) }}
	if _, err := io.Copy(f, io.TeeReader(out.Body, pw)); err != nil {
		return fmt.Errorf("reading %s: %w", ref, err)
	}
	reporter.flush()
	return f.Sync()
}

func (e *Executor) rangedDownload(
	ctx context.Context,
	id string,
	ref ObjectRef,
	etag, partial string,
	size int64,
	state *model.MultipartState,
	continuing bool,
	events transfer.Events,
	opts config.Options,
) error {
	flags := os.O_RDWR | os.O_CREATE
	if !continuing {
		flags |= os.O_TRUNC
	}
	f, err := e.fs.OpenFile(partial, flags, platform.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("opening %s: %w", partial, err)
	}
	defer f.Close()

	events.MultipartStarted(id, *state.Clone())

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
			sum, err := e.downloadPart(gctx, ref, etag, f, number, offset, length, reporter)
			if err != nil {
				return err
			}
			acker.done(model.CompletedPart{Number: number, ContentID: sum, Size: length})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	reporter.flush()
	return f.Sync()
}

// downloadPart fetches one byte range into its place in the file and
// returns the SHA-256 of the range.
func (e *Executor) downloadPart(
	ctx context.Context,
	ref ObjectRef,
	etag string,
	f io.WriterAt,
	number int,
	offset, length int64,
	reporter *progressReporter,
) (string, error) {
	var sum string
	err := retry.Do(
		func() error {
			out, err := e.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket:  aws.String(ref.Bucket),
				Key:     aws.String(ref.Key),
				Range:   aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
				IfMatch: ifMatch(etag),
			})
			if err != nil {
				return err
			}
			defer out.Body.Close()

			buf := make([]byte, length)
			pw := &progressWriter{callback: func(n int64) { reporter.set(number, n) }}
			if _, err := io.ReadFull(io.TeeReader(out.Body, pw), buf); err != nil {
				return err
			}
			if _, err := f.WriteAt(buf, offset); err != nil {
				return fmt.Errorf("%w: %w", errLocalWrite, err)
			}
			sum = platform.Checksum(buf)
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
		return "", fmt.Errorf("download part %d of %s: %w", number, ref, err)
	}
	return sum, nil
}

// finalize moves the finished partial file to dest, or next to it when dest
// is taken and overwriting is off.
func (e *Executor) finalize(partial, dest string, overwrite bool) (string, error) {
	final := dest
	if overwrite {
		if err := e.fs.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("replacing %s: %w", dest, err)
		}
	} else {
		final = platform.GenerateUniqueFilename(e.fs, dest, e.now().Unix())
	}

	if err := e.fs.Rename(partial, final); err != nil {
		return "", fmt.Errorf("moving download to %s: %w", final, err)
	}
	return final, nil
}

func ifMatch(etag string) *string {
	if etag == "" {
		return nil
	}
	return aws.String(etag)
}
