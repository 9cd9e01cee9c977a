package s3exec

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"

	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/transfer"
)

// Prober reports the current identity of the remote side of a task: the
// ETag of the object for downloads, a size and mtime fingerprint of the
// local file for uploads. The tokens match what the executor records when a
// multipart session starts.
type Prober struct {
	client S3API
	fs     afero.Fs
}

var _ transfer.IdentityProber = (*Prober)(nil)

func NewProber(client S3API, fs afero.Fs) *Prober {
	return &Prober{client: client, fs: fs}
}

func (p *Prober) Identity(ctx context.Context, task *model.TransferTask) (string, error) {
	switch task.Direction {
	case model.DirectionUpload:
		info, err := p.fs.Stat(task.Source)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", task.Source, err)
		}
		return fingerprint(info), nil

	case model.DirectionDownload:
		ref, err := ParseObjectURI(task.Source)
		if err != nil {
			return "", err
		}
		head, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(ref.Bucket),
			Key:    aws.String(ref.Key),
		})
		if err != nil {
			return "", fmt.Errorf("head %s: %w", ref, err)
		}
		return trimQuotes(aws.ToString(head.ETag)), nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", model.ErrInvalidSpec, task.Direction)
}
