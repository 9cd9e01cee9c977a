package s3exec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the S3 client the executor uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)

	CreateMultipartUpload(
		ctx context.Context,
		params *s3.CreateMultipartUploadInput,
		optFns ...func(*s3.Options),
	) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(
		ctx context.Context,
		params *s3.CompleteMultipartUploadInput,
		optFns ...func(*s3.Options),
	) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(
		ctx context.Context,
		params *s3.AbortMultipartUploadInput,
		optFns ...func(*s3.Options),
	) (*s3.AbortMultipartUploadOutput, error)
}

var _ S3API = (*s3.Client)(nil)

const s3Scheme = "s3://"

// ErrInvalidObjectURI is returned for anything that is not s3://bucket/key.
var ErrInvalidObjectURI = errors.New("s3exec: invalid object uri")

// ObjectRef names one object.
type ObjectRef struct {
	Bucket string
	Key    string
}

func (r ObjectRef) String() string {
	return s3Scheme + r.Bucket + "/" + r.Key
}

// ParseObjectURI splits s3://bucket/key. The key may contain slashes but
// must not be empty.
func ParseObjectURI(uri string) (ObjectRef, error) {
	rest, ok := strings.CutPrefix(uri, s3Scheme)
	if !ok {
		return ObjectRef{}, fmt.Errorf("%w: %q has no s3:// scheme", ErrInvalidObjectURI, uri)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return ObjectRef{}, fmt.Errorf("%w: %q needs a bucket and a key", ErrInvalidObjectURI, uri)
	}
	return ObjectRef{Bucket: bucket, Key: key}, nil
}
