package s3exec

import (
	"context"
	"errors"
	"io/fs"

	"github.com/aws/smithy-go"

	"github.com/ytget/s3-upload-tool/internal/platform"
)

// errLocalWrite marks failures writing to the local disk, which a part
// retry will not fix.
var errLocalWrite = errors.New("s3exec: local write failed")

// permanentCodes are S3 error codes that retrying cannot fix.
var permanentCodes = map[string]bool{
	"AccessDenied":          true,
	"AllAccessDisabled":     true,
	"InvalidAccessKeyId":    true,
	"InvalidBucketName":     true,
	"InvalidObjectState":    true,
	"NoSuchBucket":          true,
	"NoSuchKey":             true,
	"NotFound":              true,
	"SignatureDoesNotMatch": true,
	"EntityTooLarge":        true,
}

// isRetryable reports whether err is worth another attempt.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return !permanentCodes[apiErr.ErrorCode()]
	}

	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, ErrInvalidObjectURI),
		errors.Is(err, errLocalWrite),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, platform.ErrRelativePath),
		errors.Is(err, platform.ErrMissingParent):
		return false
	}

	// Network errors, throttling and timeouts.
	return true
}

// isNoSuchUpload reports whether an abort failed because the upload is
// already gone.
func isNoSuchUpload(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchUpload"
}
