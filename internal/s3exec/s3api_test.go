package s3exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/platform"
)

func TestParseObjectURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    ObjectRef
		wantErr bool
	}{
		{uri: "s3://bucket/key", want: ObjectRef{Bucket: "bucket", Key: "key"}},
		{uri: "s3://bucket/dir/sub/file.txt", want: ObjectRef{Bucket: "bucket", Key: "dir/sub/file.txt"}},
		{uri: "s3://bucket", wantErr: true},
		{uri: "s3://bucket/", wantErr: true},
		{uri: "s3:///key", wantErr: true},
		{uri: "https://bucket/key", wantErr: true},
		{uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseObjectURI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidObjectURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.uri, got.String())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"no such key", fmt.Errorf("head: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}), false},
		{"bad signature", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, false},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, true},
		{"internal error", &smithy.GenericAPIError{Code: "InternalError"}, true},
		{"missing file", fmt.Errorf("open: %w", os.ErrNotExist), false},
		{"relative path", fmt.Errorf("%w: x", platform.ErrRelativePath), false},
		{"cancelled", context.Canceled, false},
		{"local write", fmt.Errorf("%w: disk full", errLocalWrite), false},
		{"bad uri", ErrInvalidObjectURI, false},
		{"network", errors.New("connection reset by peer"), true},
		{"deadline", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestPartCountAndRange(t *testing.T) {
	assert.Equal(t, 0, partCount(0, 4))
	assert.Equal(t, 1, partCount(4, 4))
	assert.Equal(t, 3, partCount(9, 4))

	off, n := partRange(3, 9, 4)
	assert.EqualValues(t, 8, off)
	assert.EqualValues(t, 1, n)
}

func TestPartAcker_EmitsInOrder(t *testing.T) {
	var got []int
	acker := newPartAcker(3, func(p model.CompletedPart) { got = append(got, p.Number) })

	acker.done(model.CompletedPart{Number: 5})
	acker.done(model.CompletedPart{Number: 4})
	assert.Empty(t, got)

	acker.done(model.CompletedPart{Number: 3})
	assert.Equal(t, []int{3, 4, 5}, got)

	acker.done(model.CompletedPart{Number: 6})
	assert.Equal(t, []int{3, 4, 5, 6}, got)
}

func TestProgressReporter_Throttles(t *testing.T) {
	var emitted []int64
	r := newProgressReporter(100, 1000, func(n, _ int64) { emitted = append(emitted, n) })

	r.set(1, 10)
	r.set(1, 20)
	r.set(2, 5)
	assert.Equal(t, []int64{110}, emitted)

	r.flush()
	assert.Equal(t, []int64{110, 125}, emitted)
}
