package s3exec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/s3-upload-tool/internal/model"
)

func TestUploadSpecs(t *testing.T) {
	tests := []struct {
		name   string
		target string
		files  []string
		want   []string
	}{
		{"prefix", "s3://bucket/backups/", []string{"/data/a.iso"}, []string{"s3://bucket/backups/a.iso"}},
		{"exact key", "s3://bucket/backups/latest.iso", []string{"/data/a.iso"}, []string{"s3://bucket/backups/latest.iso"}},
		{"bucket only", "s3://bucket", []string{"/data/a.iso"}, []string{"s3://bucket/a.iso"}},
		{"many files", "s3://bucket/dir", []string{"/data/a", "/data/b"}, []string{"s3://bucket/dir/a", "s3://bucket/dir/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := UploadSpecs(tt.target, tt.files)
			require.NoError(t, err)

			var got []string
			for i, spec := range specs {
				assert.Equal(t, model.DirectionUpload, spec.Direction)
				assert.Equal(t, tt.files[i], spec.Source)
				got = append(got, spec.Destination)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUploadSpecs_Rejects(t *testing.T) {
	_, err := UploadSpecs("s3://bucket/", nil)
	assert.ErrorIs(t, err, model.ErrInvalidSpec)

	_, err = UploadSpecs("/tmp/out", []string{"/data/a"})
	assert.ErrorIs(t, err, ErrInvalidObjectURI)
}

func TestDownloadSpec(t *testing.T) {
	dir := filepath.Join("/home", "me", "Downloads")

	spec, err := DownloadSpec(" s3://bucket/reports/q1.pdf ", dir)

	require.NoError(t, err)
	assert.Equal(t, model.DirectionDownload, spec.Direction)
	assert.Equal(t, "s3://bucket/reports/q1.pdf", spec.Source)
	assert.Equal(t, filepath.Join(dir, "q1.pdf"), spec.Destination)

	_, err = DownloadSpec("s3://bucket", dir)
	assert.ErrorIs(t, err, ErrInvalidObjectURI)
}
