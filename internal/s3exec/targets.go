package s3exec

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// UploadSpecs builds one upload per local file. A target ending in "/" is a
// prefix the file names are appended to; otherwise a single file is stored
// under the target key itself.
func UploadSpecs(target string, files []string) ([]model.TransferSpec, error) {
	target = strings.TrimSpace(target)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", model.ErrInvalidSpec)
	}
	if !strings.HasSuffix(target, "/") && len(files) > 1 {
		target += "/"
	}
	if strings.Count(target, "/") == 2 {
		// s3://bucket
		target += "/"
	}

	specs := make([]model.TransferSpec, 0, len(files))
	for _, file := range files {
		dest := target
		if strings.HasSuffix(target, "/") {
			dest += filepath.Base(file)
		}
		if _, err := ParseObjectURI(dest); err != nil {
			return nil, err
		}
		specs = append(specs, model.TransferSpec{
			Direction:   model.DirectionUpload,
			Source:      file,
			Destination: dest,
		})
	}
	return specs, nil
}

// DownloadSpec builds a download of uri into dir, keeping the last segment
// of the key as the file name.
func DownloadSpec(uri, dir string) (model.TransferSpec, error) {
	ref, err := ParseObjectURI(strings.TrimSpace(uri))
	if err != nil {
		return model.TransferSpec{}, err
	}
	name := path.Base(strings.TrimSuffix(ref.Key, "/"))
	if name == "." || name == "/" || name == "" {
		return model.TransferSpec{}, fmt.Errorf("%w: %q names no file", ErrInvalidObjectURI, uri)
	}
	return model.TransferSpec{
		Direction:   model.DirectionDownload,
		Source:      ref.String(),
		Destination: filepath.Join(dir, name),
	}, nil
}
