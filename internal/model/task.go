package model

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Direction tells which way the bytes of a task flow
type Direction string

const (
	// DirectionUpload copies a local file into a bucket
	DirectionUpload Direction = "upload"

	// DirectionDownload copies an object onto the local disk
	DirectionDownload Direction = "download"
)

// IsValid reports whether d is upload or download.
func (d Direction) IsValid() bool {
	return d == DirectionUpload || d == DirectionDownload
}

// TransferSpec describes a task to be enqueued
type TransferSpec struct {
	Direction   Direction
	Name        string // display name, derived from Source when empty
	Source      string // local path for uploads, s3://bucket/key for downloads
	Destination string // s3://bucket/key for uploads, local path for downloads
	TotalBytes  int64  // 0 if not known yet
	MaxRetries  int    // 0 means use the configured default
}

// Validate reports missing or malformed fields a task cannot be created without.
func (s TransferSpec) Validate() error {
	if !s.Direction.IsValid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidSpec, s.Direction)
	}
	if strings.TrimSpace(s.Source) == "" {
		return fmt.Errorf("%w: empty source", ErrInvalidSpec)
	}
	if strings.TrimSpace(s.Destination) == "" {
		return fmt.Errorf("%w: empty destination", ErrInvalidSpec)
	}
	if s.TotalBytes < 0 {
		return fmt.Errorf("%w: negative total bytes", ErrInvalidSpec)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("%w: negative max retries", ErrInvalidSpec)
	}
	return nil
}

// TransferResult is the metadata reported by the executor on completion
type TransferResult struct {
	ETag      string `json:"etag,omitempty"`
	VersionID string `json:"version_id,omitempty"`
	Location  string `json:"location,omitempty"`
	LocalPath string `json:"local_path,omitempty"` // final path of a download
}

// TransferTask represents a single upload or download
type TransferTask struct {
	ID               string
	Direction        Direction
	Name             string
	Source           string
	Destination      string
	Status           TaskStatus
	Progress         float64 // 0 to 100
	TransferredBytes int64
	TotalBytes       int64
	Speed            float64 // bytes per second
	ETASec           int     // ETA in seconds, -1 if unknown
	RetryCount       int
	MaxRetries       int
	Error            *TaskError
	CreatedAt        time.Time
	StartedAt        time.Time
	FinishedAt       time.Time
	PausedAt         time.Time
	CancelledAt      time.Time
	Multipart        *MultipartState
	Result           *TransferResult
}

// Clone returns a deep copy safe to hand out of the owning goroutine.
func (t *TransferTask) Clone() *TransferTask {
	if t == nil {
		return nil
	}
	c := *t
	if t.Error != nil {
		e := *t.Error
		c.Error = &e
	}
	if t.Result != nil {
		r := *t.Result
		c.Result = &r
	}
	c.Multipart = t.Multipart.Clone()
	return &c
}

// RemainingBytes returns how many bytes are left, 0 if the total is unknown.
func (t *TransferTask) RemainingBytes() int64 {
	if t.TotalBytes <= t.TransferredBytes {
		return 0
	}
	return t.TotalBytes - t.TransferredBytes
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (t *TransferTask) GetETAString() string {
	if t.ETASec <= 0 {
		return "—"
	}

	hours := t.ETASec / 3600
	minutes := (t.ETASec % 3600) / 60
	seconds := t.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns the name, the base of the source, or the raw source
func (t *TransferTask) GetDisplayTitle() string {
	if t.Name != "" {
		return t.Name
	}

	// Support both / and \ separators, object keys use /
	src := strings.ReplaceAll(t.Source, "\\", "/")
	if base := path.Base(strings.TrimRight(src, "/")); base != "." && base != "/" && base != "" {
		return base
	}

	return t.Source
}
