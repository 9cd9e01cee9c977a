// Package resumestore keeps the multipart state of unfinished transfers on
// disk, one JSON file per task, so they can be restored after a restart.
package resumestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/observability"
	"github.com/ytget/s3-upload-tool/internal/platform"
	"github.com/ytget/s3-upload-tool/internal/transfer"
)

const (
	recordExt     = ".json"
	recordVersion = 1
)

// ErrInvalidID is returned for ids that cannot be used as a file name.
var ErrInvalidID = errors.New("resumestore: invalid task id")

// record is the on-disk form of a task.
type record struct {
	Version          int                   `json:"version"`
	ID               string                `json:"id"`
	Direction        model.Direction       `json:"direction"`
	Name             string                `json:"name,omitempty"`
	Source           string                `json:"source"`
	Destination      string                `json:"destination"`
	Status           model.TaskStatus      `json:"status"`
	TotalBytes       int64                 `json:"total_bytes"`
	TransferredBytes int64                 `json:"transferred_bytes"`
	RetryCount       int                   `json:"retry_count"`
	MaxRetries       int                   `json:"max_retries"`
	CreatedAt        time.Time             `json:"created_at"`
	Multipart        *model.MultipartState `json:"multipart,omitempty"`
	SavedAt          time.Time             `json:"saved_at"`
}

// Store is a directory of task records.
type Store struct {
	mu     sync.Mutex
	fs     afero.Fs
	dir    string
	logger *observability.CoreLogger
	now    func() time.Time
}

var _ transfer.ResumeStore = (*Store)(nil)

// New opens the store in dir, creating the directory if needed.
func New(fs afero.Fs, dir string, logger *observability.CoreLogger) (*Store, error) {
	if err := platform.CreateDirectoryIfNotExists(fs, dir); err != nil {
		return nil, fmt.Errorf("resumestore: %w", err)
	}
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	return &Store{fs: fs, dir: dir, logger: logger, now: time.Now}, nil
}

// Save writes the record of task, replacing any earlier one.
func (s *Store) Save(task *model.TransferTask) error {
	path, err := s.path(task.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(record{
		Version:          recordVersion,
		ID:               task.ID,
		Direction:        task.Direction,
		Name:             task.Name,
		Source:           task.Source,
		Destination:      task.Destination,
		Status:           task.Status,
		TotalBytes:       task.TotalBytes,
		TransferredBytes: task.TransferredBytes,
		RetryCount:       task.RetryCount,
		MaxRetries:       task.MaxRetries,
		CreatedAt:        task.CreatedAt,
		Multipart:        task.Multipart,
		SavedAt:          s.now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("resumestore: encoding %s: %w", task.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so a crash never leaves half a record.
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, platform.DefaultFilePermissions); err != nil {
		return fmt.Errorf("resumestore: writing %s: %w", task.ID, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("resumestore: writing %s: %w", task.ID, err)
	}
	return nil
}

// Load reads one record. A missing record is model.ErrTaskNotFound.
func (s *Store) Load(id string) (*model.TransferTask, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := afero.ReadFile(s.fs, path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("resumestore: %s: %w", id, model.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resumestore: reading %s: %w", id, err)
	}
	return decode(data)
}

// List returns every readable record, oldest first. Unreadable records are
// logged and skipped.
func (s *Store) List() ([]*model.TransferTask, error) {
	s.mu.Lock()
	entries, err := afero.ReadDir(s.fs, s.dir)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("resumestore: listing %s: %w", s.dir, err)
	}

	var tasks []*model.TransferTask
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt {
			continue
		}
		task, err := s.Load(strings.TrimSuffix(entry.Name(), recordExt))
		if err != nil {
			s.logger.CaptureWarn("resumestore: skipping record", "file", entry.Name(), "error", err.Error())
			continue
		}
		tasks = append(tasks, task)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("resumestore: deleting %s: %w", id, err)
	}
	return nil
}

func (s *Store) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+recordExt), nil
}

func decode(data []byte) (*model.TransferTask, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("resumestore: decoding: %w", err)
	}
	if r.Version != recordVersion {
		return nil, fmt.Errorf("resumestore: unsupported record version %d", r.Version)
	}
	if r.ID == "" || !r.Direction.IsValid() {
		return nil, fmt.Errorf("resumestore: incomplete record %q", r.ID)
	}

	task := &model.TransferTask{
		ID:               r.ID,
		Direction:        r.Direction,
		Name:             r.Name,
		Source:           r.Source,
		Destination:      r.Destination,
		Status:           r.Status,
		TotalBytes:       r.TotalBytes,
		TransferredBytes: r.TransferredBytes,
		RetryCount:       r.RetryCount,
		MaxRetries:       r.MaxRetries,
		CreatedAt:        r.CreatedAt,
		Multipart:        r.Multipart,
		ETASec:           -1,
	}
	if task.TotalBytes > 0 {
		task.Progress = float64(task.TransferredBytes) / float64(task.TotalBytes) * 100
	}
	return task, nil
}
