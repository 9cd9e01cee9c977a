package config

import (
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/ytget/s3-upload-tool/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyMaxConcurrent      = "max_concurrent_transfers"
	KeyMaxRetries         = "max_retries"
	KeyChunkSize          = "chunk_size"
	KeyResumable          = "resumable"
	KeyRetryOnFailure     = "retry_on_failure"
	KeyOverwrite          = "overwrite"
	KeyCreateDirectories  = "create_directories"
	KeyMode               = "transfer_mode"
	KeyRegion             = "s3_region"
	KeyEndpoint           = "s3_endpoint"
	KeyUsePathStyle       = "s3_use_path_style"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
	KeyLanguage           = "app_language"
)

const (
	// DefaultAutoRevealComplete opens the file manager when a download finishes
	DefaultAutoRevealComplete = false

	// DefaultLanguage follows the system locale
	DefaultLanguage = "system"
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = filepath.Join(".", "downloads")
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetMaxConcurrentTransfers returns the maximum number of parallel transfers
func (s *Settings) GetMaxConcurrentTransfers() int {
	value := s.app.Preferences().Int(KeyMaxConcurrent)
	if value <= 0 {
		s.SetMaxConcurrentTransfers(DefaultMaxConcurrentTransfers)
		return DefaultMaxConcurrentTransfers
	}
	return value
}

// SetMaxConcurrentTransfers sets the maximum number of parallel transfers
func (s *Settings) SetMaxConcurrentTransfers(count int) {
	s.app.Preferences().SetInt(KeyMaxConcurrent, clamp(count, MinConcurrentTransfers, MaxConcurrentTransfers))
}

// GetMaxRetries returns how many times a failed task may be retried
func (s *Settings) GetMaxRetries() int {
	return s.app.Preferences().IntWithFallback(KeyMaxRetries, DefaultMaxRetries)
}

// SetMaxRetries sets the retry limit
func (s *Settings) SetMaxRetries(count int) {
	s.app.Preferences().SetInt(KeyMaxRetries, clamp(count, 0, MaxRetriesLimit))
}

// GetChunkSize returns the multipart chunk size in bytes
func (s *Settings) GetChunkSize() int64 {
	// Preferences only store int, chunk sizes fit comfortably
	size := int64(s.app.Preferences().Int(KeyChunkSize))
	if size < MinChunkSize {
		return DefaultChunkSize
	}
	return size
}

// SetChunkSize sets the multipart chunk size
func (s *Settings) SetChunkSize(size int64) {
	if size < MinChunkSize {
		size = MinChunkSize
	}
	s.app.Preferences().SetInt(KeyChunkSize, int(size))
}

// GetMode returns the admission mode
func (s *Settings) GetMode() Mode {
	mode := Mode(s.app.Preferences().String(KeyMode))
	if mode != ModeSequential && mode != ModeParallel {
		s.SetMode(DefaultMode)
		return DefaultMode
	}
	return mode
}

// SetMode sets the admission mode
func (s *Settings) SetMode(mode Mode) {
	s.app.Preferences().SetString(KeyMode, string(mode))
}

// GetModeOptions returns available admission modes
func (s *Settings) GetModeOptions() []Mode {
	return []Mode{ModeParallel, ModeSequential}
}

// GetResumable returns whether large transfers keep part state for resume
func (s *Settings) GetResumable() bool {
	return s.app.Preferences().BoolWithFallback(KeyResumable, DefaultResumable)
}

// SetResumable sets whether large transfers keep part state for resume
func (s *Settings) SetResumable(v bool) {
	s.app.Preferences().SetBool(KeyResumable, v)
}

// GetRetryOnFailure returns whether failed tasks are retried automatically
func (s *Settings) GetRetryOnFailure() bool {
	return s.app.Preferences().BoolWithFallback(KeyRetryOnFailure, DefaultRetryOnFailure)
}

// SetRetryOnFailure sets whether failed tasks are retried automatically
func (s *Settings) SetRetryOnFailure(v bool) {
	s.app.Preferences().SetBool(KeyRetryOnFailure, v)
}

// GetOverwrite returns whether downloads replace existing files
func (s *Settings) GetOverwrite() bool {
	return s.app.Preferences().BoolWithFallback(KeyOverwrite, DefaultOverwrite)
}

// SetOverwrite sets whether downloads replace existing files
func (s *Settings) SetOverwrite(v bool) {
	s.app.Preferences().SetBool(KeyOverwrite, v)
}

// GetCreateDirectories returns whether missing download directories are created
func (s *Settings) GetCreateDirectories() bool {
	return s.app.Preferences().BoolWithFallback(KeyCreateDirectories, DefaultCreateDirectories)
}

// SetCreateDirectories sets whether missing download directories are created
func (s *Settings) SetCreateDirectories(v bool) {
	s.app.Preferences().SetBool(KeyCreateDirectories, v)
}

// GetS3 returns the object store location
func (s *Settings) GetS3() S3Options {
	p := s.app.Preferences()
	return S3Options{
		Region:       p.String(KeyRegion),
		Endpoint:     p.String(KeyEndpoint),
		UsePathStyle: p.Bool(KeyUsePathStyle),
	}
}

// SetS3 stores the object store location
func (s *Settings) SetS3(o S3Options) {
	p := s.app.Preferences()
	p.SetString(KeyRegion, o.Region)
	p.SetString(KeyEndpoint, o.Endpoint)
	p.SetBool(KeyUsePathStyle, o.UsePathStyle)
}

// GetAutoRevealOnComplete returns whether to reveal completed downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal completed downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguage returns the configured interface language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the interface language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// Options builds the transfer options from the stored preferences
func (s *Settings) Options() Options {
	o := Defaults()
	o.MaxConcurrentTransfers = s.GetMaxConcurrentTransfers()
	o.MaxRetries = s.GetMaxRetries()
	o.ChunkSize = s.GetChunkSize()
	o.Resumable = s.GetResumable()
	o.RetryOnFailure = s.GetRetryOnFailure()
	o.Overwrite = s.GetOverwrite()
	o.CreateDirectories = s.GetCreateDirectories()
	o.Mode = s.GetMode()
	o.DownloadDir = s.GetDownloadDirectory()
	o.S3 = s.GetS3()
	return o.Normalize()
}
