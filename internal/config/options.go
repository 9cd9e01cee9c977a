package config

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how pending tasks are admitted
type Mode string

const (
	// ModeSequential runs one transfer at a time with a pause between starts
	ModeSequential Mode = "sequential"

	// ModeParallel admits tasks in batches up to the concurrency limit
	ModeParallel Mode = "parallel"
)

// Limits enforced by Normalize
const (
	MinConcurrentTransfers = 1
	MaxConcurrentTransfers = 10
	MaxRetriesLimit        = 10
	MinChunkSize           = 5 * 1024 * 1024 // S3 minimum part size
	MaxPartConcurrency     = 16
)

// Default values
const (
	DefaultMaxConcurrentTransfers = 3
	DefaultMaxRetries             = 3
	DefaultChunkSize              = MinChunkSize
	DefaultResumable              = true
	DefaultRetryOnFailure         = false
	DefaultOverwrite              = false
	DefaultCreateDirectories      = true
	DefaultMode                   = ModeParallel
	DefaultBatchSize              = 3
	DefaultStartDelay             = 200 * time.Millisecond
	DefaultRetryDelay             = 2 * time.Second
	DefaultPartConcurrency        = 4
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "text"
)

// S3Options locate the object store. Credentials come from the AWS default
// chain (environment, shared config and profile).
type S3Options struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	Profile      string `mapstructure:"profile"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// LogOptions configure the logger
type LogOptions struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// Options is the configuration record consumed by the transfer queue and
// the S3 executor.
type Options struct {
	MaxConcurrentTransfers int           `mapstructure:"max_concurrent_transfers"`
	MaxRetries             int           `mapstructure:"max_retries"`
	ChunkSize              int64         `mapstructure:"chunk_size"`
	Resumable              bool          `mapstructure:"resumable"`
	RetryOnFailure         bool          `mapstructure:"retry_on_failure"`
	Overwrite              bool          `mapstructure:"overwrite"`
	CreateDirectories      bool          `mapstructure:"create_directories"`
	Mode                   Mode          `mapstructure:"mode"`
	BatchSize              int           `mapstructure:"batch_size"`
	StartDelay             time.Duration `mapstructure:"start_delay"`
	RetryDelay             time.Duration `mapstructure:"retry_delay"`
	MultipartThreshold     int64         `mapstructure:"multipart_threshold"` // 0 means ChunkSize
	PartConcurrency        int           `mapstructure:"part_concurrency"`
	DownloadDir            string        `mapstructure:"download_dir"`
	StateDir               string        `mapstructure:"state_dir"` // resume records, empty disables them
	S3                     S3Options     `mapstructure:"s3"`
	Log                    LogOptions    `mapstructure:"log"`
}

// Defaults returns the options used when nothing is configured
func Defaults() Options {
	return Options{
		MaxConcurrentTransfers: DefaultMaxConcurrentTransfers,
		MaxRetries:             DefaultMaxRetries,
		ChunkSize:              DefaultChunkSize,
		Resumable:              DefaultResumable,
		RetryOnFailure:         DefaultRetryOnFailure,
		Overwrite:              DefaultOverwrite,
		CreateDirectories:      DefaultCreateDirectories,
		Mode:                   DefaultMode,
		BatchSize:              DefaultBatchSize,
		StartDelay:             DefaultStartDelay,
		RetryDelay:             DefaultRetryDelay,
		PartConcurrency:        DefaultPartConcurrency,
		Log: LogOptions{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Normalize clamps every field into its accepted range and fills in
// defaults for unset values.
func (o Options) Normalize() Options {
	o.MaxConcurrentTransfers = clamp(o.MaxConcurrentTransfers, MinConcurrentTransfers, MaxConcurrentTransfers)
	o.MaxRetries = clamp(o.MaxRetries, 0, MaxRetriesLimit)
	if o.ChunkSize < MinChunkSize {
		o.ChunkSize = MinChunkSize
	}
	if o.MultipartThreshold <= 0 {
		o.MultipartThreshold = o.ChunkSize
	}
	o.Mode = Mode(strings.ToLower(string(o.Mode)))
	if o.Mode != ModeSequential && o.Mode != ModeParallel {
		o.Mode = DefaultMode
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.StartDelay < 0 {
		o.StartDelay = 0
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	o.PartConcurrency = clamp(o.PartConcurrency, 1, MaxPartConcurrency)
	if o.Log.Level == "" {
		o.Log.Level = DefaultLogLevel
	}
	if o.Log.Format == "" {
		o.Log.Format = DefaultLogFormat
	}
	return o
}

// EffectiveLimit is the concurrency limit admission actually enforces.
func (o Options) EffectiveLimit() int {
	if o.Mode == ModeSequential {
		return 1
	}
	return o.MaxConcurrentTransfers
}

// String returns a one-line summary suitable for logs
func (o Options) String() string {
	return fmt.Sprintf("mode=%s limit=%d retries=%d chunk=%d resumable=%t",
		o.Mode, o.EffectiveLimit(), o.MaxRetries, o.ChunkSize, o.Resumable)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
