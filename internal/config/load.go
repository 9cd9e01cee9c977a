package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the CLI reads,
// e.g. S3XFER_MAX_CONCURRENT_TRANSFERS or S3XFER_S3_ENDPOINT.
const EnvPrefix = "S3XFER"

// flagKeys maps CLI flag names onto option keys.
var flagKeys = map[string]string{
	"concurrency":        "max_concurrent_transfers",
	"max-retries":        "max_retries",
	"chunk-size":         "chunk_size",
	"resumable":          "resumable",
	"retry-on-failure":   "retry_on_failure",
	"overwrite":          "overwrite",
	"create-directories": "create_directories",
	"mode":               "mode",
	"part-concurrency":   "part_concurrency",
	"region":             "s3.region",
	"endpoint":           "s3.endpoint",
	"profile":            "s3.profile",
	"state-dir":          "state_dir",
	"path-style":         "s3.use_path_style",
	"log-level":          "log.level",
	"log-format":         "log.format",
}

// Load reads options from an optional YAML file, the environment and the
// given flags, in increasing order of precedence.
func Load(path string, flags *pflag.FlagSet) (Options, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Options{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Options{}, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return Options{}, fmt.Errorf("config: decode: %w", err)
	}
	return o.Normalize(), nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("max_concurrent_transfers", d.MaxConcurrentTransfers)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("chunk_size", d.ChunkSize)
	v.SetDefault("resumable", d.Resumable)
	v.SetDefault("retry_on_failure", d.RetryOnFailure)
	v.SetDefault("overwrite", d.Overwrite)
	v.SetDefault("create_directories", d.CreateDirectories)
	v.SetDefault("mode", string(d.Mode))
	v.SetDefault("batch_size", d.BatchSize)
	v.SetDefault("start_delay", d.StartDelay)
	v.SetDefault("retry_delay", d.RetryDelay)
	v.SetDefault("multipart_threshold", d.MultipartThreshold)
	v.SetDefault("part_concurrency", d.PartConcurrency)
	v.SetDefault("download_dir", d.DownloadDir)
	v.SetDefault("state_dir", d.StateDir)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.profile", d.S3.Profile)
	v.SetDefault("s3.use_path_style", d.S3.UsePathStyle)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.sentry_dsn", d.Log.SentryDSN)
}
