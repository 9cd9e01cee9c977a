package main

import (
	"github.com/spf13/cobra"

	"github.com/ytget/s3-upload-tool/internal/config"
)

// NewRootCmd builds the s3xfer command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "s3xfer",
		Short:   "Queue uploads and downloads against S3",
		Version: version,
		Long: `s3xfer moves files between the local disk and an S3 compatible store.
Large files are sent in parts that survive interruptions: a transfer stopped
with Ctrl-C continues where it left off with "s3xfer resume".`,
		SilenceUsage: true,
	}

	d := config.Defaults()
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (YAML)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flags.IntP("concurrency", "c", d.MaxConcurrentTransfers, "Transfers running at the same time (1-10)")
	flags.Int("max-retries", d.MaxRetries, "Retries per transfer")
	flags.Int64("chunk-size", d.ChunkSize, "Part size in bytes for multipart transfers")
	flags.Bool("resumable", d.Resumable, "Keep part state so interrupted transfers can continue")
	flags.Bool("retry-on-failure", d.RetryOnFailure, "Retry failed transfers automatically")
	flags.Bool("overwrite", d.Overwrite, "Replace existing local files on download")
	flags.Bool("create-directories", d.CreateDirectories, "Create missing download directories")
	flags.String("mode", string(d.Mode), "Admission mode: parallel or sequential")
	flags.Int("part-concurrency", d.PartConcurrency, "Parts of one transfer sent at the same time")
	flags.String("region", "", "AWS region")
	flags.String("endpoint", "", "Custom S3 endpoint URL")
	flags.String("profile", "", "Shared config profile")
	flags.Bool("path-style", false, "Use path-style bucket addressing")
	flags.String("state-dir", "", "Directory for resume records")
	flags.String("log-level", d.Log.Level, "Log level: debug, info, warn or error")
	flags.String("log-format", d.Log.Format, "Log format: text or json")

	cmd.AddCommand(
		newUploadCmd(),
		newDownloadCmd(),
		newResumeCmd(),
	)
	return cmd
}
