package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/s3exec"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE... s3://BUCKET/[PREFIX/|KEY]",
		Short: "Upload local files",
		Long: `Upload one or more local files. A target ending in "/" is a prefix the
file names are appended to; a single file may be given an exact key.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := s3exec.UploadSpecs(args[len(args)-1], args[:len(args)-1])
			if err != nil {
				return err
			}
			return runTransfers(cmd, specs, false)
		},
	}
}

func newDownloadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download s3://BUCKET/KEY...",
		Short: "Download objects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			specs := make([]model.TransferSpec, 0, len(args))
			for _, uri := range args {
				spec, err := s3exec.DownloadSpec(uri, absDir)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}
			return runTransfers(cmd, specs, false)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to download into")
	return cmd
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Continue transfers interrupted earlier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTransfers(cmd, nil, true)
		},
	}
}

func runTransfers(cmd *cobra.Command, specs []model.TransferSpec, restore bool) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	if restore {
		if err := r.restore(); err != nil {
			return err
		}
	}
	if len(specs) > 0 {
		if _, err := r.svc.AddTasks(specs); err != nil {
			return fmt.Errorf("adding transfers: %w", err)
		}
	}
	return r.run(cmd.Context())
}
