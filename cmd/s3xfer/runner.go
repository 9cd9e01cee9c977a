package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/metrics"
	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/observability"
	"github.com/ytget/s3-upload-tool/internal/platform"
	"github.com/ytget/s3-upload-tool/internal/resumestore"
	"github.com/ytget/s3-upload-tool/internal/s3exec"
	"github.com/ytget/s3-upload-tool/internal/transfer"
	"github.com/ytget/s3-upload-tool/internal/waiting"
)

const (
	pollInterval    = 500 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// errTransfersFailed makes the command exit non-zero
var errTransfersFailed = errors.New("some transfers failed")

// waiter is the part of the executor the runner needs on shutdown
type waiter interface {
	Wait()
}

// runner owns one queue for the lifetime of a command
type runner struct {
	opts     config.Options
	logger   *observability.CoreLogger
	out      io.Writer
	svc      *transfer.Service
	executor waiter
	store    *resumestore.Store
	poll     waiting.Delay
	server   *http.Server
}

func newRunner(cmd *cobra.Command) (*runner, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	opts, err := config.Load(configPath, flags)
	if err != nil {
		return nil, err
	}

	hub, err := observability.NewSentryHub(opts.Log.SentryDSN, version)
	if err != nil {
		return nil, err
	}
	logger := observability.New(
		cmd.ErrOrStderr(),
		observability.ParseLevel(opts.Log.Level),
		observability.Format(opts.Log.Format),
		hub,
		observability.Tags{"app": "s3xfer", "version": version},
	)
	logger.Debug("options loaded", "options", opts.String())

	client, err := s3exec.NewClient(cmd.Context(), opts.S3)
	if err != nil {
		return nil, err
	}
	fs := afero.NewOsFs()
	executor := s3exec.NewExecutor(client,
		s3exec.WithLogger(logger),
		s3exec.WithFs(fs),
		s3exec.WithOptions(opts),
	)

	var store *resumestore.Store
	if opts.StateDir != "" {
		if store, err = resumestore.New(fs, opts.StateDir, logger); err != nil {
			return nil, err
		}
	}

	r := assemble(opts, logger, cmd.OutOrStdout(), executor, s3exec.NewProber(client, fs), store)
	if addr, _ := flags.GetString("metrics-addr"); addr != "" {
		r.serveMetrics(addr)
	}
	return r, nil
}

// assemble wires a queue around executor; split from newRunner for tests
func assemble(
	opts config.Options,
	logger *observability.CoreLogger,
	out io.Writer,
	executor interface {
		transfer.Executor
		waiter
	},
	prober transfer.IdentityProber,
	store *resumestore.Store,
) *runner {
	svcOpts := []transfer.Option{
		transfer.WithLogger(logger),
		transfer.WithOptions(opts),
		transfer.WithProber(prober),
	}
	if store != nil {
		svcOpts = append(svcOpts, transfer.WithStore(store))
	}

	return &runner{
		opts:     opts,
		logger:   logger,
		out:      out,
		svc:      transfer.NewService(executor, svcOpts...),
		executor: executor,
		store:    store,
		poll:     waiting.NewDelay(pollInterval),
	}
}

func (r *runner) serveMetrics(addr string) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(r.svc))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.CaptureError(fmt.Errorf("metrics server: %w", err))
		}
	}()
	r.logger.Info("serving metrics", "addr", addr)
}

// restore re-enqueues the transfers saved by an earlier run
func (r *runner) restore() error {
	if r.store == nil {
		return errors.New("resume needs --state-dir")
	}
	tasks, err := r.store.List()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(r.out, "nothing to resume")
		return nil
	}
	return r.svc.RestoreTasks(tasks)
}

// run admits every queued transfer and returns once nothing can move any
// more. Cancelling ctx pauses the running transfers so they can be resumed.
func (r *runner) run(ctx context.Context) error {
	r.svc.StartAll()

	var last model.QueueSnapshot
	for {
		if settled(r.svc.GetAllTasks(), r.opts) {
			return r.summarize()
		}
		if snapshot := r.svc.Queue(); snapshot != last {
			r.report(snapshot)
			last = snapshot
		}

		tick, cancel := r.poll.Wait()
		select {
		case <-ctx.Done():
			cancel()
			r.svc.PauseAll()
			r.svc.Sync()
			fmt.Fprintln(r.out, `interrupted, run "s3xfer resume" to continue`)
			return ctx.Err()
		case <-tick:
		}
	}
}

// settled reports whether no task will change state on its own
func settled(tasks []*model.TransferTask, opts config.Options) bool {
	for _, t := range tasks {
		switch t.Status {
		case model.TaskStatusCompleted, model.TaskStatusCancelled, model.TaskStatusPaused:
		case model.TaskStatusFailed:
			if opts.RetryOnFailure && t.RetryCount < t.MaxRetries {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (r *runner) report(s model.QueueSnapshot) {
	fmt.Fprintf(r.out, "%5.1f%%  %d/%d running  %d waiting  %s\n",
		s.OverallProgress, s.Active, s.Limit, s.Pending, platform.FormatSpeed(s.OverallSpeed))
}

func (r *runner) summarize() error {
	stats := r.svc.UpdateStatistics()
	fmt.Fprintf(r.out, "%d transfers, %d completed, %d failed, %s in %s (%s)\n",
		stats.TotalFiles, stats.CompletedFiles, stats.FailedFiles,
		platform.FormatBytes(stats.TransferredBytes),
		stats.Elapsed.Round(time.Second),
		platform.FormatSpeed(stats.AverageSpeed))

	for _, t := range r.svc.GetFailedTasks() {
		message := ""
		if t.Error != nil {
			message = t.Error.Message
		}
		fmt.Fprintf(r.out, "FAILED %s: %s\n", t.GetDisplayTitle(), message)
	}
	if stats.FailedFiles > 0 {
		return errTransfersFailed
	}
	return nil
}

func (r *runner) close() {
	r.svc.Close()
	r.executor.Wait()

	if r.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = r.server.Shutdown(ctx)
	}
	r.logger.Flush()
}
