package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/afero"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/observability"
	"github.com/ytget/s3-upload-tool/internal/platform"
	"github.com/ytget/s3-upload-tool/internal/resumestore"
	"github.com/ytget/s3-upload-tool/internal/s3exec"
	"github.com/ytget/s3-upload-tool/internal/transfer"
	"github.com/ytget/s3-upload-tool/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.s3-upload-tool"
	AppName = "S3 Transfers"

	// stateDirName holds resume records under the app storage root
	stateDirName = "transfers"
)

func main() {
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	settings := config.NewSettings(myApp)
	opts := settings.Options()

	logger := newLogger(opts)
	defer logger.Flush()
	defer logger.Reraise()
	logger.Info("starting", "version", version, "options", opts.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := afero.NewOsFs()
	if err := platform.CreateDirectoryIfNotExists(fs, opts.DownloadDir); err != nil {
		logger.CaptureWarn("failed to ensure download dir", "dir", opts.DownloadDir, "error", err.Error())
	}

	client, err := s3exec.NewClient(ctx, opts.S3)
	if err != nil {
		logger.CaptureFatal(err)
		os.Exit(1)
	}
	executor := s3exec.NewExecutor(client,
		s3exec.WithLogger(logger),
		s3exec.WithFs(fs),
		s3exec.WithOptions(opts),
	)

	svcOpts := []transfer.Option{
		transfer.WithLogger(logger),
		transfer.WithOptions(opts),
		transfer.WithProber(s3exec.NewProber(client, fs)),
	}
	store := openStore(fs, stateDir(myApp, opts), logger)
	if store != nil {
		svcOpts = append(svcOpts, transfer.WithStore(store))
	}
	svc := transfer.NewService(executor, svcOpts...)

	if store != nil {
		restore(svc, store, logger)
	}

	root := ui.NewRootUI(myWindow, settings, svc, logger, func(o config.Options) {
		// Endpoint changes apply on the next start, the client is built once
		svc.SetOptions(o)
		executor.SetOptions(o)
	})
	go root.Run(ctx)

	myWindow.ShowAndRun()

	// Pausing keeps the part state of running transfers for the next start
	cancel()
	svc.PauseAll()
	svc.Sync()
	svc.Close()
	executor.Wait()
}

func newLogger(opts config.Options) *observability.CoreLogger {
	hub, err := observability.NewSentryHub(opts.Log.SentryDSN, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentry disabled: %v\n", err)
	}
	return observability.New(
		os.Stderr,
		observability.ParseLevel(opts.Log.Level),
		observability.Format(opts.Log.Format),
		hub,
		observability.Tags{"app": "desktop", "version": version},
	)
}

func stateDir(a fyne.App, opts config.Options) string {
	if opts.StateDir != "" {
		return opts.StateDir
	}
	return filepath.Join(a.Storage().RootURI().Path(), stateDirName)
}

func openStore(fs afero.Fs, dir string, logger *observability.CoreLogger) *resumestore.Store {
	store, err := resumestore.New(fs, dir, logger)
	if err != nil {
		logger.CaptureWarn("resume records disabled", "dir", dir, "error", err.Error())
		return nil
	}
	return store
}

func restore(svc *transfer.Service, store *resumestore.Store, logger *observability.CoreLogger) {
	tasks, err := store.List()
	if err != nil {
		logger.CaptureWarn("cannot list resume records", "error", err.Error())
		return
	}
	if len(tasks) == 0 {
		return
	}
	if err := svc.RestoreTasks(tasks); err != nil {
		logger.CaptureError(err)
		return
	}
	logger.Info("restored unfinished transfers", "count", len(tasks))
}
