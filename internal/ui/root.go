package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/s3-upload-tool/internal/config"
	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/observability"
	"github.com/ytget/s3-upload-tool/internal/platform"
	"github.com/ytget/s3-upload-tool/internal/s3exec"
)

// Queue is the transfer queue as seen by the window
type Queue interface {
	AddTasks(specs []model.TransferSpec) ([]string, error)
	Start(id string)
	StartAll()
	Pause(id string)
	PauseAll()
	Resume(id string)
	Cancel(id string)
	CancelAll()
	Retry(id string)
	RetryAllFailed()
	RemoveTask(id string)
	ClearCompleted()
	ClearFailed()
	GetAllTasks() []*model.TransferTask
	Queue() model.QueueSnapshot
	SetUpdateCallback(callback func(*model.TransferTask))
}

// StatusFilter enumerates visible subsets of tasks in the list
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterInProgress
	FilterPending
	FilterPaused
	FilterCompleted
	FilterFailed
)

// filterStatus maps a filter onto the status it shows
var filterStatus = map[StatusFilter]model.TaskStatus{
	FilterInProgress: model.TaskStatusInProgress,
	FilterPending:    model.TaskStatusPending,
	FilterPaused:     model.TaskStatusPaused,
	FilterCompleted:  model.TaskStatusCompleted,
	FilterFailed:     model.TaskStatusFailed,
}

// Matches reports whether a task with status is shown under the filter
func (sf StatusFilter) Matches(status model.TaskStatus) bool {
	want, ok := filterStatus[sf]
	return !ok || status == want
}

// RootUI is the main window
type RootUI struct {
	window       fyne.Window
	queue        Queue
	settings     *config.Settings
	localization *Localization
	logger       *observability.CoreLogger
	onOptions    func(config.Options)

	targetEntry *widget.Entry
	uploadBtn   *widget.Button
	downloadBtn *widget.Button
	toolbar     map[string]*widget.Button
	filter      *widget.Select
	taskList    *widget.List

	currentFilter StatusFilter
	allTasks      []*model.TransferTask
	filteredTasks []*model.TransferTask
	lastStatus    map[string]model.TaskStatus

	overallProgress binding.Float
	summary         binding.String

	// dirty is set from the queue goroutine and drained by Run
	dirty atomic.Bool
}

// NewRootUI builds the window content. onOptions receives the options
// whenever the settings dialog saves.
func NewRootUI(
	window fyne.Window,
	settings *config.Settings,
	queue Queue,
	logger *observability.CoreLogger,
	onOptions func(config.Options),
) *RootUI {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:          window,
		queue:           queue,
		settings:        settings,
		localization:    localization,
		logger:          logger,
		onOptions:       onOptions,
		toolbar:         make(map[string]*widget.Button),
		lastStatus:      make(map[string]model.TaskStatus),
		overallProgress: binding.NewFloat(),
		summary:         binding.NewString(),
	}
	ui.dirty.Store(true)

	window.SetTitle(localization.GetText(KeyAppTitle))
	queue.SetUpdateCallback(ui.onTaskUpdate)

	ui.setupUI()
	return ui
}

func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.targetEntry = widget.NewEntry()
	ui.targetEntry.Validator = validateTarget
	ui.targetEntry.OnSubmitted = func(string) { ui.onDownloadClick() }
	ui.uploadBtn = widget.NewButton("", ui.onUploadClick)
	ui.downloadBtn = widget.NewButton("", ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	topPanel := container.NewBorder(nil, nil, settingsBtn,
		container.NewHBox(ui.uploadBtn, ui.downloadBtn), ui.targetEntry)

	bulk := []struct {
		key    string
		action func()
	}{
		{KeyStartAll, ui.queue.StartAll},
		{KeyPauseAll, ui.queue.PauseAll},
		{KeyCancelAll, ui.queue.CancelAll},
		{KeyRetryFailed, ui.queue.RetryAllFailed},
		{KeyClearCompleted, ui.queue.ClearCompleted},
		{KeyClearFailed, ui.queue.ClearFailed},
	}
	buttons := container.NewHBox()
	for _, b := range bulk {
		btn := widget.NewButton("", b.action)
		ui.toolbar[b.key] = btn
		buttons.Add(btn)
	}

	ui.filter = widget.NewSelect(nil, func(string) {
		ui.currentFilter = StatusFilter(ui.filter.SelectedIndex())
		ui.updateFilteredTasks()
		ui.taskList.Refresh()
	})
	toolbar := container.NewBorder(nil, nil, nil, ui.filter, buttons)

	ui.taskList = widget.NewList(
		func() int { return len(ui.filteredTasks) },
		func() fyne.CanvasObject { return ui.createTaskItem() },
		func(id widget.ListItemID, obj fyne.CanvasObject) { ui.updateTaskItem(id, obj) },
	)

	overall := widget.NewProgressBarWithData(ui.overallProgress)
	overall.Max = 100
	footer := container.NewBorder(nil, nil, widget.NewLabelWithData(ui.summary), nil, overall)

	ui.refreshUITexts()
	ui.window.SetContent(container.NewBorder(
		container.NewVBox(topPanel, toolbar),
		footer,
		nil,
		nil,
		ui.taskList,
	))
}

func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		item := fyne.NewMenuItem(name, func() { ui.onLanguageChange(langCode) })
		item.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts sets every translated text of the window
func (ui *RootUI) refreshUITexts() {
	l := ui.localization
	ui.window.SetTitle(l.GetText(KeyAppTitle))
	ui.targetEntry.SetPlaceHolder(l.GetText(KeyEnterTarget))
	ui.uploadBtn.SetText(l.GetText(KeyUpload))
	ui.downloadBtn.SetText(l.GetText(KeyDownload))
	for key, btn := range ui.toolbar {
		btn.SetText(l.GetText(key))
	}

	options := []string{l.GetText(KeyFilterAll)}
	for f := FilterInProgress; f <= FilterFailed; f++ {
		options = append(options, l.StatusText(filterStatus[f]))
	}
	ui.filter.Options = options
	ui.filter.SetSelectedIndex(int(ui.currentFilter))

	ui.updateSummary(ui.queue.Queue())
	ui.taskList.Refresh()
}

func validateTarget(input string) error {
	if !strings.HasPrefix(strings.TrimSpace(input), "s3://") {
		return s3exec.ErrInvalidObjectURI
	}
	return nil
}

func (ui *RootUI) onUploadClick() {
	target := ui.targetEntry.Text
	if validateTarget(target) != nil {
		ui.showError(errors.New(ui.localization.GetText(KeyInvalidTarget)))
		return
	}

	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		specs, err := s3exec.UploadSpecs(target, []string{path})
		if err != nil {
			ui.showError(err)
			return
		}
		ui.addSpecs(specs)
	}, ui.window)
}

func (ui *RootUI) onDownloadClick() {
	spec, err := s3exec.DownloadSpec(ui.targetEntry.Text, ui.settings.GetDownloadDirectory())
	if err != nil {
		ui.showError(errors.New(ui.localization.GetText(KeyInvalidTarget)))
		return
	}
	ui.addSpecs([]model.TransferSpec{spec})
}

// addSpecs enqueues the tasks and lets the queue admit them
func (ui *RootUI) addSpecs(specs []model.TransferSpec) {
	ids, err := ui.queue.AddTasks(specs)
	if err != nil {
		ui.showError(err)
		return
	}
	ui.logger.Info("ui: tasks added", "count", len(ids))
	ui.queue.StartAll()
}

func (ui *RootUI) showError(err error) {
	ui.logger.Warn("ui: action failed", "error", err.Error())
	dialog.ShowError(err, ui.window)
}

func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func(opts config.Options) {
		if ui.onOptions != nil {
			ui.onOptions(opts)
		}
	})
}

func (ui *RootUI) createTaskItem() fyne.CanvasObject {
	row := NewTaskRow(nil, ui.localization)
	row.SetCallbacks(ui.onTaskAction, ui.queue.Cancel, ui.queue.RemoveTask, ui.onRevealFile, ui.onOpenFile)
	return row
}

func (ui *RootUI) updateTaskItem(id widget.ListItemID, item fyne.CanvasObject) {
	if id < 0 || id >= len(ui.filteredTasks) {
		return
	}
	if row, ok := item.(*TaskRow); ok {
		row.UpdateTask(ui.filteredTasks[id])
	}
}

// onTaskAction runs the main action of a row for the status it showed
func (ui *RootUI) onTaskAction(task *model.TransferTask) {
	switch task.Status {
	case model.TaskStatusPending:
		ui.queue.Start(task.ID)
	case model.TaskStatusInProgress:
		ui.queue.Pause(task.ID)
	case model.TaskStatusPaused:
		ui.queue.Resume(task.ID)
	case model.TaskStatusFailed:
		ui.queue.Retry(task.ID)
	}
}

func (ui *RootUI) onRevealFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := platform.OpenFileInManager(filePath); err != nil {
		ui.showError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err))
	}
}

func (ui *RootUI) onOpenFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		ui.showError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err))
	}
}

// revealFinished shows downloads that completed since the last redraw when
// the user asked for it
func (ui *RootUI) revealFinished(tasks []*model.TransferTask) {
	autoReveal := ui.settings.GetAutoRevealOnComplete()
	seen := make(map[string]model.TaskStatus, len(tasks))
	for _, task := range tasks {
		seen[task.ID] = task.Status
		if !autoReveal || !canReveal(task) {
			continue
		}
		if prev, ok := ui.lastStatus[task.ID]; ok && prev != model.TaskStatusCompleted {
			ui.onRevealFile(task.Result.LocalPath)
		}
	}
	ui.lastStatus = seen
}

// onTaskUpdate runs on the queue goroutine and must not call back into it
func (ui *RootUI) onTaskUpdate(*model.TransferTask) {
	ui.dirty.Store(true)
}

// Run redraws the list whenever the queue reported a change, at most once
// per RefreshInterval, until ctx is done.
func (ui *RootUI) Run(ctx context.Context) {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !ui.dirty.Swap(false) {
				continue
			}
			tasks := ui.queue.GetAllTasks()
			snapshot := ui.queue.Queue()
			fyne.Do(func() { ui.apply(tasks, snapshot) })
		}
	}
}

// apply shows a new state of the queue; it must run on the UI goroutine
func (ui *RootUI) apply(tasks []*model.TransferTask, snapshot model.QueueSnapshot) {
	ui.revealFinished(tasks)
	ui.allTasks = tasks
	ui.updateFilteredTasks()
	ui.updateSummary(snapshot)
	ui.taskList.Refresh()
}

func (ui *RootUI) updateFilteredTasks() {
	ui.filteredTasks = ui.filteredTasks[:0]
	for _, task := range ui.allTasks {
		if ui.currentFilter.Matches(task.Status) {
			ui.filteredTasks = append(ui.filteredTasks, task)
		}
	}
}

func (ui *RootUI) updateSummary(snapshot model.QueueSnapshot) {
	_ = ui.overallProgress.Set(snapshot.OverallProgress)
	_ = ui.summary.Set(fmt.Sprintf(ui.localization.GetText(KeyQueueSummary),
		snapshot.Active, snapshot.Limit, snapshot.Pending) +
		MiddleDotSeparator + platform.FormatSpeed(snapshot.OverallSpeed))
}
