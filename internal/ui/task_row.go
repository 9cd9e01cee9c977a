package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/s3-upload-tool/internal/model"
)

// TaskRow is one line of the transfer list
type TaskRow struct {
	widget.BaseWidget

	task         *model.TransferTask
	localization *Localization

	titleLabel  *widget.Label
	statusLabel *widget.Label
	detailLabel *widget.Label
	progressBar *widget.ProgressBar

	actionBtn *widget.Button // start, pause, resume or retry
	cancelBtn *widget.Button
	removeBtn *widget.Button
	revealBtn *widget.Button // show in file manager
	openBtn   *widget.Button // open with the default app

	onAction func(task *model.TransferTask)
	onCancel func(taskID string)
	onRemove func(taskID string)
	onReveal func(filePath string)
	onOpen   func(filePath string)
}

// NewTaskRow creates a row showing task
func NewTaskRow(task *model.TransferTask, localization *Localization) *TaskRow {
	if task == nil {
		task = &model.TransferTask{Status: model.TaskStatusPending, ETASec: -1}
	}

	tr := &TaskRow{
		task:         task,
		localization: localization,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.updateFromTask()
	return tr
}

// SetCallbacks sets the action callbacks
func (tr *TaskRow) SetCallbacks(
	onAction func(task *model.TransferTask),
	onCancel func(taskID string),
	onRemove func(taskID string),
	onReveal func(filePath string),
	onOpen func(filePath string),
) {
	tr.onAction = onAction
	tr.onCancel = onCancel
	tr.onRemove = onRemove
	tr.onReveal = onReveal
	tr.onOpen = onOpen
}

// UpdateTask shows a new snapshot of the task
func (tr *TaskRow) UpdateTask(task *model.TransferTask) {
	if task == nil {
		return
	}
	tr.task = task
	tr.updateFromTask()
	tr.Refresh()
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.detailLabel = widget.NewLabel("")
	tr.detailLabel.TextStyle = fyne.TextStyle{Monospace: true}
	tr.detailLabel.Truncation = fyne.TextTruncateEllipsis
	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.Max = 100

	// Handlers read tr.task when clicked since rows are recycled by the list
	tr.actionBtn = widget.NewButton("", func() {
		if tr.onAction != nil {
			tr.onAction(tr.task)
		}
	})
	tr.cancelBtn = widget.NewButton(tr.localization.GetText(KeyCancel), func() {
		if tr.onCancel != nil {
			tr.onCancel(tr.task.ID)
		}
	})
	tr.removeBtn = widget.NewButton(tr.localization.GetText(KeyRemove), func() {
		if tr.onRemove != nil {
			tr.onRemove(tr.task.ID)
		}
	})
	tr.revealBtn = widget.NewButton(tr.localization.GetText(KeyReveal), func() {
		if tr.onReveal != nil && tr.task.Result != nil {
			tr.onReveal(tr.task.Result.LocalPath)
		}
	})
	tr.openBtn = widget.NewButton(tr.localization.GetText(KeyOpen), func() {
		if tr.onOpen != nil && tr.task.Result != nil {
			tr.onOpen(tr.task.Result.LocalPath)
		}
	})
	tr.actionBtn.Importance = widget.HighImportance
	tr.removeBtn.Importance = widget.LowImportance
}

func (tr *TaskRow) updateFromTask() {
	task := tr.task

	tr.titleLabel.SetText(directionIcon(task.Direction) + " " + cleanText(task.GetDisplayTitle()))
	tr.detailLabel.SetText(detailText(task))
	tr.progressBar.SetValue(task.Progress)

	icon, importance := statusStyle(task.Status)
	tr.statusLabel.Importance = importance
	tr.statusLabel.SetText(icon + " " + tr.localization.StatusText(task.Status))

	tr.updateButtons()
}

func (tr *TaskRow) updateButtons() {
	task := tr.task

	if key, ok := actionKey(task.Status); ok {
		tr.actionBtn.SetText(tr.localization.GetText(key))
		tr.actionBtn.Show()
	} else {
		tr.actionBtn.Hide()
	}

	if task.Status.IsTerminal() {
		tr.cancelBtn.Disable()
	} else {
		tr.cancelBtn.Enable()
	}

	tr.cancelBtn.SetText(tr.localization.GetText(KeyCancel))
	tr.removeBtn.SetText(tr.localization.GetText(KeyRemove))
	tr.revealBtn.SetText(tr.localization.GetText(KeyReveal))
	tr.openBtn.SetText(tr.localization.GetText(KeyOpen))
	if canReveal(task) {
		tr.revealBtn.Show()
		tr.openBtn.Show()
	} else {
		tr.revealBtn.Hide()
		tr.openBtn.Hide()
	}
}

// actionKey returns the label of the main button for a status, false when
// the status has no main action
func actionKey(status model.TaskStatus) (string, bool) {
	switch status {
	case model.TaskStatusPending:
		return KeyStart, true
	case model.TaskStatusInProgress:
		return KeyPause, true
	case model.TaskStatusPaused:
		return KeyResume, true
	case model.TaskStatusFailed:
		return KeyRetry, true
	}
	return "", false
}

func statusStyle(status model.TaskStatus) (string, widget.Importance) {
	switch status {
	case model.TaskStatusInProgress:
		return IconRunning, widget.HighImportance
	case model.TaskStatusPaused:
		return IconPaused, widget.MediumImportance
	case model.TaskStatusCompleted:
		return IconCompleted, widget.SuccessImportance
	case model.TaskStatusFailed:
		return IconFailed, widget.DangerImportance
	case model.TaskStatusCancelled:
		return IconCancelled, widget.LowImportance
	}
	return IconPending, widget.MediumImportance
}

func canReveal(task *model.TransferTask) bool {
	return task.Direction == model.DirectionDownload &&
		task.Status == model.TaskStatusCompleted &&
		task.Result != nil && task.Result.LocalPath != ""
}

// CreateRenderer lays the row out as title and detail on the left, status
// and progress in the middle, buttons pinned to the right
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	info := container.NewVBox(
		fixedWidth(StatusLabelWidth, tr.statusLabel),
		fixedWidth(ProgressBarWidth, tr.progressBar),
	)
	actions := container.NewHBox(tr.actionBtn, tr.revealBtn, tr.openBtn, tr.cancelBtn, tr.removeBtn)
	right := container.NewBorder(nil, nil, nil, actions, info)
	left := container.NewVBox(tr.titleLabel, tr.detailLabel)

	return widget.NewSimpleRenderer(container.NewVBox(
		container.NewBorder(nil, nil, nil, right, left),
		widget.NewSeparator(),
	))
}
