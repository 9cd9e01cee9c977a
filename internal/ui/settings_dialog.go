package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/s3-upload-tool/internal/config"
)

// SettingsDialog edits the stored preferences
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func(config.Options)

	downloadDirEntry   *widget.Entry
	maxConcurrentEntry *widget.Entry
	maxRetriesEntry    *widget.Entry
	modeSelect         *widget.Select
	resumableCheck     *widget.Check
	retryCheck         *widget.Check
	overwriteCheck     *widget.Check
	createDirsCheck    *widget.Check
	regionEntry        *widget.Entry
	endpointEntry      *widget.Entry
	pathStyleCheck     *widget.Check
	autoRevealCheck    *widget.Check
}

// ShowSettingsDialog opens the dialog; onSaved receives the new options
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, localization *Localization, onSaved func(config.Options)) {
	NewSettingsDialog(settings, localization, window, onSaved).Show()
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func(config.Options)) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}
	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.downloadDirEntry = widget.NewEntry()
	browseBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)

	sd.maxConcurrentEntry = widget.NewEntry()
	sd.maxConcurrentEntry.SetPlaceHolder("1-10")
	sd.maxRetriesEntry = widget.NewEntry()
	sd.maxRetriesEntry.SetPlaceHolder("0-10")

	var modes []string
	for _, mode := range sd.settings.GetModeOptions() {
		modes = append(modes, string(mode))
	}
	sd.modeSelect = widget.NewSelect(modes, nil)

	sd.resumableCheck = widget.NewCheck(l.GetText(KeyResumable), nil)
	sd.retryCheck = widget.NewCheck(l.GetText(KeyRetryOnFailure), nil)
	sd.overwriteCheck = widget.NewCheck(l.GetText(KeyOverwrite), nil)
	sd.createDirsCheck = widget.NewCheck(l.GetText(KeyCreateDirectories), nil)

	sd.regionEntry = widget.NewEntry()
	sd.regionEntry.SetPlaceHolder("us-east-1")
	sd.endpointEntry = widget.NewEntry()
	sd.endpointEntry.SetPlaceHolder("https://s3.example.com")
	sd.pathStyleCheck = widget.NewCheck(l.GetText(KeyPathStyle), nil)
	sd.autoRevealCheck = widget.NewCheck(l.GetText(KeyAutoReveal), nil)

	form := widget.NewForm(
		widget.NewFormItem(l.GetText(KeyDownloadDirectory), sd.downloadDirEntry),
		widget.NewFormItem("", browseBtn),
		widget.NewFormItem(l.GetText(KeyMaxConcurrent), sd.maxConcurrentEntry),
		widget.NewFormItem(l.GetText(KeyMaxRetries), sd.maxRetriesEntry),
		widget.NewFormItem(l.GetText(KeyMode), sd.modeSelect),
		widget.NewFormItem("", sd.resumableCheck),
		widget.NewFormItem("", sd.retryCheck),
		widget.NewFormItem("", sd.overwriteCheck),
		widget.NewFormItem("", sd.createDirsCheck),
		widget.NewFormItem("", sd.autoRevealCheck),
		widget.NewFormItem(l.GetText(KeyRegion), sd.regionEntry),
		widget.NewFormItem(l.GetText(KeyEndpoint), sd.endpointEntry),
		widget.NewFormItem("", sd.pathStyleCheck),
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	s := sd.settings
	sd.downloadDirEntry.SetText(s.GetDownloadDirectory())
	sd.maxConcurrentEntry.SetText(strconv.Itoa(s.GetMaxConcurrentTransfers()))
	sd.maxRetriesEntry.SetText(strconv.Itoa(s.GetMaxRetries()))
	sd.modeSelect.SetSelected(string(s.GetMode()))
	sd.resumableCheck.SetChecked(s.GetResumable())
	sd.retryCheck.SetChecked(s.GetRetryOnFailure())
	sd.overwriteCheck.SetChecked(s.GetOverwrite())
	sd.createDirsCheck.SetChecked(s.GetCreateDirectories())
	sd.autoRevealCheck.SetChecked(s.GetAutoRevealOnComplete())

	s3 := s.GetS3()
	sd.regionEntry.SetText(s3.Region)
	sd.endpointEntry.SetText(s3.Endpoint)
	sd.pathStyleCheck.SetChecked(s3.UsePathStyle)
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave stores the fields; unparsable numbers keep their previous value
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.save()
	if sd.onSaved != nil {
		sd.onSaved(sd.settings.Options())
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}

func (sd *SettingsDialog) save() {
	s := sd.settings

	if dir := sd.downloadDirEntry.Text; dir != "" {
		s.SetDownloadDirectory(dir)
	}
	if n, err := strconv.Atoi(sd.maxConcurrentEntry.Text); err == nil {
		s.SetMaxConcurrentTransfers(n)
	}
	if n, err := strconv.Atoi(sd.maxRetriesEntry.Text); err == nil {
		s.SetMaxRetries(n)
	}
	if sd.modeSelect.Selected != "" {
		s.SetMode(config.Mode(sd.modeSelect.Selected))
	}
	s.SetResumable(sd.resumableCheck.Checked)
	s.SetRetryOnFailure(sd.retryCheck.Checked)
	s.SetOverwrite(sd.overwriteCheck.Checked)
	s.SetCreateDirectories(sd.createDirsCheck.Checked)
	s.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)

	s3 := s.GetS3()
	s3.Region = sd.regionEntry.Text
	s3.Endpoint = sd.endpointEntry.Text
	s3.UsePathStyle = sd.pathStyleCheck.Checked
	s.SetS3(s3)
}
