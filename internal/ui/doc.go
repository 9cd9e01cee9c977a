// Package ui contains the Fyne-based desktop user interface. It renders the
// transfer queue, forwards user commands to it and edits the settings. All
// UI strings are localized via Localization.
package ui
