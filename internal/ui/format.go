package ui

import (
	"strings"

	"github.com/ytget/s3-upload-tool/internal/model"
	"github.com/ytget/s3-upload-tool/internal/platform"
)

// sizeText shows "transferred / total", or only the transferred bytes when
// the total is not known yet
func sizeText(task *model.TransferTask) string {
	if task.TotalBytes <= 0 {
		return platform.FormatBytes(task.TransferredBytes)
	}
	return platform.FormatBytes(task.TransferredBytes) + " / " + platform.FormatBytes(task.TotalBytes)
}

// detailText is the second line of a row: speed and ETA while running, the
// error while failed, the size otherwise
func detailText(task *model.TransferTask) string {
	switch task.Status {
	case model.TaskStatusInProgress:
		return strings.Join([]string{sizeText(task), platform.FormatSpeed(task.Speed), task.GetETAString()}, MiddleDotSeparator)
	case model.TaskStatusFailed:
		if task.Error != nil {
			return task.Error.Message
		}
	case model.TaskStatusCompleted:
		if task.TotalBytes > 0 {
			return platform.FormatBytes(task.TotalBytes)
		}
	}
	return sizeText(task)
}

// directionIcon marks uploads and downloads in the title
func directionIcon(d model.Direction) string {
	if d == model.DirectionUpload {
		return "↑"
	}
	return "↓"
}

// cleanText keeps a title on one line
func cleanText(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s))
}
