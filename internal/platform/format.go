package platform

import "fmt"

// File size formatting constants
const (
	FileSizeUnit  = 1024
	FileSizeUnits = "KMGTPE"
)

// FormatBytes formats a byte count in binary units, e.g. "1.5 MB"
func FormatBytes(bytes int64) string {
	if bytes < FileSizeUnit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(FileSizeUnit), 0
	for n := bytes / FileSizeUnit; n >= FileSizeUnit; n /= FileSizeUnit {
		div *= FileSizeUnit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), FileSizeUnits[exp])
}

// FormatSpeed formats a rate in bytes per second, "—" when idle
func FormatSpeed(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "—"
	}
	return FormatBytes(int64(bytesPerSec)) + "/s"
}
