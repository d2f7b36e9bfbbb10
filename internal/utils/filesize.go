package utils

import "fmt"

// Decimal units. Sizes are shown the way Finder shows them, not in KiB.
const (
	KB = 1000
	MB = 1000 * KB
	GB = 1000 * MB
)

func FormatSize(bytes int64) string {
	switch {
	case bytes < KB:
		return fmt.Sprintf("%dB", bytes)
	case bytes < MB:
		return fmt.Sprintf("%.2fKB", float64(bytes)/KB)
	case bytes < GB:
		return fmt.Sprintf("%.2fMB", float64(bytes)/MB)
	default:
		return fmt.Sprintf("%.2fGB", float64(bytes)/GB)
	}
}
