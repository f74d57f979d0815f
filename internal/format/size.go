package format

import "fmt"

// Size unit thresholds
const (
	KB uint64 = 1024
	MB        = KB * 1024
	GB        = MB * 1024
)

// FormatSize renders a byte count for display. Estimated sizes get a "~"
// prefix; zero renders as "Unknown".
func FormatSize(bytes uint64, isEstimate bool) string {
	if bytes == 0 {
		return UnknownSizeLabel
	}

	prefix := ""
	if isEstimate {
		prefix = "~"
	}

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%s%.2f GB", prefix, float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%s%.2f MB", prefix, float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%s%.2f KB", prefix, float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%s%d B", prefix, bytes)
	}
}
