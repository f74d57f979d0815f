package platform

// Progress band constants. A two-leg download (video then audio) is shown to
// the user as two halves of one job; the span above 95% is reserved for the
// synthesized merge and post-processing markers.
const (
	firstLegScale  = 0.5
	secondLegBase  = 50.0
	secondLegScale = 0.45

	// MergePercent is the synthesized percentage while ffmpeg merges streams
	MergePercent = 99.0

	// PostprocessPercent is the synthesized percentage during post-processing
	PostprocessPercent = 99.5
)

// AdjustPercent maps a raw per-leg percentage into the single session-level
// percentage. Leg 1 covers [0,50), leg 2 and later cover [50,95). With no
// distinct legs observed (single combined-stream download) the raw value
// passes through unchanged.
func AdjustPercent(raw float64, legCount int) float64 {
	switch {
	case legCount > 1:
		return secondLegBase + raw*secondLegScale
	case legCount == 1:
		return raw * firstLegScale
	default:
		return raw
	}
}
