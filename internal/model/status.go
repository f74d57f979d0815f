package model

// DownloadStatus represents the externally visible state of a download session
type DownloadStatus string

const (
	// StatusDownloading means the session is actively fetching data
	StatusDownloading DownloadStatus = "downloading"

	// StatusCompleted means the external tool exited with code 0
	StatusCompleted DownloadStatus = "completed"

	// StatusError means the external tool exited with a non-zero code
	StatusError DownloadStatus = "error"

	// StatusCancelled means the session was terminated by the caller
	StatusCancelled DownloadStatus = "cancelled"
)

// String returns the string representation of DownloadStatus
func (s DownloadStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status ends a session
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// Phase is the coarse-grained stage label shown to the user independent of
// the numeric percentage
type Phase string

const (
	// PhaseDownloading is the initial phase before any distinct leg is observed
	PhaseDownloading Phase = "downloading"

	// PhaseVideo means the first download leg (video stream) is running
	PhaseVideo Phase = "video"

	// PhaseAudio means the second download leg (audio stream) is running
	PhaseAudio Phase = "audio"

	// PhaseMerging means ffmpeg is combining the downloaded streams
	PhaseMerging Phase = "merging"

	// PhaseProcessing means a post-processor (subtitles, metadata, fixups) is running
	PhaseProcessing Phase = "processing"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// phaseRank orders phases for monotonic transitions within a session.
func phaseRank(p Phase) int {
	switch p {
	case PhaseVideo:
		return 1
	case PhaseAudio:
		return 2
	case PhaseMerging:
		return 3
	case PhaseProcessing:
		return 4
	default:
		return 0
	}
}

// Before returns true if p precedes other in the session phase order.
// Phases never regress within a session.
func (p Phase) Before(other Phase) bool {
	return phaseRank(p) < phaseRank(other)
}
