package model

// ProgressEvent is one progress reading for a session. Emitted many times per
// session and consumed immediately by the presentation layer; never persisted.
type ProgressEvent struct {
	ID         string         `json:"id"`
	Percentage float64        `json:"percentage"` // 0 to 100, session-level
	Speed      string         `json:"speed"`      // human readable (e.g. "1.2MiB/s")
	ETA        string         `json:"eta"`        // human readable (e.g. "00:42")
	Size       string         `json:"size"`       // human readable total size
	Status     DownloadStatus `json:"status"`
	Phase      Phase          `json:"phase"`
}
