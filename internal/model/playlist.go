package model

// PlaylistVideo is one flat entry of a playlist listing
type PlaylistVideo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"` // seconds, 0 if unknown
}

// PlaylistInfo is the flat description of a playlist, used as resolver input
// for batch sessions. No mutation after construction.
type PlaylistInfo struct {
	Title       string          `json:"title"`
	VideoCount  int             `json:"video_count"`
	Channel     string          `json:"channel"`
	Description string          `json:"description"`
	Entries     []PlaylistVideo `json:"entries"`
}
