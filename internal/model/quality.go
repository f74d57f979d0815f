package model

// SourceFormat is one encoding reported by the external tool's metadata dump.
// Field names follow yt-dlp's -J output.
type SourceFormat struct {
	FormatID       string  `json:"format_id"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	ABR            float64 `json:"abr"` // audio bitrate, kbps
	VBR            float64 `json:"vbr"` // video bitrate, kbps
	TBR            float64 `json:"tbr"` // total bitrate, kbps
	Filesize       uint64  `json:"filesize"`
	FilesizeApprox uint64  `json:"filesize_approx"`
}

// HasVideo returns true if the format carries a video channel
func (f *SourceFormat) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

// HasAudio returns true if the format carries an audio channel
func (f *SourceFormat) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// DirectSize returns the exact reported byte size, preferring filesize over
// filesize_approx, or 0 when neither is present.
func (f *SourceFormat) DirectSize() uint64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

// VideoMetadata is the parsed metadata for a single media resource
type VideoMetadata struct {
	Title    string         `json:"title"`
	Duration float64        `json:"duration"` // seconds
	Formats  []SourceFormat `json:"formats"`
}

// QualityOption is one user-facing quality choice computed from the source
// format list. Immutable after construction.
type QualityOption struct {
	Quality            string `json:"quality"` // e.g. "720p"
	Height             int    `json:"height"`
	VideoSize          uint64 `json:"video_size"`
	AudioSize          uint64 `json:"audio_size"` // 0 if audio already combined
	TotalSize          uint64 `json:"total_size"`
	TotalSizeFormatted string `json:"total_size_formatted"`
	FormatString       string `json:"format_string"` // yt-dlp selection expression
	HasCombinedAudio   bool   `json:"has_combined_audio"`
	Available          bool   `json:"available"`
}

// FormatsResponse is the full resolver output for one metadata fetch
type FormatsResponse struct {
	Qualities         []QualityOption `json:"qualities"`
	BestAudioSize     uint64          `json:"best_audio_size"`
	BestAudioFormatID string          `json:"best_audio_format_id"`
}
