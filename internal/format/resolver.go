package format

import (
	"fmt"
	"sort"

	"github.com/pricisTrail/dlpgui/internal/model"
)

// EstimateCorrectionFactor compensates for the source reporting peak rather
// than average bitrate in variable-rate streaming formats. Actual files come
// out around 15-20% of what the peak bitrate suggests. Tunable, not derived.
const EstimateCorrectionFactor = 0.18

// TargetHeights is the fixed ladder of user-facing resolutions. Every
// resolver output contains one entry per height, available or not.
var TargetHeights = []int{144, 240, 360, 480, 720, 1080, 1440}

// Unavailable size labels
const (
	UnknownSizeLabel     = "Unknown"
	UnavailableSizeLabel = "N/A"
)

// AudioOnlyFormatString selects the best audio-only stream with a combined
// fallback.
const AudioOnlyFormatString = "ba/b"

// Resolve computes one QualityOption per ladder height from pre-fetched
// metadata, sorted descending by height, plus the globally best audio-only
// encoding's size and identifier.
func Resolve(meta *model.VideoMetadata) *model.FormatsResponse {
	bestAudio := selectBestAudio(meta)

	qualities := make([]model.QualityOption, 0, len(TargetHeights))
	for _, height := range TargetHeights {
		qualities = append(qualities, resolveHeight(meta, height, bestAudio))
	}

	sort.Slice(qualities, func(i, j int) bool {
		return qualities[i].Height > qualities[j].Height
	})

	return &model.FormatsResponse{
		Qualities:         qualities,
		BestAudioSize:     bestAudio.size,
		BestAudioFormatID: bestAudio.formatID,
	}
}

// audioChoice is the best standalone audio encoding found in a format list
type audioChoice struct {
	formatID  string
	size      uint64
	bitrate   float64
	estimated bool
}

// selectBestAudio scans audio-only encodings and picks the highest-bitrate
// one. When bitrate is zero or unknown, a larger byte size wins the tie.
func selectBestAudio(meta *model.VideoMetadata) audioChoice {
	var best audioChoice
	for i := range meta.Formats {
		f := &meta.Formats[i]
		if f.HasVideo() || !f.HasAudio() {
			continue
		}

		bitrate := f.ABR
		if bitrate == 0 {
			bitrate = f.TBR
		}

		size := f.DirectSize()
		estimated := false
		if size == 0 {
			size = EstimateSize(bitrate, meta.Duration)
			estimated = true
		}

		if bitrate > best.bitrate || (bitrate == 0 && size > best.size) {
			best = audioChoice{
				formatID:  f.FormatID,
				size:      size,
				bitrate:   bitrate,
				estimated: estimated,
			}
		}
	}
	return best
}

// resolveHeight builds the quality option for a single ladder rung.
func resolveHeight(meta *model.VideoMetadata, height int, bestAudio audioChoice) model.QualityOption {
	video := selectBestVideo(meta, height)
	if video == nil {
		// No exact match at this height; the fallback expression lets the
		// external tool pick the closest rendition at request time.
		return model.QualityOption{
			Quality:            fmt.Sprintf("%dp", height),
			Height:             height,
			TotalSizeFormatted: UnavailableSizeLabel,
			FormatString:       fmt.Sprintf("(bv*[height<=%d]+ba)/b[height<=%d]/best", height, height),
			Available:          false,
		}
	}

	bitrate := video.VBR
	if bitrate == 0 {
		bitrate = video.TBR
	}

	videoSize := video.DirectSize()
	videoEstimated := false
	if videoSize == 0 {
		videoSize = EstimateSize(bitrate, meta.Duration)
		videoEstimated = true
	}

	hasAudio := video.HasAudio()
	var audioSize, totalSize uint64
	var formatString string
	estimated := videoEstimated

	if hasAudio {
		// Combined stream: still prefer an explicit remux with the best
		// standalone audio so quality stays consistent across rungs.
		formatString = fmt.Sprintf("(bv*[height=%d]+ba)/b[height=%d]/b[height<=%d]", height, height, height)
		totalSize = videoSize
	} else {
		audioSize = bestAudio.size
		totalSize = videoSize + bestAudio.size
		if bestAudio.formatID != "" {
			formatString = fmt.Sprintf("(%s+%s)/best", video.FormatID, bestAudio.formatID)
		} else {
			formatString = fmt.Sprintf("(bv*[height<=%d]+ba)/b[height<=%d]", height, height)
		}
		estimated = videoEstimated || bestAudio.estimated
	}

	return model.QualityOption{
		Quality:            fmt.Sprintf("%dp", height),
		Height:             height,
		VideoSize:          videoSize,
		AudioSize:          audioSize,
		TotalSize:          totalSize,
		TotalSizeFormatted: FormatSize(totalSize, estimated),
		FormatString:       formatString,
		HasCombinedAudio:   hasAudio,
		Available:          true,
	}
}

// selectBestVideo picks the highest-bitrate video encoding matching the exact
// height, or nil when none matches.
func selectBestVideo(meta *model.VideoMetadata, height int) *model.SourceFormat {
	var best *model.SourceFormat
	var bestBitrate float64

	for i := range meta.Formats {
		f := &meta.Formats[i]
		if f.Height != height || !f.HasVideo() {
			continue
		}

		bitrate := f.VBR
		if bitrate == 0 {
			bitrate = f.TBR
		}

		if best == nil || bitrate > bestBitrate {
			best = f
			bestBitrate = bitrate
		}
	}
	return best
}

// EstimateSize converts a peak bitrate (kbps) and duration (seconds) into an
// estimated byte count, applying EstimateCorrectionFactor. Returns 0 when
// either input is unknown.
func EstimateSize(bitrateKbps, durationSec float64) uint64 {
	if bitrateKbps <= 0 || durationSec <= 0 {
		return 0
	}
	// kbps * s / 8 = kilobytes, * 1024 = bytes
	return uint64(bitrateKbps * durationSec / 8.0 * 1024.0 * EstimateCorrectionFactor)
}
