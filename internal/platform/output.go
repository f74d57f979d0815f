package platform

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pricisTrail/dlpgui/internal/model"
)

// Placeholder for speed/eta when the progress line does not carry them
const UnknownFieldPlaceholder = "..."

// Token yt-dlp prints when the target file already exists
const alreadyDownloadedToken = "has already been downloaded"

// Marker and field patterns for yt-dlp output lines
var (
	reFormatInfo    = regexp.MustCompile(`\[info\].*?:\s*Downloading.*?(video|audio)`)
	reMerging       = regexp.MustCompile(`\[Merger\]|\[ffmpeg\].*Merging`)
	rePostprocess   = regexp.MustCompile(`\[(ExtractAudio|EmbedSubtitle|EmbedThumbnail|Metadata|FixupM3u8|FixupM4a)\]`)
	reDestination   = regexp.MustCompile(`\[download\]\s+Destination:\s+(.+)`)
	failureTokens   = []string{"error", "warning", "failed"}
	downloadTagText = "[download] "
)

// progressMatcher recognizes one progress-line convention of the external
// tool. Submatch indexes select the percent/size/speed/eta captures; 0 means
// the pattern does not capture that field.
type progressMatcher struct {
	name    string
	re      *regexp.Regexp
	percent int
	size    int
	speed   int
	eta     int
}

// progressMatchers is the precedence-ordered pattern cascade. The most
// complete pattern is tried first; later entries are fallbacks for degraded
// output. Exactly one interpretation is taken per line.
var progressMatchers = []progressMatcher{
	{
		name:    "standard",
		re:      regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%\s+of\s+(~?[\d.]+\s*[kKMGT]?i?B)\s+at\s+([\d.]+\s*[kKMGT]?i?B/s)\s+ETA\s+([\d:]+)`),
		percent: 1, size: 2, speed: 3, eta: 4,
	},
	{
		name:    "degraded",
		re:      regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%\s+of\s+(~?[\d.]+\s*[kKMGT]?i?B)\s+at\s+(\S+)\s+ETA\s+(\S+)`),
		percent: 1, size: 2, speed: 3, eta: 4,
	},
	{
		name:    "aria2c",
		re:      regexp.MustCompile(`\[#\w+\s+[\d.]+[kKMGT]?i?B/([\d.]+[kKMGT]?i?B)\((\d+)%\).*DL:([\d.]+[kKMGT]?i?B).*ETA:(\w+)`),
		percent: 2, size: 1, speed: 3, eta: 4,
	},
	{
		name:    "minimal",
		re:      regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%\s+of\s+(~?[\d.]+\s*[kKMGT]?i?B)`),
		percent: 1, size: 2,
	},
}

// progressReading is one parsed raw progress sample
type progressReading struct {
	percent float64
	size    string
	speed   string
	eta     string
}

// matchProgress runs the pattern cascade against one line; first match wins.
func matchProgress(line string) (progressReading, bool) {
	for _, m := range progressMatchers {
		caps := m.re.FindStringSubmatch(line)
		if caps == nil {
			continue
		}
		percent, err := strconv.ParseFloat(caps[m.percent], 64)
		if err != nil {
			percent = 0
		}
		reading := progressReading{
			percent: percent,
			size:    strings.TrimSpace(caps[m.size]),
			speed:   UnknownFieldPlaceholder,
			eta:     UnknownFieldPlaceholder,
		}
		if m.speed > 0 {
			reading.speed = strings.TrimSpace(caps[m.speed])
		}
		if m.eta > 0 {
			reading.eta = strings.TrimSpace(caps[m.eta])
		}
		return reading, true
	}
	return progressReading{}, false
}

// OutputKind discriminates tracker output events
type OutputKind int

const (
	// KindProgress carries a session-level percentage reading
	KindProgress OutputKind = iota

	// KindTitle carries the output filename discovered from a destination
	// or already-downloaded line
	KindTitle

	// KindLog carries a log-worthy raw line
	KindLog
)

// OutputEvent is one typed event produced from a single output line
type OutputEvent struct {
	Kind    OutputKind
	Percent float64     // session-level, already remapped
	Size    string
	Speed   string
	ETA     string
	Phase   model.Phase
	Title   string
	Text    string
	IsError bool
}

// OutputTracker holds the per-session parse state: current phase and the
// number of download legs observed. One tracker per session, owned by the
// session's drain goroutine, never shared.
type OutputTracker struct {
	phase    model.Phase
	legCount int
}

// NewOutputTracker creates a tracker in the initial downloading phase
func NewOutputTracker() *OutputTracker {
	return &OutputTracker{phase: model.PhaseDownloading}
}

// Phase returns the session's current phase
func (t *OutputTracker) Phase() model.Phase {
	return t.phase
}

// LegCount returns the number of destination lines observed
func (t *OutputTracker) LegCount() int {
	return t.legCount
}

// advance moves the phase forward; phases never regress within a session.
func (t *OutputTracker) advance(p model.Phase) {
	if t.phase.Before(p) {
		t.phase = p
	}
}

// Consume classifies one raw output line into zero or more typed events.
// Stderr lines only ever produce log events; stdout lines drive the phase
// state machine and the progress cascade. Lines matching no known pattern
// are absorbed, never fatal.
func (t *OutputTracker) Consume(line string, fromStderr bool) []OutputEvent {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	_, isProgress := matchProgress(line)
	failure := containsFailureToken(line)

	if fromStderr {
		// Error-stream lines are always log-worthy unless they are
		// unambiguous progress lines.
		if !isProgress || failure {
			return []OutputEvent{{Kind: KindLog, Text: line, IsError: true}}
		}
		return nil
	}

	var events []OutputEvent

	destPath, isDestination := matchDestination(line)
	if isDestination {
		t.legCount++
		if t.legCount == 1 {
			t.advance(model.PhaseVideo)
		} else {
			t.advance(model.PhaseAudio)
		}
	}

	if caps := reFormatInfo.FindStringSubmatch(line); caps != nil {
		switch strings.ToLower(caps[1]) {
		case "video":
			t.advance(model.PhaseVideo)
		case "audio":
			t.advance(model.PhaseAudio)
		}
	}

	isMerging := reMerging.MatchString(line)
	if isMerging {
		// yt-dlp emits no percentage during merge; synthesize one.
		t.advance(model.PhaseMerging)
		events = append(events, OutputEvent{
			Kind:    KindProgress,
			Percent: MergePercent,
			Phase:   model.PhaseMerging,
		})
	}

	isPostprocess := rePostprocess.MatchString(line)
	if isPostprocess {
		t.advance(model.PhaseProcessing)
		events = append(events, OutputEvent{
			Kind:    KindProgress,
			Percent: PostprocessPercent,
			Phase:   model.PhaseProcessing,
		})
	}

	alreadyDownloaded := strings.Contains(line, alreadyDownloadedToken)

	switch {
	case isProgress:
		reading, _ := matchProgress(line)
		events = append(events, OutputEvent{
			Kind:    KindProgress,
			Percent: AdjustPercent(reading.percent, t.legCount),
			Size:    reading.size,
			Speed:   reading.speed,
			ETA:     reading.eta,
			Phase:   t.phase,
		})
	case isDestination:
		events = append(events, OutputEvent{Kind: KindTitle, Title: baseName(destPath)})
	case alreadyDownloaded:
		if name, ok := alreadyDownloadedName(line); ok {
			events = append(events, OutputEvent{Kind: KindTitle, Title: name})
		}
	}

	// Cap log volume: marker lines and failures stay visible, routine
	// progress lines do not. A progress line carrying a failure token is
	// still promoted so failures are never hidden.
	logWorthy := isDestination || isMerging || isPostprocess || alreadyDownloaded || failure
	if (!isProgress && logWorthy) || (isProgress && failure) {
		events = append(events, OutputEvent{Kind: KindLog, Text: line})
	}

	return events
}

func containsFailureToken(line string) bool {
	lower := strings.ToLower(line)
	for _, token := range failureTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func matchDestination(line string) (string, bool) {
	caps := reDestination.FindStringSubmatch(line)
	if caps == nil {
		return "", false
	}
	return strings.TrimSpace(caps[1]), true
}

// alreadyDownloadedName extracts the filename from a
// "[download] <path> has already been downloaded" line.
func alreadyDownloadedName(line string) (string, bool) {
	start := strings.Index(line, downloadTagText)
	if start < 0 {
		return "", false
	}
	rest := line[start+len(downloadTagText):]
	end := strings.Index(rest, " has already")
	if end < 0 {
		return "", false
	}
	return baseName(rest[:end]), true
}

// baseName returns the last path component, accepting both separators since
// yt-dlp may run against Windows-style destinations.
func baseName(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}
