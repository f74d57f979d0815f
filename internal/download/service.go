package download

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pricisTrail/dlpgui/internal/model"
	"github.com/pricisTrail/dlpgui/internal/platform"
)

// ErrSpawnFailed means the OS refused to create the yt-dlp process. No
// session is registered when Start returns this.
var ErrSpawnFailed = errors.New("failed to spawn yt-dlp")

// Output constants
const (
	// TempDirName is the staging subdirectory created beneath the
	// destination; yt-dlp writes fragments there and moves finished files up.
	TempDirName = "_dlpgui_temp"

	// DefaultOutputTemplate names finished files from the resource title
	DefaultOutputTemplate = "%(title)s.%(ext)s"

	// DefaultFragmentConcurrency is the -N value for parallel fragment fetches
	DefaultFragmentConcurrency = "4"

	// SessionIDPrefix prefixes generated session ids
	SessionIDPrefix = "task-"
)

// AudioOnlyFormat is the selection expression for audio-only sessions
const AudioOnlyFormat = "ba/b"

// aria2c downloader arguments: 16 connections, 1MiB pieces, no preallocation
const aria2cArgs = "aria2c:-x16 -s16 -k1M --file-allocation=none --check-certificate=false"

// Subtitle language selection, limited to English variants so a session does
// not fetch dozens of auto-translated tracks
const subtitleLangs = "en.*,en,-live_chat"

// heightPattern extracts the resolution bound from a selection expression
var heightPattern = regexp.MustCompile(`height<=(\d+)`)

// EventSink receives session events. Publication is fire-and-forget: a sink
// with no listeners is not an error and must not stall draining.
type EventSink interface {
	Progress(ev model.ProgressEvent)
	Title(id, title string)
	Log(id, message string, isError bool)
	Status(id string, status model.DownloadStatus)
}

// ToolLocator resolves the ffmpeg path handed to yt-dlp. Never blocks, never
// fails; a best-effort guess is acceptable.
type ToolLocator interface {
	FFmpegPath() string
}

// StartParams describes one download session
type StartParams struct {
	ID           string
	URL          string
	DownloadDir  string
	FormatString string
	Subtitles    bool
	UseAria2c    bool
}

// Service supervises download sessions: one external yt-dlp process per
// session, drained in the background for its whole lifetime.
type Service struct {
	binPath        string
	spawner        platform.Spawner
	locator        ToolLocator
	registry       *Registry
	sink           EventSink
	logger         *slog.Logger
	outputTemplate string
}

// NewService creates a download service
func NewService(binPath string, spawner platform.Spawner, locator ToolLocator, registry *Registry, sink EventSink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		binPath:        binPath,
		spawner:        spawner,
		locator:        locator,
		registry:       registry,
		sink:           sink,
		logger:         logger,
		outputTemplate: DefaultOutputTemplate,
	}
}

// SetOutputTemplate overrides the yt-dlp output naming template
func (s *Service) SetOutputTemplate(template string) {
	if template != "" {
		s.outputTemplate = template
	}
}

// Start spawns a session's external process, registers it, and begins
// draining its output in the background. Returns as soon as the process is
// spawned; all further results arrive through the event sink.
func (s *Service) Start(p StartParams) error {
	if p.ID == "" {
		return errors.New("session id is required")
	}
	if p.URL == "" {
		return errors.New("url is required")
	}

	ffmpegPath := s.locator.FFmpegPath()

	tempDir := filepath.Join(p.DownloadDir, TempDirName)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		s.logger.Warn("failed to create staging directory", "dir", tempDir, "error", err)
	}

	args := s.buildArgs(p, ffmpegPath, tempDir)
	s.logger.Debug("starting session", "id", p.ID, "url", p.URL, "format", p.FormatString)

	h, err := s.spawner.Spawn(s.binPath, args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	s.registry.Add(p.ID, h)
	go s.drain(p.ID, h)

	return nil
}

// buildArgs assembles the yt-dlp argument list for one session.
func (s *Service) buildArgs(p StartParams, ffmpegPath, tempDir string) []string {
	args := []string{
		"--progress",
		"--newline",
		"--no-update",
		"--no-playlist",
		"--js-runtimes", "node",
		"--remote-components", "ejs:github",
		"--ffmpeg-location", ffmpegPath,
		"--merge-output-format", "mp4",
		"--no-keep-fragments",
		"-P", "home:" + p.DownloadDir,
		"-P", "temp:" + tempDir,
		"-o", s.outputTemplate,
	}

	// aria2c cannot download HLS streams, so the two modes carry mutually
	// exclusive extractor arguments: DASH with aria2c for parallel-segment
	// speed, HLS without it to dodge per-chunk throttling.
	if p.UseAria2c {
		args = append(args,
			"--extractor-args", "youtube:skip=hls",
			"--downloader", "aria2c",
			"--downloader-args", aria2cArgs,
		)
	} else {
		args = append(args, "--extractor-args", "youtube:skip=dash")
	}

	// An explicit format expression conflicts with an independent sort
	// directive in yt-dlp. When the expression embeds a height bound,
	// substitute the simplified selector and let -S do the resolution pick.
	if caps := heightPattern.FindStringSubmatch(p.FormatString); caps != nil {
		args = append(args, "-S", "res:"+caps[1], "-f", "bv+ba/b")
	} else if p.FormatString != "" {
		args = append(args, "-f", p.FormatString)
	}

	if p.Subtitles {
		args = append(args,
			"--write-subs",
			"--write-auto-sub",
			"--embed-subs",
			"--sub-langs", subtitleLangs,
		)
	}

	args = append(args, "-N", DefaultFragmentConcurrency)
	args = append(args, p.URL)

	return args
}

// drain consumes the process's multiplexed event stream for the lifetime of
// the session, publishing one outward event per parsed result. Events for one
// stream keep the order the process produced them.
func (s *Service) drain(id string, h platform.ProcessHandle) {
	tracker := platform.NewOutputTracker()

	for ev := range h.Events() {
		switch ev.Kind {
		case platform.EventStdoutLine:
			s.publish(id, tracker.Consume(ev.Line, false))
		case platform.EventStderrLine:
			s.publish(id, tracker.Consume(ev.Line, true))
		case platform.EventTerminated:
			status := model.StatusCompleted
			if ev.ExitCode != 0 {
				status = model.StatusError
			}
			s.logger.Info("session terminated", "id", id, "exit_code", ev.ExitCode, "status", status)
			// Deregister before publishing so a consumer reacting to the
			// terminal status never finds a stale registry entry. Idempotent
			// when a concurrent cancel already removed it.
			s.registry.Remove(id)
			s.sink.Status(id, status)
		}
	}

	s.registry.Remove(id)
}

func (s *Service) publish(id string, events []platform.OutputEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case platform.KindProgress:
			s.sink.Progress(model.ProgressEvent{
				ID:         id,
				Percentage: ev.Percent,
				Speed:      ev.Speed,
				ETA:        ev.ETA,
				Size:       ev.Size,
				Status:     model.StatusDownloading,
				Phase:      ev.Phase,
			})
		case platform.KindTitle:
			s.sink.Title(id, ev.Title)
		case platform.KindLog:
			s.sink.Log(id, ev.Text, ev.IsError)
		}
	}
}

// Cancel terminates a session's whole process tree. Cancellation is always
// acknowledged with a cancelled status, even for unknown or already-finished
// ids, so the caller's state machine stays simple.
func (s *Service) Cancel(id string) {
	h, ok := s.registry.Take(id)
	if ok {
		pid := h.PID()
		s.logger.Info("cancelling session", "id", id, "pid", pid)
		if err := platform.KillTree(pid); err != nil {
			s.logger.Warn("tree kill failed, killing direct child", "id", id, "error", err)
			if err := h.Kill(); err != nil {
				s.logger.Error("failed to kill process", "id", id, "error", err)
			}
		}
	} else {
		s.logger.Debug("cancel for unregistered session", "id", id)
	}

	s.sink.Status(id, model.StatusCancelled)
}

// StartPlaylist starts one session per playlist entry and returns the
// generated session ids, in entry order. Sessions that fail to spawn are
// reported through the sink and skipped.
func (s *Service) StartPlaylist(info *model.PlaylistInfo, base StartParams) []string {
	ids := make([]string, 0, len(info.Entries))
	for _, entry := range info.Entries {
		p := base
		p.ID = NewSessionID()
		p.URL = entry.URL

		if err := s.Start(p); err != nil {
			s.logger.Error("failed to start playlist entry", "id", p.ID, "url", p.URL, "error", err)
			s.sink.Log(p.ID, err.Error(), true)
			s.sink.Status(p.ID, model.StatusError)
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids
}

// NewSessionID generates a unique session id. UUID v7 embeds a timestamp, so
// ids sort chronologically.
func NewSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(SessionIDPrefix+"%d", time.Now().UnixNano())
	}
	return SessionIDPrefix + id.String()
}
