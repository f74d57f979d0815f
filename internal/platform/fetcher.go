package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/pricisTrail/dlpgui/internal/model"
)

// Timeout constants
const (
	DefaultFetchTimeout = 60 * time.Second
)

// Default values for sparse playlist dumps
const (
	DefaultPlaylistName = "Unknown Playlist"
	DefaultChannelName  = "Unknown Channel"
	DefaultVideoTitle   = "Unknown Video"
)

// URL templates
const (
	VideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// MetadataService fetches parsed metadata through yt-dlp -J dumps
type MetadataService struct {
	binPath string
	timeout time.Duration
	logger  *slog.Logger
}

// NewMetadataService creates a metadata service invoking the given yt-dlp binary
func NewMetadataService(binPath string, logger *slog.Logger) *MetadataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataService{
		binPath: binPath,
		timeout: DefaultFetchTimeout,
		logger:  logger,
	}
}

// SetTimeout sets the timeout for fetch operations
func (m *MetadataService) SetTimeout(timeout time.Duration) {
	m.timeout = timeout
}

// FetchFormats returns the encoding list and duration for a single resource.
// skip=dash forces HLS formats, which bypass per-session throttling; the JS
// runtime and remote components are required for signature solving.
func (m *MetadataService) FetchFormats(ctx context.Context, url string) (*model.VideoMetadata, error) {
	args := []string{
		"-J",
		"--no-warnings",
		"--js-runtimes", "node",
		"--remote-components", "ejs:github",
		"--extractor-args", "youtube:skip=dash",
		url,
	}

	output, err := m.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch formats: %w", err)
	}
	return parseVideoMetadata(output)
}

// FetchPlaylist returns a playlist's flat entry list without per-video detail
func (m *MetadataService) FetchPlaylist(ctx context.Context, url string) (*model.PlaylistInfo, error) {
	args := []string{
		"-J",
		"--flat-playlist",
		"--no-warnings",
		url,
	}

	output, err := m.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist info: %w", err)
	}
	return parsePlaylistInfo(output)
}

func (m *MetadataService) run(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.logger.Debug("running yt-dlp", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, m.binPath, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			// Surface the tool's own error text; it is the useful part.
			return nil, errors.New(strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}

func parseVideoMetadata(data []byte) (*model.VideoMetadata, error) {
	var meta model.VideoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}
	if len(meta.Formats) == 0 {
		return nil, errors.New("no formats found")
	}
	return &meta, nil
}

type playlistDump struct {
	Title       string              `json:"title"`
	Channel     string              `json:"channel"`
	Uploader    string              `json:"uploader"`
	Description string              `json:"description"`
	Entries     []playlistDumpEntry `json:"entries"`
}

type playlistDumpEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

func parsePlaylistInfo(data []byte) (*model.PlaylistInfo, error) {
	var dump playlistDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to parse playlist JSON: %w", err)
	}

	info := &model.PlaylistInfo{
		Title:       dump.Title,
		Channel:     dump.Channel,
		Description: dump.Description,
	}
	if info.Title == "" {
		info.Title = DefaultPlaylistName
	}
	if info.Channel == "" {
		info.Channel = dump.Uploader
	}
	if info.Channel == "" {
		info.Channel = DefaultChannelName
	}

	for _, entry := range dump.Entries {
		if entry.ID == "" {
			continue
		}
		video := model.PlaylistVideo{
			ID:       entry.ID,
			Title:    entry.Title,
			URL:      entry.URL,
			Duration: entry.Duration,
		}
		if video.Title == "" {
			video.Title = DefaultVideoTitle
		}
		if video.URL == "" {
			video.URL = fmt.Sprintf(VideoURLTemplate, entry.ID)
		}
		info.Entries = append(info.Entries, video)
	}
	info.VideoCount = len(info.Entries)

	return info, nil
}
