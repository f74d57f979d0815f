package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Tool binary names
const (
	FFmpegBinary = "ffmpeg"
	YtDlpBinary  = "yt-dlp"
)

// Development-mode binary directories probed relative to the working directory
var devBinaryDirs = []string{"binaries", filepath.Join("build", "binaries")}

// Locator resolves best-effort filesystem paths to the external tools.
// It never blocks and never fails: when nothing is found it returns a
// fallback guess and lets the external tool report its own
// missing-dependency error.
type Locator struct {
	FFmpegOverride string
	YtDlpOverride  string
}

// FFmpegPath returns the path handed to yt-dlp's --ffmpeg-location flag.
// Probes the executable's directory, a binaries subfolder next to it, and
// the dev-mode binary directories; first existing candidate wins.
func (l *Locator) FFmpegPath() string {
	if l.FFmpegOverride != "" {
		return l.FFmpegOverride
	}

	name := executableName(FFmpegBinary)
	candidates := make([]string, 0, 4)

	exeDir := executableDir()
	if exeDir != "" {
		candidates = append(candidates,
			filepath.Join(exeDir, name),
			filepath.Join(exeDir, "binaries", name),
		)
	}
	for _, dir := range devBinaryDirs {
		candidates = append(candidates, filepath.Join(dir, name))
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
			return candidate
		}
	}

	// Last resort: the expected production location. yt-dlp will warn but
	// at least we tried.
	if exeDir != "" {
		return filepath.Join(exeDir, name)
	}
	return name
}

// YtDlpPath returns the yt-dlp binary to invoke: the configured override,
// a PATH hit, or the bare name.
func (l *Locator) YtDlpPath() string {
	if l.YtDlpOverride != "" {
		return l.YtDlpOverride
	}
	name := executableName(YtDlpBinary)
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
