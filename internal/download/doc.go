package download

// Package download implements the session supervisor built on top of yt-dlp.
// It spawns the external process, drains its output streams in the
// background, turns raw lines into progress/title/log events, remaps per-leg
// percentages into one session percentage, and supports mid-flight
// cancellation of the whole process tree.
