package platform

// Package platform contains the yt-dlp/ffmpeg adjacency: locating the
// external tools on disk, spawning them with line-multiplexed output streams,
// killing whole process trees, parsing yt-dlp's streaming text output into
// typed events, and fetching resource metadata via -J dumps.
