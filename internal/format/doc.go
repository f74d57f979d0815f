package format

// Package format resolves the raw source encoding list into a fixed ladder of
// user-facing quality options. Each option carries a download-size estimate
// and the selection expression handed to yt-dlp. The resolver is pure: it
// performs no network or process I/O.
