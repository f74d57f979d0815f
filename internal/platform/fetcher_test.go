package platform

import (
	"testing"
	"time"
)

func TestNewMetadataService(t *testing.T) {
	service := NewMetadataService("yt-dlp", nil)

	if service == nil {
		t.Fatal("service should not be nil")
	}
	if service.timeout != DefaultFetchTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultFetchTimeout, service.timeout)
	}

	service.SetTimeout(30 * time.Second)
	if service.timeout != 30*time.Second {
		t.Errorf("expected timeout 30s after SetTimeout, got %v", service.timeout)
	}
}

func TestParseVideoMetadata(t *testing.T) {
	data := []byte(`{
		"title": "Test Video",
		"duration": 212.5,
		"formats": [
			{"format_id": "137", "height": 1080, "vcodec": "avc1", "acodec": "none", "vbr": 2500.2, "filesize": 52428800},
			{"format_id": "140", "height": null, "vcodec": "none", "acodec": "mp4a", "abr": 128, "filesize_approx": 3400000}
		]
	}`)

	meta, err := parseVideoMetadata(data)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if meta.Title != "Test Video" {
		t.Errorf("title = %q, expected Test Video", meta.Title)
	}
	if meta.Duration != 212.5 {
		t.Errorf("duration = %v, expected 212.5", meta.Duration)
	}
	if len(meta.Formats) != 2 {
		t.Fatalf("expected 2 formats, got %d", len(meta.Formats))
	}

	video := meta.Formats[0]
	if !video.HasVideo() || video.HasAudio() {
		t.Error("format 137 should be video-only")
	}
	if video.DirectSize() != 52428800 {
		t.Errorf("direct size = %d, expected filesize", video.DirectSize())
	}

	audio := meta.Formats[1]
	if audio.HasVideo() || !audio.HasAudio() {
		t.Error("format 140 should be audio-only")
	}
	if audio.DirectSize() != 3400000 {
		t.Errorf("direct size = %d, expected filesize_approx fallback", audio.DirectSize())
	}
}

func TestParseVideoMetadata_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid JSON", `{not json`},
		{"no formats", `{"title": "x", "duration": 1}`},
		{"empty formats", `{"title": "x", "duration": 1, "formats": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseVideoMetadata([]byte(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParsePlaylistInfo(t *testing.T) {
	data := []byte(`{
		"title": "My Mix",
		"uploader": "Some Channel",
		"description": "desc",
		"entries": [
			{"id": "abc123", "title": "First", "url": "https://youtu.be/abc123", "duration": 120},
			{"id": "def456", "duration": null},
			{"title": "no id, skipped"}
		]
	}`)

	info, err := parsePlaylistInfo(data)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if info.Title != "My Mix" {
		t.Errorf("title = %q, expected My Mix", info.Title)
	}
	if info.Channel != "Some Channel" {
		t.Errorf("channel = %q, expected uploader fallback", info.Channel)
	}
	if info.VideoCount != 2 {
		t.Fatalf("video count = %d, expected 2 (entry without id skipped)", info.VideoCount)
	}

	first := info.Entries[0]
	if first.URL != "https://youtu.be/abc123" {
		t.Errorf("first URL = %q, expected the reported URL", first.URL)
	}

	second := info.Entries[1]
	if second.Title != DefaultVideoTitle {
		t.Errorf("second title = %q, expected default", second.Title)
	}
	if second.URL != "https://www.youtube.com/watch?v=def456" {
		t.Errorf("second URL = %q, expected synthesized watch URL", second.URL)
	}
}

func TestParsePlaylistInfo_Defaults(t *testing.T) {
	info, err := parsePlaylistInfo([]byte(`{}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info.Title != DefaultPlaylistName {
		t.Errorf("title = %q, expected %q", info.Title, DefaultPlaylistName)
	}
	if info.Channel != DefaultChannelName {
		t.Errorf("channel = %q, expected %q", info.Channel, DefaultChannelName)
	}
	if info.VideoCount != 0 {
		t.Errorf("video count = %d, expected 0", info.VideoCount)
	}
}
