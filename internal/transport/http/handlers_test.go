package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pricisTrail/dlpgui/internal/download"
	"github.com/pricisTrail/dlpgui/internal/model"
)

type fakeMetadata struct {
	meta     *model.VideoMetadata
	playlist *model.PlaylistInfo
	err      error
	lastURL  string
}

func (f *fakeMetadata) FetchFormats(ctx context.Context, url string) (*model.VideoMetadata, error) {
	f.lastURL = url
	return f.meta, f.err
}

func (f *fakeMetadata) FetchPlaylist(ctx context.Context, url string) (*model.PlaylistInfo, error) {
	f.lastURL = url
	return f.playlist, f.err
}

type fakeDownloads struct {
	started   []download.StartParams
	cancelled []string
	err       error
}

func (f *fakeDownloads) Start(p download.StartParams) error {
	if f.err != nil {
		return f.err
	}
	f.started = append(f.started, p)
	return nil
}

func (f *fakeDownloads) StartPlaylist(info *model.PlaylistInfo, base download.StartParams) []string {
	ids := make([]string, 0, len(info.Entries))
	for _, entry := range info.Entries {
		p := base
		p.ID = download.NewSessionID()
		p.URL = entry.URL
		f.started = append(f.started, p)
		ids = append(ids, p.ID)
	}
	return ids
}

func (f *fakeDownloads) Cancel(id string) {
	f.cancelled = append(f.cancelled, id)
}

func newTestServer(metadata *fakeMetadata, downloads *fakeDownloads) *httptest.Server {
	handler := NewHandler(metadata, downloads, Defaults{DownloadDir: "/downloads"})
	router := NewRouter(handler, func(w http.ResponseWriter, r *http.Request) {})
	return httptest.NewServer(router)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestResolveFormats(t *testing.T) {
	metadata := &fakeMetadata{
		meta: &model.VideoMetadata{
			Title:    "clip",
			Duration: 120,
			Formats: []model.SourceFormat{
				{FormatID: "247", Height: 720, VCodec: "vp9", ACodec: "none", Filesize: 9_000_000},
				{FormatID: "251", VCodec: "none", ACodec: "opus", ABR: 160, Filesize: 2_000_000},
			},
		},
	}
	srv := newTestServer(metadata, &fakeDownloads{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/formats", `{"url":"https://youtu.be/x"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out model.FormatsResponse
	decodeBody(t, resp, &out)

	if metadata.lastURL != "https://youtu.be/x" {
		t.Errorf("fetched url = %q", metadata.lastURL)
	}
	if len(out.Qualities) == 0 {
		t.Fatal("expected quality options")
	}
	if out.BestAudioFormatID != "251" {
		t.Errorf("best audio = %q, want 251", out.BestAudioFormatID)
	}
}

func TestResolveFormats_MissingURL(t *testing.T) {
	srv := newTestServer(&fakeMetadata{}, &fakeDownloads{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/formats", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestResolveFormats_FetchError(t *testing.T) {
	metadata := &fakeMetadata{err: errors.New("ERROR: video unavailable")}
	srv := newTestServer(metadata, &fakeDownloads{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/formats", `{"url":"https://youtu.be/x"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestPlaylistInfo(t *testing.T) {
	metadata := &fakeMetadata{
		playlist: &model.PlaylistInfo{
			Title: "mix",
			Entries: []model.PlaylistVideo{
				{ID: "a", Title: "one", URL: "https://www.youtube.com/watch?v=a"},
			},
		},
	}
	srv := newTestServer(metadata, &fakeDownloads{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/playlist", `{"url":"https://youtube.com/playlist?list=PL1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out model.PlaylistInfo
	decodeBody(t, resp, &out)
	if out.Title != "mix" || len(out.Entries) != 1 {
		t.Errorf("unexpected playlist: %+v", out)
	}
}

func TestStartDownload(t *testing.T) {
	downloads := &fakeDownloads{}
	srv := newTestServer(&fakeMetadata{}, downloads)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/downloads",
		`{"url":"https://youtu.be/x","formatString":"(247+251)/best","subtitles":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out map[string]string
	decodeBody(t, resp, &out)
	if !strings.HasPrefix(out["id"], download.SessionIDPrefix) {
		t.Errorf("id = %q, expected session prefix", out["id"])
	}

	if len(downloads.started) != 1 {
		t.Fatalf("expected 1 started session, got %d", len(downloads.started))
	}
	p := downloads.started[0]
	if p.URL != "https://youtu.be/x" {
		t.Errorf("url = %q", p.URL)
	}
	if p.FormatString != "(247+251)/best" {
		t.Errorf("format = %q", p.FormatString)
	}
	if !p.Subtitles {
		t.Error("subtitles should be enabled")
	}
	if p.DownloadDir != "/downloads" {
		t.Errorf("dir = %q, expected the default", p.DownloadDir)
	}
}

func TestStartDownload_AudioOnly(t *testing.T) {
	downloads := &fakeDownloads{}
	srv := newTestServer(&fakeMetadata{}, downloads)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/downloads", `{"url":"https://youtu.be/x","audioOnly":true}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if downloads.started[0].FormatString != download.AudioOnlyFormat {
		t.Errorf("format = %q, want %q", downloads.started[0].FormatString, download.AudioOnlyFormat)
	}
}

func TestStartDownload_CallerAssignedID(t *testing.T) {
	downloads := &fakeDownloads{}
	srv := newTestServer(&fakeMetadata{}, downloads)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/downloads", `{"id":"task-mine","url":"https://youtu.be/x"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out map[string]string
	decodeBody(t, resp, &out)
	if out["id"] != "task-mine" {
		t.Errorf("id = %q, expected the caller-assigned id", out["id"])
	}
	if downloads.started[0].ID != "task-mine" {
		t.Errorf("started id = %q, expected task-mine", downloads.started[0].ID)
	}
}

func TestStartDownload_SpawnError(t *testing.T) {
	downloads := &fakeDownloads{err: download.ErrSpawnFailed}
	srv := newTestServer(&fakeMetadata{}, downloads)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/downloads", `{"url":"https://youtu.be/x"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestStartPlaylistDownload(t *testing.T) {
	downloads := &fakeDownloads{}
	srv := newTestServer(&fakeMetadata{}, downloads)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/playlist/downloads",
		`{"entries":[{"id":"a","url":"https://youtu.be/a"},{"id":"b","url":"https://youtu.be/b"}],"formatString":"bv+ba/b"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		IDs []string `json:"ids"`
	}
	decodeBody(t, resp, &out)
	if len(out.IDs) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(out.IDs))
	}
	if len(downloads.started) != 2 {
		t.Fatalf("expected 2 started sessions, got %d", len(downloads.started))
	}
}

func TestStartPlaylistDownload_NoEntries(t *testing.T) {
	srv := newTestServer(&fakeMetadata{}, &fakeDownloads{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/playlist/downloads", `{"entries":[]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCancelDownload(t *testing.T) {
	downloads := &fakeDownloads{}
	srv := newTestServer(&fakeMetadata{}, downloads)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/downloads/task-123", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Cancel is acknowledged even for ids that were never started.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	decodeBody(t, resp, &out)
	if out["status"] != "cancelled" {
		t.Errorf("status = %q, want cancelled", out["status"])
	}
	if len(downloads.cancelled) != 1 || downloads.cancelled[0] != "task-123" {
		t.Errorf("cancelled = %v", downloads.cancelled)
	}
}
