// Package http exposes the download manager over a JSON API. Mutating
// operations return immediately; session results stream over the WebSocket
// endpoint.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pricisTrail/dlpgui/internal/download"
	"github.com/pricisTrail/dlpgui/internal/format"
	"github.com/pricisTrail/dlpgui/internal/model"
)

type metadataFetcher interface {
	FetchFormats(ctx context.Context, url string) (*model.VideoMetadata, error)
	FetchPlaylist(ctx context.Context, url string) (*model.PlaylistInfo, error)
}

type downloadManager interface {
	Start(p download.StartParams) error
	StartPlaylist(info *model.PlaylistInfo, base download.StartParams) []string
	Cancel(id string)
}

// Defaults are the per-session settings applied when a request leaves them
// unspecified.
type Defaults struct {
	DownloadDir string
	Subtitles   bool
	UseAria2c   bool
}

type Handler struct {
	metadata  metadataFetcher
	downloads downloadManager
	defaults  Defaults
}

// NewHandler wires HTTP handlers with the metadata and download services.
func NewHandler(metadata metadataFetcher, downloads downloadManager, defaults Defaults) *Handler {
	return &Handler{metadata: metadata, downloads: downloads, defaults: defaults}
}

type urlRequest struct {
	URL string `json:"url"`
}

type startRequest struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	FormatString string `json:"formatString"`
	AudioOnly    bool   `json:"audioOnly"`
	DownloadDir  string `json:"downloadDir"`
	Subtitles    *bool  `json:"subtitles"`
	UseAria2c    *bool  `json:"useAria2c"`
}

type playlistStartRequest struct {
	Entries      []model.PlaylistVideo `json:"entries"`
	FormatString string                `json:"formatString"`
	AudioOnly    bool                  `json:"audioOnly"`
	DownloadDir  string                `json:"downloadDir"`
	Subtitles    *bool                 `json:"subtitles"`
	UseAria2c    *bool                 `json:"useAria2c"`
}

// ResolveFormats handles POST /api/formats.
func (h *Handler) ResolveFormats(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	meta, err := h.metadata.FetchFormats(r.Context(), req.URL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, format.Resolve(meta))
}

// PlaylistInfo handles POST /api/playlist.
func (h *Handler) PlaylistInfo(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	info, err := h.metadata.FetchPlaylist(r.Context(), req.URL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, info)
}

// StartDownload handles POST /api/downloads.
func (h *Handler) StartDownload(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	p := h.sessionParams(req.FormatString, req.AudioOnly, req.DownloadDir, req.Subtitles, req.UseAria2c)
	p.ID = req.ID
	if p.ID == "" {
		p.ID = download.NewSessionID()
	}
	p.URL = req.URL

	if err := h.downloads.Start(p); err != nil {
		if errors.Is(err, download.ErrSpawnFailed) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"id": p.ID, "status": "started"})
}

// StartPlaylistDownload handles POST /api/playlist/downloads.
func (h *Handler) StartPlaylistDownload(w http.ResponseWriter, r *http.Request) {
	var req playlistStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Entries) == 0 {
		http.Error(w, "entries are required", http.StatusBadRequest)
		return
	}

	base := h.sessionParams(req.FormatString, req.AudioOnly, req.DownloadDir, req.Subtitles, req.UseAria2c)
	ids := h.downloads.StartPlaylist(&model.PlaylistInfo{Entries: req.Entries}, base)

	writeJSON(w, map[string]interface{}{"ids": ids, "status": "started"})
}

// CancelDownload handles DELETE /api/downloads/{id}. Cancellation always
// succeeds from the caller's point of view; unknown ids are acknowledged the
// same way as live sessions.
func (h *Handler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	h.downloads.Cancel(id)
	writeJSON(w, map[string]string{"id": id, "status": "cancelled"})
}

func (h *Handler) sessionParams(formatString string, audioOnly bool, dir string, subtitles, useAria2c *bool) download.StartParams {
	p := download.StartParams{
		FormatString: formatString,
		DownloadDir:  h.defaults.DownloadDir,
		Subtitles:    h.defaults.Subtitles,
		UseAria2c:    h.defaults.UseAria2c,
	}
	if audioOnly && p.FormatString == "" {
		p.FormatString = download.AudioOnlyFormat
	}
	if dir != "" {
		p.DownloadDir = dir
	}
	if subtitles != nil {
		p.Subtitles = *subtitles
	}
	if useAria2c != nil {
		p.UseAria2c = *useAria2c
	}
	return p
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
