package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter configures the API routes and the WebSocket event endpoint.
func NewRouter(handler *Handler, wsHandler http.HandlerFunc) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/formats", handler.ResolveFormats).Methods("POST")
	r.HandleFunc("/api/playlist", handler.PlaylistInfo).Methods("POST")
	r.HandleFunc("/api/playlist/downloads", handler.StartPlaylistDownload).Methods("POST")
	r.HandleFunc("/api/downloads", handler.StartDownload).Methods("POST")
	r.HandleFunc("/api/downloads/{id}", handler.CancelDownload).Methods("DELETE")
	r.HandleFunc("/ws", wsHandler).Methods("GET")
	return r
}
