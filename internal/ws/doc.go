// Package ws pushes download session events to browser clients over
// WebSocket. The hub implements the download event sink, so every progress,
// title, log, and status event a session produces is fanned out to all
// connected clients as a typed JSON message.
package ws
