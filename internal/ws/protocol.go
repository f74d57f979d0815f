package ws

import (
	"github.com/pricisTrail/dlpgui/internal/model"
)

type MessageType string

const (
	MsgProgress MessageType = "progress"
	MsgTitle    MessageType = "title"
	MsgLog      MessageType = "log"
	MsgStatus   MessageType = "status"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

type TitlePayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type LogPayload struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	IsError bool   `json:"isError"`
}

type StatusPayload struct {
	ID     string               `json:"id"`
	Status model.DownloadStatus `json:"status"`
}
