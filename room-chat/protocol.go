package main

import "github.com/gosuda/room-chat/chatview"

// ClientMessage is the envelope received from the browser page.
type ClientMessage struct {
	Type  string `json:"type"` // nickname | room | icon | draft | create | join | send
	Value string `json:"value,omitempty"`
}

// ServerEvent is pushed to the browser page for every view change.
type ServerEvent struct {
	Type    string            `json:"type"` // mounted | session | message | alert
	Session *chatview.Session `json:"session,omitempty"`
	Entry   *chatview.Entry   `json:"entry,omitempty"`
	Index   int               `json:"index,omitempty"`
	Alert   string            `json:"alert,omitempty"`
	Body    string            `json:"body,omitempty"`
}

const (
	maxNicknameLen = 24
	maxRoomIDLen   = 128
	maxIconLen     = 2048
	maxDraftLen    = 4000
)
