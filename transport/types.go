package transport

import "encoding/json"

// MessageType tags an Envelope with the kind of payload it carries.
type MessageType string

const (
	CreateSession     MessageType = "createSession"
	JoinSession       MessageType = "joinSession"
	SendMessage       MessageType = "sendMessage"
	SetTypingPresence MessageType = "setTypingPresence"
)

// Envelope is the frame exchanged with the room service in both directions.
type Envelope struct {
	Type       MessageType     `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	CallbackID string          `json:"callbackId,omitempty"`
}

// SessionChatMessage is the payload of an inbound sendMessage envelope.
type SessionChatMessage struct {
	Body            string `json:"body"`
	IsSystemMessage bool   `json:"isSystemMessage"`
	UserNickname    string `json:"userNickname,omitempty"`
	UserIcon        string `json:"userIcon,omitempty"`
	PermID          string `json:"permId,omitempty"`
	Timestamp       int64  `json:"timestamp,omitempty"`
}

// TypingMessageData is the payload of a setTypingPresence envelope.
type TypingMessageData struct {
	AnyoneTyping bool     `json:"anyoneTyping"`
	UsersTyping  []string `json:"usersTyping,omitempty"`
}

// UserSettings identifies the local user when creating or joining a room.
type UserSettings struct {
	UserNickname string `json:"userNickname"`
	UserIcon     string `json:"userIcon,omitempty"`
}

type createSessionData struct {
	ControlLock  bool         `json:"controlLock"`
	UserSettings UserSettings `json:"userSettings"`
}

type joinSessionData struct {
	SessionID    string       `json:"sessionId"`
	UserSettings UserSettings `json:"userSettings"`
}

// SendMessageData is the outbound payload of a chat message.
type SendMessageData struct {
	Body string `json:"body"`
}

// callbackResult is the data of a response envelope.
type callbackResult struct {
	SessionID    string `json:"sessionId,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Decode unmarshals the envelope data into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// NewEnvelope marshals data into an envelope of the given type.
func NewEnvelope(t MessageType, data any) (Envelope, error) {
	env := Envelope{Type: t}
	if data == nil {
		return env, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	env.Data = raw
	return env, nil
}
