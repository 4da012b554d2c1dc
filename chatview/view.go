// Package chatview holds the state of a room chat screen and translates
// between user input and a room Transport.
//
// A View owns at most one Transport for its whole lifetime. User input calls
// (SetNickname, CreateRoom, SendMessage, ...) and transport callbacks
// (OnReady, OnClose, OnMessage) may come from different goroutines; every
// state change is serialized and reported to the Listener in order.
package chatview

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gosuda/room-chat/transport"
)

// ChatMessage is one received chat line.
type ChatMessage = transport.SessionChatMessage

// Session is the user-editable state of the screen plus connection flags.
type Session struct {
	RoomID    string `json:"roomId"`
	Nickname  string `json:"nickname"`
	UserIcon  string `json:"userIcon,omitempty"`
	Draft     string `json:"draft"`
	Connected bool   `json:"connected"`
	Closed    bool   `json:"closed"`
}

// Snapshot is a consistent copy of a View's state.
type Snapshot struct {
	Session  Session
	Messages []ChatMessage
}

// View is the state machine behind a chat screen.
type View struct {
	log      zerolog.Logger
	listener Listener

	mu       sync.Mutex
	mounted  bool
	released bool
	handle   Transport
	session  Session
	messages []ChatMessage
}

var _ transport.Handler = (*View)(nil)

// Option configures a View.
type Option func(*View)

// WithLogger sets the view's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(v *View) { v.log = l }
}

// WithListener registers the listener notified of every change.
func WithListener(l Listener) Option {
	return func(v *View) { v.listener = l }
}

// WithSession seeds the editable session fields (nickname, icon, ...).
// Connection flags are ignored.
func WithSession(s Session) Option {
	return func(v *View) {
		s.Connected = false
		s.Closed = false
		v.session = s
	}
}

// New returns an unmounted View.
func New(opts ...Option) *View {
	v := &View{
		log:      zerolog.Nop(),
		messages: make([]ChatMessage, 0, 64),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount acquires the view's transport. It may be called once per view; a
// failed dial is not retried.
func (v *View) Mount(ctx context.Context, dial Dialer) error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return ErrAlreadyMounted
	}
	v.mounted = true
	v.mu.Unlock()

	h, err := dial(ctx, v)
	if err != nil {
		return fmt.Errorf("connect transport: %w", err)
	}

	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		_ = h.Close()
		return ErrUnmounted
	}
	v.handle = h
	v.mu.Unlock()
	v.log.Debug().Msg("transport mounted")
	return nil
}

// Unmount releases the transport. Events that arrive afterwards are ignored.
func (v *View) Unmount() error {
	v.mu.Lock()
	h := v.handle
	v.handle = nil
	v.released = true
	v.mu.Unlock()
	if h == nil {
		return nil
	}
	if err := h.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

// CreateRoom asks the transport for a new room and stores its id in the
// session. Failures are returned and also raised as AlertRoomCreateFailed.
// A result that arrives after Unmount is discarded.
func (v *View) CreateRoom(ctx context.Context, nickname, userIcon string) (string, error) {
	v.mu.Lock()
	h := v.handle
	v.mu.Unlock()
	if h == nil {
		return "", ErrNoTransport
	}

	roomID, err := h.CreateChatRoom(ctx, nickname, userIcon)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle != h {
		return "", ErrUnmounted
	}
	if err != nil {
		v.log.Warn().Err(err).Str("nickname", nickname).Msg("create room failed")
		v.emit(Alert{Kind: AlertRoomCreateFailed, Text: "Could not create room", Err: err})
		return "", fmt.Errorf("create room: %w", err)
	}
	v.log.Info().Str("room", roomID).Msg("room created")
	v.session.RoomID = roomID
	v.emit(SessionChanged{Session: v.session})
	return roomID, nil
}

// JoinRoom joins roomID. Without a transport or a room id it does nothing.
func (v *View) JoinRoom(nickname, roomID, userIcon string) error {
	v.mu.Lock()
	h := v.handle
	v.mu.Unlock()
	if h == nil || roomID == "" {
		return nil
	}
	if err := h.JoinChatRoom(nickname, roomID, userIcon); err != nil {
		v.log.Warn().Err(err).Str("room", roomID).Msg("join room failed")
		return fmt.Errorf("join room %s: %w", roomID, err)
	}
	v.log.Info().Str("room", roomID).Msg("join requested")
	return nil
}

// SendMessage sends body as a chat message and clears the draft without
// waiting for delivery. An empty body or a missing transport is a no-op.
// The transport is called without holding the view lock.
func (v *View) SendMessage(body string) error {
	v.mu.Lock()
	h := v.handle
	v.mu.Unlock()
	if h == nil || body == "" {
		return nil
	}

	err := h.SendMessage(transport.SendMessage, transport.SendMessageData{Body: body})

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle != h {
		return ErrUnmounted
	}
	if err != nil {
		v.log.Warn().Err(err).Msg("send message failed")
		v.emit(Alert{Kind: AlertSendFailed, Text: "Message not sent", Err: err})
		return fmt.Errorf("send message: %w", err)
	}
	v.session.Draft = ""
	v.emit(SessionChanged{Session: v.session})
	return nil
}

// SendDraft sends the current draft.
func (v *View) SendDraft() error {
	v.mu.Lock()
	body := v.session.Draft
	v.mu.Unlock()
	return v.SendMessage(body)
}

func (v *View) SetNickname(s string) { v.update(func(ss *Session) { ss.Nickname = s }) }
func (v *View) SetRoomID(s string)   { v.update(func(ss *Session) { ss.RoomID = s }) }
func (v *View) SetUserIcon(s string) { v.update(func(ss *Session) { ss.UserIcon = s }) }
func (v *View) SetDraft(s string)    { v.update(func(ss *Session) { ss.Draft = s }) }

func (v *View) update(fn func(*Session)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	before := v.session
	fn(&v.session)
	if v.session != before {
		v.emit(SessionChanged{Session: v.session})
	}
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	msgs := make([]ChatMessage, len(v.messages))
	copy(msgs, v.messages)
	return Snapshot{Session: v.session, Messages: msgs}
}

// OnReady marks the view connected. Only the first call has an effect.
func (v *View) OnReady() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released || v.session.Connected {
		return
	}
	v.session.Connected = true
	v.log.Debug().Msg("transport ready")
	v.emit(SessionChanged{Session: v.session})
}

// OnClose raises a single AlertConnectionClosed. There is no reconnect.
func (v *View) OnClose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released || v.session.Closed {
		return
	}
	v.session.Closed = true
	v.log.Warn().Msg("transport closed")
	v.emit(SessionChanged{Session: v.session})
	v.emit(Alert{Kind: AlertConnectionClosed, Text: "Connection closed"})
}

// OnMessage appends chat messages. Envelopes of any other type are dropped.
func (v *View) OnMessage(env transport.Envelope) {
	if env.Type != transport.SendMessage {
		v.log.Debug().Str("type", string(env.Type)).Msg("ignored envelope")
		return
	}
	var msg ChatMessage
	if err := env.Decode(&msg); err != nil {
		v.log.Debug().Err(err).Msg("drop malformed chat message")
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return
	}
	v.messages = append(v.messages, msg)
	v.emit(MessageAdded{Index: len(v.messages) - 1, Message: msg})
}

func (v *View) emit(ev Event) {
	if v.listener != nil {
		v.listener(ev)
	}
}
