package main

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/room-chat/chatview"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 64
)

// bridge connects one browser tab to one mounted chat view.
type bridge struct {
	conn   *websocket.Conn
	view   *chatview.View
	log    zerolog.Logger
	send   chan ServerEvent
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

func newBridge(conn *websocket.Conn, remote string, defaults chatview.Session) *bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &bridge{
		conn:   conn,
		log:    log.With().Str("remote", remote).Logger(),
		send:   make(chan ServerEvent, sendBufferSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	b.view = chatview.New(
		chatview.WithLogger(b.log),
		chatview.WithListener(b.onEvent),
		chatview.WithSession(defaults),
	)
	return b
}

// run mounts the view and serves the tab until it disconnects.
func (b *bridge) run(dial chatview.Dialer) {
	defer b.close()
	go b.writeLoop()

	s := b.view.Snapshot().Session
	b.push(ServerEvent{Type: "session", Session: &s})
	go func() {
		if err := b.view.Mount(b.ctx, dial); err != nil {
			b.log.Warn().Err(err).Msg("[room-chat] mount transport")
			b.push(ServerEvent{Type: "alert", Alert: "connect-failed", Body: "Could not reach the room service"})
			return
		}
		b.push(ServerEvent{Type: "mounted"})
	}()
	b.readLoop()
}

func (b *bridge) readLoop() {
	b.conn.SetReadLimit(1 << 16)
	_ = b.conn.SetReadDeadline(time.Now().Add(pongWait))
	b.conn.SetPongHandler(func(string) error {
		return b.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := b.conn.ReadMessage()
		if err != nil {
			b.log.Debug().Err(err).Msg("read message")
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			b.log.Debug().Err(err).Msg("decode client message")
			continue
		}
		b.route(msg)
	}
}

func (b *bridge) route(msg ClientMessage) {
	switch msg.Type {
	case "nickname":
		b.view.SetNickname(sanitizeInput(msg.Value, maxNicknameLen))
	case "room":
		b.view.SetRoomID(sanitizeInput(msg.Value, maxRoomIDLen))
	case "icon":
		b.view.SetUserIcon(sanitizeAvatar(sanitizeInput(msg.Value, maxIconLen)))
	case "draft":
		b.view.SetDraft(sanitizeInput(msg.Value, maxDraftLen))
	case "create":
		s := b.view.Snapshot().Session
		go func() {
			// failures reach the page as an alert event
			_, _ = b.view.CreateRoom(b.ctx, s.Nickname, s.UserIcon)
		}()
	case "join":
		s := b.view.Snapshot().Session
		if err := b.view.JoinRoom(s.Nickname, s.RoomID, s.UserIcon); err != nil {
			b.push(ServerEvent{Type: "alert", Alert: "join-failed", Body: "Could not join room"})
		}
	case "send":
		if msg.Value != "" {
			b.view.SetDraft(sanitizeInput(msg.Value, maxDraftLen))
		}
		_ = b.view.SendDraft()
	default:
		b.log.Debug().Str("type", msg.Type).Msg("unknown client message")
	}
}

// onEvent runs under the view lock; it only queues.
func (b *bridge) onEvent(ev chatview.Event) {
	switch e := ev.(type) {
	case chatview.SessionChanged:
		s := e.Session
		b.push(ServerEvent{Type: "session", Session: &s})
	case chatview.MessageAdded:
		entry := pageEntry(chatview.Present(e.Message))
		b.push(ServerEvent{Type: "message", Index: e.Index, Entry: &entry})
	case chatview.Alert:
		b.push(ServerEvent{Type: "alert", Alert: e.Kind.String(), Body: e.Text})
	}
}

func (b *bridge) push(ev ServerEvent) {
	if b.closed.Load() {
		return
	}
	select {
	case b.send <- ev:
	default:
		b.log.Warn().Str("type", ev.Type).Msg("browser send buffer full; dropping event")
	}
}

func (b *bridge) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-b.send:
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := writeJSON(b.conn, ev); err != nil {
				b.log.Debug().Err(err).Msg("write json")
				_ = b.conn.Close()
				return
			}
		case <-ticker.C:
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = b.conn.Close()
				return
			}
		case <-b.done:
			return
		}
	}
}

// shutdown asks the browser to go away; run returns once it does.
func (b *bridge) shutdown() {
	_ = b.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
		time.Now().Add(writeWait))
	_ = b.conn.Close()
}

func (b *bridge) close() {
	if b.closed.Swap(true) {
		return
	}
	b.cancel()
	if err := b.view.Unmount(); err != nil {
		b.log.Debug().Err(err).Msg("unmount view")
	}
	close(b.done)
	_ = b.conn.Close()
}

// writeJSON writes v without HTML escaping; bodies are already sanitized.
func writeJSON(conn *websocket.Conn, v interface{}) error {
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return w.Close()
}

// sessionSet tracks live bridges for shutdown.
type sessionSet struct {
	mu      sync.Mutex
	bridges map[*bridge]struct{}
	wg      sync.WaitGroup
}

func newSessionSet() *sessionSet {
	return &sessionSet{bridges: map[*bridge]struct{}{}}
}

func (s *sessionSet) serve(b *bridge, dial chatview.Dialer) {
	s.mu.Lock()
	s.bridges[b] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.bridges, b)
		s.mu.Unlock()
		s.wg.Done()
	}()
	b.run(dial)
}

// closeAll force-closes every browser connection.
func (s *sessionSet) closeAll() {
	s.mu.Lock()
	bridges := make([]*bridge, 0, len(s.bridges))
	for b := range s.bridges {
		bridges = append(bridges, b)
	}
	s.mu.Unlock()
	for _, b := range bridges {
		b.shutdown()
	}
}

// wait blocks until every bridge has returned.
func (s *sessionSet) wait() {
	s.wg.Wait()
}

func (s *sessionSet) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bridges)
}
