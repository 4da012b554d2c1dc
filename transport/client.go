package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by calls made after the connection went away.
var ErrClosed = errors.New("transport: connection closed")

// RemoteError is a request rejected by the room service.
type RemoteError struct {
	Type    MessageType
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Type, e.Message)
}

// Client is one websocket connection to the room service.
type Client struct {
	conn    *websocket.Conn
	handler Handler
	log     zerolog.Logger
	opts    options

	send      chan Envelope
	done      chan struct{}
	closeOnce sync.Once
	local     atomic.Bool

	mu      sync.Mutex
	pending map[string]chan Envelope
}

// Dial connects to the room service at url and starts the client loops.
// h.OnReady is called from the read goroutine once the loops are running.
func Dial(ctx context.Context, url string, h Handler, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	conn, _, err := o.dialer.DialContext(ctx, url, o.header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn:    conn,
		handler: h,
		log:     o.log,
		opts:    o,
		send:    make(chan Envelope, sendBufferSize),
		done:    make(chan struct{}),
		pending: map[string]chan Envelope{},
	}
	go c.writeLoop()
	go c.readLoop()
	return c, nil
}

// CreateChatRoom asks the service for a new room and returns its id.
func (c *Client) CreateChatRoom(ctx context.Context, nickname, userIcon string) (string, error) {
	resp, err := c.request(ctx, CreateSession, createSessionData{
		UserSettings: UserSettings{UserNickname: nickname, UserIcon: userIcon},
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	var res callbackResult
	if err := resp.Decode(&res); err != nil {
		return "", fmt.Errorf("decode create session response: %w", err)
	}
	if res.ErrorMessage != "" {
		return "", &RemoteError{Type: CreateSession, Message: res.ErrorMessage}
	}
	if res.SessionID == "" {
		return "", &RemoteError{Type: CreateSession, Message: "empty session id"}
	}
	return res.SessionID, nil
}

// JoinChatRoom joins an existing room. The service does not acknowledge it.
func (c *Client) JoinChatRoom(nickname, roomID, userIcon string) error {
	return c.SendMessage(JoinSession, joinSessionData{
		SessionID:    roomID,
		UserSettings: UserSettings{UserNickname: nickname, UserIcon: userIcon},
	})
}

// SendMessage queues an envelope of type t carrying payload.
func (c *Client) SendMessage(t MessageType, payload any) error {
	env, err := NewEnvelope(t, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	return c.enqueue(ctx, env)
}

// Close sends a close frame and tears the connection down. Handler.OnClose
// is not called for a local close.
func (c *Client) Close() error {
	if c.local.Swap(true) {
		return nil
	}
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.shutdown()
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.log.Debug().Err(err).Msg("write close frame")
	}
	return nil
}

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) request(ctx context.Context, t MessageType, data any) (Envelope, error) {
	env, err := NewEnvelope(t, data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", t, err)
	}
	env.CallbackID = uuid.NewString()
	ch := make(chan Envelope, 1)
	c.mu.Lock()
	c.pending[env.CallbackID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, env.CallbackID)
		c.mu.Unlock()
	}()

	if err := c.enqueue(ctx, env); err != nil {
		return Envelope{}, err
	}
	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	case <-c.done:
		return Envelope{}, ErrClosed
	}
}

func (c *Client) enqueue(ctx context.Context, env Envelope) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- env:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) readLoop() {
	defer func() {
		c.shutdown()
		if !c.local.Load() {
			c.handler.OnClose()
		}
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait))
	})

	c.handler.OnReady()
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if !c.local.Load() {
				c.log.Debug().Err(err).Msg("read message")
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			c.log.Debug().Err(err).Msg("decode envelope")
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) dispatch(env Envelope) {
	if env.CallbackID != "" {
		c.mu.Lock()
		ch, ok := c.pending[env.CallbackID]
		c.mu.Unlock()
		if ok {
			select {
			case ch <- env:
			default:
			}
			return
		}
	}
	c.handler.OnMessage(env)
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(c.opts.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.log.Debug().Err(err).Str("type", string(env.Type)).Msg("write envelope")
				c.shutdown()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
