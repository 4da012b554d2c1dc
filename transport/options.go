package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 64
	maxMessageSize = 1 << 20
)

// Option configures Dial.
type Option func(*options)

type options struct {
	dialer       *websocket.Dialer
	header       http.Header
	log          zerolog.Logger
	pingInterval time.Duration
	pongWait     time.Duration
}

func defaultOptions() options {
	return options{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		log:          zerolog.Nop(),
		pingInterval: pingInterval,
		pongWait:     pongWait,
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

// WithHeader sets extra handshake headers (Origin, auth, ...).
func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithKeepalive overrides the ping interval and the pong deadline.
// The pong deadline must be longer than the ping interval.
func WithKeepalive(ping, pong time.Duration) Option {
	return func(o *options) {
		if ping > 0 && pong > ping {
			o.pingInterval = ping
			o.pongWait = pong
		}
	}
}
