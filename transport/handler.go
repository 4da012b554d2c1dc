// Package transport is a websocket client for the room chat service.
//
// A Client owns one connection. Room creation is a request/response exchange
// correlated by callback id; joining and sending are fire-and-forget writes.
// Connection lifecycle and every uncorrelated envelope are reported to a
// Handler from the client's read goroutine, one call at a time.
package transport

// Handler receives connection events. Calls are made sequentially from the
// client's read goroutine.
type Handler interface {
	// OnReady is called once the connection is established.
	OnReady()
	// OnClose is called once when the connection drops. It is not called
	// after a local Close.
	OnClose()
	// OnMessage is called for every inbound envelope that is not a
	// response to a pending request.
	OnMessage(env Envelope)
}

// HandlerFuncs adapts plain functions to a Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Ready   func()
	Close   func()
	Message func(Envelope)
}

func (h HandlerFuncs) OnReady() {
	if h.Ready != nil {
		h.Ready()
	}
}

func (h HandlerFuncs) OnClose() {
	if h.Close != nil {
		h.Close()
	}
}

func (h HandlerFuncs) OnMessage(env Envelope) {
	if h.Message != nil {
		h.Message(env)
	}
}
