//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=../mocks/mock_transport.go -package=mocks
package chatview

import (
	"context"

	"github.com/gosuda/room-chat/transport"
)

// Transport is the capability a View needs from the room service.
// *transport.Client implements it.
type Transport interface {
	CreateChatRoom(ctx context.Context, nickname, userIcon string) (string, error)
	JoinChatRoom(nickname, roomID, userIcon string) error
	SendMessage(t transport.MessageType, payload any) error
	Close() error
}

// Dialer opens a Transport that reports its events to h.
type Dialer func(ctx context.Context, h transport.Handler) (Transport, error)

// WebsocketDialer dials the room service at url with transport.Dial.
func WebsocketDialer(url string, opts ...transport.Option) Dialer {
	return func(ctx context.Context, h transport.Handler) (Transport, error) {
		c, err := transport.Dial(ctx, url, h, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
