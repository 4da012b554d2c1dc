package chatview_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gosuda/room-chat/chatview"
	"github.com/gosuda/room-chat/mocks"
	"github.com/gosuda/room-chat/transport"
)

type eventLog struct {
	mu     sync.Mutex
	events []chatview.Event
}

func (l *eventLog) listen(ev chatview.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) alerts() []chatview.Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []chatview.Alert
	for _, ev := range l.events {
		if a, ok := ev.(chatview.Alert); ok {
			out = append(out, a)
		}
	}
	return out
}

func (l *eventLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func dialerFor(tr chatview.Transport) chatview.Dialer {
	return func(context.Context, transport.Handler) (chatview.Transport, error) {
		return tr, nil
	}
}

func mountedView(t *testing.T) (*chatview.View, *mocks.MockTransport, *eventLog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	events := &eventLog{}
	v := chatview.New(chatview.WithListener(events.listen))
	require.NoError(t, v.Mount(context.Background(), dialerFor(tr)))
	return v, tr, events
}

func chatEnvelope(t *testing.T, m chatview.ChatMessage) transport.Envelope {
	t.Helper()
	env, err := transport.NewEnvelope(transport.SendMessage, m)
	require.NoError(t, err)
	return env
}

func TestView_AppendsChatMessagesInArrivalOrder(t *testing.T) {
	req := require.New(t)
	v, _, events := mountedView(t)

	want := []chatview.ChatMessage{
		{Body: "welcome", IsSystemMessage: true},
		{Body: "hi", UserNickname: "alice"},
		{Body: "hey", UserNickname: "bob", UserIcon: "https://example.com/bob.png"},
	}
	for _, m := range want {
		v.OnMessage(chatEnvelope(t, m))
	}

	req.Equal(want, v.Snapshot().Messages)
	req.Len(events.events, 3)
	for i, ev := range events.events {
		added, ok := ev.(chatview.MessageAdded)
		req.True(ok)
		req.Equal(i, added.Index)
		req.Equal(want[i], added.Message)
	}
}

func TestView_DropsOtherMessageKinds(t *testing.T) {
	req := require.New(t)
	v, _, events := mountedView(t)

	typing, err := transport.NewEnvelope(transport.SetTypingPresence, transport.TypingMessageData{
		AnyoneTyping: true,
		UsersTyping:  []string{"alice"},
	})
	req.NoError(err)
	v.OnMessage(typing)
	v.OnMessage(transport.Envelope{Type: "somethingElse"})
	v.OnMessage(transport.Envelope{Type: transport.SendMessage, Data: []byte(`{"body":`)})

	req.Empty(v.Snapshot().Messages)
	req.Zero(events.count())
}

func TestView_SendMessage_NoOps(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		v, _, events := mountedView(t)
		v.SetDraft("keep")
		before := events.count()

		require.NoError(t, v.SendMessage(""))
		require.Equal(t, "keep", v.Snapshot().Session.Draft)
		require.Equal(t, before, events.count())
	})
	t.Run("no transport", func(t *testing.T) {
		events := &eventLog{}
		v := chatview.New(chatview.WithListener(events.listen))
		v.SetDraft("draft")
		before := events.count()

		require.NoError(t, v.SendMessage("draft"))
		require.Equal(t, "draft", v.Snapshot().Session.Draft)
		require.Equal(t, before, events.count())
	})
}

func TestView_SendMessage_ClearsDraft(t *testing.T) {
	req := require.New(t)
	v, tr, _ := mountedView(t)
	v.SetDraft("hi there")

	tr.EXPECT().
		SendMessage(transport.SendMessage, transport.SendMessageData{Body: "hi there"}).
		Return(nil).
		Times(1)

	req.NoError(v.SendDraft())
	req.Empty(v.Snapshot().Session.Draft)
}

func TestView_SendMessage_FailureKeepsDraft(t *testing.T) {
	req := require.New(t)
	v, tr, events := mountedView(t)
	v.SetDraft("hi")

	tr.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(transport.ErrClosed)

	err := v.SendMessage("hi")
	req.ErrorIs(err, transport.ErrClosed)
	req.Equal("hi", v.Snapshot().Session.Draft)
	req.Len(events.alerts(), 1)
	req.Equal(chatview.AlertSendFailed, events.alerts()[0].Kind)
}

func TestView_SendMessage_DoesNotBlockViewWhileSending(t *testing.T) {
	req := require.New(t)
	v, tr, _ := mountedView(t)
	v.SetDraft("slow")

	entered := make(chan struct{})
	release := make(chan struct{})
	tr.EXPECT().SendMessage(transport.SendMessage, transport.SendMessageData{Body: "slow"}).
		DoAndReturn(func(transport.MessageType, any) error {
			close(entered)
			<-release
			return nil
		})

	sent := make(chan error, 1)
	go func() { sent <- v.SendMessage("slow") }()
	<-entered

	// the view stays usable while the transport call is in flight
	env := chatEnvelope(t, chatview.ChatMessage{Body: "meanwhile", UserNickname: "bob"})
	done := make(chan struct{})
	go func() {
		_ = v.Snapshot()
		v.OnMessage(env)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		close(release)
		t.Fatal("view blocked during send")
	}

	close(release)
	req.NoError(<-sent)
	snap := v.Snapshot()
	req.Empty(snap.Session.Draft)
	req.Len(snap.Messages, 1)
}

func TestView_SendMessage_UnmountedWhileSending(t *testing.T) {
	req := require.New(t)
	v, tr, events := mountedView(t)
	v.SetDraft("late")

	entered := make(chan struct{})
	release := make(chan struct{})
	tr.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(transport.MessageType, any) error {
			close(entered)
			<-release
			return nil
		})
	tr.EXPECT().Close().Return(nil)

	sent := make(chan error, 1)
	go func() { sent <- v.SendMessage("late") }()
	<-entered
	req.NoError(v.Unmount())
	before := events.count()
	close(release)

	req.ErrorIs(<-sent, chatview.ErrUnmounted)
	req.Equal("late", v.Snapshot().Session.Draft)
	req.Equal(before, events.count())
}

func TestView_JoinRoom(t *testing.T) {
	t.Run("empty room id", func(t *testing.T) {
		v, _, _ := mountedView(t)
		require.NoError(t, v.JoinRoom("alice", "", ""))
	})
	t.Run("no transport", func(t *testing.T) {
		v := chatview.New()
		require.NoError(t, v.JoinRoom("alice", "room-1", ""))
	})
	t.Run("joins", func(t *testing.T) {
		v, tr, _ := mountedView(t)
		tr.EXPECT().JoinChatRoom("alice", "room-1", "https://example.com/a.png").Return(nil)
		require.NoError(t, v.JoinRoom("alice", "room-1", "https://example.com/a.png"))
	})
	t.Run("transport error", func(t *testing.T) {
		v, tr, _ := mountedView(t)
		tr.EXPECT().JoinChatRoom(gomock.Any(), gomock.Any(), gomock.Any()).Return(transport.ErrClosed)
		require.ErrorIs(t, v.JoinRoom("alice", "room-1", ""), transport.ErrClosed)
	})
}

func TestView_CreateRoom_StoresRoomID(t *testing.T) {
	req := require.New(t)
	v, tr, events := mountedView(t)

	tr.EXPECT().CreateChatRoom(gomock.Any(), "alice", "").Return("room-42", nil)

	roomID, err := v.CreateRoom(context.Background(), "alice", "")
	req.NoError(err)
	req.Equal("room-42", roomID)
	req.Equal("room-42", v.Snapshot().Session.RoomID)

	req.Len(events.events, 1)
	changed, ok := events.events[0].(chatview.SessionChanged)
	req.True(ok)
	req.Equal("room-42", changed.Session.RoomID)
}

func TestView_CreateRoom_FailureIsSurfaced(t *testing.T) {
	req := require.New(t)
	v, tr, events := mountedView(t)
	v.SetRoomID("previous")
	rejected := &transport.RemoteError{Type: transport.CreateSession, Message: "nickname required"}

	tr.EXPECT().CreateChatRoom(gomock.Any(), "", "").Return("", rejected)

	_, err := v.CreateRoom(context.Background(), "", "")
	var remote *transport.RemoteError
	req.ErrorAs(err, &remote)
	req.Equal("previous", v.Snapshot().Session.RoomID)

	alerts := events.alerts()
	req.Len(alerts, 1)
	req.Equal(chatview.AlertRoomCreateFailed, alerts[0].Kind)
	req.ErrorIs(alerts[0].Err, rejected)
}

func TestView_CreateRoom_NoTransport(t *testing.T) {
	v := chatview.New()
	_, err := v.CreateRoom(context.Background(), "alice", "")
	require.ErrorIs(t, err, chatview.ErrNoTransport)
}

func TestView_CreateRoom_DiscardedAfterUnmount(t *testing.T) {
	req := require.New(t)
	v, tr, events := mountedView(t)

	tr.EXPECT().Close().Return(nil)
	tr.EXPECT().CreateChatRoom(gomock.Any(), "alice", "").
		DoAndReturn(func(context.Context, string, string) (string, error) {
			req.NoError(v.Unmount())
			return "room-42", nil
		})

	_, err := v.CreateRoom(context.Background(), "alice", "")
	req.ErrorIs(err, chatview.ErrUnmounted)
	req.Empty(v.Snapshot().Session.RoomID)
	req.Zero(events.count())
}

func TestView_Mount_OncePerLifetime(t *testing.T) {
	req := require.New(t)
	dials := 0
	failing := func(context.Context, transport.Handler) (chatview.Transport, error) {
		dials++
		return nil, errors.New("refused")
	}
	v := chatview.New()

	req.Error(v.Mount(context.Background(), failing))
	req.ErrorIs(v.Mount(context.Background(), failing), chatview.ErrAlreadyMounted)
	req.Equal(1, dials)

	// no handle was acquired, so input is a no-op
	req.NoError(v.SendMessage("hi"))
}

func TestView_OnReady_ConnectsOnce(t *testing.T) {
	req := require.New(t)
	v, _, events := mountedView(t)

	v.OnReady()
	v.OnReady()

	req.True(v.Snapshot().Session.Connected)
	req.Equal(1, events.count())
}

func TestView_OnClose_AlertsOnce(t *testing.T) {
	req := require.New(t)
	v, _, events := mountedView(t)

	v.OnClose()
	v.OnClose()

	req.True(v.Snapshot().Session.Closed)
	alerts := events.alerts()
	req.Len(alerts, 1)
	req.Equal(chatview.AlertConnectionClosed, alerts[0].Kind)
	req.Equal("Connection closed", alerts[0].Text)
}

func TestView_Unmount_SilencesTransport(t *testing.T) {
	req := require.New(t)
	v, tr, events := mountedView(t)
	tr.EXPECT().Close().Return(nil).Times(1)

	req.NoError(v.Unmount())
	req.NoError(v.Unmount())

	v.OnClose()
	v.OnMessage(chatEnvelope(t, chatview.ChatMessage{Body: "late"}))
	req.NoError(v.SendMessage("after"))

	req.Zero(events.count())
	req.Empty(v.Snapshot().Messages)
}

func TestView_Setters_EmitOnlyOnChange(t *testing.T) {
	req := require.New(t)
	events := &eventLog{}
	v := chatview.New(
		chatview.WithListener(events.listen),
		chatview.WithSession(chatview.Session{Nickname: "alice", Connected: true}),
	)
	req.False(v.Snapshot().Session.Connected)

	v.SetNickname("alice")
	req.Zero(events.count())

	v.SetNickname("bob")
	v.SetRoomID("room-1")
	v.SetUserIcon("https://example.com/b.png")
	v.SetDraft("typing")
	req.Equal(4, events.count())

	s := v.Snapshot().Session
	req.Equal(chatview.Session{
		Nickname: "bob",
		RoomID:   "room-1",
		UserIcon: "https://example.com/b.png",
		Draft:    "typing",
	}, s)
}

func TestView_WebsocketDialer_Error(t *testing.T) {
	v := chatview.New()
	err := v.Mount(context.Background(), chatview.WebsocketDialer("ws://127.0.0.1:1/ws"))
	require.Error(t, err)
}
