package chatview_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosuda/room-chat/chatview"
)

func TestPresent(t *testing.T) {
	tests := []struct {
		name string
		msg  chatview.ChatMessage
		want chatview.Entry
	}{
		{
			name: "user message",
			msg:  chatview.ChatMessage{Body: "hi", UserNickname: "alice"},
			want: chatview.Entry{Align: chatview.AlignRight, Label: "alice", Body: "hi"},
		},
		{
			name: "system message",
			msg:  chatview.ChatMessage{Body: "hello", IsSystemMessage: true},
			want: chatview.Entry{Align: chatview.AlignLeft, Label: chatview.BotLabel, Body: "hello", Bot: true},
		},
		{
			name: "system message ignores sender fields",
			msg:  chatview.ChatMessage{Body: "x", IsSystemMessage: true, UserNickname: "alice", UserIcon: "https://example.com/a.png"},
			want: chatview.Entry{Align: chatview.AlignLeft, Label: chatview.BotLabel, Body: "x", Bot: true},
		},
		{
			name: "anonymous user with avatar",
			msg:  chatview.ChatMessage{Body: "yo", UserIcon: "https://example.com/a.png"},
			want: chatview.Entry{Align: chatview.AlignRight, Label: chatview.AnonymousLabel, Body: "yo", Avatar: "https://example.com/a.png"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, chatview.Present(tt.msg))
		})
	}
}

func TestSnapshot_Entries(t *testing.T) {
	s := chatview.Snapshot{Messages: []chatview.ChatMessage{
		{Body: "hello", IsSystemMessage: true},
		{Body: "hi", UserNickname: "alice"},
	}}
	entries := s.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "Bot", entries[0].Label)
	require.Equal(t, "alice", entries[1].Label)
}

func TestEntry_JSONAlignment(t *testing.T) {
	raw, err := json.Marshal(chatview.Present(chatview.ChatMessage{Body: "hi", UserNickname: "alice"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"align":"right","label":"alice","body":"hi","bot":false}`, string(raw))

	var e chatview.Entry
	require.NoError(t, json.Unmarshal([]byte(`{"align":"left","label":"Bot","body":"x","bot":true}`), &e))
	require.Equal(t, chatview.AlignLeft, e.Align)
	require.Error(t, json.Unmarshal([]byte(`{"align":"middle"}`), &e))
}
