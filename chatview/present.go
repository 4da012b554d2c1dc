package chatview

import (
	"fmt"

	"github.com/samber/lo"
)

const (
	BotLabel       = "Bot"
	AnonymousLabel = "Anonymous"
)

// Align is the side of the panel a message is drawn on.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

func (a Align) String() string {
	if a == AlignRight {
		return "right"
	}
	return "left"
}

func (a Align) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Align) UnmarshalText(b []byte) error {
	switch string(b) {
	case "left":
		*a = AlignLeft
	case "right":
		*a = AlignRight
	default:
		return fmt.Errorf("unknown alignment %q", b)
	}
	return nil
}

// Entry is how one message is drawn: system messages sit on the left behind
// a bot marker, user messages on the right with an optional avatar.
type Entry struct {
	Align  Align  `json:"align"`
	Label  string `json:"label"`
	Body   string `json:"body"`
	Bot    bool   `json:"bot"`
	Avatar string `json:"avatar,omitempty"`
}

// Present maps a message to its Entry.
func Present(m ChatMessage) Entry {
	if m.IsSystemMessage {
		return Entry{Align: AlignLeft, Label: BotLabel, Body: m.Body, Bot: true}
	}
	label := m.UserNickname
	if label == "" {
		label = AnonymousLabel
	}
	return Entry{Align: AlignRight, Label: label, Body: m.Body, Avatar: m.UserIcon}
}

// Entries presents every message of the snapshot in display order.
func (s Snapshot) Entries() []Entry {
	return lo.Map(s.Messages, func(m ChatMessage, _ int) Entry {
		return Present(m)
	})
}
