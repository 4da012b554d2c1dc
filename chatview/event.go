package chatview

// Event is delivered to a Listener after every state change.
type Event interface {
	isEvent()
}

// SessionChanged carries the session after a field changed.
type SessionChanged struct {
	Session Session
}

// MessageAdded carries a message appended at Index.
type MessageAdded struct {
	Index   int
	Message ChatMessage
}

// AlertKind classifies user-facing notifications.
type AlertKind int

const (
	AlertConnectionClosed AlertKind = iota + 1
	AlertRoomCreateFailed
	AlertSendFailed
)

func (k AlertKind) String() string {
	switch k {
	case AlertConnectionClosed:
		return "connection-closed"
	case AlertRoomCreateFailed:
		return "room-create-failed"
	case AlertSendFailed:
		return "send-failed"
	default:
		return "unknown"
	}
}

// Alert is a dismissible notification for the user.
type Alert struct {
	Kind AlertKind
	Text string
	Err  error
}

func (SessionChanged) isEvent() {}
func (MessageAdded) isEvent()   {}
func (Alert) isEvent()          {}

// Listener observes a View. It is called with the view's lock held, so it
// must return quickly and must not call back into the View.
type Listener func(Event)
