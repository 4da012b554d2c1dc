package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/gosuda/room-chat/chatview"
)

const termEventBuffer = 256

type focusField int

const (
	focusNickname focusField = iota
	focusRoom
	focusDraft
	focusCount
)

type (
	viewEventMsg struct{ ev chatview.Event }
	mountedMsg   struct{ err error }
	joinedMsg    struct{ err error }
)

type roomCreatedMsg struct {
	roomID string
	err    error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	botStyle    = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("236"))
	userStyle   = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("24")).Foreground(lipgloss.Color("255"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// termModel is the bubbletea front-end over one chat view.
type termModel struct {
	ctx    context.Context
	dial   chatview.Dialer
	view   *chatview.View
	events chan chatview.Event

	inputs   [focusCount]textinput.Model
	focus    focusField
	viewport viewport.Model

	session chatview.Session
	entries []chatview.Entry
	banner  string
}

func newTermModel(ctx context.Context, dial chatview.Dialer, initial chatview.Session) termModel {
	events := make(chan chatview.Event, termEventBuffer)
	view := chatview.New(
		chatview.WithLogger(log.Logger),
		chatview.WithSession(initial),
		chatview.WithListener(func(ev chatview.Event) {
			select {
			case events <- ev:
			default:
				log.Warn().Msg("[room-chat] terminal event buffer full; dropping event")
			}
		}),
	)

	m := termModel{
		ctx:      ctx,
		dial:     dial,
		view:     view,
		events:   events,
		viewport: viewport.New(80, 12),
	}
	m.session = view.Snapshot().Session
	placeholders := [focusCount]string{"Nickname", "Room ID", "Type a message..."}
	limits := [focusCount]int{maxNicknameLen, maxRoomIDLen, maxDraftLen}
	values := [focusCount]string{m.session.Nickname, m.session.RoomID, m.session.Draft}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Prompt = "> "
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.setFocus(focusNickname)
	if initial.Nickname != "" {
		m.setFocus(focusRoom)
	}
	return m
}

// runTermUI runs the terminal front-end until the user quits or ctx ends.
func runTermUI(ctx context.Context, dial chatview.Dialer, initial chatview.Session) error {
	m := newTermModel(ctx, dial, initial)
	defer func() {
		if err := m.view.Unmount(); err != nil {
			log.Debug().Err(err).Msg("[room-chat] unmount view")
		}
	}()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

func (m termModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.mount(), waitForEvent(m.events))
}

func (m termModel) mount() tea.Cmd {
	return func() tea.Msg {
		return mountedMsg{err: m.view.Mount(m.ctx, m.dial)}
	}
}

func waitForEvent(events <-chan chatview.Event) tea.Cmd {
	return func() tea.Msg {
		return viewEventMsg{ev: <-events}
	}
}

func (m termModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		// header, three inputs, banner, help
		m.viewport.Height = max(msg.Height-8, 3)
		for i := range m.inputs {
			m.inputs[i].Width = max(msg.Width-4, 10)
		}
		m.refreshViewport()
		return m, nil

	case viewEventMsg:
		m.apply(msg.ev)
		return m, waitForEvent(m.events)

	case mountedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("[room-chat] mount transport")
			m.banner = "Could not reach the room service"
		}
		return m, nil

	case roomCreatedMsg:
		switch {
		case msg.err == nil:
			m.inputs[focusRoom].SetValue(msg.roomID)
		case errors.Is(msg.err, chatview.ErrNoTransport):
			m.banner = "Not connected"
		}
		return m, nil

	case joinedMsg:
		if msg.err != nil {
			m.banner = "Could not join room"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if err := m.view.Unmount(); err != nil {
				log.Debug().Err(err).Msg("[room-chat] unmount view")
			}
			return m, tea.Quit
		case tea.KeyEsc:
			m.banner = ""
			return m, nil
		case tea.KeyTab:
			m.setFocus((m.focus + 1) % focusCount)
			return m, nil
		case tea.KeyShiftTab:
			m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, nil
		case tea.KeyCtrlN:
			return m, m.createRoom()
		case tea.KeyCtrlJ:
			return m, m.joinRoom()
		case tea.KeyEnter:
			switch m.focus {
			case focusNickname:
				m.setFocus(focusRoom)
				return m, nil
			case focusRoom:
				return m, m.joinRoom()
			default:
				_ = m.view.SendDraft()
				return m, nil
			}
		}
		return m.updateInput(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateInput feeds a key to the focused input and mirrors its value into
// the view.
func (m termModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	ti := &m.inputs[m.focus]
	before := ti.Value()
	*ti, cmd = ti.Update(msg)
	if after := ti.Value(); after != before {
		switch m.focus {
		case focusNickname:
			m.view.SetNickname(sanitizeInput(after, maxNicknameLen))
		case focusRoom:
			m.view.SetRoomID(sanitizeInput(after, maxRoomIDLen))
		case focusDraft:
			m.view.SetDraft(sanitizeInput(after, maxDraftLen))
		}
	}
	return m, cmd
}

func (m termModel) createRoom() tea.Cmd {
	s := m.view.Snapshot().Session
	ctx := m.ctx
	view := m.view
	return func() tea.Msg {
		roomID, err := view.CreateRoom(ctx, s.Nickname, s.UserIcon)
		return roomCreatedMsg{roomID: roomID, err: err}
	}
}

func (m termModel) joinRoom() tea.Cmd {
	s := m.view.Snapshot().Session
	view := m.view
	return func() tea.Msg {
		return joinedMsg{err: view.JoinRoom(s.Nickname, s.RoomID, s.UserIcon)}
	}
}

// apply folds one view event into the model. Messages are re-read from the
// view so a dropped event never leaves the list stale.
func (m *termModel) apply(ev chatview.Event) {
	switch e := ev.(type) {
	case chatview.SessionChanged:
		m.session = e.Session
		m.syncInputs()
	case chatview.MessageAdded:
		m.entries = lo.Map(m.view.Snapshot().Entries(), func(entry chatview.Entry, _ int) chatview.Entry {
			return termEntry(entry)
		})
		m.refreshViewport()
	case chatview.Alert:
		m.banner = e.Text
	}
}

// syncInputs copies session values into inputs the user is not editing. A
// cleared draft always wins.
func (m *termModel) syncInputs() {
	values := [focusCount]string{m.session.Nickname, m.session.RoomID, m.session.Draft}
	for i, v := range values {
		f := focusField(i)
		if f == m.focus && v != "" {
			continue
		}
		if m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
		}
	}
}

func (m *termModel) setFocus(f focusField) {
	m.focus = f
	for i := range m.inputs {
		if focusField(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *termModel) refreshViewport() {
	m.viewport.SetContent(renderEntries(m.entries, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderEntries(entries []chatview.Entry, width int) string {
	if width <= 0 {
		width = 80
	}
	bubbleWidth := max(width*4/5, 10)
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderEntry(e, width, bubbleWidth))
	}
	return b.String()
}

func renderEntry(e chatview.Entry, width, bubbleWidth int) string {
	label := labelStyle.Render(e.Label)
	if e.Bot {
		label = "🤖 " + label
		bubble := botStyle.MaxWidth(bubbleWidth).Render(e.Body)
		return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
	}
	bubble := userStyle.MaxWidth(bubbleWidth).Render(e.Body)
	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
}

func (m termModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Real-Time Chat"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteByte('\n')
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteByte('\n')
		if focusField(i) == focusRoom {
			b.WriteString(m.viewport.View())
			b.WriteByte('\n')
		}
	}
	if m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner + "  (esc)"))
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render("tab focus • ctrl+n create • ctrl+j join • enter send • ctrl+c quit"))
	return b.String()
}

func (m termModel) statusLine() string {
	state := "connecting"
	switch {
	case m.session.Closed:
		state = "disconnected"
	case m.session.Connected:
		state = "connected"
	}
	if m.session.RoomID != "" {
		return state + " • room " + m.session.RoomID
	}
	return state
}
