// Package tui renders the chat client: a scrolling message log above a
// single-line composer, fed by two event sources (the relay's broadcast
// stream and the keyboard) reconciled through one Bubble Tea update loop.
package tui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oPisiti/Chatey/internal/chat"
	"github.com/oPisiti/Chatey/internal/client"
)

// Transport is the connection surface the model drives. *client.Conn
// satisfies it; tests substitute a fake.
type Transport interface {
	Announce(name string) error
	Send(text string) error
	Events() <-chan client.Event
	Close() error
}

type phase int

const (
	phaseName phase = iota
	phaseChat
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	presenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	alertStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Model holds the scrollback log and the in-progress input buffer. The
// update loop processes exactly one event per pass and performs no network
// or disk I/O itself; everything is delegated to the Transport.
type Model struct {
	transport Transport
	logger    *log.Logger

	input  textinput.Model
	colors *senderColors

	phase        phase
	name         string
	scrollback   []string
	disconnected bool

	width, height int
}

// New builds the model in the display-name prompt phase.
func New(transport Transport, logger *log.Logger) Model {
	if logger == nil {
		logger = log.Default()
	}

	input := textinput.New()
	input.Placeholder = "choose a display name"
	input.CharLimit = 256
	input.Focus()

	return Model{
		transport: transport,
		logger:    logger,
		input:     input,
		colors:    newSenderColors(),
	}
}

// waitEvent re-arms the receive path: it blocks until the transport
// publishes the next event and delivers it into the update loop.
func waitEvent(events <-chan client.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return client.Event{Err: client.ErrDisconnected}
		}
		return ev
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitEvent(m.transport.Events()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case client.Event:
		if msg.Err != nil {
			m.disconnected = true
			m.scrollback = append(m.scrollback, alertStyle.Render("-- connection to the relay was lost --"))
			return m, nil
		}
		m.scrollback = append(m.scrollback, m.renderEnvelope(msg.Envelope))
		return m, waitEvent(m.transport.Events())

	case tea.KeyMsg:
		switch Dispatch(msg) {
		case ActionQuit:
			_ = m.transport.Close()
			return m, tea.Quit
		case ActionSubmit:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit converts the input buffer into an outbound action. A buffer that
// trims to nothing is cleared and nothing else happens.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if text == "" {
		return m, nil
	}

	if m.phase == phaseName {
		if err := m.transport.Announce(text); err != nil {
			m.logger.Printf("tui: announce: %v", err)
			m.disconnected = true
			m.scrollback = append(m.scrollback, alertStyle.Render("-- connection to the relay was lost --"))
			return m, nil
		}
		m.name = text
		m.phase = phaseChat
		m.input.Placeholder = "say something"
		m.scrollback = append(m.scrollback, presenceStyle.Render(fmt.Sprintf("chatting as %s", text)))
		return m, nil
	}

	// Optimistic local echo: the relay never echoes a message back to its
	// origin, so the user's own line appears here, before the round trip.
	m.scrollback = append(m.scrollback, m.renderMessage(time.Now(), m.name, text))
	if err := m.transport.Send(text); err != nil {
		m.logger.Printf("tui: send: %v", err)
		m.disconnected = true
		m.scrollback = append(m.scrollback, alertStyle.Render("-- connection to the relay was lost --"))
	}
	return m, nil
}

func (m Model) renderEnvelope(env chat.Envelope) string {
	switch env.Kind {
	case chat.KindJoin:
		return presenceStyle.Render(fmt.Sprintf("[%s] * %s joined", clockFace(env.Timestamp), env.Sender))
	case chat.KindLeave:
		return presenceStyle.Render(fmt.Sprintf("[%s] * %s left", clockFace(env.Timestamp), env.Sender))
	default:
		return m.renderMessage(env.Timestamp, env.Sender, env.Body)
	}
}

func (m Model) renderMessage(at time.Time, sender, body string) string {
	return fmt.Sprintf("[%s] %s: %s", clockFace(at), m.colors.styleFor(sender).Render(sender), body)
}

func clockFace(t time.Time) string {
	return t.Local().Format("15:04:05")
}

func (m Model) View() string {
	if m.phase == phaseName {
		return headerStyle.Render("Chatey") + "\n\n" +
			"Pick a display name and press enter.\n\n" +
			m.input.View() + "\n\n" +
			presenceStyle.Render("esc or ctrl+c to quit")
	}

	status := presenceStyle.Render("connected as " + m.name)
	if m.disconnected {
		status = alertStyle.Render("connection lost — scrollback preserved")
	}
	header := headerStyle.Render("Chatey") + "  " + status

	maxLines := m.height - 4
	if maxLines < 4 {
		maxLines = 4
	}
	start := 0
	if len(m.scrollback) > maxLines {
		start = len(m.scrollback) - maxLines
	}
	body := strings.Join(m.scrollback[start:], "\n")
	if body == "" {
		body = presenceStyle.Render("no messages yet")
	}

	return header + "\n\n" + body + "\n\n" + m.input.View()
}
