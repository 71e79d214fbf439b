package tui

import tea "github.com/charmbracelet/bubbletea"

// Action is the editing intent of one keyboard event.
type Action int

const (
	// ActionPass hands the event to the input component untouched
	// (cursor movement, paste, blink ticks).
	ActionPass Action = iota
	ActionInsert
	ActionBackspace
	ActionSubmit
	ActionQuit
)

// Dispatch maps a raw key event to its action. The submit signal is
// authoritative regardless of delivery path: terminals feeding us
// non-interactive input deliver enter as a bare CR or LF rune instead of a
// key, and those fire Submit too.
func Dispatch(msg tea.KeyMsg) Action {
	switch msg.Type {
	case tea.KeyEnter:
		return ActionSubmit
	case tea.KeyBackspace:
		return ActionBackspace
	case tea.KeyCtrlC, tea.KeyEsc:
		return ActionQuit
	case tea.KeySpace:
		return ActionInsert
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r == '\r' || r == '\n' {
				return ActionSubmit
			}
		}
		return ActionInsert
	default:
		return ActionPass
	}
}
