package tui

import "github.com/charmbracelet/lipgloss"

var senderPalette = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // Red
	lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // Green
	lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // Yellow
	lipgloss.NewStyle().Foreground(lipgloss.Color("4")), // Blue
	lipgloss.NewStyle().Foreground(lipgloss.Color("5")), // Magenta
	lipgloss.NewStyle().Foreground(lipgloss.Color("6")), // Cyan
}

// senderColors assigns each display name a stable color, cycling through
// the palette in order of first appearance.
type senderColors struct {
	assigned map[string]lipgloss.Style
	next     int
}

func newSenderColors() *senderColors {
	return &senderColors{assigned: make(map[string]lipgloss.Style)}
}

func (c *senderColors) styleFor(name string) lipgloss.Style {
	if style, ok := c.assigned[name]; ok {
		return style
	}
	style := senderPalette[c.next%len(senderPalette)]
	c.assigned[name] = style
	c.next++
	return style
}
