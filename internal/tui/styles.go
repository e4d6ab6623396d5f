package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray

	// Input area
	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// List items
	styleListSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	styleListNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleSystem = lipgloss.NewStyle().
			Foreground(colorDim)

	// senderStyles color the speakers; a sender keeps its color for the
	// whole run because it is picked by name hash.
	senderStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("12")), // bright blue
		lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // bright green
		lipgloss.NewStyle().Foreground(lipgloss.Color("13")), // bright magenta
		lipgloss.NewStyle().Foreground(lipgloss.Color("14")), // bright cyan
		lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // bright yellow
		lipgloss.NewStyle().Foreground(lipgloss.Color("9")),  // bright red
	}

	// Panels
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)
)

func senderStyle(name string) lipgloss.Style {
	h := fnv.New32a()
	h.Write([]byte(name))
	return senderStyles[h.Sum32()%uint32(len(senderStyles))]
}
