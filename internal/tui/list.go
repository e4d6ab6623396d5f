package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/search"
)

// linesPerItem is the number of terminal lines each message occupies.
const linesPerItem = 2

// renderList renders the left panel: the message list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No messages")
		return empty
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatMessageLine(r, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatMessageLine formats a single message as two lines:
//
//	line 1: [>] MM-DD HH:MM  sender
//	line 2:    snippet (dimmed)
func formatMessageLine(r search.Result, width int, selected bool) []string {
	// Short date+time from the stored timestamp
	ts := r.Ts
	if len(ts) >= 16 {
		ts = ts[5:16] // MM-DD HH:MM
	}

	sender := r.Sender
	var who string
	switch {
	case r.System:
		if sender == "" {
			sender = "system"
		}
		who = styleSystem.Render(sender)
	default:
		who = senderStyle(sender).Render(sender)
	}

	// Truncate sender to fit width: leave room for prefix and timestamp
	senderMax := width - 2 - len("MM-DD HH:MM") - 2
	if senderMax < 0 {
		senderMax = 0
	}
	if runewidth.StringWidth(sender) > senderMax {
		who = runewidth.Truncate(sender, senderMax, "")
		if r.System {
			who = styleSystem.Render(who)
		} else {
			who = senderStyle(r.Sender).Render(who)
		}
	}

	line1 := styleSystem.Render(ts) + " " + who
	if r.Media {
		line1 += " " + styleSystem.Render("[media]")
	}
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	// Line 2: snippet (dimmed, indented)
	snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	snippetMax := width - 4 // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
