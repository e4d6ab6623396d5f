package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/render"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/search"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	id      int
	content string
	hitLine int
	err     error
}

// loadPreviewCmd returns a tea.Cmd that renders the conversation around
// the selected message async.
func loadPreviewCmd(sess *session.Session, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.Conversation(sess.DB, sess.Folder.Title, sess.Media, render.Options{
			HitID:   r.ID,
			Context: -1,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{
			id:      r.ID,
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
