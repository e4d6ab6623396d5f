package parse

import (
	"time"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/media"
)

// Attachment is a media file reference extracted from a message body.
// The token stays in the body; this only records what was found.
type Attachment struct {
	Name string
	Kind media.Kind
}

// Message is one logical chat message after multi-line folding.
type Message struct {
	Timestamp   time.Time // zero for dateless orphan lines
	Sender      string    // empty when the transcript carries no sender
	Body        string
	System      bool
	Media       bool // attachment found or an omitted-media placeholder
	Attachments []Attachment
	FirstLine   int // 1-based line span in the transcript
	LastLine    int
}

// Result is the outcome of parsing one transcript.
type Result struct {
	Messages  []Message
	Malformed int // header-shaped lines whose timestamp did not parse
}
