package session

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/index"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/media"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/parse"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/scan"
)

var logger = logrus.WithField("component", "session")

// Session is one open chat: the export folder, its parsed messages and
// the in-memory search index over them.
type Session struct {
	Folder    scan.Folder
	Messages  []parse.Message
	Encoding  string
	Malformed int
	Media     *media.Resolver
	DB        *index.DB
}

// Open loads the export at path, which may be a folder or the
// transcript file inside it, parses the chat and builds the index.
func Open(path string, cfg *config.Config) (*Session, error) {
	folder, err := scan.Open(path)
	if err != nil {
		return nil, err
	}
	return FromFolder(folder, cfg)
}

// FromFolder loads an already detected export folder.
func FromFolder(folder *scan.Folder, cfg *config.Config) (*Session, error) {
	text, enc, err := scan.ReadTranscript(folder)
	if err != nil {
		return nil, err
	}

	p := parse.New(parse.Options{
		DateOrder:     parse.DateOrder(cfg.DateOrder),
		SystemPhrases: cfg.SystemPhrases,
	})
	res := p.Parse(text)

	db, err := index.Open()
	if err != nil {
		return nil, err
	}
	if err := db.Fill(res.Messages); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"title":     folder.Title,
		"messages":  len(res.Messages),
		"malformed": res.Malformed,
		"charset":   enc,
	}).Debug("chat opened")

	return &Session{
		Folder:    *folder,
		Messages:  res.Messages,
		Encoding:  enc,
		Malformed: res.Malformed,
		Media:     media.NewResolver(folder.Path),
		DB:        db,
	}, nil
}

func (s *Session) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Participants lists the senders of regular messages, sorted.
func (s *Session) Participants() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range s.Messages {
		if m.System || m.Sender == "" {
			continue
		}
		if !seen[m.Sender] {
			seen[m.Sender] = true
			out = append(out, m.Sender)
		}
	}
	sort.Strings(out)
	return out
}

// Me returns the participant treated as the chat owner: the configured
// name when it matches someone, otherwise the first participant.
func (s *Session) Me(cfg *config.Config) string {
	parts := s.Participants()
	if len(parts) == 0 {
		return ""
	}
	if cfg.MeName != "" {
		for _, p := range parts {
			if strings.EqualFold(p, cfg.MeName) {
				return p
			}
		}
	}
	return parts[0]
}

// Filter narrows the message list the way the command flags do. Dates
// are "2006-01-02"; Until covers its whole day. Query is a
// case-insensitive substring match.
type Filter struct {
	Senders       []string
	Since         string
	Until         string
	Query         string
	IncludeSystem bool
}

// Select returns the messages passing the filter, in transcript order.
// The semantics mirror the index queries so that exported and searched
// views agree.
func (s *Session) Select(f Filter) []parse.Message {
	senders := make(map[string]bool, len(f.Senders))
	for _, name := range f.Senders {
		senders[name] = true
	}
	query := strings.ToLower(f.Query)
	until := f.Until
	if len(until) == len("2006-01-02") {
		until += " 23:59:59"
	}

	var out []parse.Message
	for _, m := range s.Messages {
		if m.System && !f.IncludeSystem {
			continue
		}
		if len(senders) > 0 && !senders[m.Sender] {
			continue
		}
		ts := index.FormatTs(m.Timestamp)
		if f.Since != "" && ts < f.Since {
			continue
		}
		if until != "" && (ts == "" || ts > until) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(m.Body), query) {
			continue
		}
		out = append(out, m)
	}
	return out
}
