package parse

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// DateOrder selects how ambiguous slash dates are read.
type DateOrder string

const (
	DayFirst   DateOrder = "dmy"
	MonthFirst DateOrder = "mdy"
)

type Options struct {
	// DateOrder applies to slash dates like 3/4/19 where both readings
	// are valid. Dot dates are always day-first. Default is day-first.
	DateOrder DateOrder

	// SystemPhrases extends the built-in system classifier. Each entry
	// is tried as a regex and falls back to a literal substring.
	SystemPhrases []string
}

// Parser turns a raw transcript into messages. It is pure text work:
// no file access, no media lookups beyond extension tables.
type Parser struct {
	order  DateOrder
	system []*regexp.Regexp
	logger *logrus.Entry
}

func New(opts Options) *Parser {
	p := &Parser{
		order:  opts.DateOrder,
		logger: logrus.WithField("component", "parse"),
	}
	if p.order == "" {
		p.order = DayFirst
	}
	p.system = append(p.system, builtinSystem...)
	for _, phrase := range opts.SystemPhrases {
		re, err := regexp.Compile("(?i)" + phrase)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(phrase))
		}
		p.system = append(p.system, re)
	}
	return p
}

// Parse folds transcript lines into messages. Every input line ends up
// accounted for: headers open a message, other lines extend the one
// that is open, and lines before any header open a dateless system
// bucket. Parse never fails.
func (p *Parser) Parse(text string) Result {
	var res Result
	var open *Message

	flush := func() {
		if open == nil {
			return
		}
		p.finalize(open)
		res.Messages = append(res.Messages, *open)
		open = nil
	}

	lineNo := 0
	for _, raw := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		lineNo++
		line := cleanLine(raw)
		if line == "" {
			// blank lines inside a message are kept as paragraph breaks
			if open != nil {
				open.Body += "\n"
				open.LastLine = lineNo
			}
			continue
		}

		h, kind := p.matchHeader(line)
		switch kind {
		case headerMessage:
			flush()
			open = &Message{
				Timestamp: h.ts,
				Sender:    h.sender,
				Body:      h.body,
				FirstLine: lineNo,
				LastLine:  lineNo,
			}
			if p.isSystemBody(h.body) {
				// service notices attributed to the group name carry
				// no human sender
				open.Sender = ""
				open.System = true
			}

		case headerSystem:
			flush()
			open = &Message{
				Timestamp: h.ts,
				Body:      h.body,
				System:    true,
				FirstLine: lineNo,
				LastLine:  lineNo,
			}

		case headerBadTime:
			res.Malformed++
			p.logger.WithField("line", lineNo).Debug("unparseable timestamp, keeping line as continuation")
			fallthrough

		case headerNone:
			if open == nil {
				open = &Message{Body: line, System: true, FirstLine: lineNo, LastLine: lineNo}
				break
			}
			if open.Body == "" {
				open.Body = line
			} else {
				open.Body += "\n" + line
			}
			open.LastLine = lineNo
		}
	}
	flush()

	return res
}

func (p *Parser) isSystemBody(body string) bool {
	for _, re := range p.system {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}

// invisible covers the direction and zero-width marks WhatsApp sprinkles
// into exports.
var invisible = map[rune]bool{
	'​': true,
	'‌': true,
	'‍': true,
	'‎': true,
	'‏': true,
	'⁦': true,
	'⁩': true,
	'\uFEFF': true,
}

// cleanLine drops invisible marks, turns non-breaking spaces into plain
// ones (iOS puts U+202F before AM/PM), and trims the line.
func cleanLine(s string) string {
	s = strings.Map(func(r rune) rune {
		if invisible[r] {
			return -1
		}
		if r == ' ' || r == ' ' {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
