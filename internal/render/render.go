package render

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/index"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/media"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

// senderPalette colors speakers. A sender's color comes from a name
// hash so it stays stable across windows of the same chat.
var senderPalette = []string{
	"\033[1;34m", // bold blue
	"\033[1;32m", // bold green
	"\033[1;35m", // bold magenta
	"\033[1;36m", // bold cyan
	"\033[1;33m", // bold yellow
	"\033[1;31m", // bold red
}

func senderColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return senderPalette[h.Sum32()%uint32(len(senderPalette))]
}

type Options struct {
	HitID   int    // message to center on, -1 for none
	Context int    // messages before/after hit to show, <0 = whole chat
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	terms := strings.Fields(query)
	var filtered []string
	for _, t := range terms {
		if !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return text
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// tsLabel shortens a stored timestamp to the clock time; the date is
// carried by the day separators.
func tsLabel(ts string) string {
	if len(ts) >= 16 {
		return ts[11:16]
	}
	return ts
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Conversation renders a window of the chat and returns the content,
// the 0-based line number of the hit message header (-1 if no hit),
// and any error. res may be nil when attachment files are not at hand.
func Conversation(db *index.DB, title string, res *media.Resolver, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}

	rows, hitIdx, startPos, totalCount, err := db.Window(opts.HitID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}

	if totalCount == 0 {
		return "(empty chat)", -1, nil
	}

	skipAfter := totalCount - startPos - len(rows)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	wrapW := opts.Width

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		wrapped := wrapLine(s, wrapW)
		for _, wl := range wrapped {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s ---%s", colorDim, title, colorReset))

	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, startPos, colorReset))
	}

	prevDay := ""
	for i, r := range rows {
		isHit := i == hitIdx

		if day := dayOf(r.Ts); day != "" && day != prevDay {
			writeLine(fmt.Sprintf("%s--- %s ---%s", colorDim, day, colorReset))
			prevDay = day
		}

		if isHit {
			hitLine = lineCount
		}

		label := r.Sender
		if label == "" {
			label = "system"
		}

		switch {
		case isHit:
			writeLine(fmt.Sprintf("%s>> %s · %s <<%s", colorHit, label, tsLabel(r.Ts), colorReset))
		case r.System:
			writeLine(fmt.Sprintf("%s%s · %s%s", colorDim, label, tsLabel(r.Ts), colorReset))
		default:
			writeLine(fmt.Sprintf("%s%s%s %s%s%s", senderColor(r.Sender), label, colorReset, colorDim, tsLabel(r.Ts), colorReset))
		}

		text := r.Body
		if r.System {
			text = colorDim + text + colorReset
		}
		text = highlightKeywords(text, opts.Query)
		text = indentLines(text, "  ")

		for _, tl := range strings.Split(text, "\n") {
			writeLine(tl)
		}

		for _, name := range r.MediaNames {
			writeLine("  " + colorDim + annotate(name, res) + colorReset)
		}

		writeLine("") // blank line after message
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}

func dayOf(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ""
}

// annotate describes an attachment, with its size when the file is
// still next to the transcript.
func annotate(name string, res *media.Resolver) string {
	kind := media.KindForName(name)
	if res != nil {
		if ref, ok := res.Resolve(name); ok {
			return fmt.Sprintf("[%s %s · %s]", kind, name, humanSize(ref.Size))
		}
		return fmt.Sprintf("[%s %s · missing]", kind, name)
	}
	return fmt.Sprintf("[%s %s]", kind, name)
}
