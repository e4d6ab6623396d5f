package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/media"
)

func mustParseOne(t *testing.T, line string) Message {
	t.Helper()
	res := New(Options{}).Parse(line)
	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1: %#v", len(res.Messages), res.Messages)
	}
	return res.Messages[0]
}

func ts(y int, mo time.Month, d, h, min, s int) time.Time {
	return time.Date(y, mo, d, h, min, s, 0, time.Local)
}

func TestParseDialects(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   time.Time
		sender string
		body   string
	}{
		{
			name:   "bracket dot with seconds",
			line:   "[16.01.19, 22:13:43] Jakob: Hey, wie geht's?",
			want:   ts(2019, time.January, 16, 22, 13, 43),
			sender: "Jakob",
			body:   "Hey, wie geht's?",
		},
		{
			name:   "bracket slash with AM/PM",
			line:   "[1/16/19, 10:13:43 PM] Maria: Fine, thanks",
			want:   ts(2019, time.January, 16, 22, 13, 43),
			sender: "Maria",
			body:   "Fine, thanks",
		},
		{
			name:   "dash without seconds",
			line:   "16.01.19, 22:13 - Jakob: ok",
			want:   ts(2019, time.January, 16, 22, 13, 0),
			sender: "Jakob",
			body:   "ok",
		},
		{
			name:   "dash four digit year",
			line:   "01.01.2024, 12:34 - Name: Message",
			want:   ts(2024, time.January, 1, 12, 34, 0),
			sender: "Name",
			body:   "Message",
		},
		{
			name:   "bracket dot without seconds",
			line:   "[01.01.2024, 12:34] Name: Message",
			want:   ts(2024, time.January, 1, 12, 34, 0),
			sender: "Name",
			body:   "Message",
		},
		{
			name:   "bracket slash with tilde",
			line:   "[10/1/25, 11:58:38] ~Name: Message",
			want:   ts(2025, time.January, 10, 11, 58, 38),
			sender: "Name",
			body:   "Message",
		},
		{
			name:   "tilde and invisible marks",
			line:   "‎[1/16/19, 10:14:02 PM] ~ Maria: hi",
			want:   ts(2019, time.January, 16, 22, 14, 2),
			sender: "Maria",
			body:   "hi",
		},
		{
			name:   "midnight AM",
			line:   "[1/16/19, 12:05:00 AM] Maria: night",
			want:   ts(2019, time.January, 16, 0, 5, 0),
			sender: "Maria",
			body:   "night",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustParseOne(t, tt.line)
			if !m.Timestamp.Equal(tt.want) {
				t.Errorf("timestamp = %v, want %v", m.Timestamp, tt.want)
			}
			if m.Sender != tt.sender {
				t.Errorf("sender = %q, want %q", m.Sender, tt.sender)
			}
			if m.Body != tt.body {
				t.Errorf("body = %q, want %q", m.Body, tt.body)
			}
			if m.System {
				t.Error("system = true, want false")
			}
		})
	}
}

func TestYearPivot(t *testing.T) {
	tests := []struct {
		line string
		year int
	}{
		{"[16.01.25, 10:00:00] Jakob: hi", 2025},
		{"[16.01.95, 10:00:00] Jakob: hi", 1995},
		{"[16.01.70, 10:00:00] Jakob: hi", 1970},
		{"[16.01.69, 10:00:00] Jakob: hi", 2069},
	}
	for _, tt := range tests {
		m := mustParseOne(t, tt.line)
		if m.Timestamp.Year() != tt.year {
			t.Errorf("%q: year = %d, want %d", tt.line, m.Timestamp.Year(), tt.year)
		}
	}
}

func TestSlashDateOrder(t *testing.T) {
	// both readings valid: configured order decides
	dmy := New(Options{DateOrder: DayFirst}).Parse("3/4/19, 10:00 - A: hi")
	if got := dmy.Messages[0].Timestamp; got.Month() != time.April || got.Day() != 3 {
		t.Errorf("day-first: got %v, want April 3", got)
	}
	mdy := New(Options{DateOrder: MonthFirst}).Parse("3/4/19, 10:00 - A: hi")
	if got := mdy.Messages[0].Timestamp; got.Month() != time.March || got.Day() != 4 {
		t.Errorf("month-first: got %v, want March 4", got)
	}

	// primary reading impossible: swapped reading is used
	m := mustParseOne(t, "[1/16/19, 10:00:00] A: hi")
	if m.Timestamp.Month() != time.January || m.Timestamp.Day() != 16 {
		t.Errorf("swap fallback: got %v, want January 16", m.Timestamp)
	}
}

func TestContinuationMerge(t *testing.T) {
	text := strings.Join([]string{
		"[16.01.19, 22:13:43] Jakob: first line",
		"second line",
		"third line",
		"[16.01.19, 22:14:00] Maria: reply",
	}, "\n")

	res := New(Options{}).Parse(text)
	if len(res.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(res.Messages))
	}
	want := "first line\nsecond line\nthird line"
	if res.Messages[0].Body != want {
		t.Errorf("body = %q, want %q", res.Messages[0].Body, want)
	}
	if res.Messages[0].FirstLine != 1 || res.Messages[0].LastLine != 3 {
		t.Errorf("span = %d..%d, want 1..3", res.Messages[0].FirstLine, res.Messages[0].LastLine)
	}
	if res.Messages[1].Body != "reply" {
		t.Errorf("second body = %q", res.Messages[1].Body)
	}
}

func TestBlankLineKeepsParagraphBreak(t *testing.T) {
	text := "[16.01.19, 22:13:43] Jakob: para one\n\npara two"
	m := New(Options{}).Parse(text).Messages[0]
	if m.Body != "para one\n\npara two" {
		t.Errorf("body = %q", m.Body)
	}
}

func TestSystemClassification(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{
			name: "dash shape without sender",
			line: "16.01.19, 22:12 - Messages to this group are now secured with end-to-end encryption.",
		},
		{
			name: "bracket shape without sender",
			line: "[16.01.19, 22:12:00] Jakob created this group",
		},
		{
			name: "encryption notice without sender",
			line: "[01.01.2024, 12:34] Messages and calls are end-to-end encrypted.",
		},
		{
			name: "encryption notice attributed to group name",
			line: "[16.01.19, 22:12:05] Familienchat: Nachrichten und Anrufe sind Ende-zu-Ende-verschlüsselt.",
		},
		{
			name: "subject change with sender",
			line: "[16.01.19, 22:12:10] Familienchat: Jakob changed the subject to \"Urlaub\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustParseOne(t, tt.line)
			if !m.System {
				t.Errorf("system = false for %q", tt.line)
			}
			if m.Sender != "" {
				t.Errorf("system message kept sender %q", m.Sender)
			}
		})
	}

	if m := mustParseOne(t, "[16.01.19, 22:13:43] Jakob: let's create groups later"); m.System {
		t.Error("ordinary message misclassified as system")
	}
}

func TestSystemPhraseOption(t *testing.T) {
	p := New(Options{SystemPhrases: []string{"вошёл в группу"}})
	res := p.Parse("[16.01.19, 22:12:00] Чат: Самат вошёл в группу")
	if !res.Messages[0].System {
		t.Error("configured phrase not applied")
	}
}

func TestAttachmentExtraction(t *testing.T) {
	tests := []struct {
		name string
		line string
		file string
		kind media.Kind
	}{
		{
			name: "attached tag",
			line: "[16.01.19, 22:15:01] Jakob: ‎<attached: 00000012-AUDIO-2019-01-16-22-15-01.opus>",
			file: "00000012-AUDIO-2019-01-16-22-15-01.opus",
			kind: media.KindAudio,
		},
		{
			name: "file attached suffix",
			line: "16.01.19, 22:16 - Maria: IMG_001.jpg (file attached)",
			file: "IMG_001.jpg",
			kind: media.KindImage,
		},
		{
			name: "german attachment tag",
			line: "[16.01.19, 22:16:30] Maria: <Anhang: VID-20190116-WA0004.mp4>",
			file: "VID-20190116-WA0004.mp4",
			kind: media.KindVideo,
		},
		{
			name: "bare file name",
			line: "[16.01.19, 22:17:00] Jakob: IMG-20190116-WA0003.webp",
			file: "IMG-20190116-WA0003.webp",
			kind: media.KindImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustParseOne(t, tt.line)
			if len(m.Attachments) != 1 {
				t.Fatalf("got %d attachments, want 1", len(m.Attachments))
			}
			a := m.Attachments[0]
			if a.Name != tt.file {
				t.Errorf("name = %q, want %q", a.Name, tt.file)
			}
			if a.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", a.Kind, tt.kind)
			}
			if !m.Media {
				t.Error("media = false")
			}
			if !strings.Contains(m.Body, tt.file) {
				t.Errorf("token removed from body: %q", m.Body)
			}
		})
	}
}

func TestMediaOmittedMarker(t *testing.T) {
	m := mustParseOne(t, "16.01.19, 22:18 - Maria: <Media omitted>")
	if !m.Media {
		t.Error("media = false")
	}
	if len(m.Attachments) != 0 {
		t.Errorf("got %d attachments, want 0", len(m.Attachments))
	}
}

func TestOrphanLinesOpenSystemBucket(t *testing.T) {
	res := New(Options{}).Parse("just some prose\nand more prose")
	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(res.Messages))
	}
	m := res.Messages[0]
	if !m.System {
		t.Error("system = false")
	}
	if !m.Timestamp.IsZero() {
		t.Errorf("timestamp = %v, want zero", m.Timestamp)
	}
	if m.Body != "just some prose\nand more prose" {
		t.Errorf("body = %q", m.Body)
	}
}

func TestBadTimestampDowngradesToContinuation(t *testing.T) {
	text := strings.Join([]string{
		"[16.01.19, 22:13:43] Jakob: first",
		"[30.02.19, 22:13:43] Jakob: second",
	}, "\n")
	res := New(Options{}).Parse(text)
	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(res.Messages))
	}
	if res.Malformed != 1 {
		t.Errorf("malformed = %d, want 1", res.Malformed)
	}
	want := "first\n[30.02.19, 22:13:43] Jakob: second"
	if res.Messages[0].Body != want {
		t.Errorf("body = %q, want %q", res.Messages[0].Body, want)
	}
}

func TestEveryLineAccounted(t *testing.T) {
	text := strings.Join([]string{
		"garbage before any header",
		"[16.01.19, 22:13:43] Jakob: hello",
		"continuation",
		"",
		"16.01.19, 22:14 - Maria: ok",
		"[99.99.99, 99:99:99] Broken: line",
	}, "\n")

	res := New(Options{}).Parse(text)

	covered := make(map[int]bool)
	for _, m := range res.Messages {
		if m.FirstLine < 1 || m.LastLine < m.FirstLine {
			t.Fatalf("bad span %d..%d", m.FirstLine, m.LastLine)
		}
		for i := m.FirstLine; i <= m.LastLine; i++ {
			covered[i] = true
		}
	}
	for i := 1; i <= 6; i++ {
		if !covered[i] {
			t.Errorf("line %d not covered by any message", i)
		}
	}
}

func TestCRLFInput(t *testing.T) {
	res := New(Options{}).Parse("[16.01.19, 22:13:43] Jakob: one\r\ntwo\r\n")
	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(res.Messages))
	}
	if res.Messages[0].Body != "one\ntwo" {
		t.Errorf("body = %q", res.Messages[0].Body)
	}
}
