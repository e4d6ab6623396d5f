package render

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/index"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/media"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/parse"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func renderDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open()
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ts := func(d, h, min int) time.Time {
		return time.Date(2019, 1, d, h, min, 0, 0, time.Local)
	}
	msgs := []parse.Message{
		{Timestamp: ts(16, 22, 13), Sender: "Jakob", Body: "Hey, wie geht's?"},
		{Timestamp: ts(16, 22, 14), Sender: "Maria", Body: "Gut, danke!"},
		{Timestamp: ts(17, 9, 0), Sender: "Jakob", Body: "Guten Morgen"},
		{Timestamp: ts(17, 9, 5), Sender: "Maria", Body: "Morgen!\nAusgeschlafen?"},
		{
			Timestamp: ts(17, 9, 6), Sender: "Jakob",
			Body:  "IMG-001.jpg (Datei angehängt)",
			Media: true,
			Attachments: []parse.Attachment{
				{Name: "IMG-001.jpg", Kind: media.KindImage},
			},
		},
	}
	if err := db.Fill(msgs); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	return db
}

func TestConversation(t *testing.T) {
	db := renderDB(t)

	out, hitLine, err := Conversation(db, "Maria", nil, Options{HitID: -1, Context: -1})
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	plain := stripANSI(out)

	if hitLine != -1 {
		t.Errorf("hitLine = %d, want -1", hitLine)
	}
	for _, want := range []string{
		"--- Maria ---",
		"--- 2019-01-16 ---",
		"--- 2019-01-17 ---",
		"Jakob 22:13",
		"  Hey, wie geht's?",
		"  Ausgeschlafen?",
		"[image IMG-001.jpg]",
	} {
		if !strings.Contains(plain, want) {
			t.Errorf("output missing %q\n%s", want, plain)
		}
	}
}

func TestConversationHitWindow(t *testing.T) {
	db := renderDB(t)

	out, hitLine, err := Conversation(db, "Maria", nil, Options{HitID: 3, Context: 1})
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	plain := stripANSI(out)

	if !strings.Contains(plain, "(2 messages before)") {
		t.Errorf("missing skip-before note:\n%s", plain)
	}
	if strings.Contains(plain, "Hey, wie geht's?") {
		t.Errorf("window leaked messages outside the context:\n%s", plain)
	}
	if hitLine < 0 {
		t.Fatalf("hitLine = %d", hitLine)
	}
	lines := strings.Split(plain, "\n")
	if !strings.Contains(lines[hitLine], ">> Maria") {
		t.Errorf("line %d = %q, want the hit header", hitLine, lines[hitLine])
	}
}

func TestConversationEmpty(t *testing.T) {
	db, err := index.Open()
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	defer db.Close()

	out, hitLine, err := Conversation(db, "Empty", nil, Options{})
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if out != "(empty chat)" || hitLine != -1 {
		t.Errorf("out = %q, hitLine = %d", out, hitLine)
	}
}

func TestAnnotate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "IMG-001.jpg"), []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := media.NewResolver(dir)

	if got := annotate("IMG-001.jpg", res); got != "[image IMG-001.jpg · 3 B]" {
		t.Errorf("annotate = %q", got)
	}
	if got := annotate("gone.mp4", res); got != "[video gone.mp4 · missing]" {
		t.Errorf("annotate missing = %q", got)
	}
	if got := annotate("IMG-001.jpg", nil); got != "[image IMG-001.jpg]" {
		t.Errorf("annotate without resolver = %q", got)
	}
}

func TestWrapLine(t *testing.T) {
	got := wrapLine("abcdef", 3)
	if len(got) != 2 || got[0] != "abc" || got[1] != "def" {
		t.Errorf("wrapLine = %v", got)
	}

	// ANSI escapes take no columns
	got = wrapLine("\033[1;34mabcd\033[0m", 4)
	if len(got) != 1 {
		t.Errorf("ANSI-aware wrap = %v", got)
	}

	// wide runes count double
	got = wrapLine("你好吗", 4)
	if len(got) != 2 || got[0] != "你好" || got[1] != "吗" {
		t.Errorf("wide rune wrap = %v", got)
	}

	got = wrapLine("anything", 0)
	if len(got) != 1 || got[0] != "anything" {
		t.Errorf("no-wrap mode = %v", got)
	}
}

func TestHighlightKeywords(t *testing.T) {
	out := highlightKeywords("hello world", "world")
	if !strings.Contains(out, colorBoldRed+"world"+colorReset) {
		t.Errorf("highlight = %q", out)
	}

	// FTS5 operators are not highlighted
	out = highlightKeywords("sand AND gravel", "AND")
	if out != "sand AND gravel" {
		t.Errorf("operator highlighted: %q", out)
	}

	if got := highlightKeywords("text", ""); got != "text" {
		t.Errorf("empty query = %q", got)
	}
}

func TestTsLabel(t *testing.T) {
	if got := tsLabel("2019-01-16 22:13:43"); got != "22:13" {
		t.Errorf("tsLabel = %q", got)
	}
	if got := tsLabel(""); got != "" {
		t.Errorf("tsLabel empty = %q", got)
	}
}

func TestHumanSize(t *testing.T) {
	if got := humanSize(512); got != "512 B" {
		t.Errorf("humanSize = %q", got)
	}
	if got := humanSize(2048); got != "2.0 KB" {
		t.Errorf("humanSize = %q", got)
	}
	if got := humanSize(3 << 20); got != "3.0 MB" {
		t.Errorf("humanSize = %q", got)
	}
}
