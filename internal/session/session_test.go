package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/parse"
)

func testConfig() *config.Config {
	return &config.Config{PageSize: 100, DateOrder: "dmy"}
}

func TestOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "WhatsApp Chat - Maria")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	transcript := "[16.01.19, 22:13:43] Jakob: Hey, wie geht's?\n" +
		"[16.01.19, 22:14:00] Maria: Gut, danke!\n" +
		"[16.01.19, 22:15:00] Maria: IMG-001.jpg (Datei angehängt)\n"
	if err := os.WriteFile(filepath.Join(dir, "_chat.txt"), []byte(transcript), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "IMG-001.jpg"), []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(dir, testConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Folder.Title != "Maria" {
		t.Errorf("Title = %q, want Maria", s.Folder.Title)
	}
	if s.Encoding != "utf-8" {
		t.Errorf("Encoding = %q", s.Encoding)
	}
	if len(s.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(s.Messages))
	}
	if s.Malformed != 0 {
		t.Errorf("Malformed = %d", s.Malformed)
	}

	n, err := s.DB.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("indexed %d messages, want 3", n)
	}

	last := s.Messages[2]
	if !last.Media || len(last.Attachments) != 1 {
		t.Fatalf("attachment not picked up: %+v", last)
	}
	if _, ok := s.Media.Resolve(last.Attachments[0].Name); !ok {
		t.Errorf("resolver cannot find %q", last.Attachments[0].Name)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope"), testConfig()); err == nil {
		t.Fatal("expected error for missing export")
	}
}

func TestReopenReplaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "WhatsApp Chat - Maria")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	chat := filepath.Join(dir, "_chat.txt")
	if err := os.WriteFile(chat, []byte("[16.01.19, 22:13:43] Jakob: hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := Open(dir, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	grown := "[16.01.19, 22:13:43] Jakob: hi\n" +
		"[16.01.19, 22:14:00] Maria: hello\n"
	if err := os.WriteFile(chat, []byte(grown), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := Open(dir, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if len(first.Messages) != 1 {
		t.Errorf("first session grew to %d messages", len(first.Messages))
	}
	if len(second.Messages) != 2 {
		t.Errorf("second session has %d messages, want 2", len(second.Messages))
	}
	n, err := second.DB.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("second index has %d rows, want 2", n)
	}
}

func testSession() *Session {
	day := func(d, h int) time.Time {
		return time.Date(2019, 1, d, h, 0, 0, 0, time.Local)
	}
	return &Session{Messages: []parse.Message{
		{Timestamp: day(16, 9), Sender: "Jakob", Body: "good morning"},
		{Timestamp: day(16, 10), Sender: "Maria", Body: "hello Jakob"},
		{Timestamp: day(17, 12), Sender: "Jakob", Body: "lunch?"},
		{Timestamp: day(17, 13), Body: "Jakob changed the subject", System: true},
		{Body: "chat exported", System: true},
	}}
}

func TestParticipants(t *testing.T) {
	got := testSession().Participants()
	if len(got) != 2 || got[0] != "Jakob" || got[1] != "Maria" {
		t.Errorf("Participants = %v, want [Jakob Maria]", got)
	}
}

func TestMe(t *testing.T) {
	s := testSession()

	if me := s.Me(testConfig()); me != "Jakob" {
		t.Errorf("default Me = %q, want first participant", me)
	}

	cfg := testConfig()
	cfg.MeName = "maria"
	if me := s.Me(cfg); me != "Maria" {
		t.Errorf("Me = %q, want case-insensitive config match", me)
	}

	cfg.MeName = "Nobody"
	if me := s.Me(cfg); me != "Jakob" {
		t.Errorf("Me with unknown name = %q, want fallback", me)
	}
}

func TestSelect(t *testing.T) {
	s := testSession()

	if got := s.Select(Filter{}); len(got) != 3 {
		t.Errorf("default Select kept %d messages, want 3", len(got))
	}
	if got := s.Select(Filter{IncludeSystem: true}); len(got) != 5 {
		t.Errorf("IncludeSystem kept %d messages, want 5", len(got))
	}
	if got := s.Select(Filter{Senders: []string{"Maria"}}); len(got) != 1 || got[0].Body != "hello Jakob" {
		t.Errorf("sender filter = %+v", got)
	}
	if got := s.Select(Filter{Since: "2019-01-17"}); len(got) != 1 || got[0].Body != "lunch?" {
		t.Errorf("Since filter = %+v", got)
	}
	if got := s.Select(Filter{Until: "2019-01-16"}); len(got) != 2 {
		t.Errorf("Until filter kept %d messages, want 2", len(got))
	}
	if got := s.Select(Filter{Query: "JAKOB"}); len(got) != 1 || got[0].Sender != "Maria" {
		t.Errorf("query filter = %+v", got)
	}
}
