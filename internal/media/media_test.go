package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKindForName(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"00000012-AUDIO-2019-01-16.opus", KindAudio},
		{"voice.m4a", KindAudio},
		{"VID-20190116-WA0004.mp4", KindVideo},
		{"clip.MOV", KindVideo},
		{"IMG_001.jpg", KindImage},
		{"sticker.webp", KindImage},
		{"document.pdf", KindOther},
		{"noext", KindOther},
	}
	for _, tt := range tests {
		if got := KindForName(tt.name); got != tt.want {
			t.Errorf("KindForName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestKnownExt(t *testing.T) {
	if !KnownExt("a.JPG") {
		t.Error("uppercase extension not recognized")
	}
	if KnownExt("a.txt") {
		t.Error("txt recognized as media")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.opus", "audio/opus"},
		{"a.mp3", "audio/mpeg"},
		{"a.mp4", "video/mp4"},
		{"a.jpeg", "image/jpeg"},
		{"a.bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.name); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_001.jpg")
	if err := os.WriteFile(path, []byte("xx"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir)
	if r.Count() != 1 {
		t.Fatalf("count = %d, want 1", r.Count())
	}

	ref, ok := r.Resolve("IMG_001.jpg")
	if !ok {
		t.Fatal("existing file not resolved")
	}
	if ref.Path != path {
		t.Errorf("path = %q, want %q", ref.Path, path)
	}
	if ref.Kind != KindImage {
		t.Errorf("kind = %q, want image", ref.Kind)
	}
	if ref.Size != 2 {
		t.Errorf("size = %d, want 2", ref.Size)
	}

	if _, ok := r.Resolve("missing.jpg"); ok {
		t.Error("missing file resolved")
	}
}

func TestResolverMissingDir(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "nope"))
	if r.Count() != 0 {
		t.Errorf("count = %d, want 0", r.Count())
	}
	if _, ok := r.Resolve("a.jpg"); ok {
		t.Error("resolved against missing dir")
	}
}
