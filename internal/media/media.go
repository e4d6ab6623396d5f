package media

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies an attachment by its file extension.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindOther Kind = "other"
)

var kindByExt = map[string]Kind{
	".opus": KindAudio,
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".m4a":  KindAudio,
	".ogg":  KindAudio,
	".mp4":  KindVideo,
	".avi":  KindVideo,
	".mov":  KindVideo,
	".webm": KindVideo,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".webp": KindImage,
}

// KindForName returns the media kind for a file name.
// Unknown extensions map to KindOther.
func KindForName(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if k, ok := kindByExt[ext]; ok {
		return k
	}
	return KindOther
}

// KnownExt reports whether name carries a recognized media extension.
func KnownExt(name string) bool {
	_, ok := kindByExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentType returns the MIME type for a media file name.
func ContentType(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".opus":
		return "audio/opus"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".mp4":
		return "video/mp4"
	case ".avi":
		return "video/x-msvideo"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// Ref is a resolved attachment on disk.
type Ref struct {
	Path string
	Kind Kind
	Size int64
}

// Resolver maps attachment file names from a transcript to files
// sitting next to it. It never opens the files.
type Resolver struct {
	dir   string
	files map[string]int64 // base name -> size
}

// NewResolver lists the export folder once and resolves against that
// listing. A missing or unreadable folder yields a resolver that
// resolves nothing.
func NewResolver(dir string) *Resolver {
	r := &Resolver{dir: dir, files: make(map[string]int64)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return r
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		r.files[e.Name()] = info.Size()
	}
	return r
}

// Resolve looks up an attachment token. The second return is false
// when no sibling file matches.
func (r *Resolver) Resolve(name string) (Ref, bool) {
	size, ok := r.files[name]
	if !ok {
		return Ref{}, false
	}
	return Ref{
		Path: filepath.Join(r.dir, name),
		Kind: KindForName(name),
		Size: size,
	}, true
}

// Count returns how many sibling files the resolver knows about.
func (r *Resolver) Count() int {
	return len(r.files)
}
