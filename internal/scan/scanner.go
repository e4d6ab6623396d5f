package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("component", "scan")

// Folder is a WhatsApp export folder: one transcript plus the media
// files exported next to it.
type Folder struct {
	Path       string
	Title      string
	ChatFile   string
	MediaCount int
	Mtime      time.Time
}

// DetectFolders lists export folders under the given roots, newest
// first. A root that is itself an export folder counts too. Roots that
// do not exist are skipped.
func DetectFolders(roots []string) ([]Folder, error) {
	var folders []Folder
	seen := make(map[string]bool)

	add := func(dir string) {
		if seen[dir] {
			return
		}
		f, err := open(dir)
		if err != nil {
			return
		}
		seen[dir] = true
		folders = append(folders, *f)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			logger.WithField("root", root).Debug("skipping missing scan root")
			continue
		}
		add(root)

		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				add(filepath.Join(root, e.Name()))
			}
		}
	}

	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Mtime.After(folders[j].Mtime)
	})
	return folders, nil
}

// Open resolves a path into an export folder. The path may be the
// folder itself or the transcript file inside it.
func Open(path string) (*Folder, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	if !info.IsDir() {
		return openFile(path)
	}
	return open(path)
}

func open(dir string) (*Folder, error) {
	chatFile, err := findChatFile(dir)
	if err != nil {
		return nil, err
	}
	return build(dir, chatFile)
}

func openFile(path string) (*Folder, error) {
	if filepath.Ext(path) != ".txt" {
		return nil, fmt.Errorf("open export: %s is not a chat transcript", path)
	}
	return build(filepath.Dir(path), path)
}

func build(dir, chatFile string) (*Folder, error) {
	f := &Folder{
		Path:     dir,
		ChatFile: chatFile,
		Title:    deriveTitle(dir, chatFile),
	}
	if info, err := os.Stat(chatFile); err == nil {
		f.Mtime = info.ModTime()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list export folder: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if filepath.Join(dir, e.Name()) == chatFile {
			continue
		}
		f.MediaCount++
	}
	return f, nil
}

// findChatFile locates the transcript: *_chat.txt as exported by the
// app, with any .txt as fallback. Candidates are taken in name order.
func findChatFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list export folder: %w", err)
	}

	var chats, txts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case strings.HasSuffix(name, "_chat.txt"):
			chats = append(chats, name)
		case strings.HasSuffix(name, ".txt"):
			txts = append(txts, name)
		}
	}
	sort.Strings(chats)
	sort.Strings(txts)

	if len(chats) > 0 {
		return filepath.Join(dir, chats[0]), nil
	}
	if len(txts) > 0 {
		return filepath.Join(dir, txts[0]), nil
	}
	return "", errors.New("no chat transcript (*_chat.txt) found")
}

var trailingCopyRe = regexp.MustCompile(`\s*[\[(]\d+[\])]$`)

// CleanTitle derives a chat title from an export folder or file name:
// "WhatsApp Chat - Maria[1].zip" becomes "Maria".
func CleanTitle(name string) string {
	name = strings.TrimSuffix(name, ".txt")
	name = strings.TrimSuffix(name, ".zip")
	name = trailingCopyRe.ReplaceAllString(name, "")
	name = strings.TrimPrefix(name, "WhatsApp Chat - ")
	name = strings.TrimPrefix(name, "WhatsApp Chat with ")
	name = strings.TrimSuffix(name, "_chat")
	return strings.TrimSpace(name)
}

// deriveTitle prefers the folder name and falls back to the transcript
// file name when the folder is something generic like Downloads.
func deriveTitle(dir, chatFile string) string {
	base := filepath.Base(dir)
	if strings.HasPrefix(base, "WhatsApp Chat") {
		return CleanTitle(base)
	}
	fileBase := filepath.Base(chatFile)
	if strings.HasPrefix(fileBase, "WhatsApp Chat") {
		return CleanTitle(fileBase)
	}
	if t := CleanTitle(base); t != "" {
		return t
	}
	return base
}
