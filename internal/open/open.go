package open

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
)

// OpenTranscript opens the chat file in $EDITOR, jumped to the line of
// the given message. A negative id opens at the top.
func OpenTranscript(sess *session.Session, hitID int) error {
	filePath := sess.Folder.ChatFile
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	lineNum := 1
	if hitID >= 0 {
		row, err := sess.DB.Get(hitID)
		if err != nil {
			return fmt.Errorf("get message: %w", err)
		}
		if row == nil {
			return fmt.Errorf("message not found: %d", hitID)
		}
		lineNum = row.FirstLine
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	return openInEditor(editor, filePath, lineNum)
}

// OpenFile hands a media file to the desktop opener.
func OpenFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	bin := "xdg-open"
	if runtime.GOOS == "darwin" {
		bin = "open"
	}
	cmd := exec.Command(bin, path)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func openInEditor(editor, filePath string, lineNum int) error {
	var cmd *exec.Cmd

	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		cmd = exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		cmd = exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		cmd = exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		cmd = exec.Command(editor, filePath)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
