package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/scan"
)

func chatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List exported chats found under the scan roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			folders, err := scan.DetectFolders(cfg.ScanRoots)
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				fmt.Fprintf(os.Stderr, "No chat exports found under %s\n", strings.Join(cfg.ScanRoots, ", "))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TITLE\tMEDIA\tMODIFIED\tPATH")
			for _, f := range folders {
				mtime := "-"
				if !f.Mtime.IsZero() {
					mtime = f.Mtime.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", f.Title, f.MediaCount, mtime, f.Path)
			}
			return w.Flush()
		},
	}
}

// resolveChat turns a command argument into an export folder: either a
// path to the folder or transcript file, or a title fragment matched
// against the chats under the scan roots.
func resolveChat(cfg *config.Config, arg string) (*scan.Folder, error) {
	if _, err := os.Stat(arg); err == nil {
		return scan.Open(arg)
	}

	folders, err := scan.DetectFolders(cfg.ScanRoots)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(arg)
	var hits []scan.Folder
	for _, f := range folders {
		title := strings.ToLower(f.Title)
		if title == needle {
			f := f
			return &f, nil
		}
		if strings.Contains(title, needle) {
			hits = append(hits, f)
		}
	}

	switch len(hits) {
	case 0:
		return nil, fmt.Errorf("no chat matching %q under %s", arg, strings.Join(cfg.ScanRoots, ", "))
	case 1:
		return &hits[0], nil
	default:
		titles := make([]string, len(hits))
		for i, f := range hits {
			titles[i] = f.Title
		}
		return nil, fmt.Errorf("chat %q is ambiguous: %s", arg, strings.Join(titles, ", "))
	}
}
