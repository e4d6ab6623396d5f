package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/media"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/scan"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [chat]",
		Short: "Self-check: verify scan roots, parse health, index and media",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			// check roots
			fmt.Println("=== Scan roots ===")
			for _, root := range cfg.ScanRoots {
				checkDir(root)
			}

			fmt.Println("\n=== Exports ===")
			folders, err := scan.DetectFolders(cfg.ScanRoots)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Chat exports found: %d\n", len(folders))
				for i, f := range folders {
					if i == 10 {
						fmt.Printf("  ... and %d more\n", len(folders)-i)
						break
					}
					fmt.Printf("  - %s (%s)\n", f.Title, f.Path)
				}
			}

			if len(args) == 0 {
				return nil
			}

			folder, err := resolveChat(cfg, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n=== Chat: %s ===\n", folder.Title)
			fmt.Printf("  Transcript: %s\n", folder.ChatFile)

			sess, err := session.FromFolder(folder, cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			fmt.Printf("  Charset: %s\n", sess.Encoding)
			fmt.Printf("  Messages: %d\n", len(sess.Messages))
			fmt.Printf("  Malformed lines: %d\n", sess.Malformed)
			if parts := sess.Participants(); len(parts) > 0 {
				fmt.Printf("  Participants: %d\n", len(parts))
			}

			// check FTS5
			fmt.Println("\n=== Index ===")
			msgCount, err := sess.DB.Count()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			ftsCount, err := sess.DB.FTSCount()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  Messages: %d\n", msgCount)
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == msgCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", msgCount, ftsCount)
				}
			}

			// check attachments against the files next to the transcript
			fmt.Println("\n=== Media ===")
			fmt.Printf("  Files next to transcript: %d\n", sess.Media.Count())
			referenced, resolved := 0, 0
			extCount := make(map[string]int)
			extSample := make(map[string]string)
			for _, m := range sess.Messages {
				for _, a := range m.Attachments {
					referenced++
					if _, ok := sess.Media.Resolve(a.Name); ok {
						resolved++
					}
					ext := strings.ToLower(filepath.Ext(a.Name))
					if ext == "" {
						ext = "(none)"
					}
					extCount[ext]++
					if _, ok := extSample[ext]; !ok {
						extSample[ext] = a.Name
					}
				}
			}
			fmt.Printf("  Attachments referenced: %d\n", referenced)
			fmt.Printf("  Attachments resolved: %d\n", resolved)
			if referenced > resolved {
				fmt.Printf("  Missing files: %d (text-only export?)\n", referenced-resolved)
			}
			if len(extCount) > 0 {
				fmt.Println("  Types:")
				exts := make([]string, 0, len(extCount))
				for e := range extCount {
					exts = append(exts, e)
				}
				sort.Strings(exts)
				for _, e := range exts {
					fmt.Printf("    %-6s %4d  %s\n", e, extCount[e], media.ContentType(extSample[e]))
				}
			}

			return nil
		},
	}
}

func checkDir(path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s (NOT FOUND)\n", path)
	} else if !info.IsDir() {
		fmt.Printf("  %s (NOT A DIRECTORY)\n", path)
	} else {
		fmt.Printf("  %s (OK)\n", path)
	}
}
