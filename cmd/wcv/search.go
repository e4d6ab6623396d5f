package main

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/search"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorDim     = "\033[2m"
)

var sSenderColors = []string{
	"\033[1;34m", // bold blue
	"\033[1;32m", // bold green
	"\033[1;35m", // bold magenta
	"\033[1;36m", // bold cyan
	"\033[1;33m", // bold yellow
	"\033[1;31m", // bold red
}

func colorizeSender(name string) string {
	if name == "" {
		return "-"
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	c := sSenderColors[h.Sum32()%uint32(len(sSenderColors))]
	return c + name + sColorReset
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var senders []string
	var since, until string
	var system bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <chat> <query>",
		Short: "Full-text search within a chat",
		Long: `Search a chat using FTS5. Output is TSV for fzf integration:
  id, timestamp, sender, snippet

Recommended shell function (add to .zshrc):
  wcvf() {
    chat="$1"; shift
    wcv search "$chat" "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=2.. \
      --preview "wcv view '$chat' --plain --hit {1} --context 5 --query {q}" \
      --preview-window=right:60%:wrap \
      --preview-debounce=150 \
      --bind "enter:execute(wcv open '$chat' --message {1})"
  }`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			folder, err := resolveChat(cfg, args[0])
			if err != nil {
				return err
			}

			sess, err := session.FromFolder(folder, cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			if limit <= 0 {
				limit = cfg.PageSize
			}
			opts := search.Options{
				Senders:       senders,
				Since:         since,
				Until:         until,
				IncludeSystem: system,
				Limit:         limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(sess, args[1], opts)
			}

			opts.Query = args[1]
			results, err := search.Search(sess.DB, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				snippet = colorizeSnippet(snippet)
				sender := r.Sender
				if sender == "" && r.System {
					sender = "system"
				}
				// first field (message ID) stays plain for fzf {1}
				fmt.Printf("%d\t%s%s%s\t%s\t%s\n",
					r.ID,
					sColorDim, r.Ts, sColorReset,
					colorizeSender(sender),
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&senders, "sender", nil, "Filter by sender (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "Match only messages on or after date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Match only messages on or before date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&system, "system", false, "Include system messages")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = page size from config)")

	return cmd
}
