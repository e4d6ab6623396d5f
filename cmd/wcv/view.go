package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/render"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/search"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/tui"
)

func viewCmd() *cobra.Command {
	var senders []string
	var since, until string
	var system bool
	var plain bool
	var hit, context, width int
	var query string

	cmd := &cobra.Command{
		Use:   "view <chat>",
		Short: "Browse a chat in a TUI, or print it with --plain",
		Long: `Opens a two-panel TUI over the chat: the message list on the left,
the conversation around the selection on the right. Type to filter.

With --plain (or when stdout is piped) the conversation is printed
instead; --hit and --context select a window, which is what the fzf
preview binding of 'wcv search' uses.`,
		Args: cobra.ExactArgs(1),
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

			if !plain && term.IsTerminal(int(os.Stdout.Fd())) {
				opts := search.Options{
					Senders:       senders,
					Since:         since,
					Until:         until,
					IncludeSystem: system,
				}
				return tui.RunBrowse(sess, opts)
			}

			out, _, err := render.Conversation(sess.DB, sess.Folder.Title, sess.Media, render.Options{
				HitID:   hit,
				Context: context,
				Width:   width,
				Query:   query,
			})
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&senders, "sender", nil, "Show only these senders in the TUI list (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "Show only messages on or after date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Show only messages on or before date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&system, "system", false, "Include system messages in the TUI list")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the conversation instead of opening the TUI")
	cmd.Flags().IntVar(&hit, "hit", -1, "Message ID to highlight (plain output)")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show (plain output)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width for plain output (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting (plain output)")

	return cmd
}
