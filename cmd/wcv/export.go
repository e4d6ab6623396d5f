package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/index"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
)

func exportCmd() *cobra.Command {
	var senders []string
	var since, until string
	var system bool
	var out string

	cmd := &cobra.Command{
		Use:   "export <chat>",
		Short: "Export a chat as CSV (timestamp, sender, text, media)",
		Args:  cobra.ExactArgs(1),
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

			msgs := sess.Select(session.Filter{
				Senders:       senders,
				Since:         since,
				Until:         until,
				IncludeSystem: system,
			})

			var w io.Writer = os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			cw := csv.NewWriter(w)
			if err := cw.Write([]string{"timestamp", "sender", "text", "media"}); err != nil {
				return err
			}
			for _, m := range msgs {
				rec := []string{
					index.FormatTs(m.Timestamp),
					m.Sender,
					m.Body,
					strconv.FormatBool(m.Media),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}

			if out != "" {
				fmt.Fprintf(os.Stderr, "Wrote %d messages to %s\n", len(msgs), out)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&senders, "sender", nil, "Export only these senders (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "Export only messages on or after date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Export only messages on or before date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&system, "system", true, "Include system messages")
	cmd.Flags().StringVar(&out, "out", "", "Write to file instead of stdout")

	return cmd
}
