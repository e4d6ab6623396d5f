package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/open"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
)

func openCmd() *cobra.Command {
	var message int
	var mediaName string

	cmd := &cobra.Command{
		Use:   "open <chat>",
		Short: "Open the transcript in $EDITOR, or an attachment with the desktop opener",
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

			if mediaName != "" {
				ref, ok := sess.Media.Resolve(mediaName)
				if !ok {
					return fmt.Errorf("no media file %q in %s", mediaName, sess.Folder.Path)
				}
				return open.OpenFile(ref.Path)
			}

			return open.OpenTranscript(sess, message)
		},
	}

	cmd.Flags().IntVar(&message, "message", -1, "Message ID to jump to")
	cmd.Flags().StringVar(&mediaName, "media", "", "Attachment file name to open instead of the transcript")

	return cmd
}
