package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/config"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/session"
	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/stats"
)

const barWidth = 40

var shades = []rune("·░▒▓█")

func statsCmd() *cobra.Command {
	var senders []string
	var since, until string

	cmd := &cobra.Command{
		Use:   "stats <chat>",
		Short: "Show message counts, daily activity and a weekday/hour heatmap",
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
				IncludeSystem: true,
			})
			s := stats.Compute(msgs)

			printSummary(sess.Folder.Title, sess.Me(cfg), s)
			printDaily(s)
			printHeatmap(s)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&senders, "sender", nil, "Count only these senders (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "Count only messages on or after date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Count only messages on or before date (YYYY-MM-DD)")

	return cmd
}

func printSummary(title, me string, s stats.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Chat:\t%s\n", title)
	fmt.Fprintf(w, "Messages:\t%d\n", s.Total)
	fmt.Fprintf(w, "System:\t%d\n", s.System)
	fmt.Fprintf(w, "Media:\t%d\n", s.Media)
	fmt.Fprintf(w, "Active days:\t%d\n", s.Days)
	if !s.First.IsZero() {
		fmt.Fprintf(w, "First:\t%s\n", s.First.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "Last:\t%s\n", s.Last.Format("2006-01-02 15:04"))
	}
	w.Flush()

	if len(s.Participants) > 0 {
		fmt.Println("\nParticipants")
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, p := range s.Participants {
			name := p.Name
			if name == me {
				name += " (you)"
			}
			fmt.Fprintf(w, "  %s\t%d\n", name, p.Count)
		}
		w.Flush()
	}
}

func printDaily(s stats.Summary) {
	max := s.MaxDaily()
	if max == 0 {
		return
	}
	fmt.Println("\nDaily activity")
	for _, d := range s.Daily {
		n := d.Count * barWidth / max
		if n == 0 {
			n = 1 // every listed day has at least one message
		}
		fmt.Printf("  %s  %s %d\n", d.Day.Format("2006-01-02"), strings.Repeat("█", n), d.Count)
	}
}

func printHeatmap(s stats.Summary) {
	max := s.MaxHour()
	if max == 0 {
		return
	}
	fmt.Println("\nActivity by weekday and hour (00-23)")
	for i, row := range s.Heatmap {
		var b strings.Builder
		for _, n := range row {
			b.WriteRune(shade(n, max))
		}
		fmt.Printf("  %s  %s\n", stats.WeekdayNames[i], b.String())
	}
}

func shade(n, max int) rune {
	if n == 0 {
		return shades[0]
	}
	levels := len(shades) - 1
	idx := (n*levels + max - 1) / max
	return shades[idx]
}
