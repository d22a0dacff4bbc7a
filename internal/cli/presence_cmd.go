package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newPresenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presence <user-id>",
		Short: "Show whether a user is currently online",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			p, err := client.GetUserStatus(ctx, args[0])
			if err != nil {
				return err
			}

			if p.IsOnline {
				fmt.Printf("%s is online\n", p.UserID)
				return nil
			}

			if p.LastSeen != nil {
				fmt.Printf("%s is offline (last seen %s)\n", p.UserID, formatLastSeen(*p.LastSeen))
			} else {
				fmt.Printf("%s is offline\n", p.UserID)
			}
			return nil
		},
	}

	return cmd
}

// formatLastSeen renders a last-seen timestamp the way the conversation
// header does: relative for recent activity, absolute beyond a day.
func formatLastSeen(t time.Time) string {
	since := time.Since(t)
	switch {
	case since < time.Minute:
		return "just now"
	case since < time.Hour:
		return fmt.Sprintf("%d minute(s) ago", int(since.Minutes()))
	case since < 24*time.Hour:
		return fmt.Sprintf("%d hour(s) ago", int(since.Hours()))
	default:
		return t.Format("2006-01-02 15:04")
	}
}
