package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/config"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show marketchat status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("MarketChat %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Drafts:  %s\n", paths.Drafts)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			// Load config
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Printf("Config:  error loading: %v\n", err)
				return nil
			}

			// Backend + actor
			fmt.Printf("Backend: %s (timeout=%s retries=%d)\n",
				cfg.API.BaseURL, cfg.API.Timeout(), cfg.API.RetryMax)
			fmt.Printf("Actor:   id=%s role=%s\n", cfg.Actor.ID, cfg.Actor.Role)

			// Sync cadence
			fmt.Printf("Sync:    poll=%s pollWithPush=%s heartbeat=%s peerPoll=%s\n",
				cfg.Sync.PollInterval(), cfg.Sync.PollPushInterval(),
				cfg.Sync.HeartbeatInterval(), cfg.Sync.PeerPollInterval())

			// Push socket, resolved exactly the way watch resolves it.
			if u := pushEndpoint(cfg); u != "" {
				fmt.Printf("Push:    %s\n", u)
			} else {
				fmt.Println("Push:    disabled (polling only)")
			}

			// Draft store
			store := cfg.Drafts.Store
			if store == "" {
				store = "sqlite"
			}
			fmt.Printf("Drafts:  store=%s\n", store)

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
