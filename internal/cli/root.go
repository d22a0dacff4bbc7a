package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/api"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/config"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketchat",
		Short: "MarketChat — marketplace chat client",
		Long:  "MarketChat is a terminal client for the marketplace chat backend: conversations, messages, presence, and support-ticket triage.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			// Soft read for logging preferences only; validation runs later,
			// per command. The flag wins over the file.
			cfg, _ := config.Load(paths.Config)
			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			if cfg.Logging.File != "" {
				if f, ferr := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); ferr == nil {
					// Log files get raw JSON lines; the console style is for
					// terminals.
					log = logging.NewStyled(f, level, "json")
					return nil
				}
			}
			log = logging.NewStyled(nil, level, cfg.Logging.Style)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.marketchat/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConversationsCmd())
	cmd.AddCommand(newMessagesCmd())
	cmd.AddCommand(newTemplatesCmd())
	cmd.AddCommand(newDraftsCmd())
	cmd.AddCommand(newPresenceCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig loads the config file and fails on validation issues, since
// every networked command needs a reachable backend and a signed-in actor.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return config.Config{}, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return config.Config{}, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// newAPIClient builds the chat API client from config.
func newAPIClient(cfg config.Config) (*api.Client, error) {
	return api.New(api.Config{
		BaseURL:       cfg.API.BaseURL,
		Token:         cfg.API.Token,
		Timeout:       cfg.API.Timeout(),
		RetryMax:      cfg.API.RetryMax,
		BeaconTimeout: cfg.Sync.BeaconTimeout(),
		Log:           log,
	})
}

// actorRole maps the configured role string onto the domain type.
func actorRole(cfg config.Config) domain.ParticipantRole {
	return domain.ParticipantRole(cfg.Actor.Role)
}

// pushEndpoint returns the socket URL the watch command dials, or "" when
// push is off or no endpoint can be derived. Status reporting goes through
// the same resolution so the two never disagree.
func pushEndpoint(cfg config.Config) string {
	if !cfg.Push.IsEnabled() {
		return ""
	}
	return cfg.Push.ResolveURL(cfg.API.BaseURL)
}

// describeAPIError rewords a backend failure for the terminal: a missing
// conversation is named instead of echoed as a status line, and failures
// worth retrying say so. Anything else passes through untouched.
func describeAPIError(err error, conversationID string) error {
	if err == nil {
		return nil
	}
	if api.IsNotFound(err) {
		return fmt.Errorf("conversation %q not found", conversationID)
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Temporary() {
		return fmt.Errorf("%w (temporary, retry in a moment)", err)
	}
	return err
}
