package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		API: APIConfig{
			TimeoutSeconds: 15,
			RetryMax:       3,
		},
		Sync: SyncConfig{
			PollSeconds:          4,
			PollPushSeconds:      30,
			HeartbeatSeconds:     60,
			PeerPollSeconds:      30,
			TypingIdleSeconds:    3,
			BeaconTimeoutSeconds: 2,
		},
		Drafts: DraftsConfig{
			Store: "sqlite",
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "console",
		},
	}
}
