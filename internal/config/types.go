package config

import (
	"strings"
	"time"
)

// Config is the root configuration for marketchat.
type Config struct {
	API     APIConfig     `yaml:"api,omitempty"`
	Actor   ActorConfig   `yaml:"actor,omitempty"`
	Sync    SyncConfig    `yaml:"sync,omitempty"`
	Push    PushConfig    `yaml:"push,omitempty"`
	Drafts  DraftsConfig  `yaml:"drafts,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// APIConfig points the client at the marketplace chat backend.
type APIConfig struct {
	BaseURL        string `yaml:"baseUrl,omitempty"`        // e.g. https://market.example.com
	Token          string `yaml:"token,omitempty"`          // bearer token; supports ${ENV_VAR}
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // per-request timeout
	RetryMax       int    `yaml:"retryMax,omitempty"`       // retries for idempotent reads
}

// Timeout returns the per-request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ActorConfig identifies the user this client acts as.
type ActorConfig struct {
	ID   string `yaml:"id,omitempty"`
	Role string `yaml:"role,omitempty"` // "buyer" | "supplier" | "admin"
	Name string `yaml:"name,omitempty"`
}

// SyncConfig tunes the polling and signalling cadence. All values are
// seconds; zero means "use the default".
type SyncConfig struct {
	PollSeconds          int `yaml:"pollSeconds,omitempty"`          // active-conversation poll, no push
	PollPushSeconds      int `yaml:"pollPushSeconds,omitempty"`      // active-conversation poll while push connected
	HeartbeatSeconds     int `yaml:"heartbeatSeconds,omitempty"`     // own-presence heartbeat
	PeerPollSeconds      int `yaml:"peerPollSeconds,omitempty"`      // counterpart presence poll
	TypingIdleSeconds    int `yaml:"typingIdleSeconds,omitempty"`    // typing indicator auto-off
	BeaconTimeoutSeconds int `yaml:"beaconTimeoutSeconds,omitempty"` // offline beacon hard deadline
}

// PollInterval is the message poll cadence without a connected push channel.
func (s SyncConfig) PollInterval() time.Duration {
	return time.Duration(s.PollSeconds) * time.Second
}

// PollPushInterval is the relaxed poll cadence while push is connected.
func (s SyncConfig) PollPushInterval() time.Duration {
	return time.Duration(s.PollPushSeconds) * time.Second
}

// HeartbeatInterval is the own-presence heartbeat cadence.
func (s SyncConfig) HeartbeatInterval() time.Duration {
	return time.Duration(s.HeartbeatSeconds) * time.Second
}

// PeerPollInterval is the counterpart presence poll cadence.
func (s SyncConfig) PeerPollInterval() time.Duration {
	return time.Duration(s.PeerPollSeconds) * time.Second
}

// TypingIdle is how long after the last keystroke typing reverts to false.
func (s SyncConfig) TypingIdle() time.Duration {
	return time.Duration(s.TypingIdleSeconds) * time.Second
}

// BeaconTimeout is the hard deadline for the shutdown offline beacon.
func (s SyncConfig) BeaconTimeout() time.Duration {
	return time.Duration(s.BeaconTimeoutSeconds) * time.Second
}

// PushConfig controls the optional websocket event channel.
type PushConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // defaults to true
	URL     string `yaml:"url,omitempty"`     // ws(s):// endpoint; derived from api.baseUrl when empty
}

// IsEnabled reports whether the push channel should be dialed.
func (p PushConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// ResolveURL returns the websocket endpoint, deriving it from the HTTP base
// URL when none is configured explicitly. Returns "" when no endpoint can
// be derived.
func (p PushConfig) ResolveURL(apiBaseURL string) string {
	if p.URL != "" {
		return p.URL
	}
	u := apiBaseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	default:
		return ""
	}
	return strings.TrimRight(u, "/") + "/api/chat/ws"
}

// DraftsConfig selects where unsent drafts are kept.
type DraftsConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "console" | "json"
	File  string `yaml:"file,omitempty"`
}
