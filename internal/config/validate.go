package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// API validation
	if cfg.API.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "api.baseUrl",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		issues = append(issues, ValidationIssue{
			Path:    "api.baseUrl",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.API.BaseURL),
		})
	}
	if cfg.API.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "api.timeoutSeconds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.API.TimeoutSeconds),
		})
	}
	if cfg.API.RetryMax < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "api.retryMax",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.API.RetryMax),
		})
	}

	// Actor validation
	if cfg.Actor.ID == "" {
		issues = append(issues, ValidationIssue{
			Path:    "actor.id",
			Message: "actor id is required",
		})
	}
	validRoles := []string{"buyer", "supplier", "admin"}
	if cfg.Actor.Role == "" {
		issues = append(issues, ValidationIssue{
			Path:    "actor.role",
			Message: "actor role is required",
		})
	} else if !slices.Contains(validRoles, cfg.Actor.Role) {
		issues = append(issues, ValidationIssue{
			Path:    "actor.role",
			Message: fmt.Sprintf("must be one of %v, got %q", validRoles, cfg.Actor.Role),
		})
	}

	// Sync validation
	syncFields := []struct {
		path  string
		value int
	}{
		{"sync.pollSeconds", cfg.Sync.PollSeconds},
		{"sync.pollPushSeconds", cfg.Sync.PollPushSeconds},
		{"sync.heartbeatSeconds", cfg.Sync.HeartbeatSeconds},
		{"sync.peerPollSeconds", cfg.Sync.PeerPollSeconds},
		{"sync.typingIdleSeconds", cfg.Sync.TypingIdleSeconds},
		{"sync.beaconTimeoutSeconds", cfg.Sync.BeaconTimeoutSeconds},
	}
	for _, f := range syncFields {
		if f.value < 0 {
			issues = append(issues, ValidationIssue{
				Path:    f.path,
				Message: fmt.Sprintf("must not be negative, got %d", f.value),
			})
		}
	}

	// Push validation
	if cfg.Push.URL != "" && !strings.HasPrefix(cfg.Push.URL, "ws://") && !strings.HasPrefix(cfg.Push.URL, "wss://") {
		issues = append(issues, ValidationIssue{
			Path:    "push.url",
			Message: fmt.Sprintf("must be a ws(s) URL, got %q", cfg.Push.URL),
		})
	}

	// Drafts validation
	validStores := []string{"sqlite", "memory"}
	if cfg.Drafts.Store != "" && !slices.Contains(validStores, cfg.Drafts.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "drafts.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Drafts.Store),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}
	validStyles := []string{"console", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	return issues
}
