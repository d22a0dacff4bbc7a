package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes validation, for tests to break
// one field at a time.
func validConfig() Config {
	cfg := Defaults()
	cfg.API.BaseURL = "https://market.example.test"
	cfg.Actor.ID = "user-1"
	cfg.Actor.Role = "buyer"
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_MissingBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = ""
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "api.baseUrl", issues[0].Path)
}

func TestValidate_BadBaseURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = "ftp://market.example.test"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "api.baseUrl", issues[0].Path)
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.API.TimeoutSeconds = -5
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "api.timeoutSeconds", issues[0].Path)
}

func TestValidate_MissingActor(t *testing.T) {
	cfg := validConfig()
	cfg.Actor.ID = ""
	cfg.Actor.Role = ""
	issues := Validate(&cfg)

	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	assert.Contains(t, paths, "actor.id")
	assert.Contains(t, paths, "actor.role")
}

func TestValidate_InvalidRole(t *testing.T) {
	cfg := validConfig()
	cfg.Actor.Role = "middleman"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "actor.role", issues[0].Path)
	assert.Contains(t, issues[0].Message, "middleman")
}

func TestValidate_ValidRoles(t *testing.T) {
	for _, role := range []string{"buyer", "supplier", "admin"} {
		cfg := validConfig()
		cfg.Actor.Role = role
		assert.Empty(t, Validate(&cfg), "role %q should be valid", role)
	}
}

func TestValidate_NegativeSyncInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.PollSeconds = -1
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "sync.pollSeconds", issues[0].Path)
}

func TestValidate_InvalidPushURL(t *testing.T) {
	cfg := validConfig()
	cfg.Push.URL = "https://market.example.test/events"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "push.url", issues[0].Path)
}

func TestValidate_ValidPushURLs(t *testing.T) {
	for _, u := range []string{"", "ws://localhost:8080/events", "wss://market.example.test/api/chat/events"} {
		cfg := validConfig()
		cfg.Push.URL = u
		assert.Empty(t, Validate(&cfg), "push url %q should be valid", u)
	}
}

func TestValidate_InvalidDraftStore(t *testing.T) {
	cfg := validConfig()
	cfg.Drafts.Store = "redis"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "drafts.store", issues[0].Path)
}

func TestValidate_ValidDraftStores(t *testing.T) {
	for _, store := range []string{"sqlite", "memory", ""} {
		cfg := validConfig()
		cfg.Drafts.Store = store
		assert.Empty(t, Validate(&cfg), "draft store %q should be valid", store)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "logging.level", issues[0].Path)
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"silent", "fatal", "error", "warn", "info", "debug", "trace", ""} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.Empty(t, Validate(&cfg), "log level %q should be valid", level)
	}
}

func TestValidate_InvalidStyle(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Style = "pretty"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "logging.style", issues[0].Path)
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "actor.role", Message: "actor role is required"}
	assert.Equal(t, "actor.role: actor role is required", issue.String())
}
