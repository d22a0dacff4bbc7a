package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.API.Token = expandEnvVars(cfg.API.Token)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // pick up a local .env if present

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			expandSensitiveFields(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 15
	}
	if cfg.API.RetryMax == 0 {
		cfg.API.RetryMax = 3
	}
	if cfg.Sync.PollSeconds == 0 {
		cfg.Sync.PollSeconds = 4
	}
	if cfg.Sync.PollPushSeconds == 0 {
		cfg.Sync.PollPushSeconds = 30
	}
	if cfg.Sync.HeartbeatSeconds == 0 {
		cfg.Sync.HeartbeatSeconds = 60
	}
	if cfg.Sync.PeerPollSeconds == 0 {
		cfg.Sync.PeerPollSeconds = 30
	}
	if cfg.Sync.TypingIdleSeconds == 0 {
		cfg.Sync.TypingIdleSeconds = 3
	}
	if cfg.Sync.BeaconTimeoutSeconds == 0 {
		cfg.Sync.BeaconTimeoutSeconds = 2
	}
	if cfg.Drafts.Store == "" {
		cfg.Drafts.Store = "sqlite"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = "console"
	}
}

// applyEnvOverrides reads MARKETCHAT_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETCHAT_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("MARKETCHAT_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("MARKETCHAT_ACTOR_ID"); v != "" {
		cfg.Actor.ID = v
	}
	if v := os.Getenv("MARKETCHAT_ACTOR_ROLE"); v != "" {
		cfg.Actor.Role = strings.ToLower(v)
	}
	if v := os.Getenv("MARKETCHAT_PUSH_URL"); v != "" {
		cfg.Push.URL = v
	}
	if v := os.Getenv("MARKETCHAT_PUSH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Push.Enabled = &b
		}
	}
	if v := os.Getenv("MARKETCHAT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
