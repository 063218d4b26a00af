package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	envConfigPath     = "HOSTLINK_CONFIG"
	envTelegramToken  = "TELEGRAM_BOT_TOKEN"
	envAuthorizedChat = "TELEGRAM_AUTHORIZED_CHAT"
	envLogKey         = "HOSTLINK_LOG_KEY"
	envCipherKey      = "HOSTLINK_CIPHER_KEY"
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Channels ChannelsConfig `json:"channels"`
	Security SecurityConfig `json:"security"`
	Exec     ExecConfig     `json:"exec,omitempty"`
	Capture  CaptureConfig  `json:"capture,omitempty"`
	Gateway  GatewayConfig  `json:"gateway"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// ChannelsConfig stores transport adapter settings.
type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

// TelegramConfig configures the Telegram channel.
//
// AuthorizedChat is the single chat allowed to issue commands; every other
// sender is rejected by the pipeline gate.
type TelegramConfig struct {
	Enabled        bool   `json:"enabled"`
	Token          string `json:"token"`
	AuthorizedChat string `json:"authorized_chat"`
}

// SecurityConfig carries the credential material consumed by the security
// handler: the cipher-key-encoded secret and the key used to decode it.
type SecurityConfig struct {
	LogKey    string `json:"log_key"`
	CipherKey int    `json:"cipher_key"`
}

// ExecConfig bounds shell command execution.
type ExecConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	ScreenSession  string `json:"screen_session"`
}

// CaptureConfig controls where transient capture artifacts are written.
type CaptureConfig struct {
	TempDir string `json:"temp_dir"`
}

// GatewayConfig configures the status/metrics HTTP endpoint.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoadConfig resolves config.json, unmarshals it, and applies environment
// overrides.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file
// config so secrets can stay out of config.json.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if token := strings.TrimSpace(os.Getenv(envTelegramToken)); token != "" {
		cfg.Channels.Telegram.Token = token
	}

	if chat := strings.TrimSpace(os.Getenv(envAuthorizedChat)); chat != "" {
		cfg.Channels.Telegram.AuthorizedChat = chat
	}

	if key := strings.TrimSpace(os.Getenv(envLogKey)); key != "" {
		cfg.Security.LogKey = key
	}

	if raw := strings.TrimSpace(os.Getenv(envCipherKey)); raw != "" {
		if key, err := strconv.Atoi(raw); err == nil {
			cfg.Security.CipherKey = key
		}
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is HOSTLINK_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("%s does not point to a file: %s", envConfigPath, value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("config.json not found (checked %s and %s)", candidates[0], candidates[1])
}
