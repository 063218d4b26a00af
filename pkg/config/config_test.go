package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	return path
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	path := writeConfig(t, `{
	  "channels": {"telegram": {"enabled": true, "token": "tok", "authorized_chat": "42"}},
	  "security": {"log_key": "4f5e", "cipher_key": 7},
	  "exec": {"timeout_seconds": 20, "screen_session": "ops"},
	  "capture": {"temp_dir": "/tmp"},
	  "gateway": {"host": "127.0.0.1", "port": 18790},
	  "logging": {"format": "json", "level": "debug", "add_source": true}
	}`)
	t.Setenv("HOSTLINK_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if !cfg.Channels.Telegram.Enabled || cfg.Channels.Telegram.Token != "tok" {
		t.Fatalf("telegram config = %+v", cfg.Channels.Telegram)
	}
	if cfg.Channels.Telegram.AuthorizedChat != "42" {
		t.Fatalf("authorized chat = %q, want %q", cfg.Channels.Telegram.AuthorizedChat, "42")
	}
	if cfg.Security.LogKey != "4f5e" || cfg.Security.CipherKey != 7 {
		t.Fatalf("security config = %+v", cfg.Security)
	}
	if cfg.Exec.TimeoutSeconds != 20 || cfg.Exec.ScreenSession != "ops" {
		t.Fatalf("exec config = %+v", cfg.Exec)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" || !cfg.Logging.AddSource {
		t.Fatalf("logging config = %+v", cfg.Logging)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{
	  "channels": {"telegram": {"enabled": true, "token": "filetok", "authorized_chat": "1"}},
	  "security": {"log_key": "aa", "cipher_key": 1}
	}`)
	t.Setenv("HOSTLINK_CONFIG", path)
	t.Setenv("TELEGRAM_BOT_TOKEN", "envtok")
	t.Setenv("TELEGRAM_AUTHORIZED_CHAT", "99")
	t.Setenv("HOSTLINK_LOG_KEY", "bb")
	t.Setenv("HOSTLINK_CIPHER_KEY", "9")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Channels.Telegram.Token != "envtok" {
		t.Fatalf("token = %q, want env override", cfg.Channels.Telegram.Token)
	}
	if cfg.Channels.Telegram.AuthorizedChat != "99" {
		t.Fatalf("authorized chat = %q, want env override", cfg.Channels.Telegram.AuthorizedChat)
	}
	if cfg.Security.LogKey != "bb" || cfg.Security.CipherKey != 9 {
		t.Fatalf("security config = %+v, want env overrides", cfg.Security)
	}
}

func TestLoadConfigIgnoresBadCipherKeyEnv(t *testing.T) {
	path := writeConfig(t, `{"security": {"cipher_key": 7}}`)
	t.Setenv("HOSTLINK_CONFIG", path)
	t.Setenv("HOSTLINK_CIPHER_KEY", "notanumber")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Security.CipherKey != 7 {
		t.Fatalf("cipher key = %d, want file value kept", cfg.Security.CipherKey)
	}
}

func TestLoadConfigInvalidEnvPath(t *testing.T) {
	t.Setenv("HOSTLINK_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing config path")
	}
}
