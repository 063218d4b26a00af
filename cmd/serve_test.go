package cmd

import (
	"testing"

	"hostlink/pkg/config"
)

func TestEnabledAdaptersRequiresAChannel(t *testing.T) {
	cfg := &config.Config{}

	if _, err := enabledAdapters(cfg, nil); err == nil {
		t.Fatal("expected error when no channels are enabled")
	}
}

func TestEnabledAdaptersBuildsTelegram(t *testing.T) {
	cfg := &config.Config{}
	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Telegram.Token = "tok"
	cfg.Channels.Telegram.AuthorizedChat = "42"

	adapters, err := enabledAdapters(cfg, nil)
	if err != nil {
		t.Fatalf("enabledAdapters error: %v", err)
	}
	if len(adapters) != 1 || adapters[0].Name() != "telegram" {
		t.Fatalf("adapters = %v, want one telegram adapter", channelNames(adapters))
	}
}

func TestEnabledAdaptersRejectsIncompleteTelegram(t *testing.T) {
	cfg := &config.Config{}
	cfg.Channels.Telegram.Enabled = true

	if _, err := enabledAdapters(cfg, nil); err == nil {
		t.Fatal("expected error for telegram channel without a token")
	}
}

func TestChannelNames(t *testing.T) {
	if got := channelNames(nil); got != "" {
		t.Fatalf("channelNames(nil) = %q, want empty", got)
	}
}
