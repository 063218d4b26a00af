package telegram

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"hostlink/pkg/channel"
	"hostlink/pkg/config"

	"github.com/mymmrac/telego"
)

func TestNewAdapterValidation(t *testing.T) {
	if _, err := NewAdapter(config.TelegramConfig{AuthorizedChat: "42"}, slog.Default()); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewAdapter(config.TelegramConfig{Token: "token"}, slog.Default()); err == nil {
		t.Fatal("expected error for missing authorized chat")
	}

	adapter, err := NewAdapter(config.TelegramConfig{Token: "token", AuthorizedChat: "42"}, nil)
	if err != nil {
		t.Fatalf("NewAdapter error: %v", err)
	}
	if adapter.Name() != "telegram" {
		t.Fatalf("Name = %q, want %q", adapter.Name(), "telegram")
	}
}

func TestExtractMessage(t *testing.T) {
	sent := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	update := telego.Update{
		Message: &telego.Message{
			MessageID: 5,
			Date:      sent.Unix(),
			Text:      "/run ls",
			Chat:      telego.Chat{ID: 42},
			From:      &telego.User{ID: 7, Username: "operator"},
		},
	}

	msg := extractMessage(update)
	if msg.ChannelID != "42" {
		t.Fatalf("channel id = %q, want %q", msg.ChannelID, "42")
	}
	if msg.SenderID != "7" || msg.SenderName != "operator" {
		t.Fatalf("sender = %q/%q, want 7/operator", msg.SenderID, msg.SenderName)
	}
	if msg.Text != "/run ls" {
		t.Fatalf("text = %q, want %q", msg.Text, "/run ls")
	}
	if msg.MessageID != "5" {
		t.Fatalf("message id = %q, want %q", msg.MessageID, "5")
	}
	if !msg.SentAt.Equal(sent) {
		t.Fatalf("sent at = %v, want %v", msg.SentAt, sent)
	}
}

func TestExtractMessageMalformedUpdate(t *testing.T) {
	msg := extractMessage(telego.Update{})
	if msg.ChannelID != channel.UnknownChannelID {
		t.Fatalf("channel id = %q, want sentinel %q", msg.ChannelID, channel.UnknownChannelID)
	}
	if msg.Text != "" {
		t.Fatalf("text = %q, want empty", msg.Text)
	}
}

func TestExtractMessageWithoutSender(t *testing.T) {
	update := telego.Update{
		Message: &telego.Message{Chat: telego.Chat{ID: 42}, Text: "hi"},
	}

	msg := extractMessage(update)
	if msg.SenderID != "" || msg.SenderName != "" {
		t.Fatalf("sender = %q/%q, want absent", msg.SenderID, msg.SenderName)
	}
}

func TestIsStartCommand(t *testing.T) {
	if !isStartCommand(" /start ") || !isStartCommand("/START") {
		t.Fatal("expected /start variants to be recognized")
	}
	if isStartCommand("/startx") || isStartCommand("start") {
		t.Fatal("expected non-start text to be rejected")
	}
}

func TestChatID(t *testing.T) {
	id, err := chatID(channel.Message{ChannelID: " 42 "})
	if err != nil {
		t.Fatalf("chatID error: %v", err)
	}
	if id != 42 {
		t.Fatalf("chat id = %d, want 42", id)
	}

	if _, err := chatID(channel.Message{ChannelID: channel.UnknownChannelID}); err == nil {
		t.Fatal("expected error for non-numeric chat id")
	}
}

func TestPreviewText(t *testing.T) {
	if got := previewText(" hello "); got != "hello" {
		t.Fatalf("previewText = %q, want %q", got, "hello")
	}

	long := strings.Repeat("a", messagePreviewLimit+20)
	got := previewText(long)
	if len(got) != messagePreviewLimit+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("previewText long = %q, want bounded with ellipsis", got)
	}
}
