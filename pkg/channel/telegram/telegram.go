// Package telegram bridges Telegram updates into the hostlink pipeline and
// implements the platform send primitives over the Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"hostlink/pkg/channel"
	"hostlink/pkg/config"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const channelName = "telegram"
const messagePreviewLimit = 240
const typingRefreshInterval = 4 * time.Second

const welcomeText = "hostlink is ready. Use /help to see available commands."

// Adapter runs Telegram long polling and fans each update into the pipeline.
type Adapter struct {
	cfg config.TelegramConfig
	log *slog.Logger
	bot *telego.Bot
}

// NewAdapter validates Telegram configuration and constructs an adapter.
func NewAdapter(cfg config.TelegramConfig, log *slog.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("channels.telegram.token is required")
	}
	if strings.TrimSpace(cfg.AuthorizedChat) == "" {
		return nil, errors.New("channels.telegram.authorized_chat is required")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Adapter{
		cfg: cfg,
		log: log.With("component", "channel.telegram"),
	}, nil
}

// Name returns the channel identifier used in pipeline metadata and logs.
func (a *Adapter) Name() string {
	return channelName
}

// Run starts long polling and handles each update on its own goroutine so a
// blocking command never stalls unrelated updates.
func (a *Adapter) Run(ctx context.Context, pipeline *channel.Pipeline) error {
	if pipeline == nil {
		return errors.New("pipeline is required")
	}

	bot, err := telego.NewBot(strings.TrimSpace(a.cfg.Token))
	if err != nil {
		return fmt.Errorf("initialize telegram bot: %w", err)
	}
	a.bot = bot

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	a.log.Info("Telegram channel started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("telegram updates channel closed")
			}

			if update.Message == nil {
				continue
			}

			msg := extractMessage(update)
			a.log.Info("Received message", "chat_id", msg.ChannelID, "sender_id", msg.SenderID, "content", previewText(msg.Text))

			if isStartCommand(msg.Text) {
				a.greet(ctx, pipeline, msg)
				continue
			}

			go func() {
				stopTyping := a.startTypingIndicator(ctx, msg)
				defer stopTyping()
				pipeline.HandleInbound(ctx, a, msg)
			}()
		}
	}
}

// SendText sends a plain text reply to the message's chat.
func (a *Adapter) SendText(ctx context.Context, text string, msg channel.Message) bool {
	id, err := chatID(msg)
	if err != nil {
		a.log.Error("Cannot address reply", "chat_id", msg.ChannelID, "error", err)
		return false
	}

	if _, err := a.bot.SendMessage(ctx, tu.Message(tu.ID(id), text)); err != nil {
		a.log.Error("Failed to send telegram message", "chat_id", msg.ChannelID, "error", err)
		return false
	}

	return true
}

// SendImage uploads a photo with a caption to the message's chat.
func (a *Adapter) SendImage(ctx context.Context, path string, caption string, msg channel.Message) bool {
	id, err := chatID(msg)
	if err != nil {
		a.log.Error("Cannot address reply", "chat_id", msg.ChannelID, "error", err)
		return false
	}

	file, err := os.Open(path)
	if err != nil {
		a.log.Error("Cannot open image artifact", "path", path, "error", err)
		return false
	}
	defer file.Close()

	photo := tu.Photo(tu.ID(id), tu.File(file)).WithCaption(caption)
	if _, err := a.bot.SendPhoto(ctx, photo); err != nil {
		a.log.Error("Failed to send telegram photo", "chat_id", msg.ChannelID, "error", err)
		return false
	}

	return true
}

// greet answers the platform-level /start command for authorized senders.
func (a *Adapter) greet(ctx context.Context, pipeline *channel.Pipeline, msg channel.Message) {
	if !pipeline.Authorized(msg) {
		a.SendText(ctx, "Unauthorized.", msg)
		return
	}

	a.SendText(ctx, welcomeText, msg)
}

// extractMessage normalizes one Telegram update. It never fails: a malformed
// update yields the sentinel channel id so the authorization gate rejects it.
func extractMessage(update telego.Update) channel.Message {
	message := update.Message
	if message == nil {
		return channel.Message{ChannelID: channel.UnknownChannelID}
	}

	msg := channel.Message{
		ChannelID: strconv.FormatInt(message.Chat.ID, 10),
		Text:      message.Text,
		MessageID: strconv.Itoa(message.MessageID),
		SentAt:    time.Unix(message.Date, 0).UTC(),
	}

	if message.From != nil {
		msg.SenderID = strconv.FormatInt(message.From.ID, 10)
		msg.SenderName = message.From.Username
	}

	return msg
}

func isStartCommand(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "/start")
}

func chatID(msg channel.Message) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(msg.ChannelID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chat id %q is not numeric", msg.ChannelID)
	}

	return id, nil
}

// previewText returns a bounded log-safe preview of message text.
func previewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}

// startTypingIndicator sends an initial typing action and refreshes it until
// the returned cancel function is called.
func (a *Adapter) startTypingIndicator(ctx context.Context, msg channel.Message) context.CancelFunc {
	id, err := chatID(msg)
	if err != nil {
		return func() {}
	}

	typingCtx, cancel := context.WithCancel(ctx)

	sendTyping := func() {
		if err := a.bot.SendChatAction(typingCtx, tu.ChatAction(tu.ID(id), telego.ChatActionTyping)); err != nil && typingCtx.Err() == nil {
			a.log.Debug("Failed to send typing indicator", "chat_id", msg.ChannelID, "error", err)
		}
	}

	sendTyping()

	go func() {
		ticker := time.NewTicker(typingRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
				sendTyping()
			}
		}
	}()

	return cancel
}
