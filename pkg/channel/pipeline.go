package channel

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hostlink/pkg/command"
	"hostlink/pkg/metrics"
)

// Pipeline orchestrates one inbound message end-to-end: authorization,
// freshness gating, routing, and delivery of the result. It is immutable
// after construction and safe for concurrent use; each inbound event is
// expected to run through HandleInbound on its own goroutine.
type Pipeline struct {
	router    *command.Router
	principal string
	startedAt time.Time
	tempRoot  string
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewPipeline constructs the gate around the given router. principal is the
// single channel id allowed to issue commands; tempRoot bounds which result
// artifacts may be deleted after delivery.
func NewPipeline(router *command.Router, principal string, tempRoot string, m *metrics.Metrics, log *slog.Logger) (*Pipeline, error) {
	if router == nil {
		return nil, errors.New("router is required")
	}

	principal = strings.TrimSpace(principal)
	if principal == "" {
		return nil, errors.New("authorized channel id is required")
	}

	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		router:    router,
		principal: principal,
		startedAt: time.Now().UTC(),
		tempRoot:  filepath.Clean(tempRoot),
		metrics:   m,
		log:       log.With("component", "channel.pipeline"),
	}, nil
}

// Router exposes the underlying router for help and command listing.
func (p *Pipeline) Router() *command.Router {
	return p.router
}

// Authorized reports whether the message arrived on the configured principal
// channel. Comparison is trimmed string equality so numeric and string forms
// of the same id match.
func (p *Pipeline) Authorized(msg Message) bool {
	if strings.TrimSpace(msg.ChannelID) == p.principal {
		return true
	}

	p.log.Warn("Unauthorized access attempt", "channel_id", msg.ChannelID)
	return false
}

// Fresh reports whether the message was sent after this process started.
// Messages queued by the transport while the process was down fail this
// check, which prevents a backlog from replaying as live commands.
func (p *Pipeline) Fresh(msg Message) bool {
	return !msg.SentAt.Before(p.startedAt)
}

// HandleInbound runs the full inbound pipeline for one extracted message.
// Nothing escapes: a fault anywhere is recovered, logged, and reported to the
// sender on a best-effort basis.
func (p *Pipeline) HandleInbound(ctx context.Context, transport Transport, msg Message) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("Inbound pipeline fault", "channel", transport.Name(), "panic", rec)
			func() {
				defer func() { _ = recover() }()
				transport.SendText(ctx, "Error processing message.", msg)
			}()
		}
	}()

	p.metrics.Inbound(transport.Name())

	if !p.Authorized(msg) {
		p.metrics.Rejected(metrics.ReasonUnauthorized)
		transport.SendText(ctx, "Unauthorized.", msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !p.Fresh(msg) {
		p.metrics.Rejected(metrics.ReasonStale)
		p.log.Info("Ignoring stale message", "channel_id", msg.ChannelID, "sent_at", msg.SentAt)
		transport.SendText(ctx, "Ignoring message sent before the agent started.", msg)
		return
	}

	result := p.router.Route(ctx, text, command.Origin{
		Channel:    transport.Name(),
		ChannelID:  msg.ChannelID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
	})
	p.metrics.Dispatched(result.Success)

	p.deliver(ctx, transport, result, msg)
}

// deliver sends the result text, then any image artifact, then cleans the
// artifact up. Send and cleanup failures are logged and counted but never
// change the command's own outcome.
func (p *Pipeline) deliver(ctx context.Context, transport Transport, result command.Result, msg Message) {
	message := result.Message
	if message == "" {
		message = "No message"
	}

	if !transport.SendText(ctx, message, msg) {
		p.metrics.DeliveryFailure(transport.Name(), "text")
	}

	path, ok := result.ImagePath()
	if !ok {
		return
	}

	caption := "📸 " + message
	if !result.Success {
		caption = "❌ " + message
	}

	if !transport.SendImage(ctx, path, caption, msg) {
		p.metrics.DeliveryFailure(transport.Name(), "image")
	}

	p.cleanupArtifact(path)
}

// cleanupArtifact removes a delivered artifact when it lies under the
// transient-files root. Paths outside the root are left alone.
func (p *Pipeline) cleanupArtifact(path string) {
	cleaned := filepath.Clean(path)
	rel, err := filepath.Rel(p.tempRoot, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		p.log.Debug("Leaving artifact outside transient root", "path", path)
		return
	}

	if err := os.Remove(cleaned); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.log.Warn("Could not clean up artifact", "path", cleaned, "error", err)
	}
}
