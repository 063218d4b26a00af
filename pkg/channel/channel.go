// Package channel defines the platform-facing boundary: the normalized
// message an adapter extracts from its transport, the send primitives it must
// expose, and the pipeline that gates and dispatches inbound messages.
package channel

import (
	"context"
	"time"
)

// UnknownChannelID is the sentinel produced when extraction fails; the
// authorization gate rejects it instead of the pipeline crashing.
const UnknownChannelID = "unknown"

// Message is the canonical representation of one inbound platform event.
// It is constructed only by an adapter's extraction step and never outlives
// the handling of that event.
type Message struct {
	ChannelID  string
	SenderID   string
	SenderName string
	Text       string
	MessageID  string
	SentAt     time.Time
}

// Transport exposes a platform's send primitives. Both are fallible and
// non-throwing: failure is communicated by the boolean return and a log line
// inside the implementation.
type Transport interface {
	Name() string
	SendText(ctx context.Context, text string, msg Message) bool
	SendImage(ctx context.Context, path string, caption string, msg Message) bool
}

// Adapter bridges one external transport (for example Telegram) into the
// pipeline. Run owns the platform receive loop and blocks until the context
// is cancelled or the transport fails.
type Adapter interface {
	Name() string
	Run(ctx context.Context, pipeline *Pipeline) error
}
