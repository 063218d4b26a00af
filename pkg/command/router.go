package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Router owns the command-to-handler mapping and dispatches parsed commands.
//
// Route never lets a fault escape: parse failures, unknown commands, and
// panicking handlers are all converted into router-authored Results. Route is
// safe for concurrent use; Register and Unregister take the write lock and
// are expected at startup/shutdown or administrative moments.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	commands map[string]string
	log      *slog.Logger
}

// NewRouter creates an empty router.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		handlers: make(map[string]Handler),
		commands: make(map[string]string),
		log:      log.With("component", "command.router"),
	}
}

// Register binds every command the handler declares to it. A command already
// owned by another handler is reassigned to the new one; the conflict is
// logged, not an error. Re-registering the same handler is idempotent.
func (r *Router) Register(handler Handler) {
	if handler == nil {
		return
	}

	name := handler.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[name] = handler
	for _, cmd := range handler.Commands() {
		if owner, ok := r.commands[cmd]; ok && owner != name {
			r.log.Warn("Command ownership override", "command", cmd, "previous", owner, "handler", name)
		}
		r.commands[cmd] = name
	}

	r.log.Info("Registered handler", "handler", name, "commands", strings.Join(handler.Commands(), ","))
}

// Unregister removes a handler and every command it currently owns, including
// mappings it acquired through registration overrides. It reports whether the
// handler was registered.
func (r *Router) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[name]; !ok {
		return false
	}

	for cmd, owner := range r.commands {
		if owner == name {
			delete(r.commands, cmd)
		}
	}
	delete(r.handlers, name)

	r.log.Info("Unregistered handler", "handler", name)
	return true
}

// Route parses the message text and invokes the owning handler. The returned
// Result is the handler's own on success, or a router-authored error result
// for empty, malformed, or unknown commands and for handler panics.
func (r *Router) Route(ctx context.Context, text string, from Origin) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Handler panicked", "text", text, "panic", rec)
			result = r.errorResult(fmt.Sprintf("Routing error: %v", rec))
		}
	}()

	parsed, err := Parse(text)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			return r.errorResult(fmt.Sprintf("Invalid arguments for %s: %s", parseErr.Command, parseErr.Detail))
		}
		return r.errorResult(fmt.Sprintf("Routing error: %v", err))
	}

	if parsed.Name == "" {
		return r.errorResult("Empty command")
	}

	if parsed.Name == "help" {
		topic := ""
		if positional, ok := parsed.Args.(PositionalArgs); ok && len(positional.Values) > 0 {
			topic = positional.Values[0]
		}
		return Result{Success: true, Message: r.Help(topic), Handler: RouterName}
	}

	r.mu.RLock()
	owner, ok := r.commands[parsed.Name]
	handler := r.handlers[owner]
	r.mu.RUnlock()

	if !ok || handler == nil {
		return r.errorResult("Unknown command: " + parsed.Name)
	}

	r.log.Info("Routing command", "command", parsed.Name, "handler", owner, "channel_id", from.ChannelID)

	return handler.Handle(ctx, Request{Name: parsed.Name, Args: parsed.Args, From: from})
}

// Help returns the help text for one command, or the full help block grouped
// by handler when command is empty.
func (r *Router) Help(command string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if command != "" {
		command = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(command), commandMarker))
		owner, ok := r.commands[command]
		if !ok {
			return "Unknown command: " + command
		}
		return r.handlers[owner].Help(command)
	}

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]string, 0, len(names))
	for _, name := range names {
		sections = append(sections, fmt.Sprintf("*%s commands:*\n%s", name, r.handlers[name].Help("")))
	}

	return strings.Join(sections, "\n\n")
}

// Commands returns every currently mapped command name, sorted.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for cmd := range r.commands {
		names = append(names, cmd)
	}
	sort.Strings(names)

	return names
}

func (r *Router) errorResult(message string) Result {
	return Result{Success: false, Message: message, Handler: RouterName}
}
