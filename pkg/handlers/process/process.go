// Package process implements shell execution and process control commands.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"hostlink/pkg/command"
	"hostlink/pkg/config"
)

const handlerName = "process"

const (
	DefaultTimeout       = 10 * time.Second
	DefaultScreenSession = "hostlink"
	MaxOutputLength      = 4000
)

// Handler executes shell commands, feeds a shared screen session, lists
// processes, and kills them by pid or name.
type Handler struct {
	timeout time.Duration
	session string
	log     *slog.Logger
}

// New creates the process handler with exec limits from config.
func New(cfg config.ExecConfig, log *slog.Logger) *Handler {
	timeout := DefaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	session := strings.TrimSpace(cfg.ScreenSession)
	if session == "" {
		session = DefaultScreenSession
	}

	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		timeout: timeout,
		session: session,
		log:     log.With("component", "handlers.process"),
	}
}

func (h *Handler) Name() string {
	return handlerName
}

func (h *Handler) Commands() []string {
	return []string{"run", "exec", "run_screen", "ps", "kill"}
}

func (h *Handler) Handle(ctx context.Context, req command.Request) command.Result {
	switch req.Name {
	case "run", "exec":
		args, ok := req.Args.(command.ExecArgs)
		if !ok {
			return h.failure("Usage: /" + req.Name + " <command>")
		}
		success, output := h.execute(ctx, args.Command)
		return command.Result{Success: success, Message: output, Handler: handlerName}
	case "run_screen":
		args, ok := req.Args.(command.ExecArgs)
		if !ok {
			return h.failure("Usage: /run_screen <command>")
		}
		return h.sendToScreen(ctx, args.Command)
	case "ps":
		filter := ""
		if args, ok := req.Args.(command.FilterArgs); ok {
			filter = args.Filter
		}
		return h.listProcesses(ctx, filter)
	case "kill":
		args, ok := req.Args.(command.KillArgs)
		if !ok || args.Target == "" {
			return h.failure("Usage: /kill <pid-or-name>")
		}
		return h.killProcess(ctx, args.Target)
	default:
		return h.failure("Unknown command: " + req.Name)
	}
}

func (h *Handler) Help(cmd string) string {
	help := map[string]string{
		"run":        "/run <command> - Execute a shell command and return its output",
		"exec":       "/exec <command> - Alias for /run",
		"run_screen": "/run_screen <command> - Send a command to the shared screen session",
		"ps":         "/ps [filter] - List running processes, optionally filtered",
		"kill":       "/kill <pid-or-name> - Kill a process by pid or by name",
	}

	if cmd != "" {
		if text, ok := help[cmd]; ok {
			return text
		}
		return "Unknown command: " + cmd
	}

	lines := make([]string, 0, len(h.Commands()))
	for _, name := range h.Commands() {
		lines = append(lines, help[name])
	}
	return strings.Join(lines, "\n")
}

// execute runs one shell command under the configured timeout. It reports
// failure through the boolean, never an error: the output (or timeout
// notice) is the user-facing message either way.
func (h *Handler) execute(ctx context.Context, shellCmd string) (bool, string) {
	runCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.log.Info("Executing command", "command", shellCmd)

	cmd := exec.CommandContext(runCtx, "sh", "-c", shellCmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return false, fmt.Sprintf("Command timed out after %s", h.timeout)
	}

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		output = strings.TrimSpace(stderr.String())
	}
	if output == "" {
		output = "(no output)"
	}
	output = truncateOutput(output)

	if err != nil {
		h.log.Warn("Command failed", "command", shellCmd, "error", err)
		return false, output
	}

	return true, output
}

// sendToScreen ensures the shared screen session exists, then stuffs the
// command into it followed by a newline.
func (h *Handler) sendToScreen(ctx context.Context, shellCmd string) command.Result {
	if err := h.ensureScreenSession(ctx); err != nil {
		return h.failure("Could not prepare screen session: " + err.Error())
	}

	stuffCmd := fmt.Sprintf("screen -S %s -X stuff %q", h.session, shellCmd+"\n")
	success, output := h.execute(ctx, stuffCmd)
	if !success {
		return h.failure("Could not send to screen session: " + output)
	}

	h.log.Info("Sent command to screen session", "session", h.session, "command", shellCmd)
	return command.Result{Success: true, Message: fmt.Sprintf("Sent to screen session %q: %s", h.session, shellCmd), Handler: handlerName}
}

func (h *Handler) ensureScreenSession(ctx context.Context) error {
	listCmd := exec.CommandContext(ctx, "screen", "-ls")
	output, _ := listCmd.CombinedOutput()
	if strings.Contains(string(output), h.session) {
		return nil
	}

	if err := exec.CommandContext(ctx, "screen", "-dmS", h.session).Run(); err != nil {
		return fmt.Errorf("create screen session %q: %w", h.session, err)
	}

	h.log.Info("Created screen session", "session", h.session)
	return nil
}

func (h *Handler) listProcesses(ctx context.Context, filter string) command.Result {
	shellCmd := "ps aux"
	if filter != "" {
		shellCmd += " | grep " + filter
	}

	success, output := h.execute(ctx, shellCmd)
	if !success {
		return h.failure("Failed to list processes: " + output)
	}

	return command.Result{Success: true, Message: output, Handler: handlerName}
}

// killProcess kills by pid when the target is numeric, by name otherwise.
func (h *Handler) killProcess(ctx context.Context, target string) command.Result {
	shellCmd := "pkill " + target
	if isDigits(target) {
		shellCmd = "kill " + target
	}

	success, output := h.execute(ctx, shellCmd)
	if !success {
		return h.failure(fmt.Sprintf("Could not kill %q: %s", target, output))
	}

	return command.Result{Success: true, Message: "Killed " + target, Handler: handlerName}
}

func (h *Handler) failure(message string) command.Result {
	return command.Result{Success: false, Message: message, Handler: handlerName}
}

func truncateOutput(output string) string {
	if len(output) <= MaxOutputLength {
		return output
	}

	return output[:MaxOutputLength] + "... (truncated)"
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
