// Package system implements host/application level commands: system info,
// transient artifact cleanup, and application restart/shutdown.
package system

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"hostlink/pkg/command"
)

const handlerName = "system"

// DefaultMaxAgeHours bounds cleanup when no age is given.
const DefaultMaxAgeHours = 24

// artifactPrefix matches the transient files written by the capture handler.
const artifactPrefix = "hostlink_"

// exitDelay gives the reply time to reach the channel before the process
// restarts or exits.
const exitDelay = time.Second

// Handler serves info, cleanup, restart, and shutdown.
type Handler struct {
	tempDir   string
	startedAt time.Time
	log       *slog.Logger

	// replaced in tests
	exit    func(code int)
	restart func() error
	delay   time.Duration

	shutdownOnce sync.Once
}

// New creates the system handler operating on the given transient directory.
func New(tempDir string, log *slog.Logger) *Handler {
	tempDir = strings.TrimSpace(tempDir)
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		tempDir:   tempDir,
		startedAt: time.Now().UTC(),
		log:       log.With("component", "handlers.system"),
		exit:      os.Exit,
		restart:   reexec,
		delay:     exitDelay,
	}
}

func (h *Handler) Name() string {
	return handlerName
}

func (h *Handler) Commands() []string {
	return []string{"info", "cleanup", "restart", "shutdown"}
}

func (h *Handler) Handle(ctx context.Context, req command.Request) command.Result {
	_ = ctx

	switch req.Name {
	case "info":
		return h.systemInfo()
	case "cleanup":
		maxAge := DefaultMaxAgeHours
		if args, ok := req.Args.(command.CleanupArgs); ok {
			maxAge = args.MaxAgeHours
		}
		return h.cleanup(maxAge)
	case "restart":
		return h.scheduleRestart()
	case "shutdown":
		return h.scheduleShutdown()
	default:
		return h.failure("Unknown command: " + req.Name)
	}
}

func (h *Handler) Help(cmd string) string {
	help := map[string]string{
		"info":     "/info - Show host and agent information",
		"cleanup":  "/cleanup [max_age_hours] - Delete old transient artifacts (default 24h)",
		"restart":  "/restart - Restart the agent",
		"shutdown": "/shutdown - Stop the agent",
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

func (h *Handler) systemInfo() command.Result {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	info := []string{
		"Host: " + hostname,
		"OS: " + runtime.GOOS + "/" + runtime.GOARCH,
		fmt.Sprintf("CPUs: %d", runtime.NumCPU()),
		"Runtime: " + runtime.Version(),
		"Uptime: " + time.Since(h.startedAt).Round(time.Second).String(),
	}

	return command.Result{Success: true, Message: strings.Join(info, "\n"), Handler: handlerName}
}

// cleanup deletes transient artifacts older than maxAgeHours. Individual
// deletion failures are logged and skipped; the reply reports the count
// actually removed.
func (h *Handler) cleanup(maxAgeHours int) command.Result {
	if maxAgeHours <= 0 {
		return h.failure("Max age must be a positive number of hours")
	}

	matches, err := filepath.Glob(filepath.Join(h.tempDir, artifactPrefix+"*"))
	if err != nil {
		return h.failure("Cleanup failed: " + err.Error())
	}

	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			h.log.Warn("Could not remove artifact", "path", path, "error", err)
			continue
		}
		removed++
	}

	h.log.Info("Cleaned up artifacts", "removed", removed, "max_age_hours", maxAgeHours)
	return command.Result{
		Success: true,
		Message: fmt.Sprintf("Removed %d artifact(s) older than %dh", removed, maxAgeHours),
		Handler: handlerName,
	}
}

func (h *Handler) scheduleRestart() command.Result {
	h.shutdownOnce.Do(func() {
		h.log.Info("Restart requested")
		go func() {
			time.Sleep(h.delay)
			if err := h.restart(); err != nil {
				h.log.Error("Restart failed", "error", err)
				h.exit(1)
			}
		}()
	})

	return command.Result{Success: true, Message: "Restarting...", Handler: handlerName}
}

func (h *Handler) scheduleShutdown() command.Result {
	h.shutdownOnce.Do(func() {
		h.log.Info("Shutdown requested")
		go func() {
			time.Sleep(h.delay)
			h.exit(0)
		}()
	})

	return command.Result{Success: true, Message: "Shutting down...", Handler: handlerName}
}

func (h *Handler) failure(message string) command.Result {
	return command.Result{Success: false, Message: message, Handler: handlerName}
}

// reexec replaces the process image with a fresh copy of the running binary.
func reexec() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	return syscall.Exec(exe, os.Args, os.Environ())
}
