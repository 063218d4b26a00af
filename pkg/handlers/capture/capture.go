// Package capture implements screenshot and webcam capture commands. The
// actual capture is delegated to external tools; the handler only picks the
// first available method and hands the artifact path back for delivery.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"hostlink/pkg/command"
	"hostlink/pkg/config"
)

const handlerName = "capture"

const captureTimeout = 15 * time.Second

// artifactPrefix names transient capture files so cleanup can find them.
const artifactPrefix = "hostlink_"

// captureMethod is one external tool invocation writing an image to a path.
type captureMethod struct {
	tool string
	args func(path string) []string
}

var screenshotMethods = []captureMethod{
	{tool: "gnome-screenshot", args: func(path string) []string { return []string{"-f", path} }},
	{tool: "scrot", args: func(path string) []string { return []string{path} }},
}

var webcamMethods = []captureMethod{
	{tool: "fswebcam", args: func(path string) []string { return []string{"--no-banner", path} }},
	{tool: "ffmpeg", args: func(path string) []string {
		return []string{"-f", "video4linux2", "-i", "/dev/video0", "-frames:v", "1", "-y", path}
	}},
}

// Handler serves the screenshot and pic commands.
type Handler struct {
	tempDir string
	log     *slog.Logger
}

// New creates the capture handler writing artifacts under the configured
// transient directory.
func New(cfg config.CaptureConfig, log *slog.Logger) *Handler {
	tempDir := strings.TrimSpace(cfg.TempDir)
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		tempDir: tempDir,
		log:     log.With("component", "handlers.capture"),
	}
}

func (h *Handler) Name() string {
	return handlerName
}

func (h *Handler) Commands() []string {
	return []string{"screenshot", "pic"}
}

func (h *Handler) Handle(ctx context.Context, req command.Request) command.Result {
	switch req.Name {
	case "screenshot":
		return h.capture(ctx, "Screenshot", "screenshot", "png", screenshotMethods)
	case "pic":
		return h.capture(ctx, "Webcam photo", "webcam", "jpg", webcamMethods)
	default:
		return command.Result{Success: false, Message: "Unknown command: " + req.Name, Handler: handlerName}
	}
}

func (h *Handler) Help(cmd string) string {
	help := map[string]string{
		"screenshot": "/screenshot - Capture the current screen",
		"pic":        "/pic - Capture a webcam photo",
	}

	if cmd != "" {
		if text, ok := help[cmd]; ok {
			return text
		}
		return "Unknown command: " + cmd
	}

	return help["screenshot"] + "\n" + help["pic"]
}

// capture tries each method in order until one produces the artifact file.
func (h *Handler) capture(ctx context.Context, label, kind, ext string, methods []captureMethod) command.Result {
	path := h.artifactPath(kind, ext)

	captureCtx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	for _, method := range methods {
		if _, err := exec.LookPath(method.tool); err != nil {
			continue
		}

		if err := exec.CommandContext(captureCtx, method.tool, method.args(path)...).Run(); err != nil {
			h.log.Warn("Capture method failed", "tool", method.tool, "error", err)
			continue
		}

		if _, err := os.Stat(path); err != nil {
			continue
		}

		h.log.Info("Captured artifact", "tool", method.tool, "path", path)
		return command.Result{
			Success: true,
			Message: label + " captured",
			Data:    map[string]any{command.DataKeyImagePath: path},
			Handler: handlerName,
		}
	}

	return command.Result{Success: false, Message: label + " failed: no capture method available", Handler: handlerName}
}

func (h *Handler) artifactPath(kind, ext string) string {
	name := fmt.Sprintf("%s%s_%s.%s", artifactPrefix, kind, time.Now().UTC().Format("20060102T150405"), ext)
	return filepath.Join(h.tempDir, name)
}
