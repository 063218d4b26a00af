// Package security manages the encoded credential and the commands that
// update or use it: typing it into a focused password field and locking the
// screen.
package security

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"hostlink/pkg/command"
	"hostlink/pkg/config"
)

const handlerName = "security"

// DefaultCipherKey is used when no cipher key is configured. The XOR scheme
// is obfuscation for config files, not cryptography.
const DefaultCipherKey = 42

// Handler serves credential and screen-lock commands. The credential is held
// only in its encoded form; the plaintext exists transiently while typing.
type Handler struct {
	mu        sync.Mutex
	logKey    string
	cipherKey int
	log       *slog.Logger
}

// New creates the security handler from configured credential material.
func New(cfg config.SecurityConfig, log *slog.Logger) *Handler {
	cipherKey := cfg.CipherKey
	if cipherKey == 0 {
		cipherKey = DefaultCipherKey
	}

	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		logKey:    strings.TrimSpace(cfg.LogKey),
		cipherKey: cipherKey,
		log:       log.With("component", "handlers.security"),
	}
}

func (h *Handler) Name() string {
	return handlerName
}

func (h *Handler) Commands() []string {
	return []string{"login", "set_password", "log", "lock"}
}

func (h *Handler) Handle(ctx context.Context, req command.Request) command.Result {
	switch req.Name {
	case "login":
		return h.typeCredential(ctx)
	case "set_password":
		args, ok := req.Args.(command.CredentialArgs)
		if !ok {
			return h.failure("Usage: /set_password <secret> [cipher_key]")
		}
		return h.setCredential(args)
	case "log":
		args, ok := req.Args.(command.LogKeyArgs)
		if !ok {
			return h.failure("Usage: /log <api_key>")
		}
		return h.setLogKey(args.APIKey)
	case "lock":
		return h.lockScreen(ctx)
	default:
		return h.failure("Unknown command: " + req.Name)
	}
}

func (h *Handler) Help(cmd string) string {
	help := map[string]string{
		"login":        "/login - Type the configured credential into the focused field",
		"set_password": "/set_password <secret> [cipher_key] - Re-encode and install a new credential",
		"log":          "/log <api_key> - Install an already-encoded credential",
		"lock":         "/lock - Lock the screen",
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

// Encode XORs the secret with the cipher key and hex-encodes the result.
func Encode(secret string, cipherKey int) string {
	encoded := make([]byte, len(secret))
	for i := 0; i < len(secret); i++ {
		encoded[i] = secret[i] ^ byte(cipherKey)
	}

	return hex.EncodeToString(encoded)
}

// Decode reverses Encode.
func Decode(encoded string, cipherKey int) (string, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode credential: %w", err)
	}

	decoded := make([]byte, len(raw))
	for i, b := range raw {
		decoded[i] = b ^ byte(cipherKey)
	}

	return string(decoded), nil
}

// setCredential re-encodes the given secret and swaps it in. The reply
// carries the encoded value so the operator can persist it into config; the
// plaintext is never echoed or logged.
func (h *Handler) setCredential(args command.CredentialArgs) command.Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	if args.HasCipherKey {
		h.cipherKey = args.CipherKey
	}
	h.logKey = Encode(args.Secret, h.cipherKey)

	h.log.Info("Credential updated")
	return command.Result{
		Success: true,
		Message: "Credential updated. Encoded value for security.log_key: " + h.logKey,
		Handler: handlerName,
	}
}

func (h *Handler) setLogKey(apiKey string) command.Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logKey = strings.TrimSpace(apiKey)

	h.log.Info("Log key replaced")
	return command.Result{Success: true, Message: "Log key updated.", Handler: handlerName}
}

// typeCredential decodes the stored credential and types it with xdotool:
// clear the focused field, type the secret, press Return.
func (h *Handler) typeCredential(ctx context.Context) command.Result {
	h.mu.Lock()
	logKey := h.logKey
	cipherKey := h.cipherKey
	h.mu.Unlock()

	if logKey == "" {
		return h.failure("No credential configured. Use /set_password or /log first.")
	}

	secret, err := Decode(logKey, cipherKey)
	if err != nil {
		return h.failure("Could not decode credential: " + err.Error())
	}

	steps := [][]string{
		{"xdotool", "key", "--repeat", "50", "BackSpace"},
		{"xdotool", "type", secret},
		{"xdotool", "key", "Return"},
	}
	for _, step := range steps {
		if err := exec.CommandContext(ctx, step[0], step[1:]...).Run(); err != nil {
			h.log.Error("xdotool step failed", "step", step[1], "error", err)
			return h.failure("Could not type credential: " + err.Error())
		}
	}

	h.log.Info("Credential typed")
	return command.Result{Success: true, Message: "Credential typed.", Handler: handlerName}
}

// lockScreen locks the session via loginctl, falling back to
// xdg-screensaver.
func (h *Handler) lockScreen(ctx context.Context) command.Result {
	var lastErr error
	for _, attempt := range [][]string{
		{"loginctl", "lock-session"},
		{"xdg-screensaver", "lock"},
	} {
		if _, err := exec.LookPath(attempt[0]); err != nil {
			lastErr = err
			continue
		}
		if err := exec.CommandContext(ctx, attempt[0], attempt[1:]...).Run(); err != nil {
			lastErr = err
			continue
		}

		h.log.Info("Screen locked", "tool", attempt[0])
		return command.Result{Success: true, Message: "Screen locked.", Handler: handlerName}
	}

	if lastErr == nil {
		lastErr = errors.New("no lock tool available")
	}
	return h.failure("Could not lock screen: " + lastErr.Error())
}

func (h *Handler) failure(message string) command.Result {
	return command.Result{Success: false, Message: message, Handler: handlerName}
}
