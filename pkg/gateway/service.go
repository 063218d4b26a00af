// Package gateway wires the router, handlers, and channel adapters into one
// runnable service with a status and metrics endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"hostlink/pkg/channel"
	"hostlink/pkg/command"
	"hostlink/pkg/config"
	"hostlink/pkg/handlers/capture"
	"hostlink/pkg/handlers/process"
	"hostlink/pkg/handlers/security"
	"hostlink/pkg/handlers/system"
	"hostlink/pkg/metrics"
)

const (
	defaultStatusHost = "0.0.0.0"
	defaultStatusPort = 18790
)

// Service runs the channel adapters against a fully wired pipeline and
// serves /healthz, /status, and /metrics.
type Service struct {
	cfg      *config.Config
	log      *slog.Logger
	pipeline *channel.Pipeline
	channels []channel.Adapter
	registry *prometheus.Registry

	mu            sync.RWMutex
	startedAt     time.Time
	channelStates map[string]channelState
}

type channelState struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

type statusResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Commands      []string                `json:"commands"`
	Channels      map[string]channelState `json:"channels"`
}

// NewService builds the router with the standard handlers, the metrics
// registry, and the pipeline gate, and binds them to the given adapters.
func NewService(cfg *config.Config, adapters []channel.Adapter, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if len(adapters) == 0 {
		return nil, errors.New("at least one channel adapter is required")
	}
	if log == nil {
		log = slog.Default()
	}

	tempDir := strings.TrimSpace(cfg.Capture.TempDir)
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	router := command.NewRouter(log)
	router.Register(process.New(cfg.Exec, log))
	router.Register(capture.New(cfg.Capture, log))
	router.Register(security.New(cfg.Security, log))
	router.Register(system.New(tempDir, log))

	pipelineMetrics := metrics.New()
	registry := prometheus.NewRegistry()
	for _, collector := range pipelineMetrics.Collectors() {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics collector: %w", err)
		}
	}

	pipeline, err := channel.NewPipeline(router, cfg.Channels.Telegram.AuthorizedChat, tempDir, pipelineMetrics, log)
	if err != nil {
		return nil, fmt.Errorf("initialize pipeline: %w", err)
	}

	channelStates := make(map[string]channelState, len(adapters))
	for _, adapter := range adapters {
		channelStates[adapter.Name()] = channelState{}
	}

	return &Service{
		cfg:           cfg,
		log:           log.With("component", "gateway.service"),
		pipeline:      pipeline,
		channels:      adapters,
		registry:      registry,
		channelStates: channelStates,
	}, nil
}

// Pipeline exposes the wired pipeline, mainly for tests.
func (s *Service) Pipeline() *channel.Pipeline {
	return s.pipeline
}

// Run blocks until the context is cancelled or a channel or the status
// server fails.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.runStatusServer(groupCtx)
	})

	for _, adapter := range s.channels {
		adapter := adapter
		group.Go(func() error {
			s.setChannelState(adapter.Name(), channelState{Running: true})
			err := adapter.Run(groupCtx, s.pipeline)
			s.setChannelState(adapter.Name(), channelState{Running: false, Error: errorString(err)})

			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("run %s channel: %w", adapter.Name(), err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (s *Service) runStatusServer(ctx context.Context) error {
	host := strings.TrimSpace(s.cfg.Gateway.Host)
	if host == "" {
		host = defaultStatusHost
	}

	port := s.cfg.Gateway.Port
	if port <= 0 {
		port = defaultStatusPort
	}

	addr := host + ":" + strconv.Itoa(port)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Status server started", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start status server: %w", err)
	}

	return nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "running"
	if !s.channelsRunning() {
		statusCode = http.StatusServiceUnavailable
		status = "degraded"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	channels := make(map[string]channelState, len(s.channelStates))
	for name, state := range s.channelStates {
		channels[name] = state
	}

	return statusResponse{
		Status:        status,
		UptimeSeconds: uptime,
		Commands:      s.pipeline.Router().Commands(),
		Channels:      channels,
	}
}

func (s *Service) channelsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, state := range s.channelStates {
		if state.Running {
			return true
		}
	}

	return false
}

func (s *Service) setChannelState(name string, state channelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelStates[name] = state
}

func errorString(err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	return err.Error()
}
