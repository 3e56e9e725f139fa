package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"redactor/internal/deps"
	"redactor/internal/export"
	"redactor/internal/history"
	"redactor/internal/logging"
	"redactor/internal/redaction"
	"redactor/internal/session"
)

// VideoOpener probes a local file into a video asset.
type VideoOpener interface {
	Open(ctx context.Context, path string) (redaction.VideoAsset, error)
}

// Exporter starts export runs.
type Exporter interface {
	Begin(ctx context.Context) (*export.Run, error)
}

// HistoryReader lists journaled exports.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]history.Entry, error)
	Get(ctx context.Context, id string) (history.Entry, error)
}

// ServerConfig wires the API to the session and its collaborators. History
// and Doctor are optional.
type ServerConfig struct {
	Bind     string
	Token    string
	Loop     *session.Loop
	Videos   VideoOpener
	Exporter Exporter
	History  HistoryReader
	Doctor   func() []deps.Status
	MinLanes int
	MaxLanes int
	Logger   *slog.Logger

	// BaseContext bounds background export runs. Defaults to Background.
	BaseContext context.Context
	StartTime   time.Time
}

func (cfg ServerConfig) logger() *slog.Logger {
	if cfg.Logger == nil {
		return logging.NewNop()
	}
	return cfg.Logger
}

func (cfg ServerConfig) baseContext() context.Context {
	if cfg.BaseContext == nil {
		return context.Background()
	}
	return cfg.BaseContext
}

// Server hosts the API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a server bound to cfg.Bind.
func NewServer(cfg ServerConfig) *Server {
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}
	cfg.Logger = logging.NewComponentLogger(cfg.logger(), "api")
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Bind,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Serve accepts connections on listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe binds the configured address and serves.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("api shutting down")
	return s.httpServer.Shutdown(ctx)
}
