// Package server wires the project runtime, storage and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/taskboard/internal/platform/timeouts"
	"github.com/louisbranch/taskboard/internal/services/project/api/httpapi"
	"github.com/louisbranch/taskboard/internal/services/project/domain/engine"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
	"github.com/louisbranch/taskboard/internal/services/project/storage/memory"
	"github.com/louisbranch/taskboard/internal/services/project/storage/postgres"
	"github.com/louisbranch/taskboard/internal/services/project/storage/sqlite"
)

// Storage drivers accepted by OpenStore.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config controls the server runtime.
type Config struct {
	Addr               string
	Storage            string
	SQLitePath         string
	DatabaseURL        string
	CORSOrigins        []string
	MaxCommandAttempts int
	ShutdownTimeout    time.Duration
	Logger             *slog.Logger
}

// StoreConfig selects and locates the storage backend.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

// OpenStore opens the configured storage backend, applying migrations.
func OpenStore(ctx context.Context, cfg StoreConfig) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverSQLite, "":
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case DriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Server hosts the project HTTP API and storage lifecycle.
type Server struct {
	listener        net.Listener
	httpServer      *http.Server
	store           storage.Store
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New opens storage, builds the command runtime and listens on cfg.Addr.
func New(ctx context.Context, cfg Config) (*Server, error) {
	store, err := OpenStore(ctx, StoreConfig{
		Driver:      cfg.Storage,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return nil, err
	}
	srv, err := NewWithStore(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithStore builds a server around an already opened store. The server
// takes ownership of the store and closes it on shutdown.
func NewWithStore(cfg Config, store storage.Store) (*Server, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	commands, events, err := engine.NewRegistries()
	if err != nil {
		return nil, err
	}
	handler := engine.Handler{
		Commands:    commands,
		Events:      events,
		Journal:     store,
		MaxAttempts: cfg.MaxCommandAttempts,
		Logger:      logger,
	}
	api := httpapi.NewServer(httpapi.Config{
		Projects:    handler,
		Events:      store,
		Index:       store,
		Users:       store,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	addr := cfg.Addr
	if strings.TrimSpace(addr) == "" {
		addr = ":8080"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = timeouts.Shutdown
	}
	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           api.Handler(),
			ReadHeaderTimeout: timeouts.ReadHeader,
			ReadTimeout:       timeouts.Read,
			WriteTimeout:      timeouts.Write,
			IdleTimeout:       timeouts.Idle,
		},
		store:           store,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve handles HTTP requests until context cancellation, then drains
// in-flight requests within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	defer s.Close()

	s.logger.Info("server starting", "addr", s.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("close store", "error", err)
		}
	}
}
