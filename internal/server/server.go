package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Brownie44l1/rangeserve/internal/accesslog"
	"github.com/Brownie44l1/rangeserve/internal/logger"
	"github.com/Brownie44l1/rangeserve/internal/resource"
	"github.com/Brownie44l1/rangeserve/internal/transport"
)

// Config holds server configuration
type Config struct {
	Port           int
	Root           string // directory served
	Index          string // file served for directory paths
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxHeaderBytes int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		Root:           ".",
		Index:          resource.DefaultIndex,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: transport.DefaultMaxHeaderBytes,
	}
}

// Handler answers one request by calling ctx.Reply.
type Handler interface {
	ServeHTTP(ctx *Context)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx *Context)

func (f HandlerFunc) ServeHTTP(ctx *Context) {
	f(ctx)
}

// Middleware wraps a handler
type Middleware func(Handler) Handler

// Option configures a Server in New.
type Option func(*Server)

func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithAccessLog records every answered request in store.
func WithAccessLog(store *accesslog.Store) Option {
	return func(s *Server) { s.accessLog = store }
}

// WithHandler replaces the file handler, mostly for tests.
func WithHandler(h Handler) Option {
	return func(s *Server) { s.handler = h }
}

// Server answers one connection at a time: accept, read one request, write
// one response, close.
type Server struct {
	config    Config
	handler   Handler
	resolver  *resource.Resolver
	accessLog *accesslog.Store
	Logger    logger.Logger
	Metrics   *Metrics

	mu       sync.Mutex
	listener *transport.Listener
	// middlewares are applied first-added outermost.
	middlewares []Middleware
}

// New creates a server for cfg. Zero fields fall back to DefaultConfig. It
// fails only when the served root cannot be opened.
func New(cfg Config, opts ...Option) (*Server, error) {
	def := DefaultConfig()
	if cfg.Root == "" {
		cfg.Root = def.Root
	}
	if cfg.Index == "" {
		cfg.Index = def.Index
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = def.MaxHeaderBytes
	}

	s := &Server{
		config:  cfg,
		Logger:  logger.NewDefaultLogger(),
		Metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.handler == nil {
		resolver, err := resource.NewDirResolver(cfg.Root, cfg.Index)
		if err != nil {
			return nil, err
		}
		s.resolver = resolver
		s.handler = NewFileHandler(resolver)
	}

	s.Use(LoggingMiddleware(s.Logger))
	s.Use(MetricsMiddleware(s.Metrics))
	if s.accessLog != nil {
		s.Use(AccessLogMiddleware(s.accessLog, s.Logger))
	}
	// Innermost, so the 500 it writes is still logged and counted.
	s.Use(RecoveryMiddleware(s.Logger))
	return s, nil
}

// Use adds middleware to the chain
func (s *Server) Use(mw Middleware) {
	s.middlewares = append(s.middlewares, mw)
}

func (s *Server) chain() Handler {
	h := s.handler
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i](h)
	}
	return h
}

// Listen binds the configured port. It is the only step whose failure is
// returned to the caller as a setup error.
func (s *Server) Listen(ctx context.Context) error {
	ln, err := transport.Listen(ctx, s.config.Port)
	if err != nil {
		return err
	}
	s.setListener(ln)
	return nil
}

// ListenAddr binds an explicit address instead of the configured port.
func (s *Server) ListenAddr(ctx context.Context, addr string) error {
	ln, err := transport.ListenAddr(ctx, addr)
	if err != nil {
		return err
	}
	s.setListener(ln)
	return nil
}

func (s *Server) setListener(ln *transport.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = ln
	s.Logger.Info("listening", logger.F("addr", ln.Addr().String()))
}

// Port returns the bound port, or 0 before Listen.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	return s.listener.Port()
}

var ErrNotListening = errors.New("server is not listening")

// ServeOne accepts exactly one connection and handles it to completion.
// Request-level failures are answered on the wire and logged; only accept
// failures and ctx cancellation are returned.
func (s *Server) ServeOne(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	conn, addr, err := ln.AcceptOne(ctx)
	if err != nil {
		return err
	}
	s.Logger.Debug("accepted", logger.F("remote", addr.String()))

	s.serveConn(ctx, conn)
	return nil
}

// Serve handles connections one after another until ctx ends or the
// listener is closed.
func (s *Server) Serve(ctx context.Context) error {
	for {
		err := s.ServeOne(ctx)
		switch {
		case err == nil:
			continue
		case ctx.Err() != nil:
			return nil
		default:
			s.mu.Lock()
			closed := s.listener == nil
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
	}
}

// Close releases the listening socket and the served root.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	if s.resolver != nil {
		if rerr := s.resolver.Close(); err == nil {
			err = rerr
		}
		s.resolver = nil
	}
	return err
}

// Stats returns current metrics
func (s *Server) Stats() MetricsSnapshot {
	return s.Metrics.Snapshot()
}
