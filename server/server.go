// Package server provides the HTTP server of the feedback API: a gin engine
// served over HTTP/1.1 and cleartext HTTP/2, the standard middleware stack,
// and the probe endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/feedback/component"
	"github.com/kbukum/feedback/logger"
	"github.com/kbukum/feedback/server/endpoint"
	"github.com/kbukum/feedback/server/middleware"
)

// Server is the HTTP server. Routes are registered on Engine before Start.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server. No middleware is installed yet; call
// ApplyMiddleware before registering routes.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	// Client addresses come from the connection only; proxy headers are
	// not trusted.
	_ = engine.SetTrustedProxies(nil)

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          cfg.IdleTimeout,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h2c.NewHandler(engine, h2s),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		engine: engine,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler, for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ApplyMiddleware installs the stack that runs ahead of the auth gate:
// recovery, request ID, request logging, CORS and the body size limit.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(middleware.Recovery(s.log))
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.RequestLogger(s.log))
	if len(s.config.CORS.AllowedOrigins) > 0 {
		s.engine.Use(middleware.CORS(s.config.CORS))
	}
	s.engine.Use(middleware.BodySizeLimit(s.config.MaxBodySize))
}

// RegisterProbes registers /health, /alive, /ready and /version.
func (s *Server) RegisterProbes(checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(checker))
	s.engine.GET("/alive", endpoint.Liveness())
	s.engine.GET("/ready", endpoint.Readiness(checker))
	s.engine.GET("/version", endpoint.Version())
}

// Start binds the port and serves in the background. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", map[string]any{logger.FieldError: err.Error()})
		}
	}()

	s.log.Info("HTTP server started", map[string]any{"addr": ln.Addr().String()})
	return nil
}

// Stop gracefully shuts down the server within the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Health reports the server as a component.
func (s *Server) Health(context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return component.Health{Name: ComponentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: ComponentName, Status: component.StatusHealthy}
}
