// Package server exposes hyphenation over HTTP and WebSocket.
//
// Routes:
//
//	POST /api/hyphenate      insert marks into text or HTML
//	POST /api/possibilities  list break offsets
//	GET  /api/dictionaries   describe loaded dictionaries
//	GET  /health             liveness and version
//	GET  /ws                 request/response hyphenation plus reload notices
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/config"
	"github.com/conneroisu/hyphen/internal/dictionary"
	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/logging"
)

// maxBodyBytes bounds request bodies and WebSocket messages.
const maxBodyBytes = 1 << 20

// Server serves the hyphenation API.
type Server struct {
	config       *config.Config
	registry     *dictionary.Registry
	logger       logging.Logger
	hub          *Hub
	startedAt    time.Time
	httpServer   *http.Server
	serverMutex  sync.RWMutex
	shutdownOnce sync.Once
}

// New creates a server answering from reg.
func New(cfg *config.Config, reg *dictionary.Registry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("server")
	return &Server{
		config:    cfg,
		registry:  reg,
		logger:    logger,
		hub:       NewHub(logger),
		startedAt: time.Now(),
	}
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/hyphenate", s.handleHyphenate)
	mux.HandleFunc("POST /api/possibilities", s.handlePossibilities)
	mux.HandleFunc("GET /api/dictionaries", s.handleDictionaries)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return chain(mux,
		recoverMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		securityHeadersMiddleware,
		corsMiddleware(s.config.Server.AllowedOrigins),
	)
}

// Start listens on the configured address until ctx is cancelled or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return errors.WrapIO(err, errors.CodeInternal, "listening on "+s.config.Address())
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Server listening", "addr", ln.Addr().String(),
		"dictionaries", len(s.registry.List()))

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return errors.WrapIO(err, errors.CodeInternal, "serving HTTP")
	}
	return nil
}

// Shutdown closes WebSocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")
		s.hub.CloseAll()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})
	return shutdownErr
}

// NotifyReload tells WebSocket clients that dictionaries changed. It matches
// watcher.ReloadFunc.
func (s *Server) NotifyReload(path string, tags []language.Tag) {
	langs := make([]string, len(tags))
	for i, tag := range tags {
		langs[i] = tag.String()
	}
	s.hub.Broadcast(Message{
		Type:      MessageReloaded,
		Languages: langs,
		Source:    path,
		Timestamp: time.Now().UTC(),
	})
}
