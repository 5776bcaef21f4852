package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/teemow/libfinder/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default address of the streamable HTTP transport.
	DefaultHTTPAddr = ":8080"

	// MCPPath is where the MCP endpoint is mounted.
	MCPPath = "/mcp"

	// DefaultReadHeaderTimeout bounds slow clients on the MCP listener.
	DefaultReadHeaderTimeout = 10 * time.Second
)

// HTTPServerConfig configures an HTTPServer.
type HTTPServerConfig struct {
	Addr string

	// MCPHandler serves the MCP streamable HTTP transport.
	MCPHandler http.Handler

	Health  *HealthChecker
	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// HTTPServer exposes the MCP endpoint and health probes on one listener.
type HTTPServer struct {
	httpServer *http.Server
	addr       string
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewRouter mounts the MCP handler and the health endpoints. Every request is
// recorded in metrics under its route template and panics are turned into 500s.
func NewRouter(mcpHandler http.Handler, health *HealthChecker, metrics *instrumentation.Metrics, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.Use(metricsMiddleware(metrics))

	if health != nil {
		health.RegisterHealthEndpoints(r)
	}
	if mcpHandler != nil {
		r.Handle(MCPPath, mcpHandler)
	}

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)(handlers.ProxyHeaders(r))
}

// NewHTTPServer creates the HTTP transport server.
func NewHTTPServer(config HTTPServerConfig) (*HTTPServer, error) {
	if config.MCPHandler == nil {
		return nil, errors.New("mcp handler is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPServer{
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           NewRouter(config.MCPHandler, config.Health, config.Metrics, logger),
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
		},
		addr:   config.Addr,
		logger: logger,
	}, nil
}

// Start serves until Shutdown, closing ready (when non-nil) once the listener is bound.
func (s *HTTPServer) Start(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("starting http server", "addr", ln.Addr().String(), "mcp_path", MCPPath)
	if ready != nil {
		close(ready)
	}

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func metricsMiddleware(metrics *instrumentation.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}
			metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
		})
	}
}

// statusRecorder captures the response status. It passes Flush and Hijack through
// so streamed MCP responses keep working.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// recoveryLogger routes gorilla/handlers panic reports to slog.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic in http handler", "panic", fmt.Sprint(v...))
}
