package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/instrumentation"
	"github.com/teemow/libfinder/internal/library"
)

// ErrNoFinder is returned by NewServerContext when no finder is given.
var ErrNoFinder = errors.New("finder is required")

// ServerContext holds the dependencies shared by all MCP tool handlers.
// Everything except the shutdown flag is fixed at construction.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	finder      *finder.Finder
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger
	maxLength   int
	mu          sync.RWMutex
	shutdown    bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithMetrics records tool invocations in m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger writes an audit record for every tool invocation.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.auditLogger = al }
}

// WithLogger sets the logger for tool handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = logger }
}

// WithMaxLength sets the description length used by tools that do not get one.
// Values of zero or less keep the default.
func WithMaxLength(n int) Option {
	return func(sc *ServerContext) {
		if n > 0 {
			sc.maxLength = n
		}
	}
}

// NewServerContext creates a new server context around f.
func NewServerContext(ctx context.Context, f *finder.Finder, opts ...Option) (*ServerContext, error) {
	if f == nil {
		return nil, ErrNoFinder
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		finder:    f,
		logger:    slog.Default(),
		maxLength: finder.DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Finder returns the retrieval pipeline.
func (sc *ServerContext) Finder() *finder.Finder {
	return sc.finder
}

// Directory returns the library directory of the finder.
func (sc *ServerContext) Directory() *library.Directory {
	return sc.finder.Directory()
}

// Metrics returns the metrics recorder, or nil when none is configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when none is configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the logger for tool handlers.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// MaxLength returns the default description length.
func (sc *ServerContext) MaxLength() int {
	return sc.maxLength
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
