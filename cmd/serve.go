package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/libfinder/internal/instrumentation"
	"github.com/teemow/libfinder/internal/resources"
	"github.com/teemow/libfinder/internal/server"
	"github.com/teemow/libfinder/internal/tools/libcal_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	transport string
	httpAddr  string
	maxLength int
	metrics   MetricsConfig
}

func newServeCmd() *cobra.Command {
	var so serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to provide library tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP server on /mcp with health probes

The HTTP transport also starts a Prometheus metrics server on a dedicated port.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), so)
		},
	}

	cmd.Flags().StringVar(&so.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&so.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().IntVar(&so.maxLength, "max-length", 0, "Maximum event description length in tool output (default: 77)")

	// Metrics server flags
	cmd.Flags().BoolVar(&so.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&so.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyMetricsEnv lets METRICS_ENABLED and METRICS_ADDR override flag defaults.
func applyMetricsEnv(mc MetricsConfig) MetricsConfig {
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			mc.Enabled = enabled
		}
	}
	if mc.Addr == "" || mc.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			mc.Addr = addr
		}
	}
	return mc
}

func runServe(parent context.Context, so serveOptions) error {
	if so.transport != transportStdio && so.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)", so.transport, transportStdio, transportStreamableHTTP)
	}

	// Create a context that can be cancelled by signals
	shutdownCtx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the stdio transport, so logs always go to stderr
	logger := newLogger(os.Stderr, opts.debug)
	slog.SetDefault(logger)

	metricsConfig := applyMetricsEnv(so.metrics)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", "error", err)
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	f, err := newFinder(shutdownCtx, cfg, logger, metrics)
	if err != nil {
		return err
	}

	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithMaxLength(so.maxLength),
	}
	if provider.Enabled() {
		serverOpts = append(serverOpts,
			server.WithMetrics(metrics),
			server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)),
		)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, f, serverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("libfinder", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch so.transport {
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, so.httpAddr, metricsConfig, provider)
	default:
		return runStdioServer(mcpSrv)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "LibCal",
			register: func() error {
				return libcal_tools.RegisterLibCalTools(mcpSrv, ctx)
			},
		},
		{
			name: "Library Resources",
			register: func() error {
				return resources.RegisterLibraryResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

// startMetricsServer starts the metrics server and waits until it listens.
func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr(), "path", metricsServer.Path())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string, metricsConfig MetricsConfig, provider *instrumentation.Provider) error {
	logger := sc.Logger()

	// Metrics are only served when the provider exports to Prometheus
	if metricsConfig.Enabled && provider.Enabled() && provider.ServesPrometheus() {
		metricsServer, err := startMetricsServer(metricsConfig.Addr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("error during metrics server shutdown", "error", err)
			}
		}()
	}

	httpServer, err := server.NewHTTPServer(server.HTTPServerConfig{
		Addr:       addr,
		MCPHandler: mcpserver.NewStreamableHTTPServer(mcpSrv),
		Health:     server.NewHealthChecker(sc, version),
		Metrics:    sc.Metrics(),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Starting libfinder MCP server with %s transport on %s\n", transportStreamableHTTP, addr)
	fmt.Fprintf(os.Stderr, "  MCP endpoint: %s\n", server.MCPPath)
	fmt.Fprintf(os.Stderr, "  Health: /healthz, /readyz, /healthz/detailed\n")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(nil); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		sc.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during HTTP server shutdown: %w", err)
		}
		logger.Info("HTTP server stopped")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	return nil
}
