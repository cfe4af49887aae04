package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmeet/calmeet/internal/auth"
	"github.com/calmeet/calmeet/internal/calendar"
	"github.com/calmeet/calmeet/internal/dispatch"
	"github.com/calmeet/calmeet/internal/instrumentation"
	"github.com/calmeet/calmeet/internal/logging"
	"github.com/calmeet/calmeet/internal/meet"
	"github.com/calmeet/calmeet/internal/server"
	"github.com/calmeet/calmeet/internal/tools"
)

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	debug            bool
	transport        string
	httpAddr         string
	yolo             bool
	credentialsFile  string
	tokenFile        string
	disableStreaming bool
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Google Calendar
and Google Meet tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, exposing only safe
  operations. Use --yolo to enable write operations (event creation, space
  configuration, ending conferences, etc.)

Credentials:
  Set GOOGLE_OAUTH_CLIENT_ID, GOOGLE_OAUTH_CLIENT_SECRET, and
  GOOGLE_OAUTH_REFRESH_TOKEN in the environment, or provide
  --credentials-file and --token-file paths. The server refreshes access
  tokens automatically; it never runs an interactive OAuth flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.metrics = resolveMetricsConfig(cmd, opts.metrics)
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (event creation, space configuration, etc.). Default is read-only mode.")
	cmd.Flags().StringVar(&opts.credentialsFile, "credentials-file", "", "Path to an OAuth client credentials JSON file (used when the GOOGLE_OAUTH_* env vars are not set)")
	cmd.Flags().StringVar(&opts.tokenFile, "token-file", "", "Path to a stored OAuth token JSON file (used with --credentials-file)")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// resolveMetricsConfig applies METRICS_ENABLED and METRICS_ADDR from the
// environment for flags the user did not set explicitly.
func resolveMetricsConfig(cmd *cobra.Command, config MetricsConfig) MetricsConfig {
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			config.Enabled = v == "true"
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Addr = addr
		}
	}
	return config
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr so the stdio transport keeps stdout clean for
	// protocol frames.
	level := "info"
	if opts.debug {
		level = "debug"
	}
	logger := logging.Setup(os.Stderr, level)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Missing credentials are fatal at startup. There is no interactive
	// fallback; the refresh token must already exist.
	store, err := auth.StoreFromEnvironment(opts.credentialsFile, opts.tokenFile)
	if err != nil {
		return err
	}

	authOpts := []auth.Option{auth.WithLogger(logger)}
	if provider.Enabled() {
		authOpts = append(authOpts, auth.WithRecorder(provider.Metrics()))
	}
	manager := auth.NewManager(store, authOpts...)
	if err := manager.Init(shutdownCtx); err != nil {
		return fmt.Errorf("failed to initialize credentials: %w", err)
	}

	registry, err := tools.NewRegistry(tools.Clients{
		Calendar: calendar.NewClient(),
		Meet:     meet.NewClient(),
	})
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo

	dispatchOpts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithReadOnly(readOnly),
	}
	if provider.Enabled() {
		dispatchOpts = append(dispatchOpts, dispatch.WithRecorder(provider.Metrics()))
	}
	dispatcher := dispatch.New(registry, manager, dispatchOpts...)

	serverContext := server.NewServerContext(shutdownCtx, manager, registry, dispatcher, provider)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	if readOnly {
		logger.Info("starting in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting with write operations enabled (--yolo flag is set)")
	}

	var mcpSrv *mcpserver.MCPServer
	if provider.Enabled() {
		mcpSrv = mcpserver.NewMCPServer("calmeet", version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithHooks(sessionHooks(provider.Metrics())),
		)
	} else {
		mcpSrv = mcpserver.NewMCPServer("calmeet", version,
			mcpserver.WithToolCapabilities(true),
		)
	}

	var audit *instrumentation.AuditLogger
	if provider.Enabled() && instrConfig.AuditLogging.Enabled {
		audit = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	}
	tools.Register(mcpSrv, registry, dispatcher, audit)

	switch opts.transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, logger, opts)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

// sessionHooks counts connected MCP clients so the active-sessions gauge
// follows session registration and teardown.
func sessionHooks(metrics *instrumentation.Metrics) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, _ mcpserver.ClientSession) {
		metrics.IncrementActiveSessions(ctx)
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, _ mcpserver.ClientSession) {
		metrics.DecrementActiveSessions(ctx)
	})
	return hooks
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

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, logger *slog.Logger, opts serveOptions) error {
	provider := serverContext.Instrumentation()

	// Start metrics server on its own port so metrics never share the MCP
	// listener.
	var metricsServer *server.MetricsServer
	if opts.metrics.Enabled && provider != nil && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	var httpHandler http.Handler
	if opts.disableStreaming {
		httpHandler = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithDisableStreaming(true),
		)
	} else {
		httpHandler = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath("/mcp"),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", httpHandler)

	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)

	handler := http.Handler(mux)
	if provider != nil && provider.Enabled() {
		handler = server.HTTPMetricsMiddleware(provider.Metrics(), handler)
	}

	httpServer := &http.Server{
		Addr:              opts.httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("starting streamable HTTP server",
		"addr", opts.httpAddr,
		"mcp_endpoint", "/mcp",
		"health_endpoints", "/healthz /readyz /healthz/detailed",
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
