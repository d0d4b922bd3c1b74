package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nativeJustin/calendar-app/internal/calendar"
	"github.com/nativeJustin/calendar-app/internal/google"
	"github.com/nativeJustin/calendar-app/internal/instrumentation"
	"github.com/nativeJustin/calendar-app/internal/logging"
	"github.com/nativeJustin/calendar-app/internal/scheduler"
	"github.com/nativeJustin/calendar-app/internal/server"
	"github.com/nativeJustin/calendar-app/internal/todoist"
	"github.com/nativeJustin/calendar-app/internal/tokenstore"
)

const (
	defaultHTTPAddr        = ":3001"
	defaultShutdownTimeout = 30 * time.Second
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// ServeConfig collects everything the serve command needs to run.
type ServeConfig struct {
	Debug    bool
	HTTPAddr string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	TodoistToken string
	TokenFile    string

	Metrics MetricsConfig
}

func newServeCmd() *cobra.Command {
	var cfg ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar and task sync server",
		Long: `Start the HTTP server that merges Google Calendar events from connected
accounts with Todoist tasks into a single timeline.

Google OAuth Configuration:
  --google-client-id and --google-client-secret flags
  OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars
  Required for connecting Google accounts. The redirect URL defaults to
  http://localhost<http-addr>/api/google/callback and can be overridden
  with --google-redirect-url or the GOOGLE_REDIRECT_URI env var.

Todoist Configuration:
  --todoist-token flag OR TODOIST_API_TOKEN env var
  Optional. Without a token the server runs calendar-only and all
  task endpoints report not configured.

Token Storage:
  Google account tokens are persisted to --token-file, defaulting to
  the calendar-app directory under the user config dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", defaultHTTPAddr, "HTTP server address")
	cmd.Flags().StringVar(&cfg.GoogleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&cfg.GoogleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&cfg.GoogleRedirectURL, "google-redirect-url", "", "Google OAuth redirect URL. Can also use GOOGLE_REDIRECT_URI env var.")
	cmd.Flags().StringVar(&cfg.TodoistToken, "todoist-token", "", "Todoist API token. Can also use TODOIST_API_TOKEN env var.")
	cmd.Flags().StringVar(&cfg.TokenFile, "token-file", "", "Path to the Google token store file (default: <user config dir>/calendar-app/tokens.json)")

	// Metrics server flags
	cmd.Flags().BoolVar(&cfg.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Fill credentials from environment if not set via flags
	if cfg.GoogleClientID == "" {
		cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if cfg.GoogleClientSecret == "" {
		cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URI")
	}
	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = defaultRedirectURL(cfg.HTTPAddr)
	}
	if cfg.TodoistToken == "" {
		cfg.TodoistToken = os.Getenv("TODOIST_API_TOKEN")
	}

	// Load metrics config from environment if not set via flags
	if !cfg.Metrics.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			cfg.Metrics.Enabled = true
		}
	}
	if cfg.Metrics.Addr == "" || cfg.Metrics.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			cfg.Metrics.Addr = addr
		}
	}

	if cfg.TokenFile == "" {
		path, err := defaultTokenFile()
		if err != nil {
			return fmt.Errorf("failed to determine token file location: %w", err)
		}
		cfg.TokenFile = path
	}
	if err := os.MkdirAll(filepath.Dir(cfg.TokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token store directory: %w", err)
	}

	logger := logging.Setup(cfg.Debug)

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
			log.Printf("Error during instrumentation shutdown: %v", err)
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
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

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}
	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
	}()

	googleConfig := google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}
	if !googleConfig.IsConfigured() {
		logger.Warn("google oauth client not configured, account connection is disabled",
			"hint", "set --google-client-id and --google-client-secret or the matching env vars")
	}

	store := tokenstore.New(cfg.TokenFile, logger)
	states := google.NewStateStore(google.DefaultStateTTL, logger)
	calendars := calendar.NewClient(googleConfig, store, logger, provider.Metrics())

	tasks := todoist.NewClient(cfg.TodoistToken, logger, provider.Metrics())
	if !tasks.IsConfigured() {
		logger.Info("todoist token not configured, running calendar-only")
	}

	orchestrator := scheduler.NewOrchestrator(tasks, calendars, nil, logger, provider.Metrics())

	srv := server.New(server.Config{
		Logger:    logger,
		Metrics:   provider.Metrics(),
		Google:    googleConfig,
		States:    states,
		Store:     store,
		Calendars: calendars,
		Tasks:     tasks,
		Scheduler: orchestrator,
		Ready:     scheduler.NewReadySignal(),
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server",
		"addr", cfg.HTTPAddr,
		"token_file", cfg.TokenFile,
		"google_configured", googleConfig.IsConfigured(),
		"todoist_configured", tasks.IsConfigured(),
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()
	srv.Health().SetReady(true)

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping server")
		srv.Health().SetShuttingDown()
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// defaultRedirectURL derives a local OAuth redirect URL from the HTTP
// listen address. Deployed instances should configure the real URL.
func defaultRedirectURL(addr string) string {
	if addr != "" && addr[0] == ':' {
		return fmt.Sprintf("http://localhost%s/api/google/callback", addr)
	}
	return fmt.Sprintf("http://%s/api/google/callback", addr)
}

// defaultTokenFile returns the token store path under the user config
// directory.
func defaultTokenFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "calendar-app", "tokens.json"), nil
}
