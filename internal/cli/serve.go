package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/metrics"
	"github.com/pasc-cca/ccadash/internal/server"
	"github.com/pasc-cca/ccadash/internal/session"
	"github.com/pasc-cca/ccadash/internal/version"
)

func newServeCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Long: `Run the dashboard web server.

The server is configured with environment variables (ENVIRONMENT, PORT, API_BASE_URL, ERROR_MODE, ...),
optionally loaded from a .env file. Variables already set in the environment take precedence.`,
		Annotations: map[string]string{skipProfile: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional file of environment variables")
	return cmd
}

func runServer(cmd *cobra.Command, envFile string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	serverLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(serverLogger)

	serverLogger.Info("Starting dashboard server",
		slog.String("version", version.Get().Version),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("error_mode", cfg.ErrorMode),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// the shared store is never used to serve a request: each request binds the client to its own cookies
	apiClient := client.New(client.Config{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.APITimeout,
		StrictEnvelope: cfg.Mode() == config.ErrorModeStrict,
	}, session.NewMemoryStore(),
		client.WithLogger(serverLogger),
		client.WithMetrics(m),
	)

	srv, err := server.NewServer(cfg, serverLogger, apiClient, m, reg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		serverLogger.Error("Dashboard server error", slog.String("error", err.Error()))
		return err
	}

	serverLogger.Info("Dashboard server shutdown complete")
	return nil
}
