// Bizflowd converts free-form Japanese business-process text into
// structured business definitions over an HTTP API.
//
// The binary wires the full conversion pipeline: configuration,
// structured logging, OpenTelemetry, the orchestrator and the echo
// HTTP server with a Prometheus /metrics endpoint.
//
// Usage:
//
//	# Start with defaults (listens on localhost:8080)
//	bizflowd
//
//	# Start with a config file; env vars override file values
//	bizflowd -config /etc/bizflowd/config.yaml
//	SERVER_PORT=9090 LLM_ENABLED=true bizflowd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/config"
	bizhttp "github.com/KazuakiWatanabe/agentic-bizflow/internal/http"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/logging"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/orchestrator"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/pipeline"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  bizflowd           Start the bizflowd daemon\n")
			fmt.Fprintf(os.Stderr, "  bizflowd version   Show version information\n")
			os.Exit(1)
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("bizflowd\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the bizflowd server and blocks until ctx is cancelled.
//
// Initialization order matters: telemetry registers the global OTel
// providers the logger's OTEL bridge and the orchestrator metrics
// attach to, so it comes up before the logger.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	logger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("starting bizflowd",
		zap.String("version", version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("llm_enabled", cfg.LLM.Enabled),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("telemetry", tel.IsEnabled()),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	enhancer := pipeline.NewEnhancer(cfg.LLM)
	orch := orchestrator.New(enhancer, cfg.Pipeline, logger)

	srv, err := bizhttp.NewServer(orch, logger, &bizhttp.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		AllowOrigins: cfg.CORS.AllowOrigins,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	srv.Echo().GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	logger.Info("server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("convert_endpoint", "/api/convert"),
		zap.String("metrics_endpoint", "/metrics"))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return <-errCh
}

// initLogger builds the structured logger from the daemon config.
func initLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging level %q: %w", cfg.Logging.Level, err)
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	logCfg.Output.OTEL = cfg.Logging.OTEL
	return logging.NewLogger(logCfg)
}

// telemetryConfig maps the daemon config onto the telemetry package
// defaults.
func telemetryConfig(cfg *config.Config) *telemetry.Config {
	tc := telemetry.NewDefaultConfig()
	tc.Enabled = cfg.Telemetry.Enabled
	tc.Endpoint = cfg.Telemetry.Endpoint
	tc.Protocol = cfg.Telemetry.Protocol
	tc.Insecure = cfg.Telemetry.Insecure
	tc.ServiceName = cfg.Telemetry.ServiceName
	tc.ServiceVersion = version
	return tc
}
