package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-blastengine/internal/blastengine"
	"github.com/brandon/mcp-blastengine/internal/config"
	"github.com/brandon/mcp-blastengine/internal/deliverylog"
	"github.com/brandon/mcp-blastengine/internal/files"
	"github.com/brandon/mcp-blastengine/internal/mcp"
	"github.com/brandon/mcp-blastengine/internal/tools"
)

var (
	version     = "dev"
	showVersion = flag.Bool("version", false, "Show version information")
	skipProbe   = flag.Bool("skip-credential-check", false, "Skip the startup credential probe")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("mcp-blastengine version %s\n", version)
		os.Exit(0)
	}

	// Optional .env for local development; environment wins.
	_ = godotenv.Load()

	// Set up logging. Stdout carries the MCP protocol, so logs go to stderr.
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting Blastengine MCP server")

	// Initialize delivery log
	deliveries, err := deliverylog.Open(cfg.DeliveryLogPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open delivery log")
	}
	defer deliveries.Close()

	// Initialize provider client
	client := blastengine.NewClient(cfg.LoginID, cfg.APIKey, blastengine.Config{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Activate only with working credentials.
	if !*skipProbe {
		probeCtx, probeCancel := context.WithTimeout(ctx, cfg.Timeout())
		err := client.CheckCredentials(probeCtx)
		probeCancel()
		if err != nil {
			logger.WithError(err).Fatal("Credential check failed")
		}
		logger.Info("Blastengine credentials verified")
	}

	// Create tool registry
	registry, err := tools.NewRegistry(cfg, client, deliveries, files.DiskResolver{}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create tool registry")
	}

	// Create MCP server
	server, err := mcp.NewServer(cfg, registry, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Run server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	case err := <-errChan:
		logger.WithError(err).Error("Server error")
		cancel()
	}

	logger.Info("Shutting down Blastengine MCP server")
}
