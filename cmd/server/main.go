// FinSight predictive financial analytics engine.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/finsightlabs/finsight/internal/config"
	"github.com/finsightlabs/finsight/internal/logging"
	"github.com/finsightlabs/finsight/internal/server"
	"github.com/finsightlabs/finsight/internal/traces"
)

// Build info, set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	logger := logging.New("info", "text")

	logger.Info("starting finsight",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
		if err != nil {
			logger.Error("failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("trace shutdown error", "error", err)
			}
		}()
	}

	srv, err := server.New(cfg, server.WithLogger(logging.New(cfg.LogLevel, "json")))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
