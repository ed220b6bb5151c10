package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nulzo/cachekit/internal/catalog"
	"github.com/nulzo/cachekit/internal/cli"
	"github.com/nulzo/cachekit/internal/config"
	"github.com/nulzo/cachekit/internal/gateway"
	"github.com/nulzo/cachekit/internal/platform/logger"
	"github.com/nulzo/cachekit/internal/platform/otel"
	"github.com/nulzo/cachekit/internal/server"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.CrossMark(), err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	log := logger.Initialize(logCfg)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Enabled, log, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Error("Tracer shutdown failed", zap.Error(err))
		}
	}()

	gw, err := gateway.Bootstrap(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := gw.Close(); err != nil {
			log.Error("Failed to close cache backends", zap.Error(err))
		}
	}()

	products, err := catalog.NewService(gw.Interceptor, gw.Sites, catalog.NewStore(sampleProducts...))
	if err != nil {
		return fmt.Errorf("catalog call sites: %w", err)
	}

	return server.New(cfg, log, gw, products).Run(ctx)
}

var sampleProducts = []catalog.Product{
	{SKU: "ABC", Name: "Anvil", Price: 10},
	{SKU: "XYZ", Name: "Xylophone", Price: 25},
}
