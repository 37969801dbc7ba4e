package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NordCoder/Tracerus/internal/archive"
	config "github.com/NordCoder/Tracerus/internal/config/collector"
	"github.com/NordCoder/Tracerus/internal/fetcher/lighthouse"
	"github.com/NordCoder/Tracerus/internal/fetcher/webpagetest"
	"github.com/NordCoder/Tracerus/internal/obs"
	collector "github.com/NordCoder/Tracerus/internal/services/collector"
	"github.com/NordCoder/Tracerus/internal/storage"

	"go.uber.org/zap"
)

func wire(cfg *config.Config, store *storage.Dir, l *zap.Logger) *collector.StateManager {
	remote := webpagetest.New(webpagetest.Config{
		BaseURL:   cfg.Remote.BaseURL,
		Key:       cfg.Remote.Key,
		Location:  cfg.Remote.Location,
		Timeout:   cfg.Remote.Timeout,
		UserAgent: cfg.Remote.UserAgent,
	}, l)

	local := lighthouse.New(lighthouse.Config{
		Bin:              cfg.Local.Bin,
		AssetDir:         cfg.Local.AssetDir,
		DisableIsolation: cfg.Local.DisableIsolation,
	}, l)

	coord := &collector.Coordinator{
		Log:      l,
		Remote:   remote,
		Local:    local,
		Store:    store,
		Progress: &collector.LogProgress{Log: l},
		Samples:  cfg.Samples,
	}

	return &collector.StateManager{
		Log:     l,
		Summary: storage.NewSummaryFile(cfg.Out.Summary),
		Coord:   coord,
		Archive: &archive.Packer{Dir: cfg.Out.Dir, Dest: cfg.Out.Archive},
		URLs:    cfg.URLList(),
	}
}

func main() {
	// init
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(os.Getenv("COLLECTOR_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// artifact storage
	store, err := storage.NewDir(cfg.Out.Dir)
	if err != nil {
		l.Fatal("artifact dir", zap.Error(err))
	}

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, nil, l)

	// wiring
	mgr := wire(cfg, store, l)

	// run
	err = mgr.Run(root)

	// graceful metrics server shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)

	if err != nil && !errors.Is(err, context.Canceled) {
		l.Fatal("collection run failed", zap.Error(err))
	}
	l.Info("bye")
}
