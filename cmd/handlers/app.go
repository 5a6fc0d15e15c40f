package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diderot/internal/archive"
	"diderot/internal/config"
	"diderot/internal/core"
	"diderot/internal/llm"
	"diderot/internal/logger"
	"diderot/internal/metrics"
	"diderot/internal/pipeline"
	"diderot/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

var errInterrupted = errors.New("interrupted")

// app holds the wired report generation stack.
type app struct {
	cfg      *config.Config
	store    *store.Store
	reports  *archive.Manager
	registry *prometheus.Registry
}

// newApp loads a validated config and wires text generation, the topic cache,
// the pipeline and the report archive.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	gen, err := llm.NewClient(ctx, cfg, m)
	if err != nil {
		return nil, err
	}

	cacheStore, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCacheIO, err)
	}

	deps, err := pipeline.NewDeps(ctx, cfg, gen, cacheStore, m)
	if err != nil {
		_ = cacheStore.Close()
		return nil, err
	}
	p := pipeline.NewPipeline(deps, pipeline.ConfigFrom(cfg))

	generate := archive.GeneratorFunc(func(ctx context.Context, date string, force bool) (*core.DailyReport, error) {
		return p.GenerateDailyReport(ctx, pipeline.Options{Date: date, Force: force})
	})

	return &app{
		cfg:      cfg,
		store:    cacheStore,
		reports:  archive.NewManager(archive.New(cfg.Cache.ReportsDir), generate, m),
		registry: registry,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Error("Failed to close cache store", err)
	}
}

// readArchive opens the report archive without requiring generation credentials.
func readArchive() (*archive.Archive, error) {
	cfg, err := config.Read(cfgFile)
	if err != nil {
		return nil, err
	}
	return archive.New(cfg.Cache.ReportsDir), nil
}

// resolveDate defaults to today and validates the format.
func resolveDate(date string) (string, error) {
	if date == "" {
		date = time.Now().Format(core.DateLayout)
	}
	if err := archive.ValidateDate(date); err != nil {
		return "", err
	}
	return date, nil
}

// interrupted maps a cancelled context onto errInterrupted.
func interrupted(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", errInterrupted, err)
	}
	return err
}
