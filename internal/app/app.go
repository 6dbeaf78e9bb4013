// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dkoval/pricewatch/internal/archive"
	archivegcs "github.com/dkoval/pricewatch/internal/archive/gcs"
	"github.com/dkoval/pricewatch/internal/config"
	"github.com/dkoval/pricewatch/internal/fetcher"
	"github.com/dkoval/pricewatch/internal/fetcher/headless"
	"github.com/dkoval/pricewatch/internal/fetcher/httpfetch"
	"github.com/dkoval/pricewatch/internal/logging"
	"github.com/dkoval/pricewatch/internal/metrics"
	"github.com/dkoval/pricewatch/internal/pipeline"
	"github.com/dkoval/pricewatch/internal/publisher"
	publishergcp "github.com/dkoval/pricewatch/internal/publisher/pubsub"
	"github.com/dkoval/pricewatch/internal/scanner"
	"github.com/dkoval/pricewatch/internal/store"
	storememory "github.com/dkoval/pricewatch/internal/store/memory"
	storepostgres "github.com/dkoval/pricewatch/internal/store/postgres"
)

// App holds the shared, long-lived services: logger, store, the browser
// renderer and the scanner built on top of them. Initialized once at
// startup and passed to the commands that need it.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Store   store.Store
	Scanner *scanner.Scanner

	renderer fetcher.Renderer
	closers  []func() error
}

// New builds the service graph from configuration. It fails fast when a
// required backend cannot be initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	a := &App{Config: cfg, Logger: logger}

	if err := a.initStore(ctx, cfg); err != nil {
		return nil, err
	}
	a.initRenderer(cfg)

	httpFetcher := httpfetch.New(httpfetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	})
	resolver := pipeline.NewResolver(a.renderer, httpFetcher, logger)

	pub, err := a.initPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	arc, err := a.initArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.Scanner = scanner.New(a.Store, resolver, pub, arc, logger, scanner.Config{
		Topic: cfg.PubSub.TopicName,
	})
	return a, nil
}

func (a *App) initStore(ctx context.Context, cfg config.Config) error {
	switch cfg.DB.Provider {
	case "postgres":
		a.Logger.Info("connecting to postgres")
		st, err := storepostgres.New(ctx, storepostgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return fmt.Errorf("init postgres store: %w", err)
		}
		a.Store = st
	case "memory":
		a.Logger.Info("using in-memory store; nothing will survive a restart")
		a.Store = storememory.New()
	default:
		return fmt.Errorf("unknown db provider %q", cfg.DB.Provider)
	}
	return nil
}

func (a *App) initRenderer(cfg config.Config) {
	if !cfg.Headless.Enabled {
		a.Logger.Info("headless rendering disabled; using http fetch only")
		a.renderer = headless.NewNoop()
		return
	}
	a.renderer = headless.New(headless.Config{
		UserAgent:         cfg.Headless.UserAgent,
		NavigationTimeout: cfg.NavTimeout(),
		SettleDelay:       cfg.SettleDelay(),
	})
}

func (a *App) initPublisher(ctx context.Context, cfg config.Config) (publisher.Publisher, error) {
	if !cfg.PubSub.Enabled {
		return publisher.Noop{}, nil
	}
	pub, err := publishergcp.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
	if err != nil {
		return nil, fmt.Errorf("init pubsub publisher: %w", err)
	}
	a.closers = append(a.closers, pub.Close)
	return pub, nil
}

func (a *App) initArchive(ctx context.Context, cfg config.Config) (archive.Provider, error) {
	switch cfg.Archive.Provider {
	case "gcs":
		arc, err := archivegcs.New(ctx, cfg.Archive.GCSBucket, cfg.Archive.Prefix)
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		a.closers = append(a.closers, arc.Close)
		return arc, nil
	case "noop", "":
		return archive.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown archive provider %q", cfg.Archive.Provider)
	}
}

// Close shuts down services in reverse dependency order. The browser
// process is disposed here and only here.
func (a *App) Close() {
	if a.renderer != nil {
		if err := a.renderer.Close(); err != nil {
			a.Logger.Warn("close renderer", zap.Error(err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close service", zap.Error(err))
		}
	}
	if a.Store != nil {
		a.Store.Close()
	}
	_ = a.Logger.Sync()
}
