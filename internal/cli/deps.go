package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/lvillar/layoutpdf/asset"
	"github.com/lvillar/layoutpdf/config"
	"github.com/lvillar/layoutpdf/render"
	"github.com/lvillar/layoutpdf/store"
)

// newRenderer builds a renderer from the [render] section.
func newRenderer(cfg config.Config, logger *log.Logger) (*render.Renderer, error) {
	opts := []render.Option{
		render.WithLogger(logger),
		render.WithLoader(asset.NewLoader(asset.WithBaseDir(cfg.Render.BaseDir))),
		render.WithCompression(cfg.Render.Compress),
	}
	if cfg.Render.Concurrency > 0 {
		opts = append(opts, render.WithConcurrency(cfg.Render.Concurrency))
	}
	for _, f := range cfg.Render.Fonts {
		ttf, err := os.ReadFile(f.File)
		if err != nil {
			return nil, fmt.Errorf("reading font %s: %w", f.Family, err)
		}
		opts = append(opts, render.WithFont(f.Family, f.Style, ttf))
	}
	return render.New(opts...), nil
}

// openRepository opens the repository selected by the [store] section. The
// returned func releases its connections.
func openRepository(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Repository, func(), error) {
	var (
		repo    store.Repository
		closers []func()
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}
		db, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { sqlDB.Close() })
		}
		r, err := store.NewGormRepository(db, store.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		repo = r
	default:
		r, err := store.NewFileRepository(cfg.Store.Path, store.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		repo = r
	}

	if cfg.Store.RedisAddr != "" {
		client, err := store.DialRedis(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			logger.Warn("template cache disabled", "err", err)
		} else {
			closers = append(closers, func() { client.Close() })
			repo = store.NewCachedRepository(repo, client,
				store.WithTTL(cfg.Store.CacheTTL.Duration),
				store.WithCacheLogger(logger))
			logger.Debug("template cache enabled", "addr", cfg.Store.RedisAddr)
		}
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return repo, closeAll, nil
}
