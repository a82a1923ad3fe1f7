package main

import (
	"fmt"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// setup loads the configuration and builds the selected demo app.
// cleanup releases the store connection.
func setup(cmd *cobra.Command, extra ...arbor.Option) (app *arbor.App, cfg config.Config, cleanup func(), err error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err = config.Load(path)
	if err != nil {
		return nil, cfg, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if f, _ := cmd.Flags().GetString("log-format"); f != "" {
		cfg.LogFormat = f
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, cfg, nil, err
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return nil, cfg, nil, err
	}

	name, _ := cmd.Flags().GetString("app")
	block, err := demo(name)
	if err != nil {
		return nil, cfg, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []arbor.Option{
		arbor.WithTitle(cfg.Title),
		arbor.WithLogger(logger),
		arbor.WithMetrics(reg),
		arbor.WithThemes(cfg.Themes...),
		arbor.WithCookie(cfg.Session.Cookie),
		arbor.WithSessionTTL(cfg.Session.TTL),
		arbor.WithBudget(cfg.Persist.Budget),
		arbor.WithPersistence(persistence(cfg)...),
	}

	cleanup = func() {}
	switch cfg.Store {
	case config.StoreFile:
		opts = append(opts, arbor.WithStore(file.New(cfg.StoreDir)))
	case config.StoreRedis:
		ttl := cfg.Redis.TTL
		if ttl == 0 {
			ttl = cfg.Session.TTL
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(ttl),
		)
		opts = append(opts,
			arbor.WithStore(store),
			arbor.WithLocker(redis.NewLocker(store.Client(), "arbor:")),
			arbor.WithLockTTL(cfg.Session.LockTTL),
		)
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close redis store", "err", err)
			}
		}
	}

	app, err = arbor.New(block, append(opts, extra...)...)
	if err != nil {
		cleanup()
		return nil, cfg, nil, fmt.Errorf("failed to build app %q: %w", name, err)
	}
	logger.Debug("app ready", "app", name, "store", cfg.Store)
	return app, cfg, cleanup, nil
}

// persistence builds the store middlewares in Save order: drop transient
// keys, mask, then encrypt.
func persistence(cfg config.Config) []middleware.Middleware {
	var mws []middleware.Middleware
	if len(cfg.Persist.Transient) > 0 {
		mws = append(mws, middleware.NewTransientMiddleware(cfg.Persist.Transient...))
	}
	if len(cfg.Persist.Mask) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Persist.Mask))
	}
	if cfg.Persist.EncryptionKey != "" {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: []byte(cfg.Persist.EncryptionKey),
		}))
	}
	return mws
}
