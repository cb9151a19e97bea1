package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cart-demo/internal/catalog"
	"github.com/nikolayk812/cart-demo/internal/config"
	"github.com/nikolayk812/cart-demo/internal/logger"
	"github.com/nikolayk812/cart-demo/internal/notify"
	"github.com/nikolayk812/cart-demo/internal/port"
	"github.com/nikolayk812/cart-demo/internal/repository"
	"github.com/nikolayk812/cart-demo/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type app struct {
	cfg      config.Config
	log      logrus.FieldLogger
	store    *service.CartStore
	recorder *notify.Recorder

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, log *logrus.Logger) (_ *app, appErr error) {
	a := &app{
		cfg:      cfg,
		log:      logger.WithService(log, "cartctl"),
		recorder: notify.NewRecorder(),
	}

	defer func() {
		if appErr != nil {
			appErr = errors.Join(appErr, a.Close())
		}
	}()

	repo, err := a.newRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("newRepository: %w", err)
	}

	client, err := catalog.New(cfg.API.BaseURL, catalog.WithTimeout(cfg.API.Timeout))
	if err != nil {
		return nil, fmt.Errorf("catalog.New: %w", err)
	}

	notifier := notify.Multi(a.recorder, notify.NewLog(a.log))

	a.store, err = service.NewCartStore(ctx, repo, client, notifier, a.log)
	if err != nil {
		return nil, fmt.Errorf("service.NewCartStore: %w", err)
	}

	return a, nil
}

func (a *app) newRepository(ctx context.Context) (port.CartRepository, error) {
	st := a.cfg.Storage

	switch st.Backend {
	case config.BackendFile:
		return repository.NewFile(st.Dir, st.Key)

	case config.BackendMemory:
		return repository.NewMemory(), nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(st.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}

		client := redis.NewClient(opts)
		a.closers = append(a.closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("client.Ping: %w", err)
		}

		return repository.NewRedis(client, st.Key)

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, st.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})

		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("pool.Ping: %w", err)
		}

		return repository.NewCart(pool, st.Key)

	default:
		return nil, fmt.Errorf("storage.backend[%s] is not supported", st.Backend)
	}
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil

	return errors.Join(errs...)
}
