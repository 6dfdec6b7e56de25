package main

import (
	"context"
	"net/http"

	"github.com/jrsteele09/web-analyzer-client/apiclient"
	"github.com/jrsteele09/web-analyzer-client/auth"
	"github.com/jrsteele09/web-analyzer-client/internal/config"
	"github.com/jrsteele09/web-analyzer-client/kvstore"
	"github.com/jrsteele09/web-analyzer-client/sessions"
	"github.com/jrsteele09/web-analyzer-client/urls"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app holds the components built once per invocation.
type app struct {
	config   config.Config
	logger   zerolog.Logger
	storage  kvstore.Storage
	store    *sessions.Store
	client   *apiclient.Client
	auth     *auth.Service
	urls     *urls.Service
	manager  *auth.Manager
	registry *prometheus.Registry
}

func newApp(ctx context.Context, c config.Config, logger zerolog.Logger) (*app, error) {
	storage, err := kvstore.New(ctx, storageConfig(c))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] storage")
	}

	a := &app{
		config:   c,
		logger:   logger,
		storage:  storage,
		registry: prometheus.NewRegistry(),
	}
	if err := a.wire(); err != nil {
		_ = storage.Close()
		return nil, err
	}
	a.manager.Start(ctx)
	return a, nil
}

func (a *app) wire() error {
	var err error
	a.store, err = sessions.NewStore(a.storage, a.config.GetAuthStorageKey(), sessions.WithLogger(a.logger))
	if err != nil {
		return err
	}

	a.client, err = apiclient.New(a.config.GetAPIBaseURL(),
		apiclient.WithHTTPClient(&http.Client{Timeout: a.config.GetAPITimeout()}),
		apiclient.WithTokenSource(a.store),
		apiclient.WithLogger(a.logger),
		apiclient.WithMetrics(a.registry),
	)
	if err != nil {
		return err
	}

	a.auth, err = auth.NewService(a.client, auth.WithServiceLogger(a.logger))
	if err != nil {
		return err
	}
	a.urls, err = urls.NewService(a.client)
	if err != nil {
		return err
	}

	a.manager, err = auth.NewManager(a.auth, a.store,
		auth.WithManagerLogger(a.logger),
		auth.WithStateListener(func(s auth.Snapshot) {
			a.logger.Debug().Stringer("state", s.State).Str("error", s.Error).Msg("auth state")
		}),
	)
	return err
}

// close writes the metrics textfile when configured and releases storage.
func (a *app) close() error {
	var result error
	if path := a.config.GetMetricsFile(); path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			result = errors.Wrap(err, "[app close] write metrics")
		}
	}
	if err := a.storage.Close(); err != nil && result == nil {
		result = errors.Wrap(err, "[app close] storage")
	}
	return result
}

func storageConfig(c config.Config) kvstore.Config {
	return kvstore.Config{
		Driver: c.GetStorageDriver(),
		Path:   c.GetStoragePath(),
		Redis: &kvstore.RedisConfig{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
			Prefix:   c.GetRedisPrefix(),
		},
		SQLite: &kvstore.SQLiteConfig{DSN: c.GetSQLiteDSN()},
	}
}
