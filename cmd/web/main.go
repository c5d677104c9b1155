// Command web runs the jobport client: a job listings front page plus the
// redirect-based sign-in flow against the jobport backend.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/jobport/jobport/internal/web"
	"github.com/jobport/jobport/pkg/authflow"
	"github.com/jobport/jobport/pkg/backendapi"
	"github.com/jobport/jobport/pkg/config"
	"github.com/jobport/jobport/pkg/httpserver"
	"github.com/jobport/jobport/pkg/jobs"
	"github.com/jobport/jobport/pkg/kvstore"
	"github.com/jobport/jobport/pkg/logger"
	"github.com/jobport/jobport/pkg/session"
)

// clientIDKey stores the install identity generated on first run.
const clientIDKey = "client_id"

type storeConfig struct {
	// RedisURL switches session persistence from the local file to Redis
	// when set. Empty means file-backed.
	RedisURL string `env:"REDIS_URL"`

	File kvstore.FileStoreConfig
}

func main() {
	if err := run(); err != nil {
		slog.Error("web client exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	log := logger.New(logger.WithConfig(logCfg))
	logger.SetAsDefault(log)

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	clientID, err := ensureClientID(ctx, store)
	if err != nil {
		return err
	}
	log = log.With(logger.ClientID(clientID))

	sessions := session.New(ctx, store, session.WithLogger(log))

	var apiCfg backendapi.Config
	if err := config.Load(&apiCfg); err != nil {
		return err
	}
	backend := backendapi.NewClient(apiCfg)

	flow := authflow.New(backend, sessions, store, authflow.WithLogger(log))

	handler := web.New(flow, sessions, jobs.MustLoad(), web.WithLogger(log))

	var srvCfg httpserver.Config
	if err := config.Load(&srvCfg); err != nil {
		return err
	}
	srv := httpserver.New(srvCfg, httpserver.WithLogger(log))

	log.Info("starting jobport web client",
		logger.Component("main"),
		slog.String("backend", apiCfg.BaseURL),
	)
	return srv.Run(ctx, handler.Routes())
}

// openStore picks the session store backend: Redis when REDIS_URL is set,
// the local JSON file otherwise.
func openStore(ctx context.Context) (kvstore.Store, error) {
	var cfg storeConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	if cfg.RedisURL != "" {
		var redisCfg kvstore.RedisConfig
		if err := config.Load(&redisCfg); err != nil {
			return nil, err
		}
		client, err := kvstore.Connect(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return kvstore.NewRedisStore(client, "jobport:"), nil
	}

	return kvstore.NewFileStore(cfg.File.Path)
}

// ensureClientID returns the persisted install id, generating one on first run.
func ensureClientID(ctx context.Context, store kvstore.Store) (string, error) {
	id, err := store.Get(ctx, clientIDKey)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return "", err
	}

	id = uuid.New().String()
	if err := store.Set(ctx, clientIDKey, id); err != nil {
		return "", err
	}
	return id, nil
}
