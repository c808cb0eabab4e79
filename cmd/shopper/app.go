package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/apiclient"
	"github.com/Allengabo/Yankicks-web/internal/cart"
	"github.com/Allengabo/Yankicks-web/internal/checkout"
	"github.com/Allengabo/Yankicks-web/internal/session"
	"github.com/Allengabo/Yankicks-web/internal/storage"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type options struct {
	apiURL   string
	dataPath string
	redis    string
	mongo    string
	profile  string
	timeout  time.Duration
	verbose  bool
}

type storeOpener func(opts *options) (storage.Store, error)

// openStore keeps snapshots in MongoDB or Redis when one is given, otherwise
// in a local bolt file.
func openStore(opts *options) (storage.Store, error) {
	if opts.mongo != "" {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		db, err := storage.ConnectMongo(ctx, opts.mongo, "yankicks")
		if err != nil {
			return nil, err
		}
		store, err := storage.NewMongoStore(ctx, db, opts.profile)
		if err != nil {
			db.Client().Disconnect(ctx)
			return nil, err
		}
		return store, nil
	}
	if opts.redis != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.redis})
		return storage.NewRedisStore(client, opts.profile), nil
	}
	return storage.OpenBoltStore(opts.dataPath)
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".yankicks", "shopper.db")
	}
	return filepath.Join(home, ".yankicks", "shopper.db")
}

// app is everything one command needs, built fresh per invocation.
type app struct {
	store  storage.Store
	client *apiclient.Client
	cart   *cart.Engine
	gate   *session.Gate
	flow   *checkout.Flow
}

func newApp(ctx context.Context, opts *options, open storeOpener) (*app, error) {
	logCfg := logger.Config{Mode: "production", Level: "warn", Output: "stderr"}
	if opts.verbose {
		logCfg = logger.Config{Mode: "development", Output: "stderr"}
	}
	if _, err := logger.New(logCfg); err != nil {
		return nil, err
	}

	store, err := open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	client := apiclient.New(opts.apiURL, opts.timeout)

	c, err := cart.Load(ctx, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	gate, err := session.NewGate(ctx, store, client)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		store:  store,
		client: client,
		cart:   c,
		gate:   gate,
		flow:   checkout.NewFlow(c, gate, client),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
