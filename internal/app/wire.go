package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"primis/internal/api"
	"primis/internal/domain"
	sessionsvc "primis/internal/services/session"
	"primis/internal/store"
)

// Wire bundles the storage, client and session store for the CLI.
type Wire struct {
	Config  Config
	Log     *logrus.Logger
	Storage domain.Storage
	API     *api.Client
	Session *sessionsvc.Store

	closers []func() error
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log *logrus.Logger) (*Wire, error) {
	w := &Wire{Config: cfg, Log: log}

	st, err := w.openStorage(cfg)
	if err != nil {
		return nil, err
	}
	w.Storage = st

	client, err := api.New(cfg.APIURL, st,
		api.WithTimeout(cfg.Timeout),
		api.WithHTTPClient(cfg.HTTP),
		api.WithLogger(log),
	)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	w.API = client

	w.Session = sessionsvc.New(client, st, log)
	w.closers = append(w.closers, func() error { w.Session.Close(); return nil })
	return w, nil
}

func (w *Wire) openStorage(cfg Config) (domain.Storage, error) {
	switch cfg.Storage {
	case StorageMemory:
		return store.NewMemoryStorage(), nil
	case StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rs := store.NewRedisStorage(client, cfg.Redis.Prefix)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		w.closers = append(w.closers, rs.Close)
		return rs, nil
	default:
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, fmt.Errorf("create %s: %w", cfg.Home, err)
		}
		return store.NewFileStorage(cfg.Home, cfg.Passphrase), nil
	}
}

// Close releases everything NewWire opened, newest first.
func (w *Wire) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}
