package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ignacioLiotti/gec-sub001/internal/fetcher"
	"github.com/ignacioLiotti/gec-sub001/internal/ingest"
	"github.com/ignacioLiotti/gec-sub001/internal/store"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "gec-ingest.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initTemplates() (*template.Registry, error) {
	if cfg.Template.Path == "" {
		return template.NewRegistry(template.Defaults()), nil
	}
	return template.LoadFile(cfg.Template.Path)
}

func initEngine(st store.Store) (*ingest.Engine, error) {
	reg, err := initTemplates()
	if err != nil {
		return nil, err
	}

	f, err := fetcher.For(cfg.Storage.Bucket, fetcher.Options{
		LocalRoot: cfg.Storage.LocalRoot,
		HTTP: fetcher.HTTPOptions{
			UserAgent:  cfg.Storage.UserAgent,
			Timeout:    time.Duration(cfg.Storage.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Storage.MaxRetries,
		},
		FTP: fetcher.FTPOptions{
			Timeout:  time.Duration(cfg.Storage.TimeoutSecs) * time.Second,
			User:     cfg.Storage.FTPUser,
			Password: cfg.Storage.FTPPassword,
		},
	})
	if err != nil {
		return nil, err
	}

	return ingest.New(st, f, reg, ingest.Options{
		MaxConcurrentTables: cfg.Ingest.MaxConcurrentTables,
		PreviewRows:         cfg.Ingest.PreviewRows,
		DefaultBucket:       cfg.Storage.Bucket,
	}), nil
}
