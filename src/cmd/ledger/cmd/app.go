package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/sqlstore"
	"github.com/api-sage/ledger-engine/src/internal/config"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/usecase/services"
	"github.com/jmoiron/sqlx"
)

var errNoSchema = errors.New("the memory store has no schema to migrate")

// app wires the store and services selected by the configuration.
type app struct {
	accounts  *services.AccountService
	transfers *services.TransferService
	rates     *services.RateService
	close     func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	table, err := config.LoadRateTable(cfg.RatesFile)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(ctx, cfg, true)
	if err != nil {
		return nil, err
	}

	converter := services.NewFixedRateConverter(table)
	return &app{
		accounts:  services.NewAccountService(store, cfg.TaxJobWorkers),
		transfers: services.NewTransferService(store, converter),
		rates:     services.NewRateService(converter),
		close:     closeStore,
	}, nil
}

func (a *app) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// openStore returns the configured store. SQL stores are migrated first
// when migrate is set.
func openStore(ctx context.Context, cfg config.Config, migrate bool) (repo_interfaces.Store, func() error, error) {
	if cfg.StoreDriver == "memory" {
		logger.Info("using in-memory store", nil)
		return memory.NewStore(), nil, nil
	}

	dialect, db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := sqlstore.RunMigrations(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	store := sqlstore.NewStore(db, dialect)
	return store, store.Close, nil
}

func openDB(ctx context.Context, cfg config.Config) (sqlstore.Dialect, *sqlx.DB, error) {
	dialect, err := sqlstore.DialectFor(cfg.StoreDriver)
	if err != nil {
		return sqlstore.Dialect{}, nil, err
	}

	dsn := cfg.DatabaseDSN
	if dialect.Name == sqlstore.SQLite.Name {
		dsn = cfg.SQLitePath
	}

	db, err := sqlstore.Open(ctx, dialect, dsn)
	if err != nil {
		return sqlstore.Dialect{}, nil, fmt.Errorf("open store: %w", err)
	}
	return dialect, db, nil
}
