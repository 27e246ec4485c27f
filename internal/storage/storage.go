// Package storage selects and opens the catalog.Store named by configuration.
//
// The returned Backend owns the underlying handle (database connection or
// nothing at all for the memory and csv stores) and must be closed once on
// shutdown.
package storage

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/storage/csvfile"
	"github.com/mrlokans/bookshelf/internal/storage/memory"
)

// Backend is an opened store together with its lifetime hooks.
type Backend struct {
	Name  string
	Store catalog.Store

	db *database.Database
}

// Open builds the store for cfg.Backend.
func Open(cfg config.Storage) (*Backend, error) {
	b := &Backend{Name: cfg.Backend}

	switch cfg.Backend {
	case config.BackendMemory:
		b.Store = memory.NewStore()
	case config.BackendCSV:
		store, err := csvfile.NewStore(cfg.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("open csv catalog: %w", err)
		}
		b.Store = store
	case config.BackendSQLite, config.BackendPostgres:
		driver, dsn := database.DriverSQLite, cfg.DatabasePath
		if cfg.Backend == config.BackendPostgres {
			driver, dsn = database.DriverPostgres, cfg.DatabaseDSN
		}
		db, err := database.Open(driver, dsn, logger.Warn)
		if err != nil {
			return nil, err
		}
		b.db = db
		b.Store = books.NewRepository(db.DB)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	log.Info("storage opened", "backend", b.Name)
	return b, nil
}

// Ping checks that the backend can still serve requests.
func (b *Backend) Ping() error {
	if b.db == nil {
		_, err := b.Store.GetAll()
		return err
	}
	return b.db.Ping()
}

// Close releases the underlying connection. It is safe to call more than once.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	db := b.db
	b.db = nil
	log.Info("closing storage", "backend", b.Name)
	return db.Close()
}
