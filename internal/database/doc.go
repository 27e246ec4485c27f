// Package database opens the relational catalog store.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup for SQLite and Postgres, migrations
//	└── books/           # catalog.Store implementation over gorm
//
// # Drivers
//
// SQLite is the default and takes a file path. Postgres takes a DSN such as
// "host=localhost user=bookshelf dbname=bookshelf sslmode=disable".
//
//	db, err := database.Open(database.DriverPostgres, dsn, logger.Warn)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	repo := books.NewRepository(db.DB)
//
// The books table is migrated with AutoMigrate every time a connection is opened.
package database
