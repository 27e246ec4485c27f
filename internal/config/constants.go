package config

// Default locations of on-disk state
const (
	// DefaultDatabasePath is the SQLite catalog used by the sqlite backend
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultCSVPath is the catalog file used by the csv backend
	DefaultCSVPath = "./books.csv"

	// DefaultTasksDatabasePath holds the backlite task queue
	DefaultTasksDatabasePath = "./bookshelf-tasks.db"
)

// Storage backends accepted by STORAGE_BACKEND
const (
	BackendMemory   = "memory"
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)
