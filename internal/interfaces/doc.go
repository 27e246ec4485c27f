// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage
//
//   - catalog.Store: persistence port of the catalog (internal/catalog/store.go).
//     Implemented by memory.Store, csvfile.Store and books.Repository; the
//     backend is chosen at startup by storage.Open from STORAGE_BACKEND.
//   - http.Pinger: health check of the opened backend (internal/http/stores.go)
//
// ## Catalog
//
//   - http.CatalogService: operations exposed over HTTP (internal/http/stores.go)
//   - scheduler.Sweeper, tasks.OverdueSweeper: the overdue sweep
//   - tasks.BookImporter: ISBN lookup plus insert for queued imports
//
// ## External Services
//
//   - catalog.MetadataProvider: book metadata for ISBN imports (internal/catalog/service.go)
//
// ## Background Work
//
//   - http.SweepScheduler: cron-driven sweep status and manual runs
//   - http.TaskQueue: backlite enqueue and status lookup
//
// # Adding a New Storage Backend
//
//  1. Create a package under internal/storage/ (or internal/database/ for SQL)
//
//     type Store struct { ... }
//
//     func (s *Store) Add(book *entities.Book) (uint, error)
//     func (s *Store) GetByID(id uint) (*entities.Book, error) // catalog.ErrNotFound when absent
//     ...
//
//  2. Run the shared contract from its tests:
//
//     func TestStore(t *testing.T) {
//     storetest.Run(t, func(t *testing.T) catalog.Store { return NewStore() })
//     }
//
//  3. Add a case to storage.Open and a backend name in internal/config
//
//  4. Add a compile-time check to checks.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
