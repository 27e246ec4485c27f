package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/storage"
	"github.com/mrlokans/bookshelf/internal/storage/csvfile"
	"github.com/mrlokans/bookshelf/internal/storage/memory"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Storage Adapters
// =============================================================================

// Store implementations
var _ catalog.Store = (*memory.Store)(nil)
var _ catalog.Store = (*csvfile.Store)(nil)
var _ catalog.Store = (*books.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*storage.Backend)(nil)

// =============================================================================
// Catalog Service
// =============================================================================

var _ http.CatalogService = (*catalog.Service)(nil)
var _ scheduler.Sweeper = (*catalog.Service)(nil)
var _ tasks.OverdueSweeper = (*catalog.Service)(nil)
var _ tasks.BookImporter = (*catalog.Service)(nil)

// =============================================================================
// External Services
// =============================================================================

// MetadataProvider implementations
var _ catalog.MetadataProvider = (*metadata.OpenLibraryClient)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.SweepScheduler = (*scheduler.OverdueSweepScheduler)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
