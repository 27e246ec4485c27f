package http

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog CatalogService
	Storage Pinger

	// Overdue sweep scheduler (optional). Without it the sweep endpoint
	// calls the catalog directly.
	Scheduler SweepScheduler

	// Task queue client (optional)
	TaskQueue TaskQueue

	// UpcomingDays is the default window for GET /api/books/upcoming
	UpcomingDays int

	// Application info
	Version string
}
