package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/scheduler"
)

// This file consolidates the interfaces HTTP controllers depend on.

// CatalogService is the subset of *catalog.Service exposed over HTTP.
type CatalogService interface {
	AddBook(book *entities.Book) (uint, error)
	UpdateBook(book *entities.Book) (bool, error)
	DeleteBook(id uint) (bool, error)
	GetBookByID(id uint) (*entities.Book, error)
	GetAllBooks() ([]entities.Book, error)
	UpdateBookStatus(id uint, status entities.Status) (bool, error)

	SearchBooks(keyword string) ([]entities.Book, error)
	FilterByStatus(status entities.Status) ([]entities.Book, error)
	FilterByGenre(genre string) ([]entities.Book, error)
	SortByTitle() ([]entities.Book, error)
	SortByAuthor() ([]entities.Book, error)
	SortByDueDate() ([]entities.Book, error)
	SortByPriority() ([]entities.Book, error)

	GetUpcomingDueBooks(daysThreshold int) ([]entities.Book, error)
	GetOverdueBooks() ([]entities.Book, error)
	GetRecommendedBooks(genre string) ([]entities.Book, error)
	CheckAndUpdateOverdueBooks() (catalog.SweepResult, error)

	Progress(book entities.Book) catalog.Progress
	GetReadingSpeedAnalysis(id uint) (catalog.ReadingSpeed, error)
	ImportBookByISBN(ctx context.Context, isbn string) (*entities.Book, error)
}

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping() error
}

// SweepScheduler is the cron-driven overdue sweep.
type SweepScheduler interface {
	RunNow() (catalog.SweepResult, error)
	Status() scheduler.SweepStatus
}

// TaskQueue enqueues background jobs and reports their state.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
