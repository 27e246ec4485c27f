// Package catalog holds the storage-independent book service and the storage
// contract it depends on.
//
// # Usage
//
//	store := memory.NewStore()
//	svc := catalog.NewService(store)
//	id, err := svc.AddBook(&entities.Book{Title: "Dune", Author: "Herbert", TotalPages: 412})
//
// Any backend implementing Store can be plugged in; see internal/storage for
// the configured selection.
package catalog

import (
	"errors"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// ErrNotFound is returned by a Store when no record has the requested ID.
var ErrNotFound = errors.New("book not found")

// Store is the persistence contract for catalog records. Every call is atomic
// with respect to the backing store. Errors other than ErrNotFound are storage
// failures.
type Store interface {
	// Add assigns a new unique ID, persists the book and sets book.ID.
	Add(book *entities.Book) (uint, error)
	// Update replaces the stored record with the same ID. It returns false
	// when no such record exists.
	Update(book *entities.Book) (bool, error)
	Delete(id uint) (bool, error)
	GetByID(id uint) (*entities.Book, error)
	GetAll() ([]entities.Book, error)

	// Search matches keyword case-insensitively as a substring of title,
	// author, ISBN or genre.
	Search(keyword string) ([]entities.Book, error)
	FilterByStatus(status entities.Status) ([]entities.Book, error)
	// FilterByGenre is a case-insensitive exact match.
	FilterByGenre(genre string) ([]entities.Book, error)

	SortByTitle() ([]entities.Book, error)
	SortByAuthor() ([]entities.Book, error)
	// SortByDueDate places books without a due date last.
	SortByDueDate() ([]entities.Book, error)
	// SortByPriority orders highest priority first.
	SortByPriority() ([]entities.Book, error)

	UpdateStatus(id uint, status entities.Status) (bool, error)
	// GetOverdue returns books due strictly before today that are not completed.
	GetOverdue(today time.Time) ([]entities.Book, error)
}
