package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookImporter builds catalog drafts from ISBN metadata and stores them.
type BookImporter interface {
	ImportBookByISBN(ctx context.Context, isbn string) (*entities.Book, error)
	AddBook(book *entities.Book) (uint, error)
}

// ImportISBNTask looks up an ISBN and adds the resulting book to the catalog.
// Genre, DueDate and Priority, when set, override the imported draft.
type ImportISBNTask struct {
	ISBN     string     `json:"isbn"`
	Genre    string     `json:"genre,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority int        `json:"priority,omitempty"`
}

// Config returns the queue configuration for ISBN imports. Lookups hit a
// remote API, so failures are retried with backoff.
func (t ImportISBNTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_isbn",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportISBNProcessor creates a processor function for ImportISBNTask.
func ImportISBNProcessor(importer BookImporter) backlite.QueueProcessor[ImportISBNTask] {
	return func(ctx context.Context, task ImportISBNTask) error {
		if importer == nil {
			return errors.New("book importer not configured")
		}

		book, err := importer.ImportBookByISBN(ctx, task.ISBN)
		if err != nil {
			return fmt.Errorf("import ISBN %s: %w", task.ISBN, err)
		}
		task.apply(book)

		id, err := importer.AddBook(book)
		if err != nil {
			return fmt.Errorf("add imported book %q: %w", book.Title, err)
		}

		log.Info("imported book by ISBN", "isbn", task.ISBN, "id", id, "title", book.Title)
		return nil
	}
}

func (t ImportISBNTask) apply(book *entities.Book) {
	if t.Genre != "" {
		book.Genre = t.Genre
	}
	if t.DueDate != nil {
		due := entities.DateOf(*t.DueDate)
		book.DueDate = &due
	}
	if t.Priority != 0 {
		book.Priority = t.Priority
	}
}

// NewImportISBNQueue creates a backlite queue for ISBN imports.
func NewImportISBNQueue(importer BookImporter) backlite.Queue {
	return backlite.NewQueue(ImportISBNProcessor(importer))
}
