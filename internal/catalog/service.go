package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

// MetadataProvider looks up bibliographic data for ISBN imports.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
}

// ErrMetadataUnavailable is returned by ImportBookByISBN when no provider is set.
var ErrMetadataUnavailable = errors.New("metadata provider not configured")

// SweepResult summarises one overdue sweep.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Service implements the catalog business rules on top of a Store.
// It keeps no state besides its collaborators; every read is a full pass
// over storage.
type Service struct {
	store    Store
	metadata MetadataProvider
	now      func() time.Time
}

// NewService creates a service bound to the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// SetClock overrides the time source used to compute "today" (optional).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetMetadataProvider enables ISBN imports (optional).
func (s *Service) SetMetadataProvider(provider MetadataProvider) {
	s.metadata = provider
}

// Today returns the current calendar date.
func (s *Service) Today() time.Time {
	return entities.DateOf(s.now())
}

// AddBook validates and persists a new book, returning its assigned ID.
// An empty status defaults to ACTIVE and a zero added date to today.
func (s *Service) AddBook(book *entities.Book) (uint, error) {
	if book != nil && book.Status == "" {
		book.Status = entities.StatusActive
	}
	if err := validateBook(book); err != nil {
		return 0, err
	}
	if book.AddedDate.IsZero() {
		book.AddedDate = s.Today()
	}
	book.NormalizeDates()

	id, err := s.store.Add(book)
	if err != nil {
		return 0, fmt.Errorf("add book: %w", err)
	}
	return id, nil
}

// UpdateBook validates and replaces a stored book. It returns false, without
// error, when the ID does not exist. The stored added date is kept.
func (s *Service) UpdateBook(book *entities.Book) (bool, error) {
	if err := validateBook(book); err != nil {
		return false, err
	}

	existing, err := s.store.GetByID(book.ID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load book %d: %w", book.ID, err)
	}
	book.AddedDate = existing.AddedDate
	book.NormalizeDates()

	ok, err := s.store.Update(book)
	if err != nil {
		return false, fmt.Errorf("update book %d: %w", book.ID, err)
	}
	return ok, nil
}

func (s *Service) DeleteBook(id uint) (bool, error) {
	ok, err := s.store.Delete(id)
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	return ok, nil
}

// GetBookByID returns the book or nil when no book has that ID.
func (s *Service) GetBookByID(id uint) (*entities.Book, error) {
	book, err := s.store.GetByID(id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return book, nil
}

func (s *Service) GetAllBooks() ([]entities.Book, error) {
	books, err := s.store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// UpdateBookStatus moves a book to a new status. Completing a book fills in
// its pages; starting an unread book marks the first page as read. Any status
// may follow any other. Returns false when the book does not exist.
func (s *Service) UpdateBookStatus(id uint, status entities.Status) (bool, error) {
	book, err := s.GetBookByID(id)
	if err != nil {
		return false, err
	}
	if book == nil {
		return false, nil
	}

	book.Status = status
	switch {
	case status == entities.StatusCompleted:
		book.PagesRead = book.TotalPages
	case status == entities.StatusInProgress && book.PagesRead == 0 && book.TotalPages > 0:
		book.PagesRead = 1
	}

	return s.UpdateBook(book)
}

// CheckAndUpdateOverdueBooks marks every past-due, unfinished book as OVERDUE.
// A failed write is logged and counted; the sweep carries on with the rest.
// Books already marked OVERDUE are left untouched, so repeated sweeps on the
// same day change nothing.
func (s *Service) CheckAndUpdateOverdueBooks() (SweepResult, error) {
	var result SweepResult

	books, err := s.store.GetAll()
	if err != nil {
		return result, fmt.Errorf("load books for overdue sweep: %w", err)
	}

	today := s.Today()
	for i := range books {
		book := &books[i]
		result.Scanned++
		if !book.IsOverdueOn(today) || book.Status == entities.StatusOverdue {
			continue
		}

		book.Status = entities.StatusOverdue
		ok, err := s.store.Update(book)
		if err != nil || !ok {
			result.Failed++
			log.Warn("overdue sweep: could not mark book", "id", book.ID, "title", book.Title, "err", err)
			continue
		}
		result.Updated++
	}

	return result, nil
}

// SearchBooks returns books matching keyword; a blank keyword returns all books.
func (s *Service) SearchBooks(keyword string) ([]entities.Book, error) {
	if strings.TrimSpace(keyword) == "" {
		return s.GetAllBooks()
	}
	books, err := s.store.Search(strings.ToLower(keyword))
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func (s *Service) FilterByStatus(status entities.Status) ([]entities.Book, error) {
	books, err := s.store.FilterByStatus(status)
	if err != nil {
		return nil, fmt.Errorf("filter by status: %w", err)
	}
	return books, nil
}

func (s *Service) FilterByGenre(genre string) ([]entities.Book, error) {
	books, err := s.store.FilterByGenre(genre)
	if err != nil {
		return nil, fmt.Errorf("filter by genre: %w", err)
	}
	return books, nil
}

// GetUpcomingDueBooks returns books due within daysThreshold days from today,
// today included. Books that are already past due are not part of this view.
func (s *Service) GetUpcomingDueBooks(daysThreshold int) ([]entities.Book, error) {
	books, err := s.GetAllBooks()
	if err != nil {
		return nil, err
	}

	today := s.Today()
	upcoming := make([]entities.Book, 0)
	for _, book := range books {
		if book.DueDate == nil {
			continue
		}
		daysUntilDue := entities.DaysBetween(today, *book.DueDate)
		if daysUntilDue >= 0 && daysUntilDue <= daysThreshold {
			upcoming = append(upcoming, book)
		}
	}
	return upcoming, nil
}

// GetOverdueBooks lists past-due books that are not completed.
func (s *Service) GetOverdueBooks() ([]entities.Book, error) {
	books, err := s.store.GetOverdue(s.Today())
	if err != nil {
		return nil, fmt.Errorf("list overdue books: %w", err)
	}
	return books, nil
}

func (s *Service) SortByTitle() ([]entities.Book, error) {
	return s.sorted("title", s.store.SortByTitle)
}

func (s *Service) SortByAuthor() ([]entities.Book, error) {
	return s.sorted("author", s.store.SortByAuthor)
}

func (s *Service) SortByDueDate() ([]entities.Book, error) {
	return s.sorted("due date", s.store.SortByDueDate)
}

func (s *Service) SortByPriority() ([]entities.Book, error) {
	return s.sorted("priority", s.store.SortByPriority)
}

func (s *Service) sorted(key string, fn func() ([]entities.Book, error)) ([]entities.Book, error) {
	books, err := fn()
	if err != nil {
		return nil, fmt.Errorf("sort by %s: %w", key, err)
	}
	return books, nil
}

// GetRecommendedBooks returns unfinished books of the given genre, highest
// priority first. Books of equal priority keep their storage order.
func (s *Service) GetRecommendedBooks(genre string) ([]entities.Book, error) {
	books, err := s.GetAllBooks()
	if err != nil {
		return nil, err
	}

	recommended := make([]entities.Book, 0)
	for _, book := range books {
		if book.HasGenre(genre) && book.Status != entities.StatusCompleted {
			recommended = append(recommended, book)
		}
	}
	entities.SortByPriority(recommended)
	return recommended, nil
}

// ImportBookByISBN builds an unsaved book from the metadata provider's record
// for isbn. The caller decides whether to add it.
func (s *Service) ImportBookByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	if s.metadata == nil {
		return nil, ErrMetadataUnavailable
	}

	md, err := s.metadata.SearchByISBN(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("lookup ISBN %s: %w", isbn, err)
	}

	book := &entities.Book{
		Title:      md.Title,
		Author:     md.Author,
		ISBN:       md.ISBN,
		Status:     entities.StatusActive,
		AddedDate:  s.Today(),
		Priority:   1,
		TotalPages: md.PageCount,
	}
	if book.ISBN == "" {
		book.ISBN = isbn
	}
	if len(md.Subjects) > 0 {
		book.Genre = md.Subjects[0]
	}
	return book, nil
}

func validateBook(book *entities.Book) error {
	if book == nil {
		return newValidationError("book", "book is required")
	}
	if strings.TrimSpace(book.Title) == "" {
		return newValidationError("title", "title is required")
	}
	if strings.TrimSpace(book.Author) == "" {
		return newValidationError("author", "author is required")
	}
	if book.TotalPages < 0 {
		return newValidationError("total_pages", "total pages cannot be negative")
	}
	if book.PagesRead < 0 {
		return newValidationError("pages_read", "pages read cannot be negative")
	}
	if book.PagesRead > book.TotalPages {
		return newValidationError("pages_read", "pages read cannot exceed total pages")
	}
	if !book.Status.IsValid() {
		return newValidationError("status", fmt.Sprintf("unknown status %q", book.Status))
	}
	return nil
}
