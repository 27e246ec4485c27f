// Package csvfile implements catalog.Store on a single CSV file.
//
// The file starts with a header row followed by one row per book:
//
//	id,title,author,isbn,genre,status,added_date,due_date,priority,total_pages,pages_read
//
// Dates use YYYY-MM-DD and an empty cell means an absent optional field.
// Every operation reads the whole file; writes go to a temporary file that
// replaces the original, so readers never observe a half-written catalog.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Header is the column layout of the catalog file.
var Header = []string{
	"id", "title", "author", "isbn", "genre", "status",
	"added_date", "due_date", "priority", "total_pages", "pages_read",
}

// ErrMalformedRow is wrapped by read errors caused by bad file content.
var ErrMalformedRow = errors.New("malformed catalog row")

type Store struct {
	path   string
	mu     sync.Mutex
	nextID uint
}

// NewStore opens the catalog file at path, creating it with a header row
// when it does not exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create catalog directory: %w", err)
			}
		}
		if err := s.writeAll(nil); err != nil {
			return nil, err
		}
		log.Info("created catalog file", "path", path)
	} else if err != nil {
		return nil, fmt.Errorf("stat catalog file: %w", err)
	}

	books, err := s.readAll()
	if err != nil {
		return nil, err
	}
	s.nextID = nextID(books, 1)
	return s, nil
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Add(book *entities.Book) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.readAll()
	if err != nil {
		return 0, err
	}

	id := nextID(books, s.nextID)
	stored := book.Clone()
	stored.ID = id
	if err := s.writeAll(append(books, stored)); err != nil {
		return 0, err
	}

	s.nextID = id + 1
	book.ID = id
	return id, nil
}

func (s *Store) Update(book *entities.Book) (bool, error) {
	return s.modify(book.ID, func(stored *entities.Book) {
		*stored = book.Clone()
	})
}

func (s *Store) Delete(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.readAll()
	if err != nil {
		return false, err
	}
	for i := range books {
		if books[i].ID == id {
			return true, s.writeAll(append(books[:i], books[i+1:]...))
		}
	}
	return false, nil
}

func (s *Store) GetByID(id uint) (*entities.Book, error) {
	books, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *Store) GetAll() ([]entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *Store) Search(keyword string) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.MatchesKeyword(keyword) })
}

func (s *Store) FilterByStatus(status entities.Status) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.Status == status })
}

func (s *Store) FilterByGenre(genre string) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.HasGenre(genre) })
}

func (s *Store) SortByTitle() ([]entities.Book, error) {
	return s.sorted(entities.SortByTitle)
}

func (s *Store) SortByAuthor() ([]entities.Book, error) {
	return s.sorted(entities.SortByAuthor)
}

func (s *Store) SortByDueDate() ([]entities.Book, error) {
	return s.sorted(entities.SortByDueDate)
}

func (s *Store) SortByPriority() ([]entities.Book, error) {
	return s.sorted(entities.SortByPriority)
}

func (s *Store) UpdateStatus(id uint, status entities.Status) (bool, error) {
	return s.modify(id, func(stored *entities.Book) {
		stored.Status = status
	})
}

func (s *Store) GetOverdue(today time.Time) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.IsOverdueOn(today) })
}

func (s *Store) modify(id uint, apply func(*entities.Book)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.readAll()
	if err != nil {
		return false, err
	}
	for i := range books {
		if books[i].ID == id {
			apply(&books[i])
			books[i].ID = id
			return true, s.writeAll(books)
		}
	}
	return false, nil
}

func (s *Store) filter(keep func(*entities.Book) bool) ([]entities.Book, error) {
	books, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	result := make([]entities.Book, 0, len(books))
	for i := range books {
		if keep(&books[i]) {
			result = append(result, books[i])
		}
	}
	return result, nil
}

func (s *Store) sorted(order func([]entities.Book)) ([]entities.Book, error) {
	books, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	order(books)
	return books, nil
}

// readAll must be called with the lock held.
func (s *Store) readAll() ([]entities.Book, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []entities.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformedRow, header)
	}

	books := make([]entities.Book, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog line %d: %w", line, err)
		}
		book, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		books = append(books, book)
	}
	return books, nil
}

// writeAll must be called with the lock held.
func (s *Store) writeAll(books []entities.Book) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".catalog-*.csv")
	if err != nil {
		return fmt.Errorf("create temp catalog file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog header: %w", err)
	}
	for i := range books {
		if err := writer.Write(encodeRow(&books[i])); err != nil {
			tmp.Close()
			return fmt.Errorf("write book %d: %w", books[i].ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp catalog file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}

func encodeRow(b *entities.Book) []string {
	due := ""
	if b.DueDate != nil {
		due = b.DueDate.Format(entities.DateLayout)
	}
	added := ""
	if !b.AddedDate.IsZero() {
		added = b.AddedDate.Format(entities.DateLayout)
	}
	return []string{
		strconv.FormatUint(uint64(b.ID), 10),
		b.Title,
		b.Author,
		b.ISBN,
		b.Genre,
		string(b.Status),
		added,
		due,
		strconv.Itoa(b.Priority),
		strconv.Itoa(b.TotalPages),
		strconv.Itoa(b.PagesRead),
	}
}

func decodeRow(row []string) (entities.Book, error) {
	var book entities.Book
	if len(row) != len(Header) {
		return book, fmt.Errorf("%w: expected %d columns, got %d", ErrMalformedRow, len(Header), len(row))
	}

	id, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return book, fmt.Errorf("%w: id %q", ErrMalformedRow, row[0])
	}
	status := entities.Status(row[5])
	if !status.IsValid() {
		return book, fmt.Errorf("%w: status %q", ErrMalformedRow, row[5])
	}

	book = entities.Book{
		ID:     uint(id),
		Title:  row[1],
		Author: row[2],
		ISBN:   row[3],
		Genre:  row[4],
		Status: status,
	}

	if row[6] != "" {
		if book.AddedDate, err = entities.ParseDate(row[6]); err != nil {
			return book, fmt.Errorf("%w: added_date %q", ErrMalformedRow, row[6])
		}
	}
	if row[7] != "" {
		due, err := entities.ParseDate(row[7])
		if err != nil {
			return book, fmt.Errorf("%w: due_date %q", ErrMalformedRow, row[7])
		}
		book.DueDate = &due
	}

	ints := []*int{&book.Priority, &book.TotalPages, &book.PagesRead}
	for i, target := range ints {
		cell := row[8+i]
		v, err := strconv.Atoi(cell)
		if err != nil {
			return book, fmt.Errorf("%w: %s %q", ErrMalformedRow, Header[8+i], cell)
		}
		*target = v
	}
	return book, nil
}

func nextID(books []entities.Book, floor uint) uint {
	next := floor
	for i := range books {
		if books[i].ID >= next {
			next = books[i].ID + 1
		}
	}
	return next
}
