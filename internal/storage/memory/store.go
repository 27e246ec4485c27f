// Package memory provides a process-local catalog.Store kept in insertion order.
// Nothing survives a restart; it backs tests and the "memory" backend.
package memory

import (
	"sync"
	"time"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Store keeps books in a slice guarded by a mutex. Values are copied on the
// way in and out so callers never share state with the store.
type Store struct {
	mu     sync.RWMutex
	books  []entities.Book
	nextID uint
}

// NewStore creates an empty store whose first ID is 1.
func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Add(book *entities.Book) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = s.nextID
	s.nextID++
	s.books = append(s.books, book.Clone())
	return book.ID, nil
}

func (s *Store) Update(book *entities.Book) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(book.ID)
	if i < 0 {
		return false, nil
	}
	s.books[i] = book.Clone()
	return true, nil
}

func (s *Store) Delete(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	return true, nil
}

func (s *Store) GetByID(id uint) (*entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, catalog.ErrNotFound
	}
	book := s.books[i].Clone()
	return &book, nil
}

func (s *Store) GetAll() ([]entities.Book, error) {
	return s.filter(func(*entities.Book) bool { return true }), nil
}

func (s *Store) Search(keyword string) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.MatchesKeyword(keyword) }), nil
}

func (s *Store) FilterByStatus(status entities.Status) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.Status == status }), nil
}

func (s *Store) FilterByGenre(genre string) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.HasGenre(genre) }), nil
}

func (s *Store) SortByTitle() ([]entities.Book, error) {
	books, _ := s.GetAll()
	entities.SortByTitle(books)
	return books, nil
}

func (s *Store) SortByAuthor() ([]entities.Book, error) {
	books, _ := s.GetAll()
	entities.SortByAuthor(books)
	return books, nil
}

func (s *Store) SortByDueDate() ([]entities.Book, error) {
	books, _ := s.GetAll()
	entities.SortByDueDate(books)
	return books, nil
}

func (s *Store) SortByPriority() ([]entities.Book, error) {
	books, _ := s.GetAll()
	entities.SortByPriority(books)
	return books, nil
}

func (s *Store) UpdateStatus(id uint, status entities.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.books[i].Status = status
	return true, nil
}

func (s *Store) GetOverdue(today time.Time) ([]entities.Book, error) {
	return s.filter(func(b *entities.Book) bool { return b.IsOverdueOn(today) }), nil
}

func (s *Store) filter(keep func(*entities.Book) bool) []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Book, 0, len(s.books))
	for i := range s.books {
		if keep(&s.books[i]) {
			result = append(result, s.books[i].Clone())
		}
	}
	return result
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id uint) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}
