// Package books provides the relational catalog.Store backed by gorm.
//
// # Usage
//
//	db, err := database.NewDatabase("./bookshelf.db")
//	repo := books.NewRepository(db.DB)
//	svc := catalog.NewService(repo)
package books

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts the book and sets its generated ID.
func (r *Repository) Add(book *entities.Book) (uint, error) {
	book.ID = 0
	if err := r.db.Create(book).Error; err != nil {
		return 0, err
	}
	return book.ID, nil
}

// Update overwrites every column of the row with the book's ID, zero values included.
func (r *Repository) Update(book *entities.Book) (bool, error) {
	result := r.db.Model(&entities.Book{}).Where("id = ?", book.ID).Select("*").Updates(book)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	book.NormalizeDates()
	return &book, nil
}

// GetAll retrieves all books in ID order.
func (r *Repository) GetAll() ([]entities.Book, error) {
	return r.find(r.db.Order("id ASC"))
}

// Search matches the keyword against title, author, ISBN and genre
// (case-insensitive partial match).
func (r *Repository) Search(keyword string) ([]entities.Book, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	return r.find(r.db.
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\' OR LOWER(isbn) LIKE ? ESCAPE '\' OR LOWER(genre) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern).
		Order("id ASC"))
}

func (r *Repository) FilterByStatus(status entities.Status) ([]entities.Book, error) {
	return r.find(r.db.Where("status = ?", status).Order("id ASC"))
}

func (r *Repository) FilterByGenre(genre string) ([]entities.Book, error) {
	return r.find(r.db.Where("genre <> '' AND LOWER(genre) = LOWER(?)", genre).Order("id ASC"))
}

func (r *Repository) SortByTitle() ([]entities.Book, error) {
	return r.find(r.db.Order("LOWER(title) ASC, id ASC"))
}

func (r *Repository) SortByAuthor() ([]entities.Book, error) {
	return r.find(r.db.Order("LOWER(author) ASC, id ASC"))
}

// SortByDueDate orders by due date with undated books last.
func (r *Repository) SortByDueDate() ([]entities.Book, error) {
	return r.find(r.db.Order("due_date IS NULL, due_date ASC, id ASC"))
}

func (r *Repository) SortByPriority() ([]entities.Book, error) {
	return r.find(r.db.Order("priority DESC, id ASC"))
}

func (r *Repository) UpdateStatus(id uint, status entities.Status) (bool, error) {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetOverdue returns unfinished books due strictly before today.
func (r *Repository) GetOverdue(today time.Time) ([]entities.Book, error) {
	return r.find(r.db.
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", entities.DateOf(today), entities.StatusCompleted).
		Order("id ASC"))
}

func (r *Repository) find(query *gorm.DB) ([]entities.Book, error) {
	var books []entities.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	for i := range books {
		books[i].NormalizeDates()
	}
	return books, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
