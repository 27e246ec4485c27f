package entities

import (
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for persisted dates.
const DateLayout = "2006-01-02"

type Book struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Author     string     `gorm:"size:255;not null" json:"author"`
	ISBN       string     `gorm:"size:20" json:"isbn,omitempty"`
	Genre      string     `gorm:"size:100;index" json:"genre,omitempty"`
	Status     Status     `gorm:"size:20;not null;index" json:"status"`
	AddedDate  time.Time  `gorm:"type:date;not null" json:"added_date"`
	DueDate    *time.Time `gorm:"type:date" json:"due_date,omitempty"`
	Priority   int        `json:"priority"`
	TotalPages int        `json:"total_pages"`
	PagesRead  int        `json:"pages_read"`
}

func (Book) TableName() string {
	return "books"
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((DateOf(b).Unix() - DateOf(a).Unix()) / secondsPerDay)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// NormalizeDates strips clock and zone information from the book's dates so
// that values read back from any backend compare equal.
func (b *Book) NormalizeDates() {
	if !b.AddedDate.IsZero() {
		b.AddedDate = DateOf(b.AddedDate)
	}
	if b.DueDate != nil {
		due := DateOf(*b.DueDate)
		b.DueDate = &due
	}
}

// HasDueDate reports whether the book has a deadline.
func (b *Book) HasDueDate() bool {
	return b.DueDate != nil
}

// IsOverdueOn reports whether the book is past due on the given day:
// due strictly before today and not completed.
func (b *Book) IsOverdueOn(today time.Time) bool {
	if b.DueDate == nil || b.Status == StatusCompleted {
		return false
	}
	return DateOf(*b.DueDate).Before(DateOf(today))
}

// MatchesKeyword reports whether the lower-cased keyword occurs in the title,
// author, ISBN or genre, ignoring case.
func (b *Book) MatchesKeyword(keyword string) bool {
	keyword = strings.ToLower(keyword)
	for _, field := range []string{b.Title, b.Author, b.ISBN, b.Genre} {
		if field != "" && strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}

// HasGenre reports a case-insensitive exact genre match.
func (b *Book) HasGenre(genre string) bool {
	return b.Genre != "" && strings.EqualFold(b.Genre, genre)
}

// Clone returns a deep copy, including the due date pointer.
func (b Book) Clone() Book {
	if b.DueDate != nil {
		due := *b.DueDate
		b.DueDate = &due
	}
	return b
}
