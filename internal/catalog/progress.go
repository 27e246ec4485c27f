package catalog

import (
	"fmt"
	"math"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// PagesPerDay is the reading pace assumed for finish-date estimates.
const PagesPerDay = 10

// ReadingProgress returns the share of pages read as a percentage, or 0 for a
// book with no pages.
func ReadingProgress(book entities.Book) float64 {
	if book.TotalPages <= 0 {
		return 0
	}
	return float64(book.PagesRead) / float64(book.TotalPages) * 100
}

// EstimatedFinishDate projects when the book will be finished at PagesPerDay.
// A finished book yields today.
func (s *Service) EstimatedFinishDate(book entities.Book) time.Time {
	today := s.Today()
	if book.PagesRead >= book.TotalPages {
		return today
	}
	remaining := book.TotalPages - book.PagesRead
	days := int(math.Ceil(float64(remaining) / PagesPerDay))
	return today.AddDate(0, 0, days)
}

// Progress bundles the derived, never stored, metrics of one book.
type Progress struct {
	BookID              uint      `json:"book_id"`
	Percent             float64   `json:"percent"`
	PagesRemaining      int       `json:"pages_remaining"`
	EstimatedFinishDate time.Time `json:"estimated_finish_date"`
	DaysUntilDue        *int      `json:"days_until_due,omitempty"`
	Overdue             bool      `json:"overdue"`
}

func (s *Service) Progress(book entities.Book) Progress {
	today := s.Today()
	p := Progress{
		BookID:              book.ID,
		Percent:             ReadingProgress(book),
		PagesRemaining:      max(book.TotalPages-book.PagesRead, 0),
		EstimatedFinishDate: s.EstimatedFinishDate(book),
		Overdue:             book.IsOverdueOn(today),
	}
	if book.DueDate != nil {
		days := entities.DaysBetween(today, *book.DueDate)
		p.DaysUntilDue = &days
	}
	return p
}

type AnalysisKind string

const (
	AnalysisInsufficientData AnalysisKind = "insufficient_data"
	AnalysisAddedToday       AnalysisKind = "added_today"
	AnalysisNoProgress       AnalysisKind = "no_progress"
	AnalysisFinished         AnalysisKind = "finished"
	AnalysisEstimate         AnalysisKind = "estimate"
)

// ReadingSpeed is the outcome of GetReadingSpeedAnalysis. PagesPerDay and
// DaysRemaining are only meaningful for AnalysisEstimate and AnalysisFinished.
type ReadingSpeed struct {
	Kind          AnalysisKind `json:"kind"`
	DaysReading   int          `json:"days_reading"`
	PagesPerDay   float64      `json:"pages_per_day"`
	DaysRemaining int          `json:"days_remaining"`
	Summary       string       `json:"summary"`
}

// GetReadingSpeedAnalysis derives the reading pace since the book was added
// and the days left at that pace. A missing book, a missing or future added
// date, a book added today, a book with no pages read and a finished book are
// reported as distinct kinds.
func (s *Service) GetReadingSpeedAnalysis(id uint) (ReadingSpeed, error) {
	book, err := s.GetBookByID(id)
	if err != nil {
		return ReadingSpeed{}, err
	}
	if book == nil || book.AddedDate.IsZero() {
		return ReadingSpeed{Kind: AnalysisInsufficientData, Summary: "Insufficient data"}, nil
	}

	daysReading := entities.DaysBetween(book.AddedDate, s.Today())
	switch {
	case daysReading < 0:
		return ReadingSpeed{Kind: AnalysisInsufficientData, Summary: "Insufficient data"}, nil
	case daysReading == 0:
		return ReadingSpeed{Kind: AnalysisAddedToday, Summary: "Book added today"}, nil
	case book.PagesRead <= 0:
		return ReadingSpeed{
			Kind:        AnalysisNoProgress,
			DaysReading: daysReading,
			Summary:     fmt.Sprintf("No progress yet after %d days", daysReading),
		}, nil
	}

	rate := float64(book.PagesRead) / float64(daysReading)
	remaining := max(book.TotalPages-book.PagesRead, 0)
	if remaining == 0 {
		return ReadingSpeed{
			Kind:        AnalysisFinished,
			DaysReading: daysReading,
			PagesPerDay: rate,
			Summary:     fmt.Sprintf("Speed: %.1f pages/day. Finished", rate),
		}, nil
	}
	daysRemaining := int(math.Ceil(float64(remaining) / rate))

	return ReadingSpeed{
		Kind:          AnalysisEstimate,
		DaysReading:   daysReading,
		PagesPerDay:   rate,
		DaysRemaining: daysRemaining,
		Summary:       fmt.Sprintf("Speed: %.1f pages/day. Finishing in %d days", rate, daysRemaining),
	}, nil
}
