package entities

import (
	"cmp"
	"slices"
	"strings"
)

// The sort helpers order a copy in place with a stable sort, so records that
// compare equal keep their storage order.

func SortByTitle(books []Book) {
	slices.SortStableFunc(books, func(a, b Book) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
}

func SortByAuthor(books []Book) {
	slices.SortStableFunc(books, func(a, b Book) int {
		return strings.Compare(strings.ToLower(a.Author), strings.ToLower(b.Author))
	})
}

// SortByDueDate puts books without a due date after every dated book.
func SortByDueDate(books []Book) {
	slices.SortStableFunc(books, func(a, b Book) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	})
}

// SortByPriority orders highest priority first.
func SortByPriority(books []Book) {
	slices.SortStableFunc(books, func(a, b Book) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
}
