// Package storetest holds the behaviour every catalog.Store must share. Each
// backend's tests call Run with a constructor for a fresh, empty store.
package storetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Today is the fixed reference date used by the contract.
var Today = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func daysFromToday(n int) *time.Time {
	d := Today.AddDate(0, 0, n)
	return &d
}

// Sample returns a fully populated book for round-trip checks.
func Sample() entities.Book {
	return entities.Book{
		Title:      "Crime and Punishment",
		Author:     "Fyodor Dostoevsky",
		ISBN:       "978-5-17-090507-1",
		Genre:      "Classics",
		Status:     entities.StatusInProgress,
		AddedDate:  Today.AddDate(0, 0, -10),
		DueDate:    daysFromToday(30),
		Priority:   8,
		TotalPages: 672,
		PagesRead:  150,
	}
}

func add(t *testing.T, store catalog.Store, book entities.Book) uint {
	t.Helper()
	if book.AddedDate.IsZero() {
		book.AddedDate = Today
	}
	if book.Status == "" {
		book.Status = entities.StatusActive
	}
	id, err := store.Add(&book)
	require.NoError(t, err)
	require.NotZero(t, id)
	return id
}

func ids(books []entities.Book) []uint {
	out := make([]uint, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

// Run exercises the full Store contract.
func Run(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	t.Run("add assigns unique ids and round-trips", func(t *testing.T) {
		store := newStore(t)

		book := Sample()
		id, err := store.Add(&book)
		require.NoError(t, err)
		assert.Equal(t, id, book.ID)

		other := Sample()
		other.DueDate = nil
		other.ISBN = ""
		otherID, err := store.Add(&other)
		require.NoError(t, err)
		assert.NotEqual(t, id, otherID)

		got, err := store.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, book, *got)

		got, err = store.GetByID(otherID)
		require.NoError(t, err)
		assert.Nil(t, got.DueDate)
		assert.Empty(t, got.ISBN)
	})

	t.Run("get missing id returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetByID(999)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("update replaces record", func(t *testing.T) {
		store := newStore(t)
		id := add(t, store, Sample())

		updated := Sample()
		updated.ID = id
		updated.Title = "Crime & Punishment"
		updated.Priority = 0
		updated.PagesRead = 0
		updated.DueDate = nil

		ok, err := store.Update(&updated)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := store.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, updated, *got)
	})

	t.Run("update missing id returns false", func(t *testing.T) {
		store := newStore(t)
		book := Sample()
		book.ID = 42
		ok, err := store.Update(&book)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		id := add(t, store, Sample())

		ok, err := store.Delete(id)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = store.GetByID(id)
		assert.ErrorIs(t, err, catalog.ErrNotFound)

		ok, err = store.Delete(id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("get all keeps insertion order", func(t *testing.T) {
		store := newStore(t)
		first := add(t, store, entities.Book{Title: "B", Author: "x"})
		second := add(t, store, entities.Book{Title: "A", Author: "y"})

		books, err := store.GetAll()
		require.NoError(t, err)
		assert.Equal(t, []uint{first, second}, ids(books))
	})

	t.Run("search is case-insensitive over four fields", func(t *testing.T) {
		store := newStore(t)
		byTitle := add(t, store, entities.Book{Title: "The Master and Margarita", Author: "Bulgakov"})
		byAuthor := add(t, store, entities.Book{Title: "Dead Souls", Author: "Nikolai Gogol"})
		byISBN := add(t, store, entities.Book{Title: "Oblomov", Author: "Goncharov", ISBN: "978-0-14-044987-9"})
		byGenre := add(t, store, entities.Book{Title: "Dune", Author: "Herbert", Genre: "Science Fiction"})

		for keyword, want := range map[string][]uint{
			"master":  {byTitle},
			"GOGOL":   {byAuthor},
			"044987":  {byISBN},
			"fiction": {byGenre},
			"zzz":     {},
		} {
			books, err := store.Search(keyword)
			require.NoError(t, err)
			assert.Equal(t, want, ids(books), keyword)
		}
	})

	t.Run("filter by status and genre", func(t *testing.T) {
		store := newStore(t)
		classic := add(t, store, entities.Book{Title: "A", Author: "a", Genre: "Classics", Status: entities.StatusCompleted})
		add(t, store, entities.Book{Title: "B", Author: "b", Genre: "Classic", Status: entities.StatusActive})
		add(t, store, entities.Book{Title: "C", Author: "c", Status: entities.StatusActive})

		books, err := store.FilterByStatus(entities.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, []uint{classic}, ids(books))

		books, err = store.FilterByGenre("CLASSICS")
		require.NoError(t, err)
		assert.Equal(t, []uint{classic}, ids(books))
	})

	t.Run("sort orders", func(t *testing.T) {
		store := newStore(t)
		a := add(t, store, entities.Book{Title: "charlie", Author: "Zed", Priority: 3, DueDate: daysFromToday(5)})
		b := add(t, store, entities.Book{Title: "Alpha", Author: "yan", Priority: 9})
		c := add(t, store, entities.Book{Title: "bravo", Author: "Xu", Priority: 3, DueDate: daysFromToday(-400)})

		books, err := store.SortByTitle()
		require.NoError(t, err)
		assert.Equal(t, []uint{b, c, a}, ids(books))

		books, err = store.SortByAuthor()
		require.NoError(t, err)
		assert.Equal(t, []uint{c, b, a}, ids(books))

		books, err = store.SortByDueDate()
		require.NoError(t, err)
		assert.Equal(t, []uint{c, a, b}, ids(books))

		books, err = store.SortByPriority()
		require.NoError(t, err)
		assert.Equal(t, []uint{b, a, c}, ids(books))
	})

	t.Run("update status", func(t *testing.T) {
		store := newStore(t)
		id := add(t, store, Sample())

		ok, err := store.UpdateStatus(id, entities.StatusInactive)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := store.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusInactive, got.Status)
		assert.Equal(t, 150, got.PagesRead)

		ok, err = store.UpdateStatus(id+100, entities.StatusInactive)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("overdue predicate", func(t *testing.T) {
		store := newStore(t)
		late := add(t, store, entities.Book{Title: "late", Author: "a", DueDate: daysFromToday(-1)})
		add(t, store, entities.Book{Title: "due today", Author: "a", DueDate: daysFromToday(0)})
		add(t, store, entities.Book{Title: "done", Author: "a", DueDate: daysFromToday(-3), Status: entities.StatusCompleted})
		add(t, store, entities.Book{Title: "undated", Author: "a"})
		marked := add(t, store, entities.Book{Title: "marked", Author: "a", DueDate: daysFromToday(-9), Status: entities.StatusOverdue})

		books, err := store.GetOverdue(Today)
		require.NoError(t, err)
		assert.Equal(t, []uint{late, marked}, ids(books))
	})
}
