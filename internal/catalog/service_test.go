package catalog_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/storage/memory"
)

var today = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

func newTestService(t *testing.T) (*catalog.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := catalog.NewService(store)
	svc.SetClock(func() time.Time { return today.Add(15 * time.Hour) })
	return svc, store
}

func addBook(t *testing.T, svc *catalog.Service, book entities.Book) uint {
	t.Helper()
	id, err := svc.AddBook(&book)
	require.NoError(t, err)
	return id
}

func crimeAndPunishment() entities.Book {
	return entities.Book{
		Title:      "Crime and Punishment",
		Author:     "Fyodor Dostoevsky",
		ISBN:       "978-5-17-090507-1",
		Genre:      "Classics",
		Status:     entities.StatusInProgress,
		DueDate:    day(30),
		Priority:   8,
		TotalPages: 672,
		PagesRead:  150,
	}
}

func ids(books []entities.Book) []uint {
	out := make([]uint, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

// failingStore wraps a memory store and rejects writes for selected IDs.
type failingStore struct {
	*memory.Store
	failUpdates map[uint]bool
	failReads   bool
}

func (f *failingStore) Update(book *entities.Book) (bool, error) {
	if f.failUpdates[book.ID] {
		return false, errors.New("disk full")
	}
	return f.Store.Update(book)
}

func (f *failingStore) GetAll() ([]entities.Book, error) {
	if f.failReads {
		return nil, errors.New("connection refused")
	}
	return f.Store.GetAll()
}

type fakeProvider struct {
	md  *metadata.BookMetadata
	err error
}

func (f fakeProvider) SearchByISBN(_ context.Context, _ string) (*metadata.BookMetadata, error) {
	return f.md, f.err
}

func TestService_AddBook(t *testing.T) {
	svc, _ := newTestService(t)

	book := crimeAndPunishment()
	id, err := svc.AddBook(&book)
	require.NoError(t, err)
	assert.Equal(t, id, book.ID)
	assert.Equal(t, today, book.AddedDate)

	got, err := svc.GetBookByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, book, *got)
}

func TestService_AddBook_Defaults(t *testing.T) {
	svc, _ := newTestService(t)

	id := addBook(t, svc, entities.Book{Title: "Dune", Author: "Frank Herbert"})

	got, err := svc.GetBookByID(id)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusActive, got.Status)
	assert.Equal(t, today, got.AddedDate)
}

func TestService_AddBook_Validation(t *testing.T) {
	tests := []struct {
		name  string
		book  entities.Book
		field string
	}{
		{"blank title", entities.Book{Title: "  ", Author: "a"}, "title"},
		{"blank author", entities.Book{Title: "t"}, "author"},
		{"negative total", entities.Book{Title: "t", Author: "a", TotalPages: -1}, "total_pages"},
		{"negative read", entities.Book{Title: "t", Author: "a", TotalPages: 5, PagesRead: -1}, "pages_read"},
		{"read exceeds total", entities.Book{Title: "t", Author: "a", TotalPages: 100, PagesRead: 150}, "pages_read"},
		{"unknown status", entities.Book{Title: "t", Author: "a", Status: "READING"}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)

			book := tt.book
			_, err := svc.AddBook(&book)

			var verr *catalog.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			all, err := store.GetAll()
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestService_AddBook_Nil(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddBook(nil)

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "book", verr.Field)
}

func TestService_UpdateBook(t *testing.T) {
	svc, _ := newTestService(t)
	id := addBook(t, svc, crimeAndPunishment())

	changed := crimeAndPunishment()
	changed.ID = id
	changed.PagesRead = 300
	changed.AddedDate = today.AddDate(-1, 0, 0)

	ok, err := svc.UpdateBook(&changed)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.GetBookByID(id)
	require.NoError(t, err)
	assert.Equal(t, 300, got.PagesRead)
	assert.Equal(t, today, got.AddedDate, "added date is kept from the stored record")
}

func TestService_UpdateBook_InvalidLeavesStoreUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	id := addBook(t, svc, entities.Book{Title: "Short", Author: "a", TotalPages: 100, PagesRead: 10})

	bad := entities.Book{ID: id, Title: "Short", Author: "a", Status: entities.StatusActive, TotalPages: 100, PagesRead: 150}
	ok, err := svc.UpdateBook(&bad)
	assert.False(t, ok)

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)

	got, err := svc.GetBookByID(id)
	require.NoError(t, err)
	assert.Equal(t, 10, got.PagesRead)
}

func TestService_UpdateBook_Missing(t *testing.T) {
	svc, _ := newTestService(t)

	book := crimeAndPunishment()
	book.ID = 77
	ok, err := svc.UpdateBook(&book)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_DeleteAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	id := addBook(t, svc, crimeAndPunishment())

	ok, err := svc.DeleteBook(id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.GetBookByID(id)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = svc.DeleteBook(id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_StorageErrorsAreWrapped(t *testing.T) {
	store := &failingStore{Store: memory.NewStore(), failReads: true}
	svc := catalog.NewService(store)

	_, err := svc.GetAllBooks()
	assert.ErrorContains(t, err, "connection refused")

	_, err = svc.CheckAndUpdateOverdueBooks()
	assert.ErrorContains(t, err, "connection refused")

	_, err = svc.GetRecommendedBooks("Classics")
	assert.Error(t, err)
}

func TestService_UpdateBookStatus(t *testing.T) {
	t.Run("completed fills pages", func(t *testing.T) {
		svc, _ := newTestService(t)
		id := addBook(t, svc, crimeAndPunishment())

		ok, err := svc.UpdateBookStatus(id, entities.StatusCompleted)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := svc.GetBookByID(id)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusCompleted, got.Status)
		assert.Equal(t, 672, got.PagesRead)
	})

	t.Run("in progress marks first page of an unread book", func(t *testing.T) {
		svc, _ := newTestService(t)
		id := addBook(t, svc, entities.Book{Title: "Unread", Author: "a", TotalPages: 200})

		ok, err := svc.UpdateBookStatus(id, entities.StatusInProgress)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := svc.GetBookByID(id)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusInProgress, got.Status)
		assert.Equal(t, 1, got.PagesRead)
	})

	t.Run("in progress keeps existing pages", func(t *testing.T) {
		svc, _ := newTestService(t)
		id := addBook(t, svc, crimeAndPunishment())

		_, err := svc.UpdateBookStatus(id, entities.StatusInProgress)
		require.NoError(t, err)

		got, err := svc.GetBookByID(id)
		require.NoError(t, err)
		assert.Equal(t, 150, got.PagesRead)
	})

	t.Run("in progress on a book without pages", func(t *testing.T) {
		svc, _ := newTestService(t)
		id := addBook(t, svc, entities.Book{Title: "Pamphlet", Author: "a"})

		ok, err := svc.UpdateBookStatus(id, entities.StatusInProgress)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := svc.GetBookByID(id)
		require.NoError(t, err)
		assert.Zero(t, got.PagesRead)
	})

	t.Run("any transition is allowed", func(t *testing.T) {
		svc, _ := newTestService(t)
		id := addBook(t, svc, entities.Book{Title: "Done", Author: "a", Status: entities.StatusCompleted, TotalPages: 10, PagesRead: 10})

		ok, err := svc.UpdateBookStatus(id, entities.StatusActive)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing book", func(t *testing.T) {
		svc, _ := newTestService(t)
		ok, err := svc.UpdateBookStatus(5, entities.StatusCompleted)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_CheckAndUpdateOverdueBooks(t *testing.T) {
	svc, _ := newTestService(t)
	late := addBook(t, svc, entities.Book{Title: "Late", Author: "a", DueDate: day(-1)})
	dueToday := addBook(t, svc, entities.Book{Title: "Today", Author: "a", DueDate: day(0)})
	done := addBook(t, svc, entities.Book{Title: "Done", Author: "a", DueDate: day(-5), Status: entities.StatusCompleted})
	undated := addBook(t, svc, entities.Book{Title: "Undated", Author: "a"})

	result, err := svc.CheckAndUpdateOverdueBooks()
	require.NoError(t, err)
	assert.Equal(t, catalog.SweepResult{Scanned: 4, Updated: 1}, result)

	expected := map[uint]entities.Status{
		late:     entities.StatusOverdue,
		dueToday: entities.StatusActive,
		done:     entities.StatusCompleted,
		undated:  entities.StatusActive,
	}
	for id, status := range expected {
		got, err := svc.GetBookByID(id)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status, got.Title)
	}

	before, err := svc.GetAllBooks()
	require.NoError(t, err)

	again, err := svc.CheckAndUpdateOverdueBooks()
	require.NoError(t, err)
	assert.Zero(t, again.Updated)

	after, err := svc.GetAllBooks()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_CheckAndUpdateOverdueBooks_ContinuesAfterFailure(t *testing.T) {
	store := &failingStore{Store: memory.NewStore(), failUpdates: map[uint]bool{}}
	svc := catalog.NewService(store)
	svc.SetClock(func() time.Time { return today })

	first := addBook(t, svc, entities.Book{Title: "First", Author: "a", DueDate: day(-2)})
	second := addBook(t, svc, entities.Book{Title: "Second", Author: "a", DueDate: day(-3)})
	store.failUpdates[first] = true

	result, err := svc.CheckAndUpdateOverdueBooks()
	require.NoError(t, err)
	assert.Equal(t, catalog.SweepResult{Scanned: 2, Updated: 1, Failed: 1}, result)

	got, err := svc.GetBookByID(second)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOverdue, got.Status)
}

func TestService_SearchBooks(t *testing.T) {
	svc, _ := newTestService(t)
	master := addBook(t, svc, entities.Book{Title: "The Master and Margarita", Author: "Mikhail Bulgakov"})
	addBook(t, svc, crimeAndPunishment())

	all, err := svc.GetAllBooks()
	require.NoError(t, err)

	for _, blank := range []string{"", "   "} {
		got, err := svc.SearchBooks(blank)
		require.NoError(t, err)
		assert.Equal(t, all, got)
	}

	got, err := svc.SearchBooks("BULGAKOV")
	require.NoError(t, err)
	assert.Equal(t, []uint{master}, ids(got))
}

func TestService_Filters(t *testing.T) {
	svc, _ := newTestService(t)
	classic := addBook(t, svc, crimeAndPunishment())
	addBook(t, svc, entities.Book{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"})

	got, err := svc.FilterByStatus(entities.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, []uint{classic}, ids(got))

	got, err = svc.FilterByGenre("classics")
	require.NoError(t, err)
	assert.Equal(t, []uint{classic}, ids(got))
}

func TestService_GetUpcomingDueBooks(t *testing.T) {
	svc, _ := newTestService(t)
	addBook(t, svc, entities.Book{Title: "Yesterday", Author: "a", DueDate: day(-1)})
	dueToday := addBook(t, svc, entities.Book{Title: "Today", Author: "a", DueDate: day(0)})
	soon := addBook(t, svc, entities.Book{Title: "Soon", Author: "a", DueDate: day(3)})
	edge := addBook(t, svc, entities.Book{Title: "Edge", Author: "a", DueDate: day(7)})
	addBook(t, svc, entities.Book{Title: "Later", Author: "a", DueDate: day(10)})
	addBook(t, svc, entities.Book{Title: "Undated", Author: "a"})

	got, err := svc.GetUpcomingDueBooks(7)
	require.NoError(t, err)
	assert.Equal(t, []uint{dueToday, soon, edge}, ids(got))
}

func TestService_GetOverdueBooks(t *testing.T) {
	svc, _ := newTestService(t)
	late := addBook(t, svc, entities.Book{Title: "Late", Author: "a", DueDate: day(-1)})
	addBook(t, svc, entities.Book{Title: "Done", Author: "a", DueDate: day(-1), Status: entities.StatusCompleted})

	got, err := svc.GetOverdueBooks()
	require.NoError(t, err)
	assert.Equal(t, []uint{late}, ids(got))
}

func TestService_Sorts(t *testing.T) {
	svc, _ := newTestService(t)
	undated := addBook(t, svc, entities.Book{Title: "b", Author: "Z", Priority: 1})
	later := addBook(t, svc, entities.Book{Title: "C", Author: "x", Priority: 5, DueDate: day(9)})
	sooner := addBook(t, svc, entities.Book{Title: "a", Author: "Y", Priority: 5, DueDate: day(2)})

	got, err := svc.SortByDueDate()
	require.NoError(t, err)
	assert.Equal(t, []uint{sooner, later, undated}, ids(got))

	got, err = svc.SortByTitle()
	require.NoError(t, err)
	assert.Equal(t, []uint{sooner, undated, later}, ids(got))

	got, err = svc.SortByAuthor()
	require.NoError(t, err)
	assert.Equal(t, []uint{later, sooner, undated}, ids(got))

	got, err = svc.SortByPriority()
	require.NoError(t, err)
	assert.Equal(t, []uint{later, sooner, undated}, ids(got))
}

func TestService_GetRecommendedBooks(t *testing.T) {
	svc, _ := newTestService(t)
	seven := addBook(t, svc, entities.Book{Title: "Seven", Author: "a", Genre: "Classics", Priority: 7})
	nine := addBook(t, svc, entities.Book{Title: "Nine", Author: "a", Genre: "classics", Priority: 9})
	addBook(t, svc, entities.Book{Title: "Finished", Author: "a", Genre: "Classics", Priority: 10, Status: entities.StatusCompleted})
	addBook(t, svc, entities.Book{Title: "Other", Author: "a", Genre: "Poetry", Priority: 10})

	got, err := svc.GetRecommendedBooks("CLASSICS")
	require.NoError(t, err)
	assert.Equal(t, []uint{nine, seven}, ids(got))

	got, err = svc.GetRecommendedBooks("Horror")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_GetRecommendedBooks_ExtremePriorities(t *testing.T) {
	svc, _ := newTestService(t)
	low := addBook(t, svc, entities.Book{Title: "Low", Author: "a", Genre: "Classics", Priority: math.MinInt})
	high := addBook(t, svc, entities.Book{Title: "High", Author: "a", Genre: "Classics", Priority: math.MaxInt})

	got, err := svc.GetRecommendedBooks("Classics")
	require.NoError(t, err)
	assert.Equal(t, []uint{high, low}, ids(got))

	got, err = svc.SortByPriority()
	require.NoError(t, err)
	assert.Equal(t, []uint{high, low}, ids(got))
}

func TestService_ImportBookByISBN(t *testing.T) {
	t.Run("without provider", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ImportBookByISBN(context.Background(), "9785170905071")
		assert.ErrorIs(t, err, catalog.ErrMetadataUnavailable)
	})

	t.Run("builds a draft", func(t *testing.T) {
		svc, store := newTestService(t)
		svc.SetMetadataProvider(fakeProvider{md: &metadata.BookMetadata{
			Title:     "Crime and Punishment",
			Author:    "Fyodor Dostoevsky",
			PageCount: 672,
			Subjects:  []string{"Classics", "Russian literature"},
		}})

		book, err := svc.ImportBookByISBN(context.Background(), "9785170905071")
		require.NoError(t, err)
		assert.Equal(t, entities.Book{
			Title:      "Crime and Punishment",
			Author:     "Fyodor Dostoevsky",
			ISBN:       "9785170905071",
			Genre:      "Classics",
			Status:     entities.StatusActive,
			AddedDate:  today,
			Priority:   1,
			TotalPages: 672,
		}, *book)

		all, err := store.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all, "import does not persist")
	})

	t.Run("provider error", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.SetMetadataProvider(fakeProvider{err: metadata.ErrISBNNotFound})

		_, err := svc.ImportBookByISBN(context.Background(), "0000000000")
		assert.ErrorIs(t, err, metadata.ErrISBNNotFound)
	})
}
