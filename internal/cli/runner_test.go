package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/storage/csvfile"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Storage.Backend = config.BackendCSV
	cfg.Storage.CSVPath = filepath.Join(t.TempDir(), "books.csv")
	cfg.OpenLibrary.BaseURL = ""
	cfg.Catalog.UpcomingDays = 7
	return cfg
}

func seedCSV(t *testing.T, path string, books ...entities.Book) {
	t.Helper()
	store, err := csvfile.NewStore(path)
	require.NoError(t, err)
	today := entities.DateOf(time.Now())
	for _, b := range books {
		if b.Status == "" {
			b.Status = entities.StatusActive
		}
		b.AddedDate = today
		_, err := store.Add(&b)
		require.NoError(t, err)
	}
}

func dueIn(days int) *time.Time {
	d := entities.DateOf(time.Now()).AddDate(0, 0, days)
	return &d
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	runner := NewRunner(RunnerOpts{Config: cfg, Output: &out, Version: "test"})
	err := runner.Command().Run(context.Background(), append([]string{"bookshelf"}, args...))
	return out.String(), err
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(RunnerOpts{})
	assert.NotNil(t, runner.config)
	assert.NotNil(t, runner.output)
	assert.NotNil(t, runner.serve)
	assert.Equal(t, "dev", runner.version)
}

func TestServe_AppliesGlobalFlags(t *testing.T) {
	var got *config.Config
	runner := NewRunner(RunnerOpts{
		Config:  testConfig(t),
		Output:  &bytes.Buffer{},
		Version: "1.2.3",
		Serve: func(cfg *config.Config, version string) error {
			got = cfg
			assert.Equal(t, "1.2.3", version)
			return nil
		},
	})

	err := runner.Command().Run(context.Background(), []string{"bookshelf", "--backend", "sqlite", "--db", "/tmp/x.db", "serve"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, config.BackendSQLite, got.Storage.Backend)
	assert.Equal(t, "/tmp/x.db", got.Storage.DatabasePath)
	assert.Equal(t, config.BackendCSV, runner.config.Storage.Backend)
}

func TestServe_IsDefaultAction(t *testing.T) {
	called := false
	runner := NewRunner(RunnerOpts{
		Config: testConfig(t),
		Serve: func(*config.Config, string) error {
			called = true
			return nil
		},
	})

	require.NoError(t, runner.Command().Run(context.Background(), []string{"bookshelf"}))
	assert.True(t, called)
}

func TestList(t *testing.T) {
	cfg := testConfig(t)
	seedCSV(t, cfg.Storage.CSVPath,
		entities.Book{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Priority: 3},
		entities.Book{Title: "Anna Karenina", Author: "Leo Tolstoy", Genre: "Classics", Priority: 9, TotalPages: 800, PagesRead: 200},
	)

	out, err := run(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "Anna Karenina")
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, "2 book(s)")

	out, err = run(t, cfg, "list", "-q", "tolstoy")
	require.NoError(t, err)
	assert.NotContains(t, out, "Dune")
	assert.Contains(t, out, "1 book(s)")

	out, err = run(t, cfg, "list", "--genre", "science fiction")
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
	assert.NotContains(t, out, "Anna Karenina")

	out, err = run(t, cfg, "list", "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "No books found")
}

func TestList_JSONSorted(t *testing.T) {
	cfg := testConfig(t)
	seedCSV(t, cfg.Storage.CSVPath,
		entities.Book{Title: "Dune", Author: "Frank Herbert", Priority: 3},
		entities.Book{Title: "Anna Karenina", Author: "Leo Tolstoy", Priority: 9},
	)

	out, err := run(t, cfg, "list", "--sort", "title", "--json")
	require.NoError(t, err)

	var books []entities.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.Len(t, books, 2)
	assert.Equal(t, "Anna Karenina", books[0].Title)
	assert.Equal(t, "Dune", books[1].Title)
}

func TestList_InvalidArguments(t *testing.T) {
	cfg := testConfig(t)

	_, err := run(t, cfg, "list", "--sort", "pages")
	assert.ErrorContains(t, err, "invalid sort")

	_, err = run(t, cfg, "list", "--status", "lost")
	assert.ErrorContains(t, err, "unknown status")

	_, err = run(t, cfg, "--backend", "mongo", "list")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestUpcoming(t *testing.T) {
	cfg := testConfig(t)
	seedCSV(t, cfg.Storage.CSVPath,
		entities.Book{Title: "Soon", Author: "a", DueDate: dueIn(2)},
		entities.Book{Title: "Later", Author: "a", DueDate: dueIn(20)},
	)

	out, err := run(t, cfg, "upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "Soon")
	assert.NotContains(t, out, "Later")

	out, err = run(t, cfg, "upcoming", "--days", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Later")
}

func TestSweep(t *testing.T) {
	cfg := testConfig(t)
	seedCSV(t, cfg.Storage.CSVPath,
		entities.Book{Title: "Late", Author: "a", DueDate: dueIn(-3)},
		entities.Book{Title: "Fine", Author: "a", DueDate: dueIn(3)},
	)

	out, err := run(t, cfg, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 2 books, marked 1 overdue, 0 failed")

	out, err = run(t, cfg, "list", "--status", "overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "Late")
	assert.NotContains(t, out, "Fine")
}

func newOpenLibraryServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/isbn/9780141180144.json":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"key":             "/books/OL1M",
				"title":           "The Master and Margarita",
				"number_of_pages": 480,
				"authors":         []map[string]string{{"key": "/authors/OL2A"}},
				"subjects":        []string{"Classics"},
			})
		case "/authors/OL2A.json":
			_ = json.NewEncoder(w).Encode(map[string]string{"name": "Mikhail Bulgakov"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestImportISBN(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenLibrary.BaseURL = newOpenLibraryServer(t).URL

	out, err := run(t, cfg, "import-isbn", "978-0-14-118014-4")
	require.NoError(t, err)
	assert.Contains(t, out, "The Master and Margarita")
	assert.Contains(t, out, "Mikhail Bulgakov")

	store, err := csvfile.NewStore(cfg.Storage.CSVPath)
	require.NoError(t, err)
	books, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, books)

	_, err = run(t, cfg, "import-isbn", "--add", "--genre", "Fiction", "--due", "2030-01-15", "--priority", "9", "9780141180144")
	require.NoError(t, err)

	books, err = store.GetAll()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Fiction", books[0].Genre)
	assert.Equal(t, 9, books[0].Priority)
	assert.Equal(t, 480, books[0].TotalPages)
	require.NotNil(t, books[0].DueDate)
	assert.Equal(t, "2030-01-15", books[0].DueDate.Format(entities.DateLayout))
}

func TestImportISBN_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenLibrary.BaseURL = newOpenLibraryServer(t).URL

	_, err := run(t, cfg, "import-isbn")
	assert.ErrorContains(t, err, "ISBN argument is required")

	_, err = run(t, cfg, "import-isbn", "--due", "soon", "9780141180144")
	assert.ErrorContains(t, err, "invalid due date")

	_, err = run(t, cfg, "import-isbn", "0000000000")
	assert.Error(t, err)
}
