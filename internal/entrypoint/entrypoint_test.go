package entrypoint

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Storage.Backend = config.BackendCSV
	cfg.Storage.CSVPath = filepath.Join(t.TempDir(), "books.csv")
	cfg.Logging.Level = ""
	return cfg
}

func TestBootstrap(t *testing.T) {
	cfg := testConfig(t)

	app, err := Bootstrap(cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, config.BackendCSV, app.Backend.Name)
	require.NoError(t, app.Backend.Ping())

	id, err := app.Catalog.AddBook(&entities.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	reopened, err := Bootstrap(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	book, err := reopened.Catalog.GetBookByID(id)
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "Dune", book.Title)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "mongo"

	_, err := Bootstrap(cfg)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestBootstrap_NoMetadataProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenLibrary.BaseURL = ""

	app, err := Bootstrap(cfg)
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Catalog.ImportBookByISBN(t.Context(), "9780141180144")
	assert.Error(t, err)
}

func TestSetLogLevel(t *testing.T) {
	previous := log.GetLevel()
	defer log.SetLevel(previous)

	SetLogLevel("debug")
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	SetLogLevel("loud")
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	SetLogLevel("")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestServe_ListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1"}

	called := false
	err := Serve(srv, time.Second, func(context.Context) { called = true })
	assert.ErrorContains(t, err, "listen")
	assert.False(t, called)
}
