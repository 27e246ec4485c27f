// Command seed adds a couple of sample books to the configured catalog.
// Usage: go run ./cmd/seed [-backend csv] [-csv ./books.csv]
package main

import (
	"flag"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

func main() {
	_ = godotenv.Load(".env.local", ".env")

	cfg := config.NewConfig()
	flag.StringVar(&cfg.Storage.Backend, "backend", cfg.Storage.Backend, "storage backend: memory, csv, sqlite or postgres")
	flag.StringVar(&cfg.Storage.DatabasePath, "db", cfg.Storage.DatabasePath, "path to the SQLite catalog")
	flag.StringVar(&cfg.Storage.DatabaseDSN, "dsn", cfg.Storage.DatabaseDSN, "Postgres connection string")
	flag.StringVar(&cfg.Storage.CSVPath, "csv", cfg.Storage.CSVPath, "path to the CSV catalog")
	flag.Parse()

	app, err := entrypoint.Bootstrap(cfg)
	if err != nil {
		log.Fatal("failed to open catalog", "err", err)
	}
	defer app.Close()

	added, err := seed(app.Catalog, app.Catalog.Today())
	if err != nil {
		log.Fatal("failed to seed catalog", "err", err)
	}
	log.Info("sample data added", "books", added, "backend", app.Backend.Name)
}

// sampleBooks returns the sample catalog relative to today.
func sampleBooks(today time.Time) []entities.Book {
	due := func(days int) *time.Time {
		d := today.AddDate(0, 0, days)
		return &d
	}
	return []entities.Book{
		{
			Title:      "Crime and Punishment",
			Author:     "Fyodor Dostoevsky",
			ISBN:       "978-5-17-090507-1",
			Genre:      "Classics",
			Status:     entities.StatusInProgress,
			AddedDate:  today,
			DueDate:    due(30),
			Priority:   8,
			TotalPages: 672,
			PagesRead:  150,
		},
		{
			Title:      "The Master and Margarita",
			Author:     "Mikhail Bulgakov",
			ISBN:       "978-5-389-07464-5",
			Genre:      "Classics",
			Status:     entities.StatusActive,
			AddedDate:  today,
			DueDate:    due(45),
			Priority:   9,
			TotalPages: 480,
			PagesRead:  0,
		},
	}
}

// seed adds every sample book whose ISBN is not in the catalog yet.
func seed(svc *catalog.Service, today time.Time) (int, error) {
	existing, err := svc.GetAllBooks()
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, b := range existing {
		known[b.ISBN] = true
	}

	added := 0
	for _, book := range sampleBooks(today) {
		if known[book.ISBN] {
			log.Info("skipping existing book", "title", book.Title)
			continue
		}
		id, err := svc.AddBook(&book)
		if err != nil {
			return added, err
		}
		log.Info("saved", "id", id, "title", book.Title, "author", book.Author)
		added++
	}
	return added, nil
}
