package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP API (default if no command given)",
		Action: r.Serve,
	}
}

// Serve runs the HTTP server until interrupted.
func (r *Runner) Serve(_ context.Context, cmd *cli.Command) error {
	return r.serve(r.applyFlags(cmd), r.version)
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List books, optionally searched, filtered and sorted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Keyword matched against title, author, ISBN and genre"},
			&cli.StringFlag{Name: "status", Usage: "Only books with this status"},
			&cli.StringFlag{Name: "genre", Usage: "Only books of this genre"},
			&cli.StringFlag{Name: "sort", Usage: "Order by title, author, due or priority"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: r.List,
	}
}

var sortOrders = map[string]func([]entities.Book){
	"title":    entities.SortByTitle,
	"author":   entities.SortByAuthor,
	"due":      entities.SortByDueDate,
	"priority": entities.SortByPriority,
}

// List prints the catalog. Only one of query, status and genre is applied, in that order.
func (r *Runner) List(_ context.Context, cmd *cli.Command) error {
	order, ok := sortOrders[cmd.String("sort")]
	if cmd.String("sort") != "" && !ok {
		return fmt.Errorf("invalid sort %q: expected title, author, due or priority", cmd.String("sort"))
	}

	app, err := r.open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	var books []entities.Book
	switch {
	case cmd.String("query") != "":
		books, err = app.Catalog.SearchBooks(cmd.String("query"))
	case cmd.String("status") != "":
		status, perr := entities.ParseStatus(cmd.String("status"))
		if perr != nil {
			return perr
		}
		books, err = app.Catalog.FilterByStatus(status)
	case cmd.String("genre") != "":
		books, err = app.Catalog.FilterByGenre(cmd.String("genre"))
	default:
		books, err = app.Catalog.GetAllBooks()
	}
	if err != nil {
		return err
	}
	if order != nil {
		order(books)
	}

	return r.writeBooks(books, cmd.Bool("json"))
}

func upcomingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upcoming",
		Usage: "List books due within the next few days",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Usage: "Window in days (default UPCOMING_DAYS)", Value: -1},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: r.Upcoming,
	}
}

func (r *Runner) Upcoming(_ context.Context, cmd *cli.Command) error {
	app, err := r.open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	days := int(cmd.Int("days"))
	if days < 0 {
		days = app.Config.Catalog.UpcomingDays
	}
	books, err := app.Catalog.GetUpcomingDueBooks(days)
	if err != nil {
		return err
	}
	return r.writeBooks(books, cmd.Bool("json"))
}

func sweepCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sweep",
		Usage:  "Mark past-due, unfinished books as overdue",
		Action: r.Sweep,
	}
}

func (r *Runner) Sweep(_ context.Context, cmd *cli.Command) error {
	app, err := r.open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Catalog.CheckAndUpdateOverdueBooks()
	if err != nil {
		return err
	}
	log.Info("overdue sweep finished", "scanned", result.Scanned, "updated", result.Updated, "failed", result.Failed)
	return r.writePlainln("Scanned %d books, marked %d overdue, %d failed", result.Scanned, result.Updated, result.Failed)
}

func importISBNCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import-isbn",
		Usage:     "Look up a book on OpenLibrary by ISBN",
		ArgsUsage: "<isbn>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "add", Usage: "Add the book to the catalog instead of only printing it"},
			&cli.StringFlag{Name: "genre", Usage: "Override the genre taken from OpenLibrary subjects"},
			&cli.StringFlag{Name: "due", Usage: "Due date, YYYY-MM-DD"},
			&cli.IntFlag{Name: "priority", Usage: "Priority (default 1)"},
		},
		Action: r.ImportISBN,
	}
}

func (r *Runner) ImportISBN(ctx context.Context, cmd *cli.Command) error {
	isbn := cmd.Args().First()
	if isbn == "" {
		return fmt.Errorf("ISBN argument is required")
	}

	var due *time.Time
	if raw := cmd.String("due"); raw != "" {
		d, err := entities.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", raw)
		}
		due = &d
	}

	app, err := r.open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	book, err := app.Catalog.ImportBookByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	if genre := strings.TrimSpace(cmd.String("genre")); genre != "" {
		book.Genre = genre
	}
	if due != nil {
		book.DueDate = due
	}
	if p := int(cmd.Int("priority")); p != 0 {
		book.Priority = p
	}

	if cmd.Bool("add") {
		id, err := app.Catalog.AddBook(book)
		if err != nil {
			return err
		}
		log.Info("imported book", "id", id, "isbn", book.ISBN)
	}
	return r.writeBooks([]entities.Book{*book}, false)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// writeBooks prints books as a table, or as JSON when asJSON is set.
func (r *Runner) writeBooks(books []entities.Book, asJSON bool) error {
	if asJSON {
		return r.writeJSON(books)
	}
	if len(books) == 0 {
		return r.writePlainln("No books found")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "AUTHOR", "GENRE", "STATUS", "DUE", "PRIORITY", "PROGRESS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, b := range books {
		due := ""
		if b.DueDate != nil {
			due = b.DueDate.Format(entities.DateLayout)
		}
		t.Row(
			idCell(b.ID),
			b.Title,
			b.Author,
			b.Genre,
			b.Status.Label(),
			due,
			strconv.Itoa(b.Priority),
			fmt.Sprintf("%.0f%%", catalog.ReadingProgress(b)),
		)
	}

	if err := r.writePlainln("%s", t.String()); err != nil {
		return err
	}
	return r.writePlainln("%d book(s)", len(books))
}

func idCell(id uint) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatUint(uint64(id), 10)
}
