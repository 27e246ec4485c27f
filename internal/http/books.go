package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

// BookRequest is the JSON body for creating or replacing a book.
type BookRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn"`
	Genre      string `json:"genre"`
	Status     string `json:"status"`
	DueDate    string `json:"due_date"` // YYYY-MM-DD, empty for none
	Priority   int    `json:"priority"`
	TotalPages int    `json:"total_pages"`
	PagesRead  int    `json:"pages_read"`
}

// toBook converts the request; it fails only on unparsable status or date.
func (r BookRequest) toBook() (*entities.Book, error) {
	book := &entities.Book{
		Title:      r.Title,
		Author:     r.Author,
		ISBN:       strings.TrimSpace(r.ISBN),
		Genre:      strings.TrimSpace(r.Genre),
		Priority:   r.Priority,
		TotalPages: r.TotalPages,
		PagesRead:  r.PagesRead,
	}
	if r.Status != "" {
		status, err := entities.ParseStatus(r.Status)
		if err != nil {
			return nil, err
		}
		book.Status = status
	}
	if r.DueDate != "" {
		due, err := entities.ParseDate(r.DueDate)
		if err != nil {
			return nil, errors.New("invalid due_date: expected YYYY-MM-DD")
		}
		book.DueDate = &due
	}
	return book, nil
}

// BookResponse renders dates as YYYY-MM-DD and adds the status label.
type BookResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn,omitempty"`
	Genre       string          `json:"genre,omitempty"`
	Status      entities.Status `json:"status"`
	StatusLabel string          `json:"status_label"`
	AddedDate   string          `json:"added_date,omitempty"`
	DueDate     string          `json:"due_date,omitempty"`
	Priority    int             `json:"priority"`
	TotalPages  int             `json:"total_pages"`
	PagesRead   int             `json:"pages_read"`
}

func newBookResponse(b entities.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Genre:       b.Genre,
		Status:      b.Status,
		StatusLabel: b.Status.Label(),
		Priority:    b.Priority,
		TotalPages:  b.TotalPages,
		PagesRead:   b.PagesRead,
	}
	if !b.AddedDate.IsZero() {
		resp.AddedDate = b.AddedDate.Format(entities.DateLayout)
	}
	if b.DueDate != nil {
		resp.DueDate = b.DueDate.Format(entities.DateLayout)
	}
	return resp
}

func newBookList(books []entities.Book) gin.H {
	items := make([]BookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, newBookResponse(b))
	}
	return gin.H{"books": items, "count": len(items)}
}

// ProgressResponse is the derived reading state of one book.
type ProgressResponse struct {
	BookID              uint    `json:"book_id"`
	Percent             float64 `json:"percent"`
	PagesRemaining      int     `json:"pages_remaining"`
	EstimatedFinishDate string  `json:"estimated_finish_date"`
	DaysUntilDue        *int    `json:"days_until_due,omitempty"`
	Overdue             bool    `json:"overdue"`
}

type BooksController struct {
	catalog      CatalogService
	scheduler    SweepScheduler
	upcomingDays int
}

func NewBooksController(svc CatalogService, upcomingDays int) *BooksController {
	return &BooksController{
		catalog:      svc,
		upcomingDays: upcomingDays,
	}
}

// SetScheduler routes manual sweeps through the scheduler so its status
// reflects them (optional).
func (bc *BooksController) SetScheduler(s SweepScheduler) {
	bc.scheduler = s
}

// ListBooks handles GET /api/books
// Query: q (keyword), status, genre, sort=title|author|due|priority.
// Only one of q, status and genre is applied, in that order.
func (bc *BooksController) ListBooks(c *gin.Context) {
	sortKey := c.Query("sort")
	order, ok := sortOrders[sortKey]
	if sortKey != "" && !ok {
		respondBadRequest(c, "invalid sort: expected title, author, due or priority")
		return
	}

	var (
		books []entities.Book
		err   error
	)
	switch {
	case c.Query("q") != "":
		books, err = bc.catalog.SearchBooks(c.Query("q"))
	case c.Query("status") != "":
		status, perr := entities.ParseStatus(c.Query("status"))
		if perr != nil {
			respondBadRequest(c, perr.Error())
			return
		}
		books, err = bc.catalog.FilterByStatus(status)
	case c.Query("genre") != "":
		books, err = bc.catalog.FilterByGenre(c.Query("genre"))
	default:
		books, err = bc.sortedCatalog(sortKey)
		order = nil
	}
	if err != nil {
		respondServiceError(c, err, "list books")
		return
	}
	if order != nil {
		order(books)
	}

	c.IndentedJSON(http.StatusOK, newBookList(books))
}

var sortOrders = map[string]func([]entities.Book){
	"title":    entities.SortByTitle,
	"author":   entities.SortByAuthor,
	"due":      entities.SortByDueDate,
	"priority": entities.SortByPriority,
}

func (bc *BooksController) sortedCatalog(key string) ([]entities.Book, error) {
	switch key {
	case "title":
		return bc.catalog.SortByTitle()
	case "author":
		return bc.catalog.SortByAuthor()
	case "due":
		return bc.catalog.SortByDueDate()
	case "priority":
		return bc.catalog.SortByPriority()
	default:
		return bc.catalog.GetAllBooks()
	}
}

// CreateBook handles POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	book, err := req.toBook()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if _, err := bc.catalog.AddBook(book); err != nil {
		respondServiceError(c, err, "add book")
		return
	}
	respondCreated(c, newBookResponse(*book))
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	book, ok := bc.loadBook(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, newBookResponse(*book))
}

// UpdateBook handles PUT /api/books/:id
// The body replaces every editable field; the added date is kept.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	book, err := req.toBook()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	book.ID = id

	updated, err := bc.catalog.UpdateBook(book)
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}
	if !updated {
		respondNotFound(c, "book")
		return
	}
	c.IndentedJSON(http.StatusOK, newBookResponse(*book))
}

// DeleteBook handles DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := bc.catalog.DeleteBook(id)
	if err != nil {
		respondServiceError(c, err, "delete book")
		return
	}
	if !deleted {
		respondNotFound(c, "book")
		return
	}
	respondSuccess(c, "book deleted")
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/books/:id/status
func (bc *BooksController) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	status, err := entities.ParseStatus(req.Status)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	updated, err := bc.catalog.UpdateBookStatus(id, status)
	if err != nil {
		respondServiceError(c, err, "update status")
		return
	}
	if !updated {
		respondNotFound(c, "book")
		return
	}

	book, ok := bc.loadBook(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, newBookResponse(*book))
}

// GetProgress handles GET /api/books/:id/progress
func (bc *BooksController) GetProgress(c *gin.Context) {
	book, ok := bc.loadBook(c)
	if !ok {
		return
	}
	p := bc.catalog.Progress(*book)
	c.IndentedJSON(http.StatusOK, ProgressResponse{
		BookID:              p.BookID,
		Percent:             p.Percent,
		PagesRemaining:      p.PagesRemaining,
		EstimatedFinishDate: p.EstimatedFinishDate.Format(entities.DateLayout),
		DaysUntilDue:        p.DaysUntilDue,
		Overdue:             p.Overdue,
	})
}

// GetAnalysis handles GET /api/books/:id/analysis
// An unknown ID is not an error here; the analysis reports insufficient data.
func (bc *BooksController) GetAnalysis(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	analysis, err := bc.catalog.GetReadingSpeedAnalysis(id)
	if err != nil {
		respondServiceError(c, err, "reading speed analysis")
		return
	}
	c.IndentedJSON(http.StatusOK, analysis)
}

// Upcoming handles GET /api/books/upcoming?days=N
func (bc *BooksController) Upcoming(c *gin.Context) {
	days, ok := parseIntQuery(c, "days", bc.upcomingDays)
	if !ok {
		return
	}
	books, err := bc.catalog.GetUpcomingDueBooks(days)
	if err != nil {
		respondServiceError(c, err, "upcoming books")
		return
	}
	resp := newBookList(books)
	resp["days"] = days
	c.IndentedJSON(http.StatusOK, resp)
}

// Overdue handles GET /api/books/overdue
func (bc *BooksController) Overdue(c *gin.Context) {
	books, err := bc.catalog.GetOverdueBooks()
	if err != nil {
		respondServiceError(c, err, "overdue books")
		return
	}
	c.IndentedJSON(http.StatusOK, newBookList(books))
}

// SweepOverdue handles POST /api/books/overdue/sweep
// Runs the sweep synchronously and returns its counts.
func (bc *BooksController) SweepOverdue(c *gin.Context) {
	var (
		result catalog.SweepResult
		err    error
	)
	if bc.scheduler != nil {
		result, err = bc.scheduler.RunNow()
	} else {
		result, err = bc.catalog.CheckAndUpdateOverdueBooks()
	}
	if err != nil {
		respondServiceError(c, err, "overdue sweep")
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

// SweepStatus handles GET /api/books/overdue/sweep
func (bc *BooksController) SweepStatus(c *gin.Context) {
	if bc.scheduler == nil {
		respondError(c, http.StatusNotFound, "overdue sweep scheduler is disabled")
		return
	}
	c.IndentedJSON(http.StatusOK, bc.scheduler.Status())
}

// Recommendations handles GET /api/recommendations?genre=G
func (bc *BooksController) Recommendations(c *gin.Context) {
	genre := strings.TrimSpace(c.Query("genre"))
	if genre == "" {
		respondBadRequest(c, "genre is required")
		return
	}
	books, err := bc.catalog.GetRecommendedBooks(genre)
	if err != nil {
		respondServiceError(c, err, "recommendations")
		return
	}
	c.IndentedJSON(http.StatusOK, newBookList(books))
}

// Statuses handles GET /api/statuses
func (bc *BooksController) Statuses(c *gin.Context) {
	type statusInfo struct {
		Name  entities.Status `json:"name"`
		Label string          `json:"label"`
	}
	all := entities.AllStatuses()
	out := make([]statusInfo, 0, len(all))
	for _, s := range all {
		out = append(out, statusInfo{Name: s, Label: s.Label()})
	}
	c.IndentedJSON(http.StatusOK, gin.H{"statuses": out})
}

// LookupISBN handles GET /api/isbn/:isbn
// Returns an unsaved draft; POST it to /api/books to add it.
func (bc *BooksController) LookupISBN(c *gin.Context) {
	book, err := bc.catalog.ImportBookByISBN(c.Request.Context(), c.Param("isbn"))
	switch {
	case err == nil:
		c.IndentedJSON(http.StatusOK, newBookResponse(*book))
	case errors.Is(err, catalog.ErrMetadataUnavailable):
		respondError(c, http.StatusServiceUnavailable, "ISBN lookup is not configured")
	case errors.Is(err, metadata.ErrInvalidISBN):
		respondBadRequest(c, "invalid ISBN")
	case errors.Is(err, metadata.ErrISBNNotFound):
		respondNotFound(c, "ISBN")
	default:
		respondInternalError(c, err, "isbn lookup")
	}
}

// loadBook resolves :id or writes the 400/404/500 response.
func (bc *BooksController) loadBook(c *gin.Context) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	book, err := bc.catalog.GetBookByID(id)
	if err != nil {
		respondServiceError(c, err, "get book")
		return nil, false
	}
	if book == nil {
		respondNotFound(c, "book")
		return nil, false
	}
	return book, true
}
