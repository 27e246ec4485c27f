// Package metadata looks up bibliographic records used to pre-fill catalog
// entries imported by ISBN.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	userAgent             = "Bookshelf/1.0 (https://github.com/mrlokans/bookshelf)"
	maxSubjects           = 10
)

var (
	ErrInvalidISBN  = errors.New("invalid ISBN")
	ErrISBNNotFound = errors.New("ISBN not found")
)

// BookMetadata is the subset of an OpenLibrary edition the catalog uses.
type BookMetadata struct {
	Title           string   `json:"title,omitempty"`
	Author          string   `json:"author,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	OpenLibraryKey  string   `json:"open_library_key,omitempty"`
}

// OpenLibraryClient fetches edition records from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

// Option customises an OpenLibraryClient.
type Option func(*OpenLibraryClient)

// WithBaseURL points the client at another OpenLibrary-compatible host.
func WithBaseURL(baseURL string) Option {
	return func(c *OpenLibraryClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithMinInterval sets the minimum delay between two outgoing requests.
func WithMinInterval(interval time.Duration) Option {
	return func(c *OpenLibraryClient) {
		c.rateLimiter = newRateLimiter(interval)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *OpenLibraryClient) {
		c.httpClient = httpClient
	}
}

// NewOpenLibraryClient creates a client limited to one request per second.
func NewOpenLibraryClient(opts ...Option) *OpenLibraryClient {
	c := &OpenLibraryClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     DefaultOpenLibraryURL,
		rateLimiter: newRateLimiter(time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

// wait blocks until the interval has passed since the previous call or ctx ends.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if since := time.Since(r.lastCall); since < r.interval {
		timer := time.NewTimer(r.interval - since)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.lastCall = time.Now()
	return nil
}

// SearchByISBN looks up an edition by ISBN-10 or ISBN-13. Hyphens and spaces
// are ignored. The author is resolved with a second request when the edition
// only references it by key.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	normalized := NormalizeISBN(isbn)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidISBN, isbn)
	}

	var edition openLibraryEdition
	if err := c.getJSON(ctx, fmt.Sprintf("/isbn/%s.json", normalized), &edition); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrISBNNotFound, normalized)
		}
		return nil, err
	}

	md := edition.toMetadata(normalized)
	if md.Author == "" && len(edition.Authors) > 0 {
		var author struct {
			Name string `json:"name"`
		}
		if err := c.getJSON(ctx, edition.Authors[0].Key+".json", &author); err == nil {
			md.Author = author.Name
		}
	}
	return md, nil
}

var errStatusNotFound = errors.New("not found")

func (c *OpenLibraryClient) getJSON(ctx context.Context, path string, out any) error {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errStatusNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// NormalizeISBN strips hyphens and spaces and returns "" unless 10 or 13
// characters remain.
func NormalizeISBN(isbn string) string {
	isbn = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear pulls a four digit year out of OpenLibrary's free-form publish dates.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range []string{"2006", "January 2, 2006", "Jan 2, 2006", "2006-01-02", "January 2006"} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.Year()
		}
	}

	for i := 0; i+4 <= len(dateStr); i++ {
		year := 0
		digits := 0
		for _, ch := range dateStr[i : i+4] {
			if ch < '0' || ch > '9' {
				break
			}
			year = year*10 + int(ch-'0')
			digits++
		}
		if digits == 4 && year > 1000 && year < 3000 {
			return year
		}
	}
	return 0
}

type authorRef struct {
	Key string `json:"key"`
}

type openLibraryEdition struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	ByStatement   string      `json:"by_statement"`
	Authors       []authorRef `json:"authors"`
	Publishers    []string    `json:"publishers"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
	Subjects      []string    `json:"subjects"`
}

func (e *openLibraryEdition) toMetadata(isbn string) *BookMetadata {
	md := &BookMetadata{
		Title:           e.Title,
		Author:          strings.TrimSuffix(strings.TrimSpace(e.ByStatement), "."),
		ISBN:            isbn,
		PublicationYear: extractYear(e.PublishDate),
		PageCount:       e.NumberOfPages,
		OpenLibraryKey:  e.Key,
	}
	if len(e.Publishers) > 0 {
		md.Publisher = e.Publishers[0]
	}
	if len(e.Subjects) > 0 {
		md.Subjects = e.Subjects[:min(len(e.Subjects), maxSubjects)]
	}
	return md
}
