// Package tasks runs catalog jobs (overdue sweeps, ISBN imports) on a
// backlite queue persisted in its own SQLite file.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the task database and the backlite dispatcher running on it.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.RWMutex
	started bool
}

// NewClient opens the task database at dbPath, creating its directory and
// the backlite schema when missing.
func NewClient(dbPath string, cfg Config) (*Client, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create tasks directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	dispatcher, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = dispatcher.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue: %w", err)
	}

	return &Client{client: dispatcher, db: db, config: cfg}, nil
}

// Register applies the client's timeout, retry and retention settings to each
// queue and hands it to the dispatcher. Call it before Start.
//
// Retry settings only touch queues that retry at all: a queue declared with a
// single attempt keeps it.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.configure(q.Config())
		c.client.Register(q)
	}
}

func (c *Client) configure(qc *backlite.QueueConfig) {
	if qc.MaxAttempts > 1 {
		qc.MaxAttempts = c.config.MaxRetries
		qc.Backoff = c.config.RetryDelay
	}
	qc.Timeout = c.config.TaskTimeout
	if qc.Retention != nil {
		qc.Retention.Duration = c.config.RetentionDuration
	}
}

// Start runs the workers until ctx is cancelled. Repeated calls are no-ops.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	log.Info("task queue started", "workers", c.config.Workers)
	c.client.Start(ctx)
}

// Stop waits for in-flight tasks until ctx expires and reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return true
	}

	log.Info("stopping task queue")
	if !c.client.Stop(ctx) {
		log.Warn("task queue stop timed out, in-flight tasks abandoned")
		return false
	}
	log.Info("task queue stopped")
	return true
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Enqueue saves a single task and returns its ID.
func (c *Client) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	ids, err := c.client.Add(task).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
	}
	return ids[0], nil
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// queueLogger forwards backlite's key/value log lines to the application logger.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Debug("task: "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Error("task: "+message, params...)
}
