package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Storage, cfg.Version)
	booksController := NewBooksController(cfg.Catalog, cfg.UpcomingDays)
	if cfg.Scheduler != nil {
		booksController.SetScheduler(cfg.Scheduler)
	}

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Books API endpoints
	api.GET("/books", booksController.ListBooks)
	api.POST("/books", booksController.CreateBook)
	api.GET("/books/upcoming", booksController.Upcoming)
	api.GET("/books/overdue", booksController.Overdue)
	api.GET("/books/overdue/sweep", booksController.SweepStatus)
	api.POST("/books/overdue/sweep", booksController.SweepOverdue)
	api.GET("/books/:id", booksController.GetBook)
	api.PUT("/books/:id", booksController.UpdateBook)
	api.DELETE("/books/:id", booksController.DeleteBook)
	api.PUT("/books/:id/status", booksController.UpdateStatus)
	api.GET("/books/:id/progress", booksController.GetProgress)
	api.GET("/books/:id/analysis", booksController.GetAnalysis)

	api.GET("/recommendations", booksController.Recommendations)
	api.GET("/statuses", booksController.Statuses)
	api.GET("/isbn/:isbn", booksController.LookupISBN)

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/sweep", tasksController.EnqueueSweep)
		api.POST("/tasks/import", tasksController.EnqueueImport)
	}

	return router
}
