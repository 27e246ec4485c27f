package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// TasksController handles task queue endpoints.
type TasksController struct {
	queue TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        tasks.OverdueSweepTask{}.Config().Name,
			Description: "Mark past-due, unfinished books as overdue",
			Endpoint:    "/api/tasks/sweep",
		},
		{
			Type:        tasks.ImportISBNTask{}.Config().Name,
			Description: "Look up an ISBN on OpenLibrary and add the book",
			Endpoint:    "/api/tasks/import",
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// EnqueueSweep handles POST /api/tasks/sweep
func (tc *TasksController) EnqueueSweep(c *gin.Context) {
	tc.enqueue(c, tasks.OverdueSweepTask{RequestedBy: "api"})
}

// ImportRequest is the request body for POST /api/tasks/import.
type ImportRequest struct {
	ISBN     string `json:"isbn" binding:"required"`
	Genre    string `json:"genre"`
	DueDate  string `json:"due_date"`
	Priority int    `json:"priority"`
}

// EnqueueImport handles POST /api/tasks/import
func (tc *TasksController) EnqueueImport(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "isbn is required")
		return
	}

	isbn := metadata.NormalizeISBN(req.ISBN)
	if isbn == "" {
		respondBadRequest(c, "invalid ISBN")
		return
	}

	task := tasks.ImportISBNTask{
		ISBN:     isbn,
		Genre:    strings.TrimSpace(req.Genre),
		Priority: req.Priority,
	}
	if req.DueDate != "" {
		due, err := entities.ParseDate(req.DueDate)
		if err != nil {
			respondBadRequest(c, "invalid due_date: expected YYYY-MM-DD")
			return
		}
		task.DueDate = &due
	}

	tc.enqueue(c, task)
}

func (tc *TasksController) enqueue(c *gin.Context, task backlite.Task) {
	id, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}
	respondAccepted(c, "task enqueued", gin.H{
		"task_id": id,
		"type":    task.Config().Name,
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
