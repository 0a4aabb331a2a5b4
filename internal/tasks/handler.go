package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/store"
	"github.com/taskhive/backend/internal/tenant"
	"github.com/taskhive/backend/pkg/response"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// Store is what the handler needs from the task repository.
type Store interface {
	ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]models.Task, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, orgID uuid.UUID, t *models.Task) error
	ApplyUpdate(ctx context.Context, orgID, id uuid.UUID, upd Update) (*models.Task, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// Handler handles task HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a tasks handler.
func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

// CreateRequest is the body for POST /projects/:id/tasks.
type CreateRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	AssigneeEmail string  `json:"assignee_email"`
	DueDate       *string `json:"due_date"`
}

// UpdateRequest is the body for PATCH /tasks/:id. Absent fields are
// left unchanged.
type UpdateRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	AssigneeEmail *string `json:"assignee_email"`
	DueDate       *string `json:"due_date"`
}

// ListByProject handles GET /projects/:id/tasks.
func (h *Handler) ListByProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.OK(c, []models.Task{})
		return
	}
	list, err := h.store.ListByProject(c.Request.Context(), org.ID, projectID)
	if err != nil {
		response.Internal(c, "failed to list tasks")
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	response.OK(c, list)
}

// Get handles GET /tasks/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.NotFound(c, "task not found")
		return
	}
	t, err := h.store.Get(c.Request.Context(), org.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.Internal(c, "failed to load task")
		return
	}
	response.OK(c, t)
}

// Create handles POST /projects/:id/tasks. A project id owned by
// another organization fails with 404, not 403, so callers cannot
// probe which ids exist.
func (h *Handler) Create(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "organization context required")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title required")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		response.BadRequest(c, "title required")
		return
	}
	t := &models.Task{
		ProjectID:     projectID,
		Title:         req.Title,
		Description:   req.Description,
		AssigneeEmail: req.AssigneeEmail,
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			response.BadRequest(c, "due_date must be YYYY-MM-DD")
			return
		}
		t.DueDate = &d
	}
	if err := h.store.Create(c.Request.Context(), org.ID, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to create task")
		return
	}
	response.Created(c, t)
}

// Update handles PATCH /tasks/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "organization context required")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	upd := Update{Title: req.Title, Description: req.Description, AssigneeEmail: req.AssigneeEmail}
	if req.Status != nil {
		s := models.TaskStatus(*req.Status)
		if !s.Valid() {
			response.BadRequest(c, "status must be TODO, IN_PROGRESS or DONE")
			return
		}
		upd.Status = &s
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			response.BadRequest(c, "due_date must be YYYY-MM-DD")
			return
		}
		upd.DueDate = &d
	}
	t, err := h.store.ApplyUpdate(c.Request.Context(), org.ID, id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.Internal(c, "failed to update task")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /tasks/:id. Removes the task and its comments.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "organization context required")
		return
	}
	if err := h.store.Delete(c.Request.Context(), org.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.Internal(c, "failed to delete task")
		return
	}
	response.OK(c, gin.H{"ok": true})
}
