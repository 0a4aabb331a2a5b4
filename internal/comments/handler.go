package comments

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/store"
	"github.com/taskhive/backend/internal/tenant"
	"github.com/taskhive/backend/pkg/response"
)

// Store is what the handler needs from the comment repository.
type Store interface {
	Create(ctx context.Context, orgID uuid.UUID, cm *models.TaskComment) error
	ListByTask(ctx context.Context, orgID, taskID uuid.UUID) ([]models.TaskComment, error)
}

// Handler handles task comment HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a comments handler.
func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

// CreateRequest is the body for POST /tasks/:id/comments.
type CreateRequest struct {
	Content     string `json:"content" binding:"required"`
	AuthorEmail string `json:"author_email" binding:"required"`
}

// Create handles POST /tasks/:id/comments. A valid task id owned by
// another organization fails with 404.
func (h *Handler) Create(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "organization context required")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "content and author_email required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.BadRequest(c, "content required")
		return
	}
	cm := &models.TaskComment{
		TaskID:      taskID,
		Content:     req.Content,
		AuthorEmail: req.AuthorEmail,
	}
	if err := h.store.Create(c.Request.Context(), org.ID, cm); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.Internal(c, "failed to add comment")
		return
	}
	response.Created(c, cm)
}

// ListByTask handles GET /tasks/:id/comments.
func (h *Handler) ListByTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.OK(c, []models.TaskComment{})
		return
	}
	list, err := h.store.ListByTask(c.Request.Context(), org.ID, taskID)
	if err != nil {
		response.Internal(c, "failed to list comments")
		return
	}
	if list == nil {
		list = []models.TaskComment{}
	}
	response.OK(c, list)
}
