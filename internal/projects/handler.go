package projects

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

// dateLayout is the wire format for due dates (calendar date, no
// time-of-day).
const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// Store is what the handler needs from the project repository.
type Store interface {
	List(ctx context.Context, orgID uuid.UUID) ([]models.Project, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	ApplyUpdate(ctx context.Context, orgID, id uuid.UUID, upd Update) (*models.Project, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// Handler handles project HTTP endpoints. Reads under an unbound
// tenant yield empty/absent results; mutations require a bound tenant
// and fail with 401 before touching the store.
type Handler struct {
	store Store
}

// NewHandler creates a projects handler.
func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

// CreateRequest is the body for POST /projects.
type CreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

// UpdateRequest is the body for PATCH /projects/:id. Absent fields
// are left unchanged.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

// List handles GET /projects.
func (h *Handler) List(c *gin.Context) {
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.OK(c, []models.Project{})
		return
	}
	list, err := h.store.List(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to list projects")
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	response.OK(c, list)
}

// Get handles GET /projects/:id. An id belonging to another
// organization is indistinguishable from a nonexistent one.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.NotFound(c, "project not found")
		return
	}
	p, err := h.store.Get(c.Request.Context(), org.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to load project")
		return
	}
	response.OK(c, p)
}

// Create handles POST /projects.
func (h *Handler) Create(c *gin.Context) {
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "organization context required")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.BadRequest(c, "name required")
		return
	}
	p := &models.Project{
		OrganizationID: org.ID,
		Name:           req.Name,
		Description:    req.Description,
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			response.BadRequest(c, "due_date must be YYYY-MM-DD")
			return
		}
		p.DueDate = &d
	}
	if err := h.store.Create(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to create project")
		return
	}
	response.Created(c, p)
}

// Update handles PATCH /projects/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
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
	upd := Update{Name: req.Name, Description: req.Description}
	if req.Status != nil {
		s := models.ProjectStatus(*req.Status)
		if !s.Valid() {
			response.BadRequest(c, "status must be PLANNED, ACTIVE or DONE")
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
	p, err := h.store.ApplyUpdate(c.Request.Context(), org.ID, id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to update project")
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /projects/:id. Removes the project, its tasks
// and their comments.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "organization context required")
		return
	}
	if err := h.store.Delete(c.Request.Context(), org.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to delete project")
		return
	}
	response.OK(c, gin.H{"ok": true})
}
