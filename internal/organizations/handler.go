package organizations

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/store"
	"github.com/taskhive/backend/internal/tenant"
	"github.com/taskhive/backend/pkg/response"
	"github.com/taskhive/backend/pkg/slug"
)

// Store is what the handler needs from the organization repository.
type Store interface {
	Create(ctx context.Context, org *models.Organization) error
	List(ctx context.Context) ([]models.Organization, error)
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates an organizations handler.
func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

// CreateRequest is the body for POST /organizations.
type CreateRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required"`
}

// Create handles POST /organizations. Tenant-independent: this is the
// bootstrapping operation that brings a tenant into existence.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name and contact_email required")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 1 || len(req.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	if slug.Make(req.Name) == "" {
		response.BadRequest(c, "name must contain at least one letter or digit")
		return
	}
	org := &models.Organization{Name: req.Name, ContactEmail: strings.TrimSpace(req.ContactEmail)}
	if err := h.store.Create(c.Request.Context(), org); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			response.Conflict(c, "an organization with this name already exists")
			return
		}
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// List handles GET /organizations. Deliberately unscoped: any caller
// can discover tenant names and slugs. Gating this behind platform
// auth is an open product question.
func (h *Handler) List(c *gin.Context) {
	orgs, err := h.store.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, orgs)
}

// Current handles GET /organizations/current. Returns the bound
// tenant, or null data when the request carried no resolvable slug
// (an absent result, not an error).
func (h *Handler) Current(c *gin.Context) {
	org, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		response.OK(c, nil)
		return
	}
	response.OK(c, org)
}
